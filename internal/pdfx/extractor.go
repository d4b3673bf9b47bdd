package pdfx

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carbon-compass/compass/internal/model"
)

// sectionKeywords are headings that open a new report section when they
// appear near the top of a page.
var sectionKeywords = []string{
	"environmental performance",
	"carbon emissions",
	"climate strategy",
	"climate-related",
	"ghg emissions",
	"greenhouse gas",
	"water management",
	"water stewardship",
	"energy use",
	"energy management",
	"waste management",
	"scope 1",
	"scope 2",
	"scope 3",
}

// headingWindow is how far into a page a keyword still counts as a
// heading rather than body text.
const headingWindow = 300

// Extractor pulls pages, metadata, tables and sections out of PDFs in a
// reports directory.
type Extractor struct {
	source     TextSource
	reportsDir string
	log        *zap.Logger
}

func NewExtractor(source TextSource, reportsDir string) *Extractor {
	return &Extractor{
		source:     source,
		reportsDir: reportsDir,
		log:        zap.L().With(zap.String("component", "pdfx")),
	}
}

// ExtractAll extracts everything from one PDF in the reports directory.
func (e *Extractor) ExtractAll(ctx context.Context, filename string) (model.PdfExtractionResult, error) {
	path := filepath.Join(e.reportsDir, filename)
	if _, err := os.Stat(path); err != nil {
		return model.PdfExtractionResult{}, eris.Wrapf(err, "pdfx: pdf not found: %s", path)
	}

	info, err := e.source.Info(ctx, path)
	if err != nil {
		return model.PdfExtractionResult{}, err
	}

	pages := make([]model.PageText, 0, info.Pages)
	var tables []model.TableData
	for n := 1; n <= info.Pages; n++ {
		raw, err := e.source.PageText(ctx, path, n)
		if err != nil {
			return model.PdfExtractionResult{}, err
		}
		tables = append(tables, DetectTables(n, raw)...)
		pages = append(pages, model.PageText{PageNumber: n, Text: CleanText(raw)})
	}

	result := model.PdfExtractionResult{
		Pages:    pages,
		Tables:   tables,
		Metadata: metadataFromInfo(info),
		Sections: DetectSections(pages),
	}
	e.log.Debug("extracted pdf",
		zap.String("filename", filename),
		zap.Int("pages", len(pages)),
		zap.Int("tables", len(tables)),
		zap.Int("sections", len(result.Sections)))
	return result, nil
}

func metadataFromInfo(info DocumentInfo) model.PdfMetadata {
	meta := model.PdfMetadata{
		Title:            info.Fields["Title"],
		Author:           info.Fields["Author"],
		CreationDate:     info.Fields["CreationDate"],
		ModificationDate: info.Fields["ModDate"],
		Additional:       map[string]string{},
	}
	for key, value := range info.Fields {
		switch key {
		case "Title", "Author", "CreationDate", "ModDate":
		default:
			meta.Additional[key] = value
		}
	}
	return meta
}

// DetectSections groups pages into named sections. A keyword within the
// heading window starts a new section; pages before the first match stay
// under the generic "Document" section.
func DetectSections(pages []model.PageText) []model.SectionText {
	var sections []model.SectionText
	currentName := "Document"
	var currentPages []int
	var currentParts []string

	flush := func() {
		if len(currentPages) > 0 && len(currentParts) > 0 {
			sections = append(sections, model.SectionText{
				Name:  currentName,
				Pages: append([]int(nil), currentPages...),
				Text:  strings.Join(currentParts, "\n"),
			})
		}
		currentPages = nil
		currentParts = nil
	}

	for _, page := range pages {
		lowered := strings.ToLower(page.Text)
		found := ""
		for _, keyword := range sectionKeywords {
			idx := strings.Index(lowered, keyword)
			if idx >= 0 && idx <= headingWindow {
				found = titleCase(keyword)
				break
			}
		}

		if found != "" && (len(currentPages) > 0 || len(currentParts) > 0) {
			flush()
			currentName = found
		} else if found != "" {
			currentName = found
		}

		currentPages = append(currentPages, page.PageNumber)
		currentParts = append(currentParts, page.Text)
	}
	flush()

	if len(sections) == 0 {
		parts := make([]string, 0, len(pages))
		nums := make([]int, 0, len(pages))
		for _, p := range pages {
			parts = append(parts, p.Text)
			nums = append(nums, p.PageNumber)
		}
		sections = append(sections, model.SectionText{
			Name:  "Document",
			Pages: nums,
			Text:  strings.Join(parts, "\n"),
		})
	}
	return sections
}

// DetectTables finds table-like blocks on a raw layout-mode page. A block
// is a run of non-blank lines; three or more lines with tabs or wide gaps
// mark it as tabular.
func DetectTables(pageNumber int, raw string) []model.TableData {
	var tables []model.TableData
	var block []string

	flush := func() {
		if len(block) == 0 {
			return
		}
		aligned := 0
		for _, line := range block {
			if strings.Contains(line, "\t") || strings.Contains(line, "  ") {
				aligned++
			}
		}
		if aligned >= 3 {
			tables = append(tables, model.TableData{
				PageNumber: pageNumber,
				Text:       CleanText(strings.Join(block, "\n")),
			})
		}
		block = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()
	return tables
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
