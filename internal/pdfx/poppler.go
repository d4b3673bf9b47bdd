// Package pdfx extracts text, metadata, tables and section labels from
// PDF sustainability reports using the poppler CLI tools.
package pdfx

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// DocumentInfo is the raw output of a pdfinfo run.
type DocumentInfo struct {
	Pages  int
	Fields map[string]string
}

// TextSource provides raw page text and document info for a PDF on disk.
type TextSource interface {
	Info(ctx context.Context, path string) (DocumentInfo, error)
	PageText(ctx context.Context, path string, page int) (string, error)
}

// Poppler shells out to pdftotext and pdfinfo.
type Poppler struct {
	pdftotextPath string
	pdfinfoPath   string
}

// NewPoppler creates a Poppler source. Empty paths resolve the tools from
// PATH.
func NewPoppler(pdftotextPath, pdfinfoPath string) *Poppler {
	if pdftotextPath == "" {
		pdftotextPath = "pdftotext"
	}
	if pdfinfoPath == "" {
		pdfinfoPath = "pdfinfo"
	}
	return &Poppler{pdftotextPath: pdftotextPath, pdfinfoPath: pdfinfoPath}
}

// Info runs pdfinfo and parses its key/value output.
func (p *Poppler) Info(ctx context.Context, path string) (DocumentInfo, error) {
	out, err := run(ctx, p.pdfinfoPath, path)
	if err != nil {
		return DocumentInfo{}, err
	}

	info := DocumentInfo{Fields: map[string]string{}}
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		info.Fields[key] = value
		if key == "Pages" {
			if n, err := strconv.Atoi(value); err == nil {
				info.Pages = n
			}
		}
	}
	if info.Pages == 0 {
		return DocumentInfo{}, eris.Errorf("pdfx: pdfinfo reported no pages for %s", path)
	}
	return info, nil
}

// PageText runs pdftotext -layout for a single page. Layout mode keeps
// column alignment, which the table heuristic depends on.
func (p *Poppler) PageText(ctx context.Context, path string, page int) (string, error) {
	pageArg := strconv.Itoa(page)
	return run(ctx, p.pdftotextPath, "-layout", "-f", pageArg, "-l", pageArg, path, "-")
}

func run(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "pdfx: %s failed: %s", bin, stderr.String())
	}
	return stdout.String(), nil
}
