package model

// PageText holds the cleaned text of one PDF page. Page numbers are 1-based.
type PageText struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// TableData is a heuristically detected table-like text block.
type TableData struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// PdfMetadata carries the document information dictionary. Additional holds
// any keys beyond the four standard ones.
type PdfMetadata struct {
	Title            string            `json:"title,omitempty"`
	Author           string            `json:"author,omitempty"`
	CreationDate     string            `json:"creation_date,omitempty"`
	ModificationDate string            `json:"modification_date,omitempty"`
	Additional       map[string]string `json:"additional,omitempty"`
}

// SectionText is a named run of consecutive pages. Sections partition the
// page sequence; a document with no detected headings yields a single
// "Document" section.
type SectionText struct {
	Name  string `json:"name"`
	Pages []int  `json:"pages"`
	Text  string `json:"text"`
}

// PdfExtractionResult is everything pulled from one PDF.
type PdfExtractionResult struct {
	Pages    []PageText    `json:"pages"`
	Tables   []TableData   `json:"tables"`
	Metadata PdfMetadata   `json:"metadata"`
	Sections []SectionText `json:"sections"`
}

// FullText joins all page text with newlines.
func (r *PdfExtractionResult) FullText() string {
	var out string
	for i, p := range r.Pages {
		if i > 0 {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// Chunk is a bounded, overlapping slice of a section's text. StartChar and
// EndChar are offsets into the parent section's text.
type Chunk struct {
	Text        string `json:"text"`
	StartChar   int    `json:"start_char"`
	EndChar     int    `json:"end_char"`
	PageNumbers []int  `json:"page_numbers"`
	SectionName string `json:"section_name"`
}
