// Package chunker splits extracted report text into overlapping chunks
// sized for NLP model context windows.
package chunker

import (
	"strings"

	"github.com/carbon-compass/compass/internal/model"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Chunker accumulates whole sentences up to a size budget; each chunk
// seeds the next with its trailing overlap so boundary context survives.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a Chunker. Non-positive arguments fall back to the
// defaults.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// ChunkSections chunks every section in order. Offsets are relative to
// each section's own text.
func (c *Chunker) ChunkSections(sections []model.SectionText) []model.Chunk {
	var chunks []model.Chunk
	for _, section := range sections {
		chunks = append(chunks, c.chunkSection(section)...)
	}
	return chunks
}

func (c *Chunker) chunkSection(section model.SectionText) []model.Chunk {
	sentences := splitSentences(section.Text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []model.Chunk
	current := ""
	start := 0

	emit := func() {
		end := start + len(current)
		chunks = append(chunks, model.Chunk{
			Text:        current,
			StartChar:   start,
			EndChar:     end,
			PageNumbers: section.Pages,
			SectionName: section.Name,
		})
		overlap := current
		if c.overlap < len(current) {
			overlap = current[len(current)-c.overlap:]
		}
		start = end - len(overlap)
		current = overlap
	}

	for _, sentence := range sentences {
		if current != "" && len(current)+1+len(sentence) > c.chunkSize {
			emit()
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	if current != "" {
		end := start + len(current)
		chunks = append(chunks, model.Chunk{
			Text:        current,
			StartChar:   start,
			EndChar:     end,
			PageNumbers: section.Pages,
			SectionName: section.Name,
		})
	}
	return chunks
}

// splitSentences breaks text on sentence-final punctuation. It is
// intentionally naive; abbreviation handling is not worth the cost here.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, ch := range text {
		current.WriteRune(ch)
		switch ch {
		case '.', '!', '?':
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
