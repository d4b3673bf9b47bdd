package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-compass/compass/internal/model"
)

func section(text string) model.SectionText {
	return model.SectionText{Name: "Carbon Emissions", Pages: []int{2, 3}, Text: text}
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("We reduced emissions. Targets were met! Were they verified? Final fragment")
	require.Len(t, sentences, 4)
	assert.Equal(t, "We reduced emissions.", sentences[0])
	assert.Equal(t, "Targets were met!", sentences[1])
	assert.Equal(t, "Were they verified?", sentences[2])
	assert.Equal(t, "Final fragment", sentences[3])
}

func TestChunkShortSectionIsSingleChunk(t *testing.T) {
	c := New(1000, 200)
	chunks := c.ChunkSections([]model.SectionText{section("One short sentence. Another one.")})

	require.Len(t, chunks, 1)
	assert.Equal(t, "One short sentence. Another one.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, len(chunks[0].Text), chunks[0].EndChar)
	assert.Equal(t, "Carbon Emissions", chunks[0].SectionName)
	assert.Equal(t, []int{2, 3}, chunks[0].PageNumbers)
}

func TestChunkOverlap(t *testing.T) {
	// 40 sentences of ~30 chars against a 200-char budget forces splits.
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Emissions fell again this year. ")
	}
	c := New(200, 50)
	chunks := c.ChunkSections([]model.SectionText{section(b.String())})

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, chunk.StartChar, chunk.EndChar)
		assert.Equal(t, chunk.EndChar-chunk.StartChar, len(chunk.Text))
		if i > 0 {
			prev := chunks[i-1]
			// Next chunk starts inside the previous one by the overlap.
			assert.Equal(t, prev.EndChar-chunk.StartChar, len(prev.Text[len(prev.Text)-50:]))
			assert.True(t, strings.HasPrefix(chunk.Text, prev.Text[len(prev.Text)-50:]))
		}
	}
}

func TestChunkEmptySection(t *testing.T) {
	c := New(0, 0)
	assert.Empty(t, c.ChunkSections([]model.SectionText{section("   ")}))
	assert.Empty(t, c.ChunkSections(nil))
}

func TestChunkMultipleSectionsKeepLabels(t *testing.T) {
	c := New(1000, 200)
	chunks := c.ChunkSections([]model.SectionText{
		{Name: "Energy Use", Pages: []int{1}, Text: "Electricity use fell."},
		{Name: "Waste Management", Pages: []int{2}, Text: "Waste to landfill halved."},
	})
	require.Len(t, chunks, 2)
	assert.Equal(t, "Energy Use", chunks[0].SectionName)
	assert.Equal(t, "Waste Management", chunks[1].SectionName)
}
