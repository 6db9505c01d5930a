package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualta/virtualta/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		window  int
		overlap int
		wantErr bool
	}{
		{name: "valid defaults", window: 2000, overlap: 200},
		{name: "zero overlap", window: 10, overlap: 0},
		{name: "zero window", window: 0, overlap: 0, wantErr: true},
		{name: "negative window", window: -5, overlap: 0, wantErr: true},
		{name: "negative overlap", window: 10, overlap: -1, wantErr: true},
		{name: "overlap equals window", window: 10, overlap: 10, wantErr: true},
		{name: "overlap exceeds window", window: 10, overlap: 20, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.window, tt.overlap)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, c)
			}
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	c, err := New(100, 10)
	require.NoError(t, err)

	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\t  "))
}

func TestSplitShortInput(t *testing.T) {
	c, err := New(100, 10)
	require.NoError(t, err)

	chunks := c.Split("just a few words")
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a few words", chunks[0])
}

func TestSplitWindowsAndOverlap(t *testing.T) {
	c, err := New(5, 2)
	require.NoError(t, err)

	words := make([]string, 11)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	chunks := c.Split(strings.Join(words, " "))

	// Stride is 3, so windows start at words 0, 3, 6, 9.
	require.Len(t, chunks, 4)
	assert.Equal(t, "w0 w1 w2 w3 w4", chunks[0])
	assert.Equal(t, "w3 w4 w5 w6 w7", chunks[1])
	assert.Equal(t, "w6 w7 w8 w9 w10", chunks[2])
	assert.Equal(t, "w9 w10", chunks[3])
}

func TestSplitCoversAllWords(t *testing.T) {
	c, err := New(7, 3)
	require.NoError(t, err)

	words := make([]string, 53)
	for i := range words {
		words[i] = fmt.Sprintf("tok%03d", i)
	}
	chunks := c.Split(strings.Join(words, " "))
	require.NotEmpty(t, chunks)

	// The last chunk must end at the final word.
	last := strings.Fields(chunks[len(chunks)-1])
	assert.Equal(t, words[len(words)-1], last[len(last)-1])

	// Every word appears somewhere.
	joined := strings.Join(chunks, " ")
	for _, w := range words {
		assert.Contains(t, joined, w)
	}
}

func TestSplitNormalizesWhitespace(t *testing.T) {
	c, err := New(10, 0)
	require.NoError(t, err)

	chunks := c.Split("one\ttwo\n\nthree   four")
	require.Len(t, chunks, 1)
	assert.Equal(t, "one two three four", chunks[0])
}

func TestChunkDocumentTwoChunkScenario(t *testing.T) {
	// A 3000-word document with window 2000 and overlap 200 yields two
	// chunks, the second starting at word 1800.
	c, err := New(2000, 200)
	require.NoError(t, err)

	words := make([]string, 3000)
	for i := range words {
		words[i] = fmt.Sprintf("word%04d", i)
	}
	doc := types.Document{
		Text:   strings.Join(words, " "),
		Source: "Course: data-science",
		Type:   types.SourceCourseContent,
	}

	chunks := c.ChunkDocument(doc)
	require.Len(t, chunks, 2)

	assert.Equal(t, 0, chunks[0].ChunkID)
	assert.Equal(t, 1, chunks[1].ChunkID)
	assert.Equal(t, 2, chunks[0].TotalChunks)
	assert.Equal(t, 2, chunks[1].TotalChunks)

	secondWords := strings.Fields(chunks[1].Text)
	assert.Equal(t, "word1800", secondWords[0])
	assert.Len(t, secondWords, 1200)

	for _, ch := range chunks {
		assert.Equal(t, doc.Source, ch.Source)
		assert.Equal(t, doc.Type, ch.Type)
		assert.NoError(t, ch.Validate())
	}
}

func TestChunkDocumentCarriesTopicFields(t *testing.T) {
	c, err := New(50, 5)
	require.NoError(t, err)

	doc := types.Document{
		Text:       "short forum thread about assignment deadlines",
		Source:     "https://discourse.example.com/t/123",
		Type:       types.SourceDiscoursePost,
		TopicID:    123,
		TopicTitle: "Assignment deadlines",
	}

	chunks := c.ChunkDocument(doc)
	require.Len(t, chunks, 1)
	assert.Equal(t, int64(123), chunks[0].TopicID)
	assert.Equal(t, "Assignment deadlines", chunks[0].TopicTitle)
}

func TestChunkDocumentEmpty(t *testing.T) {
	c, err := New(100, 10)
	require.NoError(t, err)

	assert.Empty(t, c.ChunkDocument(types.Document{Text: ""}))
}
