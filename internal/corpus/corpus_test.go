package corpus

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualta/virtualta/pkg/types"
)

func testChunk(id, total int, text string) types.Chunk {
	return types.Chunk{
		Text:        text,
		Source:      "Course: testing",
		Type:        types.SourceCourseContent,
		ChunkID:     id,
		TotalChunks: total,
	}
}

func TestCorpusAppendBatch(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	err = c.AppendBatch(
		[][]float32{{1, 0}, {0, 1}},
		[]types.Chunk{testChunk(0, 2, "first"), testChunk(1, 2, "second")},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Size())
	assert.Equal(t, 2, c.MetadataLen())

	chunk, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "second", chunk.Text)
}

func TestCorpusAppendBatchLengthMismatch(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	err = c.AppendBatch(
		[][]float32{{1, 0}, {0, 1}},
		[]types.Chunk{testChunk(0, 1, "only one")},
	)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	// Neither store may have been touched.
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0, c.MetadataLen())
}

func TestCorpusGetOutOfRange(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	require.NoError(t, c.AppendBatch(
		[][]float32{{1, 0}},
		[]types.Chunk{testChunk(0, 1, "solo")},
	))

	_, err = c.Get(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = c.Get(1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCorpusSizesStayInLockstep(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.AppendBatch(
			[][]float32{{1, 0}, {0, 1}},
			[]types.Chunk{testChunk(0, 2, "a"), testChunk(1, 2, "b")},
		))
		assert.Equal(t, c.Size(), c.MetadataLen())
	}
	assert.Equal(t, 10, c.Size())
}

func TestCorpusSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "model", "corpus.index")
	metaPath := filepath.Join(dir, "model", "metadata.json")

	c, err := New(2)
	require.NoError(t, err)
	require.NoError(t, c.AppendBatch(
		[][]float32{{1, 0}, {0, 1}},
		[]types.Chunk{
			testChunk(0, 2, "deadlines are on Fridays"),
			testChunk(1, 2, "submit via the portal"),
		},
	))
	require.NoError(t, c.Save(indexPath, metaPath))

	loaded, err := Load(indexPath, metaPath)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())
	assert.Equal(t, 2, loaded.MetadataLen())
	assert.Equal(t, 2, loaded.Dimension())

	hits, err := loaded.Search([]float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	chunk, err := loaded.Get(hits[0].Position)
	require.NoError(t, err)
	assert.Equal(t, "submit via the portal", chunk.Text)
}

func TestLoadRejectsCountMismatch(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "corpus.index")
	metaPath := filepath.Join(dir, "metadata.json")

	c, err := New(2)
	require.NoError(t, err)
	require.NoError(t, c.AppendBatch(
		[][]float32{{1, 0}, {0, 1}},
		[]types.Chunk{testChunk(0, 2, "a"), testChunk(1, 2, "b")},
	))
	require.NoError(t, c.Save(indexPath, metaPath))

	// Overwrite the metadata with a shorter record list, as if the
	// artifacts came from different ingestion runs.
	short := NewMetadata()
	short.Append([]types.Chunk{testChunk(0, 1, "a")})
	require.NoError(t, short.Save(metaPath))

	_, err = Load(indexPath, metaPath)
	assert.ErrorIs(t, err, ErrCorpusLoad)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestLoadMissingArtifacts(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.index"), filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrCorpusLoad)
}

func TestMetadataRoundTripPreservesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	m := NewMetadata()
	m.Append([]types.Chunk{
		{
			Text:        "Topic: GA5 ... Post #1: use gpt-3.5-turbo",
			Source:      "https://discourse.example.com/t/155939",
			Type:        types.SourceDiscoursePost,
			ChunkID:     0,
			TotalChunks: 1,
			TopicID:     155939,
			TopicTitle:  "GA5 Question 8 Clarification",
		},
	})
	require.NoError(t, m.Save(path))

	loaded, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())

	chunk, err := loaded.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(155939), chunk.TopicID)
	assert.Equal(t, "GA5 Question 8 Clarification", chunk.TopicTitle)
	assert.Equal(t, types.SourceDiscoursePost, chunk.Type)
}
