package corpus

import (
	"fmt"

	"github.com/virtualta/virtualta/pkg/types"
)

// Corpus pairs the vector index with its metadata store and enforces
// the lockstep invariant at the API boundary: every mutation goes
// through AppendBatch, and every load re-checks the counts.
type Corpus struct {
	index *Index
	meta  *Metadata
}

// New creates an empty corpus for vectors of the given dimension.
func New(dim int) (*Corpus, error) {
	index, err := NewIndex(dim)
	if err != nil {
		return nil, err
	}
	return &Corpus{index: index, meta: NewMetadata()}, nil
}

// AppendBatch appends vectors and their chunk records as one unit.
// A length mismatch is an integrity error and leaves both stores
// untouched.
func (c *Corpus) AppendBatch(vectors [][]float32, chunks []types.Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors, %d chunks", ErrLengthMismatch, len(vectors), len(chunks))
	}
	if err := c.index.Add(vectors); err != nil {
		return err
	}
	c.meta.Append(chunks)
	return nil
}

// Search runs a top-k inner-product search over the index.
func (c *Corpus) Search(query []float32, k int) ([]Hit, error) {
	return c.index.Search(query, k)
}

// Get resolves an index position to its chunk record.
func (c *Corpus) Get(position int) (types.Chunk, error) {
	return c.meta.Get(position)
}

// Size returns the number of indexed entries.
func (c *Corpus) Size() int {
	return c.index.Size()
}

// MetadataLen returns the metadata record count. Always equals Size
// for a healthy corpus; /health reports both so a desync is visible.
func (c *Corpus) MetadataLen() int {
	return c.meta.Len()
}

// Dimension returns the corpus vector dimension.
func (c *Corpus) Dimension() int {
	return c.index.Dimension()
}

// Save persists both companion artifacts. The metadata file is
// written first so a failure cannot leave a fresh index paired with
// stale metadata counts on disk.
func (c *Corpus) Save(indexPath, metadataPath string) error {
	if c.index.Size() != c.meta.Len() {
		return fmt.Errorf("refusing to save: %w: %d vectors, %d records",
			ErrLengthMismatch, c.index.Size(), c.meta.Len())
	}
	if err := c.meta.Save(metadataPath); err != nil {
		return err
	}
	return c.index.Save(indexPath)
}

// Load reads both companion artifacts and verifies they agree. A
// count mismatch means the artifacts are from different ingestion
// runs (or one is truncated) and the corpus is unusable.
func Load(indexPath, metadataPath string) (*Corpus, error) {
	index, err := LoadIndex(indexPath)
	if err != nil {
		return nil, err
	}
	meta, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}
	if index.Size() != meta.Len() {
		return nil, fmt.Errorf("%w: %w: index has %d vectors, metadata has %d records",
			ErrCorpusLoad, ErrLengthMismatch, index.Size(), meta.Len())
	}
	return &Corpus{index: index, meta: meta}, nil
}
