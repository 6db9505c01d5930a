package corpus

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Errors shared across the corpus package.
var (
	ErrCorpusLoad        = errors.New("corpus artifacts unreadable")
	ErrLengthMismatch    = errors.New("vector count does not match metadata count")
	ErrOutOfRange        = errors.New("position out of range")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Index artifact format: magic, format version, dimension, vector
// count, then count*dimension little-endian float32 values.
const (
	indexMagic   = "VTAI"
	indexVersion = uint32(1)
)

// Hit is one search result: an index position and its inner-product
// score against the query.
type Hit struct {
	Position int
	Score    float32
}

// Index is a flat (exact, brute-force) inner-product index. Vectors
// are stored in one contiguous slice, so a search is a single pass of
// dot products over rows.
type Index struct {
	dim  int
	data []float32
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	return &Index{dim: dim}, nil
}

// Add appends vectors in order. All-or-nothing: dimensions are
// validated before anything is stored.
func (ix *Index) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				ErrDimensionMismatch, i, len(v), ix.dim)
		}
	}
	for _, v := range vectors {
		ix.data = append(ix.data, v...)
	}
	return nil
}

// Size returns the number of stored vectors.
func (ix *Index) Size() int {
	return len(ix.data) / ix.dim
}

// Dimension returns the index's vector dimension.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Search returns up to k positions ranked by inner-product score,
// descending. Ties keep ascending position order.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	n := ix.Size()
	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		row := ix.data[i*ix.dim : (i+1)*ix.dim]
		var score float32
		for j, q := range query {
			score += row[j] * q
		}
		hits[i] = Hit{Position: i, Score: score}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Save writes the index artifact. The file is written to a temporary
// sibling and renamed into place so a crashed save never leaves a
// truncated artifact behind.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(indexMagic); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write index header: %w", err)
	}
	header := []uint32{indexVersion, uint32(ix.dim), uint32(ix.Size())}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write index header: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, ix.data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write index vectors: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// LoadIndex reads an index artifact written by Save.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open index: %v", ErrCorpusLoad, err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := bufio.NewReader(f)
	magic := make([]byte, len(indexMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: read index header: %v", ErrCorpusLoad, err)
	}
	if string(magic) != indexMagic {
		return nil, fmt.Errorf("%w: %s is not an index artifact", ErrCorpusLoad, path)
	}

	var version, dim, count uint32
	for _, dst := range []*uint32{&version, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("%w: read index header: %v", ErrCorpusLoad, err)
		}
	}
	if version != indexVersion {
		return nil, fmt.Errorf("%w: unsupported index version %d", ErrCorpusLoad, version)
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: index has zero dimension", ErrCorpusLoad)
	}

	data := make([]float32, int(dim)*int(count))
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: read index vectors: %v", ErrCorpusLoad, err)
	}
	// Anything past the declared vectors means the artifact is corrupt.
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data in index artifact", ErrCorpusLoad)
	}

	return &Index{dim: int(dim), data: data}, nil
}
