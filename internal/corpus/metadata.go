package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/virtualta/virtualta/pkg/types"
)

// Metadata is the positional store of chunk records. Records are
// addressed only by their ordinal position; there is no secondary key.
type Metadata struct {
	records []types.Chunk
}

// NewMetadata creates an empty metadata store.
func NewMetadata() *Metadata {
	return &Metadata{}
}

// Append adds records in order.
func (m *Metadata) Append(records []types.Chunk) {
	m.records = append(m.records, records...)
}

// Get returns the record at the given position.
func (m *Metadata) Get(position int) (types.Chunk, error) {
	if position < 0 || position >= len(m.records) {
		return types.Chunk{}, fmt.Errorf("%w: position %d, store holds %d records",
			ErrOutOfRange, position, len(m.records))
	}
	return m.records[position], nil
}

// Len returns the number of stored records.
func (m *Metadata) Len() int {
	return len(m.records)
}

// Save writes the metadata artifact as a JSON array, via a temporary
// sibling file renamed into place.
func (m *Metadata) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(m.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".metadata-*")
	if err != nil {
		return fmt.Errorf("create temp metadata file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metadata file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace metadata file: %w", err)
	}
	return nil
}

// LoadMetadata reads a metadata artifact written by Save.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open metadata: %v", ErrCorpusLoad, err)
	}

	var records []types.Chunk
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse metadata: %v", ErrCorpusLoad, err)
	}

	return &Metadata{records: records}, nil
}
