package types

import "errors"

// SourceType identifies the kind of document a chunk was extracted from.
type SourceType string

const (
	SourceCourseContent SourceType = "course_content"
	SourceDiscoursePost SourceType = "discourse_post"
)

// Document is one logical source document handed to the ingestion
// pipeline: plain text plus the provenance fields that every chunk cut
// from it will carry.
type Document struct {
	Text   string
	Source string
	Type   SourceType

	// Forum-specific fields, zero for course content.
	TopicID    int64
	TopicTitle string
}

// Chunk is a contiguous word-window extracted from one document,
// together with its provenance and position within the parent.
type Chunk struct {
	Text        string     `json:"text"`
	Source      string     `json:"source"`
	Type        SourceType `json:"type"`
	ChunkID     int        `json:"chunk_id"`
	TotalChunks int        `json:"total_chunks"`

	TopicID    int64  `json:"topic_id,omitempty"`
	TopicTitle string `json:"topic_title,omitempty"`
}

// Validate checks the structural invariants of a chunk record.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.Source == "" {
		return errors.New("chunk source cannot be empty")
	}
	switch c.Type {
	case SourceCourseContent, SourceDiscoursePost:
	default:
		return errors.New("invalid source type")
	}
	if c.ChunkID < 0 || c.TotalChunks <= 0 {
		return errors.New("chunk position must be non-negative with a positive total")
	}
	if c.ChunkID >= c.TotalChunks {
		return errors.New("chunk_id must be less than total_chunks")
	}
	return nil
}

// RetrievedChunk pairs a chunk with its similarity to a query vector.
type RetrievedChunk struct {
	Chunk
	Similarity float32
}
