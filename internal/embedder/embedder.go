package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyText      = errors.New("text cannot be empty")
	ErrRateLimited    = errors.New("embedding provider rate limited")
	ErrProviderFailed = errors.New("embedding provider failed")
	ErrZeroVector     = errors.New("embedding has zero norm")
	ErrNoAPIKey       = errors.New("no API key configured")
	ErrSplitTooDeep   = errors.New("oversized input split depth exceeded")
)

// Task hints the provider at how the embedding will be used. Both
// tasks map into the same representation space, so document and query
// vectors remain comparable.
type Task string

const (
	TaskDocument Task = "retrieval_document"
	TaskQuery    Task = "retrieval_query"
)

// Provider is a raw embedding API client. Implementations classify
// quota failures by wrapping ErrRateLimited so the Client's retry
// policy can distinguish them from other failures.
type Provider interface {
	// Embed returns the provider's raw (not necessarily normalized)
	// vector for the given text.
	Embed(ctx context.Context, text string, task Task) ([]float32, error)

	// Dimension returns the provider's output dimension.
	Dimension() int

	// Name returns the provider name.
	Name() string
}

// Cache provides in-memory LRU caching of normalized vectors keyed by
// content hash.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates an embedding cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached vector. A copy is returned so
// caller mutations cannot corrupt the cached value.
func (c *Cache) Get(key string) ([]float32, bool) {
	vec, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a vector, evicting the least recently used entry when at
// capacity.
func (c *Cache) Set(key string, vec []float32) {
	c.cache.Add(key, vec)
}

// Size returns the current cache size.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// cacheKey hashes text together with its task so document and query
// embeddings of the same text never collide.
func cacheKey(text string, task Task) string {
	h := sha256.Sum256([]byte(string(task) + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// Normalize scales a vector to unit L2 length. A zero-norm vector is
// a degenerate embedding and is reported as an error rather than
// passed through.
func Normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	if sum == 0 {
		return nil, ErrZeroVector
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = val / norm
	}
	return out, nil
}
