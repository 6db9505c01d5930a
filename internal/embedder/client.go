package embedder

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

const (
	// MaxAttempts is the total number of provider calls allowed for one
	// text when the provider keeps reporting rate limits.
	MaxAttempts = 3

	// BackoffStep is the base wait between rate-limited attempts; the
	// wait grows linearly (step, 2*step, ...).
	BackoffStep = 10 * time.Second

	// OversizeChars is the input length above which a non-rate-limit
	// failure triggers the split-and-average fallback.
	OversizeChars = 10000

	// MaxSplitDepth caps the recursive midpoint splitting. Halving
	// OversizeChars-sized inputs this many times reaches texts far
	// below any provider limit, so deeper recursion means something
	// else is wrong.
	MaxSplitDepth = 8
)

// ClientConfig tunes the embedding policy. Zero values select the
// defaults above.
type ClientConfig struct {
	MaxAttempts   int
	BackoffStep   time.Duration
	OversizeChars int
	MaxSplitDepth int
	CacheSize     int

	// RatePerSecond throttles outgoing provider calls when positive,
	// staying under provider quotas instead of relying on retries
	// alone. Zero disables the limiter.
	RatePerSecond float64
}

// Client wraps a Provider with normalization, rate-limit retry, and
// the oversized-input fallback.
type Client struct {
	provider      Provider
	cache         *Cache
	limiter       *rate.Limiter
	maxAttempts   int
	backoffStep   time.Duration
	oversizeChars int
	maxSplitDepth int
}

// NewClient creates a policy-wrapped embedding client.
func NewClient(provider Provider, cfg ClientConfig) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = MaxAttempts
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = BackoffStep
	}
	if cfg.OversizeChars <= 0 {
		cfg.OversizeChars = OversizeChars
	}
	if cfg.MaxSplitDepth <= 0 {
		cfg.MaxSplitDepth = MaxSplitDepth
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Client{
		provider:      provider,
		cache:         NewCache(cfg.CacheSize),
		limiter:       limiter,
		maxAttempts:   cfg.MaxAttempts,
		backoffStep:   cfg.BackoffStep,
		oversizeChars: cfg.OversizeChars,
		maxSplitDepth: cfg.MaxSplitDepth,
	}
}

// Dimension returns the underlying provider's output dimension.
func (c *Client) Dimension() int {
	return c.provider.Dimension()
}

// Embed returns the unit-normalized embedding of text, applying the
// retry and oversized-input policy.
func (c *Client) Embed(ctx context.Context, text string, task Task) ([]float32, error) {
	return c.embed(ctx, text, task, 0)
}

func (c *Client) embed(ctx context.Context, text string, task Task, depth int) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	key := cacheKey(text, task)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	raw, err := c.callWithRetry(ctx, text, task)
	if err != nil {
		// A non-rate-limit failure on oversized input falls back to
		// embedding the two halves and averaging them. Rate limits are
		// never split: half the text costs the same quota.
		if !errors.Is(err, ErrRateLimited) && len(text) > c.oversizeChars {
			return c.embedHalves(ctx, text, task, depth, err)
		}
		return nil, err
	}

	vec, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize embedding: %w", err)
	}

	c.cache.Set(key, vec)
	return vec, nil
}

// callWithRetry issues up to maxAttempts provider calls, waiting
// backoffStep*attempt between rate-limited tries. Any other failure
// propagates immediately.
func (c *Client) callWithRetry(ctx context.Context, text string, task Task) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vec, err := c.provider.Embed(ctx, text, task)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		if attempt == c.maxAttempts {
			break
		}

		wait := time.Duration(attempt) * c.backoffStep
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("rate limit retries exhausted after %d attempts: %w", c.maxAttempts, lastErr)
}

// embedHalves splits text near its midpoint, embeds each half with
// the same policy, and returns the re-normalized element-wise average.
// The result approximates the whole-text embedding; it is not exact.
func (c *Client) embedHalves(ctx context.Context, text string, task Task, depth int, cause error) ([]float32, error) {
	if depth >= c.maxSplitDepth {
		return nil, fmt.Errorf("%w (depth %d): %v", ErrSplitTooDeep, depth, cause)
	}

	// The split point must not land inside a multi-byte rune, or both
	// halves carry invalid UTF-8 to the provider.
	mid := len(text) / 2
	for mid < len(text) && !utf8.RuneStart(text[mid]) {
		mid++
	}
	left, err := c.embed(ctx, text[:mid], task, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := c.embed(ctx, text[mid:], task, depth+1)
	if err != nil {
		return nil, err
	}
	if len(left) != len(right) {
		return nil, fmt.Errorf("%w: half embeddings disagree on dimension (%d vs %d)",
			ErrProviderFailed, len(left), len(right))
	}

	avg := make([]float32, len(left))
	for i := range left {
		avg[i] = (left[i] + right[i]) / 2
	}

	vec, err := Normalize(avg)
	if err != nil {
		return nil, fmt.Errorf("normalize averaged embedding: %w", err)
	}

	c.cache.Set(cacheKey(text, task), vec)
	return vec, nil
}
