package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/roomlens/backend/internal/domain"
	"github.com/rs/zerolog"
)

var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// CachingEmbedder memoizes query embeddings in a CacheRepository.
// Cache failures are logged and never fail the embedding call.
type CachingEmbedder struct {
	next   domain.Embedder
	cache  domain.CacheRepository
	ttl    time.Duration
	logger zerolog.Logger
	hits   func()
	misses func()
}

// NewCachingEmbedder wraps next with a cache. A zero ttl defaults to 30 days.
func NewCachingEmbedder(next domain.Embedder, cache domain.CacheRepository, ttl time.Duration, logger zerolog.Logger) *CachingEmbedder {
	if ttl == 0 {
		ttl = 720 * time.Hour
	}
	return &CachingEmbedder{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		hits:   func() {},
		misses: func() {},
	}
}

// WithCounters sets hit and miss callbacks (used for metrics)
func (e *CachingEmbedder) WithCounters(hit, miss func()) *CachingEmbedder {
	if hit != nil {
		e.hits = hit
	}
	if miss != nil {
		e.misses = miss
	}
	return e
}

// Embed returns the cached vector for text or computes and stores it
func (e *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := embeddingCacheKey(text)

	if value, err := e.cache.Get(ctx, key); err == nil {
		if vec, ok := toFloat32s(value); ok {
			e.hits()
			return vec, nil
		}
	}
	e.misses()

	vec, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Set(ctx, key, vec, e.ttl); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("failed to cache embedding")
	}

	return vec, nil
}

// EmbedBatch bypasses the cache
func (e *CachingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.next.EmbedBatch(ctx, texts)
}

// embeddingCacheKey creates a normalized cache key.
// Format: "embedding:{normalized_text}". Case is preserved because embedding
// models are case sensitive; only surrounding whitespace is collapsed.
func embeddingCacheKey(text string) string {
	return "embedding:" + normalizeForCacheKey(text)
}

// normalizeForCacheKey collapses whitespace and trims the string
func normalizeForCacheKey(s string) string {
	return strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(s, " "))
}

// toFloat32s converts a cached value back into a vector.
// Values that went through JSON come back as []interface{} of float64.
func toFloat32s(value interface{}) ([]float32, bool) {
	switch v := value.(type) {
	case []float32:
		return v, true
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return out, true
	case []interface{}:
		out := make([]float32, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, false
			}
			out[i] = float32(f)
		}
		return out, true
	default:
		return nil, false
	}
}
