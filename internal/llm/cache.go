package llm

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingEmbedder fronts an Embedder with a bounded LRU cache keyed by the
// exact input text. Expanded theme queries repeat heavily across requests,
// so hits skip the embedding round-trip entirely.
type CachingEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachingEmbedder wraps inner with an LRU cache of the given capacity.
func NewCachingEmbedder(inner Embedder, capacity int) (*CachingEmbedder, error) {
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &CachingEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, or computes and caches it.
// Errors are never cached.
func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, vec)
	return vec, nil
}

// Len reports the number of cached embeddings, for observability.
func (c *CachingEmbedder) Len() int {
	return c.cache.Len()
}
