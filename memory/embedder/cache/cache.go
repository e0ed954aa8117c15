// Package cache wraps any embedder with a ristretto-backed vector cache.
// Fact flushes and context queries frequently re-embed the same short
// strings; caching them keeps the embedding service off the hot path.
package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/miravoice/mira-go-sdk/memory"
)

// Embedder caches vectors by exact text. The cache is built once at
// construction, lives for the process lifetime, and has no reset path.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// Wrap creates a caching embedder around inner. maxBytes bounds the
// approximate memory spent on cached vectors; <= 0 picks a 16 MiB default.
func Wrap(inner memory.Embedder, maxBytes int64) (*Embedder, error) {
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{inner: inner, cache: c}, nil
}

// Embed returns the cached vector for text, or embeds and caches it.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v.([]float32), nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, vec, int64(4*len(vec)))
	return vec, nil
}

// Dimensions returns the wrapped embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Wait blocks until pending cache writes are applied. Tests use it to make
// hits deterministic.
func (e *Embedder) Wait() {
	e.cache.Wait()
}
