package llm

import (
	"context"
	"errors"
	"testing"
)

type countingEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.vec, nil
}

func TestCachingEmbedderHit(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, 0.2}}
	cached, err := NewCachingEmbedder(inner, 8)
	if err != nil {
		t.Fatalf("NewCachingEmbedder failed: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		vec, err := cached.Embed(ctx, "위로")
		if err != nil {
			t.Fatalf("Embed failed: %v", err)
		}
		if len(vec) != 2 {
			t.Fatalf("vector size = %d, want 2", len(vec))
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", inner.calls)
	}
	if cached.Len() != 1 {
		t.Errorf("cache length = %d, want 1", cached.Len())
	}
}

func TestCachingEmbedderDistinctKeys(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}}
	cached, _ := NewCachingEmbedder(inner, 8)

	ctx := context.Background()
	_, _ = cached.Embed(ctx, "위로")
	_, _ = cached.Embed(ctx, "불안")
	if inner.calls != 2 {
		t.Errorf("inner embedder called %d times, want 2", inner.calls)
	}
}

func TestCachingEmbedderErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("backend down")}
	cached, _ := NewCachingEmbedder(inner, 8)

	ctx := context.Background()
	if _, err := cached.Embed(ctx, "위로"); err == nil {
		t.Fatal("expected error, got nil")
	}

	inner.err = nil
	inner.vec = []float32{0.5}
	vec, err := cached.Embed(ctx, "위로")
	if err != nil {
		t.Fatalf("Embed after recovery failed: %v", err)
	}
	if len(vec) != 1 {
		t.Errorf("vector size = %d, want 1", len(vec))
	}
	if inner.calls != 2 {
		t.Errorf("inner embedder called %d times, want 2", inner.calls)
	}
}

func TestCachingEmbedderEviction(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}}
	cached, _ := NewCachingEmbedder(inner, 2)

	ctx := context.Background()
	_, _ = cached.Embed(ctx, "a")
	_, _ = cached.Embed(ctx, "b")
	_, _ = cached.Embed(ctx, "c")
	if cached.Len() != 2 {
		t.Errorf("cache length = %d, want 2", cached.Len())
	}
	// "a" was evicted, so this is a fresh call.
	_, _ = cached.Embed(ctx, "a")
	if inner.calls != 4 {
		t.Errorf("inner embedder called %d times, want 4", inner.calls)
	}
}
