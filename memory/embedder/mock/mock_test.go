package mock

import (
	"context"
	"math"
	"testing"
)

func TestEmbedDeterministic(t *testing.T) {
	e := New(64)

	a, err := e.Embed(context.Background(), "the same text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(context.Background(), "the same text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same text embedded differently at %d: %v vs %v", i, a[i], b[i])
		}
	}

	c, err := e.Embed(context.Background(), "entirely different text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(c[i])
	}
	if math.Abs(dot) > 0.5 {
		t.Errorf("unrelated texts too similar: cos = %v", dot)
	}
}

func TestEmbedUnitVector(t *testing.T) {
	e := New(128)
	if e.Dimensions() != 128 {
		t.Fatalf("Dimensions = %d, want 128", e.Dimensions())
	}

	vec, err := e.Embed(context.Background(), "normalize me")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 128 {
		t.Fatalf("len(vec) = %d, want 128", len(vec))
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Errorf("norm^2 = %v, want 1", norm)
	}
}
