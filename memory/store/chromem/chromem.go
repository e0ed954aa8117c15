// Package chromem backs memory.VectorStore with chromem-go, a pure Go
// embedded vector database with optional on-disk persistence.
package chromem

import (
	"context"
	"fmt"
	"log"

	chromem "github.com/philippgille/chromem-go"

	"github.com/miravoice/mira-go-sdk/memory"
)

// Store owns one chromem database and hands out named collections. With a
// persistence directory every write is flushed to disk, so collections
// survive process restarts; this is the one resource shared across
// sessions.
type Store struct {
	db *chromem.DB
}

// NewPersistent opens (or creates) an on-disk store rooted at dir.
func NewPersistent(dir string) (*Store, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	return &Store{db: db}, nil
}

// NewEphemeral creates a purely in-memory store, used in tests and local
// development.
func NewEphemeral() *Store {
	return &Store{db: chromem.NewDB()}
}

// Collection returns the named collection, creating it on first use.
// Embeddings are always supplied by the caller, so no embedding function
// is registered with chromem.
func (s *Store) Collection(name string) (*Collection, error) {
	col, err := s.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", name, err)
	}
	return &Collection{name: name, col: col}, nil
}

// Collection adapts one chromem collection to memory.VectorStore.
type Collection struct {
	name string
	col  *chromem.Collection
}

// Add persists a document with its precomputed embedding.
func (c *Collection) Add(ctx context.Context, id, text string, metadata map[string]string, embedding []float32) error {
	err := c.col.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   text,
		Metadata:  metadata,
		Embedding: embedding,
	})
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Query returns up to k nearest documents. chromem rejects nResults larger
// than the collection, so k is clamped; an empty collection yields an empty
// result rather than an error.
func (c *Collection) Query(ctx context.Context, embedding []float32, k int) ([]memory.SearchResult, error) {
	count := c.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := c.col.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", c.name, err)
	}

	log.Printf("[CHROMEM] %s: %d results for k=%d", c.name, len(results), k)
	out := make([]memory.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, memory.SearchResult{
			ID:         r.ID,
			Text:       r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

// Count returns the number of stored documents.
func (c *Collection) Count() int {
	return c.col.Count()
}
