package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FactStore is a deduplicated, similarity-searchable index of short fact
// strings for one category. Dedup is a single nearest-neighbor lookup per
// Add: if the closest stored fact is at or above the duplicate threshold,
// the new text is dropped.
type FactStore struct {
	category  string
	store     VectorStore
	embedder  Embedder
	threshold float32
}

// NewFactStore creates a fact store over the given collection.
// duplicateThreshold is a cosine similarity in [0,1]; 0.85-0.95 works well
// for sentence embedders.
func NewFactStore(category string, store VectorStore, embedder Embedder, duplicateThreshold float32) *FactStore {
	return &FactStore{
		category:  category,
		store:     store,
		embedder:  embedder,
		threshold: duplicateThreshold,
	}
}

// Add embeds text and persists it with a fresh id unless its nearest stored
// neighbor is at or above the duplicate threshold, in which case nothing is
// written and ErrDuplicateFact is returned. Embedding or store failure
// propagates: a fact that is not stored must not be silently dropped.
func (s *FactStore) Add(ctx context.Context, text string, metadata map[string]string) (string, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed fact: %w", err)
	}

	if s.store.Count() > 0 {
		hits, err := s.store.Query(ctx, embedding, 1)
		if err != nil {
			return "", fmt.Errorf("nearest-neighbor lookup: %w", err)
		}
		if len(hits) > 0 && hits[0].Similarity >= s.threshold {
			log.Printf("[FACTS] %s: skipping near-duplicate (similarity %.3f): %q",
				s.category, hits[0].Similarity, text)
			return "", ErrDuplicateFact
		}
	}

	meta := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["category"] = s.category
	if _, ok := meta["timestamp"]; !ok {
		meta["timestamp"] = time.Now().Format(time.RFC3339)
	}

	id := uuid.New().String()
	if err := s.store.Add(ctx, id, text, meta, embedding); err != nil {
		return "", fmt.Errorf("persist fact: %w", err)
	}

	log.Printf("[FACTS] %s: stored fact %s", s.category, id)
	return id, nil
}

// RelevantInfo returns the k stored facts nearest to the query, one
// "- fact" line each, nearest first. Any failure is logged and absorbed:
// the caller is assembling a prompt and must degrade, not abort.
func (s *FactStore) RelevantInfo(ctx context.Context, query string, k int) string {
	if s.store.Count() == 0 {
		return ""
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[FACTS] %s: embed query failed: %v", s.category, err)
		return ""
	}

	hits, err := s.store.Query(ctx, embedding, k)
	if err != nil {
		log.Printf("[FACTS] %s: query failed: %v", s.category, err)
		return ""
	}

	lines := make([]string, 0, len(hits))
	for _, hit := range hits {
		lines = append(lines, "- "+hit.Text)
	}
	return strings.Join(lines, "\n")
}

// Count returns the number of stored facts in this category.
func (s *FactStore) Count() int {
	return s.store.Count()
}
