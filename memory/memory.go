package memory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/miravoice/mira-go-sdk/core"
)

// Fact categories. Each category is backed by its own collection, so
// duplicate suppression never crosses category boundaries.
const (
	CategoryExperiential = "experiential"
	CategoryPersonal     = "personal"
)

var (
	// ErrDuplicateFact is returned by Facts.Add when the text is a
	// near-duplicate of an already stored fact. The call is a no-op.
	ErrDuplicateFact = errors.New("memory: near-duplicate fact skipped")

	// ErrSessionEnded is returned when a turn arrives after EndSession.
	ErrSessionEnded = errors.New("memory: session already ended")
)

// Embedder converts text to a fixed-length vector.
// Implementations: mock (testing), ollama (HTTP service), onnx (local model).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// SearchResult is one ranked hit from a vector collection, nearest first.
// Similarity is cosine similarity, i.e. 1 - cosine distance.
type SearchResult struct {
	ID         string
	Text       string
	Metadata   map[string]string
	Similarity float32
}

// VectorStore is one named persistent vector collection. The conversation
// core only ever appends to it; update and delete are out of scope.
type VectorStore interface {
	// Add persists a document with its precomputed embedding.
	Add(ctx context.Context, id, text string, metadata map[string]string, embedding []float32) error

	// Query returns up to k nearest documents for the embedding.
	Query(ctx context.Context, embedding []float32, k int) ([]SearchResult, error)

	// Count returns the number of stored documents.
	Count() int
}

// Facts is the deduplicated long-term fact index the manager persists into
// and queries. The concrete implementation is FactStore; tests substitute
// recording fakes.
type Facts interface {
	// Add stores a fact unless a near-duplicate already exists, in which
	// case it returns ErrDuplicateFact and stores nothing.
	Add(ctx context.Context, text string, metadata map[string]string) (string, error)

	// RelevantInfo returns the k facts most relevant to the query as
	// formatted lines. Failures degrade to an empty result, never an error:
	// a partial context is better than an aborted turn.
	RelevantInfo(ctx context.Context, query string, k int) string

	// Count returns the number of stored facts.
	Count() int
}

// Summarizer converts an ordered batch of turns into exactly one digest.
// Implementations never fail: any delegate error degrades to the sentinel
// digest, so callers need no error channel.
type Summarizer interface {
	Summarize(ctx context.Context, turns []core.Turn) core.Digest
}

// StructuredClient is the structured-generation delegate used by the
// summarizer. The response must conform to the supplied JSON schema; it is
// validated at the boundary before a digest is constructed from it.
type StructuredClient interface {
	GenerateStructured(ctx context.Context, prompt string, schema map[string]interface{}) (json.RawMessage, error)
}

// MetricsHook receives memory-engine observations. All methods must be
// cheap and non-blocking; the manager calls them inline.
type MetricsHook interface {
	TurnProcessed()
	SummarizeObserved(d time.Duration, failed bool)
	FactStored(category string)
	FactDeduplicated(category string)
	ContextAssembled(d time.Duration)
	Depths(buffer, window int)
}

// AuditSink receives side-channel diagnostics: transcripts, digests, the
// assembled context blobs, and the end-of-session fact flush. Sinks are
// best-effort; they are not part of the memory contract.
type AuditSink interface {
	RecordTranscript(line string)
	RecordSummary(d core.Digest)
	RecordContext(blob string)
	RecordFactFlush(experiential, personal []string)
}
