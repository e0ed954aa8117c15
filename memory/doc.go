// Package memory implements the tiered conversational memory engine.
//
// Dialogue turns are compressed through successive levels of abstraction:
// raw turns in a fixed-capacity buffer, batch digests in a mid-term summary
// window, and durable deduplicated facts in per-category vector indexes.
// On every query the manager serves a bounded, relevance-ranked context
// blob to the response generator.
//
// Architecture:
//   - ConversationManager: owns the buffer and window, triggers half-drain
//     compaction and long-term persistence, assembles context
//   - LLMSummarizer: turns -> digest via a structured generation delegate,
//     degrading to a sentinel digest on failure
//   - FactStore: deduplicated similarity search over a VectorStore
//
// Pluggable boundaries (see memory.go): Embedder, VectorStore,
// StructuredClient, MetricsHook, AuditSink.
//
// Local implementations:
//   - store/chromem: embedded on-disk vector collections (chromem-go)
//   - embedder/ollama: HTTP embeddings from a local Ollama server
//   - embedder/onnx: offline MiniLM embeddings (build tag "onnx")
//   - embedder/mock: deterministic embeddings for tests
package memory
