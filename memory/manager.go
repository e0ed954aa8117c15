package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/miravoice/mira-go-sdk/core"
)

// EndConfirmation is returned by EndSession once the final flush completes.
const EndConfirmation = "Conversation ended and stored successfully."

// sessionState tracks the manager's lifecycle within one conversation.
type sessionState int

const (
	stateActive sessionState = iota
	stateEnding
	stateEnded
)

// Config holds the memory tuning knobs, all resolved at construction.
type Config struct {
	// BufferSize is the turn-buffer capacity. Reaching it triggers a
	// half-drain: the oldest BufferSize/2 turns are summarized.
	BufferSize int

	// SummarySize is the summary-window capacity. Inserting beyond it
	// evicts the oldest digest into long-term persistence.
	SummarySize int

	// RecentTurns is how many buffered turns the context blob includes.
	RecentTurns int

	// FactsPerQuery is how many facts each category contributes per query.
	FactsPerQuery int
}

// DefaultConfig mirrors the tuning the system was designed around.
var DefaultConfig = Config{
	BufferSize:    10,
	SummarySize:   5,
	RecentTurns:   7,
	FactsPerQuery: 3,
}

func (c Config) withDefaults() Config {
	d := DefaultConfig
	if c.BufferSize > 0 {
		d.BufferSize = c.BufferSize
	}
	if c.SummarySize > 0 {
		d.SummarySize = c.SummarySize
	}
	if c.RecentTurns > 0 {
		d.RecentTurns = c.RecentTurns
	}
	if c.FactsPerQuery > 0 {
		d.FactsPerQuery = c.FactsPerQuery
	}
	return d
}

// ConversationManager owns the tiered memory of one conversation session:
// the short-term turn buffer, the mid-term summary window, and the flow of
// evicted digests into the long-term fact stores. It is single-owner,
// single-threaded state; the conversation loop is its only caller, so no
// locking is needed.
type ConversationManager struct {
	cfg        Config
	summarizer Summarizer

	experiential Facts
	personal     Facts

	buffer []core.Turn   // oldest first
	window []core.Digest // newest first

	state   sessionState
	metrics MetricsHook
	audit   AuditSink

	// Facts freshly persisted this session, for the end-of-session audit
	// record. Duplicate-skipped facts are processed but not listed here.
	storedExperiential []string
	storedPersonal     []string
}

// Option configures a ConversationManager.
type Option func(*ConversationManager)

// WithMetrics attaches a metrics hook.
func WithMetrics(h MetricsHook) Option {
	return func(m *ConversationManager) { m.metrics = h }
}

// WithAudit attaches a side-channel diagnostics sink.
func WithAudit(a AuditSink) Option {
	return func(m *ConversationManager) { m.audit = a }
}

// NewConversationManager creates the manager for one session. The fact
// stores outlive the session; the buffer and window do not.
func NewConversationManager(cfg Config, summarizer Summarizer, experiential, personal Facts, opts ...Option) *ConversationManager {
	m := &ConversationManager{
		cfg:          cfg.withDefaults(),
		summarizer:   summarizer,
		experiential: experiential,
		personal:     personal,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ProcessTurn appends one turn to the buffer. When the buffer reaches
// capacity the oldest half is drained and summarized; summarization of the
// drained batch completes (or degrades to the sentinel) before the digest
// enters the window, so batches land in order.
func (m *ConversationManager) ProcessTurn(ctx context.Context, user, ai string) error {
	if m.state == stateEnded {
		return ErrSessionEnded
	}

	m.buffer = append(m.buffer, core.Turn{User: user, AI: ai})
	if m.metrics != nil {
		m.metrics.TurnProcessed()
	}

	if len(m.buffer) >= m.cfg.BufferSize {
		m.drainHalf(ctx)
	}
	if m.metrics != nil {
		m.metrics.Depths(len(m.buffer), len(m.window))
	}
	return nil
}

// drainHalf removes the oldest half of the buffer and summarizes it.
// Draining half rather than all bounds summarization cost while keeping
// recent context resident.
func (m *ConversationManager) drainHalf(ctx context.Context) {
	half := len(m.buffer) / 2
	if half == 0 {
		return
	}

	batch := make([]core.Turn, half)
	copy(batch, m.buffer[:half])
	remaining := copy(m.buffer, m.buffer[half:])
	m.buffer = m.buffer[:remaining]

	log.Printf("[MEMORY] draining %d turns for summarization (%d retained)", half, remaining)
	m.ingestDigest(ctx, m.summarize(ctx, batch))
}

// summarize runs the summarizer with timing and audit side effects.
func (m *ConversationManager) summarize(ctx context.Context, batch []core.Turn) core.Digest {
	start := time.Now()
	digest := m.summarizer.Summarize(ctx, batch)
	if m.metrics != nil {
		m.metrics.SummarizeObserved(time.Since(start), digest.Failed())
	}
	if m.audit != nil {
		m.audit.RecordSummary(digest)
	}
	return digest
}

// ingestDigest inserts a digest at the front of the window (newest first).
// Inserting beyond capacity evicts exactly one digest, the oldest, which is
// then offered to long-term persistence.
func (m *ConversationManager) ingestDigest(ctx context.Context, digest core.Digest) {
	m.window = append([]core.Digest{digest}, m.window...)
	if len(m.window) > m.cfg.SummarySize {
		oldest := m.window[len(m.window)-1]
		m.window = m.window[:len(m.window)-1]
		m.persistIfWorthy(ctx, oldest)
	}
}

// persistIfWorthy flushes a digest's facts into the long-term stores.
// Sentinel digests are skipped entirely: that invariant is what keeps
// summarization failures out of the knowledge base.
func (m *ConversationManager) persistIfWorthy(ctx context.Context, digest core.Digest) {
	if digest.Failed() {
		log.Printf("[MEMORY] skipping persistence of failed digest")
		return
	}

	m.storedExperiential = append(m.storedExperiential,
		m.flushFacts(ctx, m.experiential, CategoryExperiential, digest.ExperientialFacts)...)
	m.storedPersonal = append(m.storedPersonal,
		m.flushFacts(ctx, m.personal, CategoryPersonal, digest.PersonalFacts)...)
}

// flushFacts adds each non-blank fact to the store and returns the ones
// that were freshly persisted. Duplicate skips count as processed; store
// failures are loud but do not abort the flush of the remaining facts.
func (m *ConversationManager) flushFacts(ctx context.Context, store Facts, category string, facts []string) []string {
	var stored []string
	for _, fact := range facts {
		if strings.TrimSpace(fact) == "" {
			continue
		}
		_, err := store.Add(ctx, fact, nil)
		switch {
		case errors.Is(err, ErrDuplicateFact):
			if m.metrics != nil {
				m.metrics.FactDeduplicated(category)
			}
		case err != nil:
			log.Printf("[MEMORY] failed to persist %s fact: %v", category, err)
		default:
			stored = append(stored, fact)
			if m.metrics != nil {
				m.metrics.FactStored(category)
			}
		}
	}
	return stored
}

// Context assembles the bounded context blob for the response generator:
// recent turns, then window summaries newest-first, then the facts most
// relevant to the query per category. The ordering is a contract - a
// consumer truncating from the end loses the least relevant sections first.
// Dependency failures degrade to empty sections; the four markers are
// always present.
func (m *ConversationManager) Context(ctx context.Context, query string) string {
	start := time.Now()

	recent := make([]string, 0, m.cfg.RecentTurns)
	from := len(m.buffer) - m.cfg.RecentTurns
	if from < 0 {
		from = 0
	}
	for _, turn := range m.buffer[from:] {
		recent = append(recent, fmt.Sprintf("User: %s\nAI: %s", turn.User, turn.AI))
	}

	summaries := make([]string, 0, len(m.window))
	for _, d := range m.window {
		summaries = append(summaries, d.Summary)
	}

	blob := fmt.Sprintf(`--- Current Conversation ---
%s

--- Past Conversation Summary ---
%s

--- Relevant Long-Term Experiential Facts ---
%s

--- Relevant Long-Term Personal Facts ---
%s
`,
		strings.Join(recent, "\n"),
		strings.Join(summaries, "\n"),
		m.experiential.RelevantInfo(ctx, query, m.cfg.FactsPerQuery),
		m.personal.RelevantInfo(ctx, query, m.cfg.FactsPerQuery))

	if m.metrics != nil {
		m.metrics.ContextAssembled(time.Since(start))
	}
	if m.audit != nil {
		m.audit.RecordContext(blob)
	}
	return blob
}

// EndSession drains everything still resident: every digest in the window
// is offered to persistence, any unsummarized turns are summarized as one
// final digest (the whole remainder, not half), and both structures are
// cleared. Calling it twice flushes empty structures, which is a no-op; the
// terminal state only forbids further ProcessTurn calls.
func (m *ConversationManager) EndSession(ctx context.Context) string {
	m.state = stateEnding

	for _, d := range m.window {
		m.persistIfWorthy(ctx, d)
	}

	if len(m.buffer) > 0 {
		final := make([]core.Turn, len(m.buffer))
		copy(final, m.buffer)
		m.persistIfWorthy(ctx, m.summarize(ctx, final))
	}

	m.buffer = nil
	m.window = nil

	if m.audit != nil {
		m.audit.RecordFactFlush(m.storedExperiential, m.storedPersonal)
	}

	m.state = stateEnded
	log.Printf("[MEMORY] session ended: %d experiential, %d personal facts stored",
		len(m.storedExperiential), len(m.storedPersonal))
	return EndConfirmation
}

// BufferLen returns the number of turns currently buffered.
func (m *ConversationManager) BufferLen() int { return len(m.buffer) }

// WindowLen returns the number of digests currently in the summary window.
func (m *ConversationManager) WindowLen() int { return len(m.window) }

// StoredFacts returns the facts freshly persisted during this session.
func (m *ConversationManager) StoredFacts() (experiential, personal []string) {
	return append([]string(nil), m.storedExperiential...),
		append([]string(nil), m.storedPersonal...)
}
