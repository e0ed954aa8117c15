// Package engine runs the conversation loop: listen, assemble memory
// context, generate a persona-framed reply, speak it, and feed the turn
// back into memory.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/miravoice/mira-go-sdk/core"
	"github.com/miravoice/mira-go-sdk/memory"
	"github.com/miravoice/mira-go-sdk/voice"
)

// endFlushTimeout bounds the best-effort memory flush when the loop exits,
// including on cancellation.
const endFlushTimeout = 30 * time.Second

// Generator is the free-text generation delegate for the response path.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// VisionTool answers queries about what the camera currently sees. It is
// an external collaborator; the engine only routes visual queries to it.
type VisionTool interface {
	Describe(ctx context.Context, query string) (string, error)
}

// Config holds the conversational settings of one assistant.
type Config struct {
	// AIName is the assistant's spoken name (default "Mira").
	AIName string

	// Personality selects a core.Personalities preset; unknown names fall
	// back to the default preset.
	Personality string

	// MaxResponseWords bounds reply length for speakability (default 70).
	MaxResponseWords int

	// Greeting is spoken when the loop starts; empty builds one from
	// AIName.
	Greeting string
}

func (c Config) withDefaults() Config {
	if c.AIName == "" {
		c.AIName = "Mira"
	}
	if c.Personality == "" {
		c.Personality = core.DefaultPersonality
	}
	if c.MaxResponseWords == 0 {
		c.MaxResponseWords = 70
	}
	if c.Greeting == "" {
		c.Greeting = fmt.Sprintf("Hi, I am %s, your helpful assistant. How can I assist you today?", c.AIName)
	}
	return c
}

// Engine drives one conversation session. It is the only caller of the
// memory manager, which keeps the memory structures single-threaded.
type Engine struct {
	cfg Config
	gen Generator
	mem *memory.ConversationManager

	transcriber voice.Transcriber
	speaker     voice.Speaker
	vision      VisionTool
	audit       memory.AuditSink
}

// Option configures the engine.
type Option func(*Engine)

// WithVoice attaches the speech I/O collaborators required by Run.
func WithVoice(t voice.Transcriber, s voice.Speaker) Option {
	return func(e *Engine) {
		e.transcriber = t
		e.speaker = s
	}
}

// WithVision attaches a camera tool for visual queries.
func WithVision(v VisionTool) Option {
	return func(e *Engine) { e.vision = v }
}

// WithAudit attaches a transcript sink.
func WithAudit(a memory.AuditSink) Option {
	return func(e *Engine) { e.audit = a }
}

// New creates an engine over a generator and a session's memory manager.
func New(cfg Config, gen Generator, mem *memory.ConversationManager, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg.withDefaults(),
		gen: gen,
		mem: mem,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Respond answers one user utterance: memory context in, reply out, turn
// recorded. This is the text entry point shared by the voice loop and the
// gateway.
func (e *Engine) Respond(ctx context.Context, userText string) (string, error) {
	contextBlob := e.mem.Context(ctx, userText)

	system := core.SystemMessage(e.cfg.Personality, e.cfg.AIName, e.cfg.MaxResponseWords)
	prompt := fmt.Sprintf(`Here is the conversation history and relevant information:
%s
User's current query: %s

Answer the user's query directly and concisely, like a human.`, contextBlob, userText)

	reply, err := e.gen.Generate(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	if err := e.mem.ProcessTurn(ctx, userText, reply); err != nil {
		return "", fmt.Errorf("record turn: %w", err)
	}
	return reply, nil
}

// EndSession flushes the session's memory and returns the confirmation.
func (e *Engine) EndSession(ctx context.Context) string {
	return e.mem.EndSession(ctx)
}

// Run executes the voice loop until the input closes, a farewell is heard,
// or ctx is canceled. End-of-session memory flushing always runs to
// completion (bounded by endFlushTimeout), even on cancellation.
func (e *Engine) Run(ctx context.Context) error {
	if e.transcriber == nil || e.speaker == nil {
		return fmt.Errorf("engine: voice loop requires a transcriber and a speaker")
	}

	e.speak(ctx, e.cfg.Greeting)

	for ctx.Err() == nil {
		again, err := e.handleTurn(ctx)
		if err != nil {
			log.Printf("[ENGINE] turn failed: %v", err)
		}
		if !again {
			break
		}
	}

	endCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), endFlushTimeout)
	defer cancel()
	log.Printf("[ENGINE] %s", e.mem.EndSession(endCtx))
	return nil
}

// handleTurn processes one listen/respond/speak cycle. It returns false
// when the loop should stop; errors are degradations, not stop signals.
func (e *Engine) handleTurn(ctx context.Context) (bool, error) {
	input, err := e.transcriber.Listen(ctx)
	if errors.Is(err, voice.ErrClosed) {
		return false, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return true, fmt.Errorf("listen: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return true, nil
	}
	if e.audit != nil {
		e.audit.RecordTranscript(input)
	}

	if isFarewell(input) {
		e.speak(ctx, farewellReply())
		return false, nil
	}

	if e.vision != nil && isVisualQuery(input) {
		description, err := e.vision.Describe(ctx, input)
		if err != nil {
			e.speak(ctx, "I couldn't get a look at that right now.")
			return true, fmt.Errorf("vision: %w", err)
		}
		if err := e.mem.ProcessTurn(ctx, input, description); err != nil {
			return true, fmt.Errorf("record turn: %w", err)
		}
		e.speakChunks(ctx, description)
		return true, nil
	}

	reply, err := e.Respond(ctx, input)
	if err != nil {
		e.speak(ctx, "Sorry, I had trouble thinking that through. Can you say it again?")
		return true, err
	}
	e.speakChunks(ctx, reply)
	return true, nil
}

// speakChunks renders a reply as human-paced segments.
func (e *Engine) speakChunks(ctx context.Context, reply string) {
	for _, chunk := range chunkReply(reply) {
		e.speak(ctx, chunk)
	}
}

func (e *Engine) speak(ctx context.Context, text string) {
	if err := e.speaker.Speak(ctx, text); err != nil {
		log.Printf("[ENGINE] speak failed: %v", err)
	}
}
