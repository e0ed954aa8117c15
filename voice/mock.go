package voice

import (
	"context"
	"sync"
)

// ScriptedTranscriber replays a fixed sequence of utterances, then reports
// ErrClosed. Used in tests and local development without a microphone.
type ScriptedTranscriber struct {
	mu    sync.Mutex
	lines []string
	next  int
}

// NewScriptedTranscriber creates a transcriber that yields lines in order.
func NewScriptedTranscriber(lines ...string) *ScriptedTranscriber {
	return &ScriptedTranscriber{lines: lines}
}

func (s *ScriptedTranscriber) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.lines) {
		return "", ErrClosed
	}
	line := s.lines[s.next]
	s.next++
	return line, nil
}

// RecordingSpeaker collects everything spoken, in order.
type RecordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

// NewRecordingSpeaker creates an empty recording speaker.
func NewRecordingSpeaker() *RecordingSpeaker {
	return &RecordingSpeaker{}
}

func (s *RecordingSpeaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	return nil
}

// Spoken returns a copy of everything spoken so far.
func (s *RecordingSpeaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}
