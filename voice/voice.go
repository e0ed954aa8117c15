// Package voice defines the speech I/O boundary of the conversation loop.
// Microphone capture, noise reduction, transcription, and text-to-speech
// are external collaborators; the engine only sees transcripts in and
// speakable text out.
package voice

import (
	"context"
	"errors"
)

// ErrClosed signals that the input source has no more utterances. The
// conversation loop treats it as a session end request.
var ErrClosed = errors.New("voice: input closed")

// Transcriber captures one user utterance and returns its transcript.
// An empty transcript means nothing usable was heard; the loop listens
// again.
type Transcriber interface {
	Listen(ctx context.Context) (string, error)
}

// Speaker renders one segment of assistant output as speech.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}
