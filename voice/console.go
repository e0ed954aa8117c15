package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// ConsoleTranscriber reads utterances line by line, one Listen per line.
// EOF maps to ErrClosed so a closed stdin ends the session cleanly.
type ConsoleTranscriber struct {
	scanner *bufio.Scanner
}

// NewConsoleTranscriber reads from r, typically os.Stdin.
func NewConsoleTranscriber(r io.Reader) *ConsoleTranscriber {
	return &ConsoleTranscriber{scanner: bufio.NewScanner(r)}
}

func (c *ConsoleTranscriber) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrClosed
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

// ConsoleSpeaker prints segments instead of synthesizing audio.
type ConsoleSpeaker struct {
	w io.Writer
}

// NewConsoleSpeaker writes to w, typically os.Stdout.
func NewConsoleSpeaker(w io.Writer) *ConsoleSpeaker {
	return &ConsoleSpeaker{w: w}
}

func (c *ConsoleSpeaker) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintln(c.w, text)
	return err
}
