package memory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/miravoice/mira-go-sdk/core"
)

// FileAudit appends session diagnostics to plain text files under one
// directory: transcriptions.txt, conversation_summary.txt, context.txt and
// stored_facts.txt. Writes are best-effort; failures are logged and never
// surfaced to the conversation loop.
type FileAudit struct {
	dir string
}

// NewFileAudit creates the audit directory if needed.
func NewFileAudit(dir string) (*FileAudit, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &FileAudit{dir: dir}, nil
}

func (a *FileAudit) RecordTranscript(line string) {
	a.appendFile("transcriptions.txt", line+"\n")
}

func (a *FileAudit) RecordSummary(d core.Digest) {
	body, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		log.Printf("[AUDIT] marshal digest: %v", err)
		return
	}
	a.appendFile("conversation_summary.txt", string(body)+"\n\n")
}

func (a *FileAudit) RecordContext(blob string) {
	a.appendFile("context.txt", blob+"\n\n")
}

func (a *FileAudit) RecordFactFlush(experiential, personal []string) {
	var b strings.Builder
	b.WriteString("experiential_facts:\n")
	b.WriteString(strings.Join(experiential, "\n"))
	b.WriteString("\npersonal_facts:\n")
	b.WriteString(strings.Join(personal, "\n"))
	b.WriteString("\n" + EndConfirmation + "\n")
	a.appendFile("stored_facts.txt", b.String())
}

func (a *FileAudit) appendFile(name, text string) {
	path := filepath.Join(a.dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("[AUDIT] open %s: %v", path, err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		log.Printf("[AUDIT] write %s: %v", path, err)
	}
}
