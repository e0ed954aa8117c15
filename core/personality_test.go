package core

import (
	"strings"
	"testing"
)

func TestSystemMessage(t *testing.T) {
	msg := SystemMessage("engineer", "Mira", 70)
	if !strings.HasPrefix(msg, "Your name is Mira.") {
		t.Errorf("name not framed: %q", msg)
	}
	if !strings.Contains(msg, "engineering") {
		t.Errorf("engineer preset not used: %q", msg)
	}
	if !strings.Contains(msg, "under 70 words") {
		t.Errorf("word bound missing: %q", msg)
	}
}

func TestSystemMessageUnknownPersonalityFallsBack(t *testing.T) {
	got := SystemMessage("pirate", "Mira", 50)
	want := SystemMessage(DefaultPersonality, "Mira", 50)
	if got != want {
		t.Errorf("unknown personality did not fall back:\n%q\n%q", got, want)
	}
}
