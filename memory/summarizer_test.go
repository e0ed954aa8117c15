package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/miravoice/mira-go-sdk/core"
)

// scriptedClient replays one structured response and records the prompt.
type scriptedClient struct {
	prompt string
	schema map[string]interface{}
	raw    json.RawMessage
	err    error
}

func (c *scriptedClient) GenerateStructured(_ context.Context, prompt string, schema map[string]interface{}) (json.RawMessage, error) {
	c.prompt = prompt
	c.schema = schema
	return c.raw, c.err
}

func TestSummarizeParsesStructuredOutput(t *testing.T) {
	client := &scriptedClient{raw: json.RawMessage(`{
		"summary": "User planned a trip to Lisbon.",
		"entity_relations": [{"entity1": "user", "relation": "traveling_to", "entity2": "Lisbon"}],
		"experiential_facts": ["booked a flight to Lisbon"],
		"personal_facts": ["prefers window seats"],
		"timestamp": "2026-08-30T10:00:00Z"
	}`)}
	s := NewLLMSummarizer(client)

	d := s.Summarize(context.Background(), []core.Turn{{User: "I booked Lisbon", AI: "Nice"}})
	if d.Failed() {
		t.Fatalf("valid output produced failed digest: %+v", d)
	}
	if d.Summary != "User planned a trip to Lisbon." {
		t.Errorf("summary = %q", d.Summary)
	}
	if len(d.EntityRelations) != 1 || d.EntityRelations[0].Entity2 != "Lisbon" {
		t.Errorf("relations = %+v", d.EntityRelations)
	}
	if len(d.ExperientialFacts) != 1 || len(d.PersonalFacts) != 1 {
		t.Errorf("facts = %v / %v", d.ExperientialFacts, d.PersonalFacts)
	}
	if d.Timestamp != "2026-08-30T10:00:00Z" {
		t.Errorf("timestamp = %q", d.Timestamp)
	}
}

func TestSummarizePromptEnumeratesTurns(t *testing.T) {
	client := &scriptedClient{raw: json.RawMessage(`{"summary": "s"}`)}
	s := NewLLMSummarizer(client)

	s.Summarize(context.Background(), []core.Turn{
		{User: "hello", AI: "hi"},
		{User: "bye", AI: "later"},
	})

	for _, want := range []string{
		"Turn 1:\nUser: hello\nAI: hi",
		"Turn 2:\nUser: bye\nAI: later",
		"ONLY explicitly stated facts",
	} {
		if !strings.Contains(client.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, client.prompt)
		}
	}
	if client.schema == nil {
		t.Error("schema not passed to delegate")
	}
}

func TestSummarizeDegradesToSentinel(t *testing.T) {
	cases := []struct {
		name   string
		client *scriptedClient
	}{
		{"delegate error", &scriptedClient{err: fmt.Errorf("api down")}},
		{"invalid json", &scriptedClient{raw: json.RawMessage(`{"summary": `)}},
		{"missing summary", &scriptedClient{raw: json.RawMessage(`{"personal_facts": ["x"]}`)}},
		{"blank summary", &scriptedClient{raw: json.RawMessage(`{"summary": "   "}`)}},
		{"forged sentinel", &scriptedClient{raw: json.RawMessage(
			fmt.Sprintf(`{"summary": %q, "personal_facts": ["sneaky"]}`, core.FailedSummaryText))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewLLMSummarizer(tc.client).Summarize(context.Background(), []core.Turn{{User: "u", AI: "a"}})
			if !d.Failed() {
				t.Fatalf("digest not failed: %+v", d)
			}
			if len(d.PersonalFacts) != 0 || len(d.ExperientialFacts) != 0 {
				t.Errorf("sentinel digest carries facts: %+v", d)
			}
		})
	}
}

func TestSummarizeDefaultsTimestamp(t *testing.T) {
	client := &scriptedClient{raw: json.RawMessage(`{"summary": "s"}`)}
	d := NewLLMSummarizer(client).Summarize(context.Background(), nil)
	if d.Timestamp == "" {
		t.Fatal("timestamp not defaulted")
	}
}
