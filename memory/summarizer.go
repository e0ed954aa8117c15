package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/miravoice/mira-go-sdk/core"
	"github.com/miravoice/mira-go-sdk/schema"
)

// LLMSummarizer converts turn batches into digests through a structured
// generation delegate. It is total: every failure path degrades to the
// sentinel digest instead of an error.
type LLMSummarizer struct {
	client StructuredClient
}

// NewLLMSummarizer creates a summarizer backed by the given delegate.
func NewLLMSummarizer(client StructuredClient) *LLMSummarizer {
	return &LLMSummarizer{client: client}
}

// Summarize builds the transcript prompt, requests a schema-constrained
// response, and validates it before constructing a digest. Malformed output,
// delegate errors, and timeouts all yield core.FailedDigest().
func (s *LLMSummarizer) Summarize(ctx context.Context, turns []core.Turn) core.Digest {
	prompt := buildSummaryPrompt(turns)

	raw, err := s.client.GenerateStructured(ctx, prompt, DigestSchema())
	if err != nil {
		log.Printf("[SUMMARIZER] generation failed: %v", err)
		return core.FailedDigest()
	}

	digest, err := parseDigest(raw)
	if err != nil {
		log.Printf("[SUMMARIZER] malformed structured output: %v", err)
		return core.FailedDigest()
	}
	return digest
}

// parseDigest validates raw structured output and builds a digest from it.
// Validation at this boundary keeps the duck-typed delegate contract out of
// the rest of the pipeline.
func parseDigest(raw json.RawMessage) (core.Digest, error) {
	var d core.Digest
	if err := json.Unmarshal(raw, &d); err != nil {
		return core.Digest{}, fmt.Errorf("unmarshal digest: %w", err)
	}
	if strings.TrimSpace(d.Summary) == "" {
		return core.Digest{}, fmt.Errorf("digest missing required summary")
	}
	if d.Summary == core.FailedSummaryText {
		// The delegate must not be able to forge the failure sentinel.
		return core.Digest{}, fmt.Errorf("digest summary collides with failure sentinel")
	}
	if d.Timestamp == "" {
		d.Timestamp = time.Now().Format(time.RFC3339)
	}
	return d, nil
}

// DigestSchema is the JSON schema the delegate's output must conform to.
func DigestSchema() map[string]interface{} {
	relation := schema.Object(map[string]interface{}{
		"entity1":  schema.String("First entity of the triple."),
		"relation": schema.String("Relation stated by the user."),
		"entity2":  schema.String("Second entity of the triple."),
	}, "entity1", "relation", "entity2")

	return schema.Object(map[string]interface{}{
		"summary": schema.String("Short fact-based summary of USER facts only."),
		"entity_relations": schema.Array(
			"Explicit factual (entity1, relation, entity2) triples stated by the user. Omit when none.",
			relation),
		"experiential_facts": schema.Array(
			"Time-bound experiences or events explicitly mentioned by the user, each semantically distinct. Omit when none.",
			schema.String("One short, neutral fact.")),
		"personal_facts": schema.Array(
			"Explicit personal facts about the user, each semantically distinct. Omit when none.",
			schema.String("One short, neutral fact.")),
		"timestamp": schema.String("ISO 8601 timestamp of when this digest was created."),
	}, "summary")
}

// buildSummaryPrompt renders the batch as an enumerated transcript with the
// extraction rules the digest schema expects.
func buildSummaryPrompt(turns []core.Turn) string {
	var transcript strings.Builder
	for i, turn := range turns {
		fmt.Fprintf(&transcript, "Turn %d:\nUser: %s\nAI: %s\n\n", i+1, turn.User, turn.AI)
	}

	return fmt.Sprintf(`You are an expert conversation analyst.
Extract ONLY explicitly stated facts from the USER's responses in the conversation below.

Rules for fact extraction:
1. Only extract facts from USER messages - ignore AI responses completely.
2. Facts must be explicit in the USER's text - no guessing or inference.
3. Provide experiential_facts and personal_facts as lists of short bullet facts.
4. Each fact must be semantically distinct - avoid reworded duplicates.
5. Omit a field entirely if no facts exist for it.
6. Keep facts short, clear, and neutral.

CONVERSATION:
%s`, transcript.String())
}
