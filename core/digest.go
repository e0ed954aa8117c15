package core

import "time"

// FailedSummaryText is the sentinel summary used when summarization fails.
// A digest carrying it is well-formed but must never reach the fact stores.
const FailedSummaryText = "Error occurred during summarization"

// EntityRelation is an explicit factual triple stated in conversation.
type EntityRelation struct {
	Entity1  string `json:"entity1"`
	Relation string `json:"relation"`
	Entity2  string `json:"entity2"`
}

// Digest is the structured output of summarizing a batch of turns: a short
// fact-based summary plus the categorized facts extracted from the user's
// side of the conversation. Summary is always present; the fact fields may
// be nil when the batch contained nothing worth keeping.
type Digest struct {
	Summary           string           `json:"summary"`
	EntityRelations   []EntityRelation `json:"entity_relations,omitempty"`
	ExperientialFacts []string         `json:"experiential_facts,omitempty"`
	PersonalFacts     []string         `json:"personal_facts,omitempty"`
	Timestamp         string           `json:"timestamp"`
}

// FailedDigest returns the sentinel digest produced when summarization
// fails. Keeping the type total means the summary window never needs a
// separate error channel.
func FailedDigest() Digest {
	return Digest{
		Summary:   FailedSummaryText,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// Failed reports whether this digest is the summarization-failure sentinel.
func (d Digest) Failed() bool {
	return d.Summary == FailedSummaryText
}
