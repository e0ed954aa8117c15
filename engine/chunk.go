package engine

import "strings"

// maxChunkWords caps each spoken segment so the speaker can pace long
// replies naturally.
const maxChunkWords = 20

// chunkReply splits a reply into speakable segments: first on sentence
// boundaries, then any sentence longer than maxChunkWords is broken into
// word groups of at most that size.
func chunkReply(reply string) []string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil
	}

	var chunks []string
	for _, sentence := range splitSentences(reply) {
		words := strings.Fields(sentence)
		if len(words) <= maxChunkWords {
			chunks = append(chunks, sentence)
			continue
		}
		for start := 0; start < len(words); start += maxChunkWords {
			end := start + maxChunkWords
			if end > len(words) {
				end = len(words)
			}
			chunks = append(chunks, strings.Join(words[start:end], " "))
		}
	}
	return chunks
}

// splitSentences breaks text after terminal punctuation followed by
// whitespace. The punctuation stays attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			// Consume a run of terminal punctuation ("?!", "...").
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
				i++
			}
			if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t') {
				sentence := strings.TrimSpace(string(runes[start : i+1]))
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
