package engine

import "strings"

var farewellKeywords = []string{"goodbye", "see you later", "terminate"}

var visualKeywords = []string{"see", "look", "image", "picture", "camera", "visual", "show"}

func isFarewell(input string) bool {
	return containsAny(input, farewellKeywords)
}

func isVisualQuery(input string) bool {
	return containsAny(input, visualKeywords)
}

// containsAny matches keywords as whole words, case-insensitively, so
// "season" does not trigger the visual path through "see".
func containsAny(input string, keywords []string) bool {
	lower := strings.ToLower(input)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		if _, ok := wordSet[kw]; ok {
			return true
		}
	}
	return false
}

func farewellReply() string {
	return "Goodbye! It was nice talking to you."
}
