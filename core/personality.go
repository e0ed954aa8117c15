package core

import "fmt"

// DefaultPersonality is the preset used when an unknown name is requested.
const DefaultPersonality = "assistant"

// Personalities maps a preset name to its system-prompt fragment. Lookup is
// deterministic: unknown names fall back to DefaultPersonality rather than
// failing at reply time.
var Personalities = map[string]string{
	"assistant": "You're a helpful, knowledgeable assistant who provides clear, concise information and support. " +
		"You maintain a professional yet friendly tone, always ready to assist. " +
		"You can refer to the user's recent conversation, summary memory, and long-term memory when responding to the current query.",
	"companion": "You're a warm, attentive companion. You remember what the user tells you, " +
		"check in on things they mentioned before, and keep the conversation natural and encouraging.",
	"engineer": "You are an AI designed to assist with engineering projects, and you are an expert in engineering, " +
		"math, and science disciplines. You answer in complete sentences and a conversational tone, " +
		"keeping the tempo quick with light punctuation.",
}

// SystemMessage resolves a personality preset into the system prompt for the
// response path. aiName is the assistant's spoken name; maxWords bounds the
// reply length so text-to-speech stays snappy.
func SystemMessage(personality, aiName string, maxWords int) string {
	preset, ok := Personalities[personality]
	if !ok {
		preset = Personalities[DefaultPersonality]
	}
	return fmt.Sprintf("Your name is %s. %s Keep responses under %d words.", aiName, preset, maxWords)
}
