package core

// Turn is one user-utterance/AI-response pair. Turns are immutable values:
// the conversation buffer owns them from the moment they are appended until
// they are handed to the summarizer.
type Turn struct {
	User string
	AI   string
}
