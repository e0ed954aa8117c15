// Package config loads runtime settings for assistant binaries from the
// environment with safe defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the voice assistant and the
// gateway.
type Config struct {
	AIName           string
	Personality      string
	MaxResponseWords int

	AnthropicAPIKey string
	Model           string
	MaxTokens       int

	BufferSize    int
	SummarySize   int
	RecentTurns   int
	FactsPerQuery int

	DuplicateThreshold float32

	DataDir  string
	AuditDir string

	EmbedderBackend   string
	OllamaBaseURL     string
	OllamaModel       string
	EmbeddingDim      int
	EmbedCacheBytes   int64
	OllamaHTTPTimeout time.Duration

	BindAddr        string
	ShutdownTimeout time.Duration
}

// Load reads environment variables and applies safe defaults. The API key
// is the only required setting.
func Load() (Config, error) {
	cfg := Config{
		AIName:             envOrDefault("MIRA_AI_NAME", "Mira"),
		Personality:        envOrDefault("MIRA_PERSONALITY", "assistant"),
		MaxResponseWords:   70,
		AnthropicAPIKey:    trimmedEnv("ANTHROPIC_API_KEY"),
		Model:              envOrDefault("MIRA_MODEL", "claude-sonnet-4-20250514"),
		MaxTokens:          1024,
		BufferSize:         10,
		SummarySize:        5,
		RecentTurns:        7,
		FactsPerQuery:      3,
		DuplicateThreshold: 0.85,
		DataDir:            envOrDefault("MIRA_DATA_DIR", ".mira/memory"),
		AuditDir:           trimmedEnv("MIRA_AUDIT_DIR"),
		EmbedderBackend:    envOrDefault("MIRA_EMBEDDER", "ollama"),
		OllamaBaseURL:      envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:        envOrDefault("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		EmbeddingDim:       768,
		EmbedCacheBytes:    16 << 20,
		OllamaHTTPTimeout:  10 * time.Second,
		BindAddr:           envOrDefault("MIRA_BIND_ADDR", ":8080"),
		ShutdownTimeout:    15 * time.Second,
	}

	var err error
	cfg.MaxResponseWords, err = intFromEnv("MIRA_MAX_RESPONSE_WORDS", cfg.MaxResponseWords)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTokens, err = intFromEnv("MIRA_MAX_TOKENS", cfg.MaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.BufferSize, err = intFromEnv("MIRA_BUFFER_SIZE", cfg.BufferSize)
	if err != nil {
		return Config{}, err
	}
	cfg.SummarySize, err = intFromEnv("MIRA_SUMMARY_SIZE", cfg.SummarySize)
	if err != nil {
		return Config{}, err
	}
	cfg.RecentTurns, err = intFromEnv("MIRA_RECENT_TURNS", cfg.RecentTurns)
	if err != nil {
		return Config{}, err
	}
	cfg.FactsPerQuery, err = intFromEnv("MIRA_FACTS_PER_QUERY", cfg.FactsPerQuery)
	if err != nil {
		return Config{}, err
	}
	cfg.DuplicateThreshold, err = floatFromEnv("MIRA_DUPLICATE_THRESHOLD", cfg.DuplicateThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingDim, err = intFromEnv("MIRA_EMBEDDING_DIM", cfg.EmbeddingDim)
	if err != nil {
		return Config{}, err
	}
	cfg.OllamaHTTPTimeout, err = durationFromEnv("OLLAMA_HTTP_TIMEOUT", cfg.OllamaHTTPTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = durationFromEnv("MIRA_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}

	if cfg.BufferSize < 2 {
		return Config{}, fmt.Errorf("MIRA_BUFFER_SIZE must be at least 2")
	}
	if cfg.SummarySize <= 0 {
		return Config{}, fmt.Errorf("MIRA_SUMMARY_SIZE must be positive")
	}
	if cfg.RecentTurns <= 0 {
		return Config{}, fmt.Errorf("MIRA_RECENT_TURNS must be positive")
	}
	if cfg.FactsPerQuery <= 0 {
		return Config{}, fmt.Errorf("MIRA_FACTS_PER_QUERY must be positive")
	}
	if cfg.DuplicateThreshold <= 0 || cfg.DuplicateThreshold > 1 {
		return Config{}, fmt.Errorf("MIRA_DUPLICATE_THRESHOLD must be in (0, 1]")
	}
	if cfg.EmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("MIRA_EMBEDDING_DIM must be positive")
	}
	switch cfg.EmbedderBackend {
	case "ollama", "mock":
	default:
		return Config{}, fmt.Errorf("MIRA_EMBEDDER must be one of: ollama, mock")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float32) (float32, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return float32(f), nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}
