package config

import (
	"os"
	"strings"
	"time"

	"github.com/kiliankoe/wordclue/internal/ai"
)

const defaultSystemPrompt = "You write short word puzzles. Follow the requested output format exactly and add nothing else."

type Config struct {
	Port            string
	LogLevel        string
	DefaultProvider string
	DefaultModel    string
	SystemPrompt    string
	GeminiKey       string
	GeminiBaseURL   string
	OpenAIKey       string
	OpenAIBaseURL   string
	OllamaHost      string
	AITimeout       time.Duration
	GameIdleTTL     time.Duration
	HistoryDB       string
	ExportEnabled   bool
	ExportFile      string
	TUILog          string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.LogLevel = getenv("LOG_LEVEL", "info")
	c.DefaultProvider = strings.ToLower(getenv("DEFAULT_PROVIDER", "gemini"))
	c.DefaultModel = getenv("DEFAULT_MODEL", DefaultModel(c.DefaultProvider))
	c.SystemPrompt = getenv("SYSTEM_PROMPT", defaultSystemPrompt)
	c.GeminiKey = getenv("GEMINI_API_KEY", os.Getenv("VITE_GEMINI_API_KEY"))
	c.GeminiBaseURL = os.Getenv("GEMINI_BASE_URL")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.OllamaHost = getenv("OLLAMA_HOST", "http://localhost:11434")
	c.AITimeout = getduration("AI_TIMEOUT", 20*time.Second)
	c.GameIdleTTL = getduration("GAME_IDLE_TTL", 30*time.Minute)
	c.HistoryDB = getenv("HISTORY_DB", "./data/wordclue.db")
	c.ExportEnabled = getenv("EXPORT_ENABLED", "true") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./wordclue-results.txt")
	c.TUILog = os.Getenv("TUI_LOG")
	return c
}

// DefaultModel returns the model used when DEFAULT_MODEL is unset.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "ollama":
		return "llama3.2"
	}
	return "gemini-2.0-flash"
}

func (c Config) AI() ai.Config {
	return ai.Config{
		DefaultProvider: c.DefaultProvider,
		DefaultModel:    c.DefaultModel,
		SystemPrompt:    c.SystemPrompt,
		GeminiKey:       c.GeminiKey,
		GeminiBaseURL:   c.GeminiBaseURL,
		OpenAIKey:       c.OpenAIKey,
		OpenAIBaseURL:   c.OpenAIBaseURL,
		OllamaHost:      c.OllamaHost,
		Timeout:         c.AITimeout,
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
