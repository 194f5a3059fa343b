package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kiliankoe/wordclue/internal/ai/gemini"
	"github.com/kiliankoe/wordclue/internal/ai/ollama"
	"github.com/kiliankoe/wordclue/internal/ai/openai"
)

type Provider interface {
	Complete(ctx context.Context, model string, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error)
}

type Config struct {
	DefaultProvider string
	DefaultModel    string
	SystemPrompt    string
	GeminiKey       string
	GeminiBaseURL   string
	OpenAIKey       string
	OpenAIBaseURL   string
	OllamaHost      string
	Timeout         time.Duration
}

// New builds the provider named by cfg.DefaultProvider. Credentials are only
// checked when a completion is requested.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.DefaultProvider) {
	case "", "gemini":
		return gemini.New(cfg.GeminiKey, cfg.GeminiBaseURL, cfg.Timeout), nil
	case "openai":
		return openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.Timeout), nil
	case "ollama":
		return ollama.New(cfg.OllamaHost, cfg.Timeout), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.DefaultProvider)
}
