package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultSystemPrompt = "You are a precise assistant. Follow the requested output format exactly."

type Client struct {
	APIKey  string
	BaseURL string
	http    *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{APIKey: apiKey, BaseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

func (c *Client) Complete(ctx context.Context, model string, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, model, "", prompt)
}

func (c *Client) CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("missing OPENAI_API_KEY")
	}
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	if strings.Contains(model, "gpt") {
		return c.chatComplete(ctx, model, systemPrompt, prompt)
	}
	return c.textComplete(ctx, model, prompt)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type textRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// choice covers both endpoints; chat fills Message, legacy completions fill Text.
type choice struct {
	Message message `json:"message"`
	Text    string  `json:"text"`
}

func (c *Client) chatComplete(ctx context.Context, model string, systemPrompt string, prompt string) (string, error) {
	req := chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.9,
		MaxTokens:   200,
	}
	ch, err := c.first(ctx, "/v1/chat/completions", req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(ch.Message.Content), nil
}

func (c *Client) textComplete(ctx context.Context, model string, prompt string) (string, error) {
	req := textRequest{Model: model, Prompt: prompt, Temperature: 0.9, MaxTokens: 200}
	ch, err := c.first(ctx, "/v1/completions", req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(ch.Text), nil
}

// first posts payload and returns the first choice of the response.
func (c *Client) first(ctx context.Context, path string, payload any) (choice, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return choice{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return choice{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return choice{}, err
	}
	defer resp.Body.Close()

	var out struct {
		Choices []choice `json:"choices"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode/100 != 2 {
		if out.Error != nil && out.Error.Message != "" {
			return choice{}, fmt.Errorf("openai status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return choice{}, fmt.Errorf("openai status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return choice{}, decodeErr
	}
	if len(out.Choices) == 0 {
		return choice{}, errors.New("no choices")
	}
	return out.Choices[0], nil
}
