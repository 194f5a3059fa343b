package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	Host string
	http *http.Client
}

func New(host string, timeout time.Duration) *Client {
	if host == "" {
		host = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{Host: strings.TrimRight(host, "/"), http: &http.Client{Timeout: timeout}}
}

func (c *Client) Complete(ctx context.Context, model string, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, model, "", prompt)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

func (c *Client) CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error) {
	body := chatRequest{
		Model:   model,
		Options: options{Temperature: 0.9, NumPredict: 200},
	}
	if systemPrompt != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: systemPrompt})
	}
	body.Messages = append(body.Messages, message{Role: "user", Content: prompt})

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Message message `json:"message"`
		Error   string  `json:"error"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	switch {
	case out.Error != "":
		return "", fmt.Errorf("ollama: %s", out.Error)
	case resp.StatusCode/100 != 2:
		return "", fmt.Errorf("ollama status %d", resp.StatusCode)
	case decodeErr != nil:
		return "", decodeErr
	}
	return strings.TrimSpace(out.Message.Content), nil
}
