package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		var body struct {
			Messages []map[string]string `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) != 2 || body.Messages[0]["content"] != defaultSystemPrompt {
			t.Errorf("expected default system prompt, got %+v", body.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Word: TREE  "}}]}`))
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL, 0)
	text, err := c.Complete(context.Background(), "gpt-4o-mini", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Word: TREE" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextCompletionAndEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL, 0)
	if _, err := c.Complete(context.Background(), "davinci-002", "prompt"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestMissingKey(t *testing.T) {
	if _, err := New("", "", 0).Complete(context.Background(), "gpt-4o-mini", "x"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestErrorMessageFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	_, err := New("sk-bad", srv.URL, 0).Complete(context.Background(), "gpt-4o-mini", "x")
	if err == nil || err.Error() != "openai status 401: Incorrect API key provided" {
		t.Fatalf("unexpected error: %v", err)
	}
}
