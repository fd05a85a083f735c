package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/config"
)

func TestOpenAIGenerator_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini-2024-07-18",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "# Fractions"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	gen := NewOpenAIGenerator(config.GenerationConfig{
		APIKey:      "sk-test",
		BaseURL:     server.URL + "/v1",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   2000,
		Timeout:     5 * time.Second,
	})

	res, err := gen.Complete(context.Background(), "system text", "user text")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if res.Content != "# Fractions" || res.Model != "gpt-4o-mini-2024-07-18" {
		t.Errorf("Complete() = %+v", res)
	}

	if got.Model != "gpt-4o-mini" || got.MaxTokens != 2000 {
		t.Errorf("request model/max_tokens = %s/%d", got.Model, got.MaxTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user text" {
		t.Errorf("request messages = %+v", got.Messages)
	}
}

func TestOpenAIGenerator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error": {"message": "Rate limit reached", "type": "requests"}}`},
		{"server error", http.StatusInternalServerError, `{"error": {"message": "boom", "type": "server_error"}}`},
		{"no choices", http.StatusOK, `{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gen := NewOpenAIGenerator(config.GenerationConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1", Timeout: 5 * time.Second})
			if _, err := gen.Complete(context.Background(), "s", "p"); err == nil {
				t.Error("Complete() error = nil, want failure")
			}
			if calls != 1 {
				t.Errorf("upstream called %d times, want 1", calls)
			}
		})
	}
}
