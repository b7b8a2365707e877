package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"CafeteriaScanner/internal/config"
)

func chatReply(content string) []byte {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	raw, _ := json.Marshal(payload)
	return raw
}

func newTestClient(endpoint string) *Client {
	return NewClient(config.ExtractionConfig{
		Endpoint: endpoint,
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
	})
}

func TestExtractParsesReply(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}
		_, _ = w.Write(chatReply(`{"date":"2024-03-20","items":[{"name":"きつねうどん","isUdon":true},{"name":"おにぎり","isUdon":false}]}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Extract(context.Background(), "本日の注文内容")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if result.Date != "2024-03-20" {
		t.Fatalf("unexpected date: %s", result.Date)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if !result.Items[0].IsUdon || result.Items[1].IsUdon {
		t.Fatalf("udon flags wrong: %+v", result.Items)
	}
}

func TestExtractStripsCodeFence(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply("```json\n{\"date\":\"2024-03-18\",\"items\":[]}\n```"))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Extract(context.Background(), "body")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if result.Date != "2024-03-18" {
		t.Fatalf("unexpected date: %s", result.Date)
	}
}

func TestExtractMalformedContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply("I could not find any order in this message."))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Extract(context.Background(), "body"); err == nil {
		t.Fatalf("expected error for non-JSON content")
	}
}

func TestExtractServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Extract(context.Background(), "body"); err == nil {
		t.Fatalf("expected error for 429 response")
	}
}

func TestExtractMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(config.ExtractionConfig{Endpoint: "http://localhost", Model: "m"})

	if _, err := client.Extract(context.Background(), "body"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}
