package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		EmbeddingModel: "embed-model",
		ChatModel:      "chat-model",
		Temperature:    0.2,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for missing API key, got nil")
	}
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if body["model"] != "embed-model" || body["input"] != "how hot is the nozzle?" {
			t.Errorf("unexpected request body: %v", body)
		}
		_, _ = w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	vec, err := c.Embed(context.Background(), "how hot is the nozzle?")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestEmbedEmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	if _, err := c.Embed(context.Background(), "q"); err == nil {
		t.Fatal("expected error for empty embedding response, got nil")
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Model       string              `json:"model"`
			Temperature float64             `json:"temperature"`
			Messages    []map[string]string `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if body.Model != "chat-model" || body.Temperature != 0.2 {
			t.Errorf("model/temperature must come from fixed config, got %s/%.1f", body.Model, body.Temperature)
		}
		if len(body.Messages) != 2 || body.Messages[0]["role"] != "system" || body.Messages[1]["role"] != "user" {
			t.Errorf("expected system+user messages, got %v", body.Messages)
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "200C [source 1]"}}]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	text, err := c.Complete(context.Background(), "directive", "question")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "200C [source 1]" {
		t.Errorf("unexpected completion: %q", text)
	}
}

func TestCompleteProviderErrorNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	if _, err := c.Complete(context.Background(), "d", "q"); err == nil {
		t.Fatal("expected error for provider failure, got nil")
	}
	if calls != 1 {
		t.Errorf("provider calls must not be retried, got %d calls", calls)
	}
}
