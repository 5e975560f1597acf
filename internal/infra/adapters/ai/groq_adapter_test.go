package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"groq-chat-relay/internal/domain/ports/adapter"
)

func TestGroqAdapterRequestShape(t *testing.T) {
	var got struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		Stream      bool              `json:"stream"`
		Temperature float64           `json:"temperature"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if h := r.Header.Get("Authorization"); h != "Bearer test-key" {
			t.Errorf("Authorization = %q", h)
		}
		if h := r.Header.Get("Accept"); h != "text/event-stream" {
			t.Errorf("Accept = %q", h)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	defer srv.Close()

	g, err := NewGroqAdapter("test-key", srv.URL, 0.2)
	if err != nil {
		t.Fatalf("NewGroqAdapter: %v", err)
	}
	body, err := g.StreamChat(context.Background(), "m1", []adapter.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer body.Close()

	if got.Model != "m1" || !got.Stream || got.Temperature != 0.2 {
		t.Fatalf("request body = %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hi" {
		t.Fatalf("messages = %+v", got.Messages)
	}
}

func TestGroqAdapterReturnsOpenStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n"))
	}))
	defer srv.Close()

	g, _ := NewGroqAdapter("k", srv.URL, 0)
	body, err := g.StreamChat(context.Background(), "m1", nil)
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer body.Close()
	raw, _ := io.ReadAll(body)
	if len(raw) == 0 {
		t.Fatal("stream body was consumed by the adapter")
	}
}

func TestGroqAdapterRejectionCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limit"}`))
	}))
	defer srv.Close()

	g, _ := NewGroqAdapter("k", srv.URL, 0)
	_, err := g.StreamChat(context.Background(), "m1", nil)

	var ue *adapter.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("want UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusTooManyRequests || ue.Body != `{"error":"rate limit"}` {
		t.Fatalf("got %+v", ue)
	}
	if ue.Model != "m1" {
		t.Fatalf("model = %q", ue.Model)
	}
}

func TestGroqAdapterTransportError(t *testing.T) {
	g, _ := NewGroqAdapter("k", "http://127.0.0.1:1", 0)
	_, err := g.StreamChat(context.Background(), "m1", nil)
	if err == nil {
		t.Fatal("want transport error")
	}
	var ue *adapter.UpstreamError
	if errors.As(err, &ue) {
		t.Fatalf("transport failure must not look like a rejection: %v", err)
	}
}

func TestGroqAdapterRequiresKey(t *testing.T) {
	if _, err := NewGroqAdapter("", "", 0); err == nil {
		t.Fatal("want error for empty key")
	}
}
