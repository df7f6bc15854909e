package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PM183/Bloom/internal/model/chat"
)

func TestSendExtractsFirstChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Try a 5-minute walk."}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	reply, err := client.Send(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if reply.Text != "Try a 5-minute walk." {
		t.Fatalf("unexpected reply text: %q", reply.Text)
	}
	if reply.Category != chat.CategoryGeneralWellness {
		t.Fatalf("unexpected category: %s", reply.Category)
	}
}

func TestSendFallbackOnMissingChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	reply, err := client.Send(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("a well-formed 200 without choices must not be an error, got: %v", err)
	}

	if reply.Text != FallbackReply {
		t.Fatalf("expected fallback text, got %q", reply.Text)
	}
	if reply.Category != chat.CategoryGeneralWellness {
		t.Fatalf("unexpected category: %s", reply.Category)
	}
}

func TestSendErrorOnNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Error connecting to Groq API"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Send(context.Background(), "hi", nil); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestSendErrorOnUnreachableRelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.Send(context.Background(), "hi", nil); err == nil {
		t.Fatal("expected error when relay is unreachable")
	}
}

func TestSendErrorOnInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Send(context.Background(), "hi", nil); err == nil {
		t.Fatal("expected error on undecodable body")
	}
}
