package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
)

func chatServer(t *testing.T, check func(body map[string]any), content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 100, "completion_tokens": 12, "total_tokens": 112},
		})
	}))
}

func newTestGenerator(url string) *Generator {
	return NewGenerator(&GeneratorConfig{APIKey: "k", BaseURL: url, Model: "gpt-4o-mini", Logger: zap.NewNop()})
}

func TestGenerator_Generate(t *testing.T) {
	server := chatServer(t, func(body map[string]any) {
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("model = %v", body["model"])
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 1 {
			t.Errorf("expected one message, got %d", len(msgs))
			return
		}
		msg, _ := msgs[0].(map[string]any)
		if msg["role"] != "user" || msg["content"] != "PROMPT" {
			t.Errorf("unexpected message: %v", msg)
		}
		if temp, _ := body["temperature"].(float64); temp < 0.19 || temp > 0.21 {
			t.Errorf("temperature = %v", body["temperature"])
		}
	}, "  SELECT ?s WHERE { ?s ?p ?o }\n")
	defer server.Close()

	out, err := newTestGenerator(server.URL).Generate(context.Background(), "PROMPT", 0.2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "SELECT ?s WHERE { ?s ?p ?o }" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestGenerator_ZeroTemperatureIsSent(t *testing.T) {
	server := chatServer(t, func(body map[string]any) {
		temp, ok := body["temperature"].(float64)
		if !ok {
			t.Errorf("temperature missing from request")
			return
		}
		if temp <= 0 || temp > 1e-30 {
			t.Errorf("temperature = %v, want smallest positive float", temp)
		}
	}, "ok")
	defer server.Close()

	if _, err := newTestGenerator(server.URL).Generate(context.Background(), "p", 0); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
}

func TestGenerator_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "overloaded"}})
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), "p", 0)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if genErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", genErr.StatusCode)
	}
}

func TestGenerator_GenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	g := NewGenerator(&GeneratorConfig{BaseURL: server.URL, Model: "gpt-4o-mini", Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := g.Generate(context.Background(), "PROMPT", 0)

	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration on timeout, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("timeout not applied, call took %v", time.Since(start))
	}
}
