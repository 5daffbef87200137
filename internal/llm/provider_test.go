package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProviderConfig(t *testing.T) {
	t.Run("OpenAI provider creation", func(t *testing.T) {
		client, err := NewClient(ProviderConfig{
			Provider: ProviderOpenAI,
			APIKey:   "test-key",
			Model:    "gpt-4o-mini",
		})
		if err != nil {
			t.Fatalf("failed to create OpenAI client: %v", err)
		}
		if client == nil {
			t.Fatal("client should not be nil")
		}
		_ = client.Close()
	})

	t.Run("Groq provider defaults", func(t *testing.T) {
		client, err := NewClient(ProviderConfig{
			Provider: ProviderGroq,
			APIKey:   "test-key",
		})
		if err != nil {
			t.Fatalf("failed to create Groq client: %v", err)
		}
		if got := client.(*OpenAIClient).Model(); got != GroqLlama3_1_8B {
			t.Errorf("expected default model %q, got %q", GroqLlama3_1_8B, got)
		}
	})

	t.Run("Claude provider creation", func(t *testing.T) {
		client, err := NewClient(ProviderConfig{
			Provider: ProviderClaude,
			APIKey:   "test-key",
			Model:    ClaudeHaiku35,
		})
		if err != nil {
			t.Fatalf("failed to create Claude client: %v", err)
		}
		if client == nil {
			t.Fatal("client should not be nil")
		}
		_ = client.Close()
	})

	t.Run("Ollama provider needs no key", func(t *testing.T) {
		client, err := NewClient(ProviderConfig{
			Provider: ProviderOllama,
			Model:    OllamaLlama3_2,
		})
		if err != nil {
			t.Fatalf("failed to create Ollama client: %v", err)
		}
		if client == nil {
			t.Fatal("client should not be nil")
		}
	})

	t.Run("Missing API key returns error", func(t *testing.T) {
		for _, p := range []Provider{ProviderOpenAI, ProviderGroq, ProviderClaude} {
			if _, err := NewClient(ProviderConfig{Provider: p}); err == nil {
				t.Errorf("%s: expected error for missing API key", p)
			}
		}
	})

	t.Run("Missing provider returns error", func(t *testing.T) {
		_, err := NewClient(ProviderConfig{
			APIKey: "test-key",
		})
		if err == nil {
			t.Fatal("expected error for missing provider")
		}
	})

	t.Run("Unsupported provider returns error", func(t *testing.T) {
		_, err := NewClient(ProviderConfig{
			Provider: "unsupported",
			APIKey:   "test-key",
		})
		if err == nil {
			t.Fatal("expected error for unsupported provider")
		}
	})
}

func TestOpenAIClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Model != "llama-test" {
			t.Errorf("expected model llama-test, got %s", body.Model)
		}
		if len(body.Messages) != 1 || body.Messages[0].Content != "prompt" {
			t.Errorf("unexpected messages %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
		}`))
	}))
	defer srv.Close()

	client, err := NewGroqClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "llama-test"})
	if err != nil {
		t.Fatalf("NewGroqClient failed: %v", err)
	}

	text, err := Generate(context.Background(), client, "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "Hello!" {
		t.Errorf("expected 'Hello!', got %q", text)
	}
}

type stubClient struct {
	content string
	err     error
	calls   int
	closed  bool
}

func (s *stubClient) Chat(context.Context, *ChatRequest) (*ChatResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResponse{Content: s.content}, nil
}

func (s *stubClient) Close() error {
	s.closed = true
	return nil
}

func TestFallbackClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := &ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}}

	t.Run("primary succeeds", func(t *testing.T) {
		primary := &stubClient{content: "primary"}
		fallback := &stubClient{content: "fallback"}
		fc, _ := NewFallbackClient(primary, fallback, logger)

		resp, err := fc.Chat(context.Background(), req)
		if err != nil || resp.Content != "primary" {
			t.Fatalf("unexpected result %v, %v", resp, err)
		}
		if fallback.calls != 0 {
			t.Error("fallback should not be called")
		}
	})

	t.Run("primary fails", func(t *testing.T) {
		primary := &stubClient{err: errors.New("rate limited")}
		fallback := &stubClient{content: "fallback"}
		fc, _ := NewFallbackClient(primary, fallback, logger)

		resp, err := fc.Chat(context.Background(), req)
		if err != nil || resp.Content != "fallback" {
			t.Fatalf("unexpected result %v, %v", resp, err)
		}
	})

	t.Run("both fail", func(t *testing.T) {
		primaryErr := errors.New("rate limited")
		fc, _ := NewFallbackClient(&stubClient{err: primaryErr}, &stubClient{err: errors.New("down")}, logger)

		_, err := fc.Chat(context.Background(), req)
		if !errors.Is(err, primaryErr) {
			t.Errorf("expected primary error in chain, got %v", err)
		}
	})

	t.Run("no fallback", func(t *testing.T) {
		primaryErr := errors.New("rate limited")
		fc, _ := NewFallbackClient(&stubClient{err: primaryErr}, nil, logger)

		if _, err := fc.Chat(context.Background(), req); !errors.Is(err, primaryErr) {
			t.Errorf("expected primary error, got %v", err)
		}
	})

	t.Run("close closes both", func(t *testing.T) {
		primary, fallback := &stubClient{}, &stubClient{}
		fc, _ := NewFallbackClient(primary, fallback, logger)
		_ = fc.Close()
		if !primary.closed || !fallback.closed {
			t.Error("expected both clients closed")
		}
	})

	t.Run("primary required", func(t *testing.T) {
		if _, err := NewFallbackClient(nil, nil, logger); err == nil {
			t.Error("expected error for nil primary")
		}
	})
}

func TestGenerate_NilClient(t *testing.T) {
	if _, err := Generate(context.Background(), nil, "x"); err == nil {
		t.Error("expected error for nil client")
	}
}
