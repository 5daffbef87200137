package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        Vector
		b        Vector
		expected float32
	}{
		{
			name:     "identical vectors",
			a:        Vector{1, 0, 0},
			b:        Vector{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        Vector{1, 0, 0},
			b:        Vector{0, 1, 0},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        Vector{1, 0, 0},
			b:        Vector{-1, 0, 0},
			expected: -1.0,
		},
		{
			name:     "empty vectors",
			a:        Vector{},
			b:        Vector{},
			expected: 0.0,
		},
		{
			name:     "different lengths",
			a:        Vector{1, 0},
			b:        Vector{1, 0, 0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CosineSimilarity(tt.a, tt.b)
			if abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	normalized := Normalize(Vector{3, 4})

	if abs(normalized[0]-0.6) > 0.001 || abs(normalized[1]-0.8) > 0.001 {
		t.Errorf("expected [0.6 0.8], got %v", normalized)
	}
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(16)

	a, _ := e.Embed(ctx, "User: hi\n")
	b, _ := e.Embed(ctx, "User: hi\n")
	c, _ := e.Embed(ctx, "something else")

	if len(a) != 16 {
		t.Fatalf("expected dimension 16, got %d", len(a))
	}
	if CosineSimilarity(a, b) < 0.999 {
		t.Error("equal texts should produce equal vectors")
	}
	if CosineSimilarity(a, c) > 0.999 {
		t.Error("different texts should produce different vectors")
	}
}

func TestHuggingFaceEmbedder_Embed(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		expected Vector
		wantErr  bool
	}{
		{
			name:     "sentence vector",
			body:     `[0.5, 1.5]`,
			status:   http.StatusOK,
			expected: Vector{0.5, 1.5},
		},
		{
			name:     "token matrix is mean pooled",
			body:     `[[1, 2], [3, 4]]`,
			status:   http.StatusOK,
			expected: Vector{2, 3},
		},
		{
			name:    "error status",
			body:    `{"error":"model loading"}`,
			status:  http.StatusServiceUnavailable,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer test-key" {
					t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			e, err := NewHuggingFaceEmbedder(HuggingFaceConfig{APIKey: "test-key", BaseURL: srv.URL})
			if err != nil {
				t.Fatalf("NewHuggingFaceEmbedder failed: %v", err)
			}

			v, err := e.Embed(context.Background(), "hello")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Embed failed: %v", err)
			}
			if len(v) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, v)
			}
			for i := range v {
				if abs(v[i]-tt.expected[i]) > 0.001 {
					t.Errorf("expected %v, got %v", tt.expected, v)
				}
			}
		})
	}
}

func TestNewEmbedder(t *testing.T) {
	if _, err := NewEmbedder(ProviderConfig{}); err == nil {
		t.Error("expected error for missing provider")
	}
	if _, err := NewEmbedder(ProviderConfig{Provider: "unknown"}); err == nil {
		t.Error("expected error for unsupported provider")
	}
	if _, err := NewEmbedder(ProviderConfig{Provider: ProviderOpenAI}); err == nil {
		t.Error("expected error for missing OpenAI key")
	}

	e, err := NewEmbedder(ProviderConfig{Provider: ProviderHash, Dimension: 8})
	if err != nil {
		t.Fatalf("NewEmbedder failed: %v", err)
	}
	if e.Dimension() != 8 {
		t.Errorf("expected dimension 8, got %d", e.Dimension())
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
