package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hassan123789/go-companion/internal/chat"
	"github.com/hassan123789/go-companion/internal/companion"
)

// fakeTurner returns a canned completion or error.
type fakeTurner struct {
	completion string
	err        error
	calls      []string
}

func (f *fakeTurner) Turn(_ context.Context, companionID, userID, prompt string) (string, error) {
	f.calls = append(f.calls, companionID+"|"+userID+"|"+prompt)
	return f.completion, f.err
}

func newTestServer(t *testing.T, turner Turner, limit RateLimitConfig) (*echo.Echo, companion.Store) {
	t.Helper()
	store, err := companion.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	e := echo.New()
	Register(e, Handlers{
		Chat:      NewChatHandler(turner),
		Companion: NewCompanionHandler(store),
	}, limit)
	return e, store
}

func doRequest(e *echo.Echo, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t, &fakeTurner{}, RateLimitConfig{})

	rec := doRequest(e, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestChat(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		body     string
		turner   *fakeTurner
		wantCode int
		wantBody string
	}{
		{
			name:     "success",
			userID:   "user-1",
			body:     `{"prompt":"Hi there"}`,
			turner:   &fakeTurner{completion: "Hello!"},
			wantCode: http.StatusOK,
			wantBody: `{"completion":"Hello!"}`,
		},
		{
			name:     "missing user",
			body:     `{"prompt":"Hi there"}`,
			turner:   &fakeTurner{},
			wantCode: http.StatusUnauthorized,
			wantBody: "Unauthorized",
		},
		{
			name:     "empty prompt",
			userID:   "user-1",
			body:     `{"prompt":"  "}`,
			turner:   &fakeTurner{},
			wantCode: http.StatusBadRequest,
			wantBody: "Prompt is required",
		},
		{
			name:     "malformed body",
			userID:   "user-1",
			body:     `{"prompt":`,
			turner:   &fakeTurner{},
			wantCode: http.StatusBadRequest,
			wantBody: "Invalid request body",
		},
		{
			name:     "unknown companion",
			userID:   "user-1",
			body:     `{"prompt":"Hi"}`,
			turner:   &fakeTurner{err: companion.ErrNotFound},
			wantCode: http.StatusNotFound,
			wantBody: "Companion not found",
		},
		{
			name:     "generation failure",
			userID:   "user-1",
			body:     `{"prompt":"Hi"}`,
			turner:   &fakeTurner{err: errors.Join(chat.ErrGeneration, errors.New("boom"))},
			wantCode: http.StatusInternalServerError,
			wantBody: "Internal Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestServer(t, tt.turner, RateLimitConfig{})

			rec := doRequest(e, http.MethodPost, "/api/chat/elon", tt.userID, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, got)
			}
		})
	}
}

func TestChat_PassesIdentity(t *testing.T) {
	turner := &fakeTurner{completion: "ok"}
	e, _ := newTestServer(t, turner, RateLimitConfig{})

	doRequest(e, http.MethodPost, "/api/chat/elon", "user-1", `{"prompt":"Hi there"}`)

	if len(turner.calls) != 1 || turner.calls[0] != "elon|user-1|Hi there" {
		t.Errorf("unexpected turn calls: %v", turner.calls)
	}
}

func TestChat_RateLimitedPerUser(t *testing.T) {
	e, _ := newTestServer(t, &fakeTurner{completion: "ok"}, RateLimitConfig{Rate: 0.001, Burst: 2})

	for i := 0; i < 2; i++ {
		if rec := doRequest(e, http.MethodPost, "/api/chat/elon", "user-1", `{"prompt":"Hi"}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := doRequest(e, http.MethodPost, "/api/chat/elon", "user-1", `{"prompt":"Hi"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "Rate limit exceeded" {
		t.Errorf("unexpected body %q", got)
	}

	// Other users and other companions have their own budget.
	if rec := doRequest(e, http.MethodPost, "/api/chat/elon", "user-2", `{"prompt":"Hi"}`); rec.Code != http.StatusOK {
		t.Errorf("other user: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodPost, "/api/chat/ada", "user-1", `{"prompt":"Hi"}`); rec.Code != http.StatusOK {
		t.Errorf("other companion: expected 200, got %d", rec.Code)
	}
}

func createCompanion(t *testing.T, e *echo.Echo, store companion.Store, userID, name string) companion.Companion {
	t.Helper()
	cat, err := store.CreateCategory(context.Background(), "Famous People")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	body := `{"name":"` + name + `","description":"d","instructions":"i","seed":"s","categoryId":"` + cat.ID + `"}`
	rec := doRequest(e, http.MethodPost, "/api/companion", userID, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created companion.Companion
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return created
}

func TestCompanionCRUD(t *testing.T) {
	e, store := newTestServer(t, &fakeTurner{}, RateLimitConfig{})

	created := createCompanion(t, e, store, "user-1", "Elon")
	if created.ID == "" || created.UserID != "user-1" {
		t.Fatalf("unexpected created companion: %+v", created)
	}
	path := "/api/companion/" + created.ID

	t.Run("get", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, path, "user-2", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/companion/missing", "user-1", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("list by name", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/companion?name=elo", "user-1", "")
		var list []companion.Companion
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(list) != 1 || list[0].ID != created.ID {
			t.Errorf("unexpected list: %+v", list)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/companion?limit=abc", "user-1", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update by other user is forbidden", func(t *testing.T) {
		body := `{"name":"X","description":"d","instructions":"i","seed":"s","categoryId":"` + created.CategoryID + `"}`
		rec := doRequest(e, http.MethodPatch, path, "user-2", body)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("update with missing fields", func(t *testing.T) {
		rec := doRequest(e, http.MethodPatch, path, "user-1", `{"name":"X"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update by owner", func(t *testing.T) {
		body := `{"name":"Elon Musk","description":"d","instructions":"i","seed":"s","categoryId":"` + created.CategoryID + `"}`
		rec := doRequest(e, http.MethodPatch, path, "user-1", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var updated companion.Companion
		_ = json.Unmarshal(rec.Body.Bytes(), &updated)
		if updated.Name != "Elon Musk" {
			t.Errorf("expected updated name, got %q", updated.Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if rec := doRequest(e, http.MethodDelete, path, "user-2", ""); rec.Code != http.StatusForbidden {
			t.Errorf("expected 403 for other user, got %d", rec.Code)
		}
		if rec := doRequest(e, http.MethodDelete, path, "user-1", ""); rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if rec := doRequest(e, http.MethodGet, path, "user-1", ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", rec.Code)
		}
	})
}

func TestCompanionMessages(t *testing.T) {
	e, store := newTestServer(t, &fakeTurner{}, RateLimitConfig{})
	created := createCompanion(t, e, store, "user-1", "Elon")

	ctx := context.Background()
	_, _ = store.AddMessage(ctx, created.ID, "user-1", companion.RoleUser, "hi")
	_, _ = store.AddMessage(ctx, created.ID, "user-1", companion.RoleSystem, "hello")
	_, _ = store.AddMessage(ctx, created.ID, "user-2", companion.RoleUser, "not mine")

	rec := doRequest(e, http.MethodGet, "/api/companion/"+created.ID+"/messages", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var msgs []companion.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "hi" || msgs[1].Content != "hello" {
		t.Errorf("unexpected messages: %+v", msgs)
	}

	if rec := doRequest(e, http.MethodGet, "/api/companion/missing/messages", "user-1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown companion, got %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	e, store := newTestServer(t, &fakeTurner{}, RateLimitConfig{})
	_, _ = store.CreateCategory(context.Background(), "Scientists")

	rec := doRequest(e, http.MethodGet, "/api/categories", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cats []companion.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Scientists" {
		t.Errorf("unexpected categories: %+v", cats)
	}
}
