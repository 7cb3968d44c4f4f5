package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/fittrack/internal/auth"
	"github.com/hitoshi/fittrack/internal/middleware"
	"github.com/hitoshi/fittrack/internal/model"
)

// fakeTokenFinder はトークン検証のインメモリ実装。
type fakeTokenFinder struct {
	tokens map[string]*model.Token
}

func (f *fakeTokenFinder) FindByKey(ctx context.Context, key string) (*model.Token, error) {
	return f.tokens[key], nil
}

// newTestRouter はテスト用に全依存をモックしたルーターを構築する。
func newTestRouter(t *testing.T, authSvc AuthServiceInterface, actSvc ActivityServiceInterface) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	finder := &fakeTokenFinder{tokens: map[string]*model.Token{
		"valid-key": {Key: "valid-key", UserID: "user-1"},
	}}

	return NewRouter(&RouterDeps{
		TokenFinder:       finder,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		Logger:            slog.Default(),
		AuthService:       authSvc,
		ActivityService:   actSvc,
	})
}

// TestRouter_AuthRequired は保護ルートがトークンなしで401になることを検証する。
func TestRouter_AuthRequired(t *testing.T) {
	router := newTestRouter(t, &mockAuthService{}, &mockActivityService{})

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/activities/"},
		{http.MethodPost, "/api/auth/logout/"},
		{http.MethodPost, "/api/auth/password-change/"},
		{http.MethodPost, "/api/activities/bulk-update/"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want %d", p.method, p.path, w.Code, http.StatusUnauthorized)
		}
	}
}

// TestRouter_TokenAccepted は有効トークンで保護ルートに到達できることを検証する。
// TokenとBearerの両方のスキームを受け付ける。
func TestRouter_TokenAccepted(t *testing.T) {
	svc := &mockActivityService{
		listFn: func(ctx context.Context, userID string) ([]*model.Activity, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return nil, nil
		},
	}
	router := newTestRouter(t, &mockAuthService{}, svc)

	for _, scheme := range []string{"Token", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/activities/", nil)
		req.Header.Set("Authorization", scheme+" valid-key")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("scheme %s: status = %d, want %d", scheme, w.Code, http.StatusOK)
		}
	}
}

// TestRouter_PublicRoutes は認証不要ルートへの到達を検証する。
func TestRouter_PublicRoutes(t *testing.T) {
	authSvc := &mockAuthService{
		registerFn: func(ctx context.Context, input auth.RegisterInput) (*model.User, *model.Token, error) {
			return testUser(), &model.Token{Key: "tok"}, nil
		},
	}
	router := newTestRouter(t, authSvc, &mockActivityService{})

	t.Run("health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("register", func(t *testing.T) {
		req := jsonBody(t, http.MethodPost, "/api/auth/register/", map[string]string{
			"username": "alice", "password": "supersecret",
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
		}
	})

	t.Run("status echo", func(t *testing.T) {
		req := jsonBody(t, http.MethodPost, "/update-status/", map[string]string{"status": "completed"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("status echo wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/update-status/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
		}
	})
}

// TestRouter_CORSPreflight はOPTIONSプリフライトへの204を検証する。
func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, &mockAuthService{}, &mockActivityService{})

	req := httptest.NewRequest(http.MethodOptions, "/api/activities/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

// TestRouter_SecurityHeaders は共通レスポンスヘッダーの付与を検証する。
func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t, &mockAuthService{}, &mockActivityService{})

	req := httptest.NewRequest(http.MethodGet, "/api/health/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("missing Cache-Control header")
	}
}
