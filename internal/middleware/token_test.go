package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/fittrack/internal/model"
)

// fakeTokenFinder はトークン検索のインメモリ実装。
type fakeTokenFinder struct {
	tokens map[string]*model.Token
}

func (f *fakeTokenFinder) FindByKey(ctx context.Context, key string) (*model.Token, error) {
	return f.tokens[key], nil
}

func newTokenTestHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var gotUserID string
	finder := &fakeTokenFinder{tokens: map[string]*model.Token{
		"valid-key": {Key: "valid-key", UserID: "user-1"},
	}}
	mw := NewTokenMiddleware(finder)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("user ID missing from context: %v", err)
		}
		gotUserID = userID

		key, err := TokenKeyFromContext(r.Context())
		if err != nil || key != "valid-key" {
			t.Errorf("token key = %q, err = %v", key, err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &gotUserID
}

// TestTokenMiddleware_ValidToken は有効トークンでのコンテキスト注入を検証する。
func TestTokenMiddleware_ValidToken(t *testing.T) {
	for _, scheme := range []string{"Token", "Bearer"} {
		handler, gotUserID := newTokenTestHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/activities/", nil)
		req.Header.Set("Authorization", scheme+" valid-key")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("scheme %s: status = %d, want %d", scheme, w.Code, http.StatusOK)
		}
		if *gotUserID != "user-1" {
			t.Errorf("scheme %s: userID = %q, want %q", scheme, *gotUserID, "user-1")
		}
	}
}

// TestTokenMiddleware_Rejections は無効なリクエストの401を検証する。
func TestTokenMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"unknown key", "Token no-such-key"},
		{"wrong scheme", "Basic valid-key"},
		{"malformed header", "Token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &fakeTokenFinder{tokens: map[string]*model.Token{
				"valid-key": {Key: "valid-key", UserID: "user-1"},
			}}
			handler := NewTokenMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be reached")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/activities/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

// TestUserIDFromContext_Missing はコンテキスト欠落時のエラーを検証する。
func TestUserIDFromContext_Missing(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for missing user ID")
	}
	if _, err := TokenKeyFromContext(context.Background()); err == nil {
		t.Error("expected error for missing token key")
	}
}
