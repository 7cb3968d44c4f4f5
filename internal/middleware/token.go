// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/fittrack/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// tokenKeyContextKey はリクエストコンテキストにトークンキーを格納するためのキー。
// ログアウト処理で自身のトークンを削除する際に使用する。
var tokenKeyContextKey = contextKey("token_key")

// TokenFinder はトークンの検索に必要なインターフェース。
// repository.TokenRepositoryの部分集合として定義する。
type TokenFinder interface {
	FindByKey(ctx context.Context, key string) (*model.Token, error)
}

// NewTokenMiddleware はAuthorizationヘッダーからベアラートークンを読み取り、
// 有効性を検証するミドルウェアを返す。
// ヘッダー形式は "Authorization: Token <key>"。
// 認証済みユーザーIDとトークンキーをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewTokenMiddleware(tokenFinder TokenFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからトークンキーを取得
			key := tokenKeyFromHeader(r)
			if key == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 2. トークンの有効性を検証
			token, err := tokenFinder.FindByKey(r.Context(), key)
			if err != nil {
				slog.Error("failed to find token",
					slog.String("error", err.Error()),
				)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if token == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 3. 認証済みユーザーIDとトークンキーをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, token.UserID)
			ctx = context.WithValue(ctx, tokenKeyContextKey, token.Key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenKeyFromHeader はAuthorizationヘッダーからトークンキーを抽出する。
// "Token <key>" と "Bearer <key>" の両形式を受け付ける。
func tokenKeyFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if parts[0] != "Token" && parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// トークンミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// TokenKeyFromContext はリクエストコンテキストからトークンキーを取得する。
func TokenKeyFromContext(ctx context.Context) (string, error) {
	key, ok := ctx.Value(tokenKeyContextKey).(string)
	if !ok || key == "" {
		return "", fmt.Errorf("token key not found in context")
	}
	return key, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// ContextWithTokenKey はコンテキストにトークンキーを注入する。テスト用。
func ContextWithTokenKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, tokenKeyContextKey, key)
}
