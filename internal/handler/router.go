package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/fittrack/internal/metrics"
	"github.com/hitoshi/fittrack/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenFinder       middleware.TokenFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス。nilの場合はメトリクス収集と/metricsを無効化する。
	MetricsRecorder middleware.HTTPMetricsRecorder
	Gatherer        prometheus.Gatherer

	// サービス
	AuthService     AuthServiceInterface
	ActivityService ActivityServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → Recovery → Logging → SecurityHeaders → Metrics
//
// 認証が必要なルートにはさらに Token → RateLimit(General) が加わる。
// 登録・ログインなどの未認証ルートにはIP単位のRateLimit(Auth)が掛かる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	activityHandler := NewActivityHandler(deps.ActivityService)
	healthHandler := NewHealthHandler()

	r.Route("/api", func(r chi.Router) {
		// --- 認証不要のルート ---

		r.Get("/health/", healthHandler.Health)

		// 登録・ログイン・リセット系はIP単位のレート制限付き
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())

			r.Post("/auth/register/", authHandler.Register)
			r.Post("/auth/login/", authHandler.Login)
			r.Post("/auth/password-reset/request/", authHandler.RequestPasswordReset)
			r.Post("/auth/password-reset/confirm/", authHandler.ConfirmPasswordReset)
		})

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Token → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewTokenMiddleware(deps.TokenFinder))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Post("/auth/logout/", authHandler.Logout)
			r.Post("/auth/password-change/", authHandler.ChangePassword)

			r.Route("/activities", func(r chi.Router) {
				r.Get("/", activityHandler.List)
				r.Post("/", activityHandler.Create)
				r.Post("/bulk-update/", activityHandler.BulkUpdate)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", activityHandler.Get)
					r.Put("/", activityHandler.Update)
					r.Patch("/", activityHandler.Update)
					r.Delete("/", activityHandler.Delete)

					r.Put("/update/", activityHandler.UpdateAlt)
					r.Patch("/update/", activityHandler.UpdateAlt)
					r.Post("/status/", activityHandler.UpdateStatus)
				})
			})
		})
	})

	// POST以外のメソッドでも405を自前で返すため、HandleFuncで全メソッドを受ける
	r.HandleFunc("/update-status/", healthHandler.UpdateStatusEcho)

	// Prometheusスクレイプ用エンドポイント
	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	return r
}
