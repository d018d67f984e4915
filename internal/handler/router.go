package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Verifier          middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nilの場合は記録・公開しない）
	HTTPMetrics    middleware.HTTPMetricsRecorder
	AuthFailures   middleware.AuthFailureRecorder
	MetricsHandler http.Handler

	// トレース（nilの場合はスパンを生成しない）
	Tracer trace.Tracer

	// サービス
	AuthService    AuthServiceInterface
	TaskService    TaskServiceInterface
	ProfileService ProfileServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Metrics → Tracing → Logging → SecurityHeaders → CORS
//	  /api/auth/*                 → RateLimit(Auth)
//	  /api/tasks/*, /api/profile → Auth → RateLimit(General)
//
// /health と /metrics は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	if deps.Tracer != nil {
		r.Use(middleware.NewTracingMiddleware(deps.Tracer))
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteAPIError(w, model.NewRouteNotFoundError())
	})

	// --- 認証不要のルート ---

	r.Get("/health", Health)
	r.Get("/api/health", Health)

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Mount("/api/auth", SetupAuthRoutes(deps.AuthService, deps.RateLimiter.AuthMiddleware()))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Verifier, deps.AuthFailures))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Mount("/api/tasks", SetupTaskRoutes(deps.TaskService))
		r.Mount("/api/profile", SetupProfileRoutes(deps.ProfileService))
	})

	return r
}
