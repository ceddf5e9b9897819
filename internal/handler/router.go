package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ticketman/internal/metrics"
	"github.com/hitoshi/ticketman/internal/middleware"
)

// Pinger はヘルスチェックに必要なDB接続確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	Collector         metrics.MetricsCollector

	// 認証
	AccountService AccountServiceInterface
	AuthService    AuthServiceInterface
	AuthConfig     AuthHandlerConfig

	// チケット
	TicketService   TicketServiceInterface
	PurchaseService PurchaseServiceInterface

	// ヘルスチェック
	DB Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// 全ルート共通のミドルウェアスタックの実行順序:
//
//	SecurityHeaders → CORS → Logging → Recovery
//
// 認証が必要な/api/ticketsグループには Session → RateLimit(General) → CSRF を追加する。
// ログインエンドポイントには接続元IP単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))
	}
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AccountService, deps.AuthService, deps.Collector, deps.AuthConfig)
	ticketHandler := NewTicketHandler(deps.TicketService, deps.PurchaseService, deps.Collector)

	// --- 認証不要のルート ---

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		// ログイン試行は接続元IP単位で制限する（総当たり対策）
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// CSRFトークン取得エンドポイント
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Route("/api/tickets", func(r chi.Router) {
			r.Get("/", ticketHandler.List)
			r.Post("/", ticketHandler.Sell)

			r.Route("/{name}", func(r chi.Router) {
				r.Put("/", ticketHandler.Update)
				r.Post("/buy", ticketHandler.Buy)
			})
		})
	})

	return r
}
