package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/metrics"
	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
)

// RouterDeps はルーター構築に必要な依存関係です。Metrics と Gatherer は nil でもよい。
type RouterDeps struct {
	Config        config.Config
	Logger        *slog.Logger
	DB            Pinger
	TenantService service.TenantService
	MemoService   service.MemoService
	AuthService   service.AuthService
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
}

// NewRouter はミドルウェアとすべてのルートを登録した chi ルーターを返します。
func NewRouter(d RouterDeps) *chi.Mux {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// --- ミドルウェアの設定 ---
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(d.Metrics.Middleware)
	r.Use(cors.New(corsOptions(d.Config.CORS, d.Config.Auth.IdentityHeader)).Handler)
	r.Use(middleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	gate := middleware.NewIdentityGate(d.TenantService, d.Config.Auth.IdentityHeader, d.Metrics)

	rootHandler := NewRootHandler(d.DB, logger)
	authHandler := NewAuthHandler(d.AuthService, logger, d.Config.Auth.TestLoginEnabled)
	userHandler := NewUserHandler(d.TenantService, logger)
	memoHandler := NewMemoHandler(d.MemoService, logger)

	r.With(gate.Optional).Get("/", rootHandler.Index)
	r.Get("/health", rootHandler.Health)
	if d.Config.Metrics.Enabled && d.Gatherer != nil {
		path := d.Config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, metrics.Handler(d.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/wechat-login", authHandler.WechatLogin)
			r.Post("/test-login", authHandler.TestLogin)
			r.Get("/wechat-config", authHandler.WechatConfig)
			r.Post("/test-wechat-api", authHandler.TestWechatAPI)
		})

		// 識別子ヘッダーが必須のAPI
		r.Group(func(r chi.Router) {
			r.Use(gate.Require)

			r.Route("/users", func(r chi.Router) {
				r.Post("/register", userHandler.Register)
				r.Get("/profile", userHandler.GetProfile)
				r.Put("/profile", userHandler.PutProfile)
				r.Get("/stats", userHandler.GetStats)
			})

			r.Route("/memos", func(r chi.Router) {
				r.Get("/", memoHandler.GetMemos)
				r.Post("/", memoHandler.PostMemo)
				r.Get("/{id}", memoHandler.GetMemo)
				r.Put("/{id}", memoHandler.PutMemo)
				r.Delete("/{id}", memoHandler.DeleteMemo)
			})
		})
	})

	return r
}

func corsOptions(c config.CORSConfig, identityHeader string) cors.Options {
	headers := c.AllowedHeaders
	if identityHeader != "" && !containsFold(headers, identityHeader) {
		headers = append(append([]string{}, headers...), identityHeader)
	}
	return cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   headers,
		ExposedHeaders:   c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if http.CanonicalHeaderKey(v) == http.CanonicalHeaderKey(s) {
			return true
		}
	}
	return false
}
