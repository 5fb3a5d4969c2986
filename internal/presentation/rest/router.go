package rest

import (
	"log/slog"
	"net/http"

	"github.com/bibbank/loan-decision/pkg/auth"
)

// RouterConfig collects everything the HTTP surface serves.
type RouterConfig struct {
	Decisions *DecisionHandler
	Auth      *AuthHandler
	Health    *HealthHandler
	Metrics   http.Handler
	JWT       *auth.JWTService
	RateLimit int
	Logger    *slog.Logger
}

// NewRouter assembles routes and middleware. Everything under /api/ except
// the token endpoint requires a bearer token; probes and metrics are open.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Decisions.RegisterRoutes(mux)
	cfg.Auth.RegisterRoutes(mux)
	cfg.Health.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return Chain(mux,
		RequestIDMiddleware(),
		LoggingMiddleware(cfg.Logger),
		CORSMiddleware(),
		RateLimitMiddleware(NewRateLimiter(cfg.RateLimit)),
		AuthMiddleware(cfg.JWT, "/api/", []string{"/api/authenticate"}),
	)
}
