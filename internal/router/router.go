package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-auth/internal/config"
	"portfolio-auth/internal/handler"
	"portfolio-auth/internal/middleware"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)

	return r
}
