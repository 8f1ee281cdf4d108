package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/userauth/userauth-go/internal/middleware"
)

// NewRouter wires the HTTP surface.
func NewRouter(auth *AuthHandler, tokens middleware.TokenVerifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(logger.Named("http")))
	r.Use(middleware.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", auth.HandleRegister)
		r.Post("/login", auth.HandleLogin)
		r.Post("/logout", auth.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokens))
			r.Get("/me", auth.HandleMe)
		})
	})

	return r
}
