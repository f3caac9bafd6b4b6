package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/postboard-dev/postboard/backend/internal/setup"
	"github.com/postboard-dev/postboard/shared/csrf"
	mw "github.com/postboard-dev/postboard/shared/middleware"
	"github.com/postboard-dev/postboard/shared/middleware/metrics"
	"github.com/postboard-dev/postboard/shared/utils"
)

// New creates and configures a chi router with all the routes.
// Rate limiters are shared by every route of the group they are attached to.
func New(deps *setup.Dependencies) *chi.Mux {
	cfg := deps.Config
	h := deps.Handler
	authMw := deps.Auth

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Public.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", csrf.HeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(cfg.Public.Http.Secure))

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Uploads.Root())))
	r.Handle("/uploads/*", uploads)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(mw.RateLimit(deps.AuthLimiter, utils.GetIP))
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		// Reads are public
		r.Group(func(r chi.Router) {
			r.Use(authMw.OptionalAuth())
			r.Get("/posts", h.ListPosts)
			r.Get("/posts/search", h.SearchPosts)
			r.Get("/posts/{id}", h.GetPost)
			r.Get("/categories", h.ListCategories)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.CSRF)
			r.Use(authMw.NeedAuth())
			r.Use(mw.RateLimit(deps.WriteLimiter, mw.PrincipalOrIP))
			r.Post("/posts", h.CreatePost)
			r.Put("/posts/{id}", h.UpdatePost)
			r.Delete("/posts/{id}", h.DeletePost)
			r.Post("/posts/{id}/comments", h.CreateComment)
			r.Post("/categories", h.CreateCategory)
		})
	})

	return r
}
