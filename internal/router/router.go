package router

import (
	"casahogar-storefront-api/internal/handler"
	"casahogar-storefront-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	CatalogHandler *handler.CatalogHandler
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler
	AuthHandler    *handler.AuthHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/signin", cfg.AuthHandler.SignIn)
				r.Post("/signout", cfg.AuthHandler.SignOut)
			})
		}

		if cfg.CatalogHandler != nil {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", cfg.CatalogHandler.List)
				r.Post("/more", cfg.CatalogHandler.LoadMore)
				r.Get("/category/{category}", cfg.CatalogHandler.ByCategory)
				r.Post("/{id}/watch", cfg.CatalogHandler.WatchStock)
				r.Delete("/{id}/watch", cfg.CatalogHandler.UnwatchStock)
				r.Get("/{id}/availability", cfg.CatalogHandler.Availability)
			})
		}

		if cfg.CartHandler != nil {
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cfg.CartHandler.Get)
				r.Post("/items", cfg.CartHandler.Add)
				r.Patch("/items/{id}", cfg.CartHandler.Update)
				r.Delete("/items/{id}", cfg.CartHandler.Delete)
			})
		}

		if cfg.OrderHandler != nil {
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", cfg.OrderHandler.List)
				r.Post("/", cfg.OrderHandler.Create)
			})
		}
	})

	return r
}
