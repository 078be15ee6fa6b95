// Package router sets up all HTTP routes and middleware chains for the job
// board API. Reads are public; category mutations sit behind the admin
// check and a per-client rate limit.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"jobboard/internal/authz"
	"jobboard/internal/handlers"
	"jobboard/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cats *handlers.Categories, jobs *handlers.Jobs, az authz.AuthZ, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", cats.List)
		r.Get("/resolve", cats.Resolve)
		r.Get("/slug/{slug}", cats.BySlug)
		r.Get("/{id}", cats.Get)
		r.Get("/{id}/jobs", cats.Jobs)
		r.Get("/{id}/ancestors", cats.Ancestors)
		r.Get("/{id}/descendants", cats.Descendants)
		r.Get("/{id}/siblings", cats.Siblings)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Use(middleware.RequireCategoryAdmin(az))
			r.Post("/", cats.Create)
			r.Post("/{id}/move", cats.Move)
			r.Delete("/{id}", cats.Delete)
		})
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", jobs.List)
		r.Get("/search", jobs.Search)
		r.Get("/by-skills", jobs.BySkills)
		r.Get("/{id}", jobs.Get)
		r.Get("/{id}/similar", jobs.Similar)
		r.With(limiter.Middleware).Post("/{id}/applications", jobs.Apply)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, `{"error":{"code":"not_found","message":"no such route"}}`)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, `{"error":{"code":"invalid","message":"method not allowed"}}`)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, `{"status":"ok"}`)
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
