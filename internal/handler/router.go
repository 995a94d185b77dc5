package handler

import (
	"net/http"

	"github.com/gatherpoint/gatherpoint/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the service's HTTP router.
func NewRouter(auth *AuthHandler, events *EventHandler, rsvp *RSVPHandler, verifier middleware.TokenVerifier) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log
	r.Use(CORS)                    // permissive CORS for demo

	protect := middleware.Auth(verifier)

	// Health
	r.Get("/health", HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.With(protect).Get("/me", auth.Me)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", events.List)
			r.Get("/{id}", events.Get)
			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Post("/", events.Create)
				r.Put("/{id}", events.Update)
				r.Delete("/{id}", events.Delete)
				r.Get("/user/my-events", events.MyEvents)
				r.Get("/user/attending", events.Attending)
			})
		})

		r.Route("/rsvp", func(r chi.Router) {
			r.Use(protect)
			r.Post("/{eventId}", rsvp.Join)
			r.Delete("/{eventId}", rsvp.Leave)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})

	return r
}
