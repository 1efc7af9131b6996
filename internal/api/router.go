package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", apiHandler.SignupHandler)
		r.Post("/auth/login", apiHandler.LoginHandler)
		r.Get("/preset-habits", apiHandler.PresetHabitsHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Get("/auth/me", apiHandler.MeHandler)

			// Habit routes
			r.Post("/habits", apiHandler.CreateHabitHandler)
			r.Get("/habits", apiHandler.ListHabitsHandler)
			r.Get("/habits/{habitID}", apiHandler.GetHabitHandler)
			r.Put("/habits/{habitID}", apiHandler.UpdateHabitHandler)
			r.Delete("/habits/{habitID}", apiHandler.DeleteHabitHandler)

			// Aggregates and coaching
			r.Get("/progress", apiHandler.ProgressHandler)
			r.Post("/ai/insights", apiHandler.InsightsHandler)
		})
	})

	return r
}
