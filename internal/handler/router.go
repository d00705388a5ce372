package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router wires every route. Public endpoints come first, then the
// authenticated API, then the profile-gated and staff-only subtrees.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)

		// Event submission and tracking are public by design: organizers
		// do not need an account.
		r.Post("/events", h.SubmitEvent)
		r.Get("/events/status/{code}", h.EventStatus)
		r.Get("/events", h.ApprovedEvents)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)

			r.Get("/activities", h.ListActivities)
			r.Post("/activities", h.CreateActivity)
			r.Delete("/activities/{id}", h.DeleteActivity)

			r.Get("/meals", h.ListMeals)
			r.Post("/meals", h.CreateMeal)
			r.Put("/meals/{id}", h.UpdateMeal)
			r.Delete("/meals/{id}", h.DeleteMeal)

			r.Get("/summary/today", h.DailySummary)
			r.Get("/recommendations/resources", h.Resources)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireProfile)

				r.Post("/goals", h.CreateGoal)
				r.Get("/goals", h.ListGoals)
				r.Get("/goals/active", h.ActiveGoal)
				r.Get("/goals/{id}", h.GoalDetail)
				r.Post("/goals/{id}/archive", h.ArchiveGoal)
				r.Get("/progress", h.Progress)
				r.Get("/recommendations/pois", h.POIs)
				r.Get("/map", h.MapView)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.RequireStaff)

				r.Get("/users", h.AdminListUsers)
				r.Put("/users/{id}", h.AdminUpdateUser)
				r.Delete("/users/{id}", h.AdminDeleteUser)

				r.Put("/activities/{id}", h.AdminUpdateActivity)

				r.Get("/events", h.AdminListEvents)
				r.Get("/events/stats", h.EventStats)
				r.Get("/events/{id}", h.AdminGetEvent)
				r.Put("/events/{id}", h.AdminUpdateEvent)
				r.Post("/events/{id}/approve", h.ApproveEvent)
				r.Post("/events/{id}/reject", h.RejectEvent)
				r.Delete("/events/{id}", h.AdminDeleteEvent)
			})
		})
	})

	return r
}
