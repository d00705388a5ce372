package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/services"
)

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid id in path")
	}
	return uint(id), nil
}

type activityRequest struct {
	Type        string `json:"type" validate:"required,oneof=walk run bike gym swim other"`
	DurationMin int    `json:"duration_min" validate:"required,gt=0"`
	Calories    *int   `json:"calories" validate:"omitempty,gte=0"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (req activityRequest) toInput() services.ActivityInput {
	return services.ActivityInput{
		Type:        req.Type,
		DurationMin: req.DurationMin,
		Calories:    req.Calories,
		Date:        req.Date,
	}
}

// ListActivities returns the user's activity log.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.activities.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// CreateActivity records an activity.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if !h.decode(w, r, &req) {
		return
	}
	activity, err := h.activities.Add(r.Context(), userID(r), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}

// DeleteActivity removes one of the user's activities.
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.activities.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// AdminUpdateActivity edits any activity; staff only.
func (h *Handler) AdminUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req activityRequest
	if !h.decode(w, r, &req) {
		return
	}
	activity, err := h.activities.AdminUpdate(r.Context(), id, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

type mealRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Calories int    `json:"calories" validate:"required,gt=0"`
	Slot     string `json:"slot" validate:"required,oneof=breakfast lunch dinner snack"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (req mealRequest) toInput() services.MealInput {
	return services.MealInput{
		Name:     req.Name,
		Calories: req.Calories,
		Slot:     req.Slot,
		Date:     req.Date,
	}
}

// ListMeals returns the user's meal log.
func (h *Handler) ListMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := h.meals.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

// CreateMeal records a meal.
func (h *Handler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	if !h.decode(w, r, &req) {
		return
	}
	meal, err := h.meals.Add(r.Context(), userID(r), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

// UpdateMeal replaces one of the user's meals.
func (h *Handler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req mealRequest
	if !h.decode(w, r, &req) {
		return
	}
	meal, err := h.meals.Update(r.Context(), userID(r), id, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

// DeleteMeal removes one of the user's meals.
func (h *Handler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.meals.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// DailySummary returns today's consumed, burned and net calories next to
// the active goal's target when there is one.
func (h *Handler) DailySummary(w http.ResponseWriter, r *http.Request) {
	consumed, err := h.meals.ConsumedToday(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	burned, err := h.activities.BurnedToday(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary := map[string]any{
		"consumed": consumed,
		"burned":   burned,
		"net":      consumed - burned,
	}
	if view, err := h.goals.Active(r.Context(), userID(r)); err == nil {
		summary["daily_target"] = view.Goal.DailyTarget
		summary["remaining"] = view.Goal.DailyTarget - float64(consumed-burned)
	}
	writeJSON(w, http.StatusOK, summary)
}
