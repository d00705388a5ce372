package handler

import (
	"net/http"

	"github.com/rmsalud/salud-api/internal/services"
)

type goalRequest struct {
	CurrentWeightKg float64 `json:"current_weight_kg" validate:"required,gt=0"`
	TargetWeightKg  float64 `json:"target_weight_kg" validate:"required,gt=0"`
	TargetDate      string  `json:"target_date" validate:"required,datetime=2006-01-02"`
	ActivityLevel   string  `json:"activity_level" validate:"required,oneof=sedentary light moderate active very_active"`
}

// CreateGoal derives a caloric plan and stores it as the active goal.
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.goals.Create(r.Context(), userID(r), services.GoalInput{
		CurrentWeightKg: req.CurrentWeightKg,
		TargetWeightKg:  req.TargetWeightKg,
		TargetDate:      req.TargetDate,
		ActivityLevel:   req.ActivityLevel,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// ActiveGoal returns the active goal with its derived plan fields.
func (h *Handler) ActiveGoal(w http.ResponseWriter, r *http.Request) {
	view, err := h.goals.Active(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListGoals returns the goal history.
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	views, err := h.goals.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GoalDetail returns one goal from the history.
func (h *Handler) GoalDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.goals.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ArchiveGoal deactivates a goal permanently.
func (h *Handler) ArchiveGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.goals.Archive(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Progress reports the cumulative deviation against the active goal.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	report, err := h.progress.Report(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
