// Package handler contains the HTTP surface of the API: routing,
// request decoding and validation, and the mapping from application
// errors to response codes.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/auth"
	"github.com/rmsalud/salud-api/internal/config"
	"github.com/rmsalud/salud-api/internal/logger"
	"github.com/rmsalud/salud-api/internal/services"
)

// Handler wraps the services behind the HTTP routes.
type Handler struct {
	users      *services.UserService
	activities *services.ActivityService
	meals      *services.MealService
	goals      *services.GoalService
	progress   *services.ProgressService
	events     *services.EventService
	recs       *services.RecommendationService
	maps       *services.MapService

	tokens    *auth.Manager
	validate  *validator.Validate
	eventsCfg config.EventsConfig
}

// Services bundles everything the handler depends on.
type Services struct {
	Users      *services.UserService
	Activities *services.ActivityService
	Meals      *services.MealService
	Goals      *services.GoalService
	Progress   *services.ProgressService
	Events     *services.EventService
	Recs       *services.RecommendationService
	Maps       *services.MapService
}

// New creates a Handler.
func New(s Services, tokens *auth.Manager, eventsCfg config.EventsConfig) *Handler {
	return &Handler{
		users:      s.Users,
		activities: s.Activities,
		meals:      s.Meals,
		goals:      s.Goals,
		progress:   s.Progress,
		events:     s.Events,
		recs:       s.Recs,
		maps:       s.Maps,
		tokens:     tokens,
		validate:   validator.New(),
		eventsCfg:  eventsCfg,
	}
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error   string              `json:"error"`
	Code    string              `json:"code,omitempty"`
	Details []map[string]string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Error("Unhandled error", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeDatabase, apperrors.ErrorTypeInternal, apperrors.ErrorTypeExternal:
		logger.Error("Request failed", append([]any{"path", r.URL.Path}, appErr.LogFields()...)...)
	default:
		logger.Warn("Request rejected", append([]any{"path", r.URL.Path}, appErr.LogFields()...)...)
	}
	writeJSON(w, appErr.HTTPStatus(), errorBody{Error: appErr.Message, Code: appErr.Code})
}

// decode parses the JSON body into dst and runs struct validation.
// Responses for both failure modes are written here; the caller only
// checks the boolean.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "validation failed",
			Code:    "VALIDATION",
			Details: validationDetails(err),
		})
		return false
	}
	return true
}
