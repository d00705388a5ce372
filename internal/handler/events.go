package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/services"
)

type eventSubmissionRequest struct {
	ContactName  string `json:"contact_name" validate:"required,max=200"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	ContactPhone string `json:"contact_phone" validate:"max=50"`
	CompanyName  string `json:"company_name" validate:"max=200"`

	EventName   string   `json:"event_name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	StartsAt    string   `json:"starts_at" validate:"required"`
	EndsAt      string   `json:"ends_at"`
	Category    string   `json:"category" validate:"required,oneof=sports cultural health recreational educational other"`
	TicketType  string   `json:"ticket_type" validate:"required,oneof=free paid"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	EventURL    string   `json:"event_url" validate:"omitempty,url"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`

	Address   string `json:"address" validate:"required,max=300"`
	City      string `json:"city" validate:"max=100"`
	Latitude  string `json:"latitude" validate:"required"`
	Longitude string `json:"longitude" validate:"required"`
}

func parseEventTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewValidationError("event dates must be ISO 8601")
}

func (req eventSubmissionRequest) toSubmission() (services.EventSubmission, error) {
	startsAt, err := parseEventTime(req.StartsAt)
	if err != nil {
		return services.EventSubmission{}, err
	}
	var endsAt *time.Time
	if req.EndsAt != "" {
		t, err := parseEventTime(req.EndsAt)
		if err != nil {
			return services.EventSubmission{}, err
		}
		endsAt = &t
	}
	return services.EventSubmission{
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		CompanyName:  req.CompanyName,
		EventName:    req.EventName,
		Description:  req.Description,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		Category:     req.Category,
		TicketType:   req.TicketType,
		Price:        req.Price,
		EventURL:     req.EventURL,
		ImageURL:     req.ImageURL,
		Address:      req.Address,
		City:         req.City,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}, nil
}

// SubmitEvent accepts a public event proposal and returns its tracking
// code. No authentication required.
func (h *Handler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req eventSubmissionRequest
	if !h.decode(w, r, &req) {
		return
	}
	submission, err := req.toSubmission()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.events.Submit(r.Context(), submission)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"tracking_code": created.TrackingCode,
		"status":        created.Status,
	})
}

// EventStatus is the public status lookup by tracking code.
func (h *Handler) EventStatus(w http.ResponseWriter, r *http.Request) {
	req, err := h.events.StatusByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := map[string]any{
		"tracking_code": req.TrackingCode,
		"event_name":    req.EventName,
		"status":        req.Status,
		"submitted_at":  req.CreatedAt,
	}
	if req.RespondedAt != nil {
		payload["responded_at"] = req.RespondedAt
		payload["admin_comments"] = req.AdminComments
	}
	writeJSON(w, http.StatusOK, payload)
}

// localEventResponse hides contact details from the public feed.
type localEventResponse struct {
	ID          uint       `json:"id"`
	EventName   string     `json:"event_name"`
	Description string     `json:"description"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Category    string     `json:"category"`
	TicketType  string     `json:"ticket_type"`
	Price       *float64   `json:"price,omitempty"`
	EventURL    string     `json:"event_url,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Latitude    string     `json:"latitude"`
	Longitude   string     `json:"longitude"`
}

func toLocalEventResponse(ev database.EventRequest) localEventResponse {
	return localEventResponse{
		ID:          ev.ID,
		EventName:   ev.EventName,
		Description: ev.Description,
		StartsAt:    ev.StartsAt,
		EndsAt:      ev.EndsAt,
		Category:    ev.Category,
		TicketType:  ev.TicketType,
		Price:       ev.Price,
		EventURL:    ev.EventURL,
		ImageURL:    ev.ImageURL,
		Address:     ev.Address,
		City:        ev.City,
		Latitude:    ev.Latitude,
		Longitude:   ev.Longitude,
	}
}

// ApprovedEvents returns the public feed of approved upcoming events
// around a coordinate.
func (h *Handler) ApprovedEvents(w http.ResponseWriter, r *http.Request) {
	coords, err := h.coordsFromQuery(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	events, err := h.events.Approved(r.Context(), coords.lat, coords.lng, coords.radiusKm, coords.windowDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]localEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toLocalEventResponse(ev))
	}
	writeJSON(w, http.StatusOK, out)
}

type decisionRequest struct {
	Comments string `json:"comments" validate:"max=2000"`
}

// AdminListEvents lists submissions for moderation.
func (h *Handler) AdminListEvents(w http.ResponseWriter, r *http.Request) {
	requests, err := h.events.AdminList(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// AdminGetEvent returns one submission with its responder.
func (h *Handler) AdminGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.events.AdminGet(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ApproveEvent approves a pending submission.
func (h *Handler) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	h.decideEvent(w, r, h.events.Approve)
}

// RejectEvent rejects a pending submission; comments are mandatory and
// enforced by the service.
func (h *Handler) RejectEvent(w http.ResponseWriter, r *http.Request) {
	h.decideEvent(w, r, h.events.Reject)
}

func (h *Handler) decideEvent(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, adminID, id uint, comments string) (*database.EventRequest, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req decisionRequest
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := decide(r.Context(), userID(r), id, req.Comments)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// AdminUpdateEvent edits a submission's event and venue fields.
func (h *Handler) AdminUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req eventSubmissionRequest
	if !h.decode(w, r, &req) {
		return
	}
	submission, err := req.toSubmission()
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.events.AdminUpdate(r.Context(), id, submission)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// AdminDeleteEvent removes a submission.
func (h *Handler) AdminDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.events.AdminDelete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// EventStats summarizes the moderation queue.
func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.events.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
