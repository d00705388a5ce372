package handler

import (
	"net/http"

	"github.com/rmsalud/salud-api/internal/services"
)

type profileRequest struct {
	FirstName *string  `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string  `json:"last_name" validate:"omitempty,max=100"`
	Age       *int     `json:"age" validate:"omitempty,gte=1,lte=120"`
	WeightKg  *float64 `json:"weight_kg" validate:"omitempty,gt=0"`
	HeightCm  *float64 `json:"height_cm" validate:"omitempty,gt=0"`
	Sex       *string  `json:"sex" validate:"omitempty,oneof=M F O"`
}

// Me returns the authenticated user's account and profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateMe applies a partial profile edit.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), userID(r), services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		WeightKg:  req.WeightKg,
		HeightCm:  req.HeightCm,
		Sex:       req.Sex,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
