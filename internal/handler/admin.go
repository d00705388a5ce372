package handler

import (
	"net/http"

	"github.com/rmsalud/salud-api/internal/services"
)

// AdminListUsers lists accounts, optionally matched by ?search=.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// AdminUpdateUser edits any account's profile fields.
func (h *Handler) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req profileRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), id, services.ProfileUpdate{
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

// AdminDeleteUser removes an account.
func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
