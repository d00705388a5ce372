package handler

import (
	"net/http"

	"github.com/rmsalud/salud-api/internal/auth"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/services"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// sessionResponse is returned on register, login and refresh.
type sessionResponse struct {
	Tokens auth.TokenPair `json:"tokens"`
	User   userResponse   `json:"user"`
}

type userResponse struct {
	ID              uint     `json:"id"`
	Email           string   `json:"email"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	IsStaff         bool     `json:"is_staff"`
	Age             *int     `json:"age"`
	WeightKg        *float64 `json:"weight_kg"`
	HeightCm        *float64 `json:"height_cm"`
	Sex             *string  `json:"sex"`
	ProfileComplete bool     `json:"profile_complete"`
}

func toUserResponse(u *database.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		IsStaff:         u.IsStaff,
		Age:             u.Age,
		WeightKg:        u.WeightKg,
		HeightCm:        u.HeightCm,
		Sex:             u.Sex,
		ProfileComplete: u.ProfileComplete(),
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request, user *database.User, status int) {
	pair, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{Tokens: pair, User: toUserResponse(user)})
}

// Register creates an account and signs the first session in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.users.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.session(w, r, user, http.StatusCreated)
}

// Login exchanges credentials for a token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.session(w, r, user, http.StatusOK)
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.tokens.VerifyRefresh(req.Refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.session(w, r, user, http.StatusOK)
}
