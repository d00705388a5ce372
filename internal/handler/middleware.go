package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/rmsalud/salud-api/internal/apperrors"
)

type ctxKey int

const userIDKey ctxKey = iota

// userID returns the authenticated user ID stored by RequireAuth.
func userID(r *http.Request) uint {
	id, _ := r.Context().Value(userIDKey).(uint)
	return id
}

// RequireAuth verifies the bearer access token and stores the user ID in
// the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, r, apperrors.ErrUnauthorized)
			return
		}
		id, err := h.tokens.VerifyAccess(strings.TrimSpace(token))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

// RequireStaff allows only staff accounts through. Must run after
// RequireAuth.
func (h *Handler) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.users.GetByID(r.Context(), userID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !user.IsStaff {
			writeError(w, r, apperrors.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireProfile gates features that need the body-metric profile, such
// as goals and progress. Must run after RequireAuth.
func (h *Handler) RequireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.users.GetByID(r.Context(), userID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !user.ProfileComplete() {
			writeError(w, r, apperrors.ErrProfileRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
