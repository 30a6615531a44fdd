package httpapi

import (
	"net/http"
	"time"

	"github.com/shestoi/paymanager/internal/api/http/middleware"
	"github.com/shestoi/paymanager/internal/authctx"
)

// LoginRequest тело POST /login
type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type tokenResponse struct {
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PostLogin обрабатывает POST /login
func (h *Handler) PostLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	session, err := h.users.Login(r.Context(), deref(req.Email), deref(req.Password))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, tokenResponse{Type: "bearer", Value: session.ID, ExpiresAt: session.ExpiresAt})
}

// PostLogout обрабатывает POST /logout
func (h *Handler) PostLogout(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionToken(r)
	if p, ok := authctx.PrincipalFromContext(r.Context()); ok {
		sid = p.SessionID
	}
	if err := h.users.Logout(r.Context(), sid); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
