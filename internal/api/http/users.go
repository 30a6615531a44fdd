package httpapi

import (
	"net/http"
	"time"

	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/service"
)

// UserRequest тело POST/PUT /users
type UserRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// пароль и его хэш наружу не отдаются
type userResponse struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u repository.User) userResponse {
	return userResponse{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (req UserRequest) input() service.UserInput {
	in := service.UserInput{FullName: req.FullName, Email: req.Email, Password: req.Password}
	if req.Role != nil {
		role := repository.Role(*req.Role)
		in.Role = &role
	}
	return in
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"users": out})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toUserResponse(u))
}

func (h *Handler) PostUsers(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	u, err := h.users.Create(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) PutUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	u, err := h.users.Update(r.Context(), id, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toUserResponse(u))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
