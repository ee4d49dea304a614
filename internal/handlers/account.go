package handlers

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/swelljoe/weatherpulse/internal/auth"
)

// HandleRegister creates an account
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	u, err := h.auth.Register(r.Context(), req)
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		h.writeFieldError(w, verr.Field, verr.Message)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// HandleToken exchanges a username or email and password for tokens
func (h *Handlers) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Identifier == "" {
		h.writeFieldError(w, "identifier", "This field is required.")
		return
	}
	if req.Password == "" {
		h.writeFieldError(w, "password", "This field is required.")
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Identifier, req.Password)
	switch {
	case errors.Is(err, auth.ErrNoAccount):
		h.writeDetail(w, http.StatusBadRequest, "No account found with that email")
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.writeDetail(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, auth.ErrDisabled):
		h.writeDetail(w, http.StatusBadRequest, "Account is disabled")
	case err != nil:
		h.internalError(w, r, err)
	default:
		h.writeJSON(w, http.StatusOK, pair)
	}
}

// HandleTokenRefresh issues a new access token
func (h *Handlers) HandleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Refresh == "" {
		h.writeFieldError(w, "refresh", "This field is required.")
		return
	}

	access, err := h.auth.Refresh(r.Context(), req.Refresh)
	if errors.Is(err, auth.ErrInvalidToken) {
		h.writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

// HandleMe describes the authenticated user
func (h *Handlers) HandleMe(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	h.writeJSON(w, http.StatusOK, auth.Summary{ID: u.ID, Username: u.Username, Email: u.Email})
}
