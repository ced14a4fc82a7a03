package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jbcacc/cpm-backend/internal/api/middleware"
	"github.com/jbcacc/cpm-backend/internal/api/request"
	"github.com/jbcacc/cpm-backend/internal/api/response"
	"github.com/jbcacc/cpm-backend/internal/services/auth"
)

// LocalAuthHandler handles sessions for the tool itself: operator logins
// and access-key redemption
type LocalAuthHandler struct {
	authService *auth.Service
}

// NewLocalAuthHandler creates a new local auth handler
func NewLocalAuthHandler(authService *auth.Service) *LocalAuthHandler {
	return &LocalAuthHandler{
		authService: authService,
	}
}

// Login handles POST /api/v1/auth/login
func (h *LocalAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.AuthLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}

// Redeem handles POST /api/v1/auth/redeem
func (h *LocalAuthHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req request.RedeemKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	session, err := h.authService.RedeemKey(r.Context(), req.Code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}

// Logout handles POST /api/v1/auth/logout
func (h *LocalAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	h.authService.InvalidateSession(session.Token)
	w.WriteHeader(http.StatusNoContent)
}
