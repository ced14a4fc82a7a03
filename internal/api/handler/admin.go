package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jbcacc/cpm-backend/internal/api/middleware"
	"github.com/jbcacc/cpm-backend/internal/api/request"
	"github.com/jbcacc/cpm-backend/internal/api/response"
	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/services/auth"
	"github.com/jbcacc/cpm-backend/internal/storage"
)

// AdminHandler handles key management and the operation audit log
type AdminHandler struct {
	authService *auth.Service
	store       storage.Storage
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *auth.Service, store storage.Storage) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		store:       store,
	}
}

// CreateKey handles POST /api/v1/keys
func (h *AdminHandler) CreateKey(w http.ResponseWriter, r *http.Request) {
	var req request.CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	tier := model.KeyTier(req.Tier)
	if !tier.Valid() {
		WriteError(w, NewInvalidRequestError("tier must be \"hour\" or \"full\""))
		return
	}

	session := middleware.MustGetSession(r.Context())
	key, err := h.authService.CreateKey(r.Context(), tier, session.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccessKeyFromModel(key))
}

// ListKeys handles GET /api/v1/keys
func (h *AdminHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.authService.ListKeys(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.AccessKey, len(keys))
	for i, key := range keys {
		out[i] = response.AccessKeyFromModel(key)
	}
	response.JSON(w, http.StatusOK, out)
}

// DeleteKey handles DELETE /api/v1/keys/{code}
func (h *AdminHandler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.authService.DeleteKey(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListOperations handles GET /api/v1/operations
func (h *AdminHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.store.ListOperationLogs(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, entries)
}
