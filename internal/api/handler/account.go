package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jbcacc/cpm-backend/internal/api/apierr"
	"github.com/jbcacc/cpm-backend/internal/api/middleware"
	"github.com/jbcacc/cpm-backend/internal/api/request"
	"github.com/jbcacc/cpm-backend/internal/api/response"
	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/services/mutation"
)

// AccountHandler handles the game-account endpoints: proxied sign-in,
// account/vehicle inspection and the two bulk mutations.
type AccountHandler struct {
	backend  mutation.Backend
	identity mutation.IdentityProvider
	mutation *mutation.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(backend mutation.Backend, identity mutation.IdentityProvider, mutationService *mutation.Service) *AccountHandler {
	return &AccountHandler{
		backend:  backend,
		identity: identity,
		mutation: mutationService,
	}
}

// Login handles POST /api/v1/login - proxied game-account sign-in
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.GameLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	cred, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameLoginFromCredential(cred))
}

// GetAccount handles POST /api/v1/account - fetches the player record
// behind the supplied game credential
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	var req request.AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.AuthToken == "" {
		WriteError(w, NewInvalidRequestError("auth_token is required"))
		return
	}

	rec, err := h.backend.FetchPlayerRecord(r.Context(), req.AuthToken)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromRecord(rec))
}

// GetCars handles POST /api/v1/cars - fetches the vehicle list behind the
// supplied game credential
func (h *AccountHandler) GetCars(w http.ResponseWriter, r *http.Request) {
	var req request.AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.AuthToken == "" {
		WriteError(w, NewInvalidRequestError("auth_token is required"))
		return
	}

	cars, err := h.backend.FetchVehicleList(r.Context(), req.AuthToken)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CarsFromRecords(cars))
}

// ChangeLocalID handles POST /api/v1/change-localid
func (h *AccountHandler) ChangeLocalID(w http.ResponseWriter, r *http.Request) {
	var req request.ChangeLocalIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	newID := strings.TrimSpace(req.NewLocalID)
	if newID == "" {
		WriteError(w, NewInvalidRequestError("new_local_id is required"))
		return
	}
	if req.AuthToken == "" && (req.Email == "" || req.Password == "") {
		WriteError(w, NewInvalidRequestError("auth_token or email/password is required"))
		return
	}

	result, err := h.mutation.ChangeIdentifier(r.Context(), mutation.ChangeIdentifierParams{
		Credential:    req.AuthToken,
		Email:         req.Email,
		Password:      req.Password,
		NewLocalID:    newID,
		NameOverride:  req.Name,
		MoneyOverride: req.Money,
	})

	writeOperationResult(w, result, err)
}

// CloneAccount handles POST /api/v1/clone-account. Only full-tier sessions
// may clone.
func (h *AccountHandler) CloneAccount(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	if !session.Tier.AllowsClone() {
		WriteError(w, model.ErrTierForbidden)
		return
	}

	var req request.CloneAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.SourceAuth == "" {
		WriteError(w, NewInvalidRequestError("source_auth is required"))
		return
	}
	if req.TargetEmail == "" || req.TargetPassword == "" {
		WriteError(w, NewInvalidRequestError("target account credentials are required"))
		return
	}

	result, err := h.mutation.CloneAccount(r.Context(), mutation.CloneAccountParams{
		SourceCredential: req.SourceAuth,
		TargetEmail:      req.TargetEmail,
		TargetPassword:   req.TargetPassword,
		NewLocalID:       strings.TrimSpace(req.CustomLocalID),
	})

	writeOperationResult(w, result, err)
}

// writeOperationResult writes a mutation outcome. Fatal failures still get
// a structured OperationResult body; the error picks the status line.
func writeOperationResult(w http.ResponseWriter, result *model.OperationResult, err error) {
	status := http.StatusOK
	if err != nil {
		status = apierr.StatusFor(err)
	}
	response.JSON(w, status, result)
}
