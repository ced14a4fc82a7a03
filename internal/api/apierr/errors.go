package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeAuthFailed         = "AUTH_FAILED"
	CodeFetchFailed        = "FETCH_FAILED"
	CodeParseFailed        = "PARSE_FAILED"
	CodeSaveFailed         = "SAVE_FAILED"
	CodeNoOp               = "NO_OP"
	CodeTierForbidden      = "TIER_FORBIDDEN"
	CodeAdminOnly          = "ADMIN_ONLY"
	CodeKeyNotFound        = "KEY_NOT_FOUND"
	CodeKeyAlreadyUsed     = "KEY_ALREADY_USED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusFor returns the HTTP status an error maps to. Handlers that write
// an OperationResult body use this for the status line.
func StatusFor(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// The remote backend taxonomy keeps the full error string so the
	// backend's own code/reason reaches the caller for diagnosis
	switch {
	case errors.Is(err, model.ErrAuth):
		return &httpError{http.StatusUnauthorized, APIError{CodeAuthFailed, err.Error()}}
	case errors.Is(err, model.ErrNoOp):
		return &httpError{http.StatusBadRequest, APIError{CodeNoOp, err.Error()}}
	case errors.Is(err, model.ErrParse):
		return &httpError{http.StatusBadGateway, APIError{CodeParseFailed, err.Error()}}
	case errors.Is(err, model.ErrFetch):
		return &httpError{http.StatusBadGateway, APIError{CodeFetchFailed, err.Error()}}
	case errors.Is(err, model.ErrSave):
		return &httpError{http.StatusBadGateway, APIError{CodeSaveFailed, err.Error()}}

	// Local bookkeeping errors
	case errors.Is(err, model.ErrTierForbidden):
		return &httpError{http.StatusForbidden, APIError{CodeTierForbidden, "This operation is not available on your access tier"}}
	case errors.Is(err, model.ErrKeyNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeKeyNotFound, "Access key not found"}}
	case errors.Is(err, model.ErrKeyAlreadyUsed):
		return &httpError{http.StatusConflict, APIError{CodeKeyAlreadyUsed, "Access key has already been redeemed"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	// Local session errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewAdminOnlyError creates a forbidden error for admin-only endpoints
func NewAdminOnlyError() error {
	return &httpError{http.StatusForbidden, APIError{CodeAdminOnly, "Admin access required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
