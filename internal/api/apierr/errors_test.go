package apierr

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jbcacc/cpm-backend/internal/model"
	"github.com/jbcacc/cpm-backend/internal/services/auth"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"auth", model.NewAuthError("INVALID_PASSWORD"), http.StatusUnauthorized},
		{"wrapped auth", fmt.Errorf("step: %w", model.ErrAuth), http.StatusUnauthorized},
		{"no-op", model.ErrNoOp, http.StatusBadRequest},
		{"fetch", model.ErrFetch, http.StatusBadGateway},
		{"parse", model.ErrParse, http.StatusBadGateway},
		{"save", model.ErrSave, http.StatusBadGateway},
		{"tier", model.ErrTierForbidden, http.StatusForbidden},
		{"key missing", model.ErrKeyNotFound, http.StatusNotFound},
		{"key used", model.ErrKeyAlreadyUsed, http.StatusConflict},
		{"bad login", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"bad session", auth.ErrInvalidSession, http.StatusUnauthorized},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func TestWriteErrorPreservesBackendReason(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, model.NewAuthError("EMAIL_NOT_FOUND"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "AUTH_FAILED")
	assert.Contains(t, rr.Body.String(), "EMAIL_NOT_FOUND")
}

func TestWriteErrorInvalidRequest(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, NewInvalidRequestError("new_local_id is required"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
	assert.Contains(t, rr.Body.String(), "new_local_id is required")
}
