package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestConstructorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{NewNotFound("missing"), http.StatusNotFound, "NOT_FOUND"},
		{NewUnauthorized("who"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{NewForbidden("no"), http.StatusForbidden, "FORBIDDEN"},
		{NewConflict("dup"), http.StatusConflict, "CONFLICT"},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		domainErr := ToDomainError(tt.err)
		assert.Equal(t, tt.status, domainErr.HTTPStatus)
		assert.Equal(t, tt.code, domainErr.Code)
	}
}

func TestToDomainErrorMapsMissingDocuments(t *testing.T) {
	domainErr := ToDomainError(mongo.ErrNoDocuments)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestToDomainErrorHidesInternalCause(t *testing.T) {
	cause := errors.New("connection reset by peer")
	domainErr := ToDomainError(cause)

	require.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	// Clients see the generic message; the cause stays wrapped for logs.
	assert.Equal(t, "internal server error", domainErr.Message)
	assert.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorUnwrapsWrappedDomainErrors(t *testing.T) {
	inner := NewNotFound("missing")
	wrapped := errors.Join(errors.New("context"), inner)
	assert.Equal(t, http.StatusNotFound, ToDomainError(wrapped).HTTPStatus)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
