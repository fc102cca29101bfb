package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"

	"github.com/bitbattle/bitbattle/pkg/services"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", fmt.Errorf("login first: %w", services.ErrUnauthorized), http.StatusUnauthorized, CodeUnauthorized},
		{"expired token", services.ErrTokenExpired, http.StatusUnauthorized, CodeTokenExpired},
		{"invalid token", services.ErrInvalidToken, http.StatusUnauthorized, CodeInvalidToken},
		{"revoked session", services.ErrSessionRevoked, http.StatusUnauthorized, CodeSessionRevoked},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"not found", fmt.Errorf("problem x: %w", services.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"conflict", services.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists},
		{"upstream down", services.ErrExternalService, http.StatusBadGateway, CodeExternalService},
		{"unknown", errors.New("pg: connection refused"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := mapServiceError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestMapServiceErrorValidation(t *testing.T) {
	ve := services.NewValidationError("username", "Username is required")
	status, body := mapServiceError(ve)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeValidation, body.Code)
	assert.Equal(t, "username", body.Field)
	assert.Equal(t, "Username is required", body.Message)
}

func TestMapServiceErrorRedactsInternals(t *testing.T) {
	_, body := mapServiceError(errors.New("dial tcp 10.0.0.5:5432: i/o timeout"))
	assert.Equal(t, "internal server error", body.Message)
}

func TestMapServiceErrorEchoHTTPError(t *testing.T) {
	status, body := mapServiceError(echo.NewHTTPError(http.StatusNotFound, "route not found"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, body.Code)
	assert.Equal(t, "route not found", body.Message)
}
