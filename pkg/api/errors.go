package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/bitbattle/bitbattle/pkg/services"
)

// Error codes returned in the response body.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeSessionRevoked  = "SESSION_REVOKED"
	CodeForbidden       = "FORBIDDEN"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodeInternal        = "INTERNAL_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// ErrorResponse is the error body for every non-2xx response.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// mapServiceError translates service-layer errors into an HTTP status and
// body. Unknown errors are redacted to avoid leaking internals.
func mapServiceError(err error) (int, ErrorResponse) {
	var validErr *services.ValidationError
	if errors.As(err, &validErr) {
		return http.StatusBadRequest, ErrorResponse{
			Code:    CodeValidation,
			Message: validErr.Message,
			Field:   validErr.Field,
			Details: validErr.Details,
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, ErrorResponse{Code: codeForStatus(httpErr.Code), Message: msg}
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Code: CodeUnauthorized, Message: messageOf(err, "authentication required")}
	case errors.Is(err, services.ErrTokenExpired):
		return http.StatusUnauthorized, ErrorResponse{Code: CodeTokenExpired, Message: "token expired"}
	case errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Code: CodeInvalidToken, Message: "invalid token"}
	case errors.Is(err, services.ErrSessionRevoked):
		return http.StatusUnauthorized, ErrorResponse{Code: CodeSessionRevoked, Message: "session revoked, please sign in again"}
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Code: CodeForbidden, Message: messageOf(err, "forbidden")}
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Code: CodeNotFound, Message: messageOf(err, "not found")}
	case errors.Is(err, services.ErrAlreadyExists):
		return http.StatusConflict, ErrorResponse{Code: CodeAlreadyExists, Message: messageOf(err, "already exists")}
	case errors.Is(err, services.ErrExternalService):
		return http.StatusBadGateway, ErrorResponse{Code: CodeExternalService, Message: "upstream service unavailable"}
	default:
		slog.Error("Unhandled service error in API layer", "error", err)
		return http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: "internal server error"}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeAlreadyExists
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// messageOf keeps 4xx messages informative without exposing wrap chains:
// the outermost human-readable text wins, empty errors get the fallback.
func messageOf(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// renderErrors converts every error returned by a handler or middleware
// into the shared error body.
func renderErrors() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			status, body := mapServiceError(err)
			return c.JSON(status, body)
		}
	}
}
