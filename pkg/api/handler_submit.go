package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/auth"
	"github.com/bitbattle/bitbattle/pkg/executor"
	"github.com/bitbattle/bitbattle/pkg/services"
)

// submitHandler handles POST /submit. Guests may submit; authenticated
// submissions also land in the player's history and stats.
func (s *Server) submitHandler(c *echo.Context) error {
	var req executor.SubmissionRequest
	if err := c.Bind(&req); err != nil {
		return services.NewValidationError("", "Invalid request body")
	}

	var userID *uuid.UUID
	if principal := auth.PrincipalFrom(c); principal != nil {
		id := principal.UserID
		userID = &id
	}

	result, err := s.submitter.Submit(c.Request().Context(), req, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
