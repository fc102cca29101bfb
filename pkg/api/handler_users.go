package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/bitbattle/bitbattle/pkg/services"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// userProfileHandler handles GET /users/:id/profile.
func (s *Server) userProfileHandler(c *echo.Context) error {
	userID, err := services.ValidateUUID(c.Param("id"), "user_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	stats, err := s.users.StatsByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user":  user,
		"stats": stats,
	})
}

// userHistoryHandler handles GET /users/:id/history.
func (s *Server) userHistoryHandler(c *echo.Context) error {
	userID, err := services.ValidateUUID(c.Param("id"), "user_id")
	if err != nil {
		return err
	}

	limit := defaultHistoryLimit
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxHistoryLimit {
			limit = n
		}
	}

	ctx := c.Request().Context()
	results, err := s.history.FindByUser(ctx, userID, limit)
	if err != nil {
		return err
	}
	bests, err := s.history.ProblemBests(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"results":       results,
		"problem_bests": bests,
	})
}
