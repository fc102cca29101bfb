package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/bitbattle/bitbattle/pkg/services"
)

const (
	defaultLeaderboardLimit = 25
	maxLeaderboardLimit     = 100
)

// leaderboardHandler handles GET /leaderboard.
func (s *Server) leaderboardHandler(c *echo.Context) error {
	sortBy := c.QueryParam("sort_by")
	if sortBy == "" {
		sortBy = services.SortByWins
	}

	limit := defaultLeaderboardLimit
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxLeaderboardLimit {
			limit = n
		}
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	entries, total, err := s.leaderboard.Top(c.Request().Context(), sortBy, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
		"sort_by": sortBy,
		"limit":   limit,
		"offset":  offset,
	})
}
