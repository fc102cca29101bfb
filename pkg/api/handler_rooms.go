package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// liveRoomsHandler handles GET /rooms/live: public in-progress games for the
// spectator lobby.
func (s *Server) liveRoomsHandler(c *echo.Context) error {
	live := s.rooms.LiveGames()
	return c.JSON(http.StatusOK, map[string]any{
		"live_games": live,
		"total":      len(live),
	})
}
