package api

import (
	"fmt"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/bitbattle/bitbattle/pkg/auth"
	"github.com/bitbattle/bitbattle/pkg/matchmaking"
	"github.com/bitbattle/bitbattle/pkg/services"
)

type matchmakingJoinRequest struct {
	ConnectionID string `json:"connection_id"`
	Username     string `json:"username"`
	Difficulty   string `json:"difficulty"`
	GameMode     string `json:"game_mode"`
}

// matchInfo is the payload handed to a matched player.
type matchInfo struct {
	RoomCode   string `json:"room_code"`
	Opponent   string `json:"opponent"`
	Difficulty string `json:"difficulty"`
	GameMode   string `json:"game_mode"`
}

// matchmakingJoinHandler handles POST /matchmaking/join. Ranked queueing
// requires an authenticated identity so the ladder has someone to rate.
func (s *Server) matchmakingJoinHandler(c *echo.Context) error {
	var req matchmakingJoinRequest
	if err := c.Bind(&req); err != nil {
		return services.NewValidationError("", "Invalid request body")
	}

	connectionID, err := services.ValidateConnectionID(req.ConnectionID)
	if err != nil {
		return err
	}
	username, err := services.ValidateUsername(req.Username)
	if err != nil {
		return err
	}
	if req.Difficulty == "" {
		req.Difficulty = "any"
	}
	difficulty, err := services.ValidateDifficulty(req.Difficulty)
	if err != nil {
		return err
	}
	if req.GameMode == "" {
		req.GameMode = matchmaking.ModeCasual
	}
	gameMode, err := services.ValidateGameMode(req.GameMode)
	if err != nil {
		return err
	}

	principal := auth.PrincipalFrom(c)
	if gameMode == matchmaking.ModeRanked && principal == nil {
		return fmt.Errorf("Authentication required for ranked matchmaking: %w", services.ErrForbidden)
	}

	player := matchmaking.QueuedPlayer{
		Username:     username,
		Rating:       services.DefaultRating,
		Difficulty:   matchmaking.QueueDifficulty(difficulty),
		GameMode:     gameMode,
		QueuedAt:     time.Now(),
		ConnectionID: connectionID,
	}
	if principal != nil {
		id := principal.UserID
		player.UserID = &id
		if stats, err := s.users.StatsByUserID(c.Request().Context(), id); err == nil {
			player.Rating = stats.RatingFor(ladderDifficulty(difficulty))
		}
	}
	s.queue.Join(player)

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Added to matchmaking queue",
		"queue_size": s.queue.Size(),
	})
}

// ladderDifficulty maps the queue wildcard onto the medium ladder.
func ladderDifficulty(difficulty string) string {
	if difficulty == string(matchmaking.QueueAny) {
		return "medium"
	}
	return difficulty
}

type matchmakingLeaveRequest struct {
	ConnectionID string `json:"connection_id"`
}

// matchmakingLeaveHandler handles POST /matchmaking/leave.
func (s *Server) matchmakingLeaveHandler(c *echo.Context) error {
	var req matchmakingLeaveRequest
	if err := c.Bind(&req); err != nil {
		return services.NewValidationError("", "Invalid request body")
	}
	connectionID, err := services.ValidateConnectionID(req.ConnectionID)
	if err != nil {
		return err
	}

	_, removed := s.queue.Leave(connectionID)
	message := "Removed from matchmaking queue"
	if !removed {
		message = "Not found in queue"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": removed,
		"message": message,
	})
}

// matchmakingStatusHandler handles GET /matchmaking/status.
func (s *Server) matchmakingStatusHandler(c *echo.Context) error {
	connectionID, err := services.ValidateConnectionID(c.QueryParam("connection_id"))
	if err != nil {
		return err
	}

	if match, ok := s.queue.MatchForPlayer(connectionID); ok {
		opponent := ""
		for _, p := range match.Players {
			if p.ConnectionID != connectionID {
				opponent = p.Username
				break
			}
		}
		difficulty := string(match.Difficulty)
		if match.Difficulty == matchmaking.QueueAny {
			difficulty = "random"
		}
		return c.JSON(http.StatusOK, map[string]any{
			"in_queue":    false,
			"match_found": true,
			"match_info": matchInfo{
				RoomCode:   match.RoomCode,
				Opponent:   opponent,
				Difficulty: difficulty,
				GameMode:   match.GameMode,
			},
		})
	}

	position, inQueue := s.queue.Position(connectionID)
	return c.JSON(http.StatusOK, map[string]any{
		"in_queue":    inQueue,
		"position":    position,
		"queue_size":  s.queue.Size(),
		"match_found": false,
	})
}
