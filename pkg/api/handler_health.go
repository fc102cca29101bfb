package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"
)

// HealthCheck is one component's state in the readiness response.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReadyResponse is the /ready body.
type ReadyResponse struct {
	Status string                 `json:"status"`
	Checks map[string]HealthCheck `json:"checks"`
}

// rootHandler handles GET /: a liveness banner.
func (s *Server) rootHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "bitbattle",
		"status":  "ok",
	})
}

// healthHandler handles GET /health. It never touches dependencies so an
// upstream outage cannot restart the game server.
func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    healthStatusHealthy,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// readyHandler handles GET /ready: pings the database and reports 503 until
// it answers. The Docker daemon and the LLM are deliberately excluded.
func (s *Server) readyHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]HealthCheck)
	status := "ready"

	if s.db != nil {
		if _, err := s.db.Health(reqCtx); err != nil {
			status = healthStatusUnhealthy
			checks["database"] = HealthCheck{Status: healthStatusUnhealthy, Message: err.Error()}
		} else {
			checks["database"] = HealthCheck{Status: healthStatusHealthy}
		}
	}
	checks["rooms"] = HealthCheck{Status: healthStatusHealthy}

	httpStatus := http.StatusOK
	if status == healthStatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, &ReadyResponse{Status: status, Checks: checks})
}
