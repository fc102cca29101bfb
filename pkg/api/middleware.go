package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// slowRequestThreshold marks requests worth warning about.
const slowRequestThreshold = time.Second

// securityHeaders adds standard security headers to all responses.
func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "1; mode=block")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
			return next(c)
		}
	}
}

// requestID propagates the caller's X-Request-ID or mints one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := c.Request().Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set("X-Request-ID", id)
			c.Set("request_id", id)
			return next(c)
		}
	}
}

// requestTiming logs every request with its latency; slow ones get a warning.
func requestTiming() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			elapsed := time.Since(start)

			_, status := echo.ResolveResponseStatus(c.Response(), err)
			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"duration_ms", elapsed.Milliseconds(),
				"request_id", c.Get("request_id"),
			}
			if elapsed > slowRequestThreshold {
				slog.Warn("Slow request", attrs...)
			} else {
				slog.Info("Request completed", attrs...)
			}
			return err
		}
	}
}

// corsMiddleware restricts browsers to the configured frontend origins.
func corsMiddleware(origins []string) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Request-ID"},
		AllowCredentials: true,
	})
}
