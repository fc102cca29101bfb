// Package api exposes the HTTP and WebSocket surface: auth, problems,
// matchmaking, submissions, live games, and the realtime room protocol.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/bitbattle/bitbattle/pkg/auth"
	"github.com/bitbattle/bitbattle/pkg/config"
	"github.com/bitbattle/bitbattle/pkg/database"
	"github.com/bitbattle/bitbattle/pkg/executor"
	"github.com/bitbattle/bitbattle/pkg/game"
	"github.com/bitbattle/bitbattle/pkg/matchmaking"
	"github.com/bitbattle/bitbattle/pkg/models"
	"github.com/bitbattle/bitbattle/pkg/problems"
	"github.com/bitbattle/bitbattle/pkg/services"
)

// UserDirectory is the slice of the user store the handlers need.
type UserDirectory interface {
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, googleID, email, displayName string, avatarURL *string) (*models.User, error)
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) error
	StatsByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

// SessionStore tracks refresh-token sessions.
type SessionStore interface {
	Create(ctx context.Context, tokenID, userID uuid.UUID, expiresAt time.Time, userAgent, ipAddress *string) error
	Validate(ctx context.Context, tokenID uuid.UUID) (*models.RefreshToken, error)
	Revoke(ctx context.Context, tokenID uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// HistoryStore serves per-user game history.
type HistoryStore interface {
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.GameResult, error)
	ProblemBests(ctx context.Context, userID uuid.UUID) ([]models.ProblemBest, error)
}

// LeaderboardSource serves the global rankings.
type LeaderboardSource interface {
	Top(ctx context.Context, sortBy string, limit, offset int) ([]services.LeaderboardEntry, int, error)
}

// Submitter runs the submission pipeline.
type Submitter interface {
	Submit(ctx context.Context, req executor.SubmissionRequest, userID *uuid.UUID) (*executor.SubmissionResult, error)
}

// Deps carries everything the server wires into its routes. DB, Google, and
// the stores may be nil in tests; affected routes then fail closed.
type Deps struct {
	Config      *config.Config
	DB          *database.Client
	Tokens      *auth.TokenManager
	Google      *auth.GoogleOAuth
	Users       UserDirectory
	Sessions    SessionStore
	History     HistoryStore
	Leaderboard LeaderboardSource
	Registry    *problems.Registry
	Rooms       *game.Manager
	Queue       *matchmaking.Queue
	Submitter   Submitter
}

// Server is the HTTP server.
type Server struct {
	cfg         *config.Config
	db          *database.Client
	tokens      *auth.TokenManager
	google      *auth.GoogleOAuth
	users       UserDirectory
	sessions    SessionStore
	history     HistoryStore
	leaderboard LeaderboardSource
	registry    *problems.Registry
	rooms       *game.Manager
	queue       *matchmaking.Queue
	submitter   Submitter

	echo *echo.Echo
	http *http.Server
}

// NewServer builds the router with all middleware and routes registered.
func NewServer(deps Deps) *Server {
	s := &Server{
		cfg:         deps.Config,
		db:          deps.DB,
		tokens:      deps.Tokens,
		google:      deps.Google,
		users:       deps.Users,
		sessions:    deps.Sessions,
		history:     deps.History,
		leaderboard: deps.Leaderboard,
		registry:    deps.Registry,
		rooms:       deps.Rooms,
		queue:       deps.Queue,
		submitter:   deps.Submitter,
		echo:        echo.New(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.Use(renderErrors())
	e.Use(requestID())
	e.Use(requestTiming())
	e.Use(securityHeaders())
	e.Use(corsMiddleware(s.cfg.CORSOrigins))
	e.Use(rateLimit(newIPRateLimiter(generalRPS)))

	e.GET("/", s.rootHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/ready", s.readyHandler)

	e.GET("/problems", s.listProblemsHandler)
	e.GET("/problems/:id", s.getProblemHandler)

	authLimit := rateLimit(newIPRateLimiter(authRPS))
	authGroup := e.Group("/auth", authLimit)
	authGroup.GET("/google", s.googleLoginHandler)
	authGroup.GET("/callback", s.googleCallbackHandler)
	authGroup.GET("/me", s.meHandler, auth.Required(s.tokens))
	authGroup.POST("/refresh", s.refreshHandler)
	authGroup.POST("/logout", s.logoutHandler)
	authGroup.POST("/logout-all", s.logoutAllHandler, auth.Required(s.tokens))
	authGroup.POST("/set-username", s.setUsernameHandler, auth.Required(s.tokens))

	e.GET("/users/:id/profile", s.userProfileHandler)
	e.GET("/users/:id/history", s.userHistoryHandler)
	e.GET("/leaderboard", s.leaderboardHandler)

	mmLimit := rateLimit(newIPRateLimiter(matchmakingRPS))
	mm := e.Group("/matchmaking", mmLimit)
	mm.POST("/join", s.matchmakingJoinHandler, auth.Optional(s.tokens))
	mm.POST("/leave", s.matchmakingLeaveHandler)
	mm.GET("/status", s.matchmakingStatusHandler)

	e.POST("/submit", s.submitHandler, rateLimit(newIPRateLimiter(submitRPS)), auth.Optional(s.tokens))

	e.GET("/ws", s.wsHandler, auth.Optional(s.tokens))
	e.GET("/ws/spectate", s.spectateHandler)
	e.GET("/rooms/live", s.liveRoomsHandler)
}

// Start runs the server on addr, blocking until shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
