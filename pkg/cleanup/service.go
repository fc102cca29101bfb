// Package cleanup provides data retention and cleanup services.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitbattle/bitbattle/pkg/game"
)

// TokenSweeper removes refresh tokens past their expiry.
type TokenSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Service periodically enforces retention policies:
//   - Reaps idle game rooms (finished games and abandoned lobbies)
//   - Removes expired refresh token rows
//
// All operations are idempotent.
type Service struct {
	rooms    *game.Manager
	tokens   TokenSweeper
	roomTTL  time.Duration
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service. tokens may be nil when the
// database is not in play.
func NewService(rooms *game.Manager, tokens TokenSweeper, roomTTL, interval time.Duration) *Service {
	return &Service{
		rooms:    rooms,
		tokens:   tokens,
		roomTTL:  roomTTL,
		interval: interval,
	}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started",
		"room_ttl", s.roomTTL,
		"interval", s.interval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(ctx context.Context) {
	s.reapIdleRooms()
	s.deleteExpiredTokens(ctx)
}

func (s *Service) reapIdleRooms() {
	count := s.rooms.ReapIdle(s.roomTTL)
	if count > 0 {
		slog.Info("Retention: reaped idle rooms", "count", count)
	}
}

func (s *Service) deleteExpiredTokens(ctx context.Context) {
	if s.tokens == nil {
		return
	}
	count, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		slog.Error("Retention: token cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: deleted expired refresh tokens", "count", count)
	}
}
