package matchmaking

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/game"
	"github.com/bitbattle/bitbattle/pkg/problems"
)

// tickInterval is how often the pairing pass runs.
const tickInterval = 2 * time.Second

// matchPlayers is the room size for matchmade games.
const matchPlayers = 2

// Service drives the periodic pairing pass and pre-creates a room for every
// match so both players join a game that already has its problem assigned.
type Service struct {
	queue    *Queue
	rooms    *game.Manager
	registry *problems.Registry

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates the matchmaker loop.
func NewService(queue *Queue, rooms *game.Manager, registry *problems.Registry) *Service {
	return &Service{queue: queue, rooms: rooms, registry: registry}
}

// Start launches the background pairing loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Matchmaking service started", "interval", tickInterval)
}

// Stop signals the loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Matchmaking service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	matches := s.queue.ProcessQueue()
	for _, m := range matches {
		s.createRoom(ctx, m)
	}
}

// createRoom pre-creates the matched room with a problem of the resolved
// difficulty. Authenticated players get an AI-generated problem they have
// not seen when one is available.
func (s *Service) createRoom(ctx context.Context, m Match) {
	playerIDs := playerUUIDs(m.Players)
	problem := s.registry.PickForPlayers(ctx, string(m.Difficulty), playerIDs)
	s.rooms.Create(m.RoomCode, problem, matchPlayers, m.GameMode)

	names := make([]string, len(m.Players))
	for i, p := range m.Players {
		names[i] = p.Username
	}
	slog.Info("Match created",
		"room", m.RoomCode,
		"players", names,
		"difficulty", m.Difficulty,
		"mode", m.GameMode)
}

func playerUUIDs(players []QueuedPlayer) []uuid.UUID {
	var ids []uuid.UUID
	for _, p := range players {
		if p.UserID != nil {
			ids = append(ids, *p.UserID)
		}
	}
	return ids
}
