package game

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

// DefaultRoomCode is the room joined when a connection names no room. Room
// codes are normalized to uppercase on every entry point.
const DefaultRoomCode = "DEFAULT"

// Manager owns the live room table.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewManager creates an empty room table.
func NewManager() *Manager {
	return &Manager{rooms: make(map[string]*Room)}
}

// Get looks up a room by code.
func (m *Manager) Get(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

// Exists reports whether a room code is live. Used by the matchmaker for
// collision checks.
func (m *Manager) Exists(code string) bool {
	_, ok := m.Get(code)
	return ok
}

// GetOrCreate returns the room for a code, creating it with the given
// problem picker on first join. The picker runs only when the room is new.
func (m *Manager) GetOrCreate(code string, requiredPlayers int, gameMode string, pick func() *problems.Problem) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[code]; ok {
		return r
	}
	problem := pick()
	r := NewRoom(code, problem, requiredPlayers, gameMode)
	m.rooms[code] = r
	title := ""
	if problem != nil {
		title = problem.Title
	}
	slog.Info("Created room", "room", code, "required_players", requiredPlayers, "mode", gameMode, "problem", title)
	return r
}

// Create pre-creates a room, used by the matchmaker after pairing. An
// existing room with the same code is returned unchanged.
func (m *Manager) Create(code string, problem *problems.Problem, requiredPlayers int, gameMode string) *Room {
	return m.GetOrCreate(code, requiredPlayers, gameMode, func() *problems.Problem { return problem })
}

// LiveGame is one row of the public spectator listing.
type LiveGame struct {
	RoomID         string         `json:"room_id"`
	Players        []string       `json:"players"`
	PlayerCount    int            `json:"player_count"`
	SpectatorCount int64          `json:"spectator_count"`
	GameMode       string         `json:"game_mode"`
	Problem        *LiveProblem   `json:"problem"`
	GameEnded      bool           `json:"game_ended"`
	ElapsedSeconds int64          `json:"elapsed_seconds"`
}

// LiveProblem is the minimal problem view in the live listing.
type LiveProblem struct {
	Title      string              `json:"title"`
	Difficulty problems.Difficulty `json:"difficulty"`
}

// LiveGames lists public rooms whose game has started.
func (m *Manager) LiveGames() []LiveGame {
	m.mu.RLock()
	defer m.mu.RUnlock()

	games := []LiveGame{}
	for code, r := range m.rooms {
		if !r.IsPublic || !r.Started() {
			continue
		}
		players := r.Players()
		var prob *LiveProblem
		if r.Problem != nil {
			prob = &LiveProblem{Title: r.Problem.Title, Difficulty: r.Problem.Difficulty}
		}
		games = append(games, LiveGame{
			RoomID:         code,
			Players:        players,
			PlayerCount:    len(players),
			SpectatorCount: r.SpectatorCount(),
			GameMode:       r.GameMode,
			Problem:        prob,
			GameEnded:      r.Ended(),
			ElapsedSeconds: int64(time.Since(r.CreatedAt).Seconds()),
		})
	}
	return games
}

// ReapIdle removes empty lobbies and finished games older than ttl, closing
// their subscribers. Returns the number of rooms removed.
func (m *Manager) ReapIdle(ttl time.Duration) int {
	now := time.Now()

	m.mu.Lock()
	var reaped []*Room
	for code, r := range m.rooms {
		if r.idle(now, ttl) {
			delete(m.rooms, code)
			reaped = append(reaped, r)
		}
	}
	m.mu.Unlock()

	for _, r := range reaped {
		r.closeSubscribers()
		slog.Info("Reaped idle room", "room", r.Code)
	}
	return len(reaped)
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
