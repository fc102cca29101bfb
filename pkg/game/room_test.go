package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

func testProblem() *problems.Problem {
	limit := 15
	return &problems.Problem{
		ID:               "two-sum",
		Title:            "Two Sum",
		Description:      "Find two numbers that add up to target.",
		Difficulty:       problems.Easy,
		Examples:         []problems.TestCase{{Input: "[2,7] 9", ExpectedOutput: "[0,1]"}},
		TestCases:        []problems.TestCase{{Input: "[2,7] 9", ExpectedOutput: "[0,1]"}},
		StarterCode:      map[string]string{"javascript": "function twoSum() {}"},
		TimeLimitMinutes: &limit,
	}
}

// drain collects every message currently buffered on a subscriber.
func drain(s *Subscriber) []Envelope {
	var out []Envelope
	for {
		select {
		case msg, ok := <-s.C:
			if !ok {
				return out
			}
			var env Envelope
			if err := json.Unmarshal(msg, &env); err == nil {
				out = append(out, env)
			}
		default:
			return out
		}
	}
}

func msgTypes(envs []Envelope) []string {
	types := make([]string, len(envs))
	for i, e := range envs {
		types[i] = e.Type
	}
	return types
}

func TestRoomJoinFlow(t *testing.T) {
	room := NewRoom("TEST-ROOM-1234", testProblem(), 2, "casual")

	alice := room.Subscribe()
	require.True(t, room.Join("alice", nil, alice))
	assert.False(t, room.Started())

	got := msgTypes(drain(alice))
	assert.Equal(t, []string{"user_joined", "problem_assigned", "player_count"}, got)

	bob := room.Subscribe()
	require.True(t, room.Join("bob", nil, bob))
	assert.True(t, room.Started())

	// Bob sees the replayed roster, his own join, the problem, the count,
	// and the game start.
	got = msgTypes(drain(bob))
	assert.Equal(t, []string{"user_joined", "user_joined", "problem_assigned", "player_count", "game_start"}, got)

	// Alice sees bob's join, the new count, and the game start.
	got = msgTypes(drain(alice))
	assert.Equal(t, []string{"user_joined", "player_count", "game_start"}, got)

	assert.Equal(t, []string{"alice", "bob"}, room.Players())
}

func TestRoomJoinFullOnlyNotifiesJoiner(t *testing.T) {
	room := NewRoom("TEST-ROOM-1234", testProblem(), 1, "casual")

	alice := room.Subscribe()
	require.True(t, room.Join("alice", nil, alice))
	drain(alice)

	late := room.Subscribe()
	require.False(t, room.Join("late", nil, late))

	got := drain(late)
	require.Len(t, got, 1)
	assert.Equal(t, "room_full", got[0].Type)

	var data struct {
		Message  string `json:"message"`
		Current  int    `json:"current"`
		Required int    `json:"required"`
	}
	require.NoError(t, json.Unmarshal(got[0].Data, &data))
	assert.Equal(t, "This room is full. The game has already started.", data.Message)
	assert.Equal(t, 1, data.Current)
	assert.Equal(t, 1, data.Required)

	assert.Empty(t, drain(alice), "existing players should not see room_full")
	assert.Equal(t, []string{"alice"}, room.Players())
}

func TestRoomJoinRegistersIdentity(t *testing.T) {
	room := NewRoom("TEST-ROOM-1234", testProblem(), 2, "ranked")
	id := uuid.New()

	sub := room.Subscribe()
	require.True(t, room.Join("alice", &id, sub))

	ids := room.PlayerIDs()
	assert.Equal(t, id, ids["alice"])
	_, guest := ids["bob"]
	assert.False(t, guest)
}

func TestRoomCodeChangeAndLeave(t *testing.T) {
	room := NewRoom("TEST-ROOM-1234", testProblem(), 2, "casual")
	sub := room.Subscribe()
	require.True(t, room.Join("alice", nil, sub))
	drain(sub)

	raw := []byte(`{"type":"code_change","data":{"username":"alice","code":"x = 1"}}`)
	room.CodeChange("alice", "x = 1", raw)

	got := drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, "code_change", got[0].Type)

	leaveRaw := []byte(`{"type":"user_left","data":{"username":"alice"}}`)
	room.Leave("alice", leaveRaw)
	assert.Empty(t, room.Players())

	got = drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, "user_left", got[0].Type)
}

func TestRoomSingleWinner(t *testing.T) {
	room := NewRoom("TEST-ROOM-1234", testProblem(), 1, "casual")
	sub := room.Subscribe()
	require.True(t, room.Join("alice", nil, sub))
	require.True(t, room.Started())

	assert.True(t, room.TryFinish("alice"))
	assert.False(t, room.TryFinish("bob"), "second winner must lose the race")
	require.NotNil(t, room.Winner())
	assert.Equal(t, "alice", *room.Winner())
	assert.True(t, room.Ended())
}

func TestRoomTryFinishRequiresActiveGame(t *testing.T) {
	room := NewRoom("TEST-ROOM-1234", testProblem(), 2, "casual")
	assert.False(t, room.TryFinish("alice"), "lobby games cannot be won")
}

func TestRoomSlowSubscriberDropped(t *testing.T) {
	room := NewRoom("TEST-ROOM-1234", testProblem(), 2, "casual")
	slow := room.Subscribe()

	for i := 0; i <= subscriberBuffer; i++ {
		room.Broadcast([]byte(`{"type":"code_change","data":{}}`))
	}

	// The channel was closed when the buffer overflowed.
	n := 0
	for range slow.C {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)

	// Unsubscribe after the drop is a no-op.
	room.Unsubscribe(slow)
}

func TestRoomSpectatorSnapshot(t *testing.T) {
	room := NewRoom("TEST-ROOM-1234", testProblem(), 1, "casual")
	player := room.Subscribe()
	require.True(t, room.Join("alice", nil, player))
	room.CodeChange("alice", "let x = 1", []byte(`{"type":"code_change"}`))
	require.True(t, room.TryFinish("alice"))

	spec := room.Subscribe()
	room.AttachSpectator(spec)
	assert.Equal(t, int64(1), room.SpectatorCount())

	got := drain(spec)
	require.Len(t, got, 1)
	require.Equal(t, "spectate_init", got[0].Type)

	var data struct {
		RoomID      string            `json:"room_id"`
		Players     []string          `json:"players"`
		GameStarted bool              `json:"game_started"`
		GameEnded   bool              `json:"game_ended"`
		Winner      *string           `json:"winner"`
		PlayerCodes map[string]string `json:"player_codes"`
		Problem     *struct {
			ID          string `json:"id"`
			StarterCode any    `json:"starter_code"`
		} `json:"problem"`
	}
	require.NoError(t, json.Unmarshal(got[0].Data, &data))
	assert.Equal(t, "TEST-ROOM-1234", data.RoomID)
	assert.Equal(t, []string{"alice"}, data.Players)
	assert.True(t, data.GameStarted)
	assert.True(t, data.GameEnded)
	require.NotNil(t, data.Winner)
	assert.Equal(t, "alice", *data.Winner)
	assert.Equal(t, "let x = 1", data.PlayerCodes["alice"])
	require.NotNil(t, data.Problem)
	assert.Equal(t, "two-sum", data.Problem.ID)
	assert.Nil(t, data.Problem.StarterCode, "spectators never see starter code")

	room.DetachSpectator()
	assert.Equal(t, int64(0), room.SpectatorCount())
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager()
	picked := 0
	pick := func() *problems.Problem {
		picked++
		return testProblem()
	}

	r1 := m.GetOrCreate("ROOM-A", 2, "casual", pick)
	r2 := m.GetOrCreate("ROOM-A", 4, "ranked", pick)
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, picked, "problem picker runs only on creation")
	assert.Equal(t, 2, r2.RequiredPlayers)
	assert.True(t, m.Exists("ROOM-A"))
	assert.False(t, m.Exists("ROOM-B"))
}

func TestManagerLiveGames(t *testing.T) {
	m := NewManager()

	lobby := m.Create("LOBBY-ROOM-1111", testProblem(), 2, "casual")
	_ = lobby

	active := m.Create("LIVE-ROOM-2222", testProblem(), 1, "ranked")
	sub := active.Subscribe()
	require.True(t, active.Join("alice", nil, sub))

	games := m.LiveGames()
	require.Len(t, games, 1)
	assert.Equal(t, "LIVE-ROOM-2222", games[0].RoomID)
	assert.Equal(t, 1, games[0].PlayerCount)
	assert.Equal(t, "ranked", games[0].GameMode)
	require.NotNil(t, games[0].Problem)
	assert.Equal(t, "Two Sum", games[0].Problem.Title)
}

func TestManagerReapIdle(t *testing.T) {
	m := NewManager()

	stale := m.Create("STALE-ROOM-1111", testProblem(), 2, "casual")
	stale.CreatedAt = time.Now().Add(-time.Hour)

	fresh := m.Create("FRESH-ROOM-2222", testProblem(), 2, "casual")
	_ = fresh

	occupied := m.Create("BUSY-ROOM-3333", testProblem(), 2, "casual")
	occSub := occupied.Subscribe()
	require.True(t, occupied.Join("alice", nil, occSub))
	occupied.CreatedAt = time.Now().Add(-time.Hour)

	ended := m.Create("DONE-ROOM-4444", testProblem(), 1, "casual")
	endSub := ended.Subscribe()
	require.True(t, ended.Join("bob", nil, endSub))
	require.True(t, ended.TryFinish("bob"))
	ended.endedAt = time.Now().Add(-time.Hour)

	staleSub := stale.Subscribe()

	reaped := m.ReapIdle(5 * time.Minute)
	assert.Equal(t, 2, reaped)
	assert.False(t, m.Exists("STALE-ROOM-1111"))
	assert.False(t, m.Exists("DONE-ROOM-4444"))
	assert.True(t, m.Exists("FRESH-ROOM-2222"))
	assert.True(t, m.Exists("BUSY-ROOM-3333"), "occupied lobby survives")

	// Reaped rooms close their subscriber channels.
	_, open := <-staleSub.C
	assert.False(t, open)
}
