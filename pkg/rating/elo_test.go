package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEloDelta(t *testing.T) {
	tests := []struct {
		name        string
		player      int
		opponent    int
		won         bool
		gamesPlayed int
		want        int
	}{
		{"equal ratings, new player wins", 1200, 1200, true, 0, 20},
		{"equal ratings, new player loses", 1200, 1200, false, 0, -20},
		{"equal ratings, mid-tier win", 1200, 1200, true, 10, 16},
		{"equal ratings, veteran win", 1200, 1200, true, 30, 12},
		{"underdog win pays more", 1200, 1300, true, 8, 26},
		{"favorite loss at k24", 1300, 1200, false, 30, -15},
		{"experienced favorite beats underdog", 1300, 1200, true, 30, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EloDelta(tt.player, tt.opponent, tt.won, tt.gamesPlayed))
		})
	}
}

func TestEloDeltaCrossTable(t *testing.T) {
	// A (1200, 8 ranked games) beats B (1300, 20 ranked games):
	// A gains at K=40, B loses at K=32.
	deltaA := EloDelta(1200, 1300, true, 8)
	deltaB := EloDelta(1300, 1200, false, 20)
	assert.Equal(t, 26, deltaA)
	assert.Equal(t, -20, deltaB)
	assert.Equal(t, 1226, Apply(1200, deltaA))
	assert.Equal(t, 1280, Apply(1300, deltaB))
}

func TestApplyFloor(t *testing.T) {
	assert.Equal(t, 100, Apply(105, -30))
	assert.Equal(t, 100, Apply(100, -1))
	assert.Equal(t, 130, Apply(120, 10))
}
