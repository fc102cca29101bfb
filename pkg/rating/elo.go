// Package rating implements the Elo ladder used for ranked games.
package rating

import "math"

// kFactor picks the update weight from ranked experience: new players move
// fast, established ones slowly.
func kFactor(gamesPlayed int) float64 {
	switch {
	case gamesPlayed < 10:
		return 40
	case gamesPlayed < 30:
		return 32
	default:
		return 24
	}
}

// EloDelta returns the signed rating change for a player against one
// opponent rating. Callers clamp the resulting rating at the 100 floor.
func EloDelta(playerRating, opponentRating int, won bool, gamesPlayed int) int {
	expected := 1.0 / (1.0 + math.Pow(10, float64(opponentRating-playerRating)/400.0))
	actual := 0.0
	if won {
		actual = 1.0
	}
	return int(math.Round(kFactor(gamesPlayed) * (actual - expected)))
}

// Floor is the minimum rating a player can drop to.
const Floor = 100

// Apply returns the post-game rating after the floor clamp.
func Apply(current, delta int) int {
	next := current + delta
	if next < Floor {
		return Floor
	}
	return next
}
