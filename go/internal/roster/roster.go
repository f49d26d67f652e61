// Package roster derives per-participant rosters from the pick log and
// checks them against position limits. Everything here is recomputed from
// a snapshot on each call.
package roster

import (
	"github.com/google/uuid"
	"github.com/mcdev12/snakedraft/go/internal/models"
)

// PositionCounts tallies the roster by position
func PositionCounts(roster []models.Player) models.PositionCounts {
	counts := make(models.PositionCounts, len(models.Positions))
	for _, p := range roster {
		counts[p.Position]++
	}
	return counts
}

// RemainingSlots returns max(0, limit-count) for every limited position
func RemainingSlots(roster []models.Player, limits models.PositionLimits) models.PositionCounts {
	counts := PositionCounts(roster)
	remaining := make(models.PositionCounts, len(limits))
	for pos, limit := range limits {
		left := limit - counts[pos]
		if left < 0 {
			left = 0
		}
		remaining[pos] = left
	}
	return remaining
}

// CanDraft reports whether adding player keeps the roster within limits.
// Positions without a limit are uncapped.
func CanDraft(player models.Player, roster []models.Player, limits models.PositionLimits) bool {
	limit, ok := limits[player.Position]
	if !ok {
		return true
	}
	count := 0
	for _, p := range roster {
		if p.Position == player.Position {
			count++
		}
	}
	return count < limit
}

// ForParticipant rebuilds one participant's roster from the pick log
func ForParticipant(picks []models.Pick, participantID uuid.UUID) []models.Player {
	var out []models.Player
	for _, p := range picks {
		if p.ParticipantID == participantID {
			out = append(out, p.Player)
		}
	}
	return out
}

// DraftedIDs returns the set of player ids already picked
func DraftedIDs(picks []models.Pick) map[string]bool {
	ids := make(map[string]bool, len(picks))
	for _, p := range picks {
		ids[p.Player.ID] = true
	}
	return ids
}
