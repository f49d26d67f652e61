package models

import (
	"time"

	"github.com/google/uuid"
)

// PickSource records how a player was chosen.
type PickSource string

const (
	PickSourceManual        PickSource = "manual"
	PickSourceQueue         PickSource = "queue"
	PickSourceCustomRanking PickSource = "custom_ranking"
	PickSourceADP           PickSource = "adp"
)

// Pick represents a single made pick in a draft. Picks are append-only.
type Pick struct {
	ID             uuid.UUID      `json:"id"`
	RoomID         uuid.UUID      `json:"room_id"`
	PickNumber     int            `json:"pick_number"`   // pick number overall, 1-indexed
	Round          int            `json:"round"`         // 1-indexed
	PickInRound    int            `json:"pick_in_round"` // 1-indexed
	Player         Player         `json:"player"`
	ParticipantID  uuid.UUID      `json:"participant_id"`
	PickedAt       time.Time      `json:"picked_at"`
	IsAutopick     bool           `json:"is_autopick"`
	Source         PickSource     `json:"source"`
	PositionCounts PositionCounts `json:"position_counts,omitempty"` // drafter's roster before this pick
}
