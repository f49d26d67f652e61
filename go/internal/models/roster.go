package models

import (
	"time"

	"github.com/google/uuid"
)

// PositionCounts tallies drafted players by position
type PositionCounts map[Position]int

// PositionLimits caps how many players of a position one roster may hold.
// A position missing from the map is uncapped.
type PositionLimits map[Position]int

// DefaultPositionLimits returns the standard caps for an 18-man roster
func DefaultPositionLimits() PositionLimits {
	return PositionLimits{
		PositionQB: 3,
		PositionRB: 7,
		PositionWR: 8,
		PositionTE: 3,
	}
}

// Clone returns a copy that can be mutated freely
func (l PositionLimits) Clone() PositionLimits {
	if l == nil {
		return nil
	}
	out := make(PositionLimits, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// AutodraftConfig holds one participant's autopick preferences. It is
// mutable at any time by its owner and is not reset during a draft.
type AutodraftConfig struct {
	ParticipantID  uuid.UUID      `json:"participant_id"`
	Enabled        bool           `json:"enabled"`
	PositionLimits PositionLimits `json:"position_limits,omitempty"` // nil uses the room limits
	CustomRankings []string       `json:"custom_rankings"`           // player ids, highest priority first
	Queue          []string       `json:"queue"`                     // player ids, consulted before rankings
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AutodraftConfigUpdate is a partial AutodraftConfig. Nil fields are left unchanged.
type AutodraftConfigUpdate struct {
	Enabled        *bool          `json:"enabled,omitempty"`
	PositionLimits PositionLimits `json:"position_limits,omitempty"`
	CustomRankings *[]string      `json:"custom_rankings,omitempty"`
	Queue          *[]string      `json:"queue,omitempty"`
}

// Apply merges the update into cfg
func (u AutodraftConfigUpdate) Apply(cfg *AutodraftConfig) {
	if u.Enabled != nil {
		cfg.Enabled = *u.Enabled
	}
	if u.PositionLimits != nil {
		cfg.PositionLimits = u.PositionLimits.Clone()
	}
	if u.CustomRankings != nil {
		cfg.CustomRankings = append([]string(nil), (*u.CustomRankings)...)
	}
	if u.Queue != nil {
		cfg.Queue = append([]string(nil), (*u.Queue)...)
	}
}

// Within caps l by room: each position takes the smaller limit, and a
// position only one side limits keeps that limit. A nil l yields the room
// limits.
func (l PositionLimits) Within(room PositionLimits) PositionLimits {
	out := room.Clone()
	if out == nil {
		out = make(PositionLimits, len(l))
	}
	for pos, limit := range l {
		if cur, ok := out[pos]; !ok || limit < cur {
			out[pos] = limit
		}
	}
	return out
}
