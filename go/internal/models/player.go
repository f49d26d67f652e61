package models

import (
	"fmt"
	"strings"
)

// Position is a roster position category
type Position string

const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
)

// Positions lists every draftable position in display order
var Positions = []Position{PositionQB, PositionRB, PositionWR, PositionTE}

// MissingADP is the ADP assigned to players without one when ranking by ADP
const MissingADP = 999.0

// Valid reports whether p is a known position
func (p Position) Valid() bool {
	switch p {
	case PositionQB, PositionRB, PositionWR, PositionTE:
		return true
	}
	return false
}

// ParsePosition converts a raw position string ("wr", "WR") to a Position
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}

// Player represents a draftable player in a room's pool. Players are
// immutable once loaded.
type Player struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Position        Position `json:"position"`
	Team            string   `json:"team"`
	ADP             float64  `json:"adp,omitempty"` // 0 when unknown
	ProjectedPoints *float64 `json:"projected_points,omitempty"`
	ByeWeek         *int     `json:"bye_week,omitempty"`
}

// EffectiveADP returns the player's ADP, or MissingADP when none is known
func (p Player) EffectiveADP() float64 {
	if p.ADP <= 0 {
		return MissingADP
	}
	return p.ADP
}
