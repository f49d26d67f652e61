package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the status of a draft room.
type RoomStatus string

const (
	RoomStatusLoading  RoomStatus = "loading"
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusActive   RoomStatus = "active"
	RoomStatusPaused   RoomStatus = "paused"
	RoomStatusComplete RoomStatus = "complete"
)

// DraftSettings are fixed for the life of one draft.
type DraftSettings struct {
	TeamCount          int `json:"team_count"`
	Rounds             int `json:"rounds"` // roster size
	PickTimeSeconds    int `json:"pick_time_seconds"`
	GracePeriodSeconds int `json:"grace_period_seconds"`
}

// DefaultDraftSettings returns a 12-team, 18-round draft with 30 second picks
func DefaultDraftSettings() DraftSettings {
	return DraftSettings{
		TeamCount:          12,
		Rounds:             18,
		PickTimeSeconds:    30,
		GracePeriodSeconds: 3,
	}
}

// TotalPicks is the number of picks in a complete draft
func (s DraftSettings) TotalPicks() int {
	if s.TeamCount <= 0 || s.Rounds <= 0 {
		return 0
	}
	return s.TeamCount * s.Rounds
}

func (s DraftSettings) PickDuration() time.Duration {
	return time.Duration(s.PickTimeSeconds) * time.Second
}

func (s DraftSettings) GracePeriod() time.Duration {
	return time.Duration(s.GracePeriodSeconds) * time.Second
}

// Validate checks the settings can drive a draft
func (s DraftSettings) Validate() error {
	if s.TeamCount < 1 {
		return fmt.Errorf("team_count must be greater than 0")
	}
	if s.Rounds < 1 {
		return fmt.Errorf("rounds must be greater than 0")
	}
	if s.PickTimeSeconds < 1 {
		return fmt.Errorf("pick_time_seconds must be greater than 0")
	}
	if s.GracePeriodSeconds < 0 {
		return fmt.Errorf("grace_period_seconds must not be negative")
	}
	return nil
}

// Participant is a drafter seated in a room.
type Participant struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	DraftPosition int       `json:"draft_position"` // zero-based slot in round one
	IsLocal       bool      `json:"is_local,omitempty"`
}

// Room represents a draft instance.
type Room struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Status         RoomStatus     `json:"status"`
	Settings       DraftSettings  `json:"settings"`
	Participants   []Participant  `json:"participants"`
	PositionLimits PositionLimits `json:"position_limits,omitempty"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Limits returns the room's position limits, falling back to the defaults
func (r Room) Limits() PositionLimits {
	if len(r.PositionLimits) == 0 {
		return DefaultPositionLimits()
	}
	return r.PositionLimits
}

// ParticipantAt returns the participant seated at a zero-based draft slot
func (r Room) ParticipantAt(slot int) (Participant, bool) {
	for _, p := range r.Participants {
		if p.DraftPosition == slot {
			return p, true
		}
	}
	return Participant{}, false
}

// Participant looks a participant up by id
func (r Room) Participant(id uuid.UUID) (Participant, bool) {
	for _, p := range r.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}
