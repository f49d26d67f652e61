package events

import (
	"time"
)

// PickMadePayload is the payload for a PickMade event
type PickMadePayload struct {
	PickID          string    `json:"pick_id"`
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	PlayerID        string    `json:"player_id"`
	PlayerName      string    `json:"player_name"`
	Position        string    `json:"position"`
	Round           int       `json:"round"`
	Pick            int       `json:"pick"`
	OverallPick     int       `json:"overall_pick"`
	Label           string    `json:"label"`
	IsAutopick      bool      `json:"is_autopick"`
	Source          string    `json:"source"`
	MadeAt          time.Time `json:"made_at"`
}

// DraftStartedPayload is the payload for a DraftStarted event
type DraftStartedPayload struct {
	RoomID      string    `json:"room_id"`
	StartedAt   time.Time `json:"started_at"`
	TeamCount   int       `json:"team_count"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event
type DraftCompletedPayload struct {
	RoomID      string    `json:"room_id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftPausedPayload is the payload for a DraftPaused event
type DraftPausedPayload struct {
	RoomID           string    `json:"room_id"`
	PausedAt         time.Time `json:"paused_at"`
	OverallPick      int       `json:"overall_pick"`
	SecondsRemaining int       `json:"seconds_remaining"`
}

// DraftResumedPayload is the payload for a DraftResumed event
type DraftResumedPayload struct {
	RoomID      string    `json:"room_id"`
	ResumedAt   time.Time `json:"resumed_at"`
	OverallPick int       `json:"overall_pick"`
}

// AutopickFailedPayload is emitted when the clock ran out and no pick could
// be made for the participant on the clock.
type AutopickFailedPayload struct {
	ParticipantID string    `json:"participant_id"`
	OverallPick   int       `json:"overall_pick"`
	Attempts      int       `json:"attempts"`
	Reason        string    `json:"reason"`
	FailedAt      time.Time `json:"failed_at"`
}
