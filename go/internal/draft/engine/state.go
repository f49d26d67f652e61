package engine

import (
	"github.com/google/uuid"
	"github.com/mcdev12/snakedraft/go/internal/draft/timer"
	"github.com/mcdev12/snakedraft/go/internal/draft/turn"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/roster"
)

// State is the derived view of the draft recomputed on every update.
type State struct {
	RoomID       uuid.UUID            `json:"room_id"`
	Status       models.RoomStatus    `json:"status"`
	Settings     models.DraftSettings `json:"settings"`
	Participants []models.Participant `json:"participants"`

	CurrentPick      int                 `json:"current_pick"` // 0 once complete
	Round            int                 `json:"round"`
	PickInRound      int                 `json:"pick_in_round"`
	Label            string              `json:"label,omitempty"`
	OnTheClock       *models.Participant `json:"on_the_clock,omitempty"`
	IsMyTurn         bool                `json:"is_my_turn"`
	PicksUntilMyTurn int                 `json:"picks_until_my_turn"`
	PicksMade        int                 `json:"picks_made"`
	PicksRemaining   int                 `json:"picks_remaining"`
	Complete         bool                `json:"complete"`

	Timer       timer.Snapshot         `json:"timer"`
	Picks       []models.Pick          `json:"picks"`
	MyRoster    []models.Player        `json:"my_roster"`
	MyOpenSlots models.PositionCounts  `json:"my_open_slots"`
	Autodraft   models.AutodraftConfig `json:"autodraft"`
}

func (e *Engine) stateLocked() State {
	settings := e.room.Settings
	total := settings.TotalPicks()
	made := len(e.picks)

	s := State{
		RoomID:           e.room.ID,
		Status:           e.room.Status,
		Settings:         settings,
		Participants:     make([]models.Participant, 0, len(e.room.Participants)),
		PicksMade:        made,
		PicksRemaining:   max(total-made, 0),
		PicksUntilMyTurn: turn.NoRemainingPicks,
		Picks:            append([]models.Pick(nil), e.picks...),
		Autodraft:        e.autodraft,
	}
	for _, p := range e.room.Participants {
		p.IsLocal = p.ID == e.cfg.LocalParticipantID
		s.Participants = append(s.Participants, p)
	}
	if e.timer != nil {
		s.Timer = e.timer.Snapshot()
	}

	local, isParticipant := e.room.Participant(e.cfg.LocalParticipantID)
	if isParticipant {
		s.MyRoster = roster.ForParticipant(e.picks, local.ID)
		s.MyOpenSlots = roster.RemainingSlots(s.MyRoster, e.room.Limits())
	}

	if e.completeLocked() {
		s.Complete = true
		return s
	}

	current := made + 1
	s.CurrentPick = current
	s.Round = turn.Round(current, settings.TeamCount)
	s.PickInRound = turn.PositionInRound(current, settings.TeamCount)
	s.Label = turn.FormatPickNumber(current, settings.TeamCount)
	slot := turn.ParticipantForPick(current, settings.TeamCount)
	if p, ok := e.room.ParticipantAt(slot); ok {
		p.IsLocal = p.ID == e.cfg.LocalParticipantID
		s.OnTheClock = &p
	}
	if isParticipant {
		s.IsMyTurn = slot == local.DraftPosition
		s.PicksUntilMyTurn = turn.PicksUntilTurn(current, local.DraftPosition, settings.TeamCount, settings.Rounds)
	}
	return s
}
