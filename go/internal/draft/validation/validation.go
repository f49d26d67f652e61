// Package validation decides whether a pick is legal. Checks are pure
// functions over a PickContext and short-circuit on the first failure.
package validation

import (
	"errors"
	"fmt"

	"github.com/mcdev12/snakedraft/go/internal/draft/timer"
	"github.com/mcdev12/snakedraft/go/internal/draft/turn"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/roster"
)

// Code names a validation failure.
type Code string

const (
	CodeInvalidPlayer        Code = "INVALID_PLAYER"
	CodeDraftNotActive       Code = "DRAFT_NOT_ACTIVE"
	CodeNotYourTurn          Code = "NOT_YOUR_TURN"
	CodePlayerUnavailable    Code = "PLAYER_UNAVAILABLE"
	CodePositionLimitReached Code = "POSITION_LIMIT_REACHED"
	CodeTimerExpired         Code = "TIMER_EXPIRED"
)

// Result is either valid or a code with a human readable message.
type Result struct {
	Valid   bool   `json:"valid"`
	Code    Code   `json:"error_code,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK is the passing Result
func OK() Result { return Result{Valid: true} }

// Fail builds a failing Result
func Fail(code Code, format string, args ...any) Result {
	return Result{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Err returns nil for a valid result and an *Error otherwise
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Code: r.Code, Message: r.Message}
}

// Error is a failed validation. It is never returned for storage failures.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the validation code from err, if it carries one
func CodeOf(err error) (Code, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Code, true
	}
	return "", false
}

// PickContext is everything the checks need to judge one pick.
type PickContext struct {
	Player      models.Player
	Status      models.RoomStatus
	Slot        int // zero-based draft slot of the drafting participant
	CurrentPick int
	TeamCount   int
	Picked      map[string]bool // player ids already drafted
	Roster      []models.Player // the drafting participant's roster
	Limits      models.PositionLimits
}

// Check is one step of a validation pipeline.
type Check[T any] func(T) Result

// Run evaluates checks in order and returns the first failure, or OK.
func Run[T any](in T, checks ...Check[T]) Result {
	for _, check := range checks {
		if res := check(in); !res.Valid {
			return res
		}
	}
	return OK()
}

// CheckPlayer requires a well-formed player
func CheckPlayer(pc PickContext) Result {
	p := pc.Player
	if p.ID == "" || p.Name == "" || p.Position == "" {
		return Fail(CodeInvalidPlayer, "player must have an id, name and position")
	}
	return OK()
}

// CheckDraftActive requires the room to be active
func CheckDraftActive(pc PickContext) Result {
	if pc.Status != models.RoomStatusActive {
		return Fail(CodeDraftNotActive, "draft is %s, not active", pc.Status)
	}
	return OK()
}

// CheckTurn requires the drafting participant to be on the clock
func CheckTurn(pc PickContext) Result {
	onClock := turn.ParticipantForPick(pc.CurrentPick, pc.TeamCount)
	if onClock != pc.Slot {
		return Fail(CodeNotYourTurn, "pick %s belongs to slot %d",
			turn.FormatPickNumber(pc.CurrentPick, pc.TeamCount), onClock)
	}
	return OK()
}

// CheckAvailable requires the player not to be drafted yet
func CheckAvailable(pc PickContext) Result {
	if pc.Picked[pc.Player.ID] {
		return Fail(CodePlayerUnavailable, "%s has already been drafted", pc.Player.Name)
	}
	return OK()
}

// CheckPositionLimit requires room for the player's position on the roster
func CheckPositionLimit(pc PickContext) Result {
	if !roster.CanDraft(pc.Player, pc.Roster, pc.Limits) {
		return Fail(CodePositionLimitReached, "roster already holds %d %s",
			pc.Limits[pc.Player.Position], pc.Player.Position)
	}
	return OK()
}

// ManualChecks is the manual pick pipeline, in order.
var ManualChecks = []Check[PickContext]{
	CheckPlayer,
	CheckDraftActive,
	CheckTurn,
	CheckAvailable,
	CheckPositionLimit,
}

// AutopickChecks is ManualChecks without the turn check; autopick runs
// precisely because the participant on the clock did not act.
var AutopickChecks = []Check[PickContext]{
	CheckPlayer,
	CheckDraftActive,
	CheckAvailable,
	CheckPositionLimit,
}

func ValidateManualPick(pc PickContext) Result {
	return Run(pc, ManualChecks...)
}

func ValidateAutopick(pc PickContext) Result {
	return Run(pc, AutopickChecks...)
}

// ValidateTimer gates manual submission on timer state. The grace period
// always passes; otherwise a countdown at zero fails.
func ValidateTimer(snap timer.Snapshot) Result {
	if snap.InGracePeriod() {
		return OK()
	}
	if snap.SecondsRemaining <= 0 {
		return Fail(CodeTimerExpired, "pick timer has expired")
	}
	return OK()
}
