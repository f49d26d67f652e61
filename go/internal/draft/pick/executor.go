// Package pick submits picks to the storage adapter, one at a time.
package pick

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/snakedraft/go/internal/draft/turn"
	"github.com/mcdev12/snakedraft/go/internal/draft/validation"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/roster"
	"github.com/rs/zerolog/log"
)

// ErrPickInProgress rejects a submission while another is awaiting the store.
var ErrPickInProgress = errors.New("a pick is already in progress")

// Executor validates a pick, builds the full record and appends it. It never
// queues: a second submission while one is in flight fails fast.
type Executor struct {
	store      PickStore
	clock      clockwork.Clock
	inProgress atomic.Bool
}

// NewExecutor creates an Executor. A nil clock uses the real clock.
func NewExecutor(store PickStore, clock clockwork.Clock) *Executor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Executor{store: store, clock: clock}
}

// InProgress reports whether a pick is awaiting the store
func (e *Executor) InProgress() bool {
	return e.inProgress.Load()
}

// ExecutePick submits a manual pick for snap.Drafter
func (e *Executor) ExecutePick(ctx context.Context, snap Snapshot, player models.Player) (*models.Pick, error) {
	return e.execute(ctx, snap, player, models.PickSourceManual, false, validation.ValidateManualPick)
}

// ExecuteAutopick submits a pick chosen by the autodraft selector. It skips
// the turn check.
func (e *Executor) ExecuteAutopick(ctx context.Context, snap Snapshot, player models.Player, source models.PickSource) (*models.Pick, error) {
	return e.execute(ctx, snap, player, source, true, validation.ValidateAutopick)
}

func (e *Executor) execute(
	ctx context.Context,
	snap Snapshot,
	player models.Player,
	source models.PickSource,
	autopick bool,
	validate func(validation.PickContext) validation.Result,
) (*models.Pick, error) {
	if !e.inProgress.CompareAndSwap(false, true) {
		return nil, ErrPickInProgress
	}
	defer e.inProgress.Store(false)

	current := roster.ForParticipant(snap.Picks, snap.Drafter.ID)
	pc := validation.PickContext{
		Player:      player,
		Status:      snap.Status,
		Slot:        snap.Drafter.DraftPosition,
		CurrentPick: snap.CurrentPick,
		TeamCount:   snap.TeamCount,
		Picked:      roster.DraftedIDs(snap.Picks),
		Roster:      current,
		Limits:      snap.Limits,
	}
	if res := validate(pc); !res.Valid {
		log.Debug().
			Str("room_id", snap.RoomID.String()).
			Str("player_id", player.ID).
			Str("code", string(res.Code)).
			Msg("pick rejected")
		return nil, res.Err()
	}

	req := models.Pick{
		ID:             uuid.New(),
		RoomID:         snap.RoomID,
		PickNumber:     snap.CurrentPick,
		Round:          turn.Round(snap.CurrentPick, snap.TeamCount),
		PickInRound:    turn.PositionInRound(snap.CurrentPick, snap.TeamCount),
		Player:         player,
		ParticipantID:  snap.Drafter.ID,
		PickedAt:       e.clock.Now(),
		IsAutopick:     autopick,
		Source:         source,
		PositionCounts: roster.PositionCounts(current),
	}

	saved, err := e.store.AddPick(ctx, snap.RoomID, req)
	if err != nil {
		return nil, fmt.Errorf("add pick %s: %w", turn.FormatPickNumber(req.PickNumber, snap.TeamCount), err)
	}

	log.Info().
		Str("room_id", snap.RoomID.String()).
		Str("pick", turn.FormatPickNumber(saved.PickNumber, snap.TeamCount)).
		Str("participant_id", saved.ParticipantID.String()).
		Str("player_id", saved.Player.ID).
		Str("source", string(saved.Source)).
		Bool("autopick", saved.IsAutopick).
		Msg("pick made")
	return saved, nil
}
