package pick

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/snakedraft/go/internal/draft/validation"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	calls   int
	err     error
	got     models.Pick
	release chan struct{}
	entered chan struct{}
}

func (f *fakeStore) AddPick(ctx context.Context, roomID uuid.UUID, pick models.Pick) (*models.Pick, error) {
	f.calls++
	f.got = pick
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	pick.ID = uuid.New()
	return &pick, nil
}

func snapshot() Snapshot {
	a := models.Participant{ID: uuid.New(), DraftPosition: 0}
	b := models.Participant{ID: uuid.New(), DraftPosition: 1}
	return Snapshot{
		RoomID:      uuid.New(),
		Status:      models.RoomStatusActive,
		TeamCount:   2,
		CurrentPick: 3, // round 2, slot 1 picks first
		Drafter:     b,
		Picks: []models.Pick{
			{PickNumber: 1, ParticipantID: a.ID, Player: models.Player{ID: "qb1", Name: "QB", Position: models.PositionQB}},
			{PickNumber: 2, ParticipantID: b.ID, Player: models.Player{ID: "rb1", Name: "RB", Position: models.PositionRB}},
		},
		Limits: models.DefaultPositionLimits(),
	}
}

var wr = models.Player{ID: "wr1", Name: "WR", Position: models.PositionWR, ADP: 4}

func TestExecutePickBuildsRecord(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fs := &fakeStore{}
	ex := NewExecutor(fs, clock)
	snap := snapshot()

	saved, err := ex.ExecutePick(context.Background(), snap, wr)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 1, fs.calls)

	got := fs.got
	assert.Equal(t, 3, got.PickNumber)
	assert.Equal(t, 2, got.Round)
	assert.Equal(t, 1, got.PickInRound)
	assert.Equal(t, snap.Drafter.ID, got.ParticipantID)
	assert.Equal(t, models.PickSourceManual, got.Source)
	assert.False(t, got.IsAutopick)
	assert.Equal(t, clock.Now(), got.PickedAt)
	assert.Equal(t, models.PositionCounts{models.PositionRB: 1}, got.PositionCounts)
	assert.False(t, ex.InProgress())
}

func TestExecutePickValidationFailureSkipsStore(t *testing.T) {
	fs := &fakeStore{}
	ex := NewExecutor(fs, nil)
	snap := snapshot()
	snap.Drafter.DraftPosition = 0

	_, err := ex.ExecutePick(context.Background(), snap, wr)
	code, ok := validation.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, validation.CodeNotYourTurn, code)
	assert.Equal(t, 0, fs.calls)
	assert.False(t, ex.InProgress())
}

func TestExecuteAutopickIgnoresTurn(t *testing.T) {
	fs := &fakeStore{}
	ex := NewExecutor(fs, nil)
	snap := snapshot()
	snap.Drafter.DraftPosition = 0

	saved, err := ex.ExecuteAutopick(context.Background(), snap, wr, models.PickSourceADP)
	require.NoError(t, err)
	assert.True(t, saved.IsAutopick)
	assert.Equal(t, models.PickSourceADP, saved.Source)
}

func TestStoreErrorIsNotAValidationError(t *testing.T) {
	storeErr := errors.New("connection reset")
	fs := &fakeStore{err: storeErr}
	ex := NewExecutor(fs, nil)

	_, err := ex.ExecutePick(context.Background(), snapshot(), wr)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	_, isValidation := validation.CodeOf(err)
	assert.False(t, isValidation)
	assert.False(t, ex.InProgress())
}

func TestConcurrentSubmissionRejected(t *testing.T) {
	fs := &fakeStore{release: make(chan struct{}), entered: make(chan struct{})}
	ex := NewExecutor(fs, nil)
	snap := snapshot()

	done := make(chan error, 1)
	go func() {
		_, err := ex.ExecutePick(context.Background(), snap, wr)
		done <- err
	}()
	<-fs.entered
	assert.True(t, ex.InProgress())

	_, err := ex.ExecuteAutopick(context.Background(), snap, wr, models.PickSourceADP)
	assert.ErrorIs(t, err, ErrPickInProgress)

	close(fs.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first pick never finished")
	}
	assert.False(t, ex.InProgress())
	assert.Equal(t, 1, fs.calls)
}
