package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mcdev12/snakedraft/go/internal/draft/timer"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContext() PickContext {
	return PickContext{
		Player:      models.Player{ID: "p1", Name: "Player One", Position: models.PositionWR},
		Status:      models.RoomStatusActive,
		Slot:        0,
		CurrentPick: 1,
		TeamCount:   12,
		Picked:      map[string]bool{},
		Limits:      models.DefaultPositionLimits(),
	}
}

func TestManualPickFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PickContext)
		want   Code
	}{
		{"missing id", func(pc *PickContext) { pc.Player.ID = "" }, CodeInvalidPlayer},
		{"missing name", func(pc *PickContext) { pc.Player.Name = "" }, CodeInvalidPlayer},
		{"missing position", func(pc *PickContext) { pc.Player.Position = "" }, CodeInvalidPlayer},
		{"waiting", func(pc *PickContext) { pc.Status = models.RoomStatusWaiting }, CodeDraftNotActive},
		{"complete", func(pc *PickContext) { pc.Status = models.RoomStatusComplete }, CodeDraftNotActive},
		{"wrong slot", func(pc *PickContext) { pc.Slot = 3 }, CodeNotYourTurn},
		{"already drafted", func(pc *PickContext) { pc.Picked["p1"] = true }, CodePlayerUnavailable},
		{"position full", func(pc *PickContext) {
			pc.Limits = models.PositionLimits{models.PositionWR: 1}
			pc.Roster = []models.Player{{ID: "w", Name: "w", Position: models.PositionWR}}
		}, CodePositionLimitReached},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pc := validContext()
			tc.mutate(&pc)
			res := ValidateManualPick(pc)
			assert.False(t, res.Valid)
			assert.Equal(t, tc.want, res.Code)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestManualPickValid(t *testing.T) {
	res := ValidateManualPick(validContext())
	assert.True(t, res.Valid)
	assert.NoError(t, res.Err())
}

func TestPlayerCheckPrecedesTurnCheck(t *testing.T) {
	pc := validContext()
	pc.Player.Name = ""
	pc.Slot = 5
	assert.Equal(t, CodeInvalidPlayer, ValidateManualPick(pc).Code)
}

func TestPausedDraftIsNotActiveRegardlessOfTurn(t *testing.T) {
	for _, slot := range []int{0, 7} {
		pc := validContext()
		pc.Status = models.RoomStatusPaused
		pc.Slot = slot
		res := ValidateManualPick(pc)
		assert.Equal(t, Result{Valid: false, Code: CodeDraftNotActive, Message: res.Message}, res)
	}
}

func TestAutopickSkipsTurnCheck(t *testing.T) {
	pc := validContext()
	pc.Slot = 9
	assert.Equal(t, CodeNotYourTurn, ValidateManualPick(pc).Code)
	assert.True(t, ValidateAutopick(pc).Valid)

	pc.Picked["p1"] = true
	assert.Equal(t, CodePlayerUnavailable, ValidateAutopick(pc).Code)
}

func TestSnakeTurnOwnership(t *testing.T) {
	pc := validContext()
	pc.CurrentPick = 13
	pc.Slot = 11
	assert.True(t, ValidateManualPick(pc).Valid)
}

func TestValidateTimer(t *testing.T) {
	assert.True(t, ValidateTimer(timer.Snapshot{State: timer.StateRunning, SecondsRemaining: 4}).Valid)
	assert.True(t, ValidateTimer(timer.Snapshot{State: timer.StateGracePeriod, SecondsRemaining: 0}).Valid)

	res := ValidateTimer(timer.Snapshot{State: timer.StateExpired, SecondsRemaining: 0})
	assert.Equal(t, CodeTimerExpired, res.Code)
}

func TestRunReturnsFirstFailure(t *testing.T) {
	var calls []string
	step := func(name string, res Result) Check[int] {
		return func(int) Result {
			calls = append(calls, name)
			return res
		}
	}

	res := Run(0,
		step("a", OK()),
		step("b", Fail(CodeTimerExpired, "b failed")),
		step("c", Fail(CodeInvalidPlayer, "c failed")),
	)
	assert.Equal(t, CodeTimerExpired, res.Code)
	assert.Equal(t, []string{"a", "b"}, calls)

	assert.True(t, Run[int](0).Valid)
}

func TestErrorCarriesCode(t *testing.T) {
	err := Fail(CodeNotYourTurn, "nope").Err()
	require.Error(t, err)

	wrapped := fmt.Errorf("execute pick: %w", err)
	code, ok := CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeNotYourTurn, code)

	_, ok = CodeOf(errors.New("connection reset"))
	assert.False(t, ok)
}
