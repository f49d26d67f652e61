package autopick

import (
	"testing"

	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func player(id string, pos models.Position, adp float64) models.Player {
	return models.Player{ID: id, Name: "Player " + id, Position: pos, ADP: adp}
}

func TestSelectPriorityOrder(t *testing.T) {
	x := player("x", models.PositionWR, 40)
	y := player("y", models.PositionRB, 30)
	z := player("z", models.PositionTE, 2)
	req := Request{
		Available: []models.Player{x, y, z},
		Queue:     []string{"x"},
		Rankings:  []string{"y"},
		Limits:    models.DefaultPositionLimits(),
	}

	sel := Select(req)
	require.NotNil(t, sel)
	assert.Equal(t, "x", sel.Player.ID)
	assert.Equal(t, models.PickSourceQueue, sel.Source)

	req.Queue = nil
	sel = Select(req)
	require.NotNil(t, sel)
	assert.Equal(t, "y", sel.Player.ID)
	assert.Equal(t, models.PickSourceCustomRanking, sel.Source)

	req.Rankings = nil
	sel = Select(req)
	require.NotNil(t, sel)
	assert.Equal(t, "z", sel.Player.ID)
	assert.Equal(t, models.PickSourceADP, sel.Source)
}

func TestSelectLowestADP(t *testing.T) {
	sel := Select(Request{
		Available: []models.Player{player("A", models.PositionRB, 5.0), player("B", models.PositionWR, 1.2)},
		Limits:    models.DefaultPositionLimits(),
	})
	require.NotNil(t, sel)
	assert.Equal(t, "B", sel.Player.ID)
	assert.Equal(t, models.PickSourceADP, sel.Source)
}

func TestSelectMissingADPSortsLastAndTiesKeepOrder(t *testing.T) {
	pool := []models.Player{
		player("noadp", models.PositionQB, 0),
		player("first", models.PositionRB, 12),
		player("second", models.PositionWR, 12),
	}
	sel := Select(Request{Available: pool, Limits: models.DefaultPositionLimits()})
	require.NotNil(t, sel)
	assert.Equal(t, "first", sel.Player.ID)

	only := Select(Request{Available: pool[:1], Limits: models.DefaultPositionLimits()})
	require.NotNil(t, only)
	assert.Equal(t, "noadp", only.Player.ID)
}

func TestSelectSkipsQueuedPlayersOverTheLimit(t *testing.T) {
	limits := models.PositionLimits{models.PositionQB: 1, models.PositionRB: 5}
	sel := Select(Request{
		Available: []models.Player{player("qb2", models.PositionQB, 1), player("rb1", models.PositionRB, 50)},
		Roster:    []models.Player{player("qb1", models.PositionQB, 3)},
		Queue:     []string{"qb2", "rb1"},
		Limits:    limits,
	})
	require.NotNil(t, sel)
	assert.Equal(t, "rb1", sel.Player.ID)
	assert.Equal(t, models.PickSourceQueue, sel.Source)
}

func TestSelectHonorsExclude(t *testing.T) {
	sel := Select(Request{
		Available: []models.Player{player("a", models.PositionRB, 1), player("b", models.PositionRB, 2)},
		Limits:    models.DefaultPositionLimits(),
		Exclude:   map[string]bool{"a": true},
	})
	require.NotNil(t, sel)
	assert.Equal(t, "b", sel.Player.ID)
}

func TestSelectReturnsNilWithoutLegalPlayers(t *testing.T) {
	assert.Nil(t, Select(Request{Limits: models.DefaultPositionLimits()}))

	limits := models.PositionLimits{models.PositionTE: 1}
	assert.Nil(t, Select(Request{
		Available: []models.Player{player("te2", models.PositionTE, 1)},
		Roster:    []models.Player{player("te1", models.PositionTE, 1)},
		Limits:    limits,
	}))
}

func TestPriorityStrategy(t *testing.T) {
	sel := Priority.Select(Request{Available: []models.Player{player("a", models.PositionQB, 1)}})
	require.NotNil(t, sel)
	assert.Equal(t, "a", sel.Player.ID)
}

func TestBestAvailable(t *testing.T) {
	pool := []models.Player{
		player("rb", models.PositionRB, 3),
		player("wr", models.PositionWR, 1),
		player("wr2", models.PositionWR, 2),
	}
	best := BestAvailable(pool)
	require.NotNil(t, best)
	assert.Equal(t, "wr", best.ID)

	rb := BestAvailableAt(pool, models.PositionRB)
	require.NotNil(t, rb)
	assert.Equal(t, "rb", rb.ID)

	assert.Nil(t, BestAvailableAt(pool, models.PositionTE))
	assert.Nil(t, BestAvailable(nil))
}

func TestMostNeededPosition(t *testing.T) {
	limits := models.PositionLimits{
		models.PositionQB: 2,
		models.PositionRB: 2,
		models.PositionWR: 2,
		models.PositionTE: 2,
	}
	pos, ok := MostNeededPosition(nil, limits)
	require.True(t, ok)
	assert.Equal(t, models.PositionWR, pos, "ties favor WR")

	pos, ok = MostNeededPosition([]models.Player{player("w", models.PositionWR, 1)}, limits)
	require.True(t, ok)
	assert.Equal(t, models.PositionRB, pos)

	full := []models.Player{
		player("q1", models.PositionQB, 1), player("q2", models.PositionQB, 1),
		player("r1", models.PositionRB, 1), player("r2", models.PositionRB, 1),
		player("w1", models.PositionWR, 1), player("w2", models.PositionWR, 1),
		player("t1", models.PositionTE, 1), player("t2", models.PositionTE, 1),
	}
	_, ok = MostNeededPosition(full, limits)
	assert.False(t, ok)
}

func TestIsBalanced(t *testing.T) {
	limits := models.DefaultPositionLimits()
	assert.True(t, IsBalanced(nil, limits))

	threeQBs := []models.Player{
		player("q1", models.PositionQB, 1),
		player("q2", models.PositionQB, 1),
		player("q3", models.PositionQB, 1),
	}
	assert.False(t, IsBalanced(threeQBs, limits), "QB capped while RB and WR are wide open")

	tight := models.PositionLimits{models.PositionQB: 3, models.PositionRB: 4}
	assert.True(t, IsBalanced(threeQBs, tight))
}
