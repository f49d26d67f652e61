// Package autopick chooses a player on behalf of a participant whose pick
// timer ran out, or who asked the engine to force a pick.
package autopick

import (
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/roster"
)

// balanceSlack is how many open slots another position may have while one is
// already capped before the roster counts as unbalanced.
const balanceSlack = 5

// needOrder breaks ties in MostNeededPosition.
var needOrder = []models.Position{
	models.PositionWR,
	models.PositionRB,
	models.PositionTE,
	models.PositionQB,
}

// Request is the input to Select.
type Request struct {
	Available []models.Player // players not yet picked, in pool order
	Roster    []models.Player // the drafting participant's current roster
	Queue     []string        // player ids, highest priority first
	Rankings  []string        // custom rankings, highest priority first
	Limits    models.PositionLimits
	Exclude   map[string]bool // candidates the caller already tried
}

// Selection is the chosen player and why it was chosen.
type Selection struct {
	Player models.Player     `json:"player"`
	Source models.PickSource `json:"source"`
}

// Strategy picks a player for an autopick.
type Strategy interface {
	Select(req Request) *Selection
}

// StrategyFunc adapts a function to Strategy
type StrategyFunc func(Request) *Selection

func (f StrategyFunc) Select(req Request) *Selection { return f(req) }

// Priority is the default Strategy: queue, then custom rankings, then ADP.
var Priority Strategy = StrategyFunc(Select)

// Select runs the autodraft priority order over the legal pool: the first
// queued player, else the first custom-ranked player, else the lowest ADP.
// It returns nil when no legal player exists.
func Select(req Request) *Selection {
	pool := legalPool(req)
	if len(pool) == 0 {
		return nil
	}

	byID := make(map[string]models.Player, len(pool))
	for _, p := range pool {
		byID[p.ID] = p
	}
	if p, ok := firstListed(req.Queue, byID); ok {
		return &Selection{Player: p, Source: models.PickSourceQueue}
	}
	if p, ok := firstListed(req.Rankings, byID); ok {
		return &Selection{Player: p, Source: models.PickSourceCustomRanking}
	}
	best := lowestADP(pool)
	return &Selection{Player: *best, Source: models.PickSourceADP}
}

func legalPool(req Request) []models.Player {
	pool := make([]models.Player, 0, len(req.Available))
	for _, p := range req.Available {
		if req.Exclude[p.ID] {
			continue
		}
		if roster.CanDraft(p, req.Roster, req.Limits) {
			pool = append(pool, p)
		}
	}
	return pool
}

func firstListed(ids []string, byID map[string]models.Player) (models.Player, bool) {
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			return p, true
		}
	}
	return models.Player{}, false
}

// lowestADP returns the first player with the smallest effective ADP, so
// ties keep input order.
func lowestADP(players []models.Player) *models.Player {
	var best *models.Player
	for i := range players {
		if best == nil || players[i].EffectiveADP() < best.EffectiveADP() {
			best = &players[i]
		}
	}
	return best
}

// BestAvailable returns the lowest-ADP player, ignoring queue and rankings
func BestAvailable(available []models.Player) *models.Player {
	best := lowestADP(available)
	if best == nil {
		return nil
	}
	p := *best
	return &p
}

// BestAvailableAt returns the lowest-ADP player at one position
func BestAvailableAt(available []models.Player, pos models.Position) *models.Player {
	var at []models.Player
	for _, p := range available {
		if p.Position == pos {
			at = append(at, p)
		}
	}
	return BestAvailable(at)
}

// MostNeededPosition returns the position with the most open slots. Ties go
// to WR, then RB, TE and QB. It returns false when every position is full.
func MostNeededPosition(current []models.Player, limits models.PositionLimits) (models.Position, bool) {
	remaining := roster.RemainingSlots(current, limits)
	var (
		best     models.Position
		bestLeft int
	)
	for _, pos := range needOrder {
		left, ok := remaining[pos]
		if !ok {
			continue
		}
		if left > bestLeft {
			best, bestLeft = pos, left
		}
	}
	return best, bestLeft > 0
}

// IsBalanced is false when some position is capped while another still has
// balanceSlack or more open slots.
func IsBalanced(current []models.Player, limits models.PositionLimits) bool {
	remaining := roster.RemainingSlots(current, limits)
	capped, wide := false, false
	for _, left := range remaining {
		if left == 0 {
			capped = true
		}
		if left >= balanceSlack {
			wide = true
		}
	}
	return !(capped && wide)
}
