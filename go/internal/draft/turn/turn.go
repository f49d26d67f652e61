// Package turn computes snake draft ordering from a pick number and team
// count. Turn ownership is never stored; it is always recomputed here.
//
// Pick numbers and team counts below 1 are clamped to round 1 and
// participant 0 rather than rejected, so callers reading partially loaded
// room state never crash.
package turn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NoRemainingPicks is returned by PicksUntilTurn when the participant has no
// pick after the current one.
const NoRemainingPicks = -1

var ErrInvalidPickNumber = errors.New("invalid pick number")

// Slot is one position on the draft board.
type Slot struct {
	PickNumber  int `json:"pick_number"`
	Round       int `json:"round"`
	PickInRound int `json:"pick_in_round"`
	Participant int `json:"participant"` // zero-based draft slot
}

func valid(pick, teamCount int) bool {
	return pick >= 1 && teamCount >= 1
}

// TotalPicks returns teamCount*rounds, or 0 for non-positive inputs
func TotalPicks(teamCount, rounds int) int {
	if teamCount < 1 || rounds < 1 {
		return 0
	}
	return teamCount * rounds
}

// Round returns the 1-indexed round of an overall pick number
func Round(pick, teamCount int) int {
	if !valid(pick, teamCount) {
		return 1
	}
	return (pick + teamCount - 1) / teamCount
}

// PositionInRound returns the 1-indexed position of pick inside its round
func PositionInRound(pick, teamCount int) int {
	if !valid(pick, teamCount) {
		return 1
	}
	return ((pick - 1) % teamCount) + 1
}

// ParticipantForPick returns the zero-based draft slot on the clock for pick.
// Odd rounds run 0..teamCount-1, even rounds run in reverse.
func ParticipantForPick(pick, teamCount int) int {
	if !valid(pick, teamCount) {
		return 0
	}
	pos := (pick - 1) % teamCount
	if Round(pick, teamCount)%2 == 0 {
		return teamCount - 1 - pos
	}
	return pos
}

// pickFor returns the overall pick number slot idx holds in round.
func pickFor(idx, round, teamCount int) int {
	base := (round - 1) * teamCount
	if round%2 == 0 {
		return base + teamCount - idx
	}
	return base + idx + 1
}

// PicksForParticipant lists every pick number owned by slot idx in ascending order
func PicksForParticipant(idx, teamCount, totalRounds int) []int {
	if teamCount < 1 || totalRounds < 1 || idx < 0 || idx >= teamCount {
		return nil
	}
	picks := make([]int, 0, totalRounds)
	for round := 1; round <= totalRounds; round++ {
		picks = append(picks, pickFor(idx, round, teamCount))
	}
	return picks
}

// PicksUntilTurn returns how many picks remain before slot idx is on the
// clock: 0 when it already is, NoRemainingPicks when idx has no later pick.
func PicksUntilTurn(currentPick, idx, teamCount, totalRounds int) int {
	total := TotalPicks(teamCount, totalRounds)
	if currentPick > total {
		return NoRemainingPicks
	}
	if currentPick < 1 {
		currentPick = 1
	}
	if ParticipantForPick(currentPick, teamCount) == idx {
		return 0
	}
	for _, p := range PicksForParticipant(idx, teamCount, totalRounds) {
		if p > currentPick {
			return p - currentPick
		}
	}
	return NoRemainingPicks
}

// NextPickForParticipant returns the first pick owned by idx at or after currentPick
func NextPickForParticipant(currentPick, idx, teamCount, totalRounds int) (int, bool) {
	for _, p := range PicksForParticipant(idx, teamCount, totalRounds) {
		if p >= currentPick {
			return p, true
		}
	}
	return 0, false
}

// Schedule lays out every slot on a snake draft board in pick order
func Schedule(teamCount, rounds int) []Slot {
	total := TotalPicks(teamCount, rounds)
	slots := make([]Slot, 0, total)
	for pick := 1; pick <= total; pick++ {
		slots = append(slots, Slot{
			PickNumber:  pick,
			Round:       Round(pick, teamCount),
			PickInRound: PositionInRound(pick, teamCount),
			Participant: ParticipantForPick(pick, teamCount),
		})
	}
	return slots
}

// FormatPickNumber renders pick as "round.pickInRound", e.g. pick 13 of a
// 12-team draft is "2.01".
func FormatPickNumber(pick, teamCount int) string {
	return fmt.Sprintf("%d.%02d", Round(pick, teamCount), PositionInRound(pick, teamCount))
}

// ParsePickNumber is the inverse of FormatPickNumber
func ParsePickNumber(s string, teamCount int) (int, error) {
	if teamCount < 1 {
		return 0, fmt.Errorf("%w: team count must be greater than 0", ErrInvalidPickNumber)
	}
	roundStr, inRoundStr, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return 0, fmt.Errorf("%w: %q is not round.pick", ErrInvalidPickNumber, s)
	}
	round, err := strconv.Atoi(roundStr)
	if err != nil || round < 1 {
		return 0, fmt.Errorf("%w: bad round in %q", ErrInvalidPickNumber, s)
	}
	inRound, err := strconv.Atoi(inRoundStr)
	if err != nil || inRound < 1 || inRound > teamCount {
		return 0, fmt.Errorf("%w: bad pick in round in %q", ErrInvalidPickNumber, s)
	}
	return (round-1)*teamCount + inRound, nil
}
