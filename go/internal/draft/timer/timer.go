// Package timer implements the per-pick countdown. A Timer is a small state
// machine: idle -> running <-> paused -> grace_period -> expired. Time comes
// from an injected clockwork.Clock so expiry can be driven by a fake clock.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// State of a pick timer.
type State string

const (
	StateIdle        State = "idle"
	StateRunning     State = "running"
	StatePaused      State = "paused"
	StateGracePeriod State = "grace_period"
	StateExpired     State = "expired"
)

// Urgency is a presentation hint derived from the seconds remaining.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

// UrgencyFor maps remaining seconds to an urgency level
func UrgencyFor(secondsRemaining int) Urgency {
	switch {
	case secondsRemaining <= 5:
		return UrgencyCritical
	case secondsRemaining <= 10:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// Snapshot is a point-in-time view of a Timer.
type Snapshot struct {
	State            State      `json:"state"`
	SecondsRemaining int        `json:"seconds_remaining"`
	DurationSeconds  int        `json:"duration_seconds"`
	Urgency          Urgency    `json:"urgency"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	Synchronized     bool       `json:"synchronized"`
}

// InGracePeriod reports whether the visible countdown has hit zero but expiry
// has not fired yet.
func (s Snapshot) InGracePeriod() bool {
	return s.State == StateGracePeriod
}

// Config configures a Timer.
type Config struct {
	Duration    time.Duration
	GracePeriod time.Duration
	Clock       clockwork.Clock // defaults to the real clock

	// OnExpire fires exactly once per countdown, from the grace timeout goroutine.
	OnExpire func()
	// OnTick is called after every tick that advanced a running countdown.
	OnTick func(Snapshot)
}

// Timer is a single pick countdown. All methods are safe for concurrent use.
type Timer struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	duration time.Duration
	grace    time.Duration
	onExpire func()
	onTick   func(Snapshot)

	state     State
	resumeTo  State
	remaining int
	fired     bool // latched until the next Reset

	// gen invalidates grace timeouts scheduled before the last reset/pause.
	gen           uint64
	graceTimer    clockwork.Timer
	graceDeadline time.Time
	graceLeft     time.Duration

	// synchronized countdowns derive remaining time from a shared start
	anchored  bool
	anchor    time.Time
	pausedAt  time.Time
	pausedFor time.Duration
}

// New creates an idle Timer
func New(cfg Config) *Timer {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	t := &Timer{
		clock:    clock,
		duration: cfg.Duration,
		grace:    cfg.GracePeriod,
		onExpire: cfg.OnExpire,
		onTick:   cfg.OnTick,
		state:    StateIdle,
	}
	t.remaining = seconds(t.duration)
	return t
}

// SetOnExpire replaces the expiry callback
func (t *Timer) SetOnExpire(fn func()) {
	t.mu.Lock()
	t.onExpire = fn
	t.mu.Unlock()
}

// SetOnTick replaces the tick callback
func (t *Timer) SetOnTick(fn func(Snapshot)) {
	t.mu.Lock()
	t.onTick = fn
	t.mu.Unlock()
}

// Reset cancels any pending grace timeout and returns to idle with a fresh
// countdown. A non-positive d keeps the current duration.
func (t *Timer) Reset(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked(d)
}

func (t *Timer) resetLocked(d time.Duration) {
	t.cancelGraceLocked()
	if d > 0 {
		t.duration = d
	}
	t.state = StateIdle
	t.resumeTo = ""
	t.remaining = seconds(t.duration)
	t.fired = false
	t.anchored = false
	t.pausedFor = 0
	t.graceLeft = 0
}

// Start is Reset followed immediately by running.
func (t *Timer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked(d)
	t.state = StateRunning
	log.Debug().Int("seconds", t.remaining).Msg("pick timer started")
}

// StartAnchored starts a synchronized countdown whose remaining time is
// derived from startedAt rather than counted down locally, so every observer
// of the same pick agrees on the clock.
func (t *Timer) StartAnchored(startedAt time.Time, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked(d)
	t.anchored = true
	t.anchor = startedAt
	t.state = StateRunning
	t.remaining = t.anchoredRemainingLocked()
	if t.remaining <= 0 {
		t.enterGraceLocked()
	}
	log.Debug().
		Time("anchor", startedAt).
		Int("seconds", t.remaining).
		Msg("synchronized pick timer started")
}

// Stop forces the timer idle and cancels pending timeouts.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelGraceLocked()
	t.state = StateIdle
	t.resumeTo = ""
}

// Pause freezes a running countdown or grace period. It reports whether the
// timer was paused.
func (t *Timer) Pause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateRunning:
	case StateGracePeriod:
		t.graceLeft = t.graceDeadline.Sub(t.clock.Now())
		t.cancelGraceLocked()
	default:
		return false
	}
	t.resumeTo = t.state
	t.state = StatePaused
	t.pausedAt = t.clock.Now()
	return true
}

// Resume continues a paused timer without losing the remaining time.
func (t *Timer) Resume() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return false
	}
	if t.anchored {
		t.pausedFor += t.clock.Now().Sub(t.pausedAt)
	}
	t.state = t.resumeTo
	t.resumeTo = ""
	if t.state == StateGracePeriod {
		t.scheduleGraceLocked(t.graceLeft)
	}
	return true
}

// Tick advances a running countdown by one second (or, when synchronized,
// re-derives it from the anchor). Reaching zero enters the grace period.
func (t *Timer) Tick() {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	if t.anchored {
		t.remaining = t.anchoredRemainingLocked()
	} else {
		t.remaining--
	}
	if t.remaining <= 0 {
		t.remaining = 0
		t.enterGraceLocked()
	}
	snap := t.snapshotLocked()
	onTick := t.onTick
	t.mu.Unlock()

	if onTick != nil {
		onTick(snap)
	}
}

// Run ticks the timer once a second until ctx is done.
func (t *Timer) Run(ctx context.Context) error {
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			t.Tick()
		}
	}
}

// State returns the current state
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Snapshot returns the current timer view
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Timer) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:            t.state,
		SecondsRemaining: t.remaining,
		DurationSeconds:  seconds(t.duration),
		Urgency:          UrgencyFor(t.remaining),
		Synchronized:     t.anchored,
	}
	switch t.state {
	case StateRunning:
		var deadline time.Time
		if t.anchored {
			deadline = t.anchor.Add(t.duration + t.pausedFor)
		} else {
			deadline = t.clock.Now().Add(time.Duration(t.remaining) * time.Second)
		}
		snap.Deadline = &deadline
	case StateGracePeriod:
		deadline := t.graceDeadline
		snap.Deadline = &deadline
	}
	return snap
}

func (t *Timer) anchoredRemainingLocked() int {
	elapsed := t.clock.Now().Sub(t.anchor) - t.pausedFor
	left := t.duration - elapsed
	if left <= 0 {
		return 0
	}
	return seconds(left)
}

func (t *Timer) enterGraceLocked() {
	t.state = StateGracePeriod
	delay := t.grace
	if t.anchored {
		delay = t.anchor.Add(t.duration + t.pausedFor + t.grace).Sub(t.clock.Now())
	}
	log.Debug().Dur("grace", delay).Msg("pick timer entered grace period")
	t.scheduleGraceLocked(delay)
}

func (t *Timer) scheduleGraceLocked(delay time.Duration) {
	t.gen++
	gen := t.gen
	t.graceDeadline = t.clock.Now().Add(delay)
	t.graceTimer = t.clock.AfterFunc(delay, func() { t.expire(gen) })
}

func (t *Timer) cancelGraceLocked() {
	t.gen++
	if t.graceTimer != nil {
		t.graceTimer.Stop()
		t.graceTimer = nil
	}
}

// expire runs on the grace timeout goroutine.
func (t *Timer) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != StateGracePeriod || t.fired {
		t.mu.Unlock()
		return
	}
	t.state = StateExpired
	t.fired = true
	t.graceTimer = nil
	onExpire := t.onExpire
	t.mu.Unlock()

	log.Info().Msg("pick timer expired")
	if onExpire != nil {
		onExpire()
	}
}

// seconds rounds d up to whole seconds.
func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
