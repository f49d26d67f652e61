// Package engine runs one participant's view of a snake draft. It keeps the
// room and pick log in sync with the storage adapter, drives the pick timer,
// and autopicks for the local participant when their clock runs out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/snakedraft/go/internal/draft/autopick"
	"github.com/mcdev12/snakedraft/go/internal/draft/events"
	"github.com/mcdev12/snakedraft/go/internal/draft/pick"
	"github.com/mcdev12/snakedraft/go/internal/draft/store"
	"github.com/mcdev12/snakedraft/go/internal/draft/timer"
	"github.com/mcdev12/snakedraft/go/internal/draft/turn"
	"github.com/mcdev12/snakedraft/go/internal/draft/validation"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/roster"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotLoaded     = errors.New("engine not loaded")
	ErrAlreadyLoaded = errors.New("engine already loaded")
	// ErrNoLegalPick means the selector found no player the drafter may take.
	ErrNoLegalPick       = errors.New("no legal player available")
	ErrInvalidTransition = errors.New("invalid draft status transition")
	ErrNotParticipant    = errors.New("participant is not in this room")
	ErrDraftComplete     = errors.New("draft is complete")
)

const defaultAutopickAttempts = 3

// Config configures an Engine.
type Config struct {
	RoomID             uuid.UUID
	LocalParticipantID uuid.UUID
	Clock              clockwork.Clock   // defaults to the real clock
	Strategy           autopick.Strategy // defaults to autopick.Priority
	Publisher          events.Publisher  // defaults to events.Nop
	// Synchronized anchors each countdown on the previous pick's timestamp
	// so every client shows the same clock.
	Synchronized bool
	// MaxAutopickAttempts bounds retries when the store rejects a candidate.
	MaxAutopickAttempts int
}

// Engine is safe for concurrent use. Adapter calls are never made while
// holding the engine lock.
type Engine struct {
	store     store.Store
	cfg       Config
	clock     clockwork.Clock
	strategy  autopick.Strategy
	publisher events.Publisher
	executor  *pick.Executor

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
	closed   sync.Once

	mu        sync.Mutex
	loaded    bool
	timer     *timer.Timer
	room      models.Room
	picks     []models.Pick
	available []models.Player
	autodraft models.AutodraftConfig
	unsubs    []store.Unsubscribe

	// autopickedFor is the pick number an automatic attempt was last
	// launched for. It keeps expiry and autodraft from racing each other.
	autopickedFor int
	// autopickBlocked is set when an automatic attempt found a manual pick
	// in flight; a failed manual pick then relaunches it.
	autopickBlocked int
	completing      bool

	listeners  map[int]func(State)
	nextListen int
}

// New creates an Engine. Call Load before anything else.
func New(s store.Store, cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Strategy == nil {
		cfg.Strategy = autopick.Priority
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.Nop
	}
	if cfg.MaxAutopickAttempts <= 0 {
		cfg.MaxAutopickAttempts = defaultAutopickAttempts
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		store:     s,
		cfg:       cfg,
		clock:     cfg.Clock,
		strategy:  cfg.Strategy,
		publisher: cfg.Publisher,
		executor:  pick.NewExecutor(s, cfg.Clock),
		bgCtx:     ctx,
		bgCancel:  cancel,
		listeners: make(map[int]func(State)),
	}
}

// Load pulls the room, picks, players and local autodraft config, subscribes
// to room and pick updates, and starts the timer if the draft is active.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.loaded {
		e.mu.Unlock()
		return ErrAlreadyLoaded
	}
	e.mu.Unlock()

	room, picks, available, cfg, err := e.fetch(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.timer = timer.New(timer.Config{
		Duration:    room.Settings.PickDuration(),
		GracePeriod: room.Settings.GracePeriod(),
		Clock:       e.clock,
		OnExpire:    e.onExpire,
		OnTick:      func(timer.Snapshot) { e.emit() },
	})
	e.loaded = true
	e.apply(room, picks, available, cfg)
	e.mu.Unlock()

	unsubRoom, err := e.store.SubscribeToRoom(ctx, e.cfg.RoomID, e.onRoom)
	if err != nil {
		return fmt.Errorf("subscribe to room: %w", err)
	}
	unsubPicks, err := e.store.SubscribeToPicks(ctx, e.cfg.RoomID, e.onPicks)
	if err != nil {
		unsubRoom()
		return fmt.Errorf("subscribe to picks: %w", err)
	}

	e.mu.Lock()
	e.unsubs = append(e.unsubs, unsubRoom, unsubPicks)
	e.mu.Unlock()

	log.Info().
		Str("room_id", room.ID.String()).
		Str("participant_id", e.cfg.LocalParticipantID.String()).
		Str("status", string(room.Status)).
		Int("picks", len(picks)).
		Msg("draft engine loaded")
	e.emit()
	return nil
}

// Refresh re-pulls everything from the adapter.
func (e *Engine) Refresh(ctx context.Context) error {
	if !e.isLoaded() {
		return ErrNotLoaded
	}
	room, picks, available, cfg, err := e.fetch(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.apply(room, picks, available, cfg)
	e.mu.Unlock()
	e.emit()
	return nil
}

func (e *Engine) fetch(ctx context.Context) (models.Room, []models.Pick, []models.Player, models.AutodraftConfig, error) {
	room, err := e.store.GetRoom(ctx, e.cfg.RoomID)
	if err != nil {
		return models.Room{}, nil, nil, models.AutodraftConfig{}, fmt.Errorf("get room: %w", err)
	}
	if _, ok := room.Participant(e.cfg.LocalParticipantID); !ok {
		return models.Room{}, nil, nil, models.AutodraftConfig{}, fmt.Errorf("%w: %s", ErrNotParticipant, e.cfg.LocalParticipantID)
	}
	picks, err := e.store.GetPicks(ctx, e.cfg.RoomID)
	if err != nil {
		return models.Room{}, nil, nil, models.AutodraftConfig{}, fmt.Errorf("get picks: %w", err)
	}
	available, err := e.store.GetAvailablePlayers(ctx, e.cfg.RoomID)
	if err != nil {
		return models.Room{}, nil, nil, models.AutodraftConfig{}, fmt.Errorf("get available players: %w", err)
	}
	cfg, err := e.store.GetAutodraftConfig(ctx, e.cfg.LocalParticipantID)
	if err != nil {
		return models.Room{}, nil, nil, models.AutodraftConfig{}, fmt.Errorf("get autodraft config: %w", err)
	}
	return *room, picks, available, *cfg, nil
}

// apply replaces local state with a full pull. Caller holds e.mu.
func (e *Engine) apply(room models.Room, picks []models.Pick, available []models.Player, cfg models.AutodraftConfig) {
	prevStatus := e.room.Status
	advanced := len(picks) != len(e.picks)
	e.room = room
	e.picks = picks
	e.available = available
	e.autodraft = cfg
	e.afterChangeLocked(prevStatus, advanced)
}

// Run drives the pick timer until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	t := e.timer
	e.mu.Unlock()
	if t == nil {
		return ErrNotLoaded
	}
	return t.Run(ctx)
}

// Close unsubscribes, stops the timer and waits for background adapter calls.
func (e *Engine) Close() {
	e.closed.Do(func() {
		e.mu.Lock()
		unsubs := e.unsubs
		e.unsubs = nil
		if e.timer != nil {
			e.timer.Stop()
		}
		e.mu.Unlock()

		for _, unsub := range unsubs {
			unsub()
		}
		e.bgCancel()
		e.bg.Wait()
	})
}

// State returns the current derived state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// AvailablePlayers returns the undrafted pool in adapter order
func (e *Engine) AvailablePlayers() []models.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Player(nil), e.available...)
}

// OnChange registers fn to receive every recomputed state. The returned
// function removes it.
func (e *Engine) OnChange(fn func(State)) func() {
	e.mu.Lock()
	id := e.nextListen
	e.nextListen++
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

func (e *Engine) emit() {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return
	}
	state := e.stateLocked()
	fns := make([]func(State), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func (e *Engine) isLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// onRoom and onPicks run on the adapter's delivery goroutine.
func (e *Engine) onRoom(room models.Room) {
	e.mu.Lock()
	if room.UpdatedAt.Before(e.room.UpdatedAt) {
		e.mu.Unlock()
		return
	}
	prevStatus := e.room.Status
	e.room = room
	e.afterChangeLocked(prevStatus, false)
	e.mu.Unlock()
	e.emit()
}

func (e *Engine) onPicks(picks []models.Pick) {
	e.mu.Lock()
	if len(picks) <= len(e.picks) {
		e.mu.Unlock()
		return
	}
	e.picks = picks
	drafted := roster.DraftedIDs(picks)
	available := e.available[:0:0]
	for _, p := range e.available {
		if !drafted[p.ID] {
			available = append(available, p)
		}
	}
	e.available = available
	e.afterChangeLocked(e.room.Status, true)
	e.mu.Unlock()
	e.emit()
}

// afterChangeLocked keeps the timer in step with the room and launches any
// follow-up adapter work in the background.
func (e *Engine) afterChangeLocked(prevStatus models.RoomStatus, advanced bool) {
	e.syncTimerLocked(prevStatus, advanced)

	if e.completeLocked() {
		if e.room.Status != models.RoomStatusComplete && !e.completing {
			e.completing = true
			e.goBackground(e.completeDraft)
		}
		return
	}
	if e.autodraft.Enabled && e.claimAutopickLocked() {
		e.goBackground(func(ctx context.Context) { e.runAutopick(ctx, "autodraft enabled") })
	}
}

func (e *Engine) syncTimerLocked(prevStatus models.RoomStatus, advanced bool) {
	if e.timer == nil {
		return
	}
	if e.completeLocked() {
		e.timer.Stop()
		return
	}

	switch e.room.Status {
	case models.RoomStatusActive:
		switch {
		case advanced:
			e.restartTimerLocked()
		case prevStatus == models.RoomStatusPaused:
			if !e.timer.Resume() {
				e.restartTimerLocked()
			}
		case prevStatus != models.RoomStatusActive:
			e.restartTimerLocked()
		}
	case models.RoomStatusPaused:
		if advanced {
			e.timer.Reset(0)
		}
		e.timer.Pause()
	default:
		e.timer.Stop()
	}
}

func (e *Engine) restartTimerLocked() {
	d := e.room.Settings.PickDuration()
	if !e.cfg.Synchronized {
		e.timer.Start(d)
		return
	}
	anchor := e.clock.Now()
	if n := len(e.picks); n > 0 {
		anchor = e.picks[n-1].PickedAt
	} else if e.room.StartedAt != nil {
		anchor = *e.room.StartedAt
	}
	e.timer.StartAnchored(anchor, d)
}

func (e *Engine) completeLocked() bool {
	if e.room.Status == models.RoomStatusComplete {
		return true
	}
	total := e.room.Settings.TotalPicks()
	return total > 0 && len(e.picks) >= total
}

// claimAutopickLocked reports whether an automatic pick should be launched
// for the current pick and marks it claimed.
func (e *Engine) claimAutopickLocked() bool {
	if !e.loaded || e.room.Status != models.RoomStatusActive || e.completeLocked() {
		return false
	}
	current := len(e.picks) + 1
	local, ok := e.room.Participant(e.cfg.LocalParticipantID)
	if !ok || turn.ParticipantForPick(current, e.room.Settings.TeamCount) != local.DraftPosition {
		return false
	}
	if e.autopickedFor == current {
		return false
	}
	e.autopickedFor = current
	return true
}

// onExpire runs on the timer's grace timeout goroutine.
func (e *Engine) onExpire() {
	e.mu.Lock()
	claimed := e.claimAutopickLocked()
	e.mu.Unlock()
	if claimed {
		e.goBackground(func(ctx context.Context) { e.runAutopick(ctx, "pick timer expired") })
	}
	e.emit()
}

func (e *Engine) goBackground(fn func(ctx context.Context)) {
	if e.bgCtx.Err() != nil {
		return
	}
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		fn(e.bgCtx)
	}()
}

// snapshotLocked builds the executor's view with drafter as the picking
// participant.
func (e *Engine) snapshotLocked(drafter models.Participant) pick.Snapshot {
	return pick.Snapshot{
		RoomID:      e.room.ID,
		Status:      e.room.Status,
		TeamCount:   e.room.Settings.TeamCount,
		CurrentPick: len(e.picks) + 1,
		Drafter:     drafter,
		Picks:       append([]models.Pick(nil), e.picks...),
		Limits:      e.room.Limits(),
	}
}

// autopickLimitsLocked caps an autodraft override by the room limits, so the
// selector never proposes a player the validator refuses.
func (e *Engine) autopickLimitsLocked(cfg models.AutodraftConfig) models.PositionLimits {
	return cfg.PositionLimits.Within(e.room.Limits())
}

// MakePick submits a manual pick for the local participant. The pick only
// shows up in State once the adapter pushes it back.
func (e *Engine) MakePick(ctx context.Context, playerID string) (*models.Pick, error) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return nil, ErrNotLoaded
	}
	// a paused or inactive draft fails the status check instead
	if e.room.Status == models.RoomStatusActive {
		if res := validation.ValidateTimer(e.timer.Snapshot()); !res.Valid {
			e.mu.Unlock()
			return nil, res.Err()
		}
	}
	local, _ := e.room.Participant(e.cfg.LocalParticipantID)
	snap := e.snapshotLocked(local)
	player := e.lookupLocked(playerID)
	e.mu.Unlock()

	saved, err := e.executor.ExecutePick(ctx, snap, player)
	if err != nil {
		e.retryBlockedAutopick(snap.CurrentPick)
		return nil, err
	}
	e.publishPick(ctx, saved)
	return saved, nil
}

// lookupLocked resolves a player id against the pool, then the pick log, so
// a drafted player fails as unavailable rather than unknown.
func (e *Engine) lookupLocked(playerID string) models.Player {
	for _, p := range e.available {
		if p.ID == playerID {
			return p
		}
	}
	for _, p := range e.picks {
		if p.Player.ID == playerID {
			return p.Player
		}
	}
	return models.Player{ID: playerID}
}

func (e *Engine) retryBlockedAutopick(pickNumber int) {
	e.mu.Lock()
	blocked := e.autopickBlocked == pickNumber && len(e.picks)+1 == pickNumber
	if blocked {
		e.autopickBlocked = 0
	}
	e.mu.Unlock()
	if blocked {
		e.goBackground(func(ctx context.Context) { e.runAutopick(ctx, "retry after failed manual pick") })
	}
}

// ForcePick runs the selector for whoever is on the clock and submits the
// result as an autopick.
func (e *Engine) ForcePick(ctx context.Context) (*models.Pick, error) {
	if !e.isLoaded() {
		return nil, ErrNotLoaded
	}
	saved, _, err := e.autopick(ctx)
	return saved, err
}

func (e *Engine) runAutopick(ctx context.Context, reason string) {
	saved, attempts, err := e.autopick(ctx)
	if err == nil {
		log.Info().
			Str("room_id", e.cfg.RoomID.String()).
			Str("player_id", saved.Player.ID).
			Str("source", string(saved.Source)).
			Str("reason", reason).
			Msg("autopick made")
		return
	}

	switch {
	case errors.Is(err, pick.ErrPickInProgress):
		e.mu.Lock()
		e.autopickBlocked = len(e.picks) + 1
		e.mu.Unlock()
		log.Debug().Str("reason", reason).Msg("autopick deferred to in-flight pick")
		return
	case errors.Is(err, store.ErrPickConflict), errors.Is(err, context.Canceled):
		return
	}

	// release the claim so expiry or the next update can try again
	e.mu.Lock()
	current := len(e.picks) + 1
	if e.autopickedFor == current {
		e.autopickedFor = 0
	}
	e.mu.Unlock()
	log.Error().
		Err(err).
		Str("room_id", e.cfg.RoomID.String()).
		Int("pick", current).
		Str("reason", reason).
		Msg("autopick failed")
	e.publish(ctx, events.New(events.TypeAutopickFailed, e.cfg.RoomID, e.clock.Now(), events.AutopickFailedPayload{
		ParticipantID: e.cfg.LocalParticipantID.String(),
		OverallPick:   current,
		Attempts:      attempts,
		Reason:        err.Error(),
		FailedAt:      e.clock.Now(),
	}))
}

// autopick selects and submits for the participant on the clock, moving on
// to the next candidate when the store says the chosen one is gone. It also
// returns how many candidates were submitted.
func (e *Engine) autopick(ctx context.Context) (*models.Pick, int, error) {
	e.mu.Lock()
	if e.completeLocked() {
		e.mu.Unlock()
		return nil, 0, ErrDraftComplete
	}
	current := len(e.picks) + 1
	slot := turn.ParticipantForPick(current, e.room.Settings.TeamCount)
	drafter, ok := e.room.ParticipantAt(slot)
	cfg := e.autodraft
	e.mu.Unlock()
	if !ok {
		return nil, 0, fmt.Errorf("%w: no participant in slot %d", ErrNotParticipant, slot)
	}

	if drafter.ID != e.cfg.LocalParticipantID {
		other, err := e.store.GetAutodraftConfig(ctx, drafter.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("get autodraft config: %w", err)
		}
		cfg = *other
	}

	exclude := make(map[string]bool)
	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAutopickAttempts; attempt++ {
		e.mu.Lock()
		if len(e.picks)+1 != current {
			e.mu.Unlock()
			return nil, attempt - 1, fmt.Errorf("%w: pick %d already made", store.ErrPickConflict, current)
		}
		limits := e.autopickLimitsLocked(cfg)
		snap := e.snapshotLocked(drafter)
		snap.Limits = limits
		req := autopick.Request{
			Available: append([]models.Player(nil), e.available...),
			Roster:    roster.ForParticipant(e.picks, drafter.ID),
			Queue:     cfg.Queue,
			Rankings:  cfg.CustomRankings,
			Limits:    limits,
			Exclude:   exclude,
		}
		e.mu.Unlock()

		sel := e.strategy.Select(req)
		if sel == nil {
			return nil, attempt - 1, ErrNoLegalPick
		}

		saved, err := e.executor.ExecuteAutopick(ctx, snap, sel.Player, sel.Source)
		if err == nil {
			e.publishPick(ctx, saved)
			return saved, attempt, nil
		}
		if !retryable(err) {
			return nil, attempt, err
		}
		log.Warn().
			Err(err).
			Str("player_id", sel.Player.ID).
			Int("attempt", attempt).
			Msg("autopick candidate rejected")
		exclude[sel.Player.ID] = true
		lastErr = err
	}
	return nil, e.cfg.MaxAutopickAttempts, fmt.Errorf("autopick gave up after %d attempts: %w", e.cfg.MaxAutopickAttempts, lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, store.ErrPlayerTaken) {
		return true
	}
	code, ok := validation.CodeOf(err)
	return ok && (code == validation.CodePlayerUnavailable || code == validation.CodePositionLimitReached)
}

// Start moves a waiting room to active.
func (e *Engine) Start(ctx context.Context) error {
	room, err := e.transition(ctx, models.RoomStatusActive, models.RoomStatusWaiting, models.RoomStatusLoading)
	if err != nil {
		return err
	}
	startedAt := e.clock.Now()
	if room.StartedAt != nil {
		startedAt = *room.StartedAt
	}
	e.publish(ctx, events.New(events.TypeDraftStarted, room.ID, startedAt, events.DraftStartedPayload{
		RoomID:      room.ID.String(),
		StartedAt:   startedAt,
		TeamCount:   room.Settings.TeamCount,
		TotalRounds: room.Settings.Rounds,
		TotalPicks:  room.Settings.TotalPicks(),
	}))
	return nil
}

// Pause freezes an active draft and its timer.
func (e *Engine) Pause(ctx context.Context) error {
	room, err := e.transition(ctx, models.RoomStatusPaused, models.RoomStatusActive)
	if err != nil {
		return err
	}
	state := e.State()
	e.publish(ctx, events.New(events.TypeDraftPaused, room.ID, e.clock.Now(), events.DraftPausedPayload{
		RoomID:           room.ID.String(),
		PausedAt:         e.clock.Now(),
		OverallPick:      state.CurrentPick,
		SecondsRemaining: state.Timer.SecondsRemaining,
	}))
	return nil
}

// Resume continues a paused draft with the time it had left.
func (e *Engine) Resume(ctx context.Context) error {
	room, err := e.transition(ctx, models.RoomStatusActive, models.RoomStatusPaused)
	if err != nil {
		return err
	}
	e.publish(ctx, events.New(events.TypeDraftResumed, room.ID, e.clock.Now(), events.DraftResumedPayload{
		RoomID:      room.ID.String(),
		ResumedAt:   e.clock.Now(),
		OverallPick: e.State().CurrentPick,
	}))
	return nil
}

// transition writes the new status through the adapter, then re-reads the
// room and drives the timer from it.
func (e *Engine) transition(ctx context.Context, to models.RoomStatus, from ...models.RoomStatus) (models.Room, error) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return models.Room{}, ErrNotLoaded
	}
	current := e.room.Status
	e.mu.Unlock()

	allowed := false
	for _, s := range from {
		if s == current {
			allowed = true
		}
	}
	if !allowed {
		return models.Room{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
	}

	if err := e.store.UpdateRoomStatus(ctx, e.cfg.RoomID, to); err != nil {
		return models.Room{}, fmt.Errorf("update room status: %w", err)
	}
	room, err := e.store.GetRoom(ctx, e.cfg.RoomID)
	if err != nil {
		return models.Room{}, fmt.Errorf("get room: %w", err)
	}

	e.onRoom(*room)
	log.Info().
		Str("room_id", room.ID.String()).
		Str("from", string(current)).
		Str("to", string(to)).
		Msg("draft status changed")
	return *room, nil
}

// completeDraft marks the room complete after the final pick lands.
func (e *Engine) completeDraft(ctx context.Context) {
	if err := e.store.UpdateRoomStatus(ctx, e.cfg.RoomID, models.RoomStatusComplete); err != nil {
		log.Error().Err(err).Str("room_id", e.cfg.RoomID.String()).Msg("failed to mark draft complete")
		e.mu.Lock()
		e.completing = false
		e.mu.Unlock()
		return
	}
	room, err := e.store.GetRoom(ctx, e.cfg.RoomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", e.cfg.RoomID.String()).Msg("failed to reload completed draft")
		return
	}
	e.onRoom(*room)

	completedAt := e.clock.Now()
	if room.CompletedAt != nil {
		completedAt = *room.CompletedAt
	}
	payload := events.DraftCompletedPayload{
		RoomID:      room.ID.String(),
		CompletedAt: completedAt,
		TotalPicks:  room.Settings.TotalPicks(),
	}
	if room.StartedAt != nil {
		payload.Duration = completedAt.Sub(*room.StartedAt).String()
	}
	event := events.New(events.TypeDraftCompleted, room.ID, completedAt, payload)
	// every client sees the final pick; one id lets the stream drop the rest
	event.ID = uuid.NewSHA1(room.ID, []byte(events.TypeDraftCompleted))
	e.publish(ctx, event)
	log.Info().Str("room_id", room.ID.String()).Msg("draft complete")
}

func (e *Engine) publishPick(ctx context.Context, p *models.Pick) {
	e.mu.Lock()
	teamCount := e.room.Settings.TeamCount
	participant, _ := e.room.Participant(p.ParticipantID)
	e.mu.Unlock()

	event := events.New(events.TypePickMade, p.RoomID, p.PickedAt, events.PickMadePayload{
		PickID:          p.ID.String(),
		ParticipantID:   p.ParticipantID.String(),
		ParticipantName: participant.DisplayName,
		PlayerID:        p.Player.ID,
		PlayerName:      p.Player.Name,
		Position:        string(p.Player.Position),
		Round:           p.Round,
		Pick:            p.PickInRound,
		OverallPick:     p.PickNumber,
		Label:           turn.FormatPickNumber(p.PickNumber, teamCount),
		IsAutopick:      p.IsAutopick,
		Source:          string(p.Source),
		MadeAt:          p.PickedAt,
	})
	event.ID = p.ID
	e.publish(ctx, event)
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		log.Warn().
			Err(err).
			Str("event_type", string(event.Type)).
			Str("room_id", event.RoomID.String()).
			Msg("failed to publish draft event")
	}
}

// SaveAutodraftConfig updates the local participant's autodraft settings.
// Enabling autodraft while on the clock picks immediately.
func (e *Engine) SaveAutodraftConfig(ctx context.Context, update models.AutodraftConfigUpdate) (*models.AutodraftConfig, error) {
	if !e.isLoaded() {
		return nil, ErrNotLoaded
	}
	cfg, err := e.store.SaveAutodraftConfig(ctx, e.cfg.LocalParticipantID, update)
	if err != nil {
		return nil, fmt.Errorf("save autodraft config: %w", err)
	}

	e.mu.Lock()
	e.autodraft = *cfg
	claimed := cfg.Enabled && e.claimAutopickLocked()
	e.mu.Unlock()
	if claimed {
		e.goBackground(func(ctx context.Context) { e.runAutopick(ctx, "autodraft enabled") })
	}
	e.emit()
	return cfg, nil
}

// SetQueue replaces the local participant's pick queue
func (e *Engine) SetQueue(ctx context.Context, playerIDs []string) (*models.AutodraftConfig, error) {
	queue := append([]string{}, playerIDs...)
	return e.SaveAutodraftConfig(ctx, models.AutodraftConfigUpdate{Queue: &queue})
}
