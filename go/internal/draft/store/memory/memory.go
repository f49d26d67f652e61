// Package memory is an in-process storage adapter. It backs tests and
// single-process drafts where every engine shares one Store value.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/snakedraft/go/internal/draft/store"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

type roomData struct {
	room     models.Room
	picks    []models.Pick
	pool     []models.Player
	roomSubs map[*store.Subscriber[models.Room]]bool
	pickSubs map[*store.Subscriber[[]models.Pick]]bool
}

// Store implements store.Store in memory.
type Store struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	rooms   map[uuid.UUID]*roomData
	configs map[uuid.UUID]models.AutodraftConfig
}

var _ store.Store = (*Store)(nil)

// New creates an empty Store. A nil clock uses the real clock.
func New(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		clock:   clock,
		rooms:   make(map[uuid.UUID]*roomData),
		configs: make(map[uuid.UUID]models.AutodraftConfig),
	}
}

// CreateRoom registers a room and its player pool
func (s *Store) CreateRoom(ctx context.Context, room models.Room, pool []models.Player) (*models.Room, error) {
	if err := room.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	if room.Status == "" {
		room.Status = models.RoomStatusWaiting
	}
	now := s.clock.Now()
	room.CreatedAt, room.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.ID]; exists {
		return nil, fmt.Errorf("room %s already exists", room.ID)
	}
	s.rooms[room.ID] = &roomData{
		room:     store.CopyRoom(room),
		pool:     append([]models.Player(nil), pool...),
		roomSubs: make(map[*store.Subscriber[models.Room]]bool),
		pickSubs: make(map[*store.Subscriber[[]models.Pick]]bool),
	}
	log.Info().
		Str("room_id", room.ID.String()).
		Int("players", len(pool)).
		Msg("room created")
	out := store.CopyRoom(room)
	return &out, nil
}

func (s *Store) get(roomID uuid.UUID) (*roomData, error) {
	rd, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrRoomNotFound, roomID)
	}
	return rd, nil
}

func (s *Store) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rd, err := s.get(roomID)
	if err != nil {
		return nil, err
	}
	room := store.CopyRoom(rd.room)
	return &room, nil
}

// SubscribeToRoom delivers the current room immediately and every change after it.
func (s *Store) SubscribeToRoom(ctx context.Context, roomID uuid.UUID, onUpdate func(models.Room)) (store.Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rd, err := s.get(roomID)
	if err != nil {
		return nil, err
	}
	sub := store.NewSubscriber(onUpdate)
	rd.roomSubs[sub] = true
	sub.Push(store.CopyRoom(rd.room))

	return func() {
		s.mu.Lock()
		delete(rd.roomSubs, sub)
		s.mu.Unlock()
		sub.Stop()
	}, nil
}

func (s *Store) GetPicks(ctx context.Context, roomID uuid.UUID) ([]models.Pick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rd, err := s.get(roomID)
	if err != nil {
		return nil, err
	}
	return append([]models.Pick(nil), rd.picks...), nil
}

// SubscribeToPicks delivers the current pick log immediately and after every append.
func (s *Store) SubscribeToPicks(ctx context.Context, roomID uuid.UUID, onUpdate func([]models.Pick)) (store.Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rd, err := s.get(roomID)
	if err != nil {
		return nil, err
	}
	sub := store.NewSubscriber(onUpdate)
	rd.pickSubs[sub] = true
	sub.Push(append([]models.Pick(nil), rd.picks...))

	return func() {
		s.mu.Lock()
		delete(rd.pickSubs, sub)
		s.mu.Unlock()
		sub.Stop()
	}, nil
}

func (s *Store) AddPick(ctx context.Context, roomID uuid.UUID, pick models.Pick) (*models.Pick, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rd, err := s.get(roomID)
	if err != nil {
		return nil, err
	}
	if next := len(rd.picks) + 1; pick.PickNumber != next {
		return nil, fmt.Errorf("%w: got %d, next is %d", store.ErrPickConflict, pick.PickNumber, next)
	}
	for _, p := range rd.picks {
		if p.Player.ID == pick.Player.ID {
			return nil, fmt.Errorf("%w: %s", store.ErrPlayerTaken, pick.Player.ID)
		}
	}

	if pick.ID == uuid.Nil {
		pick.ID = uuid.New()
	}
	pick.RoomID = roomID
	if pick.PickedAt.IsZero() {
		pick.PickedAt = s.clock.Now()
	}
	rd.picks = append(rd.picks, pick)

	snapshot := append([]models.Pick(nil), rd.picks...)
	for sub := range rd.pickSubs {
		sub.Push(snapshot)
	}
	return &pick, nil
}

func (s *Store) GetAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rd, err := s.get(roomID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(rd.picks))
	for _, p := range rd.picks {
		taken[p.Player.ID] = true
	}
	available := make([]models.Player, 0, len(rd.pool))
	for _, p := range rd.pool {
		if !taken[p.ID] {
			available = append(available, p)
		}
	}
	return available, nil
}

func (s *Store) UpdateRoomStatus(ctx context.Context, roomID uuid.UUID, status models.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rd, err := s.get(roomID)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	updated := now
	if !updated.After(rd.room.UpdatedAt) {
		// keep UpdatedAt strictly increasing so subscribers can drop stale pushes
		updated = rd.room.UpdatedAt.Add(time.Nanosecond)
	}
	rd.room.Status = status
	rd.room.UpdatedAt = updated
	switch status {
	case models.RoomStatusActive:
		if rd.room.StartedAt == nil {
			rd.room.StartedAt = &now
		}
	case models.RoomStatusComplete:
		rd.room.CompletedAt = &now
	}

	for sub := range rd.roomSubs {
		sub.Push(store.CopyRoom(rd.room))
	}
	return nil
}

// GetAutodraftConfig returns the participant's config, or a disabled default.
func (s *Store) GetAutodraftConfig(ctx context.Context, participantID uuid.UUID) (*models.AutodraftConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[participantID]
	if !ok {
		cfg = models.AutodraftConfig{ParticipantID: participantID}
	}
	return copyConfig(cfg), nil
}

func (s *Store) SaveAutodraftConfig(ctx context.Context, participantID uuid.UUID, update models.AutodraftConfigUpdate) (*models.AutodraftConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[participantID]
	if !ok {
		cfg = models.AutodraftConfig{ParticipantID: participantID}
	}
	update.Apply(&cfg)
	cfg.UpdatedAt = s.clock.Now()
	s.configs[participantID] = cfg
	return copyConfig(cfg), nil
}

func copyConfig(cfg models.AutodraftConfig) *models.AutodraftConfig {
	out := cfg
	out.PositionLimits = cfg.PositionLimits.Clone()
	out.CustomRankings = append([]string(nil), cfg.CustomRankings...)
	out.Queue = append([]string(nil), cfg.Queue...)
	return &out
}
