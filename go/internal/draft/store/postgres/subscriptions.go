package postgres

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/snakedraft/go/internal/draft/store"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// subscriptions fans notifications out to per-room subscribers.
type subscriptions struct {
	store *Store

	mu    sync.Mutex
	rooms map[uuid.UUID]map[*store.Subscriber[models.Room]]bool
	picks map[uuid.UUID]map[*store.Subscriber[[]models.Pick]]bool
}

func newSubscriptions(s *Store) *subscriptions {
	return &subscriptions{
		store: s,
		rooms: make(map[uuid.UUID]map[*store.Subscriber[models.Room]]bool),
		picks: make(map[uuid.UUID]map[*store.Subscriber[[]models.Pick]]bool),
	}
}

func (s *subscriptions) addRoom(roomID uuid.UUID, initial models.Room, fn func(models.Room)) store.Unsubscribe {
	sub := store.NewSubscriber(fn)
	s.mu.Lock()
	if s.rooms[roomID] == nil {
		s.rooms[roomID] = make(map[*store.Subscriber[models.Room]]bool)
	}
	s.rooms[roomID][sub] = true
	sub.Push(initial)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.rooms[roomID], sub)
		if len(s.rooms[roomID]) == 0 {
			delete(s.rooms, roomID)
		}
		s.mu.Unlock()
		sub.Stop()
	}
}

func (s *subscriptions) addPicks(roomID uuid.UUID, initial []models.Pick, fn func([]models.Pick)) store.Unsubscribe {
	sub := store.NewSubscriber(fn)
	s.mu.Lock()
	if s.picks[roomID] == nil {
		s.picks[roomID] = make(map[*store.Subscriber[[]models.Pick]]bool)
	}
	s.picks[roomID][sub] = true
	sub.Push(initial)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.picks[roomID], sub)
		if len(s.picks[roomID]) == 0 {
			delete(s.picks, roomID)
		}
		s.mu.Unlock()
		sub.Stop()
	}
}

func (s *subscriptions) watching(channel string, roomID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch channel {
	case roomsChannel:
		return len(s.rooms[roomID]) > 0
	case picksChannel:
		return len(s.picks[roomID]) > 0
	}
	return false
}

// dispatch reloads whatever a notification names and pushes it to the
// room's subscribers. The payload is the room id.
func (s *subscriptions) dispatch(ctx context.Context, channel, payload string) error {
	roomID, err := uuid.Parse(payload)
	if err != nil {
		return err
	}
	if !s.watching(channel, roomID) {
		return nil
	}

	switch channel {
	case roomsChannel:
		room, err := s.store.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		for sub := range s.rooms[roomID] {
			sub.Push(store.CopyRoom(*room))
		}
		s.mu.Unlock()
	case picksChannel:
		picks, err := s.store.GetPicks(ctx, roomID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		for sub := range s.picks[roomID] {
			sub.Push(append([]models.Pick(nil), picks...))
		}
		s.mu.Unlock()
	default:
		log.Warn().Str("channel", channel).Msg("notification on unexpected channel")
	}
	return nil
}

// resync reloads every watched room after the listener reconnects.
func (s *subscriptions) resync(ctx context.Context) {
	s.mu.Lock()
	var rooms, picks []uuid.UUID
	for id := range s.rooms {
		rooms = append(rooms, id)
	}
	for id := range s.picks {
		picks = append(picks, id)
	}
	s.mu.Unlock()

	for _, id := range rooms {
		if err := s.dispatch(ctx, roomsChannel, id.String()); err != nil {
			log.Error().Err(err).Str("room_id", id.String()).Msg("failed to resync room")
		}
	}
	for _, id := range picks {
		if err := s.dispatch(ctx, picksChannel, id.String()); err != nil {
			log.Error().Err(err).Str("room_id", id.String()).Msg("failed to resync picks")
		}
	}
}
