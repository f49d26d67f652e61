// Package postgres is the shared storage adapter. Pick appends are serialized
// per room with a row lock and guarded by unique constraints; changes are
// announced with pg_notify and fanned out to subscribers by a pq.Listener.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/snakedraft/go/internal/draft/store"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

const (
	roomsChannel = "draft_rooms"
	picksChannel = "draft_picks"

	uniqueViolation = "23505"
)

// Store implements store.Store on Postgres.
type Store struct {
	db      *sql.DB
	queries *Queries
	subs    *subscriptions
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	s := &Store{db: db, queries: NewQueries(db)}
	s.subs = newSubscriptions(s)
	return s
}

// Migrate creates the tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// CreateRoom inserts a room and its participants. The player pool is the
// players table.
func (s *Store) CreateRoom(ctx context.Context, room models.Room) (*models.Room, error) {
	if err := room.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	if room.Status == "" {
		room.Status = models.RoomStatusWaiting
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}

	err := sqlutil.Run(ctx, s.db, s.queries.WithTx, func(q *Queries) error {
		if err := q.InsertRoom(ctx, room); err != nil {
			return fmt.Errorf("insert room: %w", err)
		}
		for _, p := range room.Participants {
			if err := q.InsertParticipant(ctx, room.ID, p); err != nil {
				return fmt.Errorf("insert participant %s: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, room.ID)
}

func (s *Store) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	room, err := s.queries.GetRoom(ctx, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrRoomNotFound, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room.Participants, err = s.queries.ListParticipants(ctx, roomID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return &room, nil
}

func (s *Store) GetPicks(ctx context.Context, roomID uuid.UUID) ([]models.Pick, error) {
	picks, err := s.queries.ListPicks(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	return picks, nil
}

// AddPick appends a pick inside a transaction that holds the room row lock,
// so concurrent writers see each other's pick count.
func (s *Store) AddPick(ctx context.Context, roomID uuid.UUID, pick models.Pick) (*models.Pick, error) {
	if pick.ID == uuid.Nil {
		pick.ID = uuid.New()
	}
	pick.RoomID = roomID

	err := sqlutil.Run(ctx, s.db, s.queries.WithTx, func(q *Queries) error {
		if _, err := q.LockRoom(ctx, roomID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", store.ErrRoomNotFound, roomID)
			}
			return fmt.Errorf("lock room: %w", err)
		}
		n, err := q.CountPicks(ctx, roomID)
		if err != nil {
			return fmt.Errorf("count picks: %w", err)
		}
		if next := n + 1; pick.PickNumber != next {
			return fmt.Errorf("%w: got %d, next is %d", store.ErrPickConflict, pick.PickNumber, next)
		}
		if err := q.InsertPick(ctx, pick); err != nil {
			return mapInsertError(err, pick)
		}
		return q.Notify(ctx, picksChannel, roomID.String())
	})
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

func mapInsertError(err error, pick models.Pick) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case "draft_picks_player_key":
			return fmt.Errorf("%w: %s", store.ErrPlayerTaken, pick.Player.ID)
		case "draft_picks_pick_number_key":
			return fmt.Errorf("%w: pick %d", store.ErrPickConflict, pick.PickNumber)
		}
	}
	return fmt.Errorf("insert pick: %w", err)
}

func (s *Store) GetAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	players, err := s.queries.ListAvailablePlayers(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list available players: %w", err)
	}
	return players, nil
}

func (s *Store) UpdateRoomStatus(ctx context.Context, roomID uuid.UUID, status models.RoomStatus) error {
	return sqlutil.Run(ctx, s.db, s.queries.WithTx, func(q *Queries) error {
		n, err := q.UpdateRoomStatus(ctx, roomID, status)
		if err != nil {
			return fmt.Errorf("update room status: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", store.ErrRoomNotFound, roomID)
		}
		return q.Notify(ctx, roomsChannel, roomID.String())
	})
}

// GetAutodraftConfig returns the participant's config, or a disabled default.
func (s *Store) GetAutodraftConfig(ctx context.Context, participantID uuid.UUID) (*models.AutodraftConfig, error) {
	cfg, err := s.queries.GetAutodraftConfig(ctx, participantID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.AutodraftConfig{ParticipantID: participantID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get autodraft config: %w", err)
	}
	return &cfg, nil
}

func (s *Store) SaveAutodraftConfig(ctx context.Context, participantID uuid.UUID, update models.AutodraftConfigUpdate) (*models.AutodraftConfig, error) {
	var saved models.AutodraftConfig
	err := sqlutil.Run(ctx, s.db, s.queries.WithTx, func(q *Queries) error {
		cfg, err := q.GetAutodraftConfig(ctx, participantID)
		if errors.Is(err, sql.ErrNoRows) {
			cfg = models.AutodraftConfig{ParticipantID: participantID}
		} else if err != nil {
			return fmt.Errorf("get autodraft config: %w", err)
		}
		update.Apply(&cfg)
		saved, err = q.UpsertAutodraftConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("save autodraft config: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// SubscribeToRoom pushes the current room, then every change announced on
// the rooms channel. Changes are only seen while Listen is running.
func (s *Store) SubscribeToRoom(ctx context.Context, roomID uuid.UUID, onUpdate func(models.Room)) (store.Unsubscribe, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.subs.addRoom(roomID, *room, onUpdate), nil
}

// SubscribeToPicks pushes the current pick log, then every change announced
// on the picks channel.
func (s *Store) SubscribeToPicks(ctx context.Context, roomID uuid.UUID, onUpdate func([]models.Pick)) (store.Unsubscribe, error) {
	picks, err := s.GetPicks(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.subs.addPicks(roomID, picks, onUpdate), nil
}

// Listen receives notifications on a dedicated connection until ctx is done.
func (s *Store) Listen(ctx context.Context, cfg ListenerConfig) error {
	l, err := newListener(cfg)
	if err != nil {
		return err
	}
	log.Info().Strs("channels", []string{roomsChannel, picksChannel}).Msg("listening for draft changes")
	return l.run(ctx, s.subs.dispatch, s.subs.resync)
}
