package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/snakedraft/go/internal/draft/store"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	roomColumns = []string{
		"id", "name", "status", "team_count", "rounds", "pick_time_seconds", "grace_period_seconds",
		"position_limits", "started_at", "completed_at", "created_at", "updated_at",
	}
	participantColumns = []string{"id", "display_name", "draft_position"}
	pickColumns        = []string{
		"id", "room_id", "pick_number", "round", "pick_in_round", "participant_id",
		"picked_at", "is_autopick", "source", "position_counts",
		"id", "name", "position", "team", "adp", "projected_points", "bye_week",
	}
	configColumns = []string{"participant_id", "enabled", "position_limits", "custom_rankings", "queue", "updated_at"}
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestMigrateAppliesSchema(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS players").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomInsertsParticipants(t *testing.T) {
	s, mock := newMockStore(t)
	roomID := uuid.New()
	one, two := uuid.New(), uuid.New()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO draft_rooms").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO draft_participants").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO draft_participants").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT id, name, status").
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows(roomColumns).
			AddRow(roomID.String(), "league", "waiting", 2, 15, 60, 5, nil, nil, nil, now, now))
	mock.ExpectQuery("FROM draft_participants").
		WillReturnRows(sqlmock.NewRows(participantColumns).
			AddRow(one.String(), "one", 0).
			AddRow(two.String(), "two", 1))

	room, err := s.CreateRoom(context.Background(), models.Room{
		ID:        roomID,
		Name:      "league",
		Settings:  models.DraftSettings{TeamCount: 2, Rounds: 15, PickTimeSeconds: 60, GracePeriodSeconds: 5},
		CreatedAt: now,
		Participants: []models.Participant{
			{ID: one, DisplayName: "one", DraftPosition: 0},
			{ID: two, DisplayName: "two", DraftPosition: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusWaiting, room.Status)
	assert.Len(t, room.Participants, 2)
	assert.Nil(t, room.PositionLimits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomRejectsBadSettings(t *testing.T) {
	s, mock := newMockStore(t)
	_, err := s.CreateRoom(context.Background(), models.Room{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoom(t *testing.T) {
	s, mock := newMockStore(t)
	roomID := uuid.New()
	started := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, name, status").
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows(roomColumns).
			AddRow(roomID.String(), "league", "active", 12, 18, 30, 3,
				[]byte(`{"QB":2,"TE":1}`), started, nil, started, started))
	mock.ExpectQuery("FROM draft_participants").
		WillReturnRows(sqlmock.NewRows(participantColumns).AddRow(uuid.NewString(), "one", 0))

	room, err := s.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusActive, room.Status)
	assert.Equal(t, 12, room.Settings.TeamCount)
	assert.Equal(t, models.PositionLimits{models.PositionQB: 2, models.PositionTE: 1}, room.PositionLimits)
	require.NotNil(t, room.StartedAt)
	assert.True(t, started.Equal(*room.StartedAt))
	assert.Nil(t, room.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoomNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, name, status").WillReturnRows(sqlmock.NewRows(roomColumns))

	_, err := s.GetRoom(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPick(t *testing.T) {
	roomID := uuid.New()
	pick := models.Pick{
		ID:            uuid.New(),
		PickNumber:    3,
		Round:         2,
		PickInRound:   1,
		Player:        models.Player{ID: "rb1", Position: models.PositionRB},
		ParticipantID: uuid.New(),
		PickedAt:      time.Now(),
		Source:        models.PickSourceManual,
	}

	t.Run("appends next pick and notifies", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM draft_rooms").
			WithArgs(roomID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("INSERT INTO draft_picks").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("pg_notify").
			WithArgs(picksChannel, roomID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		saved, err := s.AddPick(context.Background(), roomID, pick)
		require.NoError(t, err)
		assert.Equal(t, pick.ID, saved.ID)
		assert.Equal(t, roomID, saved.RoomID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale pick number", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM draft_rooms").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectRollback()

		_, err := s.AddPick(context.Background(), roomID, pick)
		assert.ErrorIs(t, err, store.ErrPickConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("player already drafted", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM draft_rooms").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("INSERT INTO draft_picks").
			WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "draft_picks_player_key"})
		mock.ExpectRollback()

		_, err := s.AddPick(context.Background(), roomID, pick)
		assert.ErrorIs(t, err, store.ErrPlayerTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pick number taken by a concurrent writer", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM draft_rooms").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("INSERT INTO draft_picks").
			WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "draft_picks_pick_number_key"})
		mock.ExpectRollback()

		_, err := s.AddPick(context.Background(), roomID, pick)
		assert.ErrorIs(t, err, store.ErrPickConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown room", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM draft_rooms").WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		_, err := s.AddPick(context.Background(), roomID, pick)
		assert.ErrorIs(t, err, store.ErrRoomNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateRoomStatus(t *testing.T) {
	roomID := uuid.New()

	t.Run("notifies on change", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE draft_rooms").
			WithArgs(roomID, "paused").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("pg_notify").
			WithArgs(roomsChannel, roomID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.UpdateRoomStatus(context.Background(), roomID, models.RoomStatusPaused))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown room", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE draft_rooms").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.UpdateRoomStatus(context.Background(), roomID, models.RoomStatusActive)
		assert.ErrorIs(t, err, store.ErrRoomNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetAutodraftConfig(t *testing.T) {
	participant := uuid.New()

	t.Run("missing config is disabled", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("FROM autodraft_configs").WillReturnRows(sqlmock.NewRows(configColumns))

		cfg, err := s.GetAutodraftConfig(context.Background(), participant)
		require.NoError(t, err)
		assert.Equal(t, participant, cfg.ParticipantID)
		assert.False(t, cfg.Enabled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stored config", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("FROM autodraft_configs").
			WillReturnRows(sqlmock.NewRows(configColumns).
				AddRow(participant.String(), true, []byte(`{"QB":1}`), []byte(`{rb1,wr1}`), []byte(`{}`), time.Now()))

		cfg, err := s.GetAutodraftConfig(context.Background(), participant)
		require.NoError(t, err)
		assert.True(t, cfg.Enabled)
		assert.Equal(t, models.PositionLimits{models.PositionQB: 1}, cfg.PositionLimits)
		assert.Equal(t, []string{"rb1", "wr1"}, cfg.CustomRankings)
		assert.Empty(t, cfg.Queue)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveAutodraftConfigMergesUpdate(t *testing.T) {
	s, mock := newMockStore(t)
	participant := uuid.New()
	saved := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM autodraft_configs").
		WillReturnRows(sqlmock.NewRows(configColumns).
			AddRow(participant.String(), false, nil, []byte(`{rb1}`), []byte(`{}`), saved.Add(-time.Hour)))
	mock.ExpectQuery("INSERT INTO autodraft_configs").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(saved))
	mock.ExpectCommit()

	enabled := true
	queue := []string{"te1"}
	cfg, err := s.SaveAutodraftConfig(context.Background(), participant, models.AutodraftConfigUpdate{
		Enabled: &enabled,
		Queue:   &queue,
	})
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"rb1"}, cfg.CustomRankings)
	assert.Equal(t, []string{"te1"}, cfg.Queue)
	assert.True(t, saved.Equal(cfg.UpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchPushesReloadedPicks(t *testing.T) {
	s, mock := newMockStore(t)
	roomID := uuid.New()

	got := make(chan []models.Pick, 2)
	unsubscribe := s.subs.addPicks(roomID, nil, func(p []models.Pick) { got <- p })
	defer unsubscribe()

	select {
	case initial := <-got:
		assert.Empty(t, initial)
	case <-time.After(time.Second):
		t.Fatal("no initial push")
	}

	mock.ExpectQuery("FROM draft_picks dp").
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows(pickColumns).
			AddRow(uuid.NewString(), roomID.String(), 1, 1, 1, uuid.NewString(),
				time.Now(), false, "manual", []byte(`{"QB":0}`),
				"qb1", "Quarterback", "QB", "KC", 12.5, nil, 6))

	require.NoError(t, s.subs.dispatch(context.Background(), picksChannel, roomID.String()))

	select {
	case picks := <-got:
		require.Len(t, picks, 1)
		assert.Equal(t, "qb1", picks[0].Player.ID)
		assert.Equal(t, 12.5, picks[0].Player.ADP)
		require.NotNil(t, picks[0].Player.ByeWeek)
		assert.Equal(t, 6, *picks[0].Player.ByeWeek)
		assert.Nil(t, picks[0].Player.ProjectedPoints)
		assert.Equal(t, models.PickSourceManual, picks[0].Source)
	case <-time.After(time.Second):
		t.Fatal("no push after notification")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchIgnoresUnwatchedRooms(t *testing.T) {
	s, mock := newMockStore(t)

	require.NoError(t, s.subs.dispatch(context.Background(), roomsChannel, uuid.NewString()))
	assert.Error(t, s.subs.dispatch(context.Background(), roomsChannel, "not-a-uuid"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsubscribeStopsWatching(t *testing.T) {
	s, _ := newMockStore(t)
	roomID := uuid.New()

	unsubscribe := s.subs.addRoom(roomID, models.Room{ID: roomID}, func(models.Room) {})
	assert.True(t, s.subs.watching(roomsChannel, roomID))
	unsubscribe()
	unsubscribe()
	assert.False(t, s.subs.watching(roomsChannel, roomID))
}
