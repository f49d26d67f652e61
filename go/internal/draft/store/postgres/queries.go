package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the statements the store runs, bound to a db or a tx.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const insertRoom = `-- name: InsertRoom :exec
INSERT INTO draft_rooms (
    id, name, status, team_count, rounds, pick_time_seconds, grace_period_seconds,
    position_limits, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

func (q *Queries) InsertRoom(ctx context.Context, r models.Room) error {
	limits, err := sqlutil.ToNullJSON(r.PositionLimits)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, insertRoom,
		r.ID, r.Name, string(r.Status),
		r.Settings.TeamCount, r.Settings.Rounds, r.Settings.PickTimeSeconds, r.Settings.GracePeriodSeconds,
		limits, r.CreatedAt,
	)
	return err
}

const insertParticipant = `-- name: InsertParticipant :exec
INSERT INTO draft_participants (room_id, id, display_name, draft_position)
VALUES ($1, $2, $3, $4)`

func (q *Queries) InsertParticipant(ctx context.Context, roomID uuid.UUID, p models.Participant) error {
	_, err := q.db.ExecContext(ctx, insertParticipant, roomID, p.ID, p.DisplayName, p.DraftPosition)
	return err
}

const getRoom = `-- name: GetRoom :one
SELECT id, name, status, team_count, rounds, pick_time_seconds, grace_period_seconds,
       position_limits, started_at, completed_at, created_at, updated_at
FROM draft_rooms
WHERE id = $1`

func (q *Queries) GetRoom(ctx context.Context, id uuid.UUID) (models.Room, error) {
	var (
		r         models.Room
		status    string
		limits    pqtype.NullRawMessage
		started   sql.NullTime
		completed sql.NullTime
	)
	err := q.db.QueryRowContext(ctx, getRoom, id).Scan(
		&r.ID, &r.Name, &status,
		&r.Settings.TeamCount, &r.Settings.Rounds, &r.Settings.PickTimeSeconds, &r.Settings.GracePeriodSeconds,
		&limits, &started, &completed, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return models.Room{}, err
	}
	r.Status = models.RoomStatus(status)
	r.StartedAt = sqlutil.FromSqlTime(started)
	r.CompletedAt = sqlutil.FromSqlTime(completed)
	if r.PositionLimits, err = sqlutil.FromNullJSON[models.PositionLimits](limits); err != nil {
		return models.Room{}, fmt.Errorf("position_limits: %w", err)
	}
	return r, nil
}

const lockRoom = `-- name: LockRoom :one
SELECT status FROM draft_rooms WHERE id = $1 FOR UPDATE`

// LockRoom serializes pick appends for a room until the tx ends.
func (q *Queries) LockRoom(ctx context.Context, id uuid.UUID) (models.RoomStatus, error) {
	var status string
	err := q.db.QueryRowContext(ctx, lockRoom, id).Scan(&status)
	return models.RoomStatus(status), err
}

const listParticipants = `-- name: ListParticipants :many
SELECT id, display_name, draft_position
FROM draft_participants
WHERE room_id = $1
ORDER BY draft_position`

func (q *Queries) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]models.Participant, error) {
	rows, err := q.db.QueryContext(ctx, listParticipants, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.DraftPosition); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const countPicks = `-- name: CountPicks :one
SELECT COUNT(*) FROM draft_picks WHERE room_id = $1`

func (q *Queries) CountPicks(ctx context.Context, roomID uuid.UUID) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, countPicks, roomID).Scan(&n)
	return n, err
}

const insertPick = `-- name: InsertPick :exec
INSERT INTO draft_picks (
    id, room_id, pick_number, round, pick_in_round, player_id, participant_id,
    picked_at, is_autopick, source, position_counts
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (q *Queries) InsertPick(ctx context.Context, p models.Pick) error {
	counts, err := sqlutil.ToNullJSON(p.PositionCounts)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, insertPick,
		p.ID, p.RoomID, p.PickNumber, p.Round, p.PickInRound, p.Player.ID, p.ParticipantID,
		p.PickedAt, p.IsAutopick, string(p.Source), counts,
	)
	return err
}

const playerColumns = `p.id, p.name, p.position, p.team, p.adp, p.projected_points, p.bye_week`

const listPicks = `-- name: ListPicks :many
SELECT dp.id, dp.room_id, dp.pick_number, dp.round, dp.pick_in_round, dp.participant_id,
       dp.picked_at, dp.is_autopick, dp.source, dp.position_counts,
       ` + playerColumns + `
FROM draft_picks dp
JOIN players p ON p.id = dp.player_id
WHERE dp.room_id = $1
ORDER BY dp.pick_number`

func (q *Queries) ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.Pick, error) {
	rows, err := q.db.QueryContext(ctx, listPicks, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Pick
	for rows.Next() {
		var (
			pk     models.Pick
			source string
			counts pqtype.NullRawMessage
			pl     playerRow
		)
		if err := rows.Scan(
			&pk.ID, &pk.RoomID, &pk.PickNumber, &pk.Round, &pk.PickInRound, &pk.ParticipantID,
			&pk.PickedAt, &pk.IsAutopick, &source, &counts,
			&pl.id, &pl.name, &pl.position, &pl.team, &pl.adp, &pl.projected, &pl.bye,
		); err != nil {
			return nil, err
		}
		pk.Source = models.PickSource(source)
		pk.Player = pl.model()
		if pk.PositionCounts, err = sqlutil.FromNullJSON[models.PositionCounts](counts); err != nil {
			return nil, fmt.Errorf("position_counts: %w", err)
		}
		out = append(out, pk)
	}
	return out, rows.Err()
}

const listAvailablePlayers = `-- name: ListAvailablePlayers :many
SELECT ` + playerColumns + `
FROM players p
WHERE NOT EXISTS (
    SELECT 1 FROM draft_picks dp WHERE dp.room_id = $1 AND dp.player_id = p.id
)
ORDER BY COALESCE(p.adp, 999), p.id`

func (q *Queries) ListAvailablePlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	rows, err := q.db.QueryContext(ctx, listAvailablePlayers, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		var pl playerRow
		if err := rows.Scan(&pl.id, &pl.name, &pl.position, &pl.team, &pl.adp, &pl.projected, &pl.bye); err != nil {
			return nil, err
		}
		out = append(out, pl.model())
	}
	return out, rows.Err()
}

const updateRoomStatus = `-- name: UpdateRoomStatus :execrows
UPDATE draft_rooms
SET status       = $2,
    started_at   = CASE WHEN $2 = 'active' THEN COALESCE(started_at, NOW()) ELSE started_at END,
    completed_at = CASE WHEN $2 = 'complete' THEN NOW() ELSE completed_at END,
    updated_at   = NOW()
WHERE id = $1`

func (q *Queries) UpdateRoomStatus(ctx context.Context, id uuid.UUID, status models.RoomStatus) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRoomStatus, id, string(status))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getAutodraftConfig = `-- name: GetAutodraftConfig :one
SELECT participant_id, enabled, position_limits, custom_rankings, queue, updated_at
FROM autodraft_configs
WHERE participant_id = $1`

func (q *Queries) GetAutodraftConfig(ctx context.Context, participantID uuid.UUID) (models.AutodraftConfig, error) {
	var (
		cfg    models.AutodraftConfig
		limits pqtype.NullRawMessage
	)
	err := q.db.QueryRowContext(ctx, getAutodraftConfig, participantID).Scan(
		&cfg.ParticipantID, &cfg.Enabled, &limits,
		pq.Array(&cfg.CustomRankings), pq.Array(&cfg.Queue), &cfg.UpdatedAt,
	)
	if err != nil {
		return models.AutodraftConfig{}, err
	}
	if cfg.PositionLimits, err = sqlutil.FromNullJSON[models.PositionLimits](limits); err != nil {
		return models.AutodraftConfig{}, fmt.Errorf("position_limits: %w", err)
	}
	return cfg, nil
}

const upsertAutodraftConfig = `-- name: UpsertAutodraftConfig :one
INSERT INTO autodraft_configs (participant_id, enabled, position_limits, custom_rankings, queue, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (participant_id) DO UPDATE
SET enabled         = EXCLUDED.enabled,
    position_limits = EXCLUDED.position_limits,
    custom_rankings = EXCLUDED.custom_rankings,
    queue           = EXCLUDED.queue,
    updated_at      = EXCLUDED.updated_at
RETURNING updated_at`

func (q *Queries) UpsertAutodraftConfig(ctx context.Context, cfg models.AutodraftConfig) (models.AutodraftConfig, error) {
	limits, err := sqlutil.ToNullJSON(cfg.PositionLimits)
	if err != nil {
		return models.AutodraftConfig{}, err
	}
	err = q.db.QueryRowContext(ctx, upsertAutodraftConfig,
		cfg.ParticipantID, cfg.Enabled, limits,
		pq.Array(nonNil(cfg.CustomRankings)), pq.Array(nonNil(cfg.Queue)),
	).Scan(&cfg.UpdatedAt)
	return cfg, err
}

const notify = `SELECT pg_notify($1, $2)`

func (q *Queries) Notify(ctx context.Context, channel, payload string) error {
	_, err := q.db.ExecContext(ctx, notify, channel, payload)
	return err
}

type playerRow struct {
	id        string
	name      string
	position  string
	team      string
	adp       sql.NullFloat64
	projected sql.NullFloat64
	bye       sql.NullInt32
}

func (r playerRow) model() models.Player {
	p := models.Player{
		ID:              r.id,
		Name:            r.name,
		Position:        models.Position(r.position),
		Team:            r.team,
		ProjectedPoints: sqlutil.FromSqlFloat64(r.projected),
		ByeWeek:         sqlutil.FromSqlInt32(r.bye),
	}
	if r.adp.Valid {
		p.ADP = r.adp.Float64
	}
	return p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
