// Command seedplayers loads a player pool or projections file into the
// players table and can create a room to draft from it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mcdev12/snakedraft/go/internal/dbconfig"
	"github.com/mcdev12/snakedraft/go/internal/draft/store/postgres"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/playerpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const upsertPlayer = `
INSERT INTO players (id, name, position, team, adp, projected_points, bye_week)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    position = EXCLUDED.position,
    team = EXCLUDED.team,
    adp = EXCLUDED.adp,
    projected_points = EXCLUDED.projected_points,
    bye_week = EXCLUDED.bye_week`

const insertPlayer = `
INSERT INTO players (id, name, position, team, adp, projected_points, bye_week)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	file := flag.String("file", "players.csv", "pool (.csv) or projections (.csv/.json) file")
	update := flag.Bool("update", false, "overwrite players that already exist")
	roomName := flag.String("room", "", "also create a room with this name")
	teams := flag.Int("teams", 12, "teams in the created room")
	rounds := flag.Int("rounds", 18, "rounds in the created room")
	pickTime := flag.Int("pick-time", 30, "seconds per pick in the created room")
	grace := flag.Int("grace", 3, "grace period seconds in the created room")
	flag.Parse()

	ctx := context.Background()
	if err := seed(ctx, *file, *update); err != nil {
		log.Fatal().Err(err).Msg("seed players failed")
	}
	if *roomName == "" {
		return
	}
	settings := models.DraftSettings{
		TeamCount:          *teams,
		Rounds:             *rounds,
		PickTimeSeconds:    *pickTime,
		GracePeriodSeconds: *grace,
	}
	if err := createRoom(ctx, *roomName, settings); err != nil {
		log.Fatal().Err(err).Msg("create room failed")
	}
}

func seed(ctx context.Context, file string, update bool) error {
	players, err := playerpool.LoadFile(file)
	if err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}

	cfg := dbconfig.NewConfigFromEnv()
	db, err := cfg.Open(ctx)
	if err != nil {
		return err
	}
	err = postgres.New(db).Migrate(ctx)
	db.Close()
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	query := insertPlayer
	if update {
		query = upsertPlayer
	}
	total, written, skipped, errs := len(players), 0, 0, 0
	for _, p := range players {
		tag, err := pool.Exec(ctx, query,
			p.ID, p.Name, string(p.Position), p.Team, p.ADP, p.ProjectedPoints, p.ByeWeek,
		)
		if err != nil {
			log.Error().Err(err).Str("player_id", p.ID).Msg("insert player")
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			written++
		} else {
			skipped++
		}
	}
	log.Info().
		Int("total", total).
		Int("written", written).
		Int("skipped", skipped).
		Int("errors", errs).
		Msg("players seeded")
	return nil
}

func createRoom(ctx context.Context, name string, settings models.DraftSettings) error {
	db, err := dbconfig.NewConfigFromEnv().Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	seats := make([]models.Participant, settings.TeamCount)
	for i := range seats {
		seats[i] = models.Participant{ID: uuid.New(), DisplayName: fmt.Sprintf("Team %d", i+1), DraftPosition: i}
	}
	room, err := postgres.New(db).CreateRoom(ctx, models.Room{
		Name:         name,
		Settings:     settings,
		Participants: seats,
	})
	if err != nil {
		return err
	}

	fmt.Printf("ROOM_ID=%s\n", room.ID)
	for _, p := range room.Participants {
		fmt.Printf("# %s (slot %d): PARTICIPANT_ID=%s\n", p.DisplayName, p.DraftPosition, p.ID)
	}
	return nil
}
