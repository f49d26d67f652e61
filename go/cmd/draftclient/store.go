package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/snakedraft/go/internal/config"
	"github.com/mcdev12/snakedraft/go/internal/dbconfig"
	"github.com/mcdev12/snakedraft/go/internal/draft/store"
	"github.com/mcdev12/snakedraft/go/internal/draft/store/memory"
	"github.com/mcdev12/snakedraft/go/internal/draft/store/postgres"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/playerpool"
	"github.com/rs/zerolog/log"
)

// openStore returns the adapter plus the room and local participant to run.
func openStore(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (store.Store, uuid.UUID, uuid.UUID, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		return openPostgres(ctx, cfg)
	default:
		return openMemory(ctx, cfg, clock)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (store.Store, uuid.UUID, uuid.UUID, func(), error) {
	dbCfg := dbconfig.NewConfigFromEnv()
	db, err := dbCfg.Open(ctx)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, nil, err
	}
	pg := postgres.New(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, uuid.Nil, uuid.Nil, nil, err
	}

	listenCtx, cancel := context.WithCancel(ctx)
	go func() {
		if err := pg.Listen(listenCtx, postgres.DefaultListenerConfig(dbCfg.DSN())); err != nil {
			log.Error().Err(err).Msg("draft listener stopped")
		}
	}()

	log.Info().Str("database", dbCfg.Database).Msg("using postgres store")
	return pg, cfg.RoomID, cfg.ParticipantID, func() {
		cancel()
		db.Close()
	}, nil
}

// openMemory creates a local mock draft from the configured room and
// player file.
func openMemory(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (store.Store, uuid.UUID, uuid.UUID, func(), error) {
	players, err := playerpool.LoadFile(cfg.PlayersFile)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, nil, fmt.Errorf("load players from %s: %w", cfg.PlayersFile, err)
	}

	rc := cfg.File.Room
	seats := rc.Seats()
	mem := memory.New(clock)
	room, err := mem.CreateRoom(ctx, models.Room{
		Name:           rc.Name,
		Settings:       rc.Settings(),
		Participants:   seats,
		PositionLimits: rc.PositionLimits,
	}, players)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, nil, err
	}
	if rc.LocalSlot >= len(seats) {
		return nil, uuid.Nil, uuid.Nil, nil, errors.New("local slot has no seat")
	}

	log.Info().Int("players", len(players)).Int("teams", len(seats)).Msg("created local mock draft")
	return mem, room.ID, seats[rc.LocalSlot].ID, func() {}, nil
}
