// Command draftclient runs the draft engine for one participant and serves
// its UI gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/snakedraft/go/internal/config"
	"github.com/mcdev12/snakedraft/go/internal/draft/engine"
	"github.com/mcdev12/snakedraft/go/internal/draft/events"
	"github.com/mcdev12/snakedraft/go/internal/draft/gateway"
	"github.com/mcdev12/snakedraft/go/internal/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("draftclient failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	clock := clockwork.NewRealClock()

	s, roomID, localID, cleanup, err := openStore(ctx, cfg, clock)
	if err != nil {
		return err
	}
	defer cleanup()

	connections := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	publishers := events.Fanout{connections}
	if cfg.NatsURL != "" {
		jsCfg := events.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NatsURL
		js, err := events.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer js.Close()
		publishers = append(publishers, js)
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg, clock)
	if err != nil {
		return err
	}
	defer closeLimiter()

	eng := engine.New(s, engine.Config{
		RoomID:              roomID,
		LocalParticipantID:  localID,
		Clock:               clock,
		Publisher:           publishers,
		Synchronized:        cfg.File.Timer.Synchronized,
		MaxAutopickAttempts: cfg.File.Autopick.MaxAttempts,
	})
	if err := eng.Load(ctx); err != nil {
		return fmt.Errorf("load draft: %w", err)
	}
	defer eng.Close()

	gw := gateway.NewServer(eng, limiter, connections)
	go gw.Run(ctx)
	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("timer stopped")
		}
	}()

	srv := gateway.NewHTTPServer(":"+cfg.Port, gw.Handler(), cfg.File.AllowedOrigins)
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("room_id", roomID.String()).
			Str("participant_id", localID.String()).
			Str("store", cfg.Store).
			Msg("draftclient listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLimiter(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (ratelimit.Limiter, func(), error) {
	if cfg.RedisAddr == "" {
		return ratelimit.NewLocalLimiter(cfg.File.RateLimit, clock), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return ratelimit.NewRedisLimiter(client, cfg.File.RateLimit, clock), func() { client.Close() }, nil
}
