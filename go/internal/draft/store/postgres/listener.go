package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL          string // Postgres DSN for LISTEN/NOTIFY
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
	PingInterval         time.Duration
}

func DefaultListenerConfig(dsn string) ListenerConfig {
	return ListenerConfig{
		DatabaseURL:          dsn,
		MinReconnectInterval: 10 * time.Second,
		MaxReconnectInterval: time.Minute,
		PingInterval:         90 * time.Second,
	}
}

type listener struct {
	l   *pq.Listener
	cfg ListenerConfig
}

func newListener(cfg ListenerConfig) (*listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		cfg.MinReconnectInterval,
		cfg.MaxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	for _, ch := range []string{roomsChannel, picksChannel} {
		if err := l.Listen(ch); err != nil {
			l.Close()
			return nil, fmt.Errorf("listen on %s: %w", ch, err)
		}
	}
	return &listener{l: l, cfg: cfg}, nil
}

func (l *listener) run(ctx context.Context, handle func(ctx context.Context, channel, payload string) error, resync func(ctx context.Context)) error {
	ping := time.NewTicker(l.cfg.PingInterval)
	defer ping.Stop()
	defer l.l.Close()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("draft listener shutting down")
			return nil
		case note := <-l.l.Notify:
			if note == nil {
				// connection was re-established; notifications may have been missed
				resync(ctx)
				continue
			}
			if err := handle(ctx, note.Channel, note.Extra); err != nil {
				log.Error().
					Err(err).
					Str("channel", note.Channel).
					Str("payload", note.Extra).
					Msg("failed to handle notification")
			}
		case <-ping.C:
			if err := l.l.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}
