// Package config assembles draftclient settings from the environment, an
// optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/mcdev12/snakedraft/go/internal/ratelimit"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Port          string
	LogLevel      string
	Store         string
	RoomID        uuid.UUID // required for postgres
	ParticipantID uuid.UUID // required for postgres
	NatsURL       string    // empty disables event publishing
	RedisAddr     string    // empty keeps rate limits in process
	PlayersFile   string    // pool for the memory store

	File FileConfig
}

// FileConfig is the YAML part of the configuration.
type FileConfig struct {
	Timer struct {
		Synchronized bool `yaml:"synchronized"`
	} `yaml:"timer"`
	Autopick struct {
		MaxAttempts int `yaml:"max_attempts"`
	} `yaml:"autopick"`
	RateLimit      ratelimit.Config `yaml:"rate_limit"`
	AllowedOrigins []string         `yaml:"allowed_origins"`
	Room           RoomConfig       `yaml:"room"`
}

// RoomConfig describes the room the memory store creates.
type RoomConfig struct {
	Name               string                `yaml:"name"`
	TeamCount          int                   `yaml:"team_count"`
	Rounds             int                   `yaml:"rounds"`
	PickTimeSeconds    int                   `yaml:"pick_time_seconds"`
	GracePeriodSeconds int                   `yaml:"grace_period_seconds"`
	PositionLimits     models.PositionLimits `yaml:"position_limits"`
	Participants       []string              `yaml:"participants"` // display names in draft order
	LocalSlot          int                   `yaml:"local_slot"`
}

func defaultFileConfig() FileConfig {
	var f FileConfig
	f.RateLimit = ratelimit.DefaultConfig()
	d := models.DefaultDraftSettings()
	f.Room = RoomConfig{
		Name:               "mock draft",
		TeamCount:          d.TeamCount,
		Rounds:             d.Rounds,
		PickTimeSeconds:    d.PickTimeSeconds,
		GracePeriodSeconds: d.GracePeriodSeconds,
	}
	return f
}

// Load reads .env (if present), the environment, then CONFIG_FILE
// (default draftclient.yaml, skipped when missing).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Store:       getEnv("DRAFT_STORE", StoreMemory),
		NatsURL:     os.Getenv("NATS_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		PlayersFile: getEnv("PLAYERS_FILE", "players.csv"),
		File:        defaultFileConfig(),
	}

	var err error
	if cfg.RoomID, err = getEnvAsUUID("ROOM_ID"); err != nil {
		return nil, err
	}
	if cfg.ParticipantID, err = getEnvAsUUID("PARTICIPANT_ID"); err != nil {
		return nil, err
	}

	path := getEnv("CONFIG_FILE", "draftclient.yaml")
	if err := loadFile(path, &cfg.File); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("no config file, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, out *FileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
		if n := len(c.File.Room.Participants); n > 0 && n != c.File.Room.TeamCount {
			return fmt.Errorf("room has %d participants for %d teams", n, c.File.Room.TeamCount)
		}
		if c.File.Room.LocalSlot < 0 || c.File.Room.LocalSlot >= c.File.Room.TeamCount {
			return fmt.Errorf("local_slot %d outside 0..%d", c.File.Room.LocalSlot, c.File.Room.TeamCount-1)
		}
	case StorePostgres:
		if c.RoomID == uuid.Nil || c.ParticipantID == uuid.Nil {
			return errors.New("ROOM_ID and PARTICIPANT_ID are required with the postgres store")
		}
	default:
		return fmt.Errorf("unknown DRAFT_STORE %q", c.Store)
	}
	for pos := range c.File.Room.PositionLimits {
		if !pos.Valid() {
			return fmt.Errorf("unknown position %q in position_limits", pos)
		}
	}
	return nil
}

// Settings returns the memory room's draft settings
func (r RoomConfig) Settings() models.DraftSettings {
	return models.DraftSettings{
		TeamCount:          r.TeamCount,
		Rounds:             r.Rounds,
		PickTimeSeconds:    r.PickTimeSeconds,
		GracePeriodSeconds: r.GracePeriodSeconds,
	}
}

// Seats builds participants for the memory room, naming empty seats by slot
func (r RoomConfig) Seats() []models.Participant {
	out := make([]models.Participant, r.TeamCount)
	for i := range out {
		name := fmt.Sprintf("Team %d", i+1)
		if i < len(r.Participants) && r.Participants[i] != "" {
			name = r.Participants[i]
		}
		out[i] = models.Participant{ID: uuid.New(), DisplayName: name, DraftPosition: i}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsUUID(key string) (uuid.UUID, error) {
	value := os.Getenv(key)
	if value == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", key, err)
	}
	return id, nil
}
