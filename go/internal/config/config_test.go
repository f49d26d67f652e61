package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DRAFT_STORE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 12, cfg.File.Room.TeamCount)
	assert.Equal(t, 5, cfg.File.RateLimit.Limit)
	assert.Equal(t, time.Second, cfg.File.RateLimit.Window)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draftclient.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timer:
  synchronized: true
autopick:
  max_attempts: 5
rate_limit:
  limit: 2
  window: 500ms
allowed_origins: ["http://localhost:5173"]
room:
  name: home league
  team_count: 2
  rounds: 3
  pick_time_seconds: 45
  grace_period_seconds: 2
  position_limits: {QB: 1, TE: 1}
  participants: [me, you]
  local_slot: 1
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DRAFT_STORE", StoreMemory)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.File.Timer.Synchronized)
	assert.Equal(t, 5, cfg.File.Autopick.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.File.RateLimit.Window)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.File.AllowedOrigins)
	assert.Equal(t, models.PositionLimits{models.PositionQB: 1, models.PositionTE: 1}, cfg.File.Room.PositionLimits)

	settings := cfg.File.Room.Settings()
	assert.NoError(t, settings.Validate())
	assert.Equal(t, 45, settings.PickTimeSeconds)

	seats := cfg.File.Room.Seats()
	require.Len(t, seats, 2)
	assert.Equal(t, "you", seats[1].DisplayName)
	assert.Equal(t, 1, seats[1].DraftPosition)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Store: StoreMemory, File: defaultFileConfig()}
	}

	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{name: "defaults", modify: func(*Config) {}, ok: true},
		{name: "unknown store", modify: func(c *Config) { c.Store = "sqlite" }},
		{name: "postgres without ids", modify: func(c *Config) { c.Store = StorePostgres }},
		{name: "postgres with ids", modify: func(c *Config) {
			c.Store = StorePostgres
			c.RoomID, c.ParticipantID = uuid.New(), uuid.New()
		}, ok: true},
		{name: "seat count mismatch", modify: func(c *Config) { c.File.Room.Participants = []string{"a"} }},
		{name: "local slot out of range", modify: func(c *Config) { c.File.Room.LocalSlot = 12 }},
		{name: "unknown position", modify: func(c *Config) { c.File.Room.PositionLimits = models.PositionLimits{"K": 1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.modify(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestBadUUID(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ROOM_ID", "not-a-uuid")
	_, err := Load()
	assert.Error(t, err)
}
