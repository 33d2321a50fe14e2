package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/yspahan/internal/testutil"
)

func reset() {
	cfg = nil
	v = nil
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
game:
  players: 3
  seed: 42
  seats: [builder, "", easy]
robot:
  variant: easy
  move_delay: 250
server:
  grpc_server:
    port: 8080
  web:
    enabled: true
    addr: ":9000"
store:
  enabled: true
  path: /tmp/games.db
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	reset()
	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, 3, c.Game.Players)
	assert.Equal(t, int64(42), c.Game.Seed)
	assert.Equal(t, "easy", c.Robot.Variant)
	assert.Equal(t, 250, c.Robot.MoveDelay)
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.True(t, c.Server.Web.Enabled)
	assert.Equal(t, ":9000", c.Server.Web.Addr)
	assert.True(t, c.Store.Enabled)
	assert.Equal(t, "/tmp/games.db", c.Store.Path)
	assert.Equal(t, configFile, ConfigFilePath())

	assert.Equal(t, "builder", c.SeatVariant(0))
	assert.Equal(t, "easy", c.SeatVariant(1))
	assert.Equal(t, "easy", c.SeatVariant(2))
	assert.Equal(t, "Yspahan 7 3", c.InitToken(7))
}

func TestInitWithDefaults(t *testing.T) {
	reset()
	require.NoError(t, Init("/non/existent/path/config.yaml"))

	c := Get()
	assert.Equal(t, 2, c.Game.Players)
	assert.Equal(t, "standard", c.Robot.Variant)
	assert.Equal(t, 50051, c.Server.GRPCServer.Port)
	assert.Equal(t, 100, c.Server.GRPCServer.MaxGames)
	assert.False(t, c.Store.Enabled)
	assert.Equal(t, "standard", c.SeatVariant(1))
}

func TestInitRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("game:\n  players: 5\n"), 0644))

	reset()
	err := Init(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game.players")
}

func TestEnvironmentVariables(t *testing.T) {
	reset()
	t.Setenv("YSP_GAME_PLAYERS", "4")
	t.Setenv("YSP_SERVER_GRPC_SERVER_PORT", "9090")

	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, 4, c.Game.Players)
	assert.Equal(t, 9090, c.Server.GRPCServer.Port)
}

func TestSet(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	Set("robot.variant", "builder")
	Set("game.revision", 2)

	c := Get()
	assert.Equal(t, "builder", c.Robot.Variant)
	assert.Equal(t, "Yspahan 1 2 2", c.InitToken(1))
}

func TestGetHelpers(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	Set("test.string", "hello")
	Set("test.int", 42)
	Set("test.bool", true)

	assert.Equal(t, "hello", GetString("test.string"))
	assert.Equal(t, 42, GetInt("test.int"))
	assert.Equal(t, true, GetBool("test.bool"))
	assert.NotNil(t, GetViper())
}

func TestValidate(t *testing.T) {
	reset()
	require.NoError(t, Init(""))
	base := *Get()

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"too few players", func(c *Config) { c.Game.Players = 1 }},
		{"too many seats", func(c *Config) { c.Game.Seats = []string{"easy", "easy", "easy"} }},
		{"no variant", func(c *Config) { c.Robot.Variant = "" }},
		{"negative delay", func(c *Config) { c.Robot.MoveDelay = -1 }},
		{"bad port", func(c *Config) { c.Server.GRPCServer.Port = 70000 }},
		{"no games", func(c *Config) { c.Server.GRPCServer.MaxGames = 0 }},
		{"web without addr", func(c *Config) { c.Server.Web.Enabled = true; c.Server.Web.Addr = "" }},
		{"store without path", func(c *Config) { c.Store.Enabled = true; c.Store.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			c.Game.Seats = nil
			tt.mutate(&c)
			assert.Error(t, Validate(&c))
		})
	}
	assert.NoError(t, Validate(&base))
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	baseContent := `
game:
  players: 2
server:
  grpc_server:
    port: 50051
`
	require.NoError(t, os.WriteFile(baseConfig, []byte(baseContent), 0644))

	envConfig := filepath.Join(tmpDir, "config.prod.yaml")
	envContent := `
game:
  players: 4
server:
  grpc_server:
    port: 8080
    log_level: "error"
`
	require.NoError(t, os.WriteFile(envConfig, []byte(envContent), 0644))

	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	reset()
	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))

	c := Get()
	assert.Equal(t, 4, c.Game.Players)
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, "error", c.Server.GRPCServer.LogLevel)
}

func TestWatchConfigReloads(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("robot:\n  variant: easy\n"), 0644))

	reset()
	require.NoError(t, Init(configFile))

	changed := make(chan struct{}, 4)
	WatchConfig(func() { changed <- struct{}{} })
	require.NoError(t, os.WriteFile(configFile, []byte("robot:\n  variant: builder\n"), 0644))

	select {
	case <-changed:
		assert.Equal(t, "builder", Get().Robot.Variant)
	case <-time.After(5 * time.Second):
		t.Skip("no file change notification on this platform")
	}
}

func TestGetViperBeforeInit(t *testing.T) {
	reset()
	testutil.AssertPanic(t, func() { GetViper() })
}
