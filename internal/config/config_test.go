package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/tilematch/game/geom"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, 720.0, cfg.Layout.ViewportHeight)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.MaxAge.Duration)

	opts := cfg.Layout.Options()
	assert.Equal(t, 100.0, opts.TileSide)
	assert.Equal(t, geom.V(900, 50), opts.BackgroundAnchor)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "custom.toml", `
debug = true

[server]
port = 9090
read_timeout = "3s"

[puzzles]
dir = "/srv/puzzles"
default = "corner"

[layout]
tile_side = 50.0
background_anchor = [600.0, 20.0]

[sessions]
max_age = "90m"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, "/srv/puzzles", cfg.Puzzles.Dir)
	assert.Equal(t, "corner", cfg.Puzzles.Default)
	assert.Equal(t, 50.0, cfg.Layout.Options().TileSide)
	assert.Equal(t, geom.V(600, 20), cfg.Layout.Options().BackgroundAnchor)
	assert.Equal(t, 90*time.Minute, cfg.Sessions.MaxAge.Duration)
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err, "a missing default file is not an error")
	assert.Equal(t, 8080, cfg.Server.Port)

	writeFile(t, dir, DefaultFile, "[server]\nport = 7000\n")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err, "an explicit path must exist")

	bad := writeFile(t, dir, "unknown.toml", "[server]\nprot = 1\n")
	_, err = Load(bad)
	assert.ErrorContains(t, err, "server.prot")

	dur := writeFile(t, dir, "duration.toml", "[sessions]\nmax_age = \"soon\"\n")
	_, err = Load(dur)
	assert.Error(t, err)

	zero := writeFile(t, dir, "zero.toml", "[layout]\nviewport_height = -1.0\n")
	_, err = Load(zero)
	assert.ErrorContains(t, err, "viewport height")
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv never overrides variables that are already set
	t.Setenv("DEFAULT_PUZZLE", "")
	require.NoError(t, os.Unsetenv("DEFAULT_PUZZLE"))
	writeFile(t, dir, ".env", "DEFAULT_PUZZLE=stairs\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stairs", cfg.Puzzles.Default)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"TILEMATCH_HOST":   "0.0.0.0",
		"TILEMATCH_PORT":   "9000",
		"PUZZLE_DIR":       "./mine",
		"VIEWPORT_HEIGHT":  "480",
		"NGROK_ENABLED":    "1",
		"NGROK_AUTH_TOKEN": "secret",
		"NGROK_DOMAIN":     "play.example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
	assert.Equal(t, "./mine", cfg.Puzzles.Dir)
	assert.Equal(t, 480.0, cfg.Layout.ViewportHeight)
	assert.True(t, cfg.Ngrok.Enabled)
	assert.Equal(t, "secret", cfg.Ngrok.AuthToken)
	assert.Equal(t, "play.example.com", cfg.Ngrok.Domain)

	t.Run("preferred token name", func(t *testing.T) {
		cfg := Default()
		require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
			"NGROK_AUTHTOKEN":  "first",
			"NGROK_AUTH_TOKEN": "second",
		})))
		assert.Equal(t, "first", cfg.Ngrok.AuthToken)
	})

	t.Run("bad numbers", func(t *testing.T) {
		cfg := Default()
		err := cfg.ApplyEnv(envMap(map[string]string{
			"TILEMATCH_PORT":  "http",
			"VIEWPORT_HEIGHT": "tall",
		}))
		assert.ErrorContains(t, err, "TILEMATCH_PORT")
		assert.ErrorContains(t, err, "VIEWPORT_HEIGHT")
		assert.Equal(t, 8080, cfg.Server.Port)
	})
}
