// Package config loads application settings from a TOML file, a .env file
// and environment variables, in that order of increasing precedence. Command
// line flags are applied on top by the caller.
//
// Example tilematch.toml:
//
//	[server]
//	port = 9090
//	read_timeout = "10s"
//
//	[puzzles]
//	dir = "./puzzles"
//	default = "corner"
//
//	[sessions]
//	max_age = "12h"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/layout"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "tilematch.toml"

// Duration decodes TOML strings such as "90s" or "1h30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Server struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Addr returns host:port.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Puzzles struct {
	// Dir is a directory of puzzle documents. Empty means the bundled set.
	Dir     string `toml:"dir"`
	Default string `toml:"default"`
}

type Layout struct {
	ViewportHeight   float64    `toml:"viewport_height"`
	TileSide         float64    `toml:"tile_side"`
	Margin           float64    `toml:"margin"`
	ShapeGap         float64    `toml:"shape_gap"`
	ColumnGap        float64    `toml:"column_gap"`
	BottomMargin     float64    `toml:"bottom_margin"`
	BackgroundAnchor [2]float64 `toml:"background_anchor"`
}

// Options converts the settings into layout options.
func (l Layout) Options() layout.Options {
	return layout.Options{
		TileSide:         l.TileSide,
		Margin:           l.Margin,
		ShapeGap:         l.ShapeGap,
		ColumnGap:        l.ColumnGap,
		BottomMargin:     l.BottomMargin,
		BackgroundAnchor: geom.V(l.BackgroundAnchor[0], l.BackgroundAnchor[1]),
	}
}

type Solver struct {
	HintNodes int `toml:"hint_nodes"`
}

type Sessions struct {
	MaxAge          Duration `toml:"max_age"`
	CleanupInterval Duration `toml:"cleanup_interval"`
}

type Ngrok struct {
	Enabled   bool   `toml:"enabled"`
	AuthToken string `toml:"auth_token"`
	Domain    string `toml:"domain"`
}

// Config is the full application configuration.
type Config struct {
	Debug    bool     `toml:"debug"`
	Server   Server   `toml:"server"`
	Puzzles  Puzzles  `toml:"puzzles"`
	Layout   Layout   `toml:"layout"`
	Solver   Solver   `toml:"solver"`
	Sessions Sessions `toml:"sessions"`
	Ngrok    Ngrok    `toml:"ngrok"`
}

// Default returns the built-in settings.
func Default() *Config {
	lo := layout.DefaultOptions()
	return &Config{
		Server: Server{
			Host:         "localhost",
			Port:         8080,
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{15 * time.Second},
		},
		Layout: Layout{
			ViewportHeight:   720,
			TileSide:         lo.TileSide,
			Margin:           lo.Margin,
			ShapeGap:         lo.ShapeGap,
			ColumnGap:        lo.ColumnGap,
			BottomMargin:     lo.BottomMargin,
			BackgroundAnchor: [2]float64{lo.BackgroundAnchor.X, lo.BackgroundAnchor.Y},
		},
		Solver: Solver{HintNodes: 200000},
		Sessions: Sessions{
			MaxAge:          Duration{24 * time.Hour},
			CleanupInterval: Duration{time.Hour},
		},
	}
}

// Load builds the configuration. An explicit path must exist; with an empty
// path DefaultFile is used when present. A .env file in the working directory
// is loaded into the process environment before overrides are applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.decodeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings from environment variables looked up with lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	var errs []error
	num := func(dst *float64, key string) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	str(&c.Server.Host, "TILEMATCH_HOST")
	if v, ok := lookup("TILEMATCH_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TILEMATCH_PORT: %w", err))
		} else {
			c.Server.Port = port
		}
	}
	str(&c.Puzzles.Dir, "PUZZLE_DIR")
	str(&c.Puzzles.Default, "DEFAULT_PUZZLE")
	num(&c.Layout.ViewportHeight, "VIEWPORT_HEIGHT")
	num(&c.Layout.TileSide, "TILE_SIDE")

	if v, ok := lookup("NGROK_ENABLED"); ok {
		c.Ngrok.Enabled = v == "true" || v == "1"
	}
	str(&c.Ngrok.AuthToken, "NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")
	str(&c.Ngrok.Domain, "NGROK_DOMAIN")

	if v, ok := lookup("TILEMATCH_DEBUG"); ok {
		c.Debug = v == "true" || v == "1"
	}
	return errors.Join(errs...)
}

// Validate checks values that would make the server unusable.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	case c.Layout.ViewportHeight <= 0:
		return fmt.Errorf("viewport height must be positive, got %g", c.Layout.ViewportHeight)
	case c.Layout.TileSide <= 0:
		return fmt.Errorf("tile side must be positive, got %g", c.Layout.TileSide)
	case c.Sessions.CleanupInterval.Duration <= 0:
		return errors.New("session cleanup interval must be positive")
	}
	return nil
}
