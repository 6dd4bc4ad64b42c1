// Command tilematch serves and plays drag-and-drop tile matching puzzles.
//
// Commands:
//  1. "serve" runs the HTTP server exposing the REST API, WebSocket events and
//     an /mcp endpoint, optionally through an ngrok tunnel
//  2. "mcp" runs an MCP stdio server, reusing a running API or starting an
//     internal one
//  3. "play" opens a puzzle in the terminal
//  4. "puzzles", "lint", "convert", "layout" and "solve" inspect puzzle documents
//
// Settings come from tilematch.toml, .env and environment variables; flags
// override them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/service"
	"github.com/wricardo/tilematch/game/session"
	"github.com/wricardo/tilematch/internal/config"
	"github.com/wricardo/tilematch/internal/logging"
	"github.com/wricardo/tilematch/puzzles"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "tilematch"
)

// app holds what every command needs once flags and config are resolved.
type app struct {
	out    io.Writer
	errOut io.Writer
	cfg    *config.Config
	logger *log.Logger
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      AppName,
		Usage:     "drag-and-drop tile matching puzzles over HTTP, MCP and the terminal",
		Version:   Version,
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file (default ./" + config.DefaultFile + " when present)",
				Sources: cli.EnvVars("TILEMATCH_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "puzzles",
				Usage: "directory of puzzle documents (default: bundled puzzles)",
			},
			&cli.StringFlag{
				Name:  "default",
				Usage: "puzzle used when a requested one does not exist",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.serveCommand(),
			a.mcpCommand(),
			a.playCommand(),
			a.puzzlesCommand(),
			a.lintCommand(),
			a.convertCommand(),
			a.layoutCommand(),
			a.solveCommand(),
		},
	}
}

// before loads configuration and the logger ahead of any command.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("debug") {
		cfg.Debug = true
	}
	if dir := cmd.String("puzzles"); dir != "" {
		cfg.Puzzles.Dir = dir
	}
	if name := cmd.String("default"); name != "" {
		cfg.Puzzles.Default = name
	}

	a.cfg = cfg
	a.logger = logging.New(a.errOut, logging.Level(cfg.Debug))
	a.logger.Debug("configuration loaded", "puzzles", cfg.Puzzles.Dir, "addr", cfg.Server.Addr())
	return logging.WithLogger(ctx, a.logger), nil
}

// openCatalog loads the configured puzzle directory, or the bundled set.
func (a *app) openCatalog() (*catalog.Catalog, error) {
	opts := catalog.Options{
		Default: a.cfg.Puzzles.Default,
		Logger:  a.logger,
	}
	if a.cfg.Puzzles.Dir != "" {
		return catalog.NewFromDir(a.cfg.Puzzles.Dir, opts)
	}
	return catalog.New(puzzles.FS, opts)
}

// newService wires the catalog, session manager and puzzle service.
func (a *app) newService() (service.PuzzleService, *session.Manager, error) {
	cat, err := a.openCatalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load puzzles: %w", err)
	}
	sessions := session.NewManager(a.logger)
	svc := service.NewPuzzleService(sessions, cat, service.Options{
		Layout:         a.cfg.Layout.Options(),
		ViewportHeight: a.cfg.Layout.ViewportHeight,
		HintNodes:      a.cfg.Solver.HintNodes,
		Logger:         a.logger,
	})
	return svc, sessions, nil
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
