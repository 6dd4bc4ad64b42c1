package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/layout"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/game/service"
	"github.com/wricardo/tilematch/game/solver"
	"github.com/wricardo/tilematch/internal/tui"
)

// errLintFailed is returned when any linted puzzle has errors.
var errLintFailed = errors.New("lint failed")

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tui.StyleDim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"}
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadDefinition reads arg as a puzzle file when it exists on disk, and as a
// catalog name otherwise. An empty arg selects the default puzzle.
func (a *app) loadDefinition(arg string) (*puzzle.PuzzleDefinition, string, error) {
	if arg != "" {
		if st, err := os.Stat(arg); err == nil && !st.IsDir() {
			data, err := os.ReadFile(arg)
			if err != nil {
				return nil, "", err
			}
			def, err := puzzle.LoadFile(arg, data)
			return def, arg, err
		}
	}

	cat, err := a.openCatalog()
	if err != nil {
		return nil, "", err
	}
	if arg == "" {
		name, err := cat.DefaultName()
		if err != nil {
			return nil, "", err
		}
		arg = name
	}
	def, err := cat.Get(arg)
	return def, arg, err
}

func (a *app) puzzlesCommand() *cli.Command {
	return &cli.Command{
		Name:  "puzzles",
		Usage: "list the puzzle catalog",
		Flags: []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cat, err := a.openCatalog()
			if err != nil {
				return err
			}
			infos := cat.List()
			if cmd.Bool("json") {
				return a.printJSON(infos)
			}

			t := newTable("#", "Name", "Title", "Format", "Shapes", "Draggable", "Tiles")
			for _, info := range infos {
				t.Row(strconv.Itoa(info.Index+1), info.Name, info.Title, info.Format,
					strconv.Itoa(info.Shapes), strconv.Itoa(info.Interactable),
					fmt.Sprintf("%d/%d", info.ForegroundTiles, info.BackgroundTiles))
			}
			fmt.Fprintln(a.out, t.Render())
			return nil
		},
	}
}

func (a *app) lintCommand() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "check puzzle documents (the whole catalog when no files are given)",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "treat warnings as errors"},
		},
		Action: a.lint,
	}
}

type lintTarget struct {
	name string
	def  *puzzle.PuzzleDefinition
	err  error
}

func (a *app) lintTargets(files []string) ([]lintTarget, error) {
	if len(files) == 0 {
		cat, err := a.openCatalog()
		if err != nil {
			return nil, err
		}
		targets := make([]lintTarget, 0, cat.Len())
		for _, name := range cat.Names() {
			def, err := cat.Get(name)
			targets = append(targets, lintTarget{name: name, def: def, err: err})
		}
		return targets, nil
	}

	targets := make([]lintTarget, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			targets = append(targets, lintTarget{name: file, err: err})
			continue
		}
		def, err := puzzle.LoadFile(file, data)
		targets = append(targets, lintTarget{name: file, def: def, err: err})
	}
	return targets, nil
}

func (a *app) lint(ctx context.Context, cmd *cli.Command) error {
	targets, err := a.lintTargets(cmd.Args().Slice())
	if err != nil {
		return err
	}
	strict := cmd.Bool("strict")

	failed := 0
	for _, target := range targets {
		if target.err != nil {
			failed++
			fmt.Fprintf(a.out, "%s %s\n    %s\n", tui.StyleError.Render("✗"), target.name, target.err)
			continue
		}

		report := puzzle.Check(target.def)
		bad := !report.OK() || (strict && len(report.Warnings) > 0)
		icon := tui.StyleSuccess.Render("✓")
		if bad {
			failed++
			icon = tui.StyleError.Render("✗")
		}
		fmt.Fprintf(a.out, "%s %s %s\n", icon, target.name,
			tui.StyleDim.Render(fmt.Sprintf("(%d shapes, %d/%d tiles)",
				report.Stats.Shapes, report.Stats.ForegroundTiles, report.Stats.BackgroundTiles)))
		for _, f := range report.Errors {
			fmt.Fprintf(a.out, "    %s\n", tui.StyleError.Render(f.String()))
		}
		for _, f := range report.Warnings {
			fmt.Fprintf(a.out, "    %s\n", tui.StyleWarning.Render(f.String()))
		}
	}

	fmt.Fprintf(a.out, "\n%d checked, %d failed\n", len(targets), failed)
	if failed > 0 {
		return errLintFailed
	}
	return nil
}

func (a *app) convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "rewrite a puzzle (ASCII art or YAML) as a YAML or JSON document",
		ArgsUsage: "<file|name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write to a file instead of stdout"},
			&cli.StringFlag{Name: "format", Usage: "yaml or json", Value: "yaml"},
			&cli.StringFlag{Name: "name", Usage: "override the puzzle name"},
		},
		Action: a.convert,
	}
}

func (a *app) convert(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("convert needs exactly one puzzle file or name")
	}
	def, _, err := a.loadDefinition(cmd.Args().First())
	if err != nil {
		return err
	}
	if name := cmd.String("name"); name != "" {
		def.Name = name
	}

	var data []byte
	switch strings.ToLower(cmd.String("format")) {
	case "yaml", "yml":
		data, err = puzzle.Encode(def)
	case "json":
		data, err = json.MarshalIndent(def, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown output format %q", cmd.String("format"))
	}
	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		return os.WriteFile(out, data, 0644)
	}
	_, err = a.out.Write(data)
	return err
}

func viewportFlag() cli.Flag {
	return &cli.FloatFlag{Name: "viewport", Usage: "viewport height in pixels (default from config)"}
}

func (a *app) viewport(cmd *cli.Command) float64 {
	if cmd.IsSet("viewport") {
		return cmd.Float("viewport")
	}
	return a.cfg.Layout.ViewportHeight
}

func (a *app) layoutCommand() *cli.Command {
	return &cli.Command{
		Name:      "layout",
		Usage:     "show where each shape of a puzzle is placed",
		ArgsUsage: "[file|name]",
		Flags:     []cli.Flag{viewportFlag(), jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			def, name, err := a.loadDefinition(cmd.Args().First())
			if err != nil {
				return err
			}
			vh := a.viewport(cmd)
			if vh <= 0 {
				return service.ErrBadViewport
			}

			res := layout.Compute(def, vh, a.cfg.Layout.Options())
			if cmd.Bool("json") {
				return a.printJSON(res)
			}

			fmt.Fprintf(a.out, "%s %s\n", tui.StyleTitle.Render(name),
				tui.StyleDim.Render(fmt.Sprintf("viewport %g, tile %g, %d columns", vh, res.TileSide, res.Columns)))
			t := newTable("Shape", "Kind", "Position", "Size", "Column", "Color")
			for i, p := range res.Shapes {
				kind := "background"
				if def.Shapes[i].HasForeground() {
					kind = "draggable"
				}
				pos := p.World.String()
				if !p.Auto {
					pos += " fixed"
				}
				column := "-"
				if p.Column >= 0 {
					column = strconv.Itoa(p.Column)
				}
				t.Row(strconv.Itoa(p.ShapeID), kind, pos,
					fmt.Sprintf("%gx%g", p.Size.X, p.Size.Y), column,
					lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render(p.Color))
			}
			fmt.Fprintln(a.out, t.Render())
			return nil
		},
	}
}

func (a *app) solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "search for an arrangement that solves a puzzle",
		ArgsUsage: "[file|name]",
		Flags: []cli.Flag{
			viewportFlag(),
			jsonFlag(),
			&cli.IntFlag{Name: "max-nodes", Usage: "search budget, 0 for unlimited"},
		},
		Action: a.solve,
	}
}

func (a *app) solve(ctx context.Context, cmd *cli.Command) error {
	def, name, err := a.loadDefinition(cmd.Args().First())
	if err != nil {
		return err
	}
	p, err := engine.New(def, a.viewport(cmd), a.cfg.Layout.Options())
	if err != nil {
		return err
	}

	sol, err := solver.SolvePuzzle(ctx, p, solver.Options{MaxNodes: cmd.Int("max-nodes")})
	if err != nil {
		if errors.Is(err, solver.ErrNoSolution) || errors.Is(err, solver.ErrNodeLimit) {
			fmt.Fprintf(a.out, "%s %s: %v\n", tui.StyleError.Render("✗"), name, err)
		}
		return err
	}
	if cmd.Bool("json") {
		return a.printJSON(sol)
	}

	fmt.Fprintf(a.out, "%s %s %s\n", tui.StyleSuccess.Render("✓"), name,
		tui.StyleDim.Render(fmt.Sprintf("solved in %d nodes", sol.Nodes)))
	t := newTable("Shape", "From", "To")
	for _, m := range sol.Moves {
		from, _ := p.ShapePosition(m.Shape)
		t.Row(strconv.Itoa(m.Shape), from.String(), m.World.String())
	}
	fmt.Fprintln(a.out, t.Render())
	return nil
}

func (a *app) playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play a puzzle in the terminal",
		ArgsUsage: "[name]",
		Flags:     []cli.Flag{viewportFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, _, err := a.newService()
			if err != nil {
				return err
			}
			info, err := svc.CreateSession(ctx, cmd.Args().First(), a.viewport(cmd))
			if err != nil {
				return err
			}
			if info.FellBack {
				a.logger.Warn("puzzle not found, using the default", "requested", cmd.Args().First(), "puzzle", info.Puzzle)
			}
			return tui.Run(ctx, svc, info.ID)
		},
	}
}
