package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/game/service"
)

// Cell map legend
const (
	cellEmpty     = '.'
	cellMatched   = '#'
	cellTarget    = 'o' // background only
	cellFloating  = '+' // foreground only
	maxBoardCells = 60
)

func formatPuzzleList(infos []catalog.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Puzzles (%d):\n\n", len(infos))
	for _, info := range infos {
		fmt.Fprintf(&b, "%d. %s - %s (%d shapes, %d draggable)\n",
			info.Index+1, info.Name, info.Title, info.Shapes, info.Interactable)
	}
	return b.String()
}

func formatSessionInfo(s *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", s.ID)
	fmt.Fprintf(&b, "Puzzle: %s\n", s.Puzzle)
	if s.FellBack {
		b.WriteString("(requested puzzle not found, using the default)\n")
	}
	if s.State != nil {
		b.WriteString("\n")
		b.WriteString(formatState(s.State))
	}
	return b.String()
}

func formatState(state *engine.State) string {
	if state == nil {
		return ""
	}

	var b strings.Builder
	status := "unsolved"
	if state.Valid {
		status = "SOLVED"
	}
	fmt.Fprintf(&b, "Status: %s | Tile side: %g | Snap: %g | Moves: %d\n\n",
		status, state.TileSide, state.Quantum, len(state.Moves))

	b.WriteString("Shapes:\n")
	for _, s := range state.Shapes {
		kind := "background"
		if s.Draggable {
			kind = "draggable"
		}
		fmt.Fprintf(&b, "  [%d] %s, %d tiles, at (%g, %g), size %gx%g",
			s.ID, kind, len(s.Tiles), s.Current.X, s.Current.Y, s.Size.X, s.Size.Y)
		if s.Drag.Active {
			b.WriteString(", dragging")
		}
		b.WriteString("\n")
	}

	if board := formatBoard(state); board != "" {
		b.WriteString("\nCells (# matched, o uncovered target, + tile off target):\n")
		b.WriteString(board)
	}
	return b.String()
}

// formatBoard draws cell occupancy over the extent of all tiles. It returns
// an empty string when the extent is too large to be useful.
func formatBoard(state *engine.State) string {
	if state.TileSide <= 0 {
		return ""
	}

	cells := make(map[geom.Cell]puzzle.Occupancy)
	first := true
	var lo, hi geom.Cell
	for _, s := range state.Shapes {
		for _, t := range s.Tiles {
			c := s.Current.Add(t.Local.World(state.TileSide)).Cell(state.TileSide)
			occ := cells[c]
			occ.Add(t.Type)
			cells[c] = occ
			if first {
				lo, hi, first = c, c, false
				continue
			}
			lo.X, lo.Y = min(lo.X, c.X), min(lo.Y, c.Y)
			hi.X, hi.Y = max(hi.X, c.X), max(hi.Y, c.Y)
		}
	}
	if first || hi.X-lo.X >= maxBoardCells || hi.Y-lo.Y >= maxBoardCells {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  origin cell (%d, %d)\n", lo.X, lo.Y)
	for y := lo.Y; y <= hi.Y; y++ {
		b.WriteString("  ")
		for x := lo.X; x <= hi.X; x++ {
			occ := cells[geom.Cell{X: x, Y: y}]
			switch {
			case occ.Foreground > 0 && occ.Background > 0:
				b.WriteRune(cellMatched)
			case occ.Background > 0:
				b.WriteRune(cellTarget)
			case occ.Foreground > 0:
				b.WriteRune(cellFloating)
			default:
				b.WriteRune(cellEmpty)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatValidation(res *service.ValidationResult) string {
	if res.Valid {
		return res.Message
	}

	var b strings.Builder
	b.WriteString(res.Message)
	fmt.Fprintf(&b, "\n\nUnmatched tiles (%d):\n", len(res.Unsatisfied))
	for _, u := range res.Unsatisfied {
		fmt.Fprintf(&b, "  shape %d tile %d (%s) in cell (%d, %d)\n",
			u.Ref.Shape, u.Ref.Tile, u.Type, u.Cell.X, u.Cell.Y)
	}
	return b.String()
}

func formatHistory(h *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d of %d, %d total moves):\n\n", h.Page, h.TotalPages, h.TotalMoves)
	for _, m := range h.Moves {
		fmt.Fprintf(&b, "#%d shape %d: (%g, %g) -> (%g, %g)\n",
			m.MoveNumber, m.Shape, m.From.X, m.From.Y, m.To.X, m.To.Y)
	}
	if h.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d.\n", h.Page+1)
	}
	return b.String()
}
