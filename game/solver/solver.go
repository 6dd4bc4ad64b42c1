package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/layout"
	"github.com/wricardo/tilematch/game/puzzle"
)

var (
	// ErrNoSolution is returned when no placement satisfies every tile
	ErrNoSolution = errors.New("puzzle has no solution")

	// ErrNodeLimit is returned when the search gives up before finishing
	ErrNodeLimit = errors.New("search node limit reached")
)

// DefaultViewportHeight is used by Solve to lay out a bare definition.
const DefaultViewportHeight = 720

// Move places one draggable shape.
type Move struct {
	Shape int       `json:"shape"`
	World geom.Vec2 `json:"world"`
}

// Solution lists a position for every draggable shape.
type Solution struct {
	Moves []Move `json:"moves"`
	Nodes int    `json:"nodes"`
}

// Options bounds the search. Zero values mean no limit.
type Options struct {
	MaxNodes int
}

// Solve lays out def with the default options and searches for a solution.
func Solve(ctx context.Context, def *puzzle.PuzzleDefinition) (*Solution, error) {
	p, err := engine.New(def, DefaultViewportHeight, layout.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return SolvePuzzle(ctx, p, Options{})
}

// SolvePuzzle searches for translations of the draggable shapes of p that
// make it valid. Shapes that cannot be dragged stay where they are, and their
// background tiles are the only targets a foreground tile may land on. p is
// not modified. The search honors ctx cancellation.
func SolvePuzzle(ctx context.Context, p *engine.Puzzle, opts Options) (*Solution, error) {
	s := newSearch(p, opts)

	for _, piece := range s.pieces {
		if len(piece.candidates) == 0 {
			return nil, fmt.Errorf("%w: shape %d fits nowhere on the target", ErrNoSolution, piece.shape)
		}
	}
	if len(s.targets) > s.capacity(0) {
		return nil, fmt.Errorf("%w: %d foreground tiles cannot cover %d target cells",
			ErrNoSolution, s.capacity(0), len(s.targets))
	}

	ok, err := s.place(ctx, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSolution, p.Name())
	}

	sol := &Solution{Moves: make([]Move, 0, len(s.pieces)), Nodes: s.nodes}
	for i, piece := range s.pieces {
		sol.Moves = append(sol.Moves, Move{Shape: piece.shape, World: piece.candidates[s.chosen[i]].world})
	}
	sort.Slice(sol.Moves, func(i, j int) bool { return sol.Moves[i].Shape < sol.Moves[j].Shape })
	return sol, nil
}

// Hint returns the first move of a solution that changes the current board,
// or false when every shape is already in place.
func Hint(ctx context.Context, p *engine.Puzzle) (Move, bool, error) {
	sol, err := SolvePuzzle(ctx, p, Options{})
	if err != nil {
		return Move{}, false, err
	}
	for _, m := range sol.Moves {
		if pos, ok := p.ShapePosition(m.Shape); ok && pos != m.World {
			return m, true, nil
		}
	}
	return Move{}, false, nil
}
