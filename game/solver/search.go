package solver

import (
	"context"
	"sort"

	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
)

type candidate struct {
	world geom.Vec2
	cells []geom.Cell // target cells covered by the shape's foreground tiles
}

type piece struct {
	shape      int
	fgTiles    int
	candidates []candidate
}

type search struct {
	p       *engine.Puzzle
	opts    Options
	side    float64
	targets map[geom.Cell]geom.Vec2 // cell -> world position of a target tile on it
	pieces  []piece
	cover   map[geom.Cell]int
	chosen  []int
	nodes   int
}

func newSearch(p *engine.Puzzle, opts Options) *search {
	s := &search{
		p:       p,
		opts:    opts,
		side:    p.TileSide(),
		targets: make(map[geom.Cell]geom.Vec2),
		cover:   make(map[geom.Cell]int),
	}

	shapes := p.Shapes()
	for _, sh := range shapes {
		if sh.Draggable {
			continue
		}
		for _, t := range sh.Tiles {
			if t.Type != puzzle.Background {
				continue
			}
			world := sh.Current.Add(t.Local.World(s.side))
			cell := world.Cell(s.side)
			if _, ok := s.targets[cell]; !ok {
				s.targets[cell] = world
			}
		}
	}

	for _, sh := range shapes {
		if !sh.Draggable {
			continue
		}
		s.pieces = append(s.pieces, s.buildPiece(sh))
	}

	// fewest options first, larger pieces break ties
	sort.SliceStable(s.pieces, func(i, j int) bool {
		a, b := s.pieces[i], s.pieces[j]
		if len(a.candidates) != len(b.candidates) {
			return len(a.candidates) < len(b.candidates)
		}
		return a.fgTiles > b.fgTiles
	})
	s.chosen = make([]int, len(s.pieces))
	return s
}

// buildPiece enumerates translations that put every foreground tile of sh on
// a target cell. The shape's current position, when it qualifies, comes first.
func (s *search) buildPiece(sh engine.Shape) piece {
	var fg []geom.Position
	for _, t := range sh.Tiles {
		if t.Type == puzzle.Foreground {
			fg = append(fg, t.Local)
		}
	}
	pc := piece{shape: sh.ID, fgTiles: len(fg)}
	if len(fg) == 0 {
		return pc
	}

	anchor := fg[0].World(s.side)
	seen := make(map[geom.Vec2]bool)
	cells := make([]geom.Cell, 0, len(s.targets))
	for cell := range s.targets {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})

	for _, cell := range cells {
		world := s.targets[cell].Sub(anchor)
		if seen[world] {
			continue
		}
		seen[world] = true
		if c, ok := s.fit(world, fg); ok {
			if world == sh.Current {
				pc.candidates = append([]candidate{c}, pc.candidates...)
			} else {
				pc.candidates = append(pc.candidates, c)
			}
		}
	}
	return pc
}

func (s *search) fit(world geom.Vec2, fg []geom.Position) (candidate, bool) {
	c := candidate{world: world, cells: make([]geom.Cell, 0, len(fg))}
	for _, local := range fg {
		cell := world.Add(local.World(s.side)).Cell(s.side)
		if _, ok := s.targets[cell]; !ok {
			return candidate{}, false
		}
		c.cells = append(c.cells, cell)
	}
	return c, true
}

// capacity is the number of foreground tiles in pieces from index i on.
func (s *search) capacity(i int) int {
	n := 0
	for _, pc := range s.pieces[i:] {
		n += pc.fgTiles
	}
	return n
}

func (s *search) uncovered() int {
	n := 0
	for cell := range s.targets {
		if s.cover[cell] == 0 {
			n++
		}
	}
	return n
}

func (s *search) place(ctx context.Context, i int) (bool, error) {
	s.nodes++
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.opts.MaxNodes > 0 && s.nodes > s.opts.MaxNodes {
		return false, ErrNodeLimit
	}

	if i == len(s.pieces) {
		return s.uncovered() == 0 && s.verify(), nil
	}
	if s.uncovered() > s.capacity(i) {
		return false, nil
	}

	for ci, c := range s.pieces[i].candidates {
		for _, cell := range c.cells {
			s.cover[cell]++
		}
		s.chosen[i] = ci

		ok, err := s.place(ctx, i+1)
		if err != nil || ok {
			return ok, err
		}

		for _, cell := range c.cells {
			s.cover[cell]--
		}
	}
	return false, nil
}

// verify runs the engine's validation against the chosen positions, which
// also covers background tiles carried by draggable shapes.
func (s *search) verify() bool {
	positions := make(map[int]geom.Vec2, len(s.pieces))
	for i, pc := range s.pieces {
		positions[pc.shape] = pc.candidates[s.chosen[i]].world
	}
	return engine.Validate(overlay{Puzzle: s.p, positions: positions})
}

// overlay reads p with some shape positions replaced.
type overlay struct {
	*engine.Puzzle
	positions map[int]geom.Vec2
}

func (o overlay) ShapePosition(i int) (geom.Vec2, bool) {
	if pos, ok := o.positions[i]; ok {
		return pos, true
	}
	return o.Puzzle.ShapePosition(i)
}
