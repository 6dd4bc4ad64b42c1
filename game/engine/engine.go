package engine

import (
	"fmt"
	"time"

	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/layout"
	"github.com/wricardo/tilematch/game/puzzle"
)

// Engine provides the main interface for operating on a displayed puzzle
type Engine interface {
	// Puzzle information
	Name() string
	Definition() *puzzle.PuzzleDefinition
	TileSide() float64
	Quantum() float64

	// Shape access
	ShapeCount() int
	Shape(id int) (Shape, bool)
	Shapes() []Shape
	ShapeAt(pointer geom.Vec2) (int, bool)
	TileWorld(ref TileRef) (geom.Vec2, bool)

	// Drag interaction
	Press(id int, pointer geom.Vec2) bool
	Update(pointer geom.Vec2)
	Release(id int, pointer geom.Vec2) bool
	ReleaseAll(pointer geom.Vec2) []int
	Dragging() []int

	// Direct placement
	MoveShape(id int, world geom.Vec2) error
	Reset()

	// Validation
	Validate() bool
	Diagnose() []Unsatisfied

	// History and snapshots
	GetMoveHistory() []MoveHistoryEntry
	State() *State
}

// Puzzle is a runtime puzzle instance. It owns the arena of shapes, each of
// which owns its tiles. A Puzzle is not safe for concurrent use; callers
// serialize access the way a single update loop would.
type Puzzle struct {
	def     *puzzle.PuzzleDefinition
	side    float64
	quantum float64
	shapes  []Shape
	history []MoveHistoryEntry
	clock   func() time.Time
}

// New resolves def, lays it out for the viewport height and returns the
// instance. Definitions that fail puzzle.Check are rejected.
func New(def *puzzle.PuzzleDefinition, viewportHeight float64, opts layout.Options) (*Puzzle, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	if report := puzzle.Check(def); !report.OK() {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidDefinition, def.Name, report.Errors[0])
	}

	res := layout.Compute(def, viewportHeight, opts)
	p := &Puzzle{
		def:     def,
		side:    res.TileSide,
		quantum: res.TileSide / 10,
		shapes:  make([]Shape, len(def.Shapes)),
		clock:   time.Now,
	}

	for i, sd := range def.Shapes {
		resolved := sd.Resolved()
		tiles := make([]Tile, len(resolved))
		draggable := false
		for j, t := range resolved {
			tiles[j] = Tile{Local: t.Pos, Type: t.Type}
			if t.Type == puzzle.Foreground {
				draggable = true
			}
		}

		place := res.Shapes[i]
		p.shapes[i] = Shape{
			ID:        i,
			Draggable: draggable,
			Color:     place.Color,
			Size:      place.Size,
			Auto:      place.Auto,
			Home:      place.World,
			Rest:      place.World,
			Current:   place.World,
			Tiles:     tiles,
		}
	}
	return p, nil
}

// Name returns the puzzle name
func (p *Puzzle) Name() string {
	return p.def.Name
}

// Definition returns the definition the instance was built from
func (p *Puzzle) Definition() *puzzle.PuzzleDefinition {
	return p.def
}

// TileSide returns the world size of one tile
func (p *Puzzle) TileSide() float64 {
	return p.side
}

// Quantum returns the drag snapping unit
func (p *Puzzle) Quantum() float64 {
	return p.quantum
}

// ShapeCount returns the number of shapes
func (p *Puzzle) ShapeCount() int {
	return len(p.shapes)
}

// Shape returns a copy of shape id
func (p *Puzzle) Shape(id int) (Shape, bool) {
	if id < 0 || id >= len(p.shapes) {
		return Shape{}, false
	}
	s := p.shapes[id]
	s.Tiles = append([]Tile(nil), s.Tiles...)
	return s, true
}

// Shapes returns copies of every shape in definition order
func (p *Puzzle) Shapes() []Shape {
	out := make([]Shape, len(p.shapes))
	for i := range p.shapes {
		out[i], _ = p.Shape(i)
	}
	return out
}

// ShapePosition returns the displayed position of shape i
func (p *Puzzle) ShapePosition(i int) (geom.Vec2, bool) {
	if i < 0 || i >= len(p.shapes) {
		return geom.Vec2{}, false
	}
	return p.shapes[i].Current, true
}

// ShapeTiles returns the tiles of shape i
func (p *Puzzle) ShapeTiles(i int) ([]Tile, bool) {
	if i < 0 || i >= len(p.shapes) {
		return nil, false
	}
	return p.shapes[i].Tiles, true
}

// TileWorld resolves a tile's world position through its owning shape
func (p *Puzzle) TileWorld(ref TileRef) (geom.Vec2, bool) {
	return tileWorld(p, ref)
}

// MoveShape commits a shape to a world position, snapped to the quantum.
// A shape that is being dragged is released at the new position.
func (p *Puzzle) MoveShape(id int, world geom.Vec2) error {
	if id < 0 || id >= len(p.shapes) {
		return fmt.Errorf("%w: %d", ErrShapeNotFound, id)
	}
	s := &p.shapes[id]
	if !s.Draggable {
		return fmt.Errorf("%w: %d", ErrNotDraggable, id)
	}

	s.Drag = DragState{}
	p.commit(s, world.Snapped(p.quantum))
	return nil
}

// Reset returns every shape to its layout position and clears drags.
// Move history is kept.
func (p *Puzzle) Reset() {
	for i := range p.shapes {
		s := &p.shapes[i]
		s.Drag = DragState{}
		s.Rest = s.Home
		s.Current = s.Home
	}
}

// Validate reports whether every tile is matched by an opposite tile
func (p *Puzzle) Validate() bool {
	return Validate(p)
}

// Diagnose lists tiles that are currently unmatched
func (p *Puzzle) Diagnose() []Unsatisfied {
	out, _ := Diagnose(p)
	return out
}

// GetMoveHistory returns the committed moves in order
func (p *Puzzle) GetMoveHistory() []MoveHistoryEntry {
	out := make([]MoveHistoryEntry, len(p.history))
	copy(out, p.history)
	return out
}

// State returns a snapshot of the instance
func (p *Puzzle) State() *State {
	return &State{
		Name:     p.def.Name,
		TileSide: p.side,
		Quantum:  p.quantum,
		Shapes:   p.Shapes(),
		Moves:    p.GetMoveHistory(),
		Valid:    p.Validate(),
	}
}

func (p *Puzzle) commit(s *Shape, to geom.Vec2) {
	from := s.Rest
	s.Rest = to
	s.Current = to
	if from == to {
		return
	}
	p.history = append(p.history, MoveHistoryEntry{
		Shape:      s.ID,
		From:       from,
		To:         to,
		Timestamp:  p.clock().Unix(),
		MoveNumber: len(p.history) + 1,
	})
}
