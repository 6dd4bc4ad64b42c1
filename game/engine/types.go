package engine

import (
	"errors"

	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
)

var (
	// ErrInvalidDefinition is returned when a definition fails puzzle.Check
	ErrInvalidDefinition = errors.New("invalid puzzle definition")

	// ErrShapeNotFound is returned for a shape index outside the puzzle
	ErrShapeNotFound = errors.New("shape not found")

	// ErrNotDraggable is returned when moving a shape without foreground tiles
	ErrNotDraggable = errors.New("shape is not draggable")
)

// Tile is a runtime tile. Its world position is always derived from the
// owning shape, which is reached through a TileRef.
type Tile struct {
	Local geom.Position   `json:"local"`
	Type  puzzle.TileType `json:"type"`
}

// TileRef addresses a tile through the puzzle's shape arena.
type TileRef struct {
	Shape int `json:"shape"`
	Tile  int `json:"tile"`
}

// DragState is the per-shape drag machine. The zero value is Idle.
type DragState struct {
	Active       bool      `json:"active"`
	StartShape   geom.Vec2 `json:"start_shape"`
	StartPointer geom.Vec2 `json:"start_pointer"`
}

// Dragging reports whether the shape is between a press and its release.
func (d DragState) Dragging() bool {
	return d.Active
}

// Shape is a runtime shape owning its tiles.
type Shape struct {
	ID        int       `json:"id"`
	Draggable bool      `json:"draggable"`
	Color     string    `json:"color"`
	Size      geom.Vec2 `json:"size"`
	Auto      bool      `json:"auto"`
	Home      geom.Vec2 `json:"home"`    // layout position, restored by Reset
	Rest      geom.Vec2 `json:"rest"`    // last committed position
	Current   geom.Vec2 `json:"current"` // displayed position, follows the pointer while dragging
	Tiles     []Tile    `json:"tiles"`
	Drag      DragState `json:"drag"`
}

// MoveHistoryEntry records one committed shape move.
type MoveHistoryEntry struct {
	Shape      int       `json:"shape"`
	From       geom.Vec2 `json:"from"`
	To         geom.Vec2 `json:"to"`
	Timestamp  int64     `json:"timestamp"`
	MoveNumber int       `json:"move_number"`
}

// Unsatisfied describes a tile with no opposite tile on its cell.
type Unsatisfied struct {
	Ref   TileRef         `json:"ref"`
	Type  puzzle.TileType `json:"type"`
	World geom.Vec2       `json:"world"`
	Cell  geom.Cell       `json:"cell"`
}

// State is a serializable snapshot of a puzzle instance.
type State struct {
	Name     string             `json:"name"`
	TileSide float64            `json:"tile_side"`
	Quantum  float64            `json:"quantum"`
	Shapes   []Shape            `json:"shapes"`
	Moves    []MoveHistoryEntry `json:"moves"`
	Valid    bool               `json:"valid"`
}

// ShapeReader is the read-only view of shape positions consumed by Validate.
// A false second return means the shape could not be read.
type ShapeReader interface {
	TileSide() float64
	ShapeCount() int
	ShapePosition(i int) (geom.Vec2, bool)
	ShapeTiles(i int) ([]Tile, bool)
}
