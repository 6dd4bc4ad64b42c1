package puzzle

import (
	"fmt"

	"github.com/wricardo/tilematch/game/geom"
)

// TileType classifies a tile as part of the solution or part of the target.
type TileType int

const (
	// Foreground tiles belong to draggable shapes and must land on a Background tile.
	Foreground TileType = iota
	// Background tiles are fixed targets that must be covered by a Foreground tile.
	Background
)

// TileTypeFromInteractable derives the default tile type of a shape.
func TileTypeFromInteractable(interactable bool) TileType {
	if interactable {
		return Foreground
	}
	return Background
}

// ParseTileType converts the document tag into a TileType.
func ParseTileType(s string) (TileType, error) {
	switch s {
	case "Foreground":
		return Foreground, nil
	case "Background":
		return Background, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTileType, s)
}

func (t TileType) String() string {
	switch t {
	case Foreground:
		return "Foreground"
	case Background:
		return "Background"
	}
	return fmt.Sprintf("TileType(%d)", int(t))
}

// Opposite returns the tile type that satisfies t.
func (t TileType) Opposite() TileType {
	if t == Foreground {
		return Background
	}
	return Foreground
}

// Occupancy counts the tiles of each type sitting on one grid cell.
type Occupancy struct {
	Foreground int
	Background int
}

// Add records one tile of type t.
func (o *Occupancy) Add(t TileType) {
	if t == Foreground {
		o.Foreground++
	} else {
		o.Background++
	}
}

// SatisfiedBy reports whether a tile of type t is satisfied on a cell with
// the given occupancy. Any number of opposite tiles counts as a match.
func (t TileType) SatisfiedBy(o Occupancy) bool {
	switch t {
	case Foreground:
		return o.Background > 0
	case Background:
		return o.Foreground > 0
	}
	return false
}

func (t TileType) MarshalText() ([]byte, error) {
	switch t {
	case Foreground, Background:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownTileType, int(t))
}

func (t *TileType) UnmarshalText(text []byte) error {
	v, err := ParseTileType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// TileDefinition is one declared tile. A nil TileType defers to the shape default.
type TileDefinition struct {
	Pos      geom.Position
	TileType *TileType
}

// Resolve returns the effective tile type given the owning shape's default.
func (t TileDefinition) Resolve(base TileType) TileType {
	if t.TileType != nil {
		return *t.TileType
	}
	return base
}

// Rect is the [width, height] shorthand for a dense rectangle of tiles.
type Rect struct {
	W int
	H int
}

// ShapeSpec is either an explicit tile list or a rectangle; exactly one is used.
// A non-nil Rect takes precedence.
type ShapeSpec struct {
	Tiles []TileDefinition
	Rect  *Rect
}

// TileList builds an explicit ShapeSpec.
func TileList(tiles ...TileDefinition) ShapeSpec {
	if tiles == nil {
		tiles = []TileDefinition{}
	}
	return ShapeSpec{Tiles: tiles}
}

// RectSpec builds a rectangle ShapeSpec.
func RectSpec(w, h int) ShapeSpec {
	return ShapeSpec{Rect: &Rect{W: w, H: h}}
}

// IsRect reports whether the shape uses rectangle shorthand.
func (s ShapeSpec) IsRect() bool {
	return s.Rect != nil
}

// ShapeDefinition declares one rigid group of tiles.
type ShapeDefinition struct {
	// Pos is the fixed grid position; nil means auto-layout.
	Pos          *geom.Position
	Interactable bool
	Tiles        ShapeSpec
}

// BaseType is the tile type inherited by tiles without an override.
func (s ShapeDefinition) BaseType() TileType {
	return TileTypeFromInteractable(s.Interactable)
}

// GetTiles resolves the tile spec into an ordered tile list. Rectangles expand
// row by row with no tile type override.
func (s ShapeDefinition) GetTiles() []TileDefinition {
	if s.Tiles.Rect == nil {
		out := make([]TileDefinition, len(s.Tiles.Tiles))
		copy(out, s.Tiles.Tiles)
		return out
	}
	r := s.Tiles.Rect
	if r.W <= 0 || r.H <= 0 {
		return []TileDefinition{}
	}
	out := make([]TileDefinition, 0, r.W*r.H)
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			out = append(out, TileDefinition{Pos: geom.Pos(x, y)})
		}
	}
	return out
}

// ResolvedTile is a tile with its effective type.
type ResolvedTile struct {
	Pos  geom.Position
	Type TileType
}

// Resolved returns the shape's tiles with tile types applied.
func (s ShapeDefinition) Resolved() []ResolvedTile {
	base := s.BaseType()
	tiles := s.GetTiles()
	out := make([]ResolvedTile, len(tiles))
	for i, t := range tiles {
		out[i] = ResolvedTile{Pos: t.Pos, Type: t.Resolve(base)}
	}
	return out
}

// Positions returns the local position of every resolved tile.
func (s ShapeDefinition) Positions() []geom.Position {
	tiles := s.GetTiles()
	out := make([]geom.Position, len(tiles))
	for i, t := range tiles {
		out[i] = t.Pos
	}
	return out
}

// HasForeground reports whether any tile resolves to Foreground.
func (s ShapeDefinition) HasForeground() bool {
	for _, t := range s.Resolved() {
		if t.Type == Foreground {
			return true
		}
	}
	return false
}

// PuzzleDefinition is the declarative puzzle as loaded from a document.
// It is treated as immutable once parsed.
type PuzzleDefinition struct {
	Name   string            `yaml:"name" json:"name"`
	Shapes []ShapeDefinition `yaml:"shapes" json:"shapes"`
}

// Ptr returns a pointer to v, for building Pos and TileType literals.
func Ptr[T any](v T) *T {
	return &v
}
