// Package geom provides the coordinate types shared by the puzzle packages.
//
// Position is a grid coordinate measured in tiles. Vec2 is a world coordinate
// measured in the host's units (one tile spans TileSide world units). Both are
// small immutable value types.
package geom

import (
	"fmt"
	"math"
)

// Position represents a grid cell. Coordinates are non-negative; the parsers
// reject negative values, and Sub does not check for underflow.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// Add returns p+o componentwise.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p-o componentwise. The caller must ensure o <= p.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Min returns the componentwise minimum of p and o.
func (p Position) Min(o Position) Position {
	return Position{X: min(p.X, o.X), Y: min(p.Y, o.Y)}
}

// Max returns the componentwise maximum of p and o.
func (p Position) Max(o Position) Position {
	return Position{X: max(p.X, o.X), Y: max(p.Y, o.Y)}
}

// World converts a grid position to world units.
func (p Position) World(side float64) Vec2 {
	return Vec2{X: float64(p.X) * side, Y: float64(p.Y) * side}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// MinOf returns the componentwise minimum over ps, or the zero Position when
// ps is empty.
func MinOf(ps []Position) Position {
	if len(ps) == 0 {
		return Position{}
	}
	m := ps[0]
	for _, p := range ps[1:] {
		m = m.Min(p)
	}
	return m
}

// MaxOf returns the componentwise maximum over ps, or the zero Position when
// ps is empty.
func MaxOf(ps []Position) Position {
	if len(ps) == 0 {
		return Position{}
	}
	m := ps[0]
	for _, p := range ps[1:] {
		m = m.Max(p)
	}
	return m
}

// Vec2 is a world-space coordinate.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale multiplies both components by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Snapped rounds each component to the nearest multiple of q.
// A non-positive q returns v unchanged.
func (v Vec2) Snapped(q float64) Vec2 {
	if q <= 0 {
		return v
	}
	return Vec2{X: math.Round(v.X/q) * q, Y: math.Round(v.Y/q) * q}
}

// Cell truncates v to integer cell coordinates for a tile of the given side.
func (v Vec2) Cell(side float64) Cell {
	return Cell{X: int(math.Trunc(v.X / side)), Y: int(math.Trunc(v.Y / side))}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", v.X, v.Y)
}

// Cell is a quantized world cell. Unlike Position it may be negative, since
// players can drag shapes anywhere on the canvas.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}
