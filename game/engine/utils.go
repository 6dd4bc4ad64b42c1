package engine

import (
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
)

// ShapeAt returns the topmost draggable shape with a tile under pointer.
// Later shapes are drawn above earlier ones.
func (p *Puzzle) ShapeAt(pointer geom.Vec2) (int, bool) {
	for i := len(p.shapes) - 1; i >= 0; i-- {
		s := &p.shapes[i]
		if !s.Draggable {
			continue
		}
		for _, t := range s.Tiles {
			if containsPoint(s.Current.Add(t.Local.World(p.side)), p.side, pointer) {
				return i, true
			}
		}
	}
	return -1, false
}

// containsPoint reports whether pt lies in the tile square at topLeft.
func containsPoint(topLeft geom.Vec2, side float64, pt geom.Vec2) bool {
	return pt.X >= topLeft.X && pt.X < topLeft.X+side &&
		pt.Y >= topLeft.Y && pt.Y < topLeft.Y+side
}

// Extent returns the world rectangle covering all shapes at their current
// positions, as top-left and bottom-right corners.
func (p *Puzzle) Extent() (geom.Vec2, geom.Vec2) {
	var lo, hi geom.Vec2
	first := true
	for i := range p.shapes {
		s := &p.shapes[i]
		for _, t := range s.Tiles {
			tl := s.Current.Add(t.Local.World(p.side))
			br := tl.Add(geom.V(p.side, p.side))
			if first {
				lo, hi, first = tl, br, false
				continue
			}
			lo = geom.V(min(lo.X, tl.X), min(lo.Y, tl.Y))
			hi = geom.V(max(hi.X, br.X), max(hi.Y, br.Y))
		}
	}
	return lo, hi
}

// CountTiles returns the number of foreground and background tiles.
func (p *Puzzle) CountTiles() (foreground, background int) {
	for i := range p.shapes {
		for _, t := range p.shapes[i].Tiles {
			if t.Type == puzzle.Foreground {
				foreground++
			} else {
				background++
			}
		}
	}
	return foreground, background
}
