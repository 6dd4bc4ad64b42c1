package engine

import (
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
)

// Validate reports whether every tile of every shape sits on a cell that
// also holds a tile of the opposite type. Cells are the truncated world
// position divided by the tile side, so sub-cell offsets are ignored. Any
// number of opposite tiles satisfies a tile.
//
// Validate only reads r. If r cannot produce a shape, or panics while doing
// so, the result is false.
func Validate(r ShapeReader) bool {
	unsatisfied, ok := Diagnose(r)
	return ok && len(unsatisfied) == 0
}

// Diagnose returns every unsatisfied tile. ok is false when r could not be
// read, in which case the list is incomplete.
func Diagnose(r ShapeReader) (unsatisfied []Unsatisfied, ok bool) {
	defer func() {
		if recover() != nil {
			unsatisfied, ok = nil, false
		}
	}()

	side := r.TileSide()
	if side <= 0 {
		return nil, false
	}

	type placed struct {
		ref   TileRef
		typ   puzzle.TileType
		world geom.Vec2
		cell  geom.Cell
	}

	var tiles []placed
	cells := make(map[geom.Cell]puzzle.Occupancy)
	for i := 0; i < r.ShapeCount(); i++ {
		origin, ok := r.ShapePosition(i)
		if !ok {
			return nil, false
		}
		shapeTiles, ok := r.ShapeTiles(i)
		if !ok {
			return nil, false
		}
		for j, t := range shapeTiles {
			world := origin.Add(t.Local.World(side))
			cell := world.Cell(side)
			occ := cells[cell]
			occ.Add(t.Type)
			cells[cell] = occ
			tiles = append(tiles, placed{ref: TileRef{Shape: i, Tile: j}, typ: t.Type, world: world, cell: cell})
		}
	}

	unsatisfied = []Unsatisfied{}
	for _, t := range tiles {
		if !t.typ.SatisfiedBy(cells[t.cell]) {
			unsatisfied = append(unsatisfied, Unsatisfied{Ref: t.ref, Type: t.typ, World: t.world, Cell: t.cell})
		}
	}
	return unsatisfied, true
}

func tileWorld(r ShapeReader, ref TileRef) (geom.Vec2, bool) {
	origin, ok := r.ShapePosition(ref.Shape)
	if !ok {
		return geom.Vec2{}, false
	}
	tiles, ok := r.ShapeTiles(ref.Shape)
	if !ok || ref.Tile < 0 || ref.Tile >= len(tiles) {
		return geom.Vec2{}, false
	}
	return origin.Add(tiles[ref.Tile].Local.World(r.TileSide())), true
}
