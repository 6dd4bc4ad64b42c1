// Package engine provides the runtime model of a displayed puzzle.
//
// The engine package implements:
//   - Shape and tile arenas built from a puzzle definition and its layout
//   - Overlap validation of foreground against background tiles
//   - The per-shape drag state machine with grid snapping
//   - Hit testing, direct moves, reset and move history
//
// Core Types:
//
// Puzzle owns a slice of Shapes and each Shape owns its Tiles. A tile never
// stores a world position; TileRef names a tile by shape and index and its
// world position is resolved through the owning shape. The Engine interface
// describes the operations hosts use, and ShapeReader is the read-only view
// consumed by Validate.
//
// Usage:
//
//	p, err := engine.New(def, 720, layout.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// one pointer gesture
//	id, _ := p.PressAt(geom.V(60, 60))
//	p.Update(geom.V(310, 95))
//	p.Release(id, geom.V(310, 95))
//
//	if p.Validate() {
//		fmt.Println("Congratulations! Your solution is valid.")
//	}
//
// Validation Rule:
//
// A Background tile is satisfied when at least one Foreground tile shares its
// cell, and a Foreground tile is satisfied when at least one Background tile
// does. The puzzle is valid only when every tile is satisfied. Cells come from
// truncating world coordinates by the tile side.
package engine
