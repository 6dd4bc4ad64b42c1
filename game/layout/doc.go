// Package layout assigns world positions and colors to the shapes of a puzzle.
//
// Interactable shapes without a fixed position flow into columns starting at
// the top-left margin; a column wraps once it grows past the viewport height.
// Background shapes without a fixed position sit at a single anchor, and
// shapes with a fixed position are placed on their grid coordinate scaled by
// the tile side. Colors come from a warm gradient shuffled deterministically
// by shape count.
//
// Usage:
//
//	res := layout.Compute(def, 720, layout.DefaultOptions())
//	for _, p := range res.Shapes {
//		fmt.Printf("shape %d at %v (%s)\n", p.ShapeID, p.World, p.Color)
//	}
//
// Compute is pure: the same definition, viewport height and options always
// produce the same Result.
package layout
