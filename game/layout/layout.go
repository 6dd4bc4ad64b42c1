package layout

import (
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
)

// DefaultTileSide is the world size of one grid cell.
const DefaultTileSide = 100.0

// Options controls the column flow. All distances are world units.
type Options struct {
	TileSide     float64
	Margin       float64 // top and left edge of the flow
	ShapeGap     float64 // vertical gap between shapes in a column
	ColumnGap    float64 // horizontal gap between columns
	BottomMargin float64
	// BackgroundAnchor is where auto-positioned background shapes are placed.
	BackgroundAnchor geom.Vec2
}

// DefaultOptions returns the standard layout settings.
func DefaultOptions() Options {
	return Options{
		TileSide:         DefaultTileSide,
		Margin:           50,
		ShapeGap:         50,
		ColumnGap:        50,
		BottomMargin:     50,
		BackgroundAnchor: geom.V(900, 50),
	}
}

// withDefaults replaces a non-positive tile side. Zero margins, gaps and
// anchor are taken as given.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TileSide <= 0 {
		o.TileSide = d.TileSide
	}
	return o
}

// Box is a bounding box in tile units.
type Box struct {
	Min geom.Position
	W   int
	H   int
}

// Bounds returns the box covering every tile: each tile at p spans [p, p+1).
// An empty tile set has a zero box at the origin.
func Bounds(tiles []geom.Position) Box {
	if len(tiles) == 0 {
		return Box{}
	}
	lo, hi := geom.MinOf(tiles), geom.MaxOf(tiles)
	return Box{Min: lo, W: hi.X - lo.X + 1, H: hi.Y - lo.Y + 1}
}

// Placement is the layout outcome for one shape.
type Placement struct {
	ShapeID int       `json:"shape_id"`
	World   geom.Vec2 `json:"world"` // origin of the shape's local (0,0) tile
	Size    geom.Vec2 `json:"size"`  // bounding box in tile units
	Color   string    `json:"color"`
	Auto    bool      `json:"auto"`
	Column  int       `json:"column"` // flow column, -1 when not in the flow
}

// Result holds one Placement per shape, in definition order.
type Result struct {
	Shapes   []Placement `json:"shapes"`
	TileSide float64     `json:"tile_side"`
	Columns  int         `json:"columns"`
}

// Compute places every shape of def for a viewport of the given height.
//
// Shapes with an explicit position go exactly there and are ignored by the
// flow. Background shapes without one are placed at the background anchor.
// The remaining shapes flow top to bottom from the margin; once a column
// grows past the viewport height less the bottom margin, the next shape
// starts a new column to the right of the widest shape so far.
func Compute(def *puzzle.PuzzleDefinition, viewportHeight float64, opts Options) Result {
	opts = opts.withDefaults()
	side := opts.TileSide
	colors := Palette(len(def.Shapes))

	res := Result{Shapes: make([]Placement, len(def.Shapes)), TileSide: side}
	colX, rowY := opts.Margin, opts.Margin
	maxColWidth := 0.0
	column := 0
	flowed := false

	for i, shape := range def.Shapes {
		box := Bounds(shape.Positions())
		p := Placement{
			ShapeID: i,
			Size:    geom.V(float64(box.W), float64(box.H)),
			Color:   colors[i],
			Column:  -1,
		}
		offset := box.Min.World(side)

		switch {
		case shape.Pos != nil:
			p.World = shape.Pos.World(side)
		case !shape.Interactable:
			p.World = opts.BackgroundAnchor.Sub(offset)
		default:
			p.Auto = true
			p.Column = column
			p.World = geom.V(colX, rowY).Sub(offset)
			flowed = true

			rowY += float64(box.H)*side + opts.ShapeGap
			maxColWidth = max(maxColWidth, float64(box.W)*side)
			if rowY > viewportHeight-opts.BottomMargin {
				rowY = opts.Margin
				colX += maxColWidth + opts.ColumnGap
				maxColWidth = 0
				column++
			}
		}
		res.Shapes[i] = p
	}

	if flowed {
		res.Columns = column + 1
		// a wrap after the last shape opens a column nothing landed in
		if rowY == opts.Margin {
			res.Columns = column
		}
	}
	return res
}
