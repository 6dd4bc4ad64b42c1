package puzzle

import (
	"fmt"

	"github.com/wricardo/tilematch/game/geom"
)

// Severity ranks a Finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single problem reported by Check. Shape is -1 for findings
// about the puzzle as a whole.
type Finding struct {
	Severity Severity `json:"severity"`
	Shape    int      `json:"shape"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Shape < 0 {
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: shape %d: %s", f.Severity, f.Shape, f.Message)
}

// Stats summarizes a definition.
type Stats struct {
	Shapes          int `json:"shapes"`
	Interactable    int `json:"interactable"`
	ForegroundTiles int `json:"foreground_tiles"`
	BackgroundTiles int `json:"background_tiles"`
}

// Report is the outcome of Check.
type Report struct {
	Name     string    `json:"name"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
	Stats    Stats     `json:"stats"`
}

// OK reports whether the definition has no errors. Warnings do not count.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

func (r *Report) errorf(shape int, format string, args ...any) {
	r.Errors = append(r.Errors, Finding{Severity: SeverityError, Shape: shape, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) warnf(shape int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{Severity: SeverityWarning, Shape: shape, Message: fmt.Sprintf(format, args...)})
}

// Check inspects a parsed definition for problems the parser does not reject.
// Duplicate tile positions within a shape and puzzles without shapes are
// errors. Puzzles that cannot be solved by construction, and shapes whose
// tiles are not edge-connected, produce warnings.
func Check(def *PuzzleDefinition) Report {
	r := Report{Name: def.Name, Errors: []Finding{}, Warnings: []Finding{}}
	if len(def.Shapes) == 0 {
		r.errorf(-1, "puzzle has no shapes")
		return r
	}

	r.Stats.Shapes = len(def.Shapes)
	for i, shape := range def.Shapes {
		if shape.Interactable {
			r.Stats.Interactable++
		}

		tiles := shape.Resolved()
		if len(tiles) == 0 {
			r.warnf(i, "shape has no tiles")
			continue
		}

		seen := make(map[geom.Position]bool, len(tiles))
		for _, t := range tiles {
			if seen[t.Pos] {
				r.errorf(i, "duplicate tile at %v", t.Pos)
			}
			seen[t.Pos] = true

			if t.Type == Foreground {
				r.Stats.ForegroundTiles++
			} else {
				r.Stats.BackgroundTiles++
			}
		}

		if !connected(seen) {
			r.warnf(i, "tiles are not edge-connected")
		}
	}

	switch {
	case r.Stats.ForegroundTiles == 0 && r.Stats.BackgroundTiles == 0:
	case r.Stats.ForegroundTiles == 0:
		r.warnf(-1, "puzzle has no foreground tiles")
	case r.Stats.BackgroundTiles == 0:
		r.warnf(-1, "puzzle has no background tiles")
	case r.Stats.ForegroundTiles < r.Stats.BackgroundTiles:
		r.warnf(-1, "%d foreground tiles cannot cover %d background tiles",
			r.Stats.ForegroundTiles, r.Stats.BackgroundTiles)
	}
	return r
}

// connected runs a flood fill over the 4-neighbourhood.
func connected(cells map[geom.Position]bool) bool {
	if len(cells) < 2 {
		return true
	}

	var start geom.Position
	for p := range cells {
		start = p
		break
	}

	visited := map[geom.Position]bool{start: true}
	queue := []geom.Position{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range [...]geom.Position{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			n := p.Add(d)
			if cells[n] && !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return len(visited) == len(cells)
}
