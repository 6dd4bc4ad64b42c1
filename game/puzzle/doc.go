// Package puzzle defines the declarative puzzle model and its document formats.
//
// A PuzzleDefinition is a name and an ordered list of ShapeDefinitions. Each
// shape has an optional fixed grid position, an interactable flag and a
// ShapeSpec that is either an explicit list of tiles or a [width, height]
// rectangle. Tiles inherit Foreground (interactable) or Background from their
// shape unless a tile_type overrides it.
//
// Document Formats:
//
// YAML (and JSON, which YAML accepts):
//
//	name: corner
//	shapes:
//	  - interactable: false
//	    pos: [0, 0]
//	    tiles: [3, 2]
//	  - tiles:
//	      - pos: [0, 0]
//	      - pos: [1, 0]
//	        tile_type: Foreground
//
// ASCII art, where each distinct non-whitespace character is one shape and
// every occupied cell also becomes part of a single background shape:
//
//	AB
//	AB
//	A
//
// Usage:
//
//	def, err := puzzle.LoadFile("corner.yaml", data)
//	if err != nil {
//		var pe *puzzle.ParseError
//		if errors.As(err, &pe) {
//			log.Printf("line %d: %v", pe.Line, pe.Err)
//		}
//		return err
//	}
//
//	report := puzzle.Check(def)
//	if !report.OK() {
//		for _, f := range report.Errors {
//			fmt.Println(f)
//		}
//	}
//
// Parsing is strict: unknown fields, unknown tile types, negative coordinates
// and rectangle shorthand with the wrong number of values are all rejected
// with a *ParseError wrapping the matching sentinel error.
package puzzle
