package puzzle

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/wricardo/tilematch/game/geom"
)

// FromASCIIArt converts a text grid into a puzzle. Each line is a row and the
// byte offset of a character is its column. Every non-whitespace cell joins a
// non-interactable background shape, and each distinct character becomes one
// interactable shape. Shapes are ordered background first, then characters in
// the order they first appear. Every shape is rebased so its componentwise
// minimum sits at the origin and is left to auto-layout.
//
// Characters are grouped by identity, not adjacency: an 'A' appearing in two
// separate regions yields a single shape spanning both.
func FromASCIIArt(name, text string) *PuzzleDefinition {
	var (
		background []geom.Position
		order      []rune
		groups     = make(map[rune][]geom.Position)
	)

	for y, line := range strings.Split(text, "\n") {
		for x, r := range line {
			if unicode.IsSpace(r) {
				continue
			}
			p := geom.Pos(x, y)
			if _, seen := groups[r]; !seen {
				order = append(order, r)
			}
			groups[r] = append(groups[r], p)
			background = append(background, p)
		}
	}

	def := &PuzzleDefinition{
		Name:   name,
		Shapes: make([]ShapeDefinition, 0, len(order)+1),
	}
	def.Shapes = append(def.Shapes, ShapeDefinition{
		Interactable: false,
		Tiles:        rebased(background),
	})
	for _, r := range order {
		def.Shapes = append(def.Shapes, ShapeDefinition{
			Interactable: true,
			Tiles:        rebased(groups[r]),
		})
	}
	return def
}

func rebased(ps []geom.Position) ShapeSpec {
	origin := geom.MinOf(ps)
	tiles := make([]TileDefinition, len(ps))
	for i, p := range ps {
		tiles[i] = TileDefinition{Pos: p.Sub(origin)}
	}
	return TileList(tiles...)
}

// Format identifies a puzzle document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatASCII
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatASCII:
		return "txt"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromFilename maps .yaml, .yml and .json to FormatYAML and .txt to FormatASCII.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	case ".txt":
		return FormatASCII, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// ParseFormat accepts "yaml", "yml", "json", "txt" and "ascii".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml", "json":
		return FormatYAML, nil
	case "txt", "ascii":
		return FormatASCII, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Load decodes data in the given format. ASCII art takes its puzzle name from
// name; YAML documents carry their own, and name is only used to label errors.
func Load(name string, data []byte, format Format) (*PuzzleDefinition, error) {
	switch format {
	case FormatASCII:
		return FromASCIIArt(name, string(data)), nil
	case FormatYAML:
		def, err := Parse(data)
		if err != nil {
			return nil, withSource(err, name)
		}
		return def, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// LoadFile is Load with the format chosen from the file extension.
func LoadFile(filename string, data []byte) (*PuzzleDefinition, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	return Load(ShortName(filename), data, format)
}

// ShortName strips the directory and extension from a puzzle file path.
func ShortName(filename string) string {
	base := path.Base(filename)
	return strings.TrimSuffix(base, path.Ext(base))
}
