package puzzle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/wricardo/tilematch/game/geom"
	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML puzzle document. JSON documents are accepted as well
// since JSON is a subset of YAML. A stream must hold exactly one document.
// All errors are *ParseError values.
func Parse(data []byte) (*PuzzleDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: fmt.Errorf("%w: empty document", ErrMalformed)}
		}
		return nil, &ParseError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("%w: empty document", ErrMalformed)}
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); (err != nil && !errors.Is(err, io.EOF)) || (err == nil && len(extra.Content) > 0) {
		return nil, nodeError(&extra, ErrMalformed, "only one document is allowed")
	}

	def, err := decodePuzzle(root.Content[0])
	if err != nil {
		return nil, err
	}
	return def, nil
}

// UnmarshalYAML lets a PuzzleDefinition be embedded in other YAML documents.
func (p *PuzzleDefinition) UnmarshalYAML(value *yaml.Node) error {
	def, err := decodePuzzle(value)
	if err != nil {
		return err
	}
	*p = *def
	return nil
}

// UnmarshalJSON applies the same rules as Parse.
func (p *PuzzleDefinition) UnmarshalJSON(data []byte) error {
	def, err := Parse(data)
	if err != nil {
		return err
	}
	*p = *def
	return nil
}

// Encode writes def as a YAML document that Parse reads back unchanged.
func Encode(def *PuzzleDefinition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, fmt.Errorf("failed to encode puzzle %q: %w", def.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode puzzle %q: %w", def.Name, err)
	}
	return buf.Bytes(), nil
}

func decodePuzzle(n *yaml.Node) (*PuzzleDefinition, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeError(n, ErrMalformed, "puzzle must be a mapping")
	}

	def := &PuzzleDefinition{}
	var haveName, haveShapes bool
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if seen[key.Value] {
			return nil, nodeError(key, ErrMalformed, "duplicate key %q", key.Value)
		}
		seen[key.Value] = true
		switch key.Value {
		case "name":
			if val.Kind != yaml.ScalarNode {
				return nil, nodeError(val, ErrMalformed, "name must be a string")
			}
			def.Name = val.Value
			haveName = true
		case "shapes":
			if val.Kind != yaml.SequenceNode {
				return nil, nodeError(val, ErrMalformed, "shapes must be a list")
			}
			def.Shapes = make([]ShapeDefinition, 0, len(val.Content))
			for _, sn := range val.Content {
				shape, err := decodeShape(sn)
				if err != nil {
					return nil, err
				}
				def.Shapes = append(def.Shapes, shape)
			}
			haveShapes = true
		default:
			return nil, nodeError(key, ErrUnknownField, "%q in puzzle", key.Value)
		}
	}

	if !haveName {
		return nil, nodeError(n, ErrMissingField, "name")
	}
	if !haveShapes {
		return nil, nodeError(n, ErrMissingField, "shapes")
	}
	return def, nil
}

func decodeShape(n *yaml.Node) (ShapeDefinition, error) {
	shape := ShapeDefinition{Interactable: true}
	if n.Kind != yaml.MappingNode {
		return shape, nodeError(n, ErrMalformed, "shape must be a mapping")
	}

	var haveTiles bool
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if seen[key.Value] {
			return shape, nodeError(key, ErrMalformed, "duplicate key %q", key.Value)
		}
		seen[key.Value] = true
		switch key.Value {
		case "pos":
			p, err := decodePosition(val)
			if err != nil {
				return shape, err
			}
			shape.Pos = &p
		case "interactable":
			var b bool
			if val.Kind != yaml.ScalarNode || val.Decode(&b) != nil {
				return shape, nodeError(val, ErrMalformed, "interactable must be a boolean")
			}
			shape.Interactable = b
		case "tiles":
			spec, err := decodeSpec(val)
			if err != nil {
				return shape, err
			}
			shape.Tiles = spec
			haveTiles = true
		default:
			return shape, nodeError(key, ErrUnknownField, "%q in shape", key.Value)
		}
	}

	if !haveTiles {
		return shape, nodeError(n, ErrMissingField, "tiles")
	}
	return shape, nil
}

// decodeSpec accepts either a list of tile mappings or a [w, h] pair.
func decodeSpec(n *yaml.Node) (ShapeSpec, error) {
	if n.Kind != yaml.SequenceNode {
		return ShapeSpec{}, nodeError(n, ErrMalformed, "tiles must be a list")
	}
	if len(n.Content) == 0 {
		return TileList(), nil
	}

	if n.Content[0].Kind == yaml.ScalarNode {
		if len(n.Content) != 2 {
			return ShapeSpec{}, nodeError(n, ErrRectArity, "got %d values", len(n.Content))
		}
		w, err := decodeInt(n.Content[0])
		if err != nil {
			return ShapeSpec{}, err
		}
		h, err := decodeInt(n.Content[1])
		if err != nil {
			return ShapeSpec{}, err
		}
		return RectSpec(w, h), nil
	}

	tiles := make([]TileDefinition, 0, len(n.Content))
	for _, tn := range n.Content {
		t, err := decodeTile(tn)
		if err != nil {
			return ShapeSpec{}, err
		}
		tiles = append(tiles, t)
	}
	return TileList(tiles...), nil
}

func decodeTile(n *yaml.Node) (TileDefinition, error) {
	var tile TileDefinition
	if n.Kind != yaml.MappingNode {
		return tile, nodeError(n, ErrMalformed, "tile must be a mapping")
	}

	var havePos bool
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if seen[key.Value] {
			return tile, nodeError(key, ErrMalformed, "duplicate key %q", key.Value)
		}
		seen[key.Value] = true
		switch key.Value {
		case "pos":
			p, err := decodePosition(val)
			if err != nil {
				return tile, err
			}
			tile.Pos = p
			havePos = true
		case "tile_type":
			if val.Kind != yaml.ScalarNode {
				return tile, nodeError(val, ErrMalformed, "tile_type must be a string")
			}
			tt, err := ParseTileType(val.Value)
			if err != nil {
				return tile, nodeError(val, ErrUnknownTileType, "%q", val.Value)
			}
			tile.TileType = &tt
		default:
			return tile, nodeError(key, ErrUnknownField, "%q in tile", key.Value)
		}
	}

	if !havePos {
		return tile, nodeError(n, ErrMissingField, "pos")
	}
	return tile, nil
}

func decodePosition(n *yaml.Node) (geom.Position, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 2 {
		return geom.Position{}, nodeError(n, ErrMalformed, "pos must be [x, y]")
	}
	x, err := decodeInt(n.Content[0])
	if err != nil {
		return geom.Position{}, err
	}
	y, err := decodeInt(n.Content[1])
	if err != nil {
		return geom.Position{}, err
	}
	return geom.Pos(x, y), nil
}

func decodeInt(n *yaml.Node) (int, error) {
	var v int
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!int" || n.Decode(&v) != nil {
		return 0, nodeError(n, ErrMalformed, "expected an integer, got %q", n.Value)
	}
	if v < 0 {
		return 0, nodeError(n, ErrNegativeCoordinate, "%d", v)
	}
	return v, nil
}

// pair encodes as a two-element flow sequence, [x, y].
type pair [2]int

func (p pair) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.SequenceNode,
		Style: yaml.FlowStyle,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(p[0])},
			{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(p[1])},
		},
	}, nil
}

func posPair(p geom.Position) pair {
	return pair{p.X, p.Y}
}

type tileDoc struct {
	Pos      pair      `yaml:"pos" json:"pos"`
	TileType *TileType `yaml:"tile_type,omitempty" json:"tile_type,omitempty"`
}

type shapeDoc struct {
	Pos          *pair     `yaml:"pos,omitempty" json:"pos,omitempty"`
	Interactable bool      `yaml:"interactable" json:"interactable"`
	Tiles        ShapeSpec `yaml:"tiles" json:"tiles"`
}

func (t TileDefinition) doc() tileDoc {
	return tileDoc{Pos: posPair(t.Pos), TileType: t.TileType}
}

func (s ShapeDefinition) doc() shapeDoc {
	d := shapeDoc{Interactable: s.Interactable, Tiles: s.Tiles}
	if s.Pos != nil {
		p := posPair(*s.Pos)
		d.Pos = &p
	}
	return d
}

func (t TileDefinition) MarshalYAML() (interface{}, error) {
	return t.doc(), nil
}

func (t TileDefinition) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.doc())
}

func (s ShapeDefinition) MarshalYAML() (interface{}, error) {
	return s.doc(), nil
}

func (s ShapeDefinition) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.doc())
}

func (s ShapeSpec) MarshalYAML() (interface{}, error) {
	if s.Rect != nil {
		return pair{s.Rect.W, s.Rect.H}, nil
	}
	if s.Tiles == nil {
		return []TileDefinition{}, nil
	}
	return s.Tiles, nil
}

func (s ShapeSpec) MarshalJSON() ([]byte, error) {
	if s.Rect != nil {
		return json.Marshal(pair{s.Rect.W, s.Rect.H})
	}
	if s.Tiles == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Tiles)
}

// IsParseError reports whether err carries a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
