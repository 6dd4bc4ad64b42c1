package puzzle

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingField is returned when a required document field is absent
	ErrMissingField = errors.New("missing required field")

	// ErrRectArity is returned when rectangle shorthand is not exactly [width, height]
	ErrRectArity = errors.New("rectangle shorthand must be [width, height]")

	// ErrUnknownTileType is returned for a tile_type tag other than Foreground or Background
	ErrUnknownTileType = errors.New("unknown tile type")

	// ErrNegativeCoordinate is returned for negative positions or rectangle sizes
	ErrNegativeCoordinate = errors.New("negative coordinate")

	// ErrUnknownField is returned when a document contains a field the model does not define
	ErrUnknownField = errors.New("unknown field")

	// ErrMalformed is returned for syntax errors and values of the wrong kind
	ErrMalformed = errors.New("malformed puzzle document")

	// ErrUnknownFormat is returned when a file extension maps to no supported format
	ErrUnknownFormat = errors.New("unknown puzzle format")
)

// ParseError describes why a puzzle document could not be parsed.
// Err always wraps one of the sentinel errors above.
type ParseError struct {
	Source string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Source != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %v", e.Source, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d:%d: %v", e.Line, e.Column, e.Err)
	case e.Source != "":
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// nodeError builds a ParseError located at n.
func nodeError(n *yaml.Node, sentinel error, format string, args ...any) *ParseError {
	pe := &ParseError{Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
	if n != nil {
		pe.Line = n.Line
		pe.Column = n.Column
	}
	return pe
}

// withSource attaches a source name to err when it is a ParseError.
func withSource(err error, source string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Source == "" {
		pe.Source = source
	}
	return err
}
