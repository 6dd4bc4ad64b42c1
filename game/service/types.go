package service

import (
	"time"

	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/layout"
	"github.com/wricardo/tilematch/game/puzzle"
)

const (
	// ValidMessage is shown when every tile is matched
	ValidMessage = "Congratulations! Your solution is valid."
	// InvalidMessage is shown when at least one tile is unmatched
	InvalidMessage = "Uh oh! There's an issue with your solution :("
)

// PointerEvent is one step of the drag interaction
type PointerEvent string

const (
	PointerPress   PointerEvent = "press"
	PointerMove    PointerEvent = "move"
	PointerRelease PointerEvent = "release"
)

// PuzzleDetail is a catalog entry with its definition
type PuzzleDetail struct {
	Info       catalog.Info             `json:"info"`
	Definition *puzzle.PuzzleDefinition `json:"definition"`
}

// LayoutResult is the initial placement of a catalog puzzle
type LayoutResult struct {
	Puzzle         string        `json:"puzzle"`
	ViewportHeight float64       `json:"viewport_height"`
	Layout         layout.Result `json:"layout"`
}

// ParseResult is a parsed document and its lint report
type ParseResult struct {
	Definition *puzzle.PuzzleDefinition `json:"definition"`
	Report     puzzle.Report            `json:"report"`
}

// SessionInfo provides information about a play session
type SessionInfo struct {
	ID             string        `json:"id"`
	Puzzle         string        `json:"puzzle"`
	ViewportHeight float64       `json:"viewport_height"`
	FellBack       bool          `json:"fell_back,omitempty"` // requested puzzle was missing
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	State          *engine.State `json:"state"`
}

// PointerResult reports what a pointer event did
type PointerResult struct {
	Event   PointerEvent  `json:"event"`
	Shape   int           `json:"shape"` // -1 when no shape was involved
	Handled bool          `json:"handled"`
	State   *engine.State `json:"state"`
}

// ValidationResult is the outcome of checking a session's arrangement
type ValidationResult struct {
	Valid       bool                 `json:"valid"`
	Message     string               `json:"message"`
	Unsatisfied []engine.Unsatisfied `json:"unsatisfied"`
}

// HintResult suggests the next move towards a solution
type HintResult struct {
	Found   bool      `json:"found"`
	Shape   int       `json:"shape"`
	World   geom.Vec2 `json:"world"`
	Solved  bool      `json:"solved"`
	Message string    `json:"message"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}
