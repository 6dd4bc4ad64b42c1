package service

import (
	"context"
	"time"

	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
)

// PuzzleService defines all puzzle-related operations
type PuzzleService interface {
	// Catalog
	ListPuzzles(ctx context.Context) ([]catalog.Info, error)
	GetPuzzle(ctx context.Context, name string) (*PuzzleDetail, error)
	LayoutPuzzle(ctx context.Context, name string, viewportHeight float64) (*LayoutResult, error)
	ParsePuzzle(ctx context.Context, data []byte, format puzzle.Format) (*ParseResult, error)
	SavePuzzle(ctx context.Context, name string, def *puzzle.PuzzleDefinition) error

	// Session Management
	CreateSession(ctx context.Context, name string, viewportHeight float64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SelectPuzzle(ctx context.Context, sessionID, name string) (*SessionInfo, error)
	StepPuzzle(ctx context.Context, sessionID string, delta int) (*SessionInfo, error)

	// Interaction
	Pointer(ctx context.Context, sessionID string, event PointerEvent, pointer geom.Vec2) (*PointerResult, error)
	MoveShape(ctx context.Context, sessionID string, shape int, world geom.Vec2) (*engine.State, error)
	Reset(ctx context.Context, sessionID string) (*engine.State, error)

	// Checking
	Validate(ctx context.Context, sessionID string) (*ValidationResult, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, game Game) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// PuzzleCatalog is the read side of the puzzle catalog plus saving
type PuzzleCatalog interface {
	List() []catalog.Info
	Describe(name string) (catalog.Info, error)
	Get(name string) (*puzzle.PuzzleDefinition, error)
	Resolve(name string) (*puzzle.PuzzleDefinition, string, bool, error)
	Neighbor(name string, delta int) (string, error)
	Save(name string, def *puzzle.PuzzleDefinition) error
}

// Game is the puzzle instance displayed by a session
type Game struct {
	Puzzle         string // catalog name
	ViewportHeight float64
	Engine         *engine.Puzzle
}

// Session represents an active play session
type Session struct {
	ID string
	Game
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
