package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/layout"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/game/solver"
	"github.com/wricardo/tilematch/internal/logging"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownPointer  = errors.New("unknown pointer event")
	ErrBadViewport     = errors.New("viewport height must be positive")
)

// DefaultHintNodes bounds the search behind Hint.
const DefaultHintNodes = 200000

// Options configures the service
type Options struct {
	Layout         layout.Options
	ViewportHeight float64 // used when a call passes zero
	HintNodes      int
	Logger         *log.Logger
}

// puzzleServiceImpl implements the PuzzleService interface
type puzzleServiceImpl struct {
	sessions SessionManager
	puzzles  PuzzleCatalog
	opts     Options
	logger   *log.Logger
	mu       sync.RWMutex
}

// NewPuzzleService creates a new puzzle service instance
func NewPuzzleService(sessions SessionManager, puzzles PuzzleCatalog, opts Options) PuzzleService {
	if opts.Layout.TileSide <= 0 {
		opts.Layout = layout.DefaultOptions()
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = solver.DefaultViewportHeight
	}
	if opts.HintNodes <= 0 {
		opts.HintNodes = DefaultHintNodes
	}
	return &puzzleServiceImpl{
		sessions: sessions,
		puzzles:  puzzles,
		opts:     opts,
		logger:   logging.Named(opts.Logger, "service"),
	}
}

func (s *puzzleServiceImpl) viewport(vh float64) (float64, error) {
	switch {
	case vh == 0:
		return s.opts.ViewportHeight, nil
	case vh < 0:
		return 0, fmt.Errorf("%w: %g", ErrBadViewport, vh)
	}
	return vh, nil
}

// ListPuzzles returns every catalog entry
func (s *puzzleServiceImpl) ListPuzzles(ctx context.Context) ([]catalog.Info, error) {
	return s.puzzles.List(), nil
}

// GetPuzzle returns one catalog entry and its definition
func (s *puzzleServiceImpl) GetPuzzle(ctx context.Context, name string) (*PuzzleDetail, error) {
	info, err := s.puzzles.Describe(name)
	if err != nil {
		return nil, err
	}
	def, err := s.puzzles.Get(name)
	if err != nil {
		return nil, err
	}
	return &PuzzleDetail{Info: info, Definition: def}, nil
}

// LayoutPuzzle computes the initial placement of a catalog puzzle
func (s *puzzleServiceImpl) LayoutPuzzle(ctx context.Context, name string, viewportHeight float64) (*LayoutResult, error) {
	vh, err := s.viewport(viewportHeight)
	if err != nil {
		return nil, err
	}
	def, err := s.puzzles.Get(name)
	if err != nil {
		return nil, err
	}
	return &LayoutResult{
		Puzzle:         name,
		ViewportHeight: vh,
		Layout:         layout.Compute(def, vh, s.opts.Layout),
	}, nil
}

// ParsePuzzle parses a document without adding it to the catalog
func (s *puzzleServiceImpl) ParsePuzzle(ctx context.Context, data []byte, format puzzle.Format) (*ParseResult, error) {
	def, err := puzzle.Load("uploaded", data, format)
	if err != nil {
		return nil, err
	}
	return &ParseResult{Definition: def, Report: puzzle.Check(def)}, nil
}

// SavePuzzle stores a definition in the catalog
func (s *puzzleServiceImpl) SavePuzzle(ctx context.Context, name string, def *puzzle.PuzzleDefinition) error {
	if err := s.puzzles.Save(name, def); err != nil {
		return fmt.Errorf("failed to save puzzle %s: %w", name, err)
	}
	s.logger.Info("puzzle saved", "name", name)
	return nil
}

// newGame resolves name in the catalog and builds a fresh instance
func (s *puzzleServiceImpl) newGame(name string, vh float64) (Game, bool, error) {
	def, resolved, fellBack, err := s.puzzles.Resolve(name)
	if err != nil {
		return Game{}, false, err
	}
	eng, err := engine.New(def, vh, s.opts.Layout)
	if err != nil {
		return Game{}, false, fmt.Errorf("failed to create puzzle %s: %w", resolved, err)
	}
	return Game{Puzzle: resolved, ViewportHeight: vh, Engine: eng}, fellBack, nil
}

// CreateSession creates a new play session showing the named puzzle
func (s *puzzleServiceImpl) CreateSession(ctx context.Context, name string, viewportHeight float64) (*SessionInfo, error) {
	vh, err := s.viewport(viewportHeight)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	game, fellBack, err := s.newGame(name, vh)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create("", game)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Debug("session created", "id", sess.ID, "puzzle", game.Puzzle)

	info := sessionInfo(sess)
	info.FellBack = fellBack
	return info, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Puzzle:         sess.Puzzle,
		ViewportHeight: sess.ViewportHeight,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Engine.State(),
	}
}

// session fetches a session and marks it accessed. Callers hold s.mu for
// writing since the access time is read by sessionInfo.
func (s *puzzleServiceImpl) session(id string) (*Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.sessions.UpdateLastAccessed(id)
	return sess, nil
}

// GetSession retrieves session information
func (s *puzzleServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *puzzleServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *puzzleServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// SelectPuzzle replaces the session's puzzle. The previous instance and its
// drag state are discarded.
func (s *puzzleServiceImpl) SelectPuzzle(ctx context.Context, sessionID, name string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.swap(sess, name)
}

// StepPuzzle moves the session delta places through the catalog
func (s *puzzleServiceImpl) StepPuzzle(ctx context.Context, sessionID string, delta int) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	name, err := s.puzzles.Neighbor(sess.Puzzle, delta)
	if err != nil {
		return nil, err
	}
	return s.swap(sess, name)
}

func (s *puzzleServiceImpl) swap(sess *Session, name string) (*SessionInfo, error) {
	game, fellBack, err := s.newGame(name, sess.ViewportHeight)
	if err != nil {
		return nil, err
	}
	sess.Game = game
	s.logger.Debug("puzzle selected", "session", sess.ID, "puzzle", game.Puzzle, "fell_back", fellBack)

	info := sessionInfo(sess)
	info.FellBack = fellBack
	return info, nil
}

// Pointer feeds one pointer event into the session's drag machine
func (s *puzzleServiceImpl) Pointer(ctx context.Context, sessionID string, event PointerEvent, pointer geom.Vec2) (*PointerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	p := sess.Engine
	result := &PointerResult{Event: event, Shape: -1}
	switch event {
	case PointerPress:
		if id, ok := p.PressAt(pointer); ok {
			result.Shape, result.Handled = id, true
		}
	case PointerMove:
		p.Update(pointer)
		if dragging := p.Dragging(); len(dragging) > 0 {
			result.Shape, result.Handled = dragging[0], true
		}
	case PointerRelease:
		if released := p.ReleaseAll(pointer); len(released) > 0 {
			result.Shape, result.Handled = released[0], true
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPointer, event)
	}

	result.State = p.State()
	return result, nil
}

// MoveShape commits a shape directly at world, bypassing the drag machine
func (s *puzzleServiceImpl) MoveShape(ctx context.Context, sessionID string, shape int, world geom.Vec2) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.MoveShape(shape, world); err != nil {
		return nil, err
	}
	return sess.Engine.State(), nil
}

// Reset returns every shape to its layout position
func (s *puzzleServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Engine.Reset()
	return sess.Engine.State(), nil
}

// Validate checks the session's current arrangement
func (s *puzzleServiceImpl) Validate(ctx context.Context, sessionID string) (*ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	unsatisfied := sess.Engine.Diagnose()
	result := &ValidationResult{
		Valid:       sess.Engine.Validate(),
		Unsatisfied: unsatisfied,
	}
	if result.Valid {
		result.Message = ValidMessage
	} else {
		result.Message = InvalidMessage
	}
	s.logger.Debug("validated", "session", sessionID, "valid", result.Valid, "unsatisfied", len(unsatisfied))
	return result, nil
}

// Hint suggests one move that leads towards a solution
func (s *puzzleServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.Validate() {
		return &HintResult{Solved: true, Message: ValidMessage}, nil
	}

	timer := logging.Start(s.logger)
	sol, err := solver.SolvePuzzle(ctx, sess.Engine, solver.Options{MaxNodes: s.opts.HintNodes})
	switch {
	case errors.Is(err, solver.ErrNoSolution), errors.Is(err, solver.ErrNodeLimit):
		timer.Done("hint search failed", "session", sessionID, "err", err)
		return &HintResult{Message: err.Error()}, nil
	case err != nil:
		return nil, err
	}
	timer.Done("hint search", "session", sessionID, "nodes", sol.Nodes)

	for _, m := range sol.Moves {
		if pos, ok := sess.Engine.ShapePosition(m.Shape); ok && pos != m.World {
			return &HintResult{
				Found:   true,
				Shape:   m.Shape,
				World:   m.World,
				Message: fmt.Sprintf("move shape %d to %s", m.Shape, m.World),
			}, nil
		}
	}
	return &HintResult{Message: "every shape is already in place"}, nil
}

// GetMoveHistory returns paginated move history
func (s *puzzleServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}
