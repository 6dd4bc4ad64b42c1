package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/game/service"
	"github.com/wricardo/tilematch/internal/logging"
	"github.com/wricardo/tilematch/transport/websocket"
)

// maxDocumentSize bounds uploaded puzzle documents.
const maxDocumentSize = 1 << 20

// Server represents the REST API server
type Server struct {
	service service.PuzzleService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *log.Logger
}

// NewServer creates a new API server. hub and logger may be nil.
func NewServer(puzzleService service.PuzzleService, hub *websocket.Hub, logger *log.Logger) *Server {
	s := &Server{
		service: puzzleService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logging.Named(logger, "api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Catalog (parse must be registered before {name})
	api.HandleFunc("/puzzles", s.handleListPuzzles).Methods("GET")
	api.HandleFunc("/puzzles/parse", s.handleParsePuzzle).Methods("POST")
	api.HandleFunc("/puzzles/{name:.+}/layout", s.handleLayoutPuzzle).Methods("GET")
	api.HandleFunc("/puzzles/{name:.+}", s.handleGetPuzzle).Methods("GET")
	api.HandleFunc("/puzzles/{name:.+}", s.handleSavePuzzle).Methods("PUT")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/puzzle", s.handleSelectPuzzle).Methods("POST")

	// Interaction
	api.HandleFunc("/sessions/{id}/pointer", s.handlePointer).Methods("POST")
	api.HandleFunc("/sessions/{id}/shapes/{shape:[0-9]+}", s.handleMoveShape).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/validate", s.handleValidate).Methods("POST")
	api.HandleFunc("/sessions/{id}/hint", s.handleHint).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handle mounts an extra handler, such as the MCP endpoint, on the router
func (s *Server) Handle(path string, h http.Handler) {
	s.router.Handle(path, h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors to HTTP status codes
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}

	body := map[string]interface{}{"error": err.Error()}
	var perr *puzzle.ParseError
	if errors.As(err, &perr) {
		body["line"] = perr.Line
		body["column"] = perr.Column
	}
	respondJSON(w, status, body)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case puzzle.IsParseError(err),
		errors.Is(err, puzzle.ErrUnknownFormat),
		errors.Is(err, engine.ErrInvalidDefinition),
		errors.Is(err, engine.ErrNotDraggable),
		errors.Is(err, service.ErrBadViewport),
		errors.Is(err, service.ErrUnknownPointer):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrPuzzleNotFound),
		errors.Is(err, catalog.ErrEmptyCatalog),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, engine.ErrShapeNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, catalog.ErrDuplicatePuzzle):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func queryViewport(r *http.Request) (float64, error) {
	v := r.URL.Query().Get("viewport")
	if v == "" {
		return 0, nil
	}
	vh, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", service.ErrBadViewport, v)
	}
	return vh, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Catalog Handlers

func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	puzzles, err := s.service.ListPuzzles(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(puzzles),
		"puzzles": puzzles,
	})
}

func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	detail, err := s.service.GetPuzzle(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleLayoutPuzzle(w http.ResponseWriter, r *http.Request) {
	vh, err := queryViewport(r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	result, err := s.service.LayoutPuzzle(r.Context(), mux.Vars(r)["name"], vh)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// readDocument reads a raw puzzle document and its format from ?format=
func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, puzzle.Format, error) {
	format, err := puzzle.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		return nil, 0, err
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read request: %w", err)
	}
	return data, format, nil
}

func (s *Server) handleParsePuzzle(w http.ResponseWriter, r *http.Request) {
	data, format, err := readDocument(w, r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	result, err := s.service.ParsePuzzle(r.Context(), data, format)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSavePuzzle(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	data, format, err := readDocument(w, r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	def, err := puzzle.Load(name, data, format)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if err := s.service.SavePuzzle(r.Context(), name, def); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Puzzle saved successfully",
		"name":    name,
	})
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Puzzle         string  `json:"puzzle,omitempty"`
		ViewportHeight float64 `json:"viewport_height,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	session, err := s.service.CreateSession(r.Context(), req.Puzzle, req.ViewportHeight)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

func (s *Server) handleSelectPuzzle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Puzzle string `json:"puzzle"`
		Step   int    `json:"step,omitempty"` // used when puzzle is empty
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		session *service.SessionInfo
		err     error
	)
	if req.Puzzle == "" && req.Step != 0 {
		session, err = s.service.StepPuzzle(r.Context(), sessionID, req.Step)
	} else {
		session, err = s.service.SelectPuzzle(r.Context(), sessionID, req.Puzzle)
	}
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventPuzzleSelected, session)
	}

	respondJSON(w, http.StatusOK, session)
}

// Interaction Handlers

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Event string  `json:"event"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Pointer(r.Context(), sessionID, service.PointerEvent(req.Event), geom.V(req.X, req.Y))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil && result.Handled {
		s.hub.BroadcastToSession(sessionID, result.State)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleMoveShape(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]
	shape, _ := strconv.Atoi(vars["shape"])

	var req struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.X == nil || req.Y == nil {
		respondError(w, http.StatusBadRequest, "Request body must contain x and y")
		return
	}

	state, err := s.service.MoveShape(r.Context(), sessionID, shape, geom.V(*req.X, *req.Y))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}

	s.logger.Debug("shape moved", "session", sessionID, "shape", shape, "x", *req.X, "y", *req.Y)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Puzzle reset successfully",
		"state":   state,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Validate(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventValidated, result)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Hint(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusServiceUnavailable)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}
