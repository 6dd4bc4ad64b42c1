package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/tilematch/api"
	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/game/service"
	"github.com/wricardo/tilematch/game/session"
)

// newTestAPI starts the real REST API over a small catalog
func newTestAPI(t *testing.T) (*httptest.Server, service.PuzzleService) {
	t.Helper()
	cat, err := catalog.New(fstest.MapFS{
		"ab.txt":   {Data: []byte("AB\nAB\nA ")},
		"line.txt": {Data: []byte("AA")},
	}, catalog.Options{})
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	svc := service.NewPuzzleService(session.NewManager(nil), cat, service.Options{})
	srv := httptest.NewServer(api.NewServer(svc, nil, nil))
	t.Cleanup(srv.Close)
	return srv, svc
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text, result.IsError
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	t.Run("decodes result", func(t *testing.T) {
		srv, _ := newTestAPI(t)
		client := NewClient(srv.URL)

		var health map[string]string
		if err := client.apiCall(context.Background(), "GET", "/api/health", nil, &health); err != nil {
			t.Fatalf("apiCall failed: %v", err)
		}
		if health["status"] != "healthy" {
			t.Errorf("Unexpected health %v", health)
		}
	})

	t.Run("error body", func(t *testing.T) {
		srv, _ := newTestAPI(t)
		client := NewClient(srv.URL)

		err := client.apiCall(context.Background(), "GET", "/api/sessions/nope", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "session not found") {
			t.Errorf("Expected session not found, got %v", err)
		}
	})

	t.Run("plain HTTP error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer srv.Close()

		err := NewClient(srv.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "API error: 500") {
			t.Errorf("Expected API error, got %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
			t.Error("Expected error for unreachable server")
		}
	})
}

func TestClient_Catalog(t *testing.T) {
	srv, _ := newTestAPI(t)
	client := NewClient(srv.URL)

	text, isErr := call(t, client.handleListPuzzles, nil)
	if isErr || !strings.Contains(text, "Puzzles (2)") || !strings.Contains(text, "1. ab") {
		t.Errorf("Unexpected list: %s", text)
	}

	text, isErr = call(t, client.handleGetPuzzle, map[string]interface{}{"name": "line"})
	if isErr {
		t.Fatalf("get_puzzle failed: %s", text)
	}
	if !strings.Contains(text, "name: line") || !strings.Contains(text, "2 shapes") {
		t.Errorf("Expected YAML document, got: %s", text)
	}

	_, isErr = call(t, client.handleGetPuzzle, map[string]interface{}{})
	if !isErr {
		t.Error("Expected error without name")
	}
	text, isErr = call(t, client.handleGetPuzzle, map[string]interface{}{"name": "nope"})
	if !isErr || !strings.Contains(text, "puzzle not found") {
		t.Errorf("Expected puzzle not found, got: %s", text)
	}
}

func TestClient_Sessions(t *testing.T) {
	srv, svc := newTestAPI(t)
	client := NewClient(srv.URL)

	text, isErr := call(t, client.handleCreateSession, map[string]interface{}{"puzzle": "missing"})
	if isErr || !strings.Contains(text, "Puzzle: ab") || !strings.Contains(text, "using the default") {
		t.Errorf("Expected fallback session, got: %s", text)
	}

	sessions, _ := svc.ListSessions(context.Background())
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	id := sessions[0].ID

	text, _ = call(t, client.handleListSessions, nil)
	if !strings.Contains(text, "Active Sessions (1)") || !strings.Contains(text, id) {
		t.Errorf("Unexpected session list: %s", text)
	}

	text, _ = call(t, client.handleSessionState, map[string]interface{}{"session_id": id})
	if !strings.Contains(text, "[0] background") || !strings.Contains(text, "[1] draggable") {
		t.Errorf("Expected shapes in state, got: %s", text)
	}

	text, _ = call(t, client.handleSelectPuzzle, map[string]interface{}{"session_id": id, "step": float64(1)})
	if !strings.Contains(text, "Puzzle: line") {
		t.Errorf("Expected step to line, got: %s", text)
	}

	text, _ = call(t, client.handleSelectPuzzle, map[string]interface{}{"session_id": id, "puzzle": "ab"})
	if !strings.Contains(text, "Puzzle: ab") {
		t.Errorf("Expected ab selected, got: %s", text)
	}
}

func TestClient_PlayThrough(t *testing.T) {
	srv, svc := newTestAPI(t)
	client := NewClient(srv.URL)
	info, err := svc.CreateSession(context.Background(), "ab", 0)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	sid := map[string]interface{}{"session_id": info.ID}

	text, _ := call(t, client.handleValidate, sid)
	if !strings.Contains(text, service.InvalidMessage) || !strings.Contains(text, "Unmatched tiles") {
		t.Errorf("Expected invalid start, got: %s", text)
	}

	text, isErr := call(t, client.handleDragShape, map[string]interface{}{
		"session_id": info.ID, "from_x": 0.0, "from_y": 0.0, "to_x": 10.0, "to_y": 10.0,
	})
	if isErr || !strings.Contains(text, "No draggable shape") {
		t.Errorf("Expected empty press, got: %s", text)
	}

	text, isErr = call(t, client.handleDragShape, map[string]interface{}{
		"session_id": info.ID, "from_x": 60.0, "from_y": 60.0, "to_x": 910.0, "to_y": 60.0,
	})
	if isErr || !strings.Contains(text, "Dragged shape 1") || !strings.Contains(text, "[1] draggable, 3 tiles, at (900, 50)") {
		t.Errorf("Unexpected drag result: %s", text)
	}

	text, _ = call(t, client.handleHint, sid)
	if !strings.Contains(text, "Hint: move shape 2 to (1000, 50)") {
		t.Errorf("Unexpected hint: %s", text)
	}

	text, isErr = call(t, client.handleMoveShape, map[string]interface{}{
		"session_id": info.ID, "shape": 2.0, "x": 1000.0, "y": 50.0,
	})
	if isErr || !strings.Contains(text, "Status: SOLVED") {
		t.Errorf("Expected solved state, got: %s", text)
	}

	text, _ = call(t, client.handleValidate, sid)
	if text != service.ValidMessage {
		t.Errorf("Expected valid message, got: %s", text)
	}

	text, _ = call(t, client.handleMoveHistory, map[string]interface{}{"session_id": info.ID, "limit": 1.0})
	if !strings.Contains(text, "2 total moves") || !strings.Contains(text, "#2 shape 2") || !strings.Contains(text, "page 2") {
		t.Errorf("Unexpected history: %s", text)
	}

	text, _ = call(t, client.handleReset, sid)
	if !strings.Contains(text, "Status: unsolved") {
		t.Errorf("Expected reset state, got: %s", text)
	}
}

func TestClient_ToolErrors(t *testing.T) {
	srv, svc := newTestAPI(t)
	client := NewClient(srv.URL)
	info, _ := svc.CreateSession(context.Background(), "ab", 0)

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
		want    string
	}{
		{"unknown session", client.handleValidate, map[string]interface{}{"session_id": "nope"}, "session not found"},
		{"missing coordinates", client.handleMoveShape, map[string]interface{}{"session_id": info.ID, "shape": 1.0}, "x must be a number"},
		{"background shape", client.handleMoveShape, map[string]interface{}{"session_id": info.ID, "shape": 0.0, "x": 1.0, "y": 1.0}, "not draggable"},
		{"unknown shape", client.handleMoveShape, map[string]interface{}{"session_id": info.ID, "shape": 7.0, "x": 1.0, "y": 1.0}, "shape not found"},
		{"bad drag", client.handleDragShape, map[string]interface{}{"session_id": info.ID}, "from_x must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tt.handler, tt.args)
			if !isErr {
				t.Errorf("Expected tool error, got: %s", text)
			}
			if !strings.Contains(text, tt.want) {
				t.Errorf("Expected %q in %q", tt.want, text)
			}
		})
	}
}

func TestFormatBoard(t *testing.T) {
	state := &engine.State{
		TileSide: 100,
		Shapes: []engine.Shape{
			{ID: 0, Current: geom.V(0, 0), Tiles: []engine.Tile{
				{Local: geom.Pos(0, 0), Type: puzzle.Background},
				{Local: geom.Pos(1, 0), Type: puzzle.Background},
			}},
			{ID: 1, Draggable: true, Current: geom.V(0, 0), Tiles: []engine.Tile{
				{Local: geom.Pos(0, 0), Type: puzzle.Foreground},
				{Local: geom.Pos(0, 1), Type: puzzle.Foreground},
			}},
		},
	}

	want := "  origin cell (0, 0)\n  #o\n  +.\n"
	if got := formatBoard(state); got != want {
		t.Errorf("formatBoard() = %q, want %q", got, want)
	}

	state.Shapes[1].Current = geom.V(99999, 0)
	if got := formatBoard(state); got != "" {
		t.Errorf("Expected no board for a huge extent, got %q", got)
	}
}

func TestHTTPHandler(t *testing.T) {
	handler := NewClient("http://localhost:0").HTTPHandler()

	t.Run("initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`
		req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var resp map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Invalid JSON response: %v", err)
		}
		if !strings.Contains(w.Body.String(), "Tile Match") {
			t.Errorf("Expected server name in response, got %s", w.Body.String())
		}
	})

	t.Run("notification", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","method":"notifications/initialized"}`
		req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Errorf("Expected 202, got %d", w.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/mcp", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", w.Code)
		}
	})
}
