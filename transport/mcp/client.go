package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/game/service"
)

// Version is reported to MCP clients
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Match",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Match - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Every puzzle has background shapes (fixed targets) and draggable shapes. Move the
draggable shapes so that every tile shares its grid cell with at least one tile
of the opposite type. Then call validate.

COORDINATES:
Positions are world pixels. A grid cell is tile_side pixels wide (usually 100),
and a shape's position is the top-left corner of its local (0,0) tile. Positions
snap to tile_side/10.

AVAILABLE TOOLS:
- list_puzzles / get_puzzle: browse the catalog
- create_session / list_sessions / session_state: manage play sessions
- select_puzzle: switch a session to another puzzle
- move_shape: place a shape at a world position
- drag_shape: press, move and release the pointer like a player would
- validate: check the arrangement and list unmatched tiles
- hint: ask the solver for the next move
- reset_puzzle / move_history`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Catalog
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_puzzles",
		Description: "List the puzzles in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPuzzles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_puzzle",
		Description: "Show a puzzle definition as YAML",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Catalog name of the puzzle",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleGetPuzzle)

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new play session, optionally choosing the puzzle",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"puzzle": map[string]interface{}{
					"type":        "string",
					"description": "Catalog name of the puzzle (optional, unknown names fall back to the default)",
				},
				"viewport_height": numberProp("Viewport height in pixels used for the initial layout (optional)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active play sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_state",
		Description: "Show the shapes, their positions and a cell map of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSessionState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_puzzle",
		Description: "Switch a session to another puzzle, discarding the current arrangement",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"puzzle": map[string]interface{}{
					"type":        "string",
					"description": "Catalog name of the puzzle",
				},
				"step": numberProp("Move this many places through the catalog instead of naming a puzzle"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSelectPuzzle)

	// Interaction
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_shape",
		Description: "Place a draggable shape at a world position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"shape":      numberProp("Shape ID"),
				"x":          numberProp("World x of the shape origin"),
				"y":          numberProp("World y of the shape origin"),
			},
			Required: []string{"session_id", "shape", "x", "y"},
		},
	}, c.handleMoveShape)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drag_shape",
		Description: "Press the pointer at one point, drag it to another and release",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"from_x":     numberProp("Pointer x at press"),
				"from_y":     numberProp("Pointer y at press"),
				"to_x":       numberProp("Pointer x at release"),
				"to_y":       numberProp("Pointer y at release"),
			},
			Required: []string{"session_id", "from_x", "from_y", "to_x", "to_y"},
		},
	}, c.handleDragShape)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_puzzle",
		Description: "Return every shape to its starting position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	// Checking
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "validate",
		Description: "Check whether every tile is matched by a tile of the opposite type",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleValidate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Ask the solver for the next move towards a solution",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "List committed moves, most recent first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"page":       numberProp("Page number (default 1)"),
				"limit":      numberProp("Moves per page (default 20)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(id string, parts ...string) string {
	return "/api/sessions/" + url.PathEscape(id) + strings.Join(parts, "")
}

func puzzlePath(name string) string {
	segs := strings.Split(name, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "/api/puzzles/" + strings.Join(segs, "/")
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func argNumber(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func requireNumbers(args map[string]interface{}, keys ...string) ([]float64, error) {
	out := make([]float64, len(keys))
	for i, k := range keys {
		v, ok := argNumber(args, k)
		if !ok {
			return nil, fmt.Errorf("%s must be a number", k)
		}
		out[i] = v
	}
	return out, nil
}

// Tool handlers

func (c *Client) handleListPuzzles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int            `json:"count"`
		Puzzles []catalog.Info `json:"puzzles"`
	}
	if err := c.apiCall(ctx, "GET", "/api/puzzles", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPuzzleList(response.Puzzles)), nil
}

func (c *Client) handleGetPuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := argString(arguments(request), "name")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	var detail service.PuzzleDetail
	if err := c.apiCall(ctx, "GET", puzzlePath(name), nil, &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := puzzle.Encode(detail.Definition)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result := fmt.Sprintf("Puzzle %s (%d shapes, %d foreground / %d background tiles)\n\n%s",
		detail.Info.Name, detail.Info.Shapes, detail.Info.ForegroundTiles, detail.Info.BackgroundTiles, doc)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]interface{}{}
	if name := argString(args, "puzzle"); name != "" {
		body["puzzle"] = name
	}
	if vh, ok := argNumber(args, "viewport_height"); ok {
		body["viewport_height"] = vh
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		valid := ""
		if s.State != nil && s.State.Valid {
			valid = ", solved"
		}
		fmt.Fprintf(&b, "- %s (Puzzle: %s, Created: %s%s)\n",
			s.ID, s.Puzzle, s.CreatedAt.Format("15:04:05"), valid)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleSessionState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleSelectPuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]interface{}{"puzzle": argString(args, "puzzle")}
	if step, ok := argNumber(args, "step"); ok {
		body["step"] = int(step)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", sessionPath(argString(args, "session_id"), "/puzzle"), body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleMoveShape(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	nums, err := requireNumbers(args, "shape", "x", "y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path := sessionPath(argString(args, "session_id"), fmt.Sprintf("/shapes/%d", int(nums[0])))
	var state engine.State
	if err := c.apiCall(ctx, "POST", path, map[string]float64{"x": nums[1], "y": nums[2]}, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Moved shape %d.\n\n%s", int(nums[0]), formatState(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDragShape(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	nums, err := requireNumbers(args, "from_x", "from_y", "to_x", "to_y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := sessionPath(argString(args, "session_id"), "/pointer")

	events := []map[string]interface{}{
		{"event": "press", "x": nums[0], "y": nums[1]},
		{"event": "move", "x": nums[2], "y": nums[3]},
		{"event": "release", "x": nums[2], "y": nums[3]},
	}
	var last service.PointerResult
	for i, ev := range events {
		if err := c.apiCall(ctx, "POST", path, ev, &last); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if i == 0 && !last.Handled {
			return mcp.NewToolResultText(fmt.Sprintf("No draggable shape at (%g, %g).", nums[0], nums[1])), nil
		}
	}

	result := fmt.Sprintf("Dragged shape %d.\n\n%s", last.Shape, formatState(last.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Message string       `json:"message"`
		State   engine.State `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(argString(arguments(request), "session_id"), "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message + "\n\n" + formatState(&response.State)), nil
}

func (c *Client) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result service.ValidationResult
	if err := c.apiCall(ctx, "POST", sessionPath(argString(arguments(request), "session_id"), "/validate"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatValidation(&result)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var hint service.HintResult
	if err := c.apiCall(ctx, "GET", sessionPath(argString(arguments(request), "session_id"), "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !hint.Found {
		return mcp.NewToolResultText(hint.Message), nil
	}
	result := fmt.Sprintf("Hint: move shape %d to (%g, %g).", hint.Shape, hint.World.X, hint.World.Y)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	q := url.Values{}
	if page, ok := argNumber(args, "page"); ok {
		q.Set("page", fmt.Sprint(int(page)))
	}
	if limit, ok := argNumber(args, "limit"); ok {
		q.Set("limit", fmt.Sprint(int(limit)))
	}

	path := sessionPath(argString(args, "session_id"), "/history")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}
