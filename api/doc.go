// Package api provides the HTTP REST adapter over service.PuzzleService.
//
// Endpoints:
//
// Catalog:
//   - GET /api/puzzles - List puzzles
//   - GET /api/puzzles/{name} - Puzzle definition and stats
//   - GET /api/puzzles/{name}/layout?viewport=720 - Initial placement
//   - POST /api/puzzles/parse?format=yaml|txt - Parse and lint a raw document
//   - PUT /api/puzzles/{name}?format=yaml|txt - Save into a directory catalog
//
// Sessions:
//   - POST /api/sessions - Create ({"puzzle": "...", "viewport_height": 720})
//   - GET /api/sessions - List (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session with engine state
//   - DELETE /api/sessions/{id} - Delete
//   - POST /api/sessions/{id}/puzzle - Select ({"puzzle": "..."} or {"step": 1})
//
// Interaction:
//   - POST /api/sessions/{id}/pointer - {"event": "press|move|release", "x": 0, "y": 0}
//   - POST /api/sessions/{id}/shapes/{shape} - Move a shape to {"x": 0, "y": 0}
//   - POST /api/sessions/{id}/reset - Restore layout positions
//   - POST /api/sessions/{id}/validate - Check the arrangement
//   - GET /api/sessions/{id}/hint - Next move from the solver
//   - GET /api/sessions/{id}/history - Committed moves (?page=&limit=&order=)
//
// WebSocket:
//   - GET /ws?session={id} - Event stream, see package websocket
//
// Errors:
//
// Failures are returned as {"error": "..."}. Parse errors also carry "line"
// and "column". Malformed documents and invalid requests are 400, unknown
// puzzles, sessions and shapes are 404, saving to an embedded catalog is 403,
// and anything else is 500.
package api
