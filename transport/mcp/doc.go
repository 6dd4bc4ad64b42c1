// Package mcp exposes the puzzle game to Model Context Protocol clients.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// the api package, and the JSON response is rendered as text for the agent.
// Session state therefore lives in the HTTP server, and several agents can
// share it with browser players.
//
// Tools:
//   - list_puzzles, get_puzzle: browse the catalog (get_puzzle returns YAML)
//   - create_session, list_sessions, session_state, select_puzzle
//   - move_shape: place a shape at a world position
//   - drag_shape: press, move and release the pointer
//   - reset_puzzle, move_history
//   - validate: lists unmatched tiles when the arrangement is wrong
//   - hint: next solver move
//
// session_state draws a cell map of the board:
//
//	#  cell holds both tile types
//	o  background tile not yet covered
//	+  foreground tile off target
//	.  empty
//
// Transport:
//
// Serve GetMCPServer over stdio with server.ServeStdio, or mount HTTPHandler
// to accept single JSON-RPC messages over POST.
package mcp
