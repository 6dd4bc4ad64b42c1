// Package websocket pushes session events to browser and agent clients.
//
// A central Hub owns every connection. Clients attach to one session with
// the ?session= query parameter on /ws and only receive that session's
// messages. The stream is one-way; anything a client sends is ignored.
//
// Message Protocol:
//
// Each frame is one JSON Message:
//   - state_update: the session's engine.State after a drag, move or reset
//   - validated: the ValidationResult of an explicit check
//   - puzzle_selected: the new SessionInfo after switching puzzles
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(id, state)
package websocket
