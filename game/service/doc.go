// Package service provides the orchestration layer between hosts and the
// puzzle engine.
//
// The service package implements:
//   - Catalog browsing, layout previews and document parsing
//   - Session lifecycle and puzzle selection
//   - Pointer-driven dragging and direct moves
//   - Validation with per-tile diagnostics
//   - Solver-backed hints and move history
//
// Core Interfaces:
//
// PuzzleService is the interface every host adapter (REST, WebSocket, MCP and
// the terminal UI) talks to. SessionManager stores sessions and PuzzleCatalog
// supplies definitions; session.Manager and catalog.Catalog implement them.
//
// Concurrency:
//
// Engine instances are not safe for concurrent use. The service serializes
// access to them, so hosts may call it from any goroutine.
//
// Usage:
//
//	svc := service.NewPuzzleService(session.NewManager(logger), cat, service.Options{Logger: logger})
//
//	sess, err := svc.CreateSession(ctx, "intro", 720)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	svc.Pointer(ctx, sess.ID, service.PointerPress, geom.V(60, 60))
//	svc.Pointer(ctx, sess.ID, service.PointerMove, geom.V(910, 60))
//	svc.Pointer(ctx, sess.ID, service.PointerRelease, geom.V(910, 60))
//
//	res, _ := svc.Validate(ctx, sess.ID)
//	fmt.Println(res.Message)
package service
