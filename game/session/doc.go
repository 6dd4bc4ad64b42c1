// Package session provides in-memory play session storage.
//
// A session is one displayed puzzle instance for one host or player. The
// Manager is safe for concurrent use and implements service.SessionManager.
// IDs are random UUIDs unless the caller picks one, and lookups ignore case.
// Sessions are never written to disk; idle ones are removed with
// CleanupExpiredSessions.
//
// Usage:
//
//	manager := session.NewManager(logger)
//
//	sess, err := manager.Create("", service.Game{Puzzle: name, Engine: p})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drop sessions idle for more than an hour
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
