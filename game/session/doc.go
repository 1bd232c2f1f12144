// Package session provides session management for the Greedy Grid Game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Session ID generation and validation
//   - File persistence in the binary save format
//   - Expiry of idle sessions
//   - Pruning of sessions whose save file was removed
//
// Core Types:
//
// Manager keeps sessions in memory and implements service.SessionManager.
// FilePersistence stores one <id>.grid file per session and Watcher follows
// the sessions directory for removed files.
//
// Session Identifiers:
//
// Generated IDs are 8 lowercase alphanumeric characters drawn with nanoid.
// Caller-supplied IDs may use letters, digits, '-' and '_' and are folded to
// lowercase, so IDs are case-insensitive and always safe as file names.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if _, err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", config, "classic")
//
// Cleanup:
//
// CleanupExpiredSessions drops idle sessions from memory. Their save files are
// kept, so a later Get brings them back.
package session
