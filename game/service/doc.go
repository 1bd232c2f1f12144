// Package service provides the business logic layer for the Greedy Grid Game.
//
// The service package implements:
//   - Multi-session game management
//   - Preset resolution with per-game overrides (size, difficulty, seed)
//   - Move processing by direction or absolute target, singly or in bulk
//   - Save export and import through the binary codec
//   - Move history derived from the player path
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and persistence.
// ConfigManager manages game presets. Notifier receives every state change.
//
// Concurrency:
//
// A game engine is not safe for concurrent use, so the service serializes every
// call that touches an engine behind a single lock.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithNotifier(hub),
//		service.WithMetrics(metrics.New()),
//	)
//
//	info, err := gameService.CreateSession(ctx, service.GameOptions{ConfigID: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, service.MoveRequest{Direction: "down"})
//
// Every mutating call persists the session and returns the engine events it
// produced, each stamped with a UUID and the session ID.
package service
