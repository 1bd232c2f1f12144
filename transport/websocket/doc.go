// Package websocket provides live game updates over WebSocket.
//
// Architecture:
//
// A central Hub owns all connections. Each client gets a read goroutine that
// keeps the connection alive and a write goroutine that delivers queued
// messages and pings. Register, unregister and broadcast requests flow
// through the hub's event loop.
//
// Message Protocol:
//
// The server only writes. Every frame is one JSON Message:
//
//	{"session_id": "k3f9a2zq", "event": "state_update",
//	 "game_state": {...}, "events": [{"type": "move", ...}]}
//
// Hub implements service.Notifier, so every mutating game service call
// produces one state_update carrying the new state and the engine events
// that led to it. BroadcastEvent sends other events such as session_deleted.
//
// Session Integration:
//
// Clients pick a session with a query parameter (/ws?session=k3f9a2zq) and
// only receive messages for that session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	svc := service.NewGameService(sessions, configs, service.WithNotifier(hub))
//
// Notify never blocks; when the queue is full the message is dropped and
// logged. Clients that cannot keep up are disconnected.
package websocket
