// Package api provides HTTP REST API handlers for the Greedy Grid Game.
//
// The api package implements:
//   - Session management endpoints
//   - Move and bulk move execution
//   - Board queries (valid moves, best path, move history)
//   - Binary save download and upload
//   - Preset listing and creation
//   - WebSocket upgrade handling, health and metrics
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session and start its first game
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&config=ID)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Move by direction or target cell
//   - POST /api/sessions/{id}/bulk-move - Up to 100 moves in order
//   - POST /api/sessions/{id}/new-game - Restart with the session preset or overrides
//   - GET /api/sessions/{id}/history - Paginated move history (?page=&limit=&order=)
//   - GET /api/sessions/{id}/valid-moves - Cells reachable with the next move
//   - GET /api/sessions/{id}/best-path - Optimal score and one optimal route
//
// Save Files:
//   - GET /api/sessions/{id}/save - Download the game as a .grid file
//   - POST /api/sessions/{id}/load - Replace the game with an uploaded .grid file
//
// Configuration:
//   - GET /api/configs - List presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /ws?session={id} - Live updates for one session
//   - GET /health - Liveness probe
//   - GET /metrics - Prometheus metrics, when enabled
//
// Request Format:
//
// Session creation and new games accept optional overrides:
//
//	{"config_id": "hard", "grid_size": 12, "difficulty": "medium", "seed": 42}
//
// Moves name either a direction or an adjacent target cell. Bulk moves take a
// list mixing both forms:
//
//	{"direction": "down"}
//	{"target": {"x": 1, "y": 0}}
//	{"moves": ["down", "right", {"target": {"x": 2, "y": 1}}]}
//
// Usage:
//
//	server := api.NewServer(gameService, hub, api.WithMetrics(m))
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message",
//	  "code": 400
//	}
//
// Unknown sessions and presets map to 404, rejected moves to 422, moves before
// a game starts to 409, and malformed input or corrupt saves to 400.
package api
