// Package mcp provides a Model Context Protocol server for the Greedy Grid Game.
//
// The server is a thin client of the REST API: every tool call becomes one or
// two HTTP requests against /api and the JSON response is rendered as text for
// the agent.
//
// MCP Tools:
//   - create_session: Create a session from a preset, with optional overrides
//   - list_sessions / get_session: Inspect sessions
//   - game_state: Board with the player in [n] and visited cells in (n)
//   - valid_moves: Neighbouring cells with their cost
//   - move: Single move by direction or target cell
//   - bulk_move: Several moves in sequence
//   - new_game: Start over in the same session
//   - move_history: Paginated move history
//   - best_path: Optimal score and route
//   - list_configs: Available presets
//   - game_instructions: Rules and strategy tips
//
// Transport Modes:
//   - Stdio: greedygrid mcp serves the tools over stdin/stdout
//   - HTTP: the server mounts the same tools on /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
