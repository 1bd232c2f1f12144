package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/greedy-grid-game/game/engine"
	"github.com/wricardo/greedy-grid-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Greedy Grid Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Greedy Grid Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk from the top-left cell to the bottom-right cell of a square grid of costs.
Every cell you enter adds its cost to your score. You win when you arrive with a
score no higher than the best possible score for the board.

AVAILABLE TOOLS:
- create_session: Create a new game session (optional preset and overrides)
- list_sessions / get_session: Inspect sessions
- game_state: Current board, position, score and status
- valid_moves: Cells you can step onto next
- move: Single move by direction or target cell - requires intent explanation
- bulk_move: Several moves at once - requires intent explanation
- new_game: Start over in the same session
- move_history: View past moves
- best_path: Reveal the optimal score and route
- list_configs: List available presets
- game_instructions: Full rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func gameOptionProperties() map[string]interface{} {
	return map[string]interface{}{
		"config_id": map[string]interface{}{
			"type":        "string",
			"description": "Preset to use (see list_configs)",
		},
		"grid_size": map[string]interface{}{
			"type":        "integer",
			"minimum":     engine.MinGridSize,
			"maximum":     engine.MaxGridSize,
			"description": "Override the board size",
		},
		"difficulty": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"easy", "medium", "hard"},
			"description": "Override the difficulty",
		},
		"seed": map[string]interface{}{
			"type":        "integer",
			"description": "Seed for a reproducible board",
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session. Uses the default preset unless config_id or overrides are given.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: gameOptionProperties(),
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, player position, score and status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell, either by direction or by naming the adjacent target cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Target column (used when direction is omitted)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Target row (used when direction is omitted)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence. Stops at the first rejected move or when the game ends.", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	newGameProps := gameOptionProperties()
	newGameProps["session_id"] = sessionIDProperty()
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game in an existing session. Without options the session's current preset is reused.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: newGameProps,
			Required:   []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "valid_moves",
		Description: "List the cells the player can step onto next",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleValidMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "best_path",
		Description: "Reveal the best achievable score and one optimal route for the current board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBestPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func sessionPath(args map[string]interface{}, suffix string) string {
	sessionID, _ := args["session_id"].(string)
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg accepts JSON numbers, which arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func gameOptions(args map[string]interface{}) service.GameOptions {
	var opts service.GameOptions
	opts.ConfigID, _ = args["config_id"].(string)
	opts.Difficulty, _ = args["difficulty"].(string)
	if size, ok := intArg(args, "grid_size"); ok {
		opts.GridSize = size
	}
	if seed, ok := intArg(args, "seed"); ok {
		s := int64(seed)
		opts.Seed = &s
	}
	return opts
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", "/api/sessions", gameOptions(args), &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\n%s", session.ID, formatSessionInfo(&session))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status, score := "unknown", 0
		if s.GameState != nil {
			status, score = s.GameState.Status.String(), s.GameState.PlayerScore
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Status: %s, Score: %d, Created: %s)\n",
			s.ID, configLabel(s.ConfigName), status, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var session service.SessionInfo
	err := c.apiCall(ctx, "GET", sessionPath(args, ""), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var state engine.GameState
	err := c.apiCall(ctx, "GET", sessionPath(args, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	var body service.MoveRequest
	body.Direction, _ = args["direction"].(string)
	if body.Direction == "" {
		x, okX := intArg(args, "x")
		y, okY := intArg(args, "y")
		if !okX || !okY {
			return mcp.NewToolResultError("move needs a direction or both x and y"), nil
		}
		body.Target = &engine.Position{X: x, Y: y}
	}

	var result service.MoveResult
	err := c.apiCall(ctx, "POST", sessionPath(args, "/move"), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	// Convert moves to string array
	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must contain at least one direction"), nil
	}

	var result service.BulkMoveResult
	err := c.apiCall(ctx, "POST", sessionPath(args, "/bulk-move"), map[string]interface{}{"moves": moves}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", sessionPath(args, "/new-game"), gameOptions(args), &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("New game started\n\n" + formatSessionInfo(&session)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(args, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	err := c.apiCall(ctx, "GET", path, nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleValidMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(args, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		ValidMoves []engine.Position `json:"valid_moves"`
		Count      int               `json:"count"`
	}
	if err := c.apiCall(ctx, "GET", sessionPath(args, "/valid-moves"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatValidMoves(&state, response.ValidMoves)), nil
}

func (c *Client) handleBestPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var best service.BestPathResponse
	if err := c.apiCall(ctx, "GET", sessionPath(args, "/best-path"), nil, &best); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBestPath(&best)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		kind := "random board"
		if config.Fixed {
			kind = "fixed board"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Difficulty: %s, %s\n\n",
			config.Name, config.ConfigID, config.Description,
			config.GridSize, config.GridSize, config.Difficulty, kind)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Greedy Grid Game - Complete Instructions

GAME OBJECTIVE:
Travel from the top-left cell (0,0) to the bottom-right cell of a square board
while keeping your score as low as possible.

BOARD:
• Every cell holds a cost. Entering a cell adds its cost to your score.
• The start cell is free and the goal cell costs nothing.
• Easy boards use costs 0-4, medium 0-6 and hard 0-9.
• Boards are between %d and %d cells wide.

MOVEMENT:
• Move one cell up, down, left or right. No diagonals.
• You may revisit cells, but you pay their cost again.
• Coordinates are (x,y): x is the column, y is the row, both starting at 0.

WINNING AND LOSING:
• The game ends as soon as you reach the goal.
• You win if your score is no higher than the best possible score for the board.
• Any higher score is a loss.
• Your score never goes down, so once it exceeds the best score the game is
  already lost, but it only ends when you reach the goal.

BOARD LEGEND (game_state):
• [n] your current cell
• (n) cells you already walked over
•  n  untouched cells

STRATEGY TIPS:
1. Use valid_moves to see the cost of each neighbouring cell.
2. The cheapest next cell is not always on the cheapest route. Look ahead.
3. Detours can pay off when they avoid a band of expensive cells.
4. best_path reveals the answer. Use it to review a finished game.

API PATTERNS:
• create_session, then game_state to see the board.
• move with a direction, or with x and y for the adjacent target cell.
• bulk_move with up to %d directions. It stops at the first rejected move.
• new_game to start over in the same session.`,
		engine.MinGridSize, engine.MaxGridSize, engine.MaxBulkMoves)

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func configLabel(configName string) string {
	if configName == "" {
		return "loaded save"
	}
	return configName
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, configLabel(session.ConfigName),
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Position: (%d,%d) | Score: %d | Best: %d | Moves: %d | Status: %s\n",
		state.PlayerPos.X, state.PlayerPos.Y,
		state.PlayerScore, state.BestScore, state.MoveCount, state.Status)
	if state.Size > 0 {
		fmt.Fprintf(&result, "Goal: (%d,%d) | Difficulty: %s\n", state.Size-1, state.Size-1, state.Difficulty)
	}
	result.WriteString("\n")
	result.WriteString(formatGrid(state))

	switch state.Status {
	case engine.Won:
		result.WriteString("\n🎉 VICTORY!")
	case engine.Lost:
		result.WriteString("\n💀 GAME OVER")
	}

	return result.String()
}

// formatGrid renders costs with the player in brackets and visited cells in
// parentheses
func formatGrid(state *engine.GameState) string {
	visited := make(map[engine.Position]bool, len(state.PlayerPath))
	for _, p := range state.PlayerPath {
		visited[p] = true
	}

	var b strings.Builder
	for y, row := range state.Grid {
		cells := make([]string, len(row))
		for x, cost := range row {
			pos := engine.Position{X: x, Y: y}
			switch {
			case pos == state.PlayerPos:
				cells[x] = fmt.Sprintf("[%d]", cost)
			case visited[pos]:
				cells[x] = fmt.Sprintf("(%d)", cost)
			default:
				cells[x] = fmt.Sprintf(" %d ", cost)
			}
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if result.Step != nil {
		s := result.Step
		fmt.Fprintf(&b, "Step: (%d,%d)→(%d,%d) cost=%d score=%d\n",
			s.From.X, s.From.Y, s.To.X, s.To.Y, s.Cost, s.ScoreAfter)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	gridSize := 0
	if result.GameState != nil {
		gridSize = result.GameState.Size
	}
	fmt.Fprintf(&b, "Session: %s • Grid: %dx%d\n", sessionID, gridSize, gridSize)

	fmt.Fprintf(&b, "Executed %d/%d moves (score %+d)\n", result.MovesExecuted, result.RequestedMoves, result.ScoreDelta)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. (%d,%d)→(%d,%d) cost=%d score=%d\n",
				s.Idx, s.From.X, s.From.Y, s.To.X, s.To.Y, s.Cost, s.ScoreAfter)
		}
	}

	if result.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s\n", result.Message)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatValidMoves(state *engine.GameState, moves []engine.Position) string {
	if len(moves) == 0 {
		return fmt.Sprintf("No valid moves (status: %s)", state.Status)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Valid moves from (%d,%d) with score %d:\n", state.PlayerPos.X, state.PlayerPos.Y, state.PlayerScore)
	for _, p := range moves {
		cost := state.Grid.At(p)
		fmt.Fprintf(&b, "- %s to (%d,%d) cost=%d score_after=%d\n",
			directionTo(state.PlayerPos, p), p.X, p.Y, cost, state.PlayerScore+cost)
	}
	return b.String()
}

func directionTo(from, to engine.Position) string {
	switch {
	case to.Y > from.Y:
		return "down"
	case to.X > from.X:
		return "right"
	case to.Y < from.Y:
		return "up"
	default:
		return "left"
	}
}

func formatBestPath(best *service.BestPathResponse) string {
	steps := make([]string, len(best.ReferencePath))
	for i, p := range best.ReferencePath {
		steps[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return fmt.Sprintf("Best score: %d\nYour score: %d (%s)\nOptimal route (%d moves): %s\n",
		best.BestScore, best.PlayerScore, best.Status,
		max(len(best.ReferencePath)-1, 0), strings.Join(steps, " → "))
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "%d. (%d,%d)→(%d,%d) cost=%d score=%d\n",
			move.MoveNumber,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y,
			move.Cost, move.ScoreAfter)
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d\n", history.Page+1)
	}
	return b.String()
}
