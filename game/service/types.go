package service

import (
	"time"

	"github.com/wricardo/greedy-grid-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	Events         []GameEvent        `json:"events,omitempty"`
}

// GameOptions selects the preset for a new game and optionally overrides parts of it
type GameOptions struct {
	ConfigID   string `json:"config_id,omitempty"`
	GridSize   int    `json:"grid_size,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
}

// MoveRequest names a move either by direction or by absolute target cell
type MoveRequest struct {
	Direction string           `json:"direction,omitempty"`
	Target    *engine.Position `json:"target,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_move|game_over|not_started
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartPos   engine.Position `json:"start_pos"`
	EndPos     engine.Position `json:"end_pos"`
	ScoreDelta int             `json:"score_delta"`

	Steps []StepInfo `json:"steps,omitempty"`

	GameOver bool   `json:"game_over"`
	Message  string `json:"message,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx        int             `json:"idx"`
	From       engine.Position `json:"from"`
	To         engine.Position `json:"to"`
	Cost       int             `json:"cost"`
	ScoreAfter int             `json:"score_after"`
}

// GameEvent is an engine event stamped with an identity and the owning session
type GameEvent struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Type      engine.EventType `json:"type"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Position  engine.Position  `json:"position"`
	Score     int              `json:"score"`
	BestScore int              `json:"best_score"`
	MoveCount int              `json:"move_count"`
	Status    engine.Status    `json:"status"`
}

// BestPathResponse describes the optimal route for the current grid
type BestPathResponse struct {
	BestScore     int         `json:"best_score"`
	ReferencePath engine.Path `json:"reference_path"`
	PlayerScore   int         `json:"player_score"`
	Status        string      `json:"status"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string            `json:"filename"`
	ConfigID    string            `json:"config_id"` // The identifier to use for session creation
	Name        string            `json:"name"`      // Display name
	Description string            `json:"description"`
	GridSize    int               `json:"grid_size"`
	Difficulty  engine.Difficulty `json:"difficulty"`
	Fixed       bool              `json:"fixed"` // seeded or fixed layout
}
