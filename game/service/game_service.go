package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/greedy-grid-game/game/engine"
)

var (
	// ErrSessionNotFound is returned by SessionManager implementations for unknown IDs
	ErrSessionNotFound = errors.New("session not found")
	// ErrConfigNotFound is returned by ConfigManager implementations for unknown presets
	ErrConfigNotFound = errors.New("configuration not found")
	// ErrInvalidRequest marks malformed caller input such as an empty move
	ErrInvalidRequest = errors.New("invalid request")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts GameOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	NewGame(ctx context.Context, sessionID string, opts GameOptions) (*SessionInfo, error)
	Move(ctx context.Context, sessionID string, req MoveRequest) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []MoveRequest) (*BulkMoveResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetValidMoves(ctx context.Context, sessionID string) ([]engine.Position, error)
	GetBestPath(ctx context.Context, sessionID string) (*BestPathResponse, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Save files
	ExportSession(ctx context.Context, sessionID string) ([]byte, error)
	ImportSession(ctx context.Context, sessionID string, data []byte) (*SessionInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, configID string) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	AccessTimes(id string) (created, accessed time.Time, err error)
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	GetDefaultID() string
	SaveConfig(name string, config *engine.GameConfig) error
}

// Notifier receives the state and events produced by every mutating call
type Notifier interface {
	Notify(sessionID string, state *engine.GameState, events []GameEvent)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	ConfigID       string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
