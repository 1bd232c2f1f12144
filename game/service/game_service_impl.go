package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wricardo/greedy-grid-game/game/codec"
	"github.com/wricardo/greedy-grid-game/game/engine"
	"github.com/wricardo/greedy-grid-game/logging"
	"github.com/wricardo/greedy-grid-game/metrics"
)

// Option configures optional collaborators of the game service
type Option func(*gameServiceImpl)

// WithNotifier forwards every state change to n
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) {
		s.notifier = n
	}
}

// WithMetrics records game activity on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *gameServiceImpl) {
		s.metrics = m
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logging.Component("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a session and starts its first game
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts GameOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, configID, err := s.resolveConfig(opts, nil)
	if err != nil {
		return nil, err
	}

	// Let session manager generate the ID
	sess, err := s.sessions.Create("", config, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	events, err := s.startGame(sess, config)
	if err != nil {
		_ = s.sessions.Delete(sess.ID)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
		s.metrics.SessionsActive.Set(float64(len(s.sessions.List())))
	}

	s.logger.Info().
		Str("session", sess.ID).
		Str("config", configID).
		Int("size", config.GridSize).
		Str("difficulty", config.Difficulty.String()).
		Msg("Session created")

	return s.commit(sess, events), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, nil), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info := s.sessionInfo(sess, nil)
		if info.CreatedAt.IsZero() {
			// expired between List and AccessTimes
			continue
		}
		result = append(result, info)
	}
	return result, nil
}

// DeleteSession removes a session from memory and storage
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(len(s.sessions.List())))
	}
	s.logger.Info().Str("session", sessionID).Msg("Session deleted")
	return nil
}

// NewGame starts a fresh game in an existing session. Unset options fall back to
// the session's current preset.
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string, opts GameOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	config, configID, err := s.resolveConfig(opts, sess)
	if err != nil {
		return nil, err
	}

	events, err := s.startGame(sess, config)
	if err != nil {
		return nil, err
	}
	sess.Config = config
	sess.ConfigID = configID

	return s.commit(sess, events), nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, req MoveRequest) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	from := sess.Engine.GetPlayerPosition()
	events, err := s.capture(sess, func() error {
		return applyMove(sess.Engine, req)
	})
	if err != nil {
		s.observeMove(false)
		s.logger.Debug().Err(err).Str("session", sessionID).Msg("Move rejected")
		return nil, err
	}
	s.observeMove(true)

	info := s.commit(sess, events)
	state := info.GameState
	to := state.PlayerPos

	return &MoveResult{
		Success:   true,
		GameState: state,
		Message:   moveMessage(state, events),
		Events:    events,
		Step: &StepInfo{
			Idx:        state.MoveCount,
			From:       from,
			To:         to,
			Cost:       state.Grid.At(to),
			ScoreAfter: state.PlayerScore,
		},
	}, nil
}

// BulkMove executes moves in order, stopping at the first rejected move or when
// the game ends
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []MoveRequest) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	startState := sess.Engine.GetState()
	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Success:        true,
		StartPos:       startState.PlayerPos,
		Events:         []GameEvent{},
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		moves = moves[:engine.MaxBulkMoves]
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
	}

	targets, resolveErr := resolveTargets(startState.PlayerPos, moves)

	var (
		applied int
		moveErr error
	)
	events, _ := s.capture(sess, func() error {
		applied, moveErr = sess.Engine.BulkMove(targets)
		return moveErr
	})

	state := sess.Engine.GetState()
	score := startState.PlayerScore
	for i := range applied {
		s.observeMove(true)
		from := state.PlayerPath[startState.MoveCount+i]
		to := state.PlayerPath[startState.MoveCount+i+1]
		score += state.Grid.At(to)
		result.Steps = append(result.Steps, StepInfo{
			Idx:        i + 1,
			From:       from,
			To:         to,
			Cost:       state.Grid.At(to),
			ScoreAfter: score,
		})
	}
	result.MovesExecuted = applied

	switch {
	case moveErr != nil:
		s.stopBulk(result, applied, moveErr)
	case applied < len(targets) || (resolveErr != nil && state.Status.Terminal()):
		result.StopReasonCode = "game_over"
		result.StoppedReason = fmt.Sprintf("game already %s", state.Status)
		result.StoppedOnMove = applied + 1
	case resolveErr != nil:
		s.stopBulk(result, applied, resolveErr)
	}
	result.Events = append(result.Events, events...)

	info := s.commit(sess, events)
	result.GameState = info.GameState
	result.EndPos = info.GameState.PlayerPos
	result.ScoreDelta = info.GameState.PlayerScore - startState.PlayerScore
	result.GameOver = info.GameState.Status.Terminal()
	result.Message = moveMessage(info.GameState, events)

	s.logger.Info().
		Str("session", sessionID).
		Int("executed", result.MovesExecuted).
		Int("requested", result.RequestedMoves).
		Str("stop", result.StopReasonCode).
		Int("score", info.GameState.PlayerScore).
		Msg("Bulk move")

	return result, nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetValidMoves returns the cells the player may step onto next
func (s *gameServiceImpl) GetValidMoves(ctx context.Context, sessionID string) ([]engine.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.ValidMoves(), nil
}

// GetBestPath reveals the optimal path computed when the game started
func (s *gameServiceImpl) GetBestPath(ctx context.Context, sessionID string) (*BestPathResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.GetStatus() == engine.NotStarted {
		return nil, engine.ErrNotStarted
	}

	return &BestPathResponse{
		BestScore:     sess.Engine.GetBestScore(),
		ReferencePath: sess.Engine.GetReferencePath(),
		PlayerScore:   sess.Engine.GetScore(),
		Status:        sess.Engine.GetStatus().String(),
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetState().History()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ExportSession encodes the session's game in the binary save format
func (s *gameServiceImpl) ExportSession(ctx context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(sess.Engine.GetState())
}

// ImportSession replaces the session's game with a decoded save. A corrupt save
// leaves the current game untouched.
func (s *gameServiceImpl) ImportSession(ctx context.Context, sessionID string, data []byte) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state, err := codec.Unmarshal(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Msg("Rejected save file")
		return nil, err
	}

	events, err := s.capture(sess, func() error {
		return sess.Engine.Load(state)
	})
	if err != nil {
		return nil, err
	}
	sess.Config = engine.RestoredGameConfig(state)
	sess.ConfigID = ""

	s.logger.Info().Str("session", sessionID).Str("status", state.Status.String()).Msg("Save loaded")
	return s.commit(sess, events), nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// resolveConfig picks the preset named by opts, falling back to the session's
// current preset or the default, and applies the overrides
func (s *gameServiceImpl) resolveConfig(opts GameOptions, sess *Session) (*engine.GameConfig, string, error) {
	var (
		base     *engine.GameConfig
		configID = opts.ConfigID
	)

	switch {
	case configID != "":
		loaded, err := s.configs.LoadConfig(configID)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				return nil, "", fmt.Errorf("config '%s': %w. Use /api/configs to list available configurations", configID, err)
			}
			return nil, "", fmt.Errorf("failed to load config %s: %w", configID, err)
		}
		base = loaded
	case sess != nil && sess.Config != nil:
		base = sess.Config
		configID = sess.ConfigID
	default:
		base = s.configs.GetDefault()
		configID = s.configs.GetDefaultID()
	}

	config := *base
	config.Layout = append([]string(nil), base.Layout...)

	if opts.GridSize > 0 && opts.GridSize != config.GridSize {
		config.GridSize = opts.GridSize
		config.Layout = nil
	}
	if opts.Difficulty != "" {
		d, err := engine.ParseDifficulty(opts.Difficulty)
		if err != nil {
			return nil, "", err
		}
		config.Difficulty = d
	}
	if opts.Seed != nil {
		seed := *opts.Seed
		config.Seed = &seed
		config.Layout = nil
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &config, configID, nil
}

func (s *gameServiceImpl) startGame(sess *Session, config *engine.GameConfig) ([]GameEvent, error) {
	began := time.Now()
	events, err := s.capture(sess, func() error {
		return sess.Engine.StartFromConfig(config)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SolveDuration.Observe(time.Since(began).Seconds())
		s.metrics.GamesStarted.WithLabelValues(config.Difficulty.String()).Inc()
	}
	return events, nil
}

// capture runs fn with a listener attached and returns the events it produced
func (s *gameServiceImpl) capture(sess *Session, fn func() error) ([]GameEvent, error) {
	events := []GameEvent{}
	unsubscribe := sess.Engine.Subscribe(func(ev engine.Event) {
		events = append(events, newGameEvent(sess.ID, ev))
	})
	defer unsubscribe()

	err := fn()
	return events, err
}

// commit persists the session, records outcomes and notifies listeners
func (s *gameServiceImpl) commit(sess *Session, events []GameEvent) *SessionInfo {
	if err := s.sessions.Save(sess.ID); err != nil {
		s.logger.Warn().Err(err).Str("session", sess.ID).Msg("Failed to persist session")
		if s.metrics != nil {
			s.metrics.SaveErrorsTotal.Inc()
		}
	}

	state := sess.Engine.GetState()
	for _, ev := range events {
		if ev.Type != engine.EventWon && ev.Type != engine.EventLost {
			continue
		}
		if s.metrics != nil {
			s.metrics.GamesFinished.WithLabelValues(state.Difficulty.String(), string(ev.Type)).Inc()
			s.metrics.ScoreGap.Observe(float64(ev.Score - ev.BestScore))
		}
		s.logger.Info().
			Str("session", sess.ID).
			Str("status", ev.Status.String()).
			Int("score", ev.Score).
			Int("best", ev.BestScore).
			Msg("Game finished")
	}

	if s.notifier != nil && len(events) > 0 {
		s.notifier.Notify(sess.ID, state, events)
	}

	return s.sessionInfo(sess, events)
}

func (s *gameServiceImpl) observeMove(ok bool) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	s.metrics.MovesTotal.WithLabelValues(result).Inc()
}

// resolveTargets turns requests into absolute targets, assuming every earlier
// move succeeds. It stops at the first request naming no cell.
func resolveTargets(from engine.Position, moves []MoveRequest) ([]engine.Position, error) {
	targets := make([]engine.Position, 0, len(moves))
	for _, req := range moves {
		switch {
		case req.Target != nil:
			from = *req.Target
		case req.Direction != "":
			next, ok := from.Step(req.Direction)
			if !ok {
				return targets, fmt.Errorf("%w: unknown direction %q", engine.ErrInvalidMove, req.Direction)
			}
			from = next
		default:
			return targets, fmt.Errorf("%w: move needs a direction or a target", ErrInvalidRequest)
		}
		targets = append(targets, from)
	}
	return targets, nil
}

// stopBulk records a rejected move at position applied+1
func (s *gameServiceImpl) stopBulk(result *BulkMoveResult, applied int, err error) {
	s.observeMove(false)
	result.Success = false
	result.StoppedReason = err.Error()
	result.StoppedOnMove = applied + 1
	result.StopReasonCode = "invalid_move"
	if errors.Is(err, engine.ErrNotStarted) {
		result.StopReasonCode = "not_started"
	}
}

func applyMove(e *engine.GameEngine, req MoveRequest) error {
	switch {
	case req.Target != nil:
		return e.Move(*req.Target)
	case req.Direction != "":
		return e.MoveDirection(req.Direction)
	default:
		return fmt.Errorf("%w: move needs a direction or a target", ErrInvalidRequest)
	}
}

func newGameEvent(sessionID string, ev engine.Event) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Type:      ev.Type,
		Message:   ev.Message,
		Timestamp: time.Now(),
		Position:  ev.Position,
		Score:     ev.Score,
		BestScore: ev.BestScore,
		MoveCount: ev.MoveCount,
		Status:    ev.Status,
	}
}

// sessionInfo snapshots sess. Timestamps come from the session manager, which
// owns them; a session dropped meanwhile reports zero times.
func (s *gameServiceImpl) sessionInfo(sess *Session, events []GameEvent) *SessionInfo {
	created, accessed, _ := s.sessions.AccessTimes(sess.ID)
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      created,
		LastAccessedAt: accessed,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
		Events:         events,
	}
}

// moveMessage prefers the outcome message of the last event that carries one
func moveMessage(state *engine.GameState, events []GameEvent) string {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Message != "" {
			return events[i].Message
		}
	}
	return fmt.Sprintf("At %s with score %d (best %d)", state.PlayerPos, state.PlayerScore, state.BestScore)
}
