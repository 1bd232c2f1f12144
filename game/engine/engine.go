package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	Start(size int, difficulty Difficulty, opts ...GenerateOption) error
	StartWithGrid(grid Grid, difficulty Difficulty) error
	Load(state *GameState) error

	// Game state
	GetState() *GameState
	GetStatus() Status
	IsGameOver() bool
	GetScore() int
	GetBestScore() int
	GetPlayerPosition() Position
	GetReferencePath() Path

	// Movement operations
	IsValidMove(target Position) bool
	Move(target Position) error
	MoveDirection(direction string) error
	ValidMoves() []Position

	// Notifications
	Subscribe(listener Listener) func()
}

// GameEngine implements the Engine interface. It is not safe for concurrent use;
// callers serialize access to a single engine.
type GameEngine struct {
	state     *GameState
	listeners map[int]Listener
	nextID    int
}

// NewEngine creates an engine in the NotStarted state
func NewEngine() *GameEngine {
	return &GameEngine{
		state:     newNotStartedState(Easy),
		listeners: make(map[int]Listener),
	}
}

func newNotStartedState(d Difficulty) *GameState {
	return &GameState{
		Status:     NotStarted,
		Difficulty: d,
	}
}

// Start generates a fresh grid, solves it and begins a new game.
// The previous state is kept if generation fails.
func (e *GameEngine) Start(size int, difficulty Difficulty, opts ...GenerateOption) error {
	grid, err := Generate(size, difficulty, opts...)
	if err != nil {
		return err
	}
	return e.begin(grid, difficulty)
}

// StartWithGrid begins a new game on a caller-supplied grid
func (e *GameEngine) StartWithGrid(grid Grid, difficulty Difficulty) error {
	if err := ValidateGrid(grid, difficulty); err != nil {
		return err
	}
	return e.begin(grid.Clone(), difficulty)
}

func (e *GameEngine) begin(grid Grid, difficulty Difficulty) error {
	best, ref, err := Solve(grid)
	if err != nil {
		return fmt.Errorf("solve grid: %w", err)
	}

	origin := Position{X: 0, Y: 0}
	e.state = &GameState{
		Grid:          grid,
		Size:          grid.Size(),
		PlayerPos:     origin,
		PlayerScore:   0,
		MoveCount:     0,
		PlayerPath:    Path{origin},
		BestScore:     best,
		ReferencePath: ref,
		Status:        InProgress,
		Difficulty:    difficulty,
	}

	e.emit(EventStart)
	return nil
}

// Load replaces the current game with a previously saved one.
// The state is validated first; on failure the current game is untouched.
func (e *GameEngine) Load(state *GameState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrCorruptState)
	}
	if err := ValidateState(state); err != nil {
		return err
	}

	e.state = state.Clone()
	e.emit(EventLoad)
	return nil
}

// GetState returns a copy of the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state.Clone()
}

// GetStatus returns the current lifecycle status
func (e *GameEngine) GetStatus() Status {
	return e.state.Status
}

// IsGameOver returns whether the game reached a terminal status
func (e *GameEngine) IsGameOver() bool {
	return e.state.Status.Terminal()
}

// GetScore returns the player's cumulative score
func (e *GameEngine) GetScore() int {
	return e.state.PlayerScore
}

// GetBestScore returns the optimal score for the current grid
func (e *GameEngine) GetBestScore() int {
	return e.state.BestScore
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.PlayerPos
}

// GetReferencePath returns the optimal path computed at start
func (e *GameEngine) GetReferencePath() Path {
	return e.state.ReferencePath.Clone()
}

// Subscribe registers a listener and returns a function that removes it
func (e *GameEngine) Subscribe(listener Listener) func() {
	id := e.nextID
	e.nextID++
	e.listeners[id] = listener
	return func() {
		delete(e.listeners, id)
	}
}

func (e *GameEngine) emit(t EventType) {
	if len(e.listeners) == 0 {
		return
	}
	ev := newEvent(t, e.state)
	for i := 0; i < e.nextID; i++ {
		if l, ok := e.listeners[i]; ok {
			l(ev)
		}
	}
}
