package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScenarioEngine(t *testing.T) *GameEngine {
	t.Helper()
	e := NewEngine()
	require.NoError(t, e.StartWithGrid(scenarioGrid(), Medium))
	return e
}

func zeroGrid(n int) Grid {
	grid := make(Grid, n)
	for y := range grid {
		grid[y] = make([]int, n)
	}
	return grid
}

func TestNewEngine(t *testing.T) {
	e := NewEngine()

	if e.GetStatus() != NotStarted {
		t.Errorf("Expected status %s, got %s", NotStarted, e.GetStatus())
	}
	if e.GetScore() != 0 {
		t.Errorf("Expected initial score 0, got %d", e.GetScore())
	}
	if e.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if e.IsValidMove(Position{X: 1, Y: 0}) {
		t.Error("No move should be valid before start")
	}
	if len(e.ValidMoves()) != 0 {
		t.Errorf("Expected no valid moves before start, got %v", e.ValidMoves())
	}

	err := e.Move(Position{X: 1, Y: 0})
	if !errors.Is(err, ErrInvalidMove) || !errors.Is(err, ErrNotStarted) {
		t.Errorf("Expected ErrInvalidMove wrapping ErrNotStarted, got %v", err)
	}
}

func TestEngine_Start(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Start(6, Hard, WithSeed(99)))

	state := e.GetState()
	assert.Equal(t, InProgress, state.Status)
	assert.Equal(t, 6, state.Size)
	assert.Equal(t, Hard, state.Difficulty)
	assert.Equal(t, Position{}, state.PlayerPos)
	assert.Equal(t, Path{{0, 0}}, state.PlayerPath)
	assert.Equal(t, 0, state.PlayerScore)
	assert.Equal(t, 0, state.MoveCount)
	assertCompletePath(t, state.Grid, state.ReferencePath)
	assert.Equal(t, state.ReferencePath.Cost(state.Grid), state.BestScore)

	t.Run("same seed gives same game", func(t *testing.T) {
		other := NewEngine()
		require.NoError(t, other.Start(6, Hard, WithSeed(99)))
		assert.Equal(t, state, other.GetState())
	})

	t.Run("restart from terminal state is a fresh game", func(t *testing.T) {
		g := NewEngine()
		require.NoError(t, g.StartWithGrid(zeroGrid(2), Easy))
		require.NoError(t, g.MoveDirection("right"))
		require.NoError(t, g.MoveDirection("down"))
		require.Equal(t, Won, g.GetStatus())

		require.NoError(t, g.Start(3, Easy, WithSeed(1)))
		assert.Equal(t, InProgress, g.GetStatus())
		assert.Equal(t, 0, g.GetState().MoveCount)
		assert.Equal(t, Path{{0, 0}}, g.GetState().PlayerPath)
	})

	t.Run("failed start keeps previous game", func(t *testing.T) {
		before := e.GetState()
		err := e.Start(1, Easy)
		assert.ErrorIs(t, err, ErrInvalidSize)
		assert.Equal(t, before, e.GetState())

		err = e.StartWithGrid(Grid{{0, 9}, {0, 0}}, Easy)
		assert.ErrorIs(t, err, ErrInvalidGrid)
		assert.Equal(t, before, e.GetState())

		assert.ErrorIs(t, e.Start(MaxGridSize+1, Easy), ErrInvalidSize)
		assert.ErrorIs(t, e.StartWithGrid(zeroGrid(MaxGridSize+1), Easy), ErrInvalidSize)
		assert.Equal(t, before, e.GetState())
	})
}

func TestEngine_IsValidMove(t *testing.T) {
	e := newScenarioEngine(t)
	require.NoError(t, e.Move(Position{X: 1, Y: 0}))

	tests := []struct {
		name     string
		target   Position
		expected bool
	}{
		{"right", Position{X: 2, Y: 0}, true},
		{"down", Position{X: 1, Y: 1}, true},
		{"left back to start", Position{X: 0, Y: 0}, true},
		{"up out of bounds", Position{X: 1, Y: -1}, false},
		{"stay in place", Position{X: 1, Y: 0}, false},
		{"diagonal", Position{X: 2, Y: 1}, false},
		{"two steps", Position{X: 1, Y: 2}, false},
		{"far out of bounds", Position{X: 7, Y: 7}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			before := e.GetState()
			if got := e.IsValidMove(test.target); got != test.expected {
				t.Errorf("IsValidMove(%s): expected %v, got %v", test.target, test.expected, got)
			}
			assert.Equal(t, before, e.GetState(), "IsValidMove must not mutate state")
		})
	}
}

func TestEngine_MoveRejectionLeavesStateUnchanged(t *testing.T) {
	e := newScenarioEngine(t)
	before := e.GetState()

	for _, target := range []Position{{-1, 0}, {0, -1}, {1, 1}, {0, 2}, {0, 0}, {3, 0}} {
		err := e.Move(target)
		assert.ErrorIs(t, err, ErrInvalidMove, "target %s", target)
	}
	assert.ErrorIs(t, e.MoveDirection("sideways"), ErrInvalidMove)
	assert.ErrorIs(t, e.MoveDirection("up"), ErrInvalidMove)
	assert.Equal(t, before, e.GetState())
}

func TestEngine_TraceReferencePathWins(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		e := NewEngine()
		require.NoError(t, e.Start(7, Hard, WithSeed(seed)))

		ref := e.GetReferencePath()
		for _, p := range ref[1:] {
			require.NoError(t, e.Move(p))
		}

		state := e.GetState()
		assert.Equal(t, Won, state.Status, "seed %d", seed)
		assert.Equal(t, state.BestScore, state.PlayerScore)
		assert.Equal(t, len(ref)-1, state.MoveCount)
		assert.Equal(t, ref, state.PlayerPath)
	}
}

func TestEngine_ScenarioLoses(t *testing.T) {
	e := newScenarioEngine(t)

	// right, right, down, down costs 3+1+4+0 = 8
	for _, dir := range []string{"right", "right", "down", "down"} {
		require.NoError(t, e.MoveDirection(dir))
	}

	assert.Equal(t, Lost, e.GetStatus())
	assert.True(t, e.IsGameOver())
	assert.Equal(t, 8, e.GetScore())
	assert.Equal(t, 5, e.GetBestScore())

	before := e.GetState()
	assert.ErrorIs(t, e.MoveDirection("up"), ErrInvalidMove)
	assert.False(t, e.IsValidMove(Position{X: 2, Y: 1}))
	assert.Empty(t, e.ValidMoves())
	assert.Equal(t, before, e.GetState())
}

func TestEngine_AllZeroGridMonotonicPathWins(t *testing.T) {
	for n := 2; n <= 6; n++ {
		e := NewEngine()
		require.NoError(t, e.StartWithGrid(zeroGrid(n), Easy))
		assert.Equal(t, 0, e.GetBestScore())

		// down the left edge, then along the bottom
		for i := 0; i < n-1; i++ {
			require.NoError(t, e.MoveDirection("down"))
		}
		for i := 0; i < n-1; i++ {
			require.NoError(t, e.MoveDirection("right"))
		}
		assert.Equal(t, Won, e.GetStatus(), "n=%d", n)
	}
}

func TestEngine_RevisitingCellsChargesAgain(t *testing.T) {
	e := newScenarioEngine(t)

	require.NoError(t, e.MoveDirection("right")) // 3
	require.NoError(t, e.MoveDirection("left"))  // 0
	require.NoError(t, e.MoveDirection("right")) // 3

	state := e.GetState()
	assert.Equal(t, 6, state.PlayerScore)
	assert.Equal(t, 3, state.MoveCount)
	assert.Equal(t, state.PlayerPath.Cost(state.Grid), state.PlayerScore)
}

func TestEngine_ValidMoves(t *testing.T) {
	e := newScenarioEngine(t)
	assert.Equal(t, []Position{{0, 1}, {1, 0}}, e.ValidMoves())

	require.NoError(t, e.Move(Position{X: 0, Y: 1}))
	assert.Equal(t, []Position{{0, 2}, {1, 1}, {0, 0}}, e.ValidMoves())
}

func TestEngine_BulkMove(t *testing.T) {
	e := newScenarioEngine(t)

	applied, err := e.BulkMove([]Position{{0, 1}, {1, 1}, {3, 3}, {1, 2}})
	assert.ErrorIs(t, err, ErrInvalidMove)
	assert.Equal(t, 2, applied)
	assert.Equal(t, Position{X: 1, Y: 1}, e.GetPlayerPosition())

	applied, err = e.BulkMove([]Position{{1, 2}, {2, 2}, {2, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, applied, "moves after the game ends are not applied")
	assert.Equal(t, Won, e.GetStatus())
}

func TestEngine_Events(t *testing.T) {
	e := NewEngine()

	var events []Event
	unsubscribe := e.Subscribe(func(ev Event) {
		events = append(events, ev)
	})

	require.NoError(t, e.StartWithGrid(scenarioGrid(), Medium))
	for _, p := range e.GetReferencePath()[1:] {
		require.NoError(t, e.Move(p))
	}

	var types []EventType
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventStart, EventMove, EventMove, EventMove, EventMove, EventStatus, EventWon}, types)

	last := events[len(events)-1]
	assert.Equal(t, 5, last.Score)
	assert.Equal(t, 5, last.BestScore)
	assert.Equal(t, Won, last.Status)
	assert.Contains(t, last.Message, "won with a score of 5")

	move := events[1]
	assert.Equal(t, Position{X: 0, Y: 1}, move.Position)
	assert.Equal(t, 2, move.Score)
	assert.Equal(t, 1, move.MoveCount)

	t.Run("rejected moves emit nothing", func(t *testing.T) {
		count := len(events)
		_ = e.MoveDirection("left")
		assert.Len(t, events, count)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		unsubscribe()
		count := len(events)
		require.NoError(t, e.Start(3, Easy, WithSeed(3)))
		assert.Len(t, events, count)
	})
}

func TestEngine_LostEventCarriesScores(t *testing.T) {
	e := newScenarioEngine(t)

	var outcome *Event
	e.Subscribe(func(ev Event) {
		if ev.Type == EventWon || ev.Type == EventLost {
			outcome = &ev
		}
	})

	for _, dir := range []string{"right", "right", "down", "down"} {
		require.NoError(t, e.MoveDirection(dir))
	}

	require.NotNil(t, outcome)
	assert.Equal(t, EventLost, outcome.Type)
	assert.Equal(t, 8, outcome.Score)
	assert.Equal(t, 5, outcome.BestScore)
	assert.Equal(t, "You lost with a score of 8. The best score was 5.", outcome.Message)
}

func TestEngine_GetStateIsACopy(t *testing.T) {
	e := newScenarioEngine(t)

	state := e.GetState()
	state.Grid[1][1] = 4
	state.PlayerPath = append(state.PlayerPath, Position{X: 1, Y: 0})

	fresh := e.GetState()
	assert.Equal(t, 1, fresh.Grid[1][1])
	assert.Len(t, fresh.PlayerPath, 1)
}

func TestEngine_Load(t *testing.T) {
	source := newScenarioEngine(t)
	require.NoError(t, source.MoveDirection("down"))
	saved := source.GetState()

	e := NewEngine()
	var loaded bool
	e.Subscribe(func(ev Event) {
		if ev.Type == EventLoad {
			loaded = true
		}
	})

	require.NoError(t, e.Load(saved))
	assert.True(t, loaded)
	assert.Equal(t, saved, e.GetState())

	// The loaded game continues normally
	require.NoError(t, e.MoveDirection("right"))
	assert.Equal(t, 3, e.GetScore())

	t.Run("invalid state is rejected and previous game kept", func(t *testing.T) {
		before := e.GetState()
		bad := saved.Clone()
		bad.PlayerScore = 42

		err := e.Load(bad)
		assert.ErrorIs(t, err, ErrCorruptState)
		assert.Equal(t, before, e.GetState())

		assert.ErrorIs(t, e.Load(nil), ErrCorruptState)
		assert.Equal(t, before, e.GetState())
	})

	t.Run("mutating the loaded value does not affect the engine", func(t *testing.T) {
		g := NewEngine()
		state := saved.Clone()
		require.NoError(t, g.Load(state))
		state.Grid[0][1] = 6
		assert.Equal(t, 3, g.GetState().Grid[0][1])
	})
}

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Status     Status     `json:"status"`
		Difficulty Difficulty `json:"difficulty"`
	}{Lost, Medium})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"lost","difficulty":"medium"}`, string(data))

	var decoded struct {
		Status     Status     `json:"status"`
		Difficulty Difficulty `json:"difficulty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"in_progress","difficulty":"hard"}`), &decoded))
	assert.Equal(t, InProgress, decoded.Status)
	assert.Equal(t, Hard, decoded.Difficulty)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"paused"}`), &decoded))
}

func TestGameState_History(t *testing.T) {
	e := newScenarioEngine(t)
	require.NoError(t, e.MoveDirection("down"))
	require.NoError(t, e.MoveDirection("right"))

	history := e.GetState().History()
	require.Len(t, history, 2)
	assert.Equal(t, MoveHistoryEntry{
		MoveNumber:   1,
		FromPosition: Position{X: 0, Y: 0},
		ToPosition:   Position{X: 0, Y: 1},
		Cost:         2,
		ScoreAfter:   2,
	}, history[0])
	assert.Equal(t, 3, history[1].ScoreAfter)

	assert.Empty(t, NewEngine().GetState().History())
}
