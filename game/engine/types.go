package engine

import (
	"fmt"
	"strings"
)

// Difficulty selects the range cell costs are drawn from
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

// Status is the lifecycle state of a game session
type Status int

const (
	NotStarted Status = iota
	InProgress
	Won
	Lost
)

const (
	// Validation constants
	MinGridSize     = 2
	MaxGridSize     = 50
	DefaultGridSize = 5
	MaxBulkMoves    = 100
)

// Position represents x,y coordinates. X is the column and Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid holds the cost of entering each cell, indexed grid[y][x]
type Grid [][]int

// Path is an ordered sequence of positions
type Path []Position

// GameState represents the complete state of one game
type GameState struct {
	Grid          Grid       `json:"grid"`
	Size          int        `json:"size"`
	PlayerPos     Position   `json:"player_pos"`
	PlayerScore   int        `json:"player_score"`
	MoveCount     int        `json:"move_count"`
	PlayerPath    Path       `json:"player_path"`
	BestScore     int        `json:"best_score"`
	ReferencePath Path       `json:"reference_path"`
	Status        Status     `json:"status"`
	Difficulty    Difficulty `json:"difficulty"`
}

// MoveHistoryEntry describes a single step of the player path
type MoveHistoryEntry struct {
	MoveNumber   int      `json:"move_number"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Cost         int      `json:"cost"`
	ScoreAfter   int      `json:"score_after"`
}

// MaxValue returns the exclusive upper bound of cell values for the difficulty
func (d Difficulty) MaxValue() int {
	switch d {
	case Easy:
		return 5
	case Medium:
		return 7
	case Hard:
		return 10
	default:
		return 0
	}
}

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// MarshalText implements encoding.TextMarshaler
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDifficulty converts a name such as "medium" into a Difficulty
func ParseDifficulty(name string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "easy", "1":
		return Easy, nil
	case "medium", "2":
		return Medium, nil
	case "hard", "3":
		return Hard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, name)
	}
}

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further moves are accepted in this status
func (s Status) Terminal() bool {
	return s == Won || s == Lost
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	if s < NotStarted || s > Lost {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "not_started":
		*s = NotStarted
	case "in_progress":
		*s = InProgress
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown status %q", string(text))
	}
	return nil
}

// Size returns N for an N×N grid
func (g Grid) Size() int {
	return len(g)
}

// InBounds reports whether p addresses an existing cell
func (g Grid) InBounds(p Position) bool {
	return p.Y >= 0 && p.Y < len(g) && p.X >= 0 && p.X < len(g[p.Y])
}

// At returns the cost of entering p. p must be in bounds.
func (g Grid) At(p Position) int {
	return g[p.Y][p.X]
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]int(nil), row...)
	}
	return out
}

// Goal returns the bottom-right position of the grid
func (g Grid) Goal() Position {
	return Position{X: len(g) - 1, Y: len(g) - 1}
}

// Cost sums the grid values of every position except the first
func (p Path) Cost(g Grid) int {
	total := 0
	for i := 1; i < len(p); i++ {
		total += g.At(p[i])
	}
	return total
}

// Clone returns a copy of the path
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Step returns the neighbour of p in the given direction
func (p Position) Step(direction string) (Position, bool) {
	switch direction {
	case "up":
		return Position{X: p.X, Y: p.Y - 1}, true
	case "down":
		return Position{X: p.X, Y: p.Y + 1}, true
	case "left":
		return Position{X: p.X - 1, Y: p.Y}, true
	case "right":
		return Position{X: p.X + 1, Y: p.Y}, true
	default:
		return p, false
	}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Clone returns a deep copy of the game state
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	out := *gs
	out.Grid = gs.Grid.Clone()
	out.PlayerPath = gs.PlayerPath.Clone()
	out.ReferencePath = gs.ReferencePath.Clone()
	return &out
}

// History derives the per-move history from the player path
func (gs *GameState) History() []MoveHistoryEntry {
	if len(gs.PlayerPath) < 2 {
		return []MoveHistoryEntry{}
	}
	entries := make([]MoveHistoryEntry, 0, len(gs.PlayerPath)-1)
	score := 0
	for i := 1; i < len(gs.PlayerPath); i++ {
		cost := gs.Grid.At(gs.PlayerPath[i])
		score += cost
		entries = append(entries, MoveHistoryEntry{
			MoveNumber:   i,
			FromPosition: gs.PlayerPath[i-1],
			ToPosition:   gs.PlayerPath[i],
			Cost:         cost,
			ScoreAfter:   score,
		})
	}
	return entries
}
