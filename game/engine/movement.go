package engine

import "fmt"

// IsValidMove reports whether target is a legal next step. It never mutates state.
func (e *GameEngine) IsValidMove(target Position) bool {
	gs := e.state
	if gs.Status != InProgress {
		return false
	}
	if !gs.Grid.InBounds(target) {
		return false
	}
	return ManhattanDistance(gs.PlayerPos, target) == 1
}

// Move steps the player onto target and charges its cost. Reaching the goal ends
// the game: Won when the score is at most the optimal score, Lost otherwise.
func (e *GameEngine) Move(target Position) error {
	if !e.IsValidMove(target) {
		if e.state.Status == NotStarted {
			return fmt.Errorf("%w: %w", ErrInvalidMove, ErrNotStarted)
		}
		return fmt.Errorf("%w: %s from %s (status %s)", ErrInvalidMove, target, e.state.PlayerPos, e.state.Status)
	}

	gs := e.state
	gs.PlayerScore += gs.Grid.At(target)
	gs.PlayerPath = append(gs.PlayerPath, target)
	gs.MoveCount++
	gs.PlayerPos = target
	e.emit(EventMove)

	if target == gs.Grid.Goal() {
		outcome := EventLost
		gs.Status = Lost
		if gs.PlayerScore <= gs.BestScore {
			gs.Status = Won
			outcome = EventWon
		}
		e.emit(EventStatus)
		e.emit(outcome)
	}

	return nil
}

// MoveDirection moves one cell up, down, left or right
func (e *GameEngine) MoveDirection(direction string) error {
	target, ok := e.state.PlayerPos.Step(direction)
	if !ok {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidMove, direction)
	}
	return e.Move(target)
}

// ValidMoves returns every position the player may move to next, in
// down, right, up, left order
func (e *GameEngine) ValidMoves() []Position {
	moves := []Position{}
	for _, d := range neighbours {
		target := Position{X: e.state.PlayerPos.X + d.dx, Y: e.state.PlayerPos.Y + d.dy}
		if e.IsValidMove(target) {
			moves = append(moves, target)
		}
	}
	return moves
}

// BulkMove executes moves in sequence and stops at the first failure or when the
// game ends. It returns the number of moves applied.
func (e *GameEngine) BulkMove(targets []Position) (int, error) {
	applied := 0
	for _, target := range targets {
		if e.IsGameOver() {
			break
		}
		if err := e.Move(target); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
