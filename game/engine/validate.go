package engine

import "fmt"

// ValidateState checks a game state against every data model invariant. All
// failures wrap ErrCorruptState.
func ValidateState(gs *GameState) error {
	if err := validateState(gs); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return nil
}

func validateState(gs *GameState) error {
	if gs == nil {
		return fmt.Errorf("state is nil")
	}
	if !gs.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %d", int(gs.Difficulty))
	}

	switch gs.Status {
	case NotStarted:
		return validateNotStarted(gs)
	case InProgress, Won, Lost:
	default:
		return fmt.Errorf("unknown status %d", int(gs.Status))
	}

	if err := ValidateGrid(gs.Grid, gs.Difficulty); err != nil {
		return err
	}
	if gs.Size != gs.Grid.Size() {
		return fmt.Errorf("size %d does not match grid size %d", gs.Size, gs.Grid.Size())
	}

	goal := gs.Grid.Goal()

	// Reference path must be a complete, optimal traversal
	if err := validatePath(gs.Grid, gs.ReferencePath); err != nil {
		return fmt.Errorf("reference path: %v", err)
	}
	if last := gs.ReferencePath[len(gs.ReferencePath)-1]; last != goal {
		return fmt.Errorf("reference path ends at %s, expected %s", last, goal)
	}
	if cost := gs.ReferencePath.Cost(gs.Grid); cost != gs.BestScore {
		return fmt.Errorf("best score %d does not match reference path cost %d", gs.BestScore, cost)
	}
	best, _, err := Solve(gs.Grid)
	if err != nil {
		return err
	}
	if best != gs.BestScore {
		return fmt.Errorf("best score %d is not optimal (%d)", gs.BestScore, best)
	}

	// Player path
	if err := validatePath(gs.Grid, gs.PlayerPath); err != nil {
		return fmt.Errorf("player path: %v", err)
	}
	if gs.MoveCount != len(gs.PlayerPath)-1 {
		return fmt.Errorf("move count %d does not match path length %d", gs.MoveCount, len(gs.PlayerPath))
	}
	last := gs.PlayerPath[len(gs.PlayerPath)-1]
	if gs.PlayerPos != last {
		return fmt.Errorf("position %s does not match path end %s", gs.PlayerPos, last)
	}
	if cost := gs.PlayerPath.Cost(gs.Grid); cost != gs.PlayerScore {
		return fmt.Errorf("score %d does not match path cost %d", gs.PlayerScore, cost)
	}
	for i, p := range gs.PlayerPath[:len(gs.PlayerPath)-1] {
		if p == goal {
			return fmt.Errorf("player path reaches the goal at step %d before its end", i)
		}
	}

	switch gs.Status {
	case InProgress:
		if last == goal {
			return fmt.Errorf("in-progress game already at goal")
		}
	case Won:
		if last != goal {
			return fmt.Errorf("won game not at goal")
		}
		if gs.PlayerScore > gs.BestScore {
			return fmt.Errorf("won game with score %d above best %d", gs.PlayerScore, gs.BestScore)
		}
	case Lost:
		if last != goal {
			return fmt.Errorf("lost game not at goal")
		}
		if gs.PlayerScore <= gs.BestScore {
			return fmt.Errorf("lost game with score %d at or below best %d", gs.PlayerScore, gs.BestScore)
		}
	}

	return nil
}

func validateNotStarted(gs *GameState) error {
	if len(gs.Grid) != 0 || gs.Size != 0 {
		return fmt.Errorf("not-started game carries a grid")
	}
	if len(gs.PlayerPath) != 0 || len(gs.ReferencePath) != 0 {
		return fmt.Errorf("not-started game carries a path")
	}
	if gs.PlayerScore != 0 || gs.BestScore != 0 || gs.MoveCount != 0 {
		return fmt.Errorf("not-started game carries scores")
	}
	if gs.PlayerPos != (Position{}) {
		return fmt.Errorf("not-started game position %s is not the origin", gs.PlayerPos)
	}
	return nil
}

// validatePath checks that p starts at the origin, stays in bounds and only takes
// Manhattan-adjacent steps
func validatePath(grid Grid, p Path) error {
	if len(p) == 0 {
		return fmt.Errorf("empty")
	}
	if p[0] != (Position{}) {
		return fmt.Errorf("starts at %s, expected (0,0)", p[0])
	}
	for i, pos := range p {
		if !grid.InBounds(pos) {
			return fmt.Errorf("step %d %s out of bounds", i, pos)
		}
		if i > 0 && ManhattanDistance(p[i-1], pos) != 1 {
			return fmt.Errorf("step %d %s not adjacent to %s", i, pos, p[i-1])
		}
	}
	return nil
}
