package engine

import "fmt"

// GameConfig describes a game preset loaded from JSON
type GameConfig struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	GridSize    int        `json:"grid_size"`
	Difficulty  Difficulty `json:"difficulty"`
	Seed        *int64     `json:"seed,omitempty"`
	Layout      []string   `json:"layout,omitempty"`
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	if !config.Difficulty.Valid() {
		return fmt.Errorf("config validation: difficulty must be easy, medium or hard")
	}

	if len(config.Layout) > 0 {
		if len(config.Layout) != config.GridSize {
			return fmt.Errorf("config validation: layout must have %d rows to match grid_size, got %d",
				config.GridSize, len(config.Layout))
		}
		grid, err := ParseLayout(config.Layout)
		if err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		if err := ValidateGrid(grid, config.Difficulty); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
	}

	return nil
}

// StartFromConfig begins a new game as described by the preset
func (e *GameEngine) StartFromConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	if len(config.Layout) > 0 {
		grid, err := ParseLayout(config.Layout)
		if err != nil {
			return err
		}
		return e.StartWithGrid(grid, config.Difficulty)
	}

	var opts []GenerateOption
	if config.Seed != nil {
		opts = append(opts, WithSeed(*config.Seed))
	}
	return e.Start(config.GridSize, config.Difficulty, opts...)
}

// DefaultGameConfig returns the classic 5×5 easy preset
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Classic 5x5 grid with costs from 0 to 4",
		GridSize:    DefaultGridSize,
		Difficulty:  Easy,
	}
}

// RestoredGameConfig describes the preset of a game that was loaded from a save
// rather than started from a named configuration
func RestoredGameConfig(state *GameState) *GameConfig {
	if state == nil || state.Status == NotStarted {
		return DefaultGameConfig()
	}
	return &GameConfig{
		Name:        "restored",
		Description: fmt.Sprintf("Restored %dx%d %s game", state.Size, state.Size, state.Difficulty),
		GridSize:    state.Size,
		Difficulty:  state.Difficulty,
	}
}
