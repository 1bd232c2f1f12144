package engine

import (
	"fmt"
	"math/rand/v2"
)

// GenerateOption customizes grid generation
type GenerateOption func(*generateOptions)

type generateOptions struct {
	seed    int64
	seeded  bool
	randSrc rand.Source
}

// WithSeed makes generation fully deterministic for the given seed
func WithSeed(seed int64) GenerateOption {
	return func(o *generateOptions) {
		o.seed = seed
		o.seeded = true
	}
}

// WithSource draws cell values from the provided source
func WithSource(src rand.Source) GenerateOption {
	return func(o *generateOptions) {
		o.randSrc = src
	}
}

// Generate produces an n×n grid with values drawn uniformly from [0, d.MaxValue()).
// The start and goal cells are always 0.
func Generate(n int, d Difficulty, opts ...GenerateOption) (Grid, error) {
	if n < MinGridSize || n > MaxGridSize {
		return nil, fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidSize, n, MinGridSize, MaxGridSize)
	}
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}

	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}

	intN := rand.IntN
	switch {
	case o.randSrc != nil:
		intN = rand.New(o.randSrc).IntN
	case o.seeded:
		intN = rand.New(rand.NewPCG(uint64(o.seed), uint64(o.seed)^0x9e3779b97f4a7c15)).IntN
	}

	maxValue := d.MaxValue()
	grid := make(Grid, n)
	for y := range grid {
		grid[y] = make([]int, n)
		for x := range grid[y] {
			grid[y][x] = intN(maxValue)
		}
	}

	grid[0][0] = 0
	grid[n-1][n-1] = 0

	return grid, nil
}

// ParseLayout builds a grid from rows of digits, e.g. []string{"031", "214", "520"}
func ParseLayout(layout []string) (Grid, error) {
	n := len(layout)
	if n < MinGridSize {
		return nil, fmt.Errorf("%w: layout has %d rows", ErrInvalidSize, n)
	}

	grid := make(Grid, n)
	for y, row := range layout {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidGrid, y+1, len(row), n)
		}
		grid[y] = make([]int, n)
		for x, ch := range row {
			if ch < '0' || ch > '9' {
				return nil, fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrInvalidGrid, ch, y+1, x+1)
			}
			grid[y][x] = int(ch - '0')
		}
	}

	return grid, nil
}

// ValidateGrid checks that grid is a playable board for the given difficulty
func ValidateGrid(grid Grid, d Difficulty) error {
	n := len(grid)
	if n < MinGridSize || n > MaxGridSize {
		return fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	if !d.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}

	maxValue := d.MaxValue()
	for y, row := range grid {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidGrid, y, len(row), n)
		}
		for x, v := range row {
			if v < 0 || v >= maxValue {
				return fmt.Errorf("%w: value %d at (%d,%d) outside [0,%d)", ErrInvalidGrid, v, x, y, maxValue)
			}
		}
	}

	if grid[0][0] != 0 || grid[n-1][n-1] != 0 {
		return fmt.Errorf("%w: start and goal cells must be 0", ErrInvalidGrid)
	}

	return nil
}
