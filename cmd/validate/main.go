// Command validate checks every game preset JSON file in a directory. It
// checks:
//   - JSON structure against the preset schema
//   - Grid size, difficulty and layout rules
//   - Playability: fixed boards (layout or seed) are started and solved
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/greedy-grid-game/game/config"
	"github.com/wricardo/greedy-grid-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single preset file
func validateConfig(m *config.Manager, filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	cfg, err := m.ValidateFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", cfg.Name),
		fmt.Sprintf("✓ Grid: %dx%d", cfg.GridSize, cfg.GridSize),
		fmt.Sprintf("✓ Difficulty: %s", cfg.Difficulty),
	)

	if cfg.Seed == nil && len(cfg.Layout) == 0 {
		result.Errors = append(result.Errors, "✓ Board: random per game")
		return result
	}

	game := engine.NewEngine()
	if err := game.StartFromConfig(cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Board cannot be started: %v", err))
		return result
	}
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Best score: %d", game.GetBestScore()))

	return result
}

// run validates every *.json file in configDir, prints a concise report and
// reports whether all of them are valid
func run(w io.Writer, configDir string) (bool, error) {
	m, err := config.NewManager(configDir)
	if err != nil {
		return false, err
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(m, file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid, nil
}

// main validates ./configs (or the directory given as the first argument) and
// exits with non-zero status if any preset is invalid.
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	valid, err := run(os.Stdout, configDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if !valid {
		os.Exit(1)
	}
}
