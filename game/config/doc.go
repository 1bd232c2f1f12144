// Package config provides preset management for the Greedy Grid Game.
//
// The config package handles:
//   - Loading game presets from JSON files
//   - Schema and playability validation
//   - Default preset management
//   - Preset discovery and listing
//
// Configuration Format:
//
// Presets are JSON files in the configs directory. Each preset defines a
// name, a description, the grid size and the difficulty ("easy", "medium" or
// "hard"). An optional seed makes the generated grid reproducible, and an
// optional layout of digit rows fixes the grid outright:
//
//	{
//	  "name": "Puzzle",
//	  "description": "Hand-made 3x3 board",
//	  "grid_size": 3,
//	  "difficulty": "medium",
//	  "layout": ["031", "214", "520"]
//	}
//
// Files are checked against PresetSchema first and then by
// engine.ValidateGameConfig, so a layout must also respect the difficulty's
// value range and have zero-cost start and goal cells.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("puzzle")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When classic.json is missing or invalid the built-in 5x5 easy preset is the
// default.
package config
