// Package engine provides the core game logic for the Greedy Grid Game.
//
// The engine package implements the game mechanics including:
//   - Seeded grid generation per difficulty level
//   - Optimal path computation (Dijkstra over entered-cell costs)
//   - Move validation and the NotStarted/InProgress/Won/Lost state machine
//   - State validation used when loading saved games
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the complete state of one game,
// while GameConfig describes a preset loaded from JSON files.
//
// Usage:
//
//	gameEngine := engine.NewEngine()
//	unsubscribe := gameEngine.Subscribe(func(ev engine.Event) {
//		fmt.Println(ev.Type, ev.Score)
//	})
//	defer unsubscribe()
//
//	if err := gameEngine.Start(5, engine.Easy, engine.WithSeed(42)); err != nil {
//		log.Fatal(err)
//	}
//
//	// Step right, then down
//	_ = gameEngine.Move(engine.Position{X: 1, Y: 0})
//	_ = gameEngine.MoveDirection("down")
//
// Game Rules:
//
// The player starts at the top-left cell and walks to the bottom-right cell one
// orthogonal step at a time. Entering a cell adds its value to the score. The
// game is won when the goal is reached with a score no greater than the optimal
// score computed at start, and lost otherwise.
//
// Tie-break:
//
// Solve expands neighbours in down, right, up, left order and orders its
// frontier by (cost, discovery sequence). A predecessor is only replaced by a
// strictly cheaper route, so the reference path is stable for a given grid.
package engine
