package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/greedy-grid-game/api"
	"github.com/wricardo/greedy-grid-game/game/codec"
	"github.com/wricardo/greedy-grid-game/game/config"
	"github.com/wricardo/greedy-grid-game/game/engine"
	"github.com/wricardo/greedy-grid-game/transport/mcp"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run MCP stdio server, starting an internal HTTP API if none is available",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "REST API to proxy to when it is already running",
				Sources: cli.EnvVars("GREEDY_API_URL"),
			},
		},
		Action: runStdioMCP,
	}
}

// apiAvailable reports whether a greedygrid server answers on baseURL
func apiAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(strings.TrimSuffix(baseURL, "/") + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an external API when one is
// reachable; otherwise it starts a minimal internal HTTP API bound to a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")
	log.Info().Str("url", baseURL).Msg("Checking for external API server")

	if apiAvailable(baseURL) {
		log.Info().Str("url", baseURL).Msg("External API server found, using it for MCP")
	} else {
		log.Info().Msg("No external API server found, starting internal HTTP server")

		svcs, err := initializeServices(cmd.String("config-dir"), cmd.String("sessions-dir"), cmd.String("default-preset"))
		if err != nil {
			return err
		}
		go svcs.hub.Run()
		defer svcs.hub.Stop()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{
			Handler: api.NewServer(svcs.game, svcs.hub, api.WithMetrics(svcs.metrics)),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Info().Str("url", baseURL).Msg("Internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:  "solve",
		Usage: "Generate a board and print it with its optimal route",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Start from a preset in --config-dir instead of the defaults",
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "Board size (overrides the preset)",
			},
			&cli.StringFlag{
				Name:  "difficulty",
				Usage: "easy, medium or hard (overrides the preset)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Seed for a reproducible board",
			},
			&cli.StringFlag{
				Name:  "save",
				Usage: "Write the new game to this .grid file",
			},
		},
		Action: runSolve,
	}
}

// solveConfig resolves the preset and overrides given on the command line
func solveConfig(cmd *cli.Command) (*engine.GameConfig, error) {
	cfg := engine.DefaultGameConfig()
	if name := cmd.String("preset"); name != "" {
		configs, err := config.NewManager(cmd.String("config-dir"))
		if err != nil {
			return nil, err
		}
		loaded, err := configs.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		copied := *loaded
		cfg = &copied
	}

	if cmd.IsSet("size") {
		cfg.GridSize = int(cmd.Int("size"))
		cfg.Layout = nil
	}
	if cmd.IsSet("difficulty") {
		d, err := engine.ParseDifficulty(cmd.String("difficulty"))
		if err != nil {
			return nil, err
		}
		cfg.Difficulty = d
	}
	if cmd.IsSet("seed") {
		seed := cmd.Int64("seed")
		cfg.Seed = &seed
		cfg.Layout = nil
	}
	return cfg, nil
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := solveConfig(cmd)
	if err != nil {
		return err
	}

	game := engine.NewEngine()
	if err := game.StartFromConfig(cfg); err != nil {
		return err
	}
	state := game.GetState()

	out := cmd.Root().Writer
	fmt.Fprintf(out, "Board %dx%d (%s), best score %d\n\n", state.Size, state.Size, state.Difficulty, state.BestScore)
	writeBoard(out, state.Grid, state.ReferencePath, nil)
	fmt.Fprintf(out, "\nRoute: %s\n", formatRoute(state.ReferencePath))

	if path := cmd.String("save"); path != "" {
		if err := codec.WriteFile(path, state); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved to %s\n", path)
	}
	return nil
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode and validate a .grid save file",
		ArgsUsage: "FILE",
		Action:    runInspect,
	}
}

func runInspect(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("inspect needs exactly one save file")
	}
	path := cmd.Args().First()

	state, err := codec.ReadFile(path)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "%s: valid save (format %s v%d)\n", path, codec.Magic, codec.Version)
	fmt.Fprintf(out, "Status: %s | Difficulty: %s | Size: %dx%d\n", state.Status, state.Difficulty, state.Size, state.Size)
	if state.Status == engine.NotStarted {
		return nil
	}

	fmt.Fprintf(out, "Score: %d | Best: %d | Moves: %d | Position: %s\n\n",
		state.PlayerScore, state.BestScore, state.MoveCount, state.PlayerPos)
	player := state.PlayerPos
	writeBoard(out, state.Grid, state.PlayerPath, &player)
	fmt.Fprintf(out, "\nPlayer route: %s\n", formatRoute(state.PlayerPath))
	fmt.Fprintf(out, "Best route:   %s\n", formatRoute(state.ReferencePath))
	return nil
}

// writeBoard prints the grid with marked cells starred and the player in
// brackets
func writeBoard(w io.Writer, grid engine.Grid, marked engine.Path, player *engine.Position) {
	onPath := make(map[engine.Position]bool, len(marked))
	for _, p := range marked {
		onPath[p] = true
	}

	for y, row := range grid {
		cells := make([]string, len(row))
		for x, cost := range row {
			pos := engine.Position{X: x, Y: y}
			switch {
			case player != nil && pos == *player:
				cells[x] = fmt.Sprintf("[%d]", cost)
			case onPath[pos]:
				cells[x] = fmt.Sprintf(" %d*", cost)
			default:
				cells[x] = fmt.Sprintf(" %d ", cost)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, ""))
	}
}

func formatRoute(p engine.Path) string {
	steps := make([]string, len(p))
	for i, pos := range p {
		steps[i] = pos.String()
	}
	return strings.Join(steps, " → ")
}
