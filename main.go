// Command greedygrid starts the Greedy Grid Game server.
//
// It supports four commands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "solve" – generates a board and prints it with its optimal route
//  4. "inspect" – decodes and validates a .grid save file
//
// Flags control host/port, preset and save directories, logging, and optional
// ngrok tunneling for easy external access during development. Every flag can
// also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/greedy-grid-game/api"
	"github.com/wricardo/greedy-grid-game/game/config"
	"github.com/wricardo/greedy-grid-game/game/service"
	"github.com/wricardo/greedy-grid-game/game/session"
	"github.com/wricardo/greedy-grid-game/logging"
	"github.com/wricardo/greedy-grid-game/metrics"
	"github.com/wricardo/greedy-grid-game/transport/mcp"
	"github.com/wricardo/greedy-grid-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Greedy Grid Game Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Exiting")
	}
}

// newApp builds the command tree. Global flags apply to every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "greedygrid",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("GREEDY_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("GREEDY_PORT", "PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game presets",
				Sources: cli.EnvVars("GREEDY_CONFIG_DIR", "CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-preset",
				Usage:   "Preset used when a request names none (defaults to classic)",
				Sources: cli.EnvVars("GREEDY_DEFAULT_PRESET"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory holding one .grid save per session",
				Sources: cli.EnvVars("GREEDY_SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("GREEDY_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "pretty-logs",
				Usage:   "Human readable console logs",
				Sources: cli.EnvVars("GREEDY_PRETTY_LOGS"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Setup(logging.Config{
				Level:  cmd.String("log-level"),
				Pretty: cmd.Bool("pretty-logs"),
			})
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			solveCommand(),
			inspectCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "Run HTTP server with API, WebSocket, metrics and MCP endpoint",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				Usage:   "Drop sessions from memory after this long without access",
				Sources: cli.EnvVars("GREEDY_SESSION_TTL"),
			},
			&cli.StringFlag{
				Name:    "preset-refresh",
				Value:   "@every 5m",
				Usage:   "Cron schedule for re-reading preset files from --config-dir",
				Sources: cli.EnvVars("GREEDY_PRESET_REFRESH"),
			},
			&cli.StringFlag{
				Name:    "cleanup-schedule",
				Value:   "@hourly",
				Usage:   "Cron schedule of the expired session sweep",
				Sources: cli.EnvVars("GREEDY_CLEANUP_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServe,
	}
}

// services bundles everything the server commands share
type services struct {
	game     service.GameService
	sessions *session.Manager
	configs  *config.Manager
	metrics  *metrics.Metrics
	hub      *websocket.Hub
	saveDir  string
}

// initializeServices wires the preset and session managers, restores saved
// sessions and builds the game service. The hub is created but not started.
func initializeServices(configDir, sessionsDir, defaultPreset string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if defaultPreset != "" {
		if err := configManager.SetDefault(defaultPreset); err != nil {
			return nil, fmt.Errorf("default preset %q: %w", defaultPreset, err)
		}
	}

	persistence, err := session.NewFilePersistence(sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)

	// Load persisted sessions on startup
	loaded, err := sessionManager.LoadPersistedSessions()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load persisted sessions")
	} else {
		log.Info().Int("sessions", loaded).Str("dir", persistence.Dir()).Msg("Restored sessions")
	}

	m := metrics.New()
	m.SessionsActive.Set(float64(sessionManager.Count()))

	hub := websocket.NewHub()
	gameService := service.NewGameService(sessionManager, configManager,
		service.WithNotifier(hub),
		service.WithMetrics(m),
	)

	return &services{
		game:     gameService,
		sessions: sessionManager,
		configs:  configManager,
		metrics:  m,
		hub:      hub,
		saveDir:  persistence.Dir(),
	}, nil
}

// newHandler combines the REST API with the MCP JSON-RPC endpoint
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})

	return mainRouter
}

// cleanupExpiredSessions drops idle sessions from memory. Their save files stay
// on disk and are reloaded on the next access.
func cleanupExpiredSessions(s *services, maxAge time.Duration) int {
	removed := s.sessions.CleanupExpiredSessions(maxAge)
	s.metrics.SessionsExpired.Add(float64(removed))
	s.metrics.SessionsActive.Set(float64(s.sessions.Count()))
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Cleaned up expired sessions")
	}
	return removed
}

// refreshPresets re-reads preset files so hand edits show up without a restart
func refreshPresets(s *services) {
	s.configs.RefreshCache()
	log.Debug().Str("default", s.configs.GetDefault().Name).Msg("Refreshed presets")
}

// runServe starts the HTTP server with REST API, WebSocket hub, metrics and an
// /mcp proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	svcs, err := initializeServices(cmd.String("config-dir"), cmd.String("sessions-dir"), cmd.String("default-preset"))
	if err != nil {
		return err
	}

	go svcs.hub.Run()
	defer svcs.hub.Stop()

	// Prune sessions whose save file is deleted behind our back
	watcher, err := session.NewWatcher(svcs.saveDir, svcs.sessions, func(id string) {
		svcs.metrics.SessionsActive.Set(float64(svcs.sessions.Count()))
		svcs.hub.BroadcastEvent(id, "session_deleted", map[string]string{"session_id": id})
	})
	if err != nil {
		return fmt.Errorf("failed to create save watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", svcs.saveDir, err)
	}
	defer watcher.Stop()

	ttl := cmd.Duration("session-ttl")
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cmd.String("cleanup-schedule"), func() {
		cleanupExpiredSessions(svcs, ttl)
	}); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", cmd.String("cleanup-schedule"), err)
	}
	if _, err := scheduler.AddFunc(cmd.String("preset-refresh"), func() {
		refreshPresets(svcs)
	}); err != nil {
		return fmt.Errorf("invalid preset refresh schedule %q: %w", cmd.String("preset-refresh"), err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	apiServer := api.NewServer(svcs.game, svcs.hub, api.WithMetrics(svcs.metrics))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	// Wait for shutdown signal or a listener failure
	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	case runErr = <-serveErr:
		log.Error().Err(runErr).Msg("HTTP server failed")
		stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown error")
	}
	if err := svcs.sessions.SaveAllSessions(); err != nil {
		log.Warn().Err(err).Msg("Failed to save sessions on shutdown")
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Info().Msg("Server stopped")
	return runErr
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn().Msg("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info().Msg("Starting ngrok tunnel")

	// Configure ngrok endpoint
	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("websocket", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("Ngrok tunnel established")

	// Serve HTTP through ngrok tunnel
	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Error().Err(err).Msg("Ngrok server error")
	}
	log.Info().Msg("Ngrok tunnel closed")
}
