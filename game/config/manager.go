package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/wricardo/greedy-grid-game/game/engine"
	"github.com/wricardo/greedy-grid-game/game/service"
	"github.com/wricardo/greedy-grid-game/logging"
)

// DefaultConfigID names the preset used when a session asks for none
const DefaultConfigID = "classic"

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")

	nameSanitizer = strings.NewReplacer("/", "", "\\", "", "..", "")
)

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultID     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	schema        *gojsonschema.Schema
	logger        zerolog.Logger
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(PresetSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile preset schema: %w", err)
	}

	m := &Manager{
		configDir: configDir,
		defaultID: DefaultConfigID,
		configs:   make(map[string]*engine.GameConfig),
		schema:    schema,
		logger:    logging.Component("config"),
	}

	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := m.readConfig(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	return config, nil
}

// ListConfigs returns information about all valid configurations, sorted by ID.
// Invalid files are logged and skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(name)
		if err != nil {
			m.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping invalid configuration")
			continue
		}

		configs = append(configs, Describe(entry.Name(), name, config))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// Describe summarizes a preset for listings
func Describe(filename, configID string, config *engine.GameConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    configID,
		Name:        config.Name,
		Description: config.Description,
		GridSize:    config.GridSize,
		Difficulty:  config.Difficulty,
		Fixed:       config.Seed != nil || len(config.Layout) > 0,
	}
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// GetDefaultID returns the configuration ID of the default preset
func (m *Manager) GetDefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default configuration by name. The choice survives
// RefreshCache as long as its file does.
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = normalizeName(name)
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations so the next load reads from disk.
// The default configuration is reloaded right away.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// SaveConfig validates a configuration and writes it to <name>.json
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	name = normalizeName(name)
	if name == "" {
		return fmt.Errorf("%w: empty configuration name", ErrInvalidConfig)
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// Marshal config to JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := m.validateSchema(data); err != nil {
		return err
	}

	configPath := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	m.logger.Info().Str("config", name).Msg("Saved configuration")
	return nil
}

// ValidateFile checks a preset file against the schema and the game rules
// without caching it
func (m *Manager) ValidateFile(path string) (*engine.GameConfig, error) {
	return m.readConfig(path)
}

func (m *Manager) readConfig(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := m.validateSchema(data); err != nil {
		return nil, err
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

func (m *Manager) validateSchema(data []byte) error {
	result, err := m.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}

// loadDefaultConfig loads the default preset (classic.json unless SetDefault
// chose another) and falls back to the built-in preset
func (m *Manager) loadDefaultConfig() {
	m.mu.RLock()
	id := m.defaultID
	m.mu.RUnlock()

	config, err := m.LoadConfig(id)
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) || id != DefaultConfigID {
			m.logger.Warn().Err(err).Str("config", id).Msg("Default configuration unavailable, using built-in preset")
		}
		config = engine.DefaultGameConfig()
		id = DefaultConfigID
	}

	m.mu.Lock()
	m.defaultID = id
	m.defaultConfig = config
	m.mu.Unlock()
}

func normalizeName(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".json")
	return nameSanitizer.Replace(name)
}
