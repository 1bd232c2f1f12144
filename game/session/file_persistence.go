package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/greedy-grid-game/game/codec"
	"github.com/wricardo/greedy-grid-game/game/engine"
	"github.com/wricardo/greedy-grid-game/game/service"
)

// FilePersistence stores each session as <id>.grid in the binary save format.
// Creation and last access times are not part of the save; on load both come
// from the file's modification time.
type FilePersistence struct {
	sessionsDir string
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create sessions directory: %w", engine.ErrIO, err)
	}

	return &FilePersistence{
		sessionsDir: sessionsDir,
	}, nil
}

// Dir returns the directory holding the save files
func (fp *FilePersistence) Dir() string {
	return fp.sessionsDir
}

// Save atomically writes the session's game state
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if err := ValidateID(session.ID); err != nil {
		return err
	}

	if err := codec.WriteFile(fp.getFilePath(session.ID), session.Engine.GetState()); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// Load restores a session from its save file
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	filePath := fp.getFilePath(id)
	info, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat session file: %w", engine.ErrIO, err)
	}

	state, err := codec.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	gameEngine := engine.NewEngine()
	if err := gameEngine.Load(state); err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	return &service.Session{
		ID:             strings.ToLower(id),
		Engine:         gameEngine,
		Config:         engine.RestoredGameConfig(state),
		CreatedAt:      info.ModTime(),
		LastAccessedAt: info.ModTime(),
	}, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	err := os.Remove(fp.getFilePath(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: remove session file: %w", engine.ErrIO, err)
	}
	return nil
}

// ListAll returns all persisted session IDs in lexical order
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: read sessions directory: %w", engine.ErrIO, err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := idFromFilename(entry.Name()); ok {
			sessionIDs = append(sessionIDs, id)
		}
	}
	sort.Strings(sessionIDs)

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	if ValidateID(id) != nil {
		return false
	}
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, strings.ToLower(id)+FileExtension)
}

// idFromFilename extracts the session ID from a save file name. Temporary files
// left by an interrupted save start with a dot and are ignored.
func idFromFilename(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, FileExtension) {
		return "", false
	}
	id := strings.TrimSuffix(name, FileExtension)
	if ValidateID(id) != nil {
		return "", false
	}
	return id, true
}
