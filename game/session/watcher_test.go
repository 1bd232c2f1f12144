package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/greedy-grid-game/game/engine"
)

func TestWatcher_PrunesRemovedSaves(t *testing.T) {
	store, err := NewFilePersistence(t.TempDir())
	require.NoError(t, err)
	m := NewManagerWithPersistence(store)

	_, err = m.Create("doomed", engine.DefaultGameConfig(), "")
	require.NoError(t, err)
	keeper, err := m.Create("keeper", engine.DefaultGameConfig(), "")
	require.NoError(t, err)

	var mu sync.Mutex
	var pruned []string
	w, err := NewWatcher(store.Dir(), m, func(id string) {
		mu.Lock()
		defer mu.Unlock()
		pruned = append(pruned, id)
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	// Saving rewrites the file through a rename and must not prune
	require.NoError(t, keeper.Engine.Start(3, engine.Easy, engine.WithSeed(1)))
	require.NoError(t, m.Save("keeper"))

	require.NoError(t, os.Remove(filepath.Join(store.Dir(), "doomed.grid")))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pruned) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"doomed"}, pruned)
	mu.Unlock()
	assert.Equal(t, 1, m.Count())
	_, err = m.Get("keeper")
	assert.NoError(t, err)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	m := NewManager()
	w, err := NewWatcher(t.TempDir(), m, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), NewManager(), nil)
	require.NoError(t, err)
	assert.Error(t, w.Start())
	assert.NoError(t, w.Stop())
}
