package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/greedy-grid-game/game/engine"
)

func scenarioGrid() engine.Grid {
	return engine.Grid{
		{0, 3, 1},
		{2, 1, 4},
		{5, 2, 0},
	}
}

func stateAfter(t *testing.T, moves ...string) *engine.GameState {
	t.Helper()
	e := engine.NewEngine()
	require.NoError(t, e.StartWithGrid(scenarioGrid(), engine.Medium))
	for _, m := range moves {
		require.NoError(t, e.MoveDirection(m))
	}
	return e.GetState()
}

func statesByStatus(t *testing.T) map[string]*engine.GameState {
	seeded := engine.NewEngine()
	require.NoError(t, seeded.Start(12, engine.Hard, engine.WithSeed(8)))
	require.NoError(t, seeded.MoveDirection("right"))

	return map[string]*engine.GameState{
		"not started":  engine.NewEngine().GetState(),
		"in progress":  stateAfter(t, "right", "down", "left"),
		"won":          stateAfter(t, "down", "right", "down", "right"),
		"lost":         stateAfter(t, "right", "right", "down", "down"),
		"seeded 12x12": seeded.GetState(),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, state := range statesByStatus(t) {
		t.Run(name, func(t *testing.T) {
			data, err := Marshal(state)
			require.NoError(t, err)

			assert.Equal(t, []byte(Magic), data[:4])
			assert.Equal(t, []byte{0, 1}, data[4:6])

			decoded, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, state, decoded)

			again, err := Marshal(decoded)
			require.NoError(t, err)
			assert.Equal(t, data, again, "encoding must be deterministic")
		})
	}
}

func TestStreamRoundTrip(t *testing.T) {
	state := stateAfter(t, "down")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, state))

	decoded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}

func TestMarshal_RejectsInvalidState(t *testing.T) {
	state := stateAfter(t, "down")
	state.PlayerScore = 99

	_, err := Marshal(state)
	assert.ErrorIs(t, err, engine.ErrCorruptState)

	_, err = Marshal(nil)
	assert.ErrorIs(t, err, engine.ErrCorruptState)
}

func TestUnmarshal_Header(t *testing.T) {
	data, err := Marshal(stateAfter(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", data[:5]},
		{"bad magic", append([]byte("GRID"), data[4:]...)},
		{"version mismatch", append([]byte("GGRD\x00\x02"), data[6:]...)},
		{"version zero", append([]byte("GGRD\x00\x00"), data[6:]...)},
		{"header only", data[:6]},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state, err := Unmarshal(test.data)
			assert.ErrorIs(t, err, engine.ErrCorruptState)
			assert.Nil(t, state)
		})
	}
}

func TestUnmarshal_Truncated(t *testing.T) {
	data, err := Marshal(stateAfter(t, "right", "down"))
	require.NoError(t, err)

	for n := 0; n < len(data); n++ {
		_, err := Unmarshal(data[:n])
		if !errors.Is(err, engine.ErrCorruptState) {
			t.Fatalf("prefix of %d/%d bytes: expected ErrCorruptState, got %v", n, len(data), err)
		}
	}
}

func TestUnmarshal_TrailingBytes(t *testing.T) {
	data, err := Marshal(stateAfter(t))
	require.NoError(t, err)

	_, err = Unmarshal(append(data, 0x00))
	assert.ErrorIs(t, err, engine.ErrCorruptState)
}

func encodeWithHeader(t *testing.T, v any) []byte {
	t.Helper()
	payload, err := encMode.Marshal(v)
	require.NoError(t, err)
	return append([]byte("GGRD\x00\x01"), payload...)
}

func TestUnmarshal_StrictRecord(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		rec := map[int]any{3: 0, 4: 0, 5: 0, 8: 0, 9: 1, 42: "extra"}
		_, err := Unmarshal(encodeWithHeader(t, rec))
		assert.ErrorIs(t, err, engine.ErrCorruptState)
	})

	t.Run("duplicate key", func(t *testing.T) {
		// map(2) {3: 0, 3: 0}
		payload := []byte{0xa2, 0x03, 0x00, 0x03, 0x00}
		_, err := Unmarshal(append([]byte("GGRD\x00\x01"), payload...))
		assert.ErrorIs(t, err, engine.ErrCorruptState)
	})

	t.Run("not a map", func(t *testing.T) {
		_, err := Unmarshal(encodeWithHeader(t, []int{1, 2, 3}))
		assert.ErrorIs(t, err, engine.ErrCorruptState)
	})

	t.Run("position with three coordinates", func(t *testing.T) {
		rec := map[int]any{2: []int{0, 0, 0}, 9: 1}
		_, err := Unmarshal(encodeWithHeader(t, rec))
		assert.ErrorIs(t, err, engine.ErrCorruptState)
	})
}

func TestUnmarshal_InvariantFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rec *record)
	}{
		{"score does not match path", func(rec *record) { rec.Score++ }},
		{"path not contiguous", func(rec *record) {
			rec.PlayerPath = []position{{X: 0, Y: 0}, {X: 1, Y: 1}}
			rec.Position = position{X: 1, Y: 1}
			rec.Score = 1
		}},
		{"best score not optimal", func(rec *record) { rec.BestScore = 4 }},
		{"unknown status", func(rec *record) { rec.Status = 9 }},
		{"unknown difficulty", func(rec *record) { rec.Difficulty = 0 }},
		{"move count mismatch", func(rec *record) { rec.MoveCount = 7 }},
		{"won flag before goal", func(rec *record) { rec.Status = int(engine.Won) }},
		{"non-square grid", func(rec *record) { rec.Grid = [][]int{{0, 3, 1}, {2, 1}, {5, 2, 0}} }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := toRecord(stateAfter(t, "down"))
			test.mutate(rec)

			state, err := Unmarshal(encodeWithHeader(t, rec))
			assert.ErrorIs(t, err, engine.ErrCorruptState)
			assert.Nil(t, state)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, os.ErrDeadlineExceeded }

func TestStreamIOErrors(t *testing.T) {
	err := Write(failingWriter{}, stateAfter(t))
	assert.ErrorIs(t, err, engine.ErrIO)
	assert.ErrorIs(t, err, os.ErrClosed)

	_, err = Read(failingReader{})
	assert.ErrorIs(t, err, engine.ErrIO)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "game.grid")

	first := stateAfter(t, "down")
	require.NoError(t, WriteFile(path, first))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, loaded)

	t.Run("failed save keeps previous file", func(t *testing.T) {
		bad := stateAfter(t, "right")
		bad.BestScore = 0
		assert.ErrorIs(t, WriteFile(path, bad), engine.ErrCorruptState)

		loaded, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, first, loaded)
	})

	t.Run("unwritable directory keeps previous file", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}
		roDir := t.TempDir()
		roPath := filepath.Join(roDir, "game.grid")
		require.NoError(t, WriteFile(roPath, first))

		require.NoError(t, os.Chmod(roDir, 0500))
		t.Cleanup(func() { os.Chmod(roDir, 0755) })

		err := WriteFile(roPath, stateAfter(t, "down", "right"))
		assert.ErrorIs(t, err, engine.ErrIO)
		assert.ErrorIs(t, err, os.ErrPermission)

		loaded, err := ReadFile(roPath)
		require.NoError(t, err)
		assert.Equal(t, first, loaded)
	})

	t.Run("failed rename removes temp file", func(t *testing.T) {
		blockedDir := t.TempDir()
		target := filepath.Join(blockedDir, "game.grid")
		require.NoError(t, os.MkdirAll(filepath.Join(target, "keep"), 0755))

		err := WriteFile(target, first)
		assert.ErrorIs(t, err, engine.ErrIO)
		assert.DirExists(t, filepath.Join(target, "keep"))

		entries, err := os.ReadDir(blockedDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "game.grid", entries[0].Name())
	})

	t.Run("overwrite replaces contents", func(t *testing.T) {
		second := stateAfter(t, "down", "right", "down", "right")
		require.NoError(t, WriteFile(path, second))

		loaded, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, engine.Won, loaded.Status)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "game.grid", entries[0].Name())
	})

	t.Run("missing file is an IO error", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "absent.grid"))
		assert.ErrorIs(t, err, engine.ErrIO)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("corrupt file", func(t *testing.T) {
		corrupt := filepath.Join(dir, "corrupt.grid")
		require.NoError(t, os.WriteFile(corrupt, []byte("GGRD\x00\x01garbage"), 0644))
		_, err := ReadFile(corrupt)
		assert.ErrorIs(t, err, engine.ErrCorruptState)
	})
}
