// Package codec implements the versioned binary save format for game states.
//
// A save is the 4-byte magic "GGRD", a big-endian uint16 format version and a
// CBOR map with integer keys holding exactly the persisted GameState fields.
// Decoding is strict: unknown or duplicate keys, trailing bytes and any state
// that fails engine.ValidateState are reported as engine.ErrCorruptState.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/wricardo/greedy-grid-game/game/engine"
)

const (
	// Magic identifies a save file
	Magic = "GGRD"
	// Version is the current format version
	Version uint16 = 1

	headerLen = len(Magic) + 2
)

type position struct {
	_ struct{} `cbor:",toarray"`
	X int
	Y int
}

type record struct {
	Grid          [][]int    `cbor:"1,keyasint"`
	Position      position   `cbor:"2,keyasint"`
	Score         int        `cbor:"3,keyasint"`
	BestScore     int        `cbor:"4,keyasint"`
	MoveCount     int        `cbor:"5,keyasint"`
	PlayerPath    []position `cbor:"6,keyasint"`
	ReferencePath []position `cbor:"7,keyasint"`
	Status        int        `cbor:"8,keyasint"`
	Difficulty    int        `cbor:"9,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: cbor encoder options: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: cbor decoder options: %v", err))
	}
}

// Marshal encodes a game state. Invalid states are rejected with ErrCorruptState.
func Marshal(state *engine.GameState) ([]byte, error) {
	if err := engine.ValidateState(state); err != nil {
		return nil, err
	}

	payload, err := encMode.Marshal(toRecord(state))
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}

	buf := make([]byte, headerLen, headerLen+len(payload))
	copy(buf, Magic)
	binary.BigEndian.PutUint16(buf[len(Magic):], Version)
	return append(buf, payload...), nil
}

// Unmarshal decodes and validates a game state
func Unmarshal(data []byte) (*engine.GameState, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", engine.ErrCorruptState, len(data))
	}
	if !bytes.Equal(data[:len(Magic)], []byte(Magic)) {
		return nil, fmt.Errorf("%w: bad magic %q", engine.ErrCorruptState, data[:len(Magic)])
	}
	if v := binary.BigEndian.Uint16(data[len(Magic):headerLen]); v != Version {
		return nil, fmt.Errorf("%w: unsupported version %d (want %d)", engine.ErrCorruptState, v, Version)
	}

	var rec record
	rest, err := decMode.UnmarshalFirst(data[headerLen:], &rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrCorruptState, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", engine.ErrCorruptState, len(rest))
	}

	state := fromRecord(&rec)
	if err := engine.ValidateState(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Write encodes state to w
func Write(w io.Writer, state *engine.GameState) error {
	data, err := Marshal(state)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write state: %w", engine.ErrIO, err)
	}
	return nil
}

// Read decodes a state from r, consuming it to EOF
func Read(r io.Reader) (*engine.GameState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read state: %w", engine.ErrIO, err)
	}
	return Unmarshal(data)
}

// WriteFile saves state to path atomically: the bytes go to a temporary file in
// the same directory which is synced and then renamed over path. A failed save
// leaves any previous file intact.
func WriteFile(path string, state *engine.GameState) error {
	data, err := Marshal(state)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create directory: %w", engine.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", engine.ErrIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %w", engine.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync temp file: %w", engine.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %w", engine.ErrIO, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename temp file: %w", engine.ErrIO, err)
	}
	return nil
}

// ReadFile loads and validates a state saved with WriteFile
func ReadFile(path string) (*engine.GameState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", engine.ErrIO, path, err)
	}
	return Unmarshal(data)
}

func toRecord(gs *engine.GameState) *record {
	return &record{
		Grid:          gs.Grid,
		Position:      position{X: gs.PlayerPos.X, Y: gs.PlayerPos.Y},
		Score:         gs.PlayerScore,
		BestScore:     gs.BestScore,
		MoveCount:     gs.MoveCount,
		PlayerPath:    toPositions(gs.PlayerPath),
		ReferencePath: toPositions(gs.ReferencePath),
		Status:        int(gs.Status),
		Difficulty:    int(gs.Difficulty),
	}
}

func fromRecord(rec *record) *engine.GameState {
	var grid engine.Grid
	if len(rec.Grid) > 0 {
		grid = engine.Grid(rec.Grid)
	}
	return &engine.GameState{
		Grid:          grid,
		Size:          len(grid),
		PlayerPos:     engine.Position{X: rec.Position.X, Y: rec.Position.Y},
		PlayerScore:   rec.Score,
		MoveCount:     rec.MoveCount,
		PlayerPath:    fromPositions(rec.PlayerPath),
		BestScore:     rec.BestScore,
		ReferencePath: fromPositions(rec.ReferencePath),
		Status:        engine.Status(rec.Status),
		Difficulty:    engine.Difficulty(rec.Difficulty),
	}
}

func toPositions(p engine.Path) []position {
	if p == nil {
		return nil
	}
	out := make([]position, len(p))
	for i, pos := range p {
		out[i] = position{X: pos.X, Y: pos.Y}
	}
	return out
}

func fromPositions(p []position) engine.Path {
	if len(p) == 0 {
		return nil
	}
	out := make(engine.Path, len(p))
	for i, pos := range p {
		out[i] = engine.Position{X: pos.X, Y: pos.Y}
	}
	return out
}
