package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/greedy-grid-game/game/codec"
	"github.com/wricardo/greedy-grid-game/game/config"
	"github.com/wricardo/greedy-grid-game/game/engine"
	"github.com/wricardo/greedy-grid-game/game/service"
	"github.com/wricardo/greedy-grid-game/game/session"
	"github.com/wricardo/greedy-grid-game/metrics"
	"github.com/wricardo/greedy-grid-game/transport/websocket"
)

const puzzlePreset = `{
  "name": "Puzzle",
  "description": "Hand-made 3x3 board",
  "grid_size": 3,
  "difficulty": "medium",
  "layout": ["031", "214", "520"]
}`

type testEnv struct {
	server  *Server
	hub     *websocket.Hub
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "puzzle.json"), []byte(puzzlePreset), 0644))
	configs, err := config.NewManager(dir)
	require.NoError(t, err)

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	m := metrics.New()
	svc := service.NewGameService(session.NewManager(), configs,
		service.WithNotifier(hub), service.WithMetrics(m))

	return &testEnv{
		server:  NewServer(svc, hub, WithMetrics(m)),
		hub:     hub,
		metrics: m,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createPuzzle(t *testing.T) string {
	t.Helper()
	rec := e.do(t, "POST", "/api/sessions", map[string]string{"config_id": "puzzle"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var info service.SessionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	return info.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)

	t.Run("default preset with empty body", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/sessions", nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		info := decode[service.SessionInfo](t, rec)
		assert.NotEmpty(t, info.ID)
		assert.Equal(t, "classic", info.ConfigName)
		assert.Equal(t, engine.InProgress, info.GameState.Status)
		assert.Equal(t, 5, info.GameState.Size)
		require.NotEmpty(t, info.Events)
		assert.Equal(t, engine.EventStart, info.Events[0].Type)
	})

	t.Run("fixed layout", func(t *testing.T) {
		id := env.createPuzzle(t)
		rec := env.do(t, "GET", "/api/sessions/"+id+"/state", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		state := decode[engine.GameState](t, rec)
		assert.Equal(t, engine.Grid{{0, 3, 1}, {2, 1, 4}, {5, 2, 0}}, state.Grid)
		assert.Equal(t, 5, state.BestScore)
	})

	t.Run("seeded overrides are reproducible", func(t *testing.T) {
		body := map[string]interface{}{"grid_size": 6, "difficulty": "hard", "seed": 99}
		first := decode[service.SessionInfo](t, env.do(t, "POST", "/api/sessions", body))
		second := decode[service.SessionInfo](t, env.do(t, "POST", "/api/sessions", body))
		assert.Equal(t, first.GameState.Grid, second.GameState.Grid)
		assert.Equal(t, engine.Hard, first.GameState.Difficulty)
	})

	errorCases := []struct {
		name string
		body interface{}
		code int
	}{
		{"unknown preset", map[string]string{"config_id": "nope"}, http.StatusNotFound},
		{"grid too small", map[string]int{"grid_size": 1}, http.StatusBadRequest},
		{"unknown difficulty", map[string]string{"difficulty": "insane"}, http.StatusBadRequest},
		{"malformed body", "{", http.StatusBadRequest},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, "POST", "/api/sessions", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.EqualValues(t, tc.code, body["code"])
		})
	}
}

func TestMoveFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.createPuzzle(t)
	base := "/api/sessions/" + id

	rec := env.do(t, "POST", base+"/move", map[string]string{"direction": "down"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	move := decode[service.MoveResult](t, rec)
	assert.True(t, move.Success)
	assert.Equal(t, 2, move.GameState.PlayerScore)
	require.NotNil(t, move.Step)
	assert.Equal(t, engine.Position{X: 0, Y: 1}, move.Step.To)
	assert.Equal(t, 2, move.Step.Cost)

	// Diagonal jumps are rejected and leave the game untouched
	rec = env.do(t, "POST", base+"/move", map[string]interface{}{"target": map[string]int{"x": 2, "y": 2}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, "POST", base+"/move", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "POST", base+"/move", map[string]string{"direction": "sideways"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, "POST", base+"/bulk-move", map[string]interface{}{
		"moves": []interface{}{"right", "down", map[string]interface{}{"target": map[string]int{"x": 2, "y": 2}}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bulk := decode[service.BulkMoveResult](t, rec)
	assert.Equal(t, 3, bulk.MovesExecuted)
	assert.True(t, bulk.GameOver)
	assert.Equal(t, engine.Won, bulk.GameState.Status)
	assert.Equal(t, 3, bulk.ScoreDelta)
	assert.Equal(t, "Congratulations! You won with a score of 5!", bulk.Message)

	rec = env.do(t, "POST", base+"/move", map[string]string{"direction": "up"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "no moves after the game ended")

	rec = env.do(t, "POST", base+"/bulk-move", map[string]interface{}{"moves": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "POST", base+"/bulk-move", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameQueries(t *testing.T) {
	env := newTestEnv(t)
	id := env.createPuzzle(t)
	base := "/api/sessions/" + id

	rec := env.do(t, "GET", base+"/valid-moves", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	valid := decode[struct {
		ValidMoves []engine.Position `json:"valid_moves"`
		Count      int               `json:"count"`
	}](t, rec)
	assert.Equal(t, []engine.Position{{X: 0, Y: 1}, {X: 1, Y: 0}}, valid.ValidMoves)
	assert.Equal(t, 2, valid.Count)

	rec = env.do(t, "GET", base+"/best-path", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	best := decode[service.BestPathResponse](t, rec)
	assert.Equal(t, 5, best.BestScore)
	assert.Equal(t, engine.Path{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}}, best.ReferencePath)
	assert.Equal(t, "in_progress", best.Status)

	for _, dir := range []string{"right", "right", "down"} {
		require.Equal(t, http.StatusOK, env.do(t, "POST", base+"/move", map[string]string{"direction": dir}).Code)
	}

	rec = env.do(t, "GET", base+"/history?order=asc&limit=2&page=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[service.HistoryResponse](t, rec)
	assert.Equal(t, 3, history.TotalMoves)
	assert.Equal(t, 2, history.TotalPages)
	assert.True(t, history.HasNext)
	require.Len(t, history.Moves, 2)
	assert.Equal(t, 1, history.Moves[0].MoveNumber)
	assert.Equal(t, 3, history.Moves[0].Cost)

	rec = env.do(t, "GET", base+"/history", nil)
	history = decode[service.HistoryResponse](t, rec)
	require.Len(t, history.Moves, 3)
	assert.Equal(t, 3, history.Moves[0].MoveNumber, "newest first by default")
	assert.Equal(t, 8, history.Moves[0].ScoreAfter)

	for _, path := range []string{"/state", "/valid-moves", "/best-path", "/history", "/save", ""} {
		rec := env.do(t, "GET", "/api/sessions/missing"+path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestNewGame(t *testing.T) {
	env := newTestEnv(t)
	id := env.createPuzzle(t)
	base := "/api/sessions/" + id

	require.Equal(t, http.StatusOK, env.do(t, "POST", base+"/move", map[string]string{"direction": "down"}).Code)

	rec := env.do(t, "POST", base+"/new-game", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	info := decode[service.SessionInfo](t, rec)
	assert.Equal(t, "puzzle", info.ConfigName)
	assert.Zero(t, info.GameState.MoveCount)
	assert.Equal(t, engine.Grid{{0, 3, 1}, {2, 1, 4}, {5, 2, 0}}, info.GameState.Grid)

	rec = env.do(t, "POST", base+"/new-game", map[string]interface{}{"grid_size": 4, "difficulty": "easy"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	info = decode[service.SessionInfo](t, rec)
	assert.Equal(t, 4, info.GameState.Size)
	assert.Equal(t, engine.Easy, info.GameState.Difficulty)

	rec = env.do(t, "POST", "/api/sessions/missing/new-game", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveAndLoad(t *testing.T) {
	env := newTestEnv(t)
	source := env.createPuzzle(t)
	target := env.createPuzzle(t)

	require.Equal(t, http.StatusOK, env.do(t, "POST", "/api/sessions/"+source+"/move", map[string]string{"direction": "right"}).Code)

	rec := env.do(t, "GET", "/api/sessions/"+source+"/save", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), source+".grid")
	saved := rec.Body.Bytes()
	assert.True(t, bytes.HasPrefix(saved, []byte(codec.Magic)))

	decoded, err := codec.Unmarshal(saved)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.PlayerScore)

	t.Run("corrupt save keeps the current game", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/sessions/"+target+"/load", []byte("GGRD\x00\x01\xff"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		state := decode[engine.GameState](t, env.do(t, "GET", "/api/sessions/"+target+"/state", nil))
		assert.Zero(t, state.MoveCount)
	})

	t.Run("valid save replaces the game", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/sessions/"+target+"/load", saved)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		info := decode[service.SessionInfo](t, rec)
		assert.Equal(t, decoded, info.GameState)
		assert.Empty(t, info.ConfigName)
		require.NotEmpty(t, info.Events)
		assert.Equal(t, engine.EventLoad, info.Events[0].Type)
	})

	t.Run("oversized body", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/sessions/"+target+"/load", make([]byte, MaxSaveSize+1))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	rec = env.do(t, "POST", "/api/sessions/missing/load", saved)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndDeleteSessions(t *testing.T) {
	env := newTestEnv(t)
	first := env.createPuzzle(t)
	time.Sleep(2 * time.Millisecond)
	second := env.createPuzzle(t)
	time.Sleep(2 * time.Millisecond)
	rec := env.do(t, "POST", "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	type listResponse struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
		Sort     string                 `json:"sort"`
		Order    string                 `json:"order"`
	}

	list := decode[listResponse](t, env.do(t, "GET", "/api/sessions?sort=created&order=asc", nil))
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, "created", list.Sort)
	assert.Equal(t, "asc", list.Order)
	assert.Equal(t, first, list.Sessions[0].ID)
	assert.Equal(t, second, list.Sessions[1].ID)

	list = decode[listResponse](t, env.do(t, "GET", "/api/sessions?config=puzzle&limit=1&sort=created", nil))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, second, list.Sessions[0].ID)

	rec = env.do(t, "GET", "/api/sessions/"+strings.ToUpper(first), nil)
	assert.Equal(t, http.StatusOK, rec.Code, "session IDs are case-insensitive")

	rec = env.do(t, "DELETE", "/api/sessions/"+first, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, "DELETE", "/api/sessions/"+first, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, "GET", "/api/sessions/"+first, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfigs(t *testing.T) {
	env := newTestEnv(t)

	configs := decode[[]service.ConfigInfo](t, env.do(t, "GET", "/api/configs", nil))
	require.Len(t, configs, 1)
	assert.Equal(t, "puzzle", configs[0].ConfigID)
	assert.True(t, configs[0].Fixed)

	rec := env.do(t, "GET", "/api/configs/puzzle.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[engine.GameConfig](t, rec)
	assert.Equal(t, []string{"031", "214", "520"}, cfg.Layout)

	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/api/configs/missing", nil).Code)

	rec = env.do(t, "POST", "/api/configs", map[string]interface{}{
		"name": "Big Hard", "description": "Large board", "grid_size": 20, "difficulty": "hard",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]string](t, rec)
	assert.Equal(t, "big_hard", created["config_id"])

	rec = env.do(t, "POST", "/api/sessions", map[string]string{"config_id": "big_hard"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 20, decode[service.SessionInfo](t, rec).GameState.Size)

	rec = env.do(t, "POST", "/api/configs", map[string]interface{}{
		"name": "bad", "description": "d", "grid_size": 99, "difficulty": "hard",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "POST", "/api/configs", map[string]interface{}{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, rec.Body.String())

	id := env.createPuzzle(t)
	env.do(t, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "down"})

	rec = env.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "greedygrid_sessions_created_total 1")
	assert.Contains(t, body, `greedygrid_moves_total{result="ok"} 1`)
}

func TestWebSocketNotifications(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server)
	defer ts.Close()

	id := env.createPuzzle(t)

	resp, err := http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/ws?session=missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + id
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.ClientCount(id) == 1 },
		time.Second, 5*time.Millisecond)

	rec := env.do(t, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "down"})
	require.Equal(t, http.StatusOK, rec.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg websocket.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, websocket.EventStateUpdate, msg.Event)
	assert.Equal(t, id, msg.SessionID)
	require.NotNil(t, msg.GameState)
	assert.Equal(t, 2, msg.GameState.PlayerScore)
	require.Len(t, msg.Events, 1)
	assert.Equal(t, engine.EventMove, msg.Events[0].Type)

	rec = env.do(t, "DELETE", "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "session_deleted", msg.Event)
}

func TestWebSocketDisabled(t *testing.T) {
	svc := service.NewGameService(session.NewManager(), mustConfigs(t))
	srv := NewServer(svc, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/ws?session=x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "metrics are only mounted when enabled")
}

func mustConfigs(t *testing.T) *config.Manager {
	t.Helper()
	m, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("session x: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrConfigNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: %w", engine.ErrInvalidMove, engine.ErrNotStarted), http.StatusConflict},
		{engine.ErrInvalidMove, http.StatusUnprocessableEntity},
		{engine.ErrCorruptState, http.StatusBadRequest},
		{service.ErrInvalidRequest, http.StatusBadRequest},
		{engine.ErrInvalidSize, http.StatusBadRequest},
		{engine.ErrInvalidGrid, http.StatusBadRequest},
		{engine.ErrInvalidDifficulty, http.StatusBadRequest},
		{config.ErrInvalidConfig, http.StatusBadRequest},
		{session.ErrInvalidSessionID, http.StatusBadRequest},
		{engine.ErrIO, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
