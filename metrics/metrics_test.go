package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	m.SessionsCreated.Inc()
	m.GamesStarted.WithLabelValues("easy").Inc()
	m.GamesFinished.WithLabelValues("easy", "won").Inc()
	m.MovesTotal.WithLabelValues("ok").Add(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MovesTotal.WithLabelValues("ok")))

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["greedygrid_sessions_created_total"])
	assert.True(t, names["greedygrid_games_finished_total"])
}

func TestHandler(t *testing.T) {
	m := New()
	m.SessionsActive.Set(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "greedygrid_sessions_active 2")
}

func TestNew_IndependentRegistries(t *testing.T) {
	first := New()
	second := New()
	first.SessionsCreated.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(second.SessionsCreated))
}
