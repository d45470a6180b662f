package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OptionsTradingUni/aipredixt/internal/cache"
	"github.com/OptionsTradingUni/aipredixt/internal/config"
	"github.com/OptionsTradingUni/aipredixt/internal/metrics"
	"github.com/OptionsTradingUni/aipredixt/internal/models"
	"github.com/OptionsTradingUni/aipredixt/internal/pipeline"
	"github.com/OptionsTradingUni/aipredixt/internal/sources"
)

type stubOdds struct{ quotes []models.OddsQuote }

func (s stubOdds) GetOdds(_ context.Context, _, _ string) ([]models.OddsQuote, error) {
	return s.quotes, nil
}

type stubSignals struct{}

func (stubSignals) GetSignals(_ context.Context, _ models.Fixture) ([]models.FactorObservation, error) {
	return []models.FactorObservation{
		{Category: models.FactorForm, Weight: 20, Impact: 25, Source: "form-engine"},
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	registry := metrics.NewRegistry()
	orch := pipeline.New(pipeline.Deps{
		Odds: stubOdds{quotes: []models.OddsQuote{{
			Fixture: models.Fixture{
				ID: "fx-1", Sport: "soccer", League: "premier league",
				HomeTeam: "Arsenal", AwayTeam: "Everton", Status: models.StatusUpcoming,
			},
			Bookmaker: "bet365",
			HomeOdds:  2.2, AwayOdds: 3.1, DrawOdds: 3.4,
			Sources: []string{"oddsapi"},
		}}},
		Signals: stubSignals{},
		Leagues: sources.NewLeagueDirectory(),
		Store:   cache.NewMemoryStore(0),
		Metrics: registry,
	}, config.Default().Pipeline, 10*time.Minute)

	s, err := NewServer(config.HTTPConfig{Host: "127.0.0.1", Port: 0}, orch, registry)
	require.NoError(t, err)
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(newTestServer(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPredictionsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := get(s, "/predictions/soccer?date=2026-08-25")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "soccer", result.Sport)
	require.Len(t, result.Predictions, 1)
	assert.Equal(t, "fx-1", result.Predictions[0].Fixture.ID)

	rec = get(s, "/predictions/soccer?date=2026-08-25")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestPredictionsRejectsBadMode(t *testing.T) {
	rec := get(newTestServer(t), "/predictions/soccer?mode=sideways")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	get(s, "/predictions/soccer")

	rec := get(s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aipredixt_pipeline_runs_total")
}

func TestNotFound(t *testing.T) {
	rec := get(newTestServer(t), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
