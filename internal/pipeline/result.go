package pipeline

import (
	"errors"
	"time"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

// Mode selects how the orchestrator treats the shortlist.
type Mode string

const (
	// ModeAnalyzeAll prices every shortlisted fixture; per-fixture failures
	// are dropped, not fatal.
	ModeAnalyzeAll Mode = "all"

	// ModeBestPick analyzes the top-N shortlist and returns the single
	// highest-expected-value fixture; failures propagate.
	ModeBestPick Mode = "best"
)

// State names a pipeline phase. Failed is reachable from any state.
type State string

const (
	StateScanning          State = "scanning"
	StateDeepDiving        State = "deep_diving"
	StateBuildingNarrative State = "building_narrative"
	StateSelecting         State = "selecting"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// ErrNoCandidates signals an empty best-pick shortlist: there is nothing to
// choose from, which is a hard failure in that mode.
var ErrNoCandidates = errors.New("no fixtures cleared the edge threshold")

// Telemetry summarizes one run for operators.
type Telemetry struct {
	FixturesSeen        int                `json:"fixtures_seen"`
	Shortlisted         int                `json:"shortlisted"`
	Analyzed            int                `json:"analyzed"`
	Dropped             int                `json:"dropped"`
	Sources             []string           `json:"sources"`
	OddsSourceAvailable bool               `json:"odds_source_available"`
	SignalsAvailable    bool               `json:"signals_available"`
	TeamStatsAvailable  bool               `json:"team_stats_available"`
	PhaseSeconds        map[string]float64 `json:"phase_seconds"`
}

// Result is the orchestrator output for one (sport, date-filter, mode) run.
type Result struct {
	RunID       string              `json:"run_id"`
	Sport       string              `json:"sport"`
	DateFilter  string              `json:"date_filter,omitempty"`
	Mode        Mode                `json:"mode"`
	Predictions []models.Prediction `json:"predictions"`
	Telemetry   Telemetry           `json:"telemetry"`
	GeneratedAt time.Time           `json:"generated_at"`
}
