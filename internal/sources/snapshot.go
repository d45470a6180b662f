package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

// snapshotDocument is the on-disk shape of one odds snapshot: the board plus
// per-fixture signal bags and team stats, as exported by the collection jobs.
type snapshotDocument struct {
	Odds      []models.OddsQuote                    `json:"odds"`
	Signals   map[string][]models.FactorObservation `json:"signals"`
	TeamStats map[string]*models.TeamStatsPair      `json:"team_stats"`
}

// SnapshotSource serves odds, signals, and team stats from a JSON snapshot
// file. It backs the CLI when no live collaborator is configured and doubles
// as the replay source for historical boards.
type SnapshotSource struct {
	doc snapshotDocument
}

// LoadSnapshot reads and decodes a snapshot file.
func LoadSnapshot(path string) (*SnapshotSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var doc snapshotDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &SnapshotSource{doc: doc}, nil
}

// GetOdds returns the board filtered by sport and, when set, by kickoff date
// (YYYY-MM-DD).
func (s *SnapshotSource) GetOdds(_ context.Context, sport, dateFilter string) ([]models.OddsQuote, error) {
	var out []models.OddsQuote
	for _, q := range s.doc.Odds {
		if !strings.EqualFold(q.Fixture.Sport, sport) {
			continue
		}
		if dateFilter != "" && q.Fixture.Kickoff.Format("2006-01-02") != dateFilter {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// GetSignals returns the fixture's recorded factor bag; missing fixtures get
// an empty bag, never an error.
func (s *SnapshotSource) GetSignals(_ context.Context, fixture models.Fixture) ([]models.FactorObservation, error) {
	return s.doc.Signals[fixture.ID], nil
}

// GetTeamStats returns the fixture's recorded stats pair, or nil when the
// snapshot has none.
func (s *SnapshotSource) GetTeamStats(_ context.Context, fixture models.Fixture) (*models.TeamStatsPair, error) {
	return s.doc.TeamStats[fixture.ID], nil
}
