package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotBody = `{
  "odds": [
    {
      "fixture": {
        "id": "fx-1", "sport": "soccer", "league": "premier league",
        "home_team": "Arsenal", "away_team": "Everton",
        "kickoff": "2026-08-25T15:00:00Z", "status": "upcoming"
      },
      "bookmaker": "bet365",
      "home_odds": 2.2, "away_odds": 3.1, "draw_odds": 3.4,
      "sources": ["oddsapi"]
    },
    {
      "fixture": {
        "id": "fx-2", "sport": "basketball", "league": "nba",
        "home_team": "Lakers", "away_team": "Celtics",
        "kickoff": "2026-08-26T01:00:00Z", "status": "upcoming"
      },
      "bookmaker": "bet365",
      "home_odds": 1.9, "away_odds": 1.95,
      "sources": ["oddsapi"]
    }
  ],
  "signals": {
    "fx-1": [
      {"category": "form", "weight": 20, "impact": 30, "confidence": 0.8, "source": "form-engine"}
    ]
  },
  "team_stats": {
    "fx-1": {
      "home": {"corners_per_game": 6.1, "cards_per_game": 1.8, "fouls_per_game": 10.2, "possession_pct": 58},
      "away": {"corners_per_game": 4.4, "cards_per_game": 2.3, "fouls_per_game": 13.1, "possession_pct": 42},
      "source": "statsbomb"
    }
  }
}`

func loadTestSnapshot(t *testing.T) *SnapshotSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotBody), 0o644))
	src, err := LoadSnapshot(path)
	require.NoError(t, err)
	return src
}

func TestSnapshotOddsFilterBySport(t *testing.T) {
	src := loadTestSnapshot(t)

	quotes, err := src.GetOdds(context.Background(), "soccer", "")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "fx-1", quotes[0].Fixture.ID)
	assert.Equal(t, 2.2, quotes[0].HomeOdds)
	assert.Equal(t, time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC), quotes[0].Fixture.Kickoff)
}

func TestSnapshotOddsFilterByDate(t *testing.T) {
	src := loadTestSnapshot(t)

	quotes, err := src.GetOdds(context.Background(), "soccer", "2026-08-25")
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	quotes, err = src.GetOdds(context.Background(), "soccer", "2026-08-26")
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestSnapshotSignalsAndStats(t *testing.T) {
	src := loadTestSnapshot(t)

	quotes, err := src.GetOdds(context.Background(), "soccer", "")
	require.NoError(t, err)
	fixture := quotes[0].Fixture

	signals, err := src.GetSignals(context.Background(), fixture)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "form-engine", signals[0].Source)

	stats, err := src.GetTeamStats(context.Background(), fixture)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 58.0, stats.Home.PossessionPct)

	quotes, err = src.GetOdds(context.Background(), "basketball", "")
	require.NoError(t, err)
	missing, err := src.GetTeamStats(context.Background(), quotes[0].Fixture)
	require.NoError(t, err)
	assert.Nil(t, missing, "fixtures without stats degrade to defaults")
}

func TestLoadSnapshotBadFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
	_, err = LoadSnapshot(path)
	require.Error(t, err)
}
