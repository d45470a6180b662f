package markets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

func TestSpecialtyDefaultsWhenStatsAbsent(t *testing.T) {
	calc := newSpecialtyCalc(nil, models.LeagueMetadata{})
	assert.Equal(t, defaultCornersPerGame, calc.home.CornersPerGame)
	assert.Equal(t, defaultPossessionPct, calc.away.PossessionPct)
	assert.Equal(t, "team-stats:league-defaults", calc.sourceLabel())

	// Defaults plus home bonus: 5.2 + 0.8 + 5.2.
	assert.InDelta(t, 11.2, calc.expectedTotalCorners(), 1e-9)
}

func TestSpecialtyPossessionShiftsCorners(t *testing.T) {
	dominant := newSpecialtyCalc(&models.TeamStatsPair{
		Home: models.TeamStats{CornersPerGame: 6, PossessionPct: 60},
		Away: models.TeamStats{CornersPerGame: 6, PossessionPct: 40},
	}, models.LeagueMetadata{})
	even := newSpecialtyCalc(&models.TeamStatsPair{
		Home: models.TeamStats{CornersPerGame: 6, PossessionPct: 50},
		Away: models.TeamStats{CornersPerGame: 6, PossessionPct: 50},
	}, models.LeagueMetadata{})

	// Same total possession, but the dominant side wins more corners than
	// the starved side loses is not guaranteed; totals stay comparable.
	assert.InDelta(t, even.expectedTotalCorners(), dominant.expectedTotalCorners(), 0.01)
}

func TestSpecialtyStrictRefereeInflatesCards(t *testing.T) {
	stats := &models.TeamStatsPair{
		Home: models.TeamStats{CardsPerGame: 2.2, FoulsPerGame: 13},
		Away: models.TeamStats{CardsPerGame: 1.8, FoulsPerGame: 12},
	}
	lenient := newSpecialtyCalc(stats, models.LeagueMetadata{})
	strict := newSpecialtyCalc(stats, models.LeagueMetadata{StrictReferee: true})

	assert.InDelta(t, strictRefereeMult, strict.expectedTotalCards()/lenient.expectedTotalCards(), 1e-9)
}

func TestSpecialtyAggressivenessAnchor(t *testing.T) {
	calm := newSpecialtyCalc(&models.TeamStatsPair{
		Home: models.TeamStats{CardsPerGame: 2, FoulsPerGame: 8},
		Away: models.TeamStats{CardsPerGame: 2, FoulsPerGame: 8},
	}, models.LeagueMetadata{})
	scrappy := newSpecialtyCalc(&models.TeamStatsPair{
		Home: models.TeamStats{CardsPerGame: 2, FoulsPerGame: 16},
		Away: models.TeamStats{CardsPerGame: 2, FoulsPerGame: 16},
	}, models.LeagueMetadata{})

	assert.Less(t, calm.expectedTotalCards(), 4.0, "below-anchor fouls deflate")
	assert.Greater(t, scrappy.expectedTotalCards(), 4.0, "above-anchor fouls inflate")
}

func TestSpecialtyOverProbability(t *testing.T) {
	calc := newSpecialtyCalc(nil, models.LeagueMetadata{})

	assert.InDelta(t, 50.0, calc.overProbability(9.5, 9.5), 1e-9, "expected at the line is a coin flip")
	assert.Greater(t, calc.overProbability(12, 9.5), 50.0)
	assert.Less(t, calc.overProbability(7, 9.5), 50.0)

	// Monotonic in expected count.
	prev := 0.0
	for exp := 4.0; exp <= 16; exp += 0.5 {
		p := calc.overProbability(exp, 9.5)
		assert.Greater(t, p, prev)
		prev = p
	}
}
