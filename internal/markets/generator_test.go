package markets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OptionsTradingUni/aipredixt/internal/factors"
	"github.com/OptionsTradingUni/aipredixt/internal/models"
	"github.com/OptionsTradingUni/aipredixt/internal/prob"
)

func fullQuote() models.OddsQuote {
	return models.OddsQuote{
		Fixture: models.Fixture{
			ID:       "epl-2026-001",
			Sport:    "football",
			League:   "Premier League",
			HomeTeam: "Arsenal",
			AwayTeam: "Everton",
			Status:   models.StatusUpcoming,
		},
		Bookmaker:  "bet365",
		HomeOdds:   1.90,
		DrawOdds:   3.50,
		AwayOdds:   4.00,
		SpreadLine: -1.0,
		SpreadOdds: 2.05,
		TotalLine:  2.5,
		OverOdds:   1.95,
		UnderOdds:  1.85,
		Sources:    []string{"oddsapi", "scraper"},
	}
}

func testInputs() Inputs {
	return Inputs{
		Quote:     fullQuote(),
		Synthesis: factors.Synthesis{Raw: 61.5, Capped: 60, MarketImplied: 52.6},
		League:    models.LeagueMetadata{Name: "Premier League", AvgCorners: 10.2, AvgCards: 4.1},
	}
}

func byCategory(quotes []models.MarketQuote, cat models.MarketCategory) []models.MarketQuote {
	var out []models.MarketQuote
	for _, q := range quotes {
		if q.Category == cat {
			out = append(out, q)
		}
	}
	return out
}

func TestGenerateMoneylineTriple(t *testing.T) {
	quotes := Generate(testInputs())
	ml := byCategory(quotes, models.MarketMoneyline)
	require.Len(t, ml, 3, "home, draw, away")

	sum := 0.0
	for _, q := range ml {
		sum += q.CalculatedProb
		assert.InDelta(t, q.CalculatedProb-q.ImpliedProb, q.Edge, 0.1,
			"edge must be calculated minus implied")
		assert.GreaterOrEqual(t, q.CalculatedProb, prob.MinProb)
		assert.LessOrEqual(t, q.CalculatedProb, prob.MaxProb)
		assert.Equal(t, "bet365", q.Bookmaker)
		assert.Contains(t, q.Sources, "oddsapi")
	}
	assert.InDelta(t, 100.0, sum, prob.SumTolerance)
}

func TestGenerateTwoWayMoneyline(t *testing.T) {
	in := testInputs()
	in.Quote.DrawOdds = 0
	ml := byCategory(Generate(in), models.MarketMoneyline)
	require.Len(t, ml, 2)
	assert.InDelta(t, 100.0, ml[0].CalculatedProb+ml[1].CalculatedProb, prob.SumTolerance)
}

func TestGenerateFullCatalogue(t *testing.T) {
	quotes := Generate(testInputs())
	for _, cat := range []models.MarketCategory{
		models.MarketMoneyline, models.MarketSpread, models.MarketTotals,
		models.MarketBTTS, models.MarketDoubleChance, models.MarketFirstHalf,
		models.MarketCorrectScore, models.MarketCorners, models.MarketCards,
	} {
		assert.NotEmpty(t, byCategory(quotes, cat), "missing category %s", cat)
	}
}

func TestGenerateSpreadSingleSided(t *testing.T) {
	in := testInputs()
	spread := byCategory(Generate(in), models.MarketSpread)
	require.Len(t, spread, 1)
	// trueProb 60 plus line -1.0 weighted by 2.
	assert.InDelta(t, 58.0, spread[0].CalculatedProb, 1e-9)
	assert.Contains(t, spread[0].Selection, "Arsenal")
}

func TestGenerateTotalsPairSums(t *testing.T) {
	totals := byCategory(Generate(testInputs()), models.MarketTotals)
	require.Len(t, totals, 2)
	assert.InDelta(t, 100.0, totals[0].CalculatedProb+totals[1].CalculatedProb, prob.SumTolerance)
}

func TestGenerateBTTSRewardsBalance(t *testing.T) {
	balanced := testInputs()
	balanced.Quote.HomeOdds = 2.50
	balanced.Quote.AwayOdds = 2.60

	lopsided := testInputs()
	lopsided.Quote.HomeOdds = 1.15
	lopsided.Quote.AwayOdds = 15.0

	pb := byCategory(Generate(balanced), models.MarketBTTS)[0].CalculatedProb
	pl := byCategory(Generate(lopsided), models.MarketBTTS)[0].CalculatedProb
	assert.Greater(t, pb, pl, "closely matched teams score higher BTTS")
}

func TestGenerateDoubleChanceSynthesizedPrice(t *testing.T) {
	dc := byCategory(Generate(testInputs()), models.MarketDoubleChance)
	require.Len(t, dc, 2)
	for _, q := range dc {
		assert.Equal(t, syntheticBook, q.Bookmaker)
		assert.Greater(t, q.Odds, 1.0)
	}
	// Home or Draw combines the two strongest outcomes here.
	assert.Greater(t, dc[0].CalculatedProb, dc[1].CalculatedProb)
}

func TestGenerateFirstHalfDampened(t *testing.T) {
	fh := byCategory(Generate(testInputs()), models.MarketFirstHalf)
	require.Len(t, fh, 3)

	ml := byCategory(Generate(testInputs()), models.MarketMoneyline)
	// Deflated draw odds push first-half draw probability above full-time.
	assert.Greater(t, fh[1].CalculatedProb, ml[1].CalculatedProb)

	sum := 0.0
	for _, q := range fh {
		sum += q.CalculatedProb
	}
	assert.InDelta(t, 100.0, sum, prob.SumTolerance)
}

func TestGenerateCorrectScoreShares(t *testing.T) {
	cs := byCategory(Generate(testInputs()), models.MarketCorrectScore)
	require.Len(t, cs, len(scorelineShares))
	for _, q := range cs {
		assert.Greater(t, q.Odds, 1.0)
		assert.Less(t, q.Edge, 1.0, "heavy synthesized margin keeps exotic edges down")
	}
}

func TestGenerateSpecialtyCarriesSourceLabel(t *testing.T) {
	in := testInputs()
	in.Stats = &models.TeamStatsPair{
		Home:   models.TeamStats{CornersPerGame: 6.1, CardsPerGame: 1.8, FoulsPerGame: 10.2, PossessionPct: 58},
		Away:   models.TeamStats{CornersPerGame: 4.3, CardsPerGame: 2.4, FoulsPerGame: 13.9, PossessionPct: 42},
		Source: "statsbomb",
	}
	corners := byCategory(Generate(in), models.MarketCorners)
	require.Len(t, corners, 1)
	assert.Contains(t, corners[0].Sources, "team-stats:statsbomb")
	assert.Contains(t, corners[0].Sources, "oddsapi")
}

func TestPickPrimaryHighestEdgeFirstSeen(t *testing.T) {
	quotes := []models.MarketQuote{
		{Selection: "a", Edge: 1.5},
		{Selection: "b", Edge: 4.0},
		{Selection: "c", Edge: 4.0},
		{Selection: "d", Edge: -2.0},
	}
	assert.Equal(t, 1, PickPrimary(quotes), "ties broken by insertion order")
	assert.Equal(t, -1, PickPrimary(nil))
}

func TestGenerateEndToEndScenario(t *testing.T) {
	// Home 1.90, away 4.00, draw 3.50, capped true prob 0.60.
	in := testInputs()
	quotes := Generate(in)
	ml := byCategory(quotes, models.MarketMoneyline)
	require.Len(t, ml, 3)

	sum := 0.0
	for _, q := range ml {
		sum += q.CalculatedProb
		assert.InDelta(t, q.CalculatedProb-q.ImpliedProb, q.Edge, 0.1)
	}
	assert.InDelta(t, 100.0, sum, prob.SumTolerance)

	// Every leg's implied probability carries the bookmaker margin, so edges
	// sit below the margin-free fair values; the 0.1 adjustment still leans
	// the model toward the home side.
	assert.Greater(t, ml[0].Edge, ml[1].Edge)
	assert.Greater(t, ml[1].Edge, ml[2].Edge)
}
