// Package markets expands a true-probability estimate plus raw bookmaker odds
// into the full catalogue of priced selections. All per-category pricing goes
// through one parameterized quote builder so near-identical formulas cannot
// drift apart.
package markets

import (
	"fmt"
	"math"

	"github.com/OptionsTradingUni/aipredixt/internal/confidence"
	"github.com/OptionsTradingUni/aipredixt/internal/factors"
	"github.com/OptionsTradingUni/aipredixt/internal/models"
	"github.com/OptionsTradingUni/aipredixt/internal/prob"
	"github.com/OptionsTradingUni/aipredixt/internal/stake"
)

const (
	// Synthesized overlay margins for markets with no upstream quote.
	doubleChanceMargin = 1.05
	correctScoreMargin = 1.15
	specialtyMargin    = 1.08

	// First-half variance haircut: scoring is lower and outcomes closer to a
	// coin flip than full time.
	firstHalfOddsInflate = 1.3
	firstHalfDrawDeflate = 0.7
	firstHalfAdjustDamp  = 0.6

	spreadLineWeight = 2.0

	bttsBase       = 55.0
	bttsTrueScale  = 15.0
	bttsBalanceCap = 15.0

	syntheticBook = "synthetic"
)

// Inputs bundles everything the generator needs for one fixture.
type Inputs struct {
	Quote     models.OddsQuote
	Synthesis factors.Synthesis
	League    models.LeagueMetadata
	Stats     *models.TeamStatsPair
}

// pricingStrategy prices one market category. Strategies are independent:
// each derives what it needs from the shared inputs.
type pricingStrategy interface {
	Category() models.MarketCategory
	Price(in Inputs) []models.MarketQuote
}

// strategies run in fixed order so primary-market tie-breaks are stable.
var strategies = []pricingStrategy{
	moneylineStrategy{},
	spreadStrategy{},
	totalsStrategy{},
	bttsStrategy{},
	doubleChanceStrategy{},
	firstHalfStrategy{},
	correctScoreStrategy{},
	cornersStrategy{},
	cardsStrategy{},
}

// Generate produces the full MarketQuote catalogue for a fixture.
func Generate(in Inputs) []models.MarketQuote {
	var quotes []models.MarketQuote
	for _, s := range strategies {
		quotes = append(quotes, s.Price(in)...)
	}
	return quotes
}

// PickPrimary returns the index of the quote with the highest edge, first
// seen winning ties. Returns -1 for an empty catalogue.
func PickPrimary(quotes []models.MarketQuote) int {
	best := -1
	for i, q := range quotes {
		if best < 0 || q.Edge > quotes[best].Edge {
			best = i
		}
	}
	return best
}

// liquidityFor maps market categories onto liquidity tiers.
func liquidityFor(cat models.MarketCategory) models.LiquidityTier {
	switch cat {
	case models.MarketMoneyline, models.MarketTotals:
		return models.LiquidityHigh
	case models.MarketSpread, models.MarketBTTS, models.MarketDoubleChance:
		return models.LiquidityMedium
	default:
		return models.LiquidityLow
	}
}

// buildQuote is the single parameterized pricing path: edge, interval,
// confidence and stake are always derived the same way.
func buildQuote(in Inputs, cat models.MarketCategory, selection, bookmaker string, odds, calcProb float64, extraSources ...string) models.MarketQuote {
	implied := prob.ImpliedProb(odds)
	edge := calcProb - implied
	tier := liquidityFor(cat)

	sources := append([]string{}, in.Quote.Sources...)
	sources = append(sources, extraSources...)

	marketID := fmt.Sprintf("%s|%s|%s", in.Quote.Fixture.ID, cat, selection)
	conf := confidence.Score(confidence.Inputs{
		Edge:        edge,
		Probability: calcProb,
		Liquidity:   tier,
		SourceCount: len(sources),
		MarketID:    marketID,
	})

	return models.MarketQuote{
		Category:       cat,
		Selection:      selection,
		Odds:           round2(odds),
		Bookmaker:      bookmaker,
		Liquidity:      tier,
		CalculatedProb: calcProb,
		Interval:       interval(calcProb, len(sources)),
		ImpliedProb:    round1(implied),
		Edge:           round1(edge),
		Confidence:     conf,
		Stake:          stake.Size(calcProb/100, odds),
		Sources:        sources,
	}
}

// interval is the calibrated band around a calculated probability: binomial
// spread shrunk by source count.
func interval(p float64, sourceCount int) models.ConfidenceInterval {
	half := math.Sqrt(p*(100-p)) / float64(2+sourceCount)
	return models.ConfidenceInterval{
		Low:  round1(math.Max(0, p-half)),
		High: round1(math.Min(100, p+half)),
	}
}

// reciprocalOdds converts a percent probability into decimal odds, deflated
// by the given synthesized margin multiplier.
func reciprocalOdds(p, margin float64) float64 {
	if p <= 0 {
		return 0
	}
	return 100 / p / margin
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func clampProb(v float64) float64 {
	return math.Min(prob.MaxProb, math.Max(prob.MinProb, v))
}

// moneylineStrategy prices the home/draw/away legs against the model's
// adjusted fair probabilities.
type moneylineStrategy struct{}

func (moneylineStrategy) Category() models.MarketCategory { return models.MarketMoneyline }

func (moneylineStrategy) Price(in Inputs) []models.MarketQuote {
	q := in.Quote
	if q.HomeOdds <= 1 || q.AwayOdds <= 1 {
		return nil
	}
	adj := in.Synthesis.TrueProb() - 0.5

	if q.DrawOdds > 1 {
		tr := prob.FairThreeWay(q.HomeOdds, q.DrawOdds, q.AwayOdds, adj)
		return []models.MarketQuote{
			buildQuote(in, models.MarketMoneyline, q.Fixture.HomeTeam, q.Bookmaker, q.HomeOdds, tr.Home),
			buildQuote(in, models.MarketMoneyline, "Draw", q.Bookmaker, q.DrawOdds, tr.Draw),
			buildQuote(in, models.MarketMoneyline, q.Fixture.AwayTeam, q.Bookmaker, q.AwayOdds, tr.Away),
		}
	}

	pr := prob.FairTwoWay(q.HomeOdds, q.AwayOdds, adj)
	return []models.MarketQuote{
		buildQuote(in, models.MarketMoneyline, q.Fixture.HomeTeam, q.Bookmaker, q.HomeOdds, pr.A),
		buildQuote(in, models.MarketMoneyline, q.Fixture.AwayTeam, q.Bookmaker, q.AwayOdds, pr.B),
	}
}

// spreadStrategy prices the single-sided handicap leg. No re-normalization
// against a complementary side.
type spreadStrategy struct{}

func (spreadStrategy) Category() models.MarketCategory { return models.MarketSpread }

func (spreadStrategy) Price(in Inputs) []models.MarketQuote {
	q := in.Quote
	if q.SpreadOdds <= 1 {
		return nil
	}
	p := clampProb(in.Synthesis.Capped + q.SpreadLine*spreadLineWeight)
	selection := fmt.Sprintf("%s %+.1f", q.Fixture.HomeTeam, q.SpreadLine)
	return []models.MarketQuote{
		buildQuote(in, models.MarketSpread, selection, q.Bookmaker, q.SpreadOdds, p),
	}
}

// totalsStrategy prices over/under via the two-way fair-odds conversion with
// the same adjustment convention as the moneyline.
type totalsStrategy struct{}

func (totalsStrategy) Category() models.MarketCategory { return models.MarketTotals }

func (totalsStrategy) Price(in Inputs) []models.MarketQuote {
	q := in.Quote
	if q.OverOdds <= 1 || q.UnderOdds <= 1 {
		return nil
	}
	adj := in.Synthesis.TrueProb() - 0.5
	pr := prob.FairTwoWay(q.OverOdds, q.UnderOdds, adj)
	return []models.MarketQuote{
		buildQuote(in, models.MarketTotals, fmt.Sprintf("Over %.1f", q.TotalLine), q.Bookmaker, q.OverOdds, pr.A),
		buildQuote(in, models.MarketTotals, fmt.Sprintf("Under %.1f", q.TotalLine), q.Bookmaker, q.UnderOdds, pr.B),
	}
}

// bttsStrategy synthesizes a both-teams-to-score quote. No external BTTS
// price exists upstream, so fair odds are the reciprocal of the probability.
type bttsStrategy struct{}

func (bttsStrategy) Category() models.MarketCategory { return models.MarketBTTS }

func (bttsStrategy) Price(in Inputs) []models.MarketQuote {
	q := in.Quote
	p := bttsBase + (in.Synthesis.TrueProb()-0.5)*bttsTrueScale

	if q.HomeOdds > 1 && q.AwayOdds > 1 {
		tr := prob.FairThreeWay(q.HomeOdds, q.DrawOdds, q.AwayOdds, 0)
		// Closely matched teams trade goals more often.
		balance := 1 - math.Abs(tr.Home-tr.Away)/100
		p += balance * bttsBalanceCap
	}
	p = clampProb(p)

	return []models.MarketQuote{
		buildQuote(in, models.MarketBTTS, "Both Teams To Score - Yes", syntheticBook, reciprocalOdds(p, 1.0), p),
	}
}

// doubleChanceStrategy sums two underlying single-outcome probabilities and
// synthesizes a price from the harmonic combination of the raw odds, inflated
// by a fixed margin to emulate realistic overlay pricing.
type doubleChanceStrategy struct{}

func (doubleChanceStrategy) Category() models.MarketCategory { return models.MarketDoubleChance }

func (doubleChanceStrategy) Price(in Inputs) []models.MarketQuote {
	q := in.Quote
	if q.HomeOdds <= 1 || q.DrawOdds <= 1 || q.AwayOdds <= 1 {
		return nil
	}
	adj := in.Synthesis.TrueProb() - 0.5
	tr := prob.FairThreeWay(q.HomeOdds, q.DrawOdds, q.AwayOdds, adj)

	homeOrDraw := math.Min(prob.MaxProb, tr.Home+tr.Draw)
	drawOrAway := math.Min(prob.MaxProb, tr.Draw+tr.Away)

	return []models.MarketQuote{
		buildQuote(in, models.MarketDoubleChance,
			fmt.Sprintf("%s or Draw", q.Fixture.HomeTeam), syntheticBook,
			harmonicOdds(q.HomeOdds, q.DrawOdds)/doubleChanceMargin, homeOrDraw),
		buildQuote(in, models.MarketDoubleChance,
			fmt.Sprintf("Draw or %s", q.Fixture.AwayTeam), syntheticBook,
			harmonicOdds(q.DrawOdds, q.AwayOdds)/doubleChanceMargin, drawOrAway),
	}
}

// harmonicOdds is the fair combined price of backing both outcomes.
func harmonicOdds(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return 1 / (1/a + 1/b)
}

// firstHalfStrategy reprices the three-way market for the first half only:
// win odds inflated, draw deflated, and the adjustment dampened because
// first-half outcomes sit closer to a coin flip.
type firstHalfStrategy struct{}

func (firstHalfStrategy) Category() models.MarketCategory { return models.MarketFirstHalf }

func (firstHalfStrategy) Price(in Inputs) []models.MarketQuote {
	q := in.Quote
	if q.HomeOdds <= 1 || q.DrawOdds <= 1 || q.AwayOdds <= 1 {
		return nil
	}
	adj := (in.Synthesis.TrueProb() - 0.5) * firstHalfAdjustDamp
	home := q.HomeOdds * firstHalfOddsInflate
	draw := q.DrawOdds * firstHalfDrawDeflate
	away := q.AwayOdds * firstHalfOddsInflate
	tr := prob.FairThreeWay(home, draw, away, adj)

	return []models.MarketQuote{
		buildQuote(in, models.MarketFirstHalf, fmt.Sprintf("1st Half: %s", q.Fixture.HomeTeam), syntheticBook, home, tr.Home),
		buildQuote(in, models.MarketFirstHalf, "1st Half: Draw", syntheticBook, draw, tr.Draw),
		buildQuote(in, models.MarketFirstHalf, fmt.Sprintf("1st Half: %s", q.Fixture.AwayTeam), syntheticBook, away, tr.Away),
	}
}

// correctScoreStrategy allocates fixed fractions of each outcome's
// probability to a small set of plausible scorelines, priced with a heavier
// synthesized margin reflecting the real-world overlay on exotics.
type correctScoreStrategy struct{}

func (correctScoreStrategy) Category() models.MarketCategory { return models.MarketCorrectScore }

// scorelineShares are empirical fractions of the parent outcome probability.
var scorelineShares = []struct {
	score   string
	outcome string // home, draw, away
	share   float64
}{
	{"2-1", "home", 0.25},
	{"1-0", "home", 0.20},
	{"2-0", "home", 0.15},
	{"1-1", "draw", 0.30},
	{"0-0", "draw", 0.15},
	{"1-2", "away", 0.20},
}

func (correctScoreStrategy) Price(in Inputs) []models.MarketQuote {
	q := in.Quote
	if q.HomeOdds <= 1 || q.DrawOdds <= 1 || q.AwayOdds <= 1 {
		return nil
	}
	adj := in.Synthesis.TrueProb() - 0.5
	tr := prob.FairThreeWay(q.HomeOdds, q.DrawOdds, q.AwayOdds, adj)
	parent := map[string]float64{"home": tr.Home, "draw": tr.Draw, "away": tr.Away}

	quotes := make([]models.MarketQuote, 0, len(scorelineShares))
	for _, s := range scorelineShares {
		p := round1(parent[s.outcome] * s.share)
		if p <= 0 {
			continue
		}
		quotes = append(quotes, buildQuote(in, models.MarketCorrectScore,
			fmt.Sprintf("Correct Score %s", s.score), syntheticBook,
			reciprocalOdds(p, correctScoreMargin), p))
	}
	return quotes
}

// cornersStrategy prices total-corners over/under from team-level inputs via
// the specialty sub-calculator.
type cornersStrategy struct{}

func (cornersStrategy) Category() models.MarketCategory { return models.MarketCorners }

func (cornersStrategy) Price(in Inputs) []models.MarketQuote {
	calc := newSpecialtyCalc(in.Stats, in.League)
	expected := calc.expectedTotalCorners()
	line := cornersLine
	p := clampProb(calc.overProbability(expected, line))

	return []models.MarketQuote{
		buildQuote(in, models.MarketCorners,
			fmt.Sprintf("Corners Over %.1f", line), syntheticBook,
			reciprocalOdds(p, specialtyMargin), p, calc.sourceLabel()),
	}
}

// cardsStrategy prices total-cards over/under the same way.
type cardsStrategy struct{}

func (cardsStrategy) Category() models.MarketCategory { return models.MarketCards }

func (cardsStrategy) Price(in Inputs) []models.MarketQuote {
	calc := newSpecialtyCalc(in.Stats, in.League)
	expected := calc.expectedTotalCards()
	line := cardsLine
	p := clampProb(calc.overProbability(expected, line))

	return []models.MarketQuote{
		buildQuote(in, models.MarketCards,
			fmt.Sprintf("Cards Over %.1f", line), syntheticBook,
			reciprocalOdds(p, specialtyMargin), p, calc.sourceLabel()),
	}
}
