package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OptionsTradingUni/aipredixt/internal/factors"
	"github.com/OptionsTradingUni/aipredixt/internal/markets"
	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

// analysisBundle is the per-fixture deep-dive output: everything the
// narrative and selection phases need, computed once.
type analysisBundle struct {
	quote        models.OddsQuote
	league       models.LeagueMetadata
	observations []models.FactorObservation
	synthesis    factors.Synthesis
	quotes       []models.MarketQuote
	primaryIdx   int
	narrative    models.Narrative

	signalsAvailable bool
	statsAvailable   bool
}

// analyzeFixture runs one deep dive: signal and team-stats fetches issued
// concurrently and awaited jointly, then pure synthesis and pricing. A
// collaborator failure degrades to absent data; only a fixture with no
// priceable markets fails the dive.
func (o *Orchestrator) analyzeFixture(ctx context.Context, quote models.OddsQuote) (*analysisBundle, error) {
	if quote.HomeOdds <= 1 || quote.AwayOdds <= 1 {
		return nil, fmt.Errorf("unpriceable moneyline %.2f/%.2f for %s vs %s",
			quote.HomeOdds, quote.AwayOdds, quote.Fixture.HomeTeam, quote.Fixture.AwayTeam)
	}

	var (
		wg           sync.WaitGroup
		observations []models.FactorObservation
		signalsErr   error
		stats        *models.TeamStatsPair
		statsErr     error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		observations, signalsErr = o.deps.Signals.GetSignals(ctx, quote.Fixture)
	}()

	if o.deps.Stats != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, statsErr = o.deps.Stats.GetTeamStats(ctx, quote.Fixture)
		}()
	}
	wg.Wait()

	if signalsErr != nil {
		// Missing signals mean zero factor impact, never a dive failure.
		o.deps.Metrics.SourceFailures.WithLabelValues("signal_aggregator").Inc()
		log.Warn().Err(signalsErr).Str("fixture", quote.Fixture.ID).
			Msg("signal aggregator unavailable, pricing on market data only")
		observations = nil
	}
	if statsErr != nil {
		o.deps.Metrics.SourceFailures.WithLabelValues("team_stats").Inc()
		log.Warn().Err(statsErr).Str("fixture", quote.Fixture.ID).
			Msg("team stats unavailable, specialty markets use defaults")
		stats = nil
	}

	synthesis := factors.Synthesize(observations, quote.HomeOdds)
	league := o.deps.Leagues.Lookup(quote.Fixture.League)

	quotes := markets.Generate(markets.Inputs{
		Quote:     quote,
		Synthesis: synthesis,
		League:    league,
		Stats:     stats,
	})
	primaryIdx := markets.PickPrimary(quotes)
	if primaryIdx < 0 {
		return nil, fmt.Errorf("no priceable markets for %s vs %s",
			quote.Fixture.HomeTeam, quote.Fixture.AwayTeam)
	}

	return &analysisBundle{
		quote:            quote,
		league:           league,
		observations:     observations,
		synthesis:        synthesis,
		quotes:           quotes,
		primaryIdx:       primaryIdx,
		signalsAvailable: signalsErr == nil && len(observations) > 0,
		statsAvailable:   statsErr == nil && stats != nil,
	}, nil
}

func (b *analysisBundle) primary() models.MarketQuote {
	return b.quotes[b.primaryIdx]
}

// expectedValue is the per-unit EV of the primary market, used by best-pick
// selection.
func (b *analysisBundle) expectedValue() float64 {
	p := b.primary()
	win := p.CalculatedProb / 100
	return win*(p.Odds-1) - (1 - win)
}

// toPrediction freezes the bundle into the output contract.
func (b *analysisBundle) toPrediction(runID string, at time.Time) models.Prediction {
	return models.Prediction{
		RunID:       runID,
		Fixture:     b.quote.Fixture,
		League:      b.league,
		Markets:     b.quotes,
		Primary:     b.primary(),
		Narrative:   b.narrative,
		Risk:        b.riskAssessment(),
		GeneratedAt: at,
	}
}

// riskAssessment derives the downside block from the priced catalogue. VaR is
// the full primary stake at risk; CVaR pads it for tail slippage on settle.
func (b *analysisBundle) riskAssessment() models.RiskAssessment {
	primary := b.primary()

	negative := 0
	lowLiquidity := 0
	for _, q := range b.quotes {
		if q.Edge < 0 {
			negative++
		}
		if q.Liquidity == models.LiquidityLow {
			lowLiquidity++
		}
	}

	var riskFactors []string
	if primary.Liquidity == models.LiquidityLow {
		riskFactors = append(riskFactors, "primary market trades in a low-liquidity tier")
	}
	if negative*2 > len(b.quotes) {
		riskFactors = append(riskFactors, "majority of generated markets price below the bookmaker")
	}
	if len(b.observations) < 3 {
		riskFactors = append(riskFactors, "sparse signal coverage for this fixture")
	}
	if b.synthesis.Raw != b.synthesis.Capped {
		riskFactors = append(riskFactors, "raw factor estimate hit the conservatism cap")
	}

	mitigations := []string{
		"quarter-Kelly staking with a 3-unit ceiling",
		fmt.Sprintf("%d of %d markets carry low-liquidity pricing margins", lowLiquidity, len(b.quotes)),
	}

	return models.RiskAssessment{
		VaR95:       primary.Stake.Units,
		CVaR95:      primary.Stake.Units * 1.25,
		RiskFactors: riskFactors,
		Mitigations: mitigations,
	}
}
