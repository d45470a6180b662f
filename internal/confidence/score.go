// Package confidence derives a bounded per-market confidence score from edge
// magnitude, probability extremity, source count, and liquidity tier.
package confidence

import (
	"hash/fnv"
	"math"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

const (
	// MinScore and MaxScore bound every returned score.
	MinScore = 20.0
	MaxScore = 96.0

	baseScore = 35.0

	// edgeCap limits how much a large positive edge can add by itself.
	edgeCap = 24.0

	// distancePeak is the distance from 50% that scores highest. Near-50
	// outcomes are genuinely uncertain; very extreme outcomes require more
	// evidence than is typically available.
	distancePeak = 20.0

	// negativeEdgeFloor is the strongest multiplicative penalty applied as
	// edge turns negative. A negative edge is evidence the model is wrong,
	// not just less confident.
	negativeEdgeFloor = 0.35
)

// Inputs collects everything the scorer looks at for one market.
type Inputs struct {
	Edge        float64
	Probability float64 // 0-100 scale
	Liquidity   models.LiquidityTier
	SourceCount int
	MarketID    string
}

// Score returns a confidence value in [20,96]. Deterministic for identical
// inputs; the MarketID perturbation keeps otherwise-identical markets on
// different fixtures from collapsing to the same number.
func Score(in Inputs) float64 {
	score := baseScore

	score += math.Min(math.Max(in.Edge, 0)*2.0, edgeCap)

	dist := math.Abs(in.Probability - 50)
	score += math.Max(0, 18-math.Abs(dist-distancePeak)*0.6)

	score += math.Min(float64(in.SourceCount)*2.5, 12)

	switch in.Liquidity {
	case models.LiquidityHigh:
		score += 10
	case models.LiquidityMedium:
		score += 6
	case models.LiquidityLow:
		score += 2
	}

	if in.Edge < 0 {
		penalty := 1 + in.Edge/15
		if penalty < negativeEdgeFloor {
			penalty = negativeEdgeFloor
		}
		score *= penalty
	}

	score += perturbation(in.MarketID)

	return math.Min(MaxScore, math.Max(MinScore, math.Round(score*10)/10))
}

// perturbation maps a market identifier onto a stable value in [-3,+3].
// Hash-derived, not random, so runs are reproducible.
func perturbation(marketID string) float64 {
	if marketID == "" {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(marketID))
	return float64(h.Sum32()%61)/10 - 3
}
