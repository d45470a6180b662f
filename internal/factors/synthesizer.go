// Package factors reduces the signal aggregator's weighted observation bag to
// a single bounded true-probability estimate.
package factors

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
	"github.com/OptionsTradingUni/aipredixt/internal/prob"
)

const (
	// BaseProbability anchors the estimate before factor impact is applied.
	BaseProbability = 50.0

	// CapMin and CapMax bound the conservative estimate used downstream.
	// Unclamped estimates driven by noisy upstream signals can diverge to
	// implausible extremes.
	CapMin = 45.0
	CapMax = 75.0
)

// Contribution records one category's share of the total impact, kept for
// transparency.
type Contribution struct {
	Category models.FactorCategory `json:"category"`
	Weight   float64               `json:"weight"`
	Impact   float64               `json:"impact"`
	Points   float64               `json:"points"`
	Source   string                `json:"source"`
}

// Synthesis is the synthesizer output. Raw is uncapped and retained for
// diagnostics; Capped drives all downstream market pricing. Both are on the
// percent scale.
type Synthesis struct {
	Raw           float64        `json:"raw"`
	Capped        float64        `json:"capped"`
	MarketImplied float64        `json:"market_implied"`
	TotalImpact   float64        `json:"total_impact"`
	Contributions []Contribution `json:"contributions"`
}

// TrueProb returns the capped estimate on the 0-1 scale.
func (s Synthesis) TrueProb() float64 { return s.Capped / 100 }

// Synthesize folds the observation bag into a bounded estimate. Each
// observation contributes impact x weight / 100 percentage points; a missing
// or empty bag yields the base probability. The primary market's raw home
// odds supply the market-implied reference.
func Synthesize(observations []models.FactorObservation, homeOdds float64) Synthesis {
	total := 0.0
	contributions := make([]Contribution, 0, len(observations))
	for _, obs := range observations {
		points := obs.Impact * obs.Weight / 100
		total += points
		contributions = append(contributions, Contribution{
			Category: obs.Category,
			Weight:   obs.Weight,
			Impact:   obs.Impact,
			Points:   points,
			Source:   obs.Source,
		})
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return abs(contributions[i].Points) > abs(contributions[j].Points)
	})

	raw := BaseProbability + total
	capped := raw
	if capped < CapMin {
		capped = CapMin
	}
	if capped > CapMax {
		capped = CapMax
	}
	if capped != raw {
		log.Debug().Float64("raw", raw).Float64("capped", capped).
			Msg("factor estimate capped")
	}

	return Synthesis{
		Raw:           raw,
		Capped:        capped,
		MarketImplied: prob.ImpliedProb(homeOdds),
		TotalImpact:   total,
		Contributions: contributions,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
