// Package stake converts probability/odds pairs into bounded fractional-Kelly
// recommendations.
package stake

import (
	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

const (
	// KellyFraction is the quarter-Kelly risk reduction versus full Kelly.
	KellyFraction = 0.25

	// MinUnits and MaxUnits keep recommendations within a practically sane
	// band regardless of how extreme the probability/odds pair is. One unit
	// equals one percent of bankroll.
	MinUnits = 0.5
	MaxUnits = 3.0
)

// Size returns the clamped fractional-Kelly stake for a win probability on
// the 0-1 scale and decimal odds above 1.
func Size(p, odds float64) models.Stake {
	units := MinUnits
	if odds > 1 && p > 0 && p < 1 {
		b := odds - 1
		kelly := KellyFraction * (p*b - (1 - p)) / b
		units = clampUnits(kelly * 100)
	}
	return models.Stake{
		Units:         units,
		PctOfBankroll: units,
		KellyFraction: KellyFraction,
	}
}

func clampUnits(units float64) float64 {
	if units < MinUnits {
		return MinUnits
	}
	if units > MaxUnits {
		return MaxUnits
	}
	return units
}
