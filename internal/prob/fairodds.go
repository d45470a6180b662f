package prob

import (
	"math"
)

const (
	// Adjustment factors are clamped to this band before scaling.
	MaxAdjustment = 0.5

	// threeWayScale and twoWayScale convert an adjustment factor into
	// percentage points of probability shift.
	threeWayScale = 15.0
	twoWayScale   = 10.0

	// Three-way shifts are asymmetric: most of an edge against a three-way
	// price manifests in the extreme outcomes, not the draw.
	drawShare = 0.3
	awayShare = 0.7

	// defaultDrawProb is assumed when a three-way market has no draw price.
	defaultDrawProb = 25.0
)

// ImpliedProb returns the naive implied probability (percent) of decimal odds,
// margin included. Zero for odds at or below 1.
func ImpliedProb(odds float64) float64 {
	if odds <= 1 {
		return 0
	}
	return 100 / odds
}

// FairThreeWay strips the bookmaker margin from three-way decimal odds,
// applies the analytical adjustment, and normalizes. A missing draw price
// (drawOdds <= 1) defaults the draw to 25% with the deficit halved out of
// the two sides.
func FairThreeWay(homeOdds, drawOdds, awayOdds, adjustment float64) Triple {
	adjustment = clampAdjustment(adjustment)

	var home, draw, away float64
	if drawOdds > 1 {
		ih, id, ia := ImpliedProb(homeOdds), ImpliedProb(drawOdds), ImpliedProb(awayOdds)
		sum := ih + id + ia
		if sum <= 0 {
			return NormalizeTriple(100.0/3, 100.0/3, 100.0/3)
		}
		home, draw, away = ih/sum*100, id/sum*100, ia/sum*100
	} else {
		ih, ia := ImpliedProb(homeOdds), ImpliedProb(awayOdds)
		sum := ih + ia
		if sum <= 0 {
			return NormalizeTriple(37.5, defaultDrawProb, 37.5)
		}
		draw = defaultDrawProb
		home = ih/sum*100 - defaultDrawProb/2
		away = ia/sum*100 - defaultDrawProb/2
	}

	shift := adjustment * threeWayScale
	home += shift
	draw -= shift * drawShare
	away -= shift * awayShare

	return NormalizeTriple(home, draw, away)
}

// FairTwoWay strips the margin from a two-outcome market and applies the
// adjustment symmetrically.
func FairTwoWay(oddsA, oddsB, adjustment float64) Pair {
	adjustment = clampAdjustment(adjustment)

	ia, ib := ImpliedProb(oddsA), ImpliedProb(oddsB)
	sum := ia + ib
	if sum <= 0 {
		return NormalizePair(50, 50)
	}
	a := ia/sum*100 + adjustment*twoWayScale
	b := ib/sum*100 - adjustment*twoWayScale

	return NormalizePair(a, b)
}

func clampAdjustment(adj float64) float64 {
	return math.Min(MaxAdjustment, math.Max(-MaxAdjustment, adj))
}
