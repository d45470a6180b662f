// Package prob implements the probability normalizer and the fair-odds
// converter. Every triple or pair returned from this package lies within
// [MinProb, MaxProb] and sums to 100 within SumTolerance, except in the
// fully-pinned degenerate case where the sum constraint is relaxed and the
// violation is logged.
package prob

import (
	"math"

	"github.com/rs/zerolog/log"
)

const (
	// MinProb and MaxProb bound every individual probability (percent scale).
	MinProb = 5.0
	MaxProb = 95.0

	// SumTolerance is the accepted deviation of a normalized set from 100.
	SumTolerance = 0.001

	// rescaleTrigger is the sum deviation above which proportional rescaling
	// kicks in before the redistribution passes.
	rescaleTrigger = 0.01

	// redistributePasses bounds the clamp/redistribute fixed-point loop. Two
	// passes are enough for any 2- or 3-entry set that has headroom at all.
	redistributePasses = 2
)

// Triple is a normalized home/draw/away probability set on the percent scale.
type Triple struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Pair is a normalized two-outcome probability set on the percent scale.
type Pair struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Sum returns the total of the triple.
func (t Triple) Sum() float64 { return t.Home + t.Draw + t.Away }

// Sum returns the total of the pair.
func (p Pair) Sum() float64 { return p.A + p.B }

// NormalizeTriple projects raw home/draw/away percentages onto the valid
// simplex: each value in [5,95], summing to 100 within tolerance. Iteration
// order is fixed home, draw, away so the result is deterministic.
func NormalizeTriple(home, draw, away float64) Triple {
	v := [3]float64{home, draw, away}
	out := normalize(v[:])
	return Triple{Home: out[0], Draw: out[1], Away: out[2]}
}

// NormalizePair projects raw two-outcome percentages onto the valid simplex.
func NormalizePair(a, b float64) Pair {
	v := [2]float64{a, b}
	out := normalize(v[:])
	return Pair{A: out[0], B: out[1]}
}

// normalize is the interleaved clamp/rescale/redistribute fixed point. Naive
// linear rescaling can push values out of bounds and naive clamping breaks
// the sum, so the two corrections alternate for a bounded number of passes.
func normalize(vals []float64) []float64 {
	for i := range vals {
		vals[i] = clamp(vals[i])
	}

	if sum := total(vals); math.Abs(sum-100) > rescaleTrigger && sum > 0 {
		scale := 100 / sum
		for i := range vals {
			vals[i] *= scale
		}
	}

	for pass := 0; pass < redistributePasses; pass++ {
		for i := range vals {
			vals[i] = clamp(vals[i])
		}
		residual := 100 - total(vals)
		if math.Abs(residual) <= rescaleTrigger {
			break
		}
		open := headroomIndices(vals, residual)
		if len(open) == 0 {
			break
		}
		share := residual / float64(len(open))
		for _, i := range open {
			vals[i] += share
		}
	}

	for i := range vals {
		vals[i] = roundTenth(clamp(vals[i]))
	}

	// Rounding can reintroduce a sum error of a few tenths. Push the full
	// residual onto the entry with the most headroom in the needed direction,
	// largest magnitude first, ties broken by fixed iteration order.
	if residual := 100 - total(vals); math.Abs(residual) > SumTolerance {
		idx := residualTarget(vals, residual)
		if idx >= 0 {
			vals[idx] = roundTenth(clamp(vals[idx] + residual))
		}
	}

	if sum := total(vals); math.Abs(sum-100) > SumTolerance {
		// All entries pinned at a bound: both constraints cannot hold at
		// once. Accept the bounded violation rather than loop.
		log.Warn().Float64("sum", sum).Floats64("values", vals).
			Msg("normalizer tolerance violation: no headroom to absorb residual")
	}

	return vals
}

// headroomIndices returns the entries that can still move in the direction of
// the residual without leaving the bounds.
func headroomIndices(vals []float64, residual float64) []int {
	var open []int
	for i, v := range vals {
		if residual > 0 && v < MaxProb {
			open = append(open, i)
		}
		if residual < 0 && v > MinProb {
			open = append(open, i)
		}
	}
	return open
}

// residualTarget picks the entry to absorb a final rounding residual: most
// headroom in the needed direction, then largest magnitude, then first seen.
func residualTarget(vals []float64, residual float64) int {
	best := -1
	bestRoom := -1.0
	for i, v := range vals {
		var room float64
		if residual > 0 {
			room = MaxProb - v
		} else {
			room = v - MinProb
		}
		if room <= 0 {
			continue
		}
		if room > bestRoom || (room == bestRoom && best >= 0 && v > vals[best]) {
			best = i
			bestRoom = room
		}
	}
	return best
}

func clamp(v float64) float64 {
	return math.Min(MaxProb, math.Max(MinProb, v))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func total(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum
}
