package prob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFairThreeWayZeroAdjustment(t *testing.T) {
	// home 1.80, draw 3.40, away 4.50: implied 55.56 / 29.41 / 22.22 before
	// margin removal; the margin-removed triple must sum to 100.
	tr := FairThreeWay(1.80, 3.40, 4.50, 0)
	assertValidTriple(t, tr)

	// Margin-free expectations: 51.83 / 27.44 / 20.73, within normalization
	// rounding plus the final residual correction.
	assert.InDelta(t, 51.83, tr.Home, 0.15)
	assert.InDelta(t, 27.44, tr.Draw, 0.15)
	assert.InDelta(t, 20.73, tr.Away, 0.15)
}

func TestFairThreeWayAdjustmentShiftsHome(t *testing.T) {
	base := FairThreeWay(1.90, 3.50, 4.00, 0)
	up := FairThreeWay(1.90, 3.50, 4.00, 0.2)
	assertValidTriple(t, up)
	assert.Greater(t, up.Home, base.Home)
	assert.Less(t, up.Away, base.Away)
	// The draw absorbs the smaller share of the shift.
	assert.Less(t, base.Draw-up.Draw, base.Away-up.Away)
}

func TestFairThreeWayAdjustmentClamped(t *testing.T) {
	extreme := FairThreeWay(1.90, 3.50, 4.00, 5.0)
	capped := FairThreeWay(1.90, 3.50, 4.00, MaxAdjustment)
	assert.Equal(t, capped, extreme)
}

func TestFairThreeWayMissingDraw(t *testing.T) {
	tr := FairThreeWay(1.90, 0, 2.10, 0)
	assertValidTriple(t, tr)
	assert.InDelta(t, 25.0, tr.Draw, 0.15, "absent draw price defaults to 25%")

	// The deficit is halved out of the two sides, so home keeps its lead.
	assert.Greater(t, tr.Home, tr.Away)
}

func TestFairTwoWayZeroAdjustment(t *testing.T) {
	// Symmetric -110-style pricing devigs to an even split.
	p := FairTwoWay(1.91, 1.91, 0)
	assertValidPair(t, p)
	assert.InDelta(t, 50.0, p.A, 0.15)
	assert.InDelta(t, 50.0, p.B, 0.15)
}

func TestFairTwoWayAdjustmentSymmetric(t *testing.T) {
	base := FairTwoWay(1.85, 2.05, 0)
	up := FairTwoWay(1.85, 2.05, 0.3)
	assertValidPair(t, up)
	assert.InDelta(t, 3.0, up.A-base.A, 0.25, "0.3 adjustment scales by 10 points")
	assert.InDelta(t, 3.0, base.B-up.B, 0.25)
}

func TestImpliedProb(t *testing.T) {
	assert.InDelta(t, 50.0, ImpliedProb(2.0), 1e-9)
	assert.InDelta(t, 52.63, ImpliedProb(1.90), 0.01)
	assert.Zero(t, ImpliedProb(1.0))
	assert.Zero(t, ImpliedProb(0))
}
