package markets

import (
	"math"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

// Specialty corners/cards pricing. Over/under probability uses a normal
// approximation to a Poisson process instead of exact CDF evaluation; the
// approximation degrades for expected counts below about 2.
const (
	cornersLine = 9.5
	cardsLine   = 4.5

	defaultCornersPerGame = 5.2
	defaultCardsPerGame   = 2.0
	defaultFoulsPerGame   = 11.5
	defaultPossessionPct  = 50.0

	// leagueFoulsAnchor is the league-average fouls-per-game the
	// aggressiveness multiplier is measured against.
	leagueFoulsAnchor = 12.5

	// homeCornerBonus is the fixed home-advantage additive term.
	homeCornerBonus = 0.8

	// strictRefereeMult inflates expected cards when the referee is flagged
	// strict.
	strictRefereeMult = 1.2
)

type specialtyCalc struct {
	home   models.TeamStats
	away   models.TeamStats
	strict bool
	source string
}

// newSpecialtyCalc fills documented defaults for any absent figure. A nil
// stats pair means the collaborator had nothing; league metadata still
// supplies the referee flag.
func newSpecialtyCalc(stats *models.TeamStatsPair, league models.LeagueMetadata) specialtyCalc {
	calc := specialtyCalc{
		strict: league.StrictReferee,
		source: "league-defaults",
	}
	if stats != nil {
		calc.home = stats.Home
		calc.away = stats.Away
		calc.strict = calc.strict || stats.StrictReferee
		if stats.Source != "" {
			calc.source = stats.Source
		}
	}
	calc.home = withDefaults(calc.home)
	calc.away = withDefaults(calc.away)
	return calc
}

func withDefaults(s models.TeamStats) models.TeamStats {
	if s.CornersPerGame <= 0 {
		s.CornersPerGame = defaultCornersPerGame
	}
	if s.CardsPerGame <= 0 {
		s.CardsPerGame = defaultCardsPerGame
	}
	if s.FoulsPerGame <= 0 {
		s.FoulsPerGame = defaultFoulsPerGame
	}
	if s.PossessionPct <= 0 {
		s.PossessionPct = defaultPossessionPct
	}
	return s
}

func (c specialtyCalc) sourceLabel() string {
	return "team-stats:" + c.source
}

// expectedTotalCorners adjusts each side's per-game rate by its possession
// share and adds the home-advantage term.
func (c specialtyCalc) expectedTotalCorners() float64 {
	home := c.home.CornersPerGame*(c.home.PossessionPct/50) + homeCornerBonus
	away := c.away.CornersPerGame * (c.away.PossessionPct / 50)
	return home + away
}

// expectedTotalCards scales the combined per-game rate by an aggressiveness
// multiplier anchored on league-average fouls, then by referee strictness.
func (c specialtyCalc) expectedTotalCards() float64 {
	aggressiveness := (c.home.FoulsPerGame + c.away.FoulsPerGame) / 2 / leagueFoulsAnchor
	expected := (c.home.CardsPerGame + c.away.CardsPerGame) * aggressiveness
	if c.strict {
		expected *= strictRefereeMult
	}
	return expected
}

// overProbability returns P(total > line) in percent via the sigmoid
// approximation sigma((expected - line) / sqrt(expected)).
func (c specialtyCalc) overProbability(expected, line float64) float64 {
	if expected <= 0 {
		return 50
	}
	z := (expected - line) / math.Sqrt(expected)
	return 100 / (1 + math.Exp(-z))
}
