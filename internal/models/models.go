package models

import (
	"time"
)

// FixtureStatus describes the lifecycle stage of a scheduled match.
type FixtureStatus string

const (
	StatusUpcoming FixtureStatus = "upcoming"
	StatusLive     FixtureStatus = "live"
	StatusFinished FixtureStatus = "finished"
)

// Fixture identifies a single scheduled match. Immutable for the duration
// of one pipeline run once read from the odds source.
type Fixture struct {
	ID       string        `json:"id"`
	Sport    string        `json:"sport"`
	League   string        `json:"league"`
	HomeTeam string        `json:"home_team"`
	AwayTeam string        `json:"away_team"`
	Kickoff  time.Time     `json:"kickoff"`
	Status   FixtureStatus `json:"status"`
}

// OddsQuote is a named bookmaker's price set for one fixture. Read-only input.
// Draw and spread/totals legs are optional depending on sport; zero means absent.
type OddsQuote struct {
	Fixture    Fixture  `json:"fixture"`
	Bookmaker  string   `json:"bookmaker"`
	HomeOdds   float64  `json:"home_odds"`
	AwayOdds   float64  `json:"away_odds"`
	DrawOdds   float64  `json:"draw_odds,omitempty"`
	SpreadLine float64  `json:"spread_line,omitempty"`
	SpreadOdds float64  `json:"spread_odds,omitempty"`
	TotalLine  float64  `json:"total_line,omitempty"`
	OverOdds   float64  `json:"over_odds,omitempty"`
	UnderOdds  float64  `json:"under_odds,omitempty"`
	Sources    []string `json:"sources"`
}

// FactorCategory names one contextual signal family.
type FactorCategory string

const (
	FactorTactical      FactorCategory = "tactical"
	FactorForm          FactorCategory = "form"
	FactorSituational   FactorCategory = "situational"
	FactorPsychological FactorCategory = "psychological"
	FactorEnvironmental FactorCategory = "environmental"
	FactorSocial        FactorCategory = "social"
	FactorReferee       FactorCategory = "referee"
	FactorMarket        FactorCategory = "betting_market"
	FactorVenue         FactorCategory = "venue"
	FactorFatigue       FactorCategory = "fatigue"
)

// FactorObservation is one weighted signal from the aggregator. Weight is the
// factor's capacity share, impact its signed score for this fixture. Immutable
// input to one pipeline run; a missing category contributes zero.
type FactorObservation struct {
	Category   FactorCategory `json:"category"`
	Weight     float64        `json:"weight"`
	Impact     float64        `json:"impact"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source"`
}

// MarketCategory classifies a sellable betting line.
type MarketCategory string

const (
	MarketMoneyline    MarketCategory = "moneyline"
	MarketSpread       MarketCategory = "spread"
	MarketTotals       MarketCategory = "totals"
	MarketBTTS         MarketCategory = "btts"
	MarketDoubleChance MarketCategory = "double_chance"
	MarketFirstHalf    MarketCategory = "first_half"
	MarketCorrectScore MarketCategory = "correct_score"
	MarketCorners      MarketCategory = "corners"
	MarketCards        MarketCategory = "cards"
)

// LiquidityTier buckets how much real money a market category absorbs.
type LiquidityTier string

const (
	LiquidityHigh   LiquidityTier = "high"
	LiquidityMedium LiquidityTier = "medium"
	LiquidityLow    LiquidityTier = "low"
)

// ConfidenceInterval is the calibrated band around a calculated probability,
// both ends on the 0-100 scale.
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Stake is a bounded fractional-Kelly recommendation. One unit equals one
// percent of bankroll.
type Stake struct {
	Units         float64 `json:"units"`
	PctOfBankroll float64 `json:"pct_of_bankroll"`
	KellyFraction float64 `json:"kelly_fraction"`
}

// MarketQuote is one priced betting line. Created fresh per pipeline run and
// never mutated after creation.
type MarketQuote struct {
	Category       MarketCategory     `json:"category"`
	Selection      string             `json:"selection"`
	Odds           float64            `json:"odds"`
	Bookmaker      string             `json:"bookmaker"`
	Liquidity      LiquidityTier      `json:"liquidity"`
	CalculatedProb float64            `json:"calculated_prob"`
	Interval       ConfidenceInterval `json:"interval"`
	ImpliedProb    float64            `json:"implied_prob"`
	Edge           float64            `json:"edge"`
	Confidence     float64            `json:"confidence"`
	Stake          Stake              `json:"stake"`
	Sources        []string           `json:"sources"`
}

// LeagueMetadata carries static per-league context. Lookup never fails;
// unknown leagues get the default.
type LeagueMetadata struct {
	Name          string  `json:"name"`
	Country       string  `json:"country"`
	Tier          int     `json:"tier"`
	AvgGoals      float64 `json:"avg_goals"`
	AvgCorners    float64 `json:"avg_corners"`
	AvgCards      float64 `json:"avg_cards"`
	DrawRate      float64 `json:"draw_rate"`
	StrictReferee bool    `json:"strict_referee"`
}

// RiskAssessment summarizes downside exposure for one prediction.
type RiskAssessment struct {
	VaR95       float64  `json:"var_95"`
	CVaR95      float64  `json:"cvar_95"`
	RiskFactors []string `json:"risk_factors"`
	Mitigations []string `json:"mitigations"`
}

// Narrative holds the free-text explanation fields built from the analysis
// bundle. Purely derived, no side effects.
type Narrative struct {
	Headline   string   `json:"headline"`
	Summary    string   `json:"summary"`
	KeyFactors []string `json:"key_factors"`
	Reasoning  string   `json:"reasoning"`
}

// Prediction is the aggregate output for one fixture.
type Prediction struct {
	RunID       string         `json:"run_id"`
	Fixture     Fixture        `json:"fixture"`
	League      LeagueMetadata `json:"league"`
	Markets     []MarketQuote  `json:"markets"`
	Primary     MarketQuote    `json:"primary"`
	Narrative   Narrative      `json:"narrative"`
	Risk        RiskAssessment `json:"risk"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// TeamStats carries a team's historical per-game figures used by the
// specialty corners/cards calculator. Zero fields mean "not supplied" and
// take documented defaults.
type TeamStats struct {
	CornersPerGame float64 `json:"corners_per_game"`
	CardsPerGame   float64 `json:"cards_per_game"`
	FoulsPerGame   float64 `json:"fouls_per_game"`
	PossessionPct  float64 `json:"possession_pct"`
}

// TeamStatsPair bundles both sides' stats plus referee context.
type TeamStatsPair struct {
	Home          TeamStats `json:"home"`
	Away          TeamStats `json:"away"`
	StrictReferee bool      `json:"strict_referee"`
	Source        string    `json:"source"`
}
