// Package sources defines the external collaborator contracts and the
// resilience wrapper around the odds source. The collaborators' internals
// (scraping, API fallback chains) are opaque to the core.
package sources

import (
	"context"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

// OddsSource supplies fixtures with bookmaker odds for a sport and optional
// date filter. Safe to call repeatedly.
type OddsSource interface {
	GetOdds(ctx context.Context, sport, dateFilter string) ([]models.OddsQuote, error)
}

// SignalAggregator supplies the weighted factor bag for a fixture. It may
// return a partial or empty bag; missing categories mean zero impact, never
// an error.
type SignalAggregator interface {
	GetSignals(ctx context.Context, fixture models.Fixture) ([]models.FactorObservation, error)
}

// TeamStatsProvider supplies historical per-game team figures for the
// specialty corners/cards calculator. Nil stats with nil error means the
// provider had nothing; the calculator falls back to defaults.
type TeamStatsProvider interface {
	GetTeamStats(ctx context.Context, fixture models.Fixture) (*models.TeamStatsPair, error)
}

// LeagueDirectory is a pure lookup from league name to metadata. Never fails;
// unknown leagues get the default.
type LeagueDirectory interface {
	Lookup(league string) models.LeagueMetadata
}
