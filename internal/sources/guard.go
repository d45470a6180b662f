package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

// GuardConfig tunes the circuit breaker and token bucket protecting the
// upstream odds API.
type GuardConfig struct {
	Name                string
	RPS                 float64
	Burst               int
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultGuardConfig matches a free-tier odds API quota.
func DefaultGuardConfig(name string) GuardConfig {
	return GuardConfig{
		Name:                name,
		RPS:                 2,
		Burst:               4,
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 3,
	}
}

// GuardedOddsSource wraps an OddsSource with an injected rate limiter and a
// circuit breaker. The limiter replaces the ambient global request counter
// the upstream rate limiting used to lean on, so runs are independently
// testable: construct a fresh guard, get fresh state.
type GuardedOddsSource struct {
	inner   OddsSource
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuardedOddsSource builds the wrapper. The limiter may be shared across
// guards when several sources hit the same upstream quota.
func NewGuardedOddsSource(inner OddsSource, cfg GuardConfig, limiter *rate.Limiter) *GuardedOddsSource {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("odds source breaker state change")
		},
	}
	return &GuardedOddsSource{
		inner:   inner,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// GetOdds waits for a token, then runs the upstream call through the breaker.
func (g *GuardedOddsSource) GetOdds(ctx context.Context, sport, dateFilter string) ([]models.OddsQuote, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("odds source rate limit: %w", err)
	}
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.GetOdds(ctx, sport, dateFilter)
	})
	if err != nil {
		return nil, fmt.Errorf("odds source %q: %w", sport, err)
	}
	return result.([]models.OddsQuote), nil
}

// State exposes the breaker state for telemetry.
func (g *GuardedOddsSource) State() gobreaker.State {
	return g.breaker.State()
}
