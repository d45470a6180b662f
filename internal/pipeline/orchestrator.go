// Package pipeline sequences the four analysis phases per sport: scan the
// odds board, deep-dive shortlisted fixtures, build narratives, and select.
// External collaborator calls are the only suspension points; pure pricing
// never blocks.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/OptionsTradingUni/aipredixt/internal/cache"
	"github.com/OptionsTradingUni/aipredixt/internal/config"
	"github.com/OptionsTradingUni/aipredixt/internal/metrics"
	"github.com/OptionsTradingUni/aipredixt/internal/models"
	"github.com/OptionsTradingUni/aipredixt/internal/prob"
	"github.com/OptionsTradingUni/aipredixt/internal/sources"
)

// Archiver persists finished predictions. Archive failures are logged and
// never fail a run.
type Archiver interface {
	Save(ctx context.Context, predictions []models.Prediction) error
}

// Deps collects the orchestrator's collaborators. Odds, Signals, and Leagues
// are required; Stats, Store, and Archive are optional.
type Deps struct {
	Odds    sources.OddsSource
	Signals sources.SignalAggregator
	Stats   sources.TeamStatsProvider
	Leagues sources.LeagueDirectory
	Store   cache.Store
	Archive Archiver
	Metrics *metrics.Registry
}

// Orchestrator runs the probability synthesis and market generation pipeline.
type Orchestrator struct {
	deps Deps
	cfg  config.PipelineConfig
	ttl  time.Duration

	now func() time.Time
}

// New builds an orchestrator. A nil metrics registry gets a private one so
// call sites never need nil checks.
func New(deps Deps, cfg config.PipelineConfig, ttl time.Duration) *Orchestrator {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}
	return &Orchestrator{deps: deps, cfg: cfg, ttl: ttl, now: time.Now}
}

// runState tracks one run through the state machine.
type runState struct {
	id    string
	state State
	phase map[string]float64
}

func (r *runState) transition(to State) {
	log.Debug().Str("run_id", r.id).Str("from", string(r.state)).Str("to", string(to)).
		Msg("pipeline phase transition")
	r.state = to
}

func (r *runState) fail(err error) error {
	log.Error().Str("run_id", r.id).Str("from", string(r.state)).Err(err).
		Msg("pipeline run failed")
	r.state = StateFailed
	return err
}

// RunCached serves from the result cache when a fresh entry exists for the
// (sport, date-filter, mode) key, otherwise runs the pipeline and writes
// through. The second return reports whether the result came from cache.
//
// Two concurrent misses on the same key both recompute; the second writer
// wins. Each run independently satisfies the numeric invariants, so this is
// waste, not a correctness hazard.
func (o *Orchestrator) RunCached(ctx context.Context, sport, dateFilter string, mode Mode) (*Result, bool, error) {
	key := cache.Key(sport, dateFilter) + "|" + string(mode)

	if o.deps.Store != nil {
		entry, ok, err := o.deps.Store.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("result cache read failed")
		}
		if ok && o.now().Sub(entry.Timestamp) < o.ttl {
			var cached Result
			if err := json.Unmarshal(entry.Payload, &cached); err == nil {
				o.deps.Metrics.CacheHits.Inc()
				return &cached, true, nil
			}
			log.Warn().Str("key", key).Msg("result cache entry undecodable, recomputing")
		}
		o.deps.Metrics.CacheMisses.Inc()
	}

	result, err := o.Run(ctx, sport, dateFilter, mode)
	if err != nil {
		return nil, false, err
	}

	if o.deps.Store != nil {
		payload, err := json.Marshal(result)
		if err == nil {
			if err := o.deps.Store.Put(ctx, key, payload); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("result cache write failed")
			}
		}
	}
	return result, false, nil
}

// Run executes one full pipeline pass. An empty shortlist yields an empty
// result in analyze-all mode and ErrNoCandidates in best-pick mode; no
// partial result is ever returned alongside an error.
func (o *Orchestrator) Run(ctx context.Context, sport, dateFilter string, mode Mode) (*Result, error) {
	run := &runState{id: uuid.New().String(), state: StateScanning, phase: map[string]float64{}}
	status := "ok"
	defer func() {
		o.deps.Metrics.PipelineRuns.WithLabelValues(string(mode), status).Inc()
	}()

	log.Info().Str("run_id", run.id).Str("sport", sport).Str("mode", string(mode)).
		Msg("pipeline run starting")

	shortlist, seen, err := o.scan(ctx, run, sport, dateFilter)
	if err != nil {
		status = "failed"
		return nil, run.fail(fmt.Errorf("scanning %s: %w", sport, err))
	}
	if len(shortlist) == 0 {
		if mode == ModeBestPick {
			status = "failed"
			return nil, run.fail(ErrNoCandidates)
		}
		run.transition(StateDone)
		return o.assemble(run, sport, dateFilter, mode, nil, seen, 0, 0), nil
	}

	bundles, dropped, err := o.deepDive(ctx, run, shortlist, mode)
	if err != nil {
		status = "failed"
		return nil, run.fail(fmt.Errorf("deep dive: %w", err))
	}

	run.transition(StateBuildingNarrative)
	started := o.now()
	for i := range bundles {
		bundles[i].narrative = buildNarrative(bundles[i])
	}
	run.phase[string(StateBuildingNarrative)] = o.now().Sub(started).Seconds()

	run.transition(StateSelecting)
	selected := o.selectBundles(bundles, mode)

	run.transition(StateDone)
	result := o.assemble(run, sport, dateFilter, mode, selected, seen, len(shortlist), dropped)

	if o.deps.Archive != nil && len(result.Predictions) > 0 {
		if err := o.deps.Archive.Save(ctx, result.Predictions); err != nil {
			log.Warn().Err(err).Str("run_id", run.id).Msg("prediction archive write failed")
		}
	}
	return result, nil
}

// scan pulls the odds board and keeps fixtures clearing the cheap initial
// edge heuristic: assumed probability against the raw home price.
func (o *Orchestrator) scan(ctx context.Context, run *runState, sport, dateFilter string) ([]models.OddsQuote, int, error) {
	started := o.now()
	defer func() { run.phase[string(StateScanning)] = o.now().Sub(started).Seconds() }()

	quotes, err := o.deps.Odds.GetOdds(ctx, sport, dateFilter)
	if err != nil {
		o.deps.Metrics.SourceFailures.WithLabelValues("odds_source").Inc()
		return nil, 0, err
	}
	o.deps.Metrics.FixturesSeen.Add(float64(len(quotes)))

	type scored struct {
		quote models.OddsQuote
		edge  float64
	}
	var shortlist []scored
	for _, q := range quotes {
		edge := o.cfg.AssumedProb - prob.ImpliedProb(q.HomeOdds)
		if edge >= o.cfg.EdgeThreshold {
			shortlist = append(shortlist, scored{quote: q, edge: edge})
		}
	}
	sort.SliceStable(shortlist, func(i, j int) bool { return shortlist[i].edge > shortlist[j].edge })

	out := make([]models.OddsQuote, len(shortlist))
	for i, s := range shortlist {
		out[i] = s.quote
	}
	o.deps.Metrics.Shortlisted.Add(float64(len(out)))
	log.Info().Str("run_id", run.id).Int("seen", len(quotes)).Int("shortlisted", len(out)).
		Msg("scan complete")
	return out, len(quotes), nil
}

// deepDive fans out per-fixture analysis concurrently. Each branch computes a
// local bundle merged here after all branches complete; nothing shared is
// mutated from more than one goroutine.
func (o *Orchestrator) deepDive(ctx context.Context, run *runState, shortlist []models.OddsQuote, mode Mode) ([]*analysisBundle, int, error) {
	run.transition(StateDeepDiving)
	started := o.now()
	defer func() { run.phase[string(StateDeepDiving)] = o.now().Sub(started).Seconds() }()

	candidates := shortlist
	if mode == ModeBestPick && len(candidates) > o.cfg.TopN {
		candidates = candidates[:o.cfg.TopN]
	}

	type diveOutcome struct {
		idx    int
		bundle *analysisBundle
		err    error
	}
	outcomes := make(chan diveOutcome, len(candidates))
	for i, quote := range candidates {
		go func(idx int, q models.OddsQuote) {
			bundle, err := o.analyzeFixture(ctx, q)
			outcomes <- diveOutcome{idx: idx, bundle: bundle, err: err}
		}(i, quote)
	}

	bundles := make([]*analysisBundle, len(candidates))
	dropped := 0
	var firstErr error
	for range candidates {
		out := <-outcomes
		if out.err != nil {
			if mode == ModeBestPick {
				if firstErr == nil {
					firstErr = fmt.Errorf("fixture %s: %w", candidates[out.idx].Fixture.ID, out.err)
				}
				continue
			}
			dropped++
			o.deps.Metrics.DroppedDives.Inc()
			log.Warn().Err(out.err).Str("run_id", run.id).
				Str("fixture", candidates[out.idx].Fixture.ID).
				Msg("deep dive failed, fixture dropped")
			continue
		}
		bundles[out.idx] = out.bundle
	}
	if mode == ModeBestPick && firstErr != nil {
		return nil, 0, firstErr
	}

	// Preserve shortlist order while compacting out dropped fixtures.
	kept := bundles[:0]
	for _, b := range bundles {
		if b != nil {
			kept = append(kept, b)
		}
	}
	o.deps.Metrics.Analyzed.Add(float64(len(kept)))
	return kept, dropped, nil
}

// selectBundles orders the output: best-pick keeps the single highest
// expected value; analyze-all sorts by descending primary edge.
func (o *Orchestrator) selectBundles(bundles []*analysisBundle, mode Mode) []*analysisBundle {
	if len(bundles) == 0 {
		return nil
	}
	if mode == ModeBestPick {
		best := bundles[0]
		for _, b := range bundles[1:] {
			if b.expectedValue() > best.expectedValue() {
				best = b
			}
		}
		return []*analysisBundle{best}
	}
	sorted := make([]*analysisBundle, len(bundles))
	copy(sorted, bundles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].primary().Edge > sorted[j].primary().Edge
	})
	return sorted
}

// assemble builds the final Result and telemetry.
func (o *Orchestrator) assemble(run *runState, sport, dateFilter string, mode Mode, bundles []*analysisBundle, seen, shortlisted, dropped int) *Result {
	predictions := make([]models.Prediction, 0, len(bundles))
	sourceSet := map[string]bool{}
	signalsSeen, statsSeen := false, false

	for _, b := range bundles {
		predictions = append(predictions, b.toPrediction(run.id, o.now()))
		for _, s := range b.quote.Sources {
			sourceSet[s] = true
		}
		signalsSeen = signalsSeen || b.signalsAvailable
		statsSeen = statsSeen || b.statsAvailable
	}

	for phase, seconds := range run.phase {
		o.deps.Metrics.PhaseDuration.WithLabelValues(phase).Observe(seconds)
	}

	sourceList := make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		sourceList = append(sourceList, s)
	}
	sort.Strings(sourceList)

	return &Result{
		RunID:       run.id,
		Sport:       sport,
		DateFilter:  dateFilter,
		Mode:        mode,
		Predictions: predictions,
		Telemetry: Telemetry{
			FixturesSeen:        seen,
			Shortlisted:         shortlisted,
			Analyzed:            len(bundles),
			Dropped:             dropped,
			Sources:             sourceList,
			OddsSourceAvailable: true,
			SignalsAvailable:    signalsSeen,
			TeamStatsAvailable:  statsSeen,
			PhaseSeconds:        run.phase,
		},
		GeneratedAt: o.now(),
	}
}
