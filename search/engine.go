package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"math/rand"
	"time"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
)

// engine holds the state shared by every strategy: configuration, the
// candidate space, the running result and the stop policies.
// Strategies own one engine each; nothing in it is shared across goroutines.
type engine struct {
	cfg  Config
	opts Options
	log  *slog.Logger

	space *indexset.Space
	keep  indexset.Predicate
	rng   *rand.Rand

	// Time budget
	useDeadline bool
	deadline    time.Time

	// Stop target (Kräuter value) and bookkeeping
	target       *big.Int
	negTarget    *big.Int
	warnedBelow  bool
	lastProgress uint64

	res Result
}

func newEngine(cfg Config, opts Options) (*engine, error) {
	sp, err := indexset.NewSpace(cfg.N, cfg.Family)
	if err != nil {
		return nil, err
	}
	e := &engine{
		cfg:   cfg,
		opts:  opts,
		space: sp,
		rng:   rngFromSeed(cfg.Seed),
	}
	e.log = opts.Logger.With(
		slog.String("run_id", opts.RunID),
		slog.Int("shard", cfg.Shard),
		slog.String("family", cfg.Family.String()),
		slog.Int("n", cfg.N),
		slog.String("strategy", cfg.Strategy.String()),
	)
	if cfg.Filter != nil {
		e.keep = indexset.RatioFilter(cfg.N, cfg.Family, *cfg.Filter)
	}
	e.res = Result{
		RunID:    opts.RunID,
		Shard:    cfg.Shard,
		N:        cfg.N,
		Family:   cfg.Family,
		Strategy: cfg.Strategy,
		Subspace: cfg.Subspace,
		Started:  time.Now(),
	}
	if cfg.Distribution {
		e.res.Distribution = make(map[string]uint64)
	}
	if cfg.TimeBudget > 0 {
		e.useDeadline = true
		e.deadline = e.res.Started.Add(cfg.TimeBudget)
	}

	return e, nil
}

// stopCheck reports a reason to stop before the next candidate, if any.
func (e *engine) stopCheck(ctx context.Context) (StopReason, bool) {
	if ctx.Err() != nil {
		return Canceled, true
	}
	if e.useDeadline && time.Now().After(e.deadline) {
		return Budget, true
	}
	if e.cfg.EarlyStop && e.res.Found && e.res.BestPermanent.Cmp(e.target) == 0 {
		return Target, true
	}

	return Completed, false
}

// accepts applies the ratio filter, counting rejections.
func (e *engine) accepts(set matrix.IndexSet) bool {
	if e.keep == nil || e.keep(set) {
		return true
	}
	e.res.Skipped++

	return false
}

// compute builds the candidate and returns its permanent and +1 ratio
// without recording anything. A context error is returned unwrapped so
// callers can map it to Canceled.
func (e *engine) compute(ctx context.Context, set matrix.IndexSet) (*big.Int, float64, error) {
	m, err := matrix.Build(e.cfg.N, e.cfg.Family, set)
	if err != nil {
		return nil, 0, fmt.Errorf("search: build %s: %w", set, err)
	}
	p, err := permanent.ComputeContext(ctx, m, permanent.WithMethod(e.cfg.Method))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, 0, ctxErr
		}
		return nil, 0, fmt.Errorf("search: permanent of %s: %w", set, err)
	}

	return p, m.OnesRatio(), nil
}

// evaluate is compute followed by record.
func (e *engine) evaluate(ctx context.Context, rank uint64, set matrix.IndexSet) (*big.Int, error) {
	p, ratio, err := e.compute(ctx, set)
	if err != nil {
		return nil, err
	}
	e.record(rank, set, p, ratio, false)

	return p, nil
}

// isCancel reports whether err came from context cancellation.
func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// record tallies one evaluated permanent and tracks the minimum positive value.
// Ties keep the first set found.
func (e *engine) record(rank uint64, set matrix.IndexSet, p *big.Int, ratio float64, accepted bool) {
	e.res.Examined++
	switch p.Sign() {
	case 1:
		e.res.Positive++
	case 0:
		e.res.Zero++
	default:
		e.res.Negative++
	}
	if e.res.Distribution != nil {
		e.res.Distribution[p.String()]++
	}

	ev := Evaluation{
		RunID:     e.res.RunID,
		Shard:     e.cfg.Shard,
		Step:      e.res.Examined,
		Rank:      rank,
		Set:       set,
		Ratio:     ratio,
		Permanent: p,
		Accepted:  accepted,
		At:        time.Now(),
	}
	for _, o := range e.opts.Observers {
		o.OnEvaluated(ev)
	}

	if p.Sign() > 0 && (!e.res.Found || p.Cmp(e.res.BestPermanent) < 0) {
		if e.res.Found {
			e.res.Improvements++
		}
		e.res.Found = true
		e.res.BestPermanent = new(big.Int).Set(p)
		e.res.BestSet = append(matrix.IndexSet(nil), set...)
		e.res.BestRank = rank
		e.log.Debug("search: improvement", slog.String("set", set.String()), slog.String("permanent", p.String()),
			slog.Uint64("step", e.res.Examined))
		for _, o := range e.opts.Observers {
			o.OnImprovement(ev)
		}
		if !e.warnedBelow && p.Cmp(e.target) < 0 {
			e.warnedBelow = true
			e.log.Warn("search: positive permanent below Kräuter conjecture",
				slog.String("set", set.String()), slog.String("permanent", p.String()),
				slog.String("conjecture", e.target.String()))
		}
	}

	if p.Sign() < 0 && p.Cmp(e.negTarget) == 0 {
		e.res.NegativeTargetHits++
		if e.res.NegativeTargetHits == 1 {
			e.res.NegativeTargetSet = append(matrix.IndexSet(nil), set...)
			e.log.Warn("search: permanent equals minus the Kräuter conjecture",
				slog.String("set", set.String()), slog.String("permanent", p.String()),
				slog.Uint64("step", e.res.Examined))
			for _, o := range e.opts.Observers {
				o.OnNegativeTarget(ev)
			}
		}
	}

	if e.res.Examined-e.lastProgress >= e.opts.ProgressEvery {
		e.progress()
	}
}

// progress emits an OnProgress snapshot.
func (e *engine) progress() {
	e.lastProgress = e.res.Examined
	p := Progress{
		RunID:    e.res.RunID,
		Shard:    e.cfg.Shard,
		Examined: e.res.Examined,
		Skipped:  e.res.Skipped,
		Elapsed:  time.Since(e.res.Started),
	}
	if e.res.Found {
		p.Best = e.res.BestPermanent
	}
	for _, o := range e.opts.Observers {
		o.OnProgress(p)
	}
}

// rankOf returns the rank of set when the space is rankable, else 0.
func (e *engine) rankOf(set matrix.IndexSet) uint64 {
	if !e.space.Enumerable() {
		return 0
	}
	r, err := e.space.Rank(set)
	if err != nil {
		return 0
	}

	return r
}

// finish stamps the stop reason and elapsed time and emits a final progress event.
func (e *engine) finish(reason StopReason) Result {
	e.res.Stop = reason
	e.res.Elapsed = time.Since(e.res.Started)
	e.progress()
	e.log.Info("search: done",
		slog.String("stop", reason.String()),
		slog.Bool("found", e.res.Found),
		slog.Any("best", e.res.BestPermanent),
		slog.Uint64("examined", e.res.Examined),
		slog.Uint64("skipped", e.res.Skipped),
		slog.Duration("elapsed", e.res.Elapsed),
	)

	return e.res
}
