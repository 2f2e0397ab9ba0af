package parallel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

// withDefaults fills Workers and Shards.
func (p Plan) withDefaults() Plan {
	if p.Workers == 0 {
		p.Workers = runtime.NumCPU()
	}
	if p.Shards == 0 {
		p.Shards = p.Workers
	}

	return p
}

// Validate checks the plan on its own; Run also checks it against the Config.
func (p Plan) Validate() error {
	switch {
	case p.Mode != ByRank && p.Mode != ByRatio && p.Mode != Replicate:
		return fmt.Errorf("%w: mode %v", ErrInvalidPlan, p.Mode)
	case p.Workers < 0:
		return fmt.Errorf("%w: Workers must be >= 0, got %d", ErrInvalidPlan, p.Workers)
	case p.Shards < 0:
		return fmt.Errorf("%w: Shards must be >= 0, got %d", ErrInvalidPlan, p.Shards)
	}

	return nil
}

// ShardConfigs expands cfg into one configuration per shard.
//
//	ByRank:    Window = k-th contiguous rank window (exhaustive over the whole
//	           space only; it may yield fewer windows than Shards when small).
//	ByRatio:   Filter = k-th disjoint sub-range of cfg.Filter (or [0, 1]).
//	Replicate: cfg unchanged.
//
// Every shard gets Shard = k and Seed = search.DeriveSeed(cfg.Seed, k);
// StopOnTarget forces EarlyStop.
func ShardConfigs(cfg search.Config, plan Plan) ([]search.Config, error) {
	plan = plan.withDefaults()
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	var out []search.Config
	switch plan.Mode {
	case ByRank:
		if cfg.Strategy != search.Exhaustive {
			return nil, fmt.Errorf("%w: rank partition needs exhaustive strategy, got %s", ErrInvalidPlan, cfg.Strategy)
		}
		if cfg.Window != nil {
			return nil, fmt.Errorf("%w: rank partition of an already windowed run", ErrInvalidPlan)
		}
		if cfg.Subspace != indexset.AllSets {
			return nil, fmt.Errorf("%w: rank partition of the %s subspace; use ratio mode", ErrInvalidPlan, cfg.Subspace)
		}
		sp, err := indexset.NewSpace(cfg.N, cfg.Family)
		if err != nil {
			return nil, err
		}
		ws, err := sp.Partition(plan.Shards)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
		}
		for i := range ws {
			c := cfg
			c.Window = &ws[i]
			out = append(out, c)
		}
	case ByRatio:
		base := indexset.Range{Lo: 0, Hi: 1}
		if cfg.Filter != nil {
			base = *cfg.Filter
		}
		subs := base.Split(plan.Shards)
		for i := range subs {
			c := cfg
			c.Filter = &subs[i]
			out = append(out, c)
		}
	case Replicate:
		for range plan.Shards {
			out = append(out, cfg)
		}
	}

	for i := range out {
		out[i].Shard = i
		out[i].Seed = search.DeriveSeed(cfg.Seed, uint64(i))
		if plan.StopOnTarget {
			out[i].EarlyStop = true
		}
	}

	return out, nil
}

// Run executes cfg split according to plan.
//
// Stage 1 (Options/Validate): options, cfg.Validate, plan.Validate.
// Stage 2 (Expand): ShardConfigs.
// Stage 3 (Execute): one search.Run per shard on an errgroup limited to
// plan.Workers; shards share the RunID and the observers but nothing else.
// Stage 4 (Merge): Merge over the shard results in shard order.
//
// A failing shard does not stop its siblings unless plan.FailFast is set.
// The returned error joins one *ShardError per failed shard; the Merged value
// is returned in every case after Stage 2 and reflects the shards that ran.
func Run(ctx context.Context, cfg search.Config, plan Plan, opts ...Option) (Merged, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return Merged{}, o.err
	}
	if err := cfg.Validate(); err != nil {
		return Merged{}, err
	}
	plan = plan.withDefaults()
	cfgs, err := ShardConfigs(cfg, plan)
	if err != nil {
		return Merged{}, err
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	log := o.Logger.With(
		slog.String("run_id", o.RunID),
		slog.String("family", cfg.Family.String()),
		slog.Int("n", cfg.N),
		slog.String("mode", plan.Mode.String()),
	)
	log.Info("parallel: start", slog.Int("shards", len(cfgs)), slog.Int("workers", plan.Workers))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		started = time.Now()
		results = make([]search.Result, len(cfgs))
		errs    = make([]error, len(cfgs))
		sopts   = append(append([]search.Option{search.WithLogger(o.Logger)}, o.Search...), search.WithRunID(o.RunID))
	)
	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(plan.Workers)
	for i, sc := range cfgs {
		g.Go(func() error {
			for _, obs := range o.Observers {
				obs.ShardStarted(i, sc)
			}
			res, err := search.Run(gctx, sc, sopts...)
			if err != nil {
				se := &ShardError{Shard: i, Err: err}
				errs[i] = se
				results[i] = search.Result{RunID: o.RunID, Shard: i, N: sc.N, Family: sc.Family, Strategy: sc.Strategy}
				log.Error("parallel: shard failed", slog.Int("shard", i), slog.Any("err", err))
				for _, obs := range o.Observers {
					obs.ShardFailed(i, err)
				}
				if plan.FailFast {
					return se
				}
				return nil
			}
			results[i] = res
			for _, obs := range o.Observers {
				obs.ShardCompleted(res)
			}
			if plan.StopOnTarget && res.Stop == search.Target {
				log.Info("parallel: target reached, canceling siblings", slog.Int("shard", i))
				cancel()
			}
			return nil
		})
	}
	// Per-shard errors are collected in errs; Wait only reports the first.
	_ = g.Wait()

	m := Merge(results...)
	m.RunID = o.RunID
	m.Plan = plan
	for i, e := range errs {
		if e != nil {
			m.Failed = append(m.Failed, i)
			m.Complete = false
		}
	}
	m.Started = started
	m.Elapsed = time.Since(started)
	log.Info("parallel: done",
		slog.String("stop", m.Stop.String()),
		slog.Bool("complete", m.Complete),
		slog.Any("best", m.BestPermanent),
		slog.Int("best_shard", m.BestShard),
		slog.Uint64("examined", m.Examined),
		slog.Duration("elapsed", m.Elapsed),
	)

	return m, errors.Join(errs...)
}
