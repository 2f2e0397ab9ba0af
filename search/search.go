package search

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/conjecture"
)

// Run executes one search described by cfg.
//
// Stage 1 (Options): apply options; report ErrOptionViolation.
// Stage 2 (Validate): cfg.Validate, then fill defaults.
// Stage 3 (Prepare): candidate space, filter, RNG, Kräuter target.
// Stage 4 (Dispatch): exhaustive, random or annealing engine.
//
// Cancellation is not an error: a canceled run returns its partial Result with
// Stop == Canceled and a nil error. Errors are reserved for invalid input and
// failures while building or evaluating a candidate.
func Run(ctx context.Context, cfg Config, opts ...Option) (Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return Result{}, o.err
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	cfg = cfg.withDefaults()
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}

	e, err := newEngine(cfg, o)
	if err != nil {
		return Result{}, err
	}
	if e.target, err = conjecture.Krauter(cfg.N); err != nil {
		return Result{}, err
	}
	e.negTarget = new(big.Int).Neg(e.target)
	e.res.Conjecture = e.target
	e.log.Info("search: start", "conjecture", e.target.String(), "early_stop", cfg.EarlyStop)

	switch cfg.Strategy {
	case Random:
		return e.runRandom(ctx)
	case Anneal:
		return e.runAnneal(ctx)
	default:
		return e.runExhaustive(ctx)
	}
}
