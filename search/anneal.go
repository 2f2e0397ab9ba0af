// Package search — simulated annealing over Toeplitz index sets.
//
// State: an index set S of the (plain or triangular) Toeplitz family.
// Neighbour: toggle Flips uniformly chosen free indices of S.
// Energy: E(S) = log₂|perm(T_{n,S})|; a zero permanent has E = +∞ and is
// never accepted as the current state.
// Acceptance (Metropolis): Δ = E' − E; accept if Δ ≤ 0, otherwise with
// probability exp(−Δ/T), T = T0 · Cooling^k at step k. T0 = 0 is greedy descent.
// Candidates rejected by the ratio filter consume a step without evaluation.
//
// The returned best is the smallest positive permanent evaluated at any step,
// not the final state.

package search

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
)

// energy returns log₂|p|, or +Inf when p == 0.
func energy(p *big.Int) float64 {
	if p.Sign() == 0 {
		return math.Inf(1)
	}
	f, _ := new(big.Float).SetInt(new(big.Int).Abs(p)).Float64()

	return math.Log2(f)
}

// acceptMove applies the Metropolis rule.
func acceptMove(cur, next, temp float64, u float64) bool {
	if math.IsInf(next, 1) {
		return false
	}
	if next <= cur {
		return true
	}
	if temp <= 0 {
		return false
	}

	return u < math.Exp(-(next-cur)/temp)
}

func (e *engine) runAnneal(ctx context.Context) (Result, error) {
	var (
		cur    matrix.IndexSet
		curE   float64
		p      *big.Int
		err    error
		temp   float64
		step   uint64
		reason StopReason
		stop   bool
	)

	// Initial state: caller's set or a random one that passes the filter.
	if e.cfg.InitialSet != nil {
		cur = matrix.Canonical(e.cfg.InitialSet)
		if !e.accepts(cur) {
			return e.finish(Completed), fmt.Errorf("%w: %s fails ratio filter %s", ErrInitialRejected, cur, e.cfg.Filter)
		}
	} else {
		for rejects := 0; ; rejects++ {
			if rejects >= e.cfg.MaxRejects {
				return e.finish(FilterStarved), nil
			}
			cur = e.space.Random(e.rng)
			if e.accepts(cur) {
				break
			}
		}
	}
	if p, err = e.evaluate(ctx, e.rankOf(cur), cur); err != nil {
		if isCancel(err) {
			return e.finish(Canceled), nil
		}
		return e.finish(Completed), err
	}
	curE = energy(p)

	for step = 1; e.cfg.Iterations == 0 || step <= e.cfg.Iterations; step++ {
		if reason, stop = e.stopCheck(ctx); stop {
			return e.finish(reason), nil
		}
		next := e.space.Toggle(cur, e.rng, e.cfg.Flips)
		if !e.accepts(next) {
			continue
		}
		var ratio float64
		if p, ratio, err = e.compute(ctx, next); err != nil {
			if isCancel(err) {
				return e.finish(Canceled), nil
			}
			return e.finish(Completed), err
		}
		nextE := energy(p)
		temp = e.cfg.Temperature * math.Pow(e.cfg.Cooling, float64(step))
		accepted := acceptMove(curE, nextE, temp, e.rng.Float64())
		e.record(e.rankOf(next), next, p, ratio, accepted)
		if accepted {
			cur, curE = next, nextE
			e.res.Accepted++
		}
	}

	return e.finish(Completed), nil
}
