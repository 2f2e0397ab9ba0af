package search

import (
	"context"
	"iter"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
)

// runExhaustive walks the configured rank window (default: the whole space)
// in rank order and keeps the minimum positive permanent. A restricted
// Subspace is walked in its own order instead; ranks then refer to the full
// space.
//
// Complexity: O(|window| · 2^n · n) permanent work; O(n²) extra memory.
func (e *engine) runExhaustive(ctx context.Context) (Result, error) {
	seq, err := e.candidates()
	if err != nil {
		return Result{}, err
	}

	for rank, set := range seq {
		if reason, stop := e.stopCheck(ctx); stop {
			return e.finish(reason), nil
		}
		if !e.accepts(set) {
			continue
		}
		if _, err = e.evaluate(ctx, rank, set); err != nil {
			if isCancel(err) {
				return e.finish(Canceled), nil
			}
			return e.finish(Completed), err
		}
	}
	return e.finish(Completed), nil
}

// candidates returns the ranked sequence an exhaustive run walks.
func (e *engine) candidates() (iter.Seq2[uint64, matrix.IndexSet], error) {
	if e.cfg.Subspace != indexset.AllSets {
		sets, err := e.cfg.Subspace.Sets(e.cfg.N, e.cfg.Family)
		if err != nil {
			return nil, err
		}
		return func(yield func(uint64, matrix.IndexSet) bool) {
			for set := range sets {
				if !yield(e.rankOf(set), set) {
					return
				}
			}
		}, nil
	}

	var lo, hi uint64
	hi, err := e.space.Size()
	if err != nil {
		return nil, err
	}
	if e.cfg.Window != nil {
		lo, hi = e.cfg.Window.Lo, e.cfg.Window.Hi
	}

	return e.space.Window(lo, hi)
}
