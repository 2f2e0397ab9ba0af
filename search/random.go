package search

import "context"

// runRandom draws uniformly random sets until Samples evaluations, the time
// budget, the conjecture target (EarlyStop) or cancellation.
//
// Draws are independent unless DedupeLimit > 0. Then repeated draws are
// skipped while the dedupe memory (DedupeLimit sets) has room; once it is
// full, new sets are no longer remembered but lookups keep working, and the
// run completes when every set of a rankable space has been seen.
// MaxRejects consecutive draws that are duplicates or fail the filter end the
// run with FilterStarved, so an unsatisfiable filter cannot spin forever.
func (e *engine) runRandom(ctx context.Context) (Result, error) {
	var (
		seen    map[string]struct{}
		rejects int
		size    uint64
		err     error
	)
	if e.cfg.DedupeLimit > 0 {
		seen = make(map[string]struct{}, min(e.cfg.DedupeLimit, 1<<12))
	}
	if e.space.Enumerable() {
		size, _ = e.space.Size()
	}

	for {
		if reason, stop := e.stopCheck(ctx); stop {
			return e.finish(reason), nil
		}
		if e.cfg.Samples > 0 && e.res.Examined >= e.cfg.Samples {
			return e.finish(Completed), nil
		}
		if rejects >= e.cfg.MaxRejects {
			return e.finish(FilterStarved), nil
		}

		set := e.space.Random(e.rng)
		if seen != nil {
			key := set.String()
			if _, dup := seen[key]; dup {
				e.res.Duplicates++
				rejects++
				continue
			}
			if len(seen) < e.cfg.DedupeLimit {
				seen[key] = struct{}{}
			}
		}
		if !e.accepts(set) {
			rejects++
			if seen != nil && size > 0 && uint64(len(seen)) == size {
				return e.finish(Completed), nil
			}
			continue
		}
		rejects = 0

		if _, err = e.evaluate(ctx, e.rankOf(set), set); err != nil {
			if isCancel(err) {
				return e.finish(Canceled), nil
			}
			return e.finish(Completed), err
		}
		if seen != nil && size > 0 && uint64(len(seen)) == size {
			return e.finish(Completed), nil
		}
	}
}
