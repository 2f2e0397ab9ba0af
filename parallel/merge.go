package parallel

import (
	"math/big"
	"slices"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/conjecture"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

// stopRank orders stop reasons for the merged verdict: the most significant
// shard outcome wins.
var stopRank = map[search.StopReason]int{
	search.Completed:     0,
	search.FilterStarved: 1,
	search.Budget:        2,
	search.Canceled:      3,
	search.Target:        4,
}

// Merge combines shard results.
//
//   - Best: minimum positive permanent over all shards; ties go to the lower
//     shard index (each shard already keeps its first-found set).
//   - Counters and distributions are summed.
//   - Stop: Target > Canceled > Budget > FilterStarved > Completed.
//   - Complete is false when any shard is incomplete (search.Result.Complete):
//     an exhaustive shard stopped by its budget has not covered its window.
//
// Results are processed in Shard order regardless of argument order.
func Merge(results ...search.Result) Merged {
	rs := slices.Clone(results)
	slices.SortStableFunc(rs, func(a, b search.Result) int { return a.Shard - b.Shard })

	m := Merged{Shards: rs, BestShard: -1, Complete: true}
	for i, r := range rs {
		if i == 0 {
			m.RunID, m.N, m.Family, m.Strategy, m.Started = r.RunID, r.N, r.Family, r.Strategy, r.Started
			m.Subspace = r.Subspace
		}
		if !r.Started.IsZero() && (m.Started.IsZero() || r.Started.Before(m.Started)) {
			m.Started = r.Started
		}
		if m.Conjecture == nil && r.Conjecture != nil {
			m.Conjecture = r.Conjecture
		}

		m.Examined += r.Examined
		m.Skipped += r.Skipped
		m.Duplicates += r.Duplicates
		m.Positive += r.Positive
		m.Zero += r.Zero
		m.Negative += r.Negative
		m.Accepted += r.Accepted
		m.Improvements += r.Improvements
		m.NegativeTargetHits += r.NegativeTargetHits
		if m.NegativeTargetSet == nil && r.NegativeTargetSet != nil {
			m.NegativeTargetSet = append(matrix.IndexSet(nil), r.NegativeTargetSet...)
		}
		m.Elapsed = max(m.Elapsed, r.Elapsed)

		if r.Distribution != nil {
			if m.Distribution == nil {
				m.Distribution = make(map[string]uint64, len(r.Distribution))
			}
			for k, c := range r.Distribution {
				m.Distribution[k] += c
			}
		}

		if stopRank[r.Stop] > stopRank[m.Stop] {
			m.Stop = r.Stop
		}
		if !r.Complete() {
			m.Complete = false
		}

		if r.Found && (!m.Found || r.BestPermanent.Cmp(m.BestPermanent) < 0) {
			m.Found = true
			m.BestPermanent = new(big.Int).Set(r.BestPermanent)
			m.BestSet = append(matrix.IndexSet(nil), r.BestSet...)
			m.BestRank = r.BestRank
			m.BestShard = r.Shard
		}
	}
	if m.Conjecture == nil && m.N > 0 {
		m.Conjecture, _ = conjecture.Krauter(m.N)
	}

	return m
}
