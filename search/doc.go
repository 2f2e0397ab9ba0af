// Package search drives the minimum-positive-permanent search for one
// (order, family) pair.
//
// A run is described by a Config and executed by Run:
//
//   - Exhaustive walks the canonical rank order of the index-set space (or a
//     rank window of it, which is how the parallel partitioner shards work).
//   - Random draws uniform sets until a sample count or time budget.
//   - Anneal performs simulated annealing on Toeplitz index sets.
//
// Every strategy applies the optional +1-ratio filter before computing a
// permanent, never lets a zero (or negative) permanent become the best value,
// and stops early when EarlyStop is set and the Kräuter value is reached.
//
// The package does no file I/O. Callers attach Observers (run logs, metrics,
// report writers) through WithObserver.
package search
