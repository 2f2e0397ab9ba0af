// Package parallel splits one search into shards and runs them concurrently.
//
// Shards are goroutines bounded by an errgroup limit. Each shard runs an
// independent search.Run with its own accumulator; the only shared state is
// what callers hand in (loggers, observers), which must be goroutine-safe.
//
// Partition modes:
//
//	ByRank     contiguous rank windows of the canonical enumeration order
//	ByRatio    disjoint sub-ranges of the +1-ratio filter
//	Replicate  identical configuration, independent seeds
//
// The merged result keeps the smallest positive permanent across shards,
// breaking ties toward the lower shard index. With ByRank or ByRatio over an
// exhaustive search the merged counters and best value equal those of a single
// unpartitioned run.
package parallel
