// Package parallel - plans, options and merged results.
package parallel

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

// Sentinel errors.
var (
	// ErrInvalidPlan: the plan cannot be applied to the configuration.
	ErrInvalidPlan = errors.New("parallel: invalid plan")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("parallel: invalid option supplied")
)

// Mode selects how the work is split between shards.
type Mode int

const (
	// ByRank gives each shard a contiguous rank window of the canonical order.
	// Exhaustive strategy only.
	ByRank Mode = iota
	// ByRatio gives each shard a disjoint sub-range of the +1-ratio filter.
	ByRatio
	// Replicate runs the same configuration on every shard with independent
	// seeds (multi-start random sampling or annealing).
	Replicate
)

func (m Mode) String() string {
	switch m {
	case ByRank:
		return "rank"
	case ByRatio:
		return "ratio"
	case Replicate:
		return "replicate"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode resolves a partition mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "rank", "window":
		return ByRank, nil
	case "ratio", "rate":
		return ByRatio, nil
	case "replicate", "seed":
		return Replicate, nil
	}

	return 0, fmt.Errorf("ParseMode(%q): %w", s, ErrInvalidPlan)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v

	return nil
}

// Plan describes the partition.
type Plan struct {
	Mode Mode
	// Shards is the number of partitions; 0 = Workers.
	Shards int
	// Workers bounds concurrently running shards; 0 = runtime.NumCPU().
	Workers int
	// StopOnTarget cancels sibling shards once one reaches the Kräuter value.
	StopOnTarget bool
	// FailFast cancels sibling shards when one fails.
	FailFast bool
}

// ShardError wraps the failure of one shard.
type ShardError struct {
	Shard int
	Err   error
}

func (e *ShardError) Error() string { return fmt.Sprintf("parallel: shard %d: %v", e.Shard, e.Err) }

func (e *ShardError) Unwrap() error { return e.Err }

// ShardObserver receives shard lifecycle events. Implementations must be safe
// for concurrent use.
type ShardObserver interface {
	ShardStarted(shard int, cfg search.Config)
	ShardCompleted(res search.Result)
	ShardFailed(shard int, err error)
}

// Option configures Run.
type Option func(*Options)

// Options holds the ambient dependencies of a parallel run.
type Options struct {
	Logger    *slog.Logger
	RunID     string
	Search    []search.Option
	Observers []ShardObserver

	err error
}

// DefaultOptions returns a discard logger and no observers.
func DefaultOptions() Options {
	return Options{Logger: slog.New(slog.DiscardHandler)}
}

// WithLogger sets the logger used by Run and handed to every shard.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithRunID fixes the run identifier shared by all shards.
func WithRunID(id string) Option {
	return func(o *Options) { o.RunID = id }
}

// WithSearchOptions forwards options to every shard's search.Run
// (observers, progress period). Observers are shared and must be goroutine-safe.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *Options) { o.Search = append(o.Search, opts...) }
}

// WithShardObserver adds a lifecycle observer.
func WithShardObserver(obs ShardObserver) Option {
	return func(o *Options) {
		if obs == nil {
			o.err = fmt.Errorf("%w: nil ShardObserver", ErrOptionViolation)
			return
		}
		o.Observers = append(o.Observers, obs)
	}
}

// Merged is the combination of every shard's result.
type Merged struct {
	RunID    string
	N        int
	Family   matrix.Family
	Strategy search.Strategy
	Subspace indexset.Subspace
	Plan     Plan

	// Shards holds per-shard results in shard order; failed shards keep a zero
	// Result apart from Shard.
	Shards []search.Result
	Failed []int

	Found         bool
	BestSet       matrix.IndexSet
	BestPermanent *big.Int
	BestShard     int
	BestRank      uint64
	Conjecture    *big.Int

	Examined     uint64
	Skipped      uint64
	Duplicates   uint64
	Positive     uint64
	Zero         uint64
	Negative     uint64
	Accepted     uint64
	Improvements uint64

	NegativeTargetHits uint64
	NegativeTargetSet  matrix.IndexSet // first hit of the lowest such shard

	Stop search.StopReason
	// Complete is false when a shard failed or did not cover its part of the
	// space (see search.Result.Complete).
	Complete bool
	Started  time.Time
	Elapsed  time.Duration

	Distribution map[string]uint64
}

// Result flattens m into a search.Result (Shard = -1) so writers and stores
// that take a single result can persist merged runs.
func (m Merged) Result() search.Result {
	return search.Result{
		RunID:         m.RunID,
		Shard:         -1,
		N:             m.N,
		Family:        m.Family,
		Strategy:      m.Strategy,
		Subspace:      m.Subspace,
		Found:         m.Found,
		BestSet:       m.BestSet,
		BestPermanent: m.BestPermanent,
		BestRank:      m.BestRank,
		Conjecture:    m.Conjecture,
		Examined:      m.Examined,
		Skipped:       m.Skipped,
		Duplicates:    m.Duplicates,
		Positive:      m.Positive,
		Zero:          m.Zero,
		Negative:      m.Negative,
		Accepted:      m.Accepted,
		Improvements:  m.Improvements,
		Stop:          m.Stop,
		Started:       m.Started,
		Elapsed:       m.Elapsed,
		Distribution:  m.Distribution,

		NegativeTargetHits: m.NegativeTargetHits,
		NegativeTargetSet:  m.NegativeTargetSet,
	}
}
