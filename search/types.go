// Package search - shared types: strategies, configuration, results and hooks.
package search

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"time"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/conjecture"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
)

// Sentinel errors.
var (
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("search: invalid configuration")

	// ErrStrategyUnsupported: the strategy cannot run on the requested family
	// (annealing is Toeplitz-only) or space (exhaustive needs a rankable space).
	ErrStrategyUnsupported = errors.New("search: strategy unsupported for family")

	// ErrInitialRejected: the annealing start set is outside the space or the filter.
	ErrInitialRejected = errors.New("search: initial set rejected")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("search: invalid option supplied")
)

// Defaults applied by Config.withDefaults.
const (
	// DefaultDedupeLimit is not applied automatically: it is the suggested
	// DedupeLimit for random searches hunting the minimum. Sampling for a
	// frequency table leaves DedupeLimit at 0.
	DefaultDedupeLimit   = 100_000
	DefaultMaxRejects    = 10_000
	DefaultCooling       = 0.995
	DefaultFlips         = 1
	DefaultProgressEvery = 1000
)

// Strategy selects how candidate sets are produced.
type Strategy int

const (
	// Exhaustive walks every set of the space (or of a rank window) in rank order.
	Exhaustive Strategy = iota
	// Random draws sets uniformly at random.
	Random
	// Anneal runs simulated annealing over Toeplitz index sets.
	Anneal
)

func (s Strategy) String() string {
	switch s {
	case Exhaustive:
		return "exhaustive"
	case Random:
		return "random"
	case Anneal:
		return "anneal"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy resolves a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "exhaustive", "all":
		return Exhaustive, nil
	case "random", "sample":
		return Random, nil
	case "anneal", "annealing", "sa":
		return Anneal, nil
	}

	return 0, fmt.Errorf("ParseStrategy(%q): %w", s, ErrInvalidConfig)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v

	return nil
}

// StopReason records why a run ended.
type StopReason int

const (
	// Completed: the space, sample count or iteration count was exhausted.
	Completed StopReason = iota
	// Target: EarlyStop and the best value equals the conjectured minimum.
	Target
	// Canceled: the context was canceled; the result holds what was seen so far.
	Canceled
	// Budget: the TimeBudget elapsed.
	Budget
	// FilterStarved: MaxRejects consecutive candidates failed the filter
	// (or were duplicates) without one being evaluated.
	FilterStarved
)

func (r StopReason) String() string {
	switch r {
	case Completed:
		return "completed"
	case Target:
		return "target"
	case Canceled:
		return "canceled"
	case Budget:
		return "budget"
	case FilterStarved:
		return "filter-starved"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Config describes one search run.
type Config struct {
	// N is the matrix order (≥ 1).
	N int
	// Family is the structural class searched.
	Family matrix.Family
	// Strategy selects exhaustive, random or annealing search.
	Strategy Strategy
	// Method selects the permanent algorithm (default Ryser).
	Method permanent.Method

	// Filter, when non-nil, skips candidates whose +1 ratio is outside the range.
	Filter *indexset.Range
	// Window restricts an exhaustive run to ranks [Lo, Hi). nil = whole space.
	Window *indexset.Window

	// Samples caps the number of evaluated draws (Random). 0 = unlimited.
	Samples uint64
	// Iterations caps annealing steps. 0 = unlimited.
	Iterations uint64
	// TimeBudget is a soft wall-clock limit for any strategy. 0 = none.
	TimeBudget time.Duration

	// Flips is how many free indices the annealing neighbour toggles (≥ 1).
	Flips int
	// InitialSet seeds annealing; nil draws a random set that passes Filter.
	InitialSet matrix.IndexSet
	// Temperature is the initial annealing temperature T0 (≥ 0). 0 is greedy.
	Temperature float64
	// Cooling is the geometric factor: T = T0 · Cooling^iteration, in (0, 1].
	Cooling float64

	// Seed drives every random choice. 0 selects the fixed default seed.
	Seed int64
	// EarlyStop ends the run once the best value equals the conjecture.
	// A value below it does not stop the run.
	EarlyStop bool

	// Subspace restricts an exhaustive Toeplitz run to sparse, symmetric or
	// interval sets. AllSets (the zero value) walks the whole space.
	Subspace indexset.Subspace

	// DedupeLimit bounds the remembered sets used to skip repeated random
	// draws. 0 (or negative) draws independently; it cannot be combined with
	// Distribution, whose counts need independent draws.
	DedupeLimit int
	// MaxRejects bounds consecutive filter rejections or duplicates before the
	// run stops with FilterStarved. 0 = DefaultMaxRejects.
	MaxRejects int

	// Distribution collects a histogram of every evaluated permanent value.
	Distribution bool

	// Shard labels the run inside a parallel partition; 0 when standalone.
	Shard int
}

// ValueCount is one histogram bucket.
type ValueCount struct {
	Value *big.Int
	Count uint64
}

// Result is the outcome of a run.
type Result struct {
	RunID    string
	Shard    int
	N        int
	Family   matrix.Family
	Strategy Strategy
	Subspace indexset.Subspace

	// Found is false when no positive permanent was seen; BestSet and
	// BestPermanent are then nil.
	Found         bool
	BestSet       matrix.IndexSet
	BestPermanent *big.Int
	BestRank      uint64
	Conjecture    *big.Int

	Examined   uint64 // permanents computed
	Skipped    uint64 // candidates rejected by the filter
	Duplicates uint64 // repeated random draws not re-evaluated
	Positive   uint64
	Zero       uint64
	Negative   uint64

	Accepted     uint64 // annealing moves accepted
	Improvements uint64 // times the best value strictly decreased

	// NegativeTargetHits counts permanents equal to −Kräuter(N);
	// NegativeTargetSet is the first set that produced one.
	NegativeTargetHits uint64
	NegativeTargetSet  matrix.IndexSet

	Stop    StopReason
	Started time.Time
	Elapsed time.Duration

	// Distribution maps decimal permanent values to occurrence counts.
	Distribution map[string]uint64
}

// Verdict compares BestPermanent to the conjecture. ok is false when nothing
// positive was found.
func (r Result) Verdict() (v conjecture.Verdict, ok bool) {
	if !r.Found || r.Conjecture == nil {
		return conjecture.Above, false
	}
	switch r.BestPermanent.Cmp(r.Conjecture) {
	case 0:
		return conjecture.Matches, true
	case -1:
		return conjecture.Below, true
	default:
		return conjecture.Above, true
	}
}

// Complete reports whether the run covered what it was configured to cover.
// An exhaustive run is complete when it walked its whole window or stopped on
// the conjecture target; a budget, cancellation or filter starvation leaves it
// partial. Random and annealing runs are complete unless canceled.
func (r Result) Complete() bool {
	if r.Strategy == Exhaustive {
		return r.Stop == Completed || r.Stop == Target
	}

	return r.Stop != Canceled
}

// MatchesConjecture reports BestPermanent == Kräuter(N).
func (r Result) MatchesConjecture() bool {
	v, ok := r.Verdict()
	return ok && v == conjecture.Matches
}

// BelowConjecture reports BestPermanent < Kräuter(N): a counterexample.
func (r Result) BelowConjecture() bool {
	v, ok := r.Verdict()
	return ok && v == conjecture.Below
}

// SortedDistribution returns the histogram ordered by value.
func (r Result) SortedDistribution() []ValueCount {
	out := make([]ValueCount, 0, len(r.Distribution))
	for k, c := range r.Distribution {
		v, ok := new(big.Int).SetString(k, 10)
		if !ok {
			continue
		}
		out = append(out, ValueCount{Value: v, Count: c})
	}
	slices.SortFunc(out, func(a, b ValueCount) int { return a.Value.Cmp(b.Value) })

	return out
}

// Evaluation describes one computed permanent.
type Evaluation struct {
	RunID     string
	Shard     int
	Step      uint64 // 1-based evaluation counter within the run
	Rank      uint64 // rank in the space (0 when the space is not rankable)
	Set       matrix.IndexSet
	Ratio     float64
	Permanent *big.Int
	Accepted  bool // annealing only
	At        time.Time
}

// Progress is a periodic snapshot.
type Progress struct {
	RunID    string
	Shard    int
	Examined uint64
	Skipped  uint64
	Best     *big.Int // nil until something positive is found
	Elapsed  time.Duration
}

// Observer receives run events. Implementations must be safe for concurrent
// use when shared between parallel shards. Callbacks run on the search
// goroutine; they should be quick.
//
// OnNegativeTarget fires once per run, for the first permanent equal to
// −Kräuter(N).
type Observer interface {
	OnEvaluated(Evaluation)
	OnImprovement(Evaluation)
	OnNegativeTarget(Evaluation)
	OnProgress(Progress)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are no-ops.
type ObserverFuncs struct {
	Evaluated      func(Evaluation)
	Improvement    func(Evaluation)
	NegativeTarget func(Evaluation)
	Progressed     func(Progress)
}

func (o ObserverFuncs) OnEvaluated(e Evaluation) {
	if o.Evaluated != nil {
		o.Evaluated(e)
	}
}

func (o ObserverFuncs) OnImprovement(e Evaluation) {
	if o.Improvement != nil {
		o.Improvement(e)
	}
}

func (o ObserverFuncs) OnNegativeTarget(e Evaluation) {
	if o.NegativeTarget != nil {
		o.NegativeTarget(e)
	}
}

func (o ObserverFuncs) OnProgress(p Progress) {
	if o.Progressed != nil {
		o.Progressed(p)
	}
}

// compile-time check
var _ Observer = ObserverFuncs{}

// Option configures Run via functional arguments.
type Option func(*Options)

// Options holds hooks and ambient dependencies of a run.
type Options struct {
	Observers     []Observer
	Logger        *slog.Logger
	RunID         string
	ProgressEvery uint64

	err error
}

// DefaultOptions returns a discard logger, no observers and progress every
// DefaultProgressEvery evaluations.
func DefaultOptions() Options {
	return Options{
		Logger:        slog.New(slog.DiscardHandler),
		ProgressEvery: DefaultProgressEvery,
	}
}

// WithObserver adds an observer; may be given several times.
func WithObserver(o Observer) Option {
	return func(opts *Options) {
		if o != nil {
			opts.Observers = append(opts.Observers, o)
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(opts *Options) {
		if l != nil {
			opts.Logger = l
		}
	}
}

// WithRunID fixes the run identifier (parallel shards share one).
func WithRunID(id string) Option {
	return func(opts *Options) {
		opts.RunID = id
	}
}

// WithProgressEvery sets the OnProgress period in evaluations.
//
//	k > 0: report every k evaluations
//	k == 0: invalid → ErrOptionViolation
func WithProgressEvery(k uint64) Option {
	return func(opts *Options) {
		if k == 0 {
			opts.err = fmt.Errorf("%w: ProgressEvery must be > 0", ErrOptionViolation)
			return
		}
		opts.ProgressEvery = k
	}
}
