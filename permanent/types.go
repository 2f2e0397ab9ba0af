// Package permanent provides tunable options and error definitions
// for exact permanent computation over ±1 matrices.
package permanent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
)

// Sentinel errors for permanent computation.
var (
	// ErrNonSquare is returned for a non-square input. It is the matrix
	// package sentinel so callers can match either name.
	ErrNonSquare = matrix.ErrNonSquare

	// ErrNilMatrix is returned for a nil input.
	ErrNilMatrix = matrix.ErrNilMatrix

	// ErrOrderTooLarge is returned when n exceeds the method's limit
	// (MaxNaiveOrder for Naive, MaxRyserOrder for Ryser).
	ErrOrderTooLarge = errors.New("permanent: matrix order too large for method")

	// ErrUnknownMethod is returned for an undefined Method value.
	ErrUnknownMethod = errors.New("permanent: unknown method")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("permanent: invalid option supplied")
)

const (
	// MaxNaiveOrder bounds the O(n·n!) permutation expansion.
	MaxNaiveOrder = 12

	// MaxRyserOrder bounds the Gray-code walk so the subset counter fits in uint64.
	MaxRyserOrder = 62

	// int64ProductOrder is the largest n with n^n < 2^63: row-sum products
	// of a ±1 matrix up to this order never overflow int64.
	int64ProductOrder = 15

	// cancelMask controls how often the context is polled (every 65536 steps).
	cancelMask = 1<<16 - 1
)

// Method selects the permanent algorithm.
type Method int

const (
	// Ryser is the inclusion–exclusion formula walked in Gray-code order, O(2^n·n).
	Ryser Method = iota

	// Naive sums over all n! permutations (Heap's algorithm). Reference only.
	Naive
)

func (m Method) String() string {
	switch m {
	case Ryser:
		return "ryser"
	case Naive:
		return "naive"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod resolves "ryser" or "naive".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "ryser":
		return Ryser, nil
	case "naive":
		return Naive, nil
	}

	return 0, fmt.Errorf("ParseMethod(%q): %w", s, ErrUnknownMethod)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v

	return nil
}

// Option configures a computation via functional arguments.
// Invalid options are recorded and surfaced as ErrOptionViolation.
type Option func(*Options)

// Options holds the computation parameters.
type Options struct {
	// Method selects the algorithm; default Ryser.
	Method Method

	// Logger, when non-nil, receives a Debug trace of the computation: the
	// input matrix, every Gray-code step (or permutation) and the result.
	// This is the "verbose" mode; leave nil in hot loops.
	Logger *slog.Logger

	err error
}

// DefaultOptions returns Ryser with no tracing.
func DefaultOptions() Options {
	return Options{Method: Ryser}
}

// WithMethod selects the algorithm.
func WithMethod(m Method) Option {
	return func(o *Options) {
		if m != Ryser && m != Naive {
			o.err = fmt.Errorf("%w: %v", ErrOptionViolation, m)
			return
		}
		o.Method = m
	}
}

// WithLogger enables the verbose Debug trace.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
