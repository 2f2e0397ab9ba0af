// Package search - configuration validation.
//
// Design principles:
//   - Deterministic, side-effect free functions.
//   - No logging, no panics on user input; every failure wraps ErrInvalidConfig
//     (or ErrStrategyUnsupported) with the offending field.
package search

import (
	"fmt"
	"math"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
)

func invalid(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}

// Validate checks the configuration without running anything.
//
// Stage 1: order, family, strategy, method.
// Stage 2: strategy-specific fields (window, budgets, annealing parameters).
// Stage 3: filter and limits.
func (c Config) Validate() error {
	if c.N < 1 {
		return invalid("N", "must be >= 1, got %d", c.N)
	}
	if !c.Family.Valid() {
		return invalid("Family", "%v", c.Family)
	}
	if c.Method != permanent.Ryser && c.Method != permanent.Naive {
		return invalid("Method", "%v", c.Method)
	}
	if c.Method == permanent.Naive && c.N > permanent.MaxNaiveOrder {
		return invalid("Method", "naive limited to n <= %d", permanent.MaxNaiveOrder)
	}
	if c.TimeBudget < 0 {
		return invalid("TimeBudget", "negative")
	}

	switch c.Strategy {
	case Exhaustive:
		if c.Subspace != indexset.AllSets {
			if _, err := c.Subspace.Count(c.N, c.Family); err != nil {
				return fmt.Errorf("%w: %w", ErrStrategyUnsupported, err)
			}
			break
		}
		sp, err := indexset.NewSpace(c.N, c.Family)
		if err != nil {
			return invalid("Family", "%v", err)
		}
		size, err := sp.Size()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStrategyUnsupported, err)
		}
		if c.Window != nil && (c.Window.Lo > c.Window.Hi || c.Window.Hi > size) {
			return invalid("Window", "[%d,%d) outside [0,%d)", c.Window.Lo, c.Window.Hi, size)
		}
	case Random:
		if c.Samples == 0 && c.TimeBudget == 0 {
			return invalid("Samples", "random search needs Samples or TimeBudget")
		}
		if c.Distribution && c.DedupeLimit > 0 {
			return invalid("DedupeLimit", "a frequency distribution needs independent draws")
		}
	case Anneal:
		if c.Family != matrix.Toeplitz && c.Family != matrix.TriangularToeplitz {
			return fmt.Errorf("%w: anneal on %s", ErrStrategyUnsupported, c.Family)
		}
		if c.Flips < 0 {
			return invalid("Flips", "must be >= 1, got %d", c.Flips)
		}
		if c.Temperature < 0 || math.IsNaN(c.Temperature) || math.IsInf(c.Temperature, 0) {
			return invalid("Temperature", "must be finite and >= 0")
		}
		if c.Cooling < 0 || c.Cooling > 1 || math.IsNaN(c.Cooling) {
			return invalid("Cooling", "must be in (0,1]")
		}
		if c.InitialSet != nil {
			if err := matrix.ValidateIndexSet(c.N, c.Family, c.InitialSet); err != nil {
				return fmt.Errorf("%w: %w", ErrInitialRejected, err)
			}
		}
	default:
		return invalid("Strategy", "%v", c.Strategy)
	}
	if c.Window != nil && c.Strategy != Exhaustive {
		return invalid("Window", "only valid for exhaustive search")
	}
	if c.Subspace != indexset.AllSets {
		if c.Strategy != Exhaustive {
			return invalid("Subspace", "%s only valid for exhaustive search", c.Subspace)
		}
		if c.Window != nil {
			return invalid("Subspace", "%s cannot be combined with a rank window", c.Subspace)
		}
	}

	if c.Filter != nil {
		if err := c.Filter.Validate(); err != nil {
			return invalid("Filter", "%v", err)
		}
	}
	if c.MaxRejects < 0 {
		return invalid("MaxRejects", "negative")
	}

	return nil
}

// withDefaults fills zero-valued tunables.
func (c Config) withDefaults() Config {
	if c.MaxRejects == 0 {
		c.MaxRejects = DefaultMaxRejects
	}
	if c.Flips == 0 {
		c.Flips = DefaultFlips
	}
	if c.Cooling == 0 {
		c.Cooling = DefaultCooling
	}

	return c
}
