// Package conjecture evaluates Kräuter's conjecture for ±1 matrices.
//
// Kräuter (1985) conjectured that the smallest positive permanent of an n×n
// (+1,−1)-matrix is 2^(n − ⌊log₂(n+1)⌋). The oracle here is integer-only:
// ⌊log₂(n+1)⌋ is bits.Len(n+1) − 1, so there is no floating-point rounding.
package conjecture

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
)

// ErrInvalidOrder is returned for n < 1.
var ErrInvalidOrder = errors.New("conjecture: order must be >= 1")

// Verdict classifies an observed minimum against the conjectured value.
type Verdict int

const (
	// Above: the observed value exceeds the conjecture (the search has not reached it).
	Above Verdict = iota
	// Matches: the observed value equals the conjecture.
	Matches
	// Below: the observed value is smaller, i.e. a counterexample.
	Below
)

func (v Verdict) String() string {
	switch v {
	case Matches:
		return "matches"
	case Below:
		return "below"
	default:
		return "above"
	}
}

// Exponent returns n − ⌊log₂(n+1)⌋.
func Exponent(n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("Exponent(%d): %w", n, ErrInvalidOrder)
	}

	return n - (bits.Len(uint(n+1)) - 1), nil
}

// Krauter returns 2^(n − ⌊log₂(n+1)⌋) as an exact integer.
func Krauter(n int) (*big.Int, error) {
	e, err := Exponent(n)
	if err != nil {
		return nil, err
	}

	return new(big.Int).Lsh(big.NewInt(1), uint(e)), nil
}

// Compare classifies value against the conjecture for order n.
func Compare(n int, value *big.Int) (Verdict, error) {
	k, err := Krauter(n)
	if err != nil {
		return Above, err
	}
	switch value.Cmp(k) {
	case 0:
		return Matches, nil
	case -1:
		return Below, nil
	default:
		return Above, nil
	}
}
