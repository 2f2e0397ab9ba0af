package search

import (
	"context"
	"fmt"
	"time"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
)

// Estimate is a projected exhaustive runtime.
type Estimate struct {
	N         int
	Family    matrix.Family
	Samples   int
	PerMatrix time.Duration
	// SpaceSize is the number of sets; 0 when the space is not rankable.
	SpaceSize uint64
	// Projected is PerMatrix · SpaceSize, saturated at the maximum Duration.
	Projected time.Duration
}

// EstimateExhaustive times samples random members of the family and projects
// the cost of evaluating the whole space.
func EstimateExhaustive(ctx context.Context, n int, f matrix.Family, samples int, seed int64) (Estimate, error) {
	if samples < 1 {
		return Estimate{}, fmt.Errorf("%w: samples must be >= 1", ErrInvalidConfig)
	}
	sp, err := indexset.NewSpace(n, f)
	if err != nil {
		return Estimate{}, err
	}
	var (
		rng   = rngFromSeed(seed)
		start = time.Now()
		m     *matrix.Dense
	)
	for i := 0; i < samples; i++ {
		if m, err = matrix.Build(n, f, sp.Random(rng)); err != nil {
			return Estimate{}, err
		}
		if _, err = permanent.ComputeContext(ctx, m); err != nil {
			return Estimate{}, err
		}
	}
	est := Estimate{
		N:         n,
		Family:    f,
		Samples:   samples,
		PerMatrix: time.Since(start) / time.Duration(samples),
	}
	if size, err := sp.Size(); err == nil {
		est.SpaceSize = size
		const maxDur = time.Duration(1<<63 - 1)
		if est.PerMatrix > 0 && size > uint64(maxDur/est.PerMatrix) {
			est.Projected = maxDur
		} else {
			est.Projected = est.PerMatrix * time.Duration(size)
		}
	}

	return est, nil
}

// HumanDuration renders d in the largest fitting unit: seconds, minutes,
// hours or days, one decimal.
func HumanDuration(d time.Duration) string {
	s := d.Seconds()
	switch {
	case s < 60:
		return fmt.Sprintf("%.1fs", s)
	case s < 3600:
		return fmt.Sprintf("%.1fm", s/60)
	case s < 86400:
		return fmt.Sprintf("%.1fh", s/3600)
	default:
		return fmt.Sprintf("%.1fd", s/86400)
	}
}
