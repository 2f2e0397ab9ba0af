package search

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnergy(t *testing.T) {
	require.True(t, math.IsInf(energy(big.NewInt(0)), 1))
	require.InDelta(t, 3.0, energy(big.NewInt(8)), 1e-12)
	require.InDelta(t, 3.0, energy(big.NewInt(-8)), 1e-12)
	require.InDelta(t, 0.0, energy(big.NewInt(1)), 1e-12)
}

func TestAcceptMove(t *testing.T) {
	inf := math.Inf(1)
	cases := []struct {
		name            string
		cur, next, temp float64
		u               float64
		want            bool
	}{
		{"downhill", 4, 2, 1, 0.99, true},
		{"flat", 3, 3, 0, 0.99, true},
		{"zero permanent", 4, inf, 100, 0, false},
		{"leave zero state", inf, 5, 0, 0.99, true},
		{"greedy uphill", 2, 3, 0, 0, false},
		{"uphill accepted", 2, 3, 1, math.Exp(-1) - 1e-9, true},
		{"uphill rejected", 2, 3, 1, math.Exp(-1) + 1e-9, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, acceptMove(tc.cur, tc.next, tc.temp, tc.u))
		})
	}
}

func TestStopCheckTargetIsEquality(t *testing.T) {
	e := &engine{
		cfg:    Config{EarlyStop: true},
		target: big.NewInt(4),
		res:    Result{Found: true, BestPermanent: big.NewInt(2)},
	}
	// below the conjectured value is a counterexample, not the stop target
	_, stop := e.stopCheck(context.Background())
	require.False(t, stop)

	e.res.BestPermanent = big.NewInt(4)
	why, stop := e.stopCheck(context.Background())
	require.True(t, stop)
	require.Equal(t, Target, why)

	e.cfg.EarlyStop = false
	_, stop = e.stopCheck(context.Background())
	require.False(t, stop)
}
