// Benchmarks for the permanent engine.
// Inputs are built outside the timer with fixed seeds.
package permanent_test

import (
	"math/rand"
	"testing"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
)

func benchRyser(b *testing.B, n int) {
	m, err := matrix.NewRandom(n, matrix.Full, rand.New(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err = permanent.Compute(m); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRyser_n10(b *testing.B) { benchRyser(b, 10) }
func BenchmarkRyser_n15(b *testing.B) { benchRyser(b, 15) }
func BenchmarkRyser_n18(b *testing.B) { benchRyser(b, 18) }

func BenchmarkNaive_n8(b *testing.B) {
	m, err := matrix.NewRandom(8, matrix.Full, rand.New(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err = permanent.Compute(m, permanent.WithMethod(permanent.Naive)); err != nil {
			b.Fatal(err)
		}
	}
}
