package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/config"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/parallel"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
	require.False(t, config.Default().Sharded())
}

func TestYAMLRoundTrip(t *testing.T) {
	in := config.Default()
	in.Search.N = 7
	in.Search.Family = matrix.Toeplitz
	in.Search.Strategy = search.Anneal
	in.Search.Iterations = 500
	in.Search.Temperature = 2
	in.Search.Cooling = 0.99
	in.Search.Filter = "0.4-0.6"
	in.Search.TimeBudget = 90 * time.Second
	in.Search.InitialSet = []int{0, 1, 3}
	in.Parallel = config.Parallel{Mode: parallel.Replicate, Shards: 4, Workers: 2, StopOnTarget: true}
	in.Output.Store = "runs.db"

	b, err := in.Marshal()
	require.NoError(t, err)
	require.Contains(t, string(b), "family: toeplitz")
	require.Contains(t, string(b), "time_budget: 1m30s")

	out, err := config.Parse(b)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
search:
  n: 9
  family: hankel
  strategy: random
  samples: 1000
  filter: "0.5"
parallel:
  mode: ratio
  shards: 3
  workers: 3
output:
  formats: [xlsx]
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, matrix.TriangularHankel, cfg.Search.Family)
	require.Equal(t, search.Random, cfg.Search.Strategy)
	require.True(t, cfg.Search.EarlyStop) // from Default
	require.Equal(t, "result", cfg.Output.Dir)
	require.True(t, cfg.Sharded())

	sc, err := cfg.SearchConfig()
	require.NoError(t, err)
	require.NotNil(t, sc.Filter)
	require.True(t, sc.Filter.Contains(0.5))
	require.False(t, sc.Filter.Contains(0.51))

	ws, err := cfg.Writers()
	require.NoError(t, err)
	require.Len(t, ws, 1)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "search:\n  nn: 3\n",
		"bad family":     "search:\n  family: banded\n",
		"bad filter":     "search:\n  filter: abc\n",
		"bad format":     "output:\n  formats: [pdf]\n",
		"bad level":      "output:\n  log_level: loud\n",
		"anneal circ":    "search:\n  family: circulant\n  strategy: anneal\n",
		"rank on random": "search:\n  strategy: random\n  samples: 5\nparallel:\n  shards: 2\n",
		"random no stop": "search:\n  strategy: random\n",
		"dedupe histo":   "search:\n  strategy: random\n  samples: 5\n  distribution: true\n  dedupe_limit: 10\n",
		"bad subspace":   "search:\n  family: toeplitz\n  subspace: diagonal\n",
		"subspace circ":  "search:\n  family: circulant\n  subspace: sparse\n",
		"subspace rank":  "search:\n  family: toeplitz\n  subspace: sparse\nparallel:\n  shards: 2\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			require.Error(t, err)
		})
	}

	_, err := config.Parse([]byte("output:\n  formats: [pdf]\n"))
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestSubspaceAndDedupeKeys(t *testing.T) {
	cfg, err := config.Parse([]byte(`
search:
  n: 5
  family: toeplitz
  subspace: symmetric
parallel:
  mode: ratio
  shards: 2
  workers: 2
`))
	require.NoError(t, err)
	sc, err := cfg.SearchConfig()
	require.NoError(t, err)
	require.Equal(t, indexset.Symmetric, sc.Subspace)

	out, err := cfg.Marshal()
	require.NoError(t, err)
	require.Contains(t, string(out), "subspace: symmetric")

	cfg, err = config.Parse([]byte("search:\n  strategy: random\n  samples: 50\n  dedupe_limit: 20\n"))
	require.NoError(t, err)
	sc, err = cfg.SearchConfig()
	require.NoError(t, err)
	require.Equal(t, 20, sc.DedupeLimit)
}

func TestEmptyDocumentIsDefault(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}
