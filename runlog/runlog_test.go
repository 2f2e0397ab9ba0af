package runlog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/runlog"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
	"github.com/stretchr/testify/require"
)

var lineRE = regexp.MustCompile(`^time=\S+ level=(DEBUG|INFO|WARN|ERROR) msg=`)

func TestConcurrentWritersNeverInterleave(t *testing.T) {
	const (
		writers = 8
		each    = 200
	)
	var buf bytes.Buffer
	sink := runlog.New(&buf, slog.LevelInfo)
	sink.SessionStart("run-x", search.Config{N: 6, Family: matrix.Toeplitz}, writers, writers)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				sink.OnImprovement(search.Evaluation{
					Shard:     w,
					Step:      uint64(i),
					Set:       matrix.NewIndexSet(-1, 0, 2, 4),
					Permanent: big.NewInt(int64(1000 + i)),
					Ratio:     0.5,
				})
			}
		}()
	}
	wg.Wait()
	sink.SessionEnded(search.Result{RunID: "run-x", Found: true, BestPermanent: big.NewInt(16),
		BestSet: matrix.NewIndexSet(0), Conjecture: big.NewInt(16)}, true)
	require.NoError(t, sink.Close())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, writers*each+2)
	for _, l := range lines {
		require.Regexp(t, lineRE, l)
	}
	require.Contains(t, lines[0], "SESSION START")
	require.Contains(t, lines[len(lines)-1], "SESSION END")
	require.Contains(t, lines[len(lines)-1], "matches_conjecture=true")
}

func TestShardLifecycle(t *testing.T) {
	var buf bytes.Buffer
	sink := runlog.New(&buf, slog.LevelDebug)
	r := indexset.Between(0.25, 0.5)
	sink.ShardStarted(3, search.Config{N: 5, Family: matrix.TriangularHankel, Filter: &r, Seed: 9})
	sink.OnProgress(search.Progress{Shard: 3, Examined: 10, Best: big.NewInt(8)})
	sink.ShardCompleted(search.Result{Shard: 3, Examined: 10, Found: true, BestPermanent: big.NewInt(8),
		BestSet: matrix.NewIndexSet(0, 2)})
	sink.ShardFailed(4, errors.New("boom"))

	out := buf.String()
	require.Contains(t, out, `msg="shard started" shard=3 seed=9 ratio_range="(0.25, 0.5)"`)
	require.Contains(t, out, "msg=progress shard=3 examined=10")
	require.Contains(t, out, `best=8 set={0,2}`)
	require.Contains(t, out, `level=ERROR msg="shard failed" shard=4 err=boom`)
}

func TestOpenAppendsAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "session.log")
	for range 2 {
		sink, err := runlog.Open(path, slog.LevelInfo)
		require.NoError(t, err)
		sink.ShardFailed(0, errors.New("x"))
		require.NoError(t, sink.Close())
		sink.ShardFailed(1, errors.New("after close")) // dropped
	}
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(b), "shard failed"))
	require.NotContains(t, string(b), "after close")
}

func TestTee(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(runlog.Tee(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
		nil,
	)).With("k", "v")
	log.Info("one")
	log.Warn("two")
	require.Equal(t, 2, strings.Count(a.String(), "k=v"))
	require.NotContains(t, b.String(), "one")
	require.Contains(t, b.String(), "msg=two k=v")
}

func TestNegativeTargetLoggedFromRun(t *testing.T) {
	var buf bytes.Buffer
	sink := runlog.New(&buf, slog.LevelInfo)
	res, err := search.Run(t.Context(), search.Config{N: 3, Family: matrix.TriangularToeplitz},
		search.WithObserver(sink))
	require.NoError(t, err)
	sink.SessionEnded(res, res.Complete())

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "negative conjecture value"))
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "set={-2,-1,0}")
	require.Contains(t, out, "negative_target_hits=3")
}
