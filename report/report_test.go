package report_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/parallel"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/report"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

func runReport(t *testing.T) report.Report {
	t.Helper()
	rec := report.NewRecorder()
	res, err := search.Run(context.Background(),
		search.Config{N: 4, Family: matrix.TriangularHankel, Distribution: true},
		search.WithObserver(rec), search.WithRunID("0123456789abcdef"))
	require.NoError(t, err)

	r := report.FromResult(res, rec)
	require.True(t, r.Complete)
	require.Len(t, r.Improvements, int(res.Improvements+1))

	return r
}

func TestXLSXWorkbook(t *testing.T) {
	dir := t.TempDir()
	r := runReport(t)
	paths, err := report.XLSX{Dir: dir}.Write(r)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Equal(t, filepath.Join(dir, "triangular-hankel", "4"), filepath.Dir(paths[0]))
	require.True(t, strings.HasSuffix(paths[0], "_01234567.xlsx"))

	f, err := excelize.OpenFile(paths[0])
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"Summary", "Improvements", "Distribution"}, f.GetSheetList())

	v, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	require.Equal(t, "0123456789abcdef", v)

	v, err = f.GetCellValue("Summary", "B9")
	require.NoError(t, err)
	require.Equal(t, r.Result.BestPermanent.String(), v)

	rows, err := f.GetRows("Distribution")
	require.NoError(t, err)
	require.Len(t, rows, len(r.Result.Distribution)+1)
}

func TestTSVAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	r := runReport(t)
	paths, err := report.WriteAll(r, report.TSV{Dir: dir}, report.Markdown{Dir: dir})
	require.NoError(t, err)
	require.Len(t, paths, 3)

	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Equal(t, "shard\tstep\trank\tpermanent\tset\tratio", lines[0])
	require.Len(t, lines, len(r.Improvements)+1)

	b, err = os.ReadFile(paths[2])
	require.NoError(t, err)
	md := string(b)
	require.True(t, strings.HasPrefix(md, "# triangular-hankel n=4 (exhaustive)"))
	require.Contains(t, md, "## Distribution")
	require.Contains(t, md, "| Best permanent | "+r.Result.BestPermanent.String()+" |")
}

func TestMergedReportHasShardSheet(t *testing.T) {
	dir := t.TempDir()
	m, err := parallel.Run(context.Background(), search.Config{N: 4, Family: matrix.Toeplitz},
		parallel.Plan{Mode: parallel.ByRank, Shards: 3, Workers: 3})
	require.NoError(t, err)

	paths, err := report.XLSX{Dir: dir}.Write(report.FromMerged(m, nil))
	require.NoError(t, err)
	f, err := excelize.OpenFile(paths[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Shards")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	md := string(report.RenderMarkdown(report.FromMerged(m, nil)))
	require.Contains(t, md, "## Shards")
}

func TestWriterWithoutDir(t *testing.T) {
	_, err := report.WriteAll(report.Report{}, report.XLSX{}, report.TSV{})
	require.ErrorIs(t, err, report.ErrNoDir)
}

func TestBudgetStoppedExhaustiveReportIncomplete(t *testing.T) {
	res, err := search.Run(context.Background(),
		search.Config{N: 12, Family: matrix.Toeplitz, TimeBudget: time.Nanosecond})
	require.NoError(t, err)
	require.Equal(t, search.Budget, res.Stop)

	r := report.FromResult(res, nil)
	require.False(t, r.Complete)
	md := string(report.RenderMarkdown(r))
	require.Contains(t, md, "| Stop | budget |")
	require.Contains(t, md, "| Complete | false |")

	// a budget is the normal end of a random run
	r = report.FromResult(search.Result{Strategy: search.Random, Stop: search.Budget}, nil)
	require.True(t, r.Complete)
}
