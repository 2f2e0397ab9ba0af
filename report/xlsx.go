package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

// XLSX writes one workbook per run with Summary, Shards, Improvements and
// Distribution sheets. Permanents are stored as decimal strings so values
// beyond float64 precision survive.
type XLSX struct {
	Dir string
}

func (x XLSX) Write(r Report) ([]string, error) {
	path, err := outputPath(x.Dir, r.Result, ".xlsx")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	if err = f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	if err = writeRows(f, summary, summaryRows(r)); err != nil {
		return nil, err
	}

	if len(r.Shards) > 0 {
		rows := [][]any{{"Shard", "Stop", "Examined", "Skipped", "Positive", "Zero", "Negative", "Best", "Set", "Seconds"}}
		for _, s := range r.Shards {
			best, set := "", ""
			if s.Found {
				best, set = s.BestPermanent.String(), s.BestSet.String()
			}
			rows = append(rows, []any{s.Shard, s.Stop.String(), s.Examined, s.Skipped, s.Positive, s.Zero, s.Negative,
				best, set, s.Elapsed.Seconds()})
		}
		if err = writeSheet(f, "Shards", rows); err != nil {
			return nil, err
		}
	}

	rows := [][]any{{"No", "Shard", "Step", "Rank", "Permanent", "Set", "Ratio", "Time"}}
	for i, e := range r.Improvements {
		rows = append(rows, []any{i + 1, e.Shard, e.Step, e.Rank, e.Permanent.String(), e.Set.String(), e.Ratio,
			e.At.Format("2006-01-02 15:04:05")})
	}
	if err = writeSheet(f, "Improvements", rows); err != nil {
		return nil, err
	}

	if dist := r.Result.SortedDistribution(); len(dist) > 0 {
		rows = [][]any{{"Permanent", "Count", "Frequency"}}
		for _, vc := range dist {
			rows = append(rows, []any{vc.Value.String(), vc.Count, float64(vc.Count) / float64(r.Result.Examined)})
		}
		if err = writeSheet(f, "Distribution", rows); err != nil {
			return nil, err
		}
	}

	if err = f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	return []string{path}, nil
}

// summaryRows is the key/value table shared by the XLSX and Markdown writers.
func summaryRows(r Report) [][]any {
	res := r.Result
	best, set, verdict := "none", "", "no positive permanent"
	if res.Found {
		best, set = res.BestPermanent.String(), res.BestSet.String()
		if v, ok := res.Verdict(); ok {
			verdict = v.String()
		}
	}
	conj := ""
	if res.Conjecture != nil {
		conj = res.Conjecture.String()
	}

	return [][]any{
		{"Key", "Value"},
		{"Run ID", res.RunID},
		{"Family", res.Family.String()},
		{"Symbol", string(res.Family.Symbol())},
		{"n", res.N},
		{"Strategy", res.Strategy.String()},
		{"Stop", res.Stop.String()},
		{"Complete", r.Complete},
		{"Best permanent", best},
		{"Best set", set},
		{"Kräuter value", conj},
		{"Verdict", verdict},
		{"Examined", res.Examined},
		{"Skipped", res.Skipped},
		{"Duplicates", res.Duplicates},
		{"Positive", res.Positive},
		{"Zero", res.Zero},
		{"Negative", res.Negative},
		{"Negative target hits", res.NegativeTargetHits},
		{"Subspace", res.Subspace.String()},
		{"Improvements", res.Improvements},
		{"Started", res.Started.Format("2006-01-02 15:04:05")},
		{"Elapsed", search.HumanDuration(res.Elapsed)},
	}
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}

	return nil
}
