package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// TSV writes the improvement trace (<base>_improvements.tsv) and, when the run
// collected one, the value histogram (<base>_freq.tsv).
type TSV struct {
	Dir string
}

func (t TSV) Write(r Report) ([]string, error) {
	path, err := outputPath(t.Dir, r.Result, "_improvements.tsv")
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"shard", "step", "rank", "permanent", "set", "ratio"}}
	for _, e := range r.Improvements {
		rows = append(rows, []string{
			strconv.Itoa(e.Shard),
			strconv.FormatUint(e.Step, 10),
			strconv.FormatUint(e.Rank, 10),
			e.Permanent.String(),
			e.Set.String(),
			strconv.FormatFloat(e.Ratio, 'f', 4, 64),
		})
	}
	if err = saveTSV(path, rows); err != nil {
		return nil, err
	}
	paths := []string{path}

	dist := r.Result.SortedDistribution()
	if len(dist) == 0 {
		return paths, nil
	}
	if path, err = outputPath(t.Dir, r.Result, "_freq.tsv"); err != nil {
		return paths, err
	}
	rows = [][]string{{"permanent", "count", "frequency"}}
	for _, vc := range dist {
		rows = append(rows, []string{
			vc.Value.String(),
			strconv.FormatUint(vc.Count, 10),
			strconv.FormatFloat(float64(vc.Count)/float64(r.Result.Examined), 'f', 6, 64),
		})
	}
	if err = saveTSV(path, rows); err != nil {
		return paths, err
	}

	return append(paths, path), nil
}

func saveTSV(path string, rows [][]string) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer fp.Close()

	w := csv.NewWriter(fp)
	w.Comma = '\t'
	if err = w.WriteAll(rows); err != nil {
		return fmt.Errorf("report: %s: %w", path, err)
	}

	return fp.Close()
}
