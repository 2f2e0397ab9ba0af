package report

import (
	"bytes"
	"fmt"
	"os"
)

// Markdown writes a human-readable summary (<base>.md).
type Markdown struct {
	Dir string
}

func (m Markdown) Write(r Report) ([]string, error) {
	path, err := outputPath(m.Dir, r.Result, ".md")
	if err != nil {
		return nil, err
	}
	if err = os.WriteFile(path, RenderMarkdown(r), 0o644); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	return []string{path}, nil
}

// RenderMarkdown formats the summary table, the shard table and the value
// histogram.
func RenderMarkdown(r Report) []byte {
	var b bytes.Buffer
	res := r.Result
	fmt.Fprintf(&b, "# %s n=%d (%s)\n\n", res.Family, res.N, res.Strategy)

	rows := summaryRows(r)
	fmt.Fprintf(&b, "| %v | %v |\n|---|---|\n", rows[0][0], rows[0][1])
	for _, row := range rows[1:] {
		fmt.Fprintf(&b, "| %v | %v |\n", row[0], row[1])
	}

	if len(r.Shards) > 0 {
		b.WriteString("\n## Shards\n\n| shard | stop | examined | skipped | best | set |\n|---|---|---|---|---|---|\n")
		for _, s := range r.Shards {
			best, set := "-", "-"
			if s.Found {
				best, set = s.BestPermanent.String(), s.BestSet.String()
			}
			fmt.Fprintf(&b, "| %d | %s | %d | %d | %s | %s |\n", s.Shard, s.Stop, s.Examined, s.Skipped, best, set)
		}
	}

	if dist := res.SortedDistribution(); len(dist) > 0 {
		b.WriteString("\n## Distribution\n\n| permanent | count | frequency |\n|---|---|---|\n")
		for _, vc := range dist {
			fmt.Fprintf(&b, "| %s | %d | %.6f |\n", vc.Value, vc.Count, float64(vc.Count)/float64(res.Examined))
		}
	}

	return b.Bytes()
}
