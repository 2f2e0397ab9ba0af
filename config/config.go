// Package config loads run configurations from YAML.
//
// A Run document groups the search parameters, the parallel plan and the
// output settings. Load starts from Default, so a file only needs the keys it
// changes; command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/parallel"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/report"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Run is the top-level document.
type Run struct {
	Search   Search   `yaml:"search"`
	Parallel Parallel `yaml:"parallel"`
	Output   Output   `yaml:"output"`
}

// Search mirrors search.Config in YAML-friendly types.
type Search struct {
	N        int              `yaml:"n"`
	Family   matrix.Family    `yaml:"family"`
	Strategy search.Strategy  `yaml:"strategy"`
	Method   permanent.Method `yaml:"method"`

	// Filter is a ratio range: "0.5" (≤ 0.5) or "0.4-0.6" (open interval).
	Filter string `yaml:"filter,omitempty"`

	Samples    uint64        `yaml:"samples,omitempty"`
	Iterations uint64        `yaml:"iterations,omitempty"`
	TimeBudget time.Duration `yaml:"time_budget,omitempty"`

	Flips       int     `yaml:"flips,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	Cooling     float64 `yaml:"cooling,omitempty"`
	InitialSet  []int   `yaml:"initial_set,omitempty"`

	Seed         int64 `yaml:"seed"`
	EarlyStop    bool  `yaml:"early_stop"`
	Distribution bool  `yaml:"distribution"`
	// DedupeLimit > 0 makes random draws skip already-seen sets.
	DedupeLimit int `yaml:"dedupe_limit,omitempty"`
	MaxRejects  int `yaml:"max_rejects,omitempty"`

	// Subspace restricts an exhaustive toeplitz run: sparse, symmetric or
	// continuous.
	Subspace indexset.Subspace `yaml:"subspace,omitempty"`
}

// Parallel mirrors parallel.Plan. Shards ≤ 1 and Workers ≤ 1 mean a
// single-shard run.
type Parallel struct {
	Mode         parallel.Mode `yaml:"mode"`
	Shards       int           `yaml:"shards"`
	Workers      int           `yaml:"workers"`
	StopOnTarget bool          `yaml:"stop_on_target"`
	FailFast     bool          `yaml:"fail_fast"`
}

// Output selects where results, logs and metrics go.
type Output struct {
	Dir         string   `yaml:"dir"`
	Formats     []string `yaml:"formats"`
	Store       string   `yaml:"store,omitempty"`
	LogFile     string   `yaml:"log_file,omitempty"`
	LogLevel    string   `yaml:"log_level"`
	MetricsAddr string   `yaml:"metrics_addr,omitempty"`
}

// Formats understood by Writers.
const (
	FormatXLSX     = "xlsx"
	FormatTSV      = "tsv"
	FormatMarkdown = "md"
)

// Default returns the configuration used when no file is given.
func Default() Run {
	return Run{
		Search: Search{
			N:         4,
			Family:    matrix.TriangularToeplitz,
			Strategy:  search.Exhaustive,
			Method:    permanent.Ryser,
			EarlyStop: true,
		},
		Parallel: Parallel{Mode: parallel.ByRank, Shards: 1, Workers: 1},
		Output: Output{
			Dir:      "result",
			Formats:  []string{FormatXLSX, FormatTSV, FormatMarkdown},
			LogFile:  "logs/execution_log.txt",
			LogLevel: "info",
		},
	}
}

// Load reads path over Default and validates the result. Unknown keys are errors.
func Load(path string) (Run, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("config: %w", err)
	}

	return Parse(b)
}

// Parse decodes a YAML document over Default and validates it.
func Parse(b []byte) (Run, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Run{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Run{}, err
	}

	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (r Run) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return buf.Bytes(), nil
}

// Validate checks every section.
func (r Run) Validate() error {
	sc, err := r.SearchConfig()
	if err != nil {
		return err
	}
	if err = sc.Validate(); err != nil {
		return fmt.Errorf("%w: search: %w", ErrInvalid, err)
	}
	if r.Parallel.Shards < 0 || r.Parallel.Workers < 0 {
		return fmt.Errorf("%w: parallel: negative shards or workers", ErrInvalid)
	}
	if r.Sharded() {
		if _, err = parallel.ShardConfigs(sc, r.Plan()); err != nil {
			return fmt.Errorf("%w: parallel: %w", ErrInvalid, err)
		}
	}
	if _, err = r.Writers(); err != nil {
		return err
	}
	if _, err = r.Level(); err != nil {
		return err
	}

	return nil
}

// SearchConfig converts the search section.
func (r Run) SearchConfig() (search.Config, error) {
	s := r.Search
	c := search.Config{
		N:            s.N,
		Family:       s.Family,
		Strategy:     s.Strategy,
		Method:       s.Method,
		Samples:      s.Samples,
		Iterations:   s.Iterations,
		TimeBudget:   s.TimeBudget,
		Flips:        s.Flips,
		Temperature:  s.Temperature,
		Cooling:      s.Cooling,
		Seed:         s.Seed,
		EarlyStop:    s.EarlyStop,
		Distribution: s.Distribution,
		DedupeLimit:  s.DedupeLimit,
		MaxRejects:   s.MaxRejects,
		Subspace:     s.Subspace,
	}
	if s.Filter != "" {
		rg, err := indexset.ParseRange(s.Filter)
		if err != nil {
			return search.Config{}, fmt.Errorf("%w: search.filter: %w", ErrInvalid, err)
		}
		c.Filter = &rg
	}
	if s.InitialSet != nil {
		c.InitialSet = matrix.NewIndexSet(s.InitialSet...)
	}

	return c, nil
}

// Sharded reports whether the run goes through the parallel partitioner.
func (r Run) Sharded() bool { return r.Parallel.Shards > 1 || r.Parallel.Workers > 1 }

// Plan converts the parallel section.
func (r Run) Plan() parallel.Plan {
	p := r.Parallel

	return parallel.Plan{
		Mode:         p.Mode,
		Shards:       p.Shards,
		Workers:      p.Workers,
		StopOnTarget: p.StopOnTarget,
		FailFast:     p.FailFast,
	}
}

// Writers returns one report writer per configured format.
func (r Run) Writers() ([]report.Writer, error) {
	ws := make([]report.Writer, 0, len(r.Output.Formats))
	for _, f := range r.Output.Formats {
		switch strings.ToLower(f) {
		case FormatXLSX:
			ws = append(ws, report.XLSX{Dir: r.Output.Dir})
		case FormatTSV:
			ws = append(ws, report.TSV{Dir: r.Output.Dir})
		case FormatMarkdown, "markdown":
			ws = append(ws, report.Markdown{Dir: r.Output.Dir})
		default:
			return nil, fmt.Errorf("%w: output.formats: unknown format %q", ErrInvalid, f)
		}
	}
	if len(ws) > 0 && r.Output.Dir == "" {
		return nil, fmt.Errorf("%w: output.dir required for formats %v", ErrInvalid, r.Output.Formats)
	}

	return ws, nil
}

// Level parses output.log_level.
func (r Run) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(r.Output.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: output.log_level: %w", ErrInvalid, err)
	}

	return l, nil
}
