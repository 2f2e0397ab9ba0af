package main

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/config"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/parallel"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "permsearch",
		Short:         "Search ±1 matrices for the minimum positive permanent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCmd("run", "Run one search described by a config file and flags", false),
		newRunCmd("parallel", "Run a search split into concurrent shards", true),
		newPermCmd(),
		newConjectureCmd(),
		newCountCmd(),
		newEstimateCmd(),
		newHistoryCmd(),
	)

	return root
}

// runFlags holds the flag values that override the YAML document.
type runFlags struct {
	configPath string

	n            int
	family       string
	strategy     string
	method       string
	filter       string
	samples      uint64
	iterations   uint64
	timeBudget   time.Duration
	flips        int
	temperature  float64
	cooling      float64
	seed         int64
	earlyStop    bool
	distribution bool
	dedupeLimit  int
	subspace     string

	mode         string
	shards       int
	workers      int
	stopOnTarget bool

	outDir      string
	formats     []string
	store       string
	logFile     string
	logLevel    string
	metricsAddr string
}

func newRunCmd(use, short string, sharded bool) *cobra.Command {
	var rf runFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := rf.load(cmd, sharded)
			if err != nil {
				return err
			}
			return execute(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&rf.configPath, "config", "c", "", "YAML run configuration")
	f.IntVarP(&rf.n, "n", "n", 0, "matrix order")
	f.StringVarP(&rf.family, "family", "f", "", "matrix family (full, upper-triangular, toeplitz, circulant, triangular-toeplitz, triangular-hankel)")
	f.StringVarP(&rf.strategy, "strategy", "s", "", "exhaustive, random or anneal")
	f.StringVar(&rf.method, "method", "", "permanent algorithm: ryser or naive")
	f.StringVar(&rf.filter, "filter", "", `+1-ratio filter: "hi" (<= hi) or "lo-hi" (open interval)`)
	f.Uint64Var(&rf.samples, "samples", 0, "random draws to evaluate")
	f.Uint64Var(&rf.iterations, "iterations", 0, "annealing steps")
	f.DurationVar(&rf.timeBudget, "time-budget", 0, "wall-clock limit (e.g. 10m)")
	f.IntVar(&rf.flips, "flips", 0, "indices toggled per annealing move")
	f.Float64Var(&rf.temperature, "temperature", 0, "initial annealing temperature (0 = greedy)")
	f.Float64Var(&rf.cooling, "cooling", 0, "geometric cooling factor in (0,1]")
	f.Int64Var(&rf.seed, "seed", 0, "random seed (0 = fixed default)")
	f.BoolVar(&rf.earlyStop, "early-stop", true, "stop once the Kräuter value is reached")
	f.BoolVar(&rf.distribution, "distribution", false, "collect the histogram of permanent values")
	f.IntVar(&rf.dedupeLimit, "dedupe-limit", 0, "random search: skip repeated sets, remembering up to this many (0 = independent draws)")
	f.StringVar(&rf.subspace, "subspace", "", "exhaustive toeplitz subspace: sparse, symmetric or continuous")

	f.StringVar(&rf.mode, "mode", "", "partition mode: rank, ratio or replicate")
	f.IntVar(&rf.shards, "shards", 0, "number of shards")
	f.IntVarP(&rf.workers, "workers", "w", 0, "concurrent shards")
	f.BoolVar(&rf.stopOnTarget, "stop-on-target", false, "cancel sibling shards once one reaches the Kräuter value")

	f.StringVarP(&rf.outDir, "out", "o", "", "result directory")
	f.StringSliceVar(&rf.formats, "format", nil, "report formats: xlsx, tsv, md")
	f.StringVar(&rf.store, "store", "", "SQLite run history database")
	f.StringVar(&rf.logFile, "log-file", "", "session log file")
	f.StringVar(&rf.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&rf.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

// load reads the config file (or Default) and applies every flag the user set.
// The parallel command defaults to one shard per CPU.
func (rf *runFlags) load(cmd *cobra.Command, sharded bool) (config.Run, error) {
	cfg := config.Default()
	if rf.configPath != "" {
		var err error
		if cfg, err = config.Load(rf.configPath); err != nil {
			return config.Run{}, err
		}
	}
	if sharded && !cfg.Sharded() {
		cfg.Parallel.Workers = runtime.NumCPU()
		cfg.Parallel.Shards = cfg.Parallel.Workers
	}

	set := cmd.Flags().Changed
	s, p, o := &cfg.Search, &cfg.Parallel, &cfg.Output
	var err error
	if set("n") {
		s.N = rf.n
	}
	if set("family") {
		if s.Family, err = matrix.ParseFamily(rf.family); err != nil {
			return config.Run{}, err
		}
	}
	if set("strategy") {
		if s.Strategy, err = search.ParseStrategy(rf.strategy); err != nil {
			return config.Run{}, err
		}
	}
	if set("method") {
		if s.Method, err = permanent.ParseMethod(rf.method); err != nil {
			return config.Run{}, err
		}
	}
	if set("filter") {
		s.Filter = rf.filter
	}
	if set("samples") {
		s.Samples = rf.samples
	}
	if set("iterations") {
		s.Iterations = rf.iterations
	}
	if set("time-budget") {
		s.TimeBudget = rf.timeBudget
	}
	if set("flips") {
		s.Flips = rf.flips
	}
	if set("temperature") {
		s.Temperature = rf.temperature
	}
	if set("cooling") {
		s.Cooling = rf.cooling
	}
	if set("seed") {
		s.Seed = rf.seed
	}
	if set("early-stop") {
		s.EarlyStop = rf.earlyStop
	}
	if set("distribution") {
		s.Distribution = rf.distribution
	}
	if set("dedupe-limit") {
		s.DedupeLimit = rf.dedupeLimit
	}
	if set("subspace") {
		if s.Subspace, err = indexset.ParseSubspace(rf.subspace); err != nil {
			return config.Run{}, err
		}
	}
	if set("mode") {
		if p.Mode, err = parallel.ParseMode(rf.mode); err != nil {
			return config.Run{}, err
		}
	}
	if set("shards") {
		p.Shards = rf.shards
	}
	if set("workers") {
		p.Workers = rf.workers
	}
	if set("stop-on-target") {
		p.StopOnTarget = rf.stopOnTarget
	}
	if set("out") {
		o.Dir = rf.outDir
	}
	if set("format") {
		o.Formats = rf.formats
	}
	if set("store") {
		o.Store = rf.store
	}
	if set("log-file") {
		o.LogFile = rf.logFile
	}
	if set("log-level") {
		o.LogLevel = rf.logLevel
	}
	if set("metrics-addr") {
		o.MetricsAddr = rf.metricsAddr
	}

	if err = cfg.Validate(); err != nil {
		return config.Run{}, err
	}

	return cfg, nil
}
