package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/config"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/metrics"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/parallel"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/report"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/runlog"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/store"
)

// execute wires the ambient stack around one run.
//
// Stage 1 (Logging): stderr text handler, teed into the session log file.
// Stage 2 (Observers): improvement recorder, Prometheus collector, session log.
// Stage 3 (Search): search.Run, or parallel.Run when the config is sharded.
// Stage 4 (Persist): report writers, SQLite history, console summary.
//
// A canceled run still goes through Stage 4 with its partial result.
func execute(ctx context.Context, cfg config.Run, stdout, stderr io.Writer) error {
	sc, err := cfg.SearchConfig()
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	writers, err := cfg.Writers()
	if err != nil {
		return err
	}

	// Stage 1
	handler := slog.Handler(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	var sink *runlog.Sink
	if cfg.Output.LogFile != "" {
		// Session records are Info; the file never drops them.
		if sink, err = runlog.Open(cfg.Output.LogFile, min(level, slog.LevelInfo)); err != nil {
			return err
		}
		defer sink.Close()
		handler = runlog.Tee(handler, sink.Handler())
	}
	logger := slog.New(handler)

	// Stage 2
	var (
		runID     = uuid.NewString()
		rec       = report.NewRecorder()
		reg       = prometheus.NewRegistry()
		collector = metrics.New(reg, sc.N, sc.Family)
		sopts     = []search.Option{search.WithObserver(rec), search.WithObserver(collector)}
		shardObs  = []parallel.ShardObserver{collector}
	)
	if sink != nil {
		sopts = append(sopts, search.WithObserver(sink))
		shardObs = append(shardObs, sink)
	}
	if cfg.Output.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Output.MetricsAddr, reg); err != nil {
				logger.Error("metrics server", slog.Any("err", err))
			}
		}()
	}

	// Stage 3
	var (
		rep    report.Report
		runErr error
	)
	if cfg.Sharded() {
		plan := cfg.Plan()
		if sink != nil {
			sink.SessionStart(runID, sc, plan.Shards, plan.Workers)
		}
		popts := []parallel.Option{
			parallel.WithLogger(logger),
			parallel.WithRunID(runID),
			parallel.WithSearchOptions(sopts...),
		}
		for _, o := range shardObs {
			popts = append(popts, parallel.WithShardObserver(o))
		}
		var m parallel.Merged
		m, runErr = parallel.Run(ctx, sc, plan, popts...)
		if m.Shards == nil {
			endFailed(sink, runID, m.Result(), runErr)
			return runErr
		}
		rep = report.FromMerged(m, rec)
	} else {
		if sink != nil {
			sink.SessionStart(runID, sc, 1, 1)
		}
		for _, o := range shardObs {
			o.ShardStarted(0, sc)
		}
		var res search.Result
		res, runErr = search.Run(ctx, sc, append(sopts, search.WithLogger(logger), search.WithRunID(runID))...)
		if runErr != nil {
			for _, o := range shardObs {
				o.ShardFailed(0, runErr)
			}
			endFailed(sink, runID, res, runErr)
			return runErr
		}
		for _, o := range shardObs {
			o.ShardCompleted(res)
		}
		rep = report.FromResult(res, rec)
	}
	if sink != nil {
		sink.SessionEnded(rep.Result, rep.Complete)
	}

	// Stage 4
	paths, writeErr := report.WriteAll(rep, writers...)
	var storeErr error
	if cfg.Output.Store != "" {
		storeErr = saveHistory(context.WithoutCancel(ctx), cfg.Output.Store, rep)
	}
	printSummary(stdout, rep, paths)

	return errors.Join(runErr, writeErr, storeErr)
}

// endFailed closes the session log of a run that produced no report.
func endFailed(sink *runlog.Sink, runID string, res search.Result, err error) {
	if sink == nil {
		return
	}
	if res.RunID == "" {
		res.RunID = runID
	}
	sink.Logger().Error("run failed", slog.String("run_id", runID), slog.Any("err", err))
	sink.SessionEnded(res, false)
}

func saveHistory(ctx context.Context, path string, rep report.Report) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.SaveReport(ctx, rep)
}

func printSummary(w io.Writer, rep report.Report, paths []string) {
	res := rep.Result
	fmt.Fprintf(w, "run       %s\n", res.RunID)
	fmt.Fprintf(w, "matrix    %s n=%d (%s)\n", res.Family, res.N, res.Strategy)
	fmt.Fprintf(w, "stop      %s (complete=%t)\n", res.Stop, rep.Complete)
	fmt.Fprintf(w, "examined  %d (skipped %d, positive %d, zero %d, negative %d)\n",
		res.Examined, res.Skipped, res.Positive, res.Zero, res.Negative)
	if res.Found {
		v, _ := res.Verdict()
		fmt.Fprintf(w, "best      %s at %s\n", res.BestPermanent, res.BestSet)
		fmt.Fprintf(w, "kräuter   %s (%s)\n", res.Conjecture, v)
	} else {
		fmt.Fprintf(w, "best      none (no positive permanent)\n")
	}
	fmt.Fprintf(w, "elapsed   %s\n", search.HumanDuration(res.Elapsed))
	for _, p := range paths {
		fmt.Fprintf(w, "wrote     %s\n", p)
	}
}
