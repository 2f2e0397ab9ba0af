// Package runlog is the session log shared by every shard of a search.
//
// A Sink appends one complete line per record to a single file. Records from
// concurrent shards never interleave: every line is produced by one Write under
// the sink mutex and the file is opened O_APPEND without buffering, so a
// crashed run leaves only whole lines behind.
//
// Sink implements search.Observer (improvements and progress) and
// parallel.ShardObserver (shard lifecycle); the CLI hands it to both.
package runlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/parallel"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("runlog: sink closed")

// lockedWriter serialises Writes; slog handlers emit one Write per record.
type lockedWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	return l.w.Write(p)
}

// Sink is a line-atomic session log.
type Sink struct {
	out     *lockedWriter
	closer  io.Closer
	handler slog.Handler
	log     *slog.Logger

	mu      sync.Mutex
	session string
	started time.Time
}

// compile-time checks
var (
	_ search.Observer        = (*Sink)(nil)
	_ parallel.ShardObserver = (*Sink)(nil)
)

// New returns a Sink writing text records at level or above to w.
func New(w io.Writer, level slog.Level) *Sink {
	out := &lockedWriter{w: w}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})

	return &Sink{out: out, handler: h, log: slog.New(h)}
}

// Open appends to the file at path, creating it and its directory if needed.
func Open(path string, level slog.Level) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	s := New(f, level)
	s.closer = f

	return s, nil
}

// Handler exposes the sink's slog handler so callers can tee ordinary logs into
// the session file (see Tee).
func (s *Sink) Handler() slog.Handler { return s.handler }

// Logger returns the sink's logger.
func (s *Sink) Logger() *slog.Logger { return s.log }

// SessionStart writes the session header.
func (s *Sink) SessionStart(runID string, cfg search.Config, shards, workers int) {
	s.mu.Lock()
	s.session, s.started = runID, time.Now()
	s.mu.Unlock()

	attrs := []any{
		slog.String("run_id", runID),
		slog.Int("n", cfg.N),
		slog.String("family", cfg.Family.String()),
		slog.String("strategy", cfg.Strategy.String()),
		slog.Int("shards", shards),
		slog.Int("workers", workers),
	}
	if cfg.Filter != nil {
		attrs = append(attrs, slog.String("filter", cfg.Filter.String()))
	}
	s.log.Info("SESSION START", attrs...)
}

// SessionEnded writes the session trailer for a (possibly merged) result.
func (s *Sink) SessionEnded(res search.Result, complete bool) {
	s.mu.Lock()
	elapsed := time.Since(s.started)
	s.mu.Unlock()

	attrs := []any{
		slog.String("run_id", res.RunID),
		slog.String("stop", res.Stop.String()),
		slog.Bool("complete", complete),
		slog.Bool("found", res.Found),
		slog.Uint64("examined", res.Examined),
		slog.Uint64("skipped", res.Skipped),
		slog.Duration("elapsed", elapsed),
	}
	if res.NegativeTargetHits > 0 {
		attrs = append(attrs, slog.Uint64("negative_target_hits", res.NegativeTargetHits))
	}
	if res.Found {
		attrs = append(attrs,
			slog.String("best", res.BestPermanent.String()),
			slog.String("set", res.BestSet.String()),
			slog.Bool("matches_conjecture", res.MatchesConjecture()))
	}
	s.log.Info("SESSION END", attrs...)
}

// ShardStarted logs the shard's slice of the work.
func (s *Sink) ShardStarted(shard int, cfg search.Config) {
	attrs := []any{slog.Int("shard", shard), slog.Int64("seed", cfg.Seed)}
	if cfg.Window != nil {
		attrs = append(attrs, slog.Uint64("rank_lo", cfg.Window.Lo), slog.Uint64("rank_hi", cfg.Window.Hi))
	}
	if cfg.Filter != nil {
		attrs = append(attrs, slog.String("ratio_range", cfg.Filter.String()))
	}
	s.log.Info("shard started", attrs...)
}

// ShardCompleted logs the shard statistics.
func (s *Sink) ShardCompleted(res search.Result) {
	attrs := []any{
		slog.Int("shard", res.Shard),
		slog.String("stop", res.Stop.String()),
		slog.Uint64("examined", res.Examined),
		slog.Uint64("skipped", res.Skipped),
		slog.Uint64("positive", res.Positive),
		slog.Uint64("zero", res.Zero),
		slog.Uint64("negative", res.Negative),
		slog.Duration("elapsed", res.Elapsed),
	}
	if res.Found {
		attrs = append(attrs, slog.String("best", res.BestPermanent.String()), slog.String("set", res.BestSet.String()))
	}
	s.log.Info("shard completed", attrs...)
}

// ShardFailed logs a shard error.
func (s *Sink) ShardFailed(shard int, err error) {
	s.log.Error("shard failed", slog.Int("shard", shard), slog.Any("err", err))
}

// OnEvaluated is a no-op; per-candidate lines would swamp the session file.
func (s *Sink) OnEvaluated(search.Evaluation) {}

// OnImprovement logs every new best value.
func (s *Sink) OnImprovement(e search.Evaluation) {
	s.log.Info("improvement",
		slog.Int("shard", e.Shard),
		slog.Uint64("step", e.Step),
		slog.String("permanent", e.Permanent.String()),
		slog.String("set", e.Set.String()),
		slog.Float64("ratio", e.Ratio))
}

// OnNegativeTarget warns once per shard that a permanent equals −Kräuter.
func (s *Sink) OnNegativeTarget(e search.Evaluation) {
	s.log.Warn("negative conjecture value",
		slog.Int("shard", e.Shard),
		slog.Uint64("step", e.Step),
		slog.String("permanent", e.Permanent.String()),
		slog.String("set", e.Set.String()))
}

// OnProgress logs periodic snapshots at debug level.
func (s *Sink) OnProgress(p search.Progress) {
	if !s.handler.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs := []any{
		slog.Int("shard", p.Shard),
		slog.Uint64("examined", p.Examined),
		slog.Uint64("skipped", p.Skipped),
		slog.Duration("elapsed", p.Elapsed),
	}
	if p.Best != nil {
		attrs = append(attrs, slog.String("best", p.Best.String()))
	}
	s.log.Debug("progress", attrs...)
}

// Close stops further writes and closes the underlying file, if any.
func (s *Sink) Close() error {
	s.out.mu.Lock()
	s.out.closed = true
	s.out.mu.Unlock()
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}
