// Package store keeps a SQLite history of search runs.
//
// Permanents are stored as decimal TEXT; comparisons between runs are done on
// math/big values after loading, never in SQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/report"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

// ErrNotFound is returned when no run matches.
var ErrNotFound = errors.New("store: not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	family         TEXT NOT NULL,
	n              INTEGER NOT NULL,
	strategy       TEXT NOT NULL,
	stop_reason    TEXT NOT NULL,
	complete       INTEGER NOT NULL,
	found          INTEGER NOT NULL,
	best_permanent TEXT,
	best_set       TEXT,
	conjecture     TEXT,
	examined       INTEGER NOT NULL,
	skipped        INTEGER NOT NULL,
	positive       INTEGER NOT NULL,
	zero           INTEGER NOT NULL,
	negative       INTEGER NOT NULL,
	shards         INTEGER NOT NULL,
	started_at     TEXT NOT NULL,
	elapsed_ms     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_family_n ON runs (family, n);

CREATE TABLE IF NOT EXISTS improvements (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	shard      INTEGER NOT NULL,
	step       INTEGER NOT NULL,
	permanent  TEXT NOT NULL,
	index_set  TEXT NOT NULL,
	ratio      REAL NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`

// Run is one row of the history.
type Run struct {
	RunID         string
	Family        matrix.Family
	N             int
	Strategy      string
	Stop          string
	Complete      bool
	Found         bool
	BestPermanent *big.Int
	BestSet       string
	Conjecture    *big.Int
	Examined      uint64
	Skipped       uint64
	Positive      uint64
	Zero          uint64
	Negative      uint64
	Shards        int
	Started       time.Time
	Elapsed       time.Duration
}

// Store manages run history in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", schema} {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: migrate: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func bigText(v *big.Int) any {
	if v == nil {
		return nil
	}
	return v.String()
}

// SaveReport inserts (or replaces) the run and its improvement trace in one
// transaction.
func (s *Store) SaveReport(ctx context.Context, r report.Report) error {
	res := r.Result
	set := ""
	if res.Found {
		set = res.BestSet.String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM improvements WHERE run_id = ?`, res.RunID); err != nil {
		return fmt.Errorf("store: clear improvements: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, family, n, strategy, stop_reason, complete, found, best_permanent,
		 best_set, conjecture, examined, skipped, positive, zero, negative, shards, started_at, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Family.String(), res.N, res.Strategy.String(), res.Stop.String(), r.Complete, res.Found,
		bigText(res.BestPermanent), set, bigText(res.Conjecture), int64(res.Examined), int64(res.Skipped),
		int64(res.Positive), int64(res.Zero), int64(res.Negative), max(len(r.Shards), 1),
		res.Started.UTC().Format(time.RFC3339Nano), res.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO improvements (run_id, shard, step, permanent, index_set, ratio, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare: %w", err)
	}
	defer stmt.Close()
	for _, e := range r.Improvements {
		if _, err = stmt.ExecContext(ctx, res.RunID, e.Shard, int64(e.Step), e.Permanent.String(), e.Set.String(),
			e.Ratio, e.At.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("store: insert improvement: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	return nil
}

// SaveResult stores a bare result without an improvement trace.
func (s *Store) SaveResult(ctx context.Context, res search.Result) error {
	return s.SaveReport(ctx, report.FromResult(res, nil))
}

// Filter narrows ListRuns. Zero fields match everything.
type Filter struct {
	Family *matrix.Family
	N      int
	Limit  int
}

const runColumns = `run_id, family, n, strategy, stop_reason, complete, found, best_permanent, best_set, conjecture,
	examined, skipped, positive, zero, negative, shards, started_at, elapsed_ms`

// ListRuns returns matching runs, newest first.
func (s *Store) ListRuns(ctx context.Context, f Filter) ([]Run, error) {
	var (
		q    = `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
		args []any
	)
	if f.Family != nil {
		q += ` AND family = ?`
		args = append(args, f.Family.String())
	}
	if f.N > 0 {
		q += ` AND n = ?`
		args = append(args, f.N)
	}
	q += ` ORDER BY started_at DESC, run_id`
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// Get loads one run by id.
func (s *Store) Get(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("store: run %s: %w", runID, ErrNotFound)
	}

	return r, err
}

// BestKnown returns the run holding the smallest positive permanent recorded
// for (n, family); ties go to the earliest run.
func (s *Store) BestKnown(ctx context.Context, n int, fam matrix.Family) (Run, error) {
	runs, err := s.ListRuns(ctx, Filter{Family: &fam, N: n})
	if err != nil {
		return Run{}, err
	}
	var (
		best  Run
		found bool
	)
	for _, r := range runs {
		if !r.Found || r.BestPermanent == nil {
			continue
		}
		c := 0
		if found {
			c = r.BestPermanent.Cmp(best.BestPermanent)
		}
		if !found || c < 0 || (c == 0 && r.Started.Before(best.Started)) {
			best, found = r, true
		}
	}
	if !found {
		return Run{}, fmt.Errorf("store: best for %s n=%d: %w", fam, n, ErrNotFound)
	}

	return best, nil
}

// Improvement is one stored improvement event.
type Improvement struct {
	Shard     int
	Step      uint64
	Permanent *big.Int
	Set       string
	Ratio     float64
	At        time.Time
}

// Improvements returns the trace of runID in insertion order.
func (s *Store) Improvements(ctx context.Context, runID string) ([]Improvement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT shard, step, permanent, index_set, ratio, created_at FROM improvements WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: improvements: %w", err)
	}
	defer rows.Close()

	var out []Improvement
	for rows.Next() {
		var (
			imp       Improvement
			step      int64
			perm, ats string
		)
		if err = rows.Scan(&imp.Shard, &step, &perm, &imp.Set, &imp.Ratio, &ats); err != nil {
			return nil, fmt.Errorf("store: scan improvement: %w", err)
		}
		imp.Step = uint64(step)
		imp.Permanent, _ = new(big.Int).SetString(perm, 10)
		imp.At, _ = time.Parse(time.RFC3339Nano, ats)
		out = append(out, imp)
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                                     Run
		family, started                       string
		best, conj                            sql.NullString
		examined, skipped, pos, zero, neg, ms int64
	)
	err := sc.Scan(&r.RunID, &family, &r.N, &r.Strategy, &r.Stop, &r.Complete, &r.Found, &best, &r.BestSet, &conj,
		&examined, &skipped, &pos, &zero, &neg, &r.Shards, &started, &ms)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("store: scan run: %w", err)
	}
	if r.Family, err = matrix.ParseFamily(family); err != nil {
		return Run{}, fmt.Errorf("store: run %s: %w", r.RunID, err)
	}
	if best.Valid {
		r.BestPermanent, _ = new(big.Int).SetString(best.String, 10)
	}
	if conj.Valid {
		r.Conjecture, _ = new(big.Int).SetString(conj.String, 10)
	}
	r.Examined, r.Skipped = uint64(examined), uint64(skipped)
	r.Positive, r.Zero, r.Negative = uint64(pos), uint64(zero), uint64(neg)
	r.Started, _ = time.Parse(time.RFC3339Nano, started)
	r.Elapsed = time.Duration(ms) * time.Millisecond

	return r, nil
}
