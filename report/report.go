// Package report persists search results as files.
//
// Every writer places its output under <dir>/<family>/<n>/ with a common base
// name derived from the run, so the XLSX workbook, TSV tables and Markdown
// summary of one run sit next to each other.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/parallel"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

// ErrNoDir is returned by writers constructed without an output directory.
var ErrNoDir = errors.New("report: output directory not set")

// Report is everything a writer may persist about one run.
type Report struct {
	Result search.Result
	// Shards is empty for single-shard runs.
	Shards []search.Result
	// Improvements in the order they were observed.
	Improvements []search.Evaluation
	// Complete is false when a shard failed, the run was canceled, or an
	// exhaustive enumeration stopped before covering its space.
	Complete bool
}

// FromResult wraps a single-shard result.
func FromResult(res search.Result, rec *Recorder) Report {
	r := Report{Result: res, Complete: res.Complete()}
	if rec != nil {
		r.Improvements = rec.Improvements()
	}

	return r
}

// FromMerged wraps a parallel result.
func FromMerged(m parallel.Merged, rec *Recorder) Report {
	r := Report{Result: m.Result(), Shards: m.Shards, Complete: m.Complete}
	if rec != nil {
		r.Improvements = rec.Improvements()
	}

	return r
}

// Writer persists a report and returns the paths it wrote.
type Writer interface {
	Write(r Report) ([]string, error)
}

// WriteAll runs every writer; failures are joined, paths of successful writes
// are still returned.
func WriteAll(r Report, ws ...Writer) ([]string, error) {
	var (
		paths []string
		errs  []error
	)
	for _, w := range ws {
		p, err := w.Write(r)
		paths = append(paths, p...)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return paths, errors.Join(errs...)
}

// BaseName is the file stem shared by all outputs of a run:
// <family>_n<n>_<strategy>_<yyyymmdd-hhmmss>_<run-id prefix>.
func BaseName(res search.Result) string {
	id := res.RunID
	if len(id) > 8 {
		id = id[:8]
	}

	return fmt.Sprintf("%s_n%d_%s_%s_%s", res.Family, res.N, res.Strategy, res.Started.Format("20060102-150405"), id)
}

// outputPath creates <dir>/<family>/<n>/ and returns the file path for suffix.
func outputPath(dir string, res search.Result, suffix string) (string, error) {
	if dir == "" {
		return "", ErrNoDir
	}
	sub := filepath.Join(dir, res.Family.String(), fmt.Sprint(res.N))
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return "", fmt.Errorf("report: %w", err)
	}

	return filepath.Join(sub, BaseName(res)+suffix), nil
}

// Recorder collects improvement events for the report. Safe for concurrent use.
type Recorder struct {
	search.ObserverFuncs

	mu   sync.Mutex
	evts []search.Evaluation
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.Improvement = r.add

	return r
}

func (r *Recorder) add(e search.Evaluation) {
	r.mu.Lock()
	r.evts = append(r.evts, e)
	r.mu.Unlock()
}

// Improvements returns a copy of the recorded events.
func (r *Recorder) Improvements() []search.Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]search.Evaluation(nil), r.evts...)
}
