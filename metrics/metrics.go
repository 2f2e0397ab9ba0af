// Package metrics exports search progress as Prometheus metrics.
//
// A Collector is a search.Observer and a parallel.ShardObserver; the CLI
// registers it on a registry and serves the registry on /metrics while a long
// run is in progress.
package metrics

import (
	"context"
	"errors"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/parallel"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
)

const namespace = "permsearch"

// Collector holds the metrics of one run. Safe for concurrent use.
type Collector struct {
	Evaluations   *prometheus.CounterVec // label: sign (positive, zero, negative)
	Skipped       prometheus.Counter
	Improvements  prometheus.Counter
	NegTargets    prometheus.Counter // shards that hit −Kräuter
	BestPermanent prometheus.Gauge
	ShardsRunning prometheus.Gauge
	ShardFailures prometheus.Counter
	ShardDuration prometheus.Histogram
	Ratio         prometheus.Histogram

	mu      sync.Mutex
	best    *big.Int
	skipped map[int]uint64 // last reported skip count per shard
}

// compile-time checks
var (
	_ search.Observer        = (*Collector)(nil)
	_ parallel.ShardObserver = (*Collector)(nil)
)

// New registers the collectors on reg. Every series carries the family and
// order as constant labels.
func New(reg prometheus.Registerer, n int, f matrix.Family) *Collector {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"family": f.String(), "n": strconv.Itoa(n)}

	return &Collector{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "evaluations_total",
			Help:        "Permanents computed, by sign of the value",
			ConstLabels: labels,
		}, []string{"sign"}),
		Skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "skipped_total",
			Help:        "Candidates rejected by the +1-ratio filter",
			ConstLabels: labels,
		}),
		Improvements: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "improvements_total",
			Help:        "New best values reported by any shard",
			ConstLabels: labels,
		}),
		NegTargets: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "negative_target_total",
			Help:        "Shards that saw a permanent equal to minus the Kräuter value",
			ConstLabels: labels,
		}),
		BestPermanent: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "best_permanent",
			Help:        "Smallest positive permanent seen so far (NaN until found)",
			ConstLabels: labels,
		}),
		ShardsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "shards_running",
			Help:        "Shards currently executing",
			ConstLabels: labels,
		}),
		ShardFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "shard_failures_total",
			Help:        "Shards that ended with an error",
			ConstLabels: labels,
		}),
		ShardDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "shard_duration_seconds",
			Help:        "Wall-clock time of completed shards",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 12),
		}),
		Ratio: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "evaluated_ratio",
			Help:        "+1 ratio of evaluated matrices",
			ConstLabels: labels,
			Buckets:     prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
		skipped: make(map[int]uint64),
	}
}

func signLabel(p *big.Int) string {
	switch p.Sign() {
	case 1:
		return "positive"
	case 0:
		return "zero"
	default:
		return "negative"
	}
}

// OnEvaluated counts the evaluation.
func (c *Collector) OnEvaluated(e search.Evaluation) {
	c.Evaluations.WithLabelValues(signLabel(e.Permanent)).Inc()
	c.Ratio.Observe(e.Ratio)
}

// OnImprovement lowers the best gauge when a shard beats the global best.
func (c *Collector) OnImprovement(e search.Evaluation) {
	c.Improvements.Inc()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.best == nil || e.Permanent.Cmp(c.best) < 0 {
		c.best = new(big.Int).Set(e.Permanent)
		f, _ := new(big.Float).SetInt(c.best).Float64()
		c.BestPermanent.Set(f)
	}
}

// OnNegativeTarget counts shards whose search hit −Kräuter.
func (c *Collector) OnNegativeTarget(search.Evaluation) { c.NegTargets.Inc() }

// OnProgress converts the per-shard cumulative skip count into counter increments.
func (c *Collector) OnProgress(p search.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last := c.skipped[p.Shard]; p.Skipped > last {
		c.Skipped.Add(float64(p.Skipped - last))
		c.skipped[p.Shard] = p.Skipped
	}
}

func (c *Collector) ShardStarted(shard int, _ search.Config) {
	c.ShardsRunning.Inc()
	c.mu.Lock()
	if c.best == nil {
		c.BestPermanent.Set(math.NaN())
	}
	c.mu.Unlock()
}

func (c *Collector) ShardCompleted(res search.Result) {
	c.ShardsRunning.Dec()
	c.ShardDuration.Observe(res.Elapsed.Seconds())
}

func (c *Collector) ShardFailed(int, error) {
	c.ShardsRunning.Dec()
	c.ShardFailures.Inc()
}

// Handler serves the gatherer in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
