// Package metrics exposes rstracer's optional Prometheus surface,
// grounded on gravwell/gravwell/v3/ingesters/utils's metric registration
// pattern (package-level vars registered once via promauto, served off a
// plain net/http mux) and cuemby/warren's habit of keeping metrics
// alongside the component that produces them rather than centralizing
// collection.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueDepth tracks how many pending SQL statements sit in the bounded
	// request channel, the backpressure signal spec.md §5 names.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rstracer",
		Subsystem: "sqlqueue",
		Name:      "depth",
		Help:      "Number of SQL statements currently queued for the executor.",
	})

	// BatchDuration tracks how long one executor batch took to run.
	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rstracer",
		Subsystem: "executor",
		Name:      "batch_duration_seconds",
		Help:      "Time spent executing one batched SQL statement group.",
		Buckets:   prometheus.DefBuckets,
	})

	// VacuumRowsDeleted is registered for rows removed by the retention
	// sweep, labeled by table; nothing increments it, so it stays at zero.
	VacuumRowsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rstracer",
		Subsystem: "vacuum",
		Name:      "rows_deleted_total",
		Help:      "Rows deleted from a table by the vacuum task, cumulative.",
	}, []string{"table"})

	// ScheduleTaskRuns counts how many times each scheduled task has fired,
	// labeled by task name.
	ScheduleTaskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rstracer",
		Subsystem: "schedule",
		Name:      "task_runs_total",
		Help:      "Number of times a scheduled correlation task has executed.",
	}, []string{"task"})
)

// Serve starts a blocking HTTP server exposing /metrics on addr. It returns
// when ctx is cancelled or the server fails to start.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return server.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
