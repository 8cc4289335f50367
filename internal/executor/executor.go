// Package executor owns the one *sql.DB rstracer writes through and drains
// internal/sqlqueue into it, replacing the teacher source's process-wide
// lazy_static Mutex<Connection> singleton with an owned resource passed down
// from cmd/rstracer (spec.md §9 design note).
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/rs/zerolog"

	"github.com/rstracer/rstracer/internal/metrics"
	"github.com/rstracer/rstracer/internal/rlog"
	"github.com/rstracer/rstracer/internal/sqlqueue"
)

// batchTimeout bounds how long a batch read waits for the first queued
// item; once one arrives, whatever is already buffered (up to
// ConsumerBatchSize) is executed without waiting further. Mirrors the
// teacher's TIMEOUT_MS constant.
const batchTimeout = time.Second

// Executor drains a sqlqueue.Queue into a DuckDB database, one batch at a
// time.
type Executor struct {
	db  *sql.DB
	log rlog.Logger
}

// Open opens a DuckDB database at path (":memory:" for an in-memory-only
// run) using the duckdb driver.
func Open(path string) (*Executor, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("executor: open %s: %w", path, err)
	}
	return &Executor{db: db, log: rlog.Logger{Logger: zerolog.Nop()}}, nil
}

// WithLogger attaches a logger used for batch-execution diagnostics.
func (e *Executor) WithLogger(log rlog.Logger) *Executor {
	e.log = log.WithComponent("executor")
	return e
}

// DB exposes the underlying connection for components (schema, schedule,
// persist) that issue SQL directly rather than through the queue.
func (e *Executor) DB() *sql.DB {
	return e.db
}

// Run drains queue until ctx is cancelled, executing each batch as one
// multi-statement Exec call. It returns nil on a clean, queue-closed exit.
func (e *Executor) Run(ctx context.Context, queue *sqlqueue.Queue, batchSize int) error {
	buf := make([]string, 0, batchSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		metrics.QueueDepth.Set(float64(queue.Len()))

		batchCtx, cancel := context.WithTimeout(ctx, batchTimeout)
		batch, err := queue.RecvBatch(batchCtx, buf, batchSize)
		cancel()
		buf = batch

		switch {
		case err == nil:
			if len(batch) == 0 {
				continue
			}
			e.execBatch(ctx, batch)
		case err == context.DeadlineExceeded:
			continue
		case err == sqlqueue.ErrReceiverClosed:
			if len(batch) > 0 {
				e.execBatch(ctx, batch)
			}
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			return err
		}
	}
}

// execBatch runs one batch and never returns an error: one bad statement
// must not stop the pipeline (spec.md §5/§8, "Executor SQL error"). A
// failing batch is logged with its length and dropped; the loop continues.
func (e *Executor) execBatch(ctx context.Context, batch []string) {
	start := time.Now()
	joined := joinSQL(batch)
	if _, err := e.db.ExecContext(ctx, joined); err != nil {
		e.log.Error().Err(err).Int("rows", len(batch)).Msg("batch execution failed")
		return
	}
	duration := time.Since(start)
	metrics.BatchDuration.Observe(duration.Seconds())
	e.log.Info().Int("rows", len(batch)).Dur("duration", duration).Msg("batch executed")
}

func joinSQL(batch []string) string {
	total := 0
	for _, s := range batch {
		total += len(s)
	}
	out := make([]byte, 0, total)
	for _, s := range batch {
		out = append(out, s...)
	}
	return string(out)
}

// Checkpoint flushes an on-disk database, mirroring the teacher's
// close_connection issuing "CHECKPOINT;" before shutdown.
func (e *Executor) Checkpoint(ctx context.Context) error {
	_, err := e.db.ExecContext(ctx, "CHECKPOINT;")
	return err
}

// Close closes the underlying database handle.
func (e *Executor) Close() error {
	return e.db.Close()
}
