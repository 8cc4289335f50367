// Command launch-core runs the executor, the schedule engine and the process
// and open-file samplers (no packet capture, no static files) for a fixed
// duration against a scratch in-memory database, the Go equivalent
// of original_source/rstracer/examples/launch_core.rs — useful for
// smoke-testing the pipeline without touching a real host database file.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rstracer/rstracer/internal/adapter/openfiles"
	"github.com/rstracer/rstracer/internal/adapter/process"
	"github.com/rstracer/rstracer/internal/config"
	"github.com/rstracer/rstracer/internal/encode"
	"github.com/rstracer/rstracer/internal/executor"
	"github.com/rstracer/rstracer/internal/persist"
	"github.com/rstracer/rstracer/internal/rlog"
	"github.com/rstracer/rstracer/internal/schedule"
	"github.com/rstracer/rstracer/internal/sqlqueue"
)

const defaultDuration = 30 * time.Second

func main() {
	duration := defaultDuration
	if len(os.Args) > 1 {
		if d, err := time.ParseDuration(os.Args[1]); err == nil {
			duration = d
		}
	}

	log := rlog.New(rlog.Options{Level: "INFO"})
	cfg := config.Default()
	cfg.InMemory = true
	cfg.Schedule.Silver, cfg.Schedule.Gold, cfg.Schedule.Vacuum = 1, 1, 5

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	exec, err := executor.Open(":memory:")
	if err != nil {
		fmt.Fprintf(os.Stderr, "launch-core: open database: %v\n", err)
		os.Exit(1)
	}
	exec = exec.WithLogger(log)
	defer exec.Close()

	if _, err := persist.Open(ctx, exec.DB(), "", log); err != nil {
		fmt.Fprintf(os.Stderr, "launch-core: create schema: %v\n", err)
		os.Exit(1)
	}

	queue := sqlqueue.New(cfg.Request.ChannelSize)
	defer queue.Close()

	eng := schedule.New(cfg, log)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return exec.Run(gctx, queue, cfg.Request.ConsumerBatchSize) })
	group.Go(func() error { return eng.Run(gctx, queue) })
	group.Go(func() error { return sampleProcesses(gctx, queue) })
	group.Go(func() error { return sampleOpenFiles(gctx, queue) })

	if err := group.Wait(); err != nil && err != context.DeadlineExceeded {
		fmt.Fprintf(os.Stderr, "launch-core: %v\n", err)
		os.Exit(1)
	}

	var tableCount int
	if err := exec.DB().QueryRowContext(context.Background(),
		"SELECT COUNT(DISTINCT table_name) FROM memory.information_schema.tables;",
	).Scan(&tableCount); err == nil {
		fmt.Printf("launch-core: ran for %s, %d tables present\n", duration, tableCount)
	}
}

func sampleProcesses(ctx context.Context, queue *sqlqueue.Queue) error {
	adapter := process.New()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rows, err := adapter.Collect(ctx)
			if err != nil || len(rows) == 0 {
				continue
			}
			if err := queue.Send(ctx, encode.Processes(rows)); err != nil {
				return nil
			}
		}
	}
}

func sampleOpenFiles(ctx context.Context, queue *sqlqueue.Queue) error {
	adapter := openfiles.New()
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rows, err := adapter.Collect(ctx)
			if err != nil || len(rows) == 0 {
				continue
			}
			if err := queue.Send(ctx, encode.OpenFiles(rows)); err != nil {
				return nil
			}
		}
	}
}
