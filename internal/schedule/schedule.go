// Package schedule runs the periodic correlation tasks (silver, gold,
// vacuum, dimension/file refresh, export) on independent intervals over a
// single cooperative 10ms tick, ported from
// original_source/rstracer/src/pipeline/mod.rs's
// execute_schedule_request_task. The original keys tasks in a
// HashMap<(name,sql,interval),last_run> and recomputes nothing between
// runs except silver's timezone offset; here each task carries a Render
// closure instead of a frozen SQL string, so dimension/file/export (whose
// SQL depends on live /etc snapshots or config) stay correct across ticks
// without re-registering.
package schedule

import (
	"context"
	"time"

	"github.com/rstracer/rstracer/internal/adapter/static"
	"github.com/rstracer/rstracer/internal/config"
	"github.com/rstracer/rstracer/internal/correlate"
	"github.com/rstracer/rstracer/internal/metrics"
	"github.com/rstracer/rstracer/internal/rlog"
	"github.com/rstracer/rstracer/internal/sqlqueue"
)

const tick = 10 * time.Millisecond

// task is one named, independently-paced correlation job.
type task struct {
	name     string
	interval time.Duration
	render   func() (string, error)
	lastRun  time.Time
}

// Engine drives every task's render-then-enqueue cycle off one ticker.
type Engine struct {
	tasks []*task
	log   rlog.Logger
}

// New builds the engine's task list from cfg, grounded on
// get_schedule_request_task: only file starts due immediately; silver,
// vacuum and export first run one interval after start, and gold's last
// run is set one second ahead so it always fires after silver, whose
// output its SELECT reads.
func New(cfg config.Config, log rlog.Logger) *Engine {
	now := time.Now()
	return &Engine{
		log: log,
		tasks: []*task{
			{
				name:     "silver",
				interval: time.Duration(cfg.Schedule.Silver) * time.Second,
				render:   renderSilver,
				lastRun:  now,
			},
			{
				name:     "gold",
				interval: time.Duration(cfg.Schedule.Gold) * time.Second,
				render:   renderGold,
				lastRun:  now.Add(time.Second),
			},
			{
				name:     "vacuum",
				interval: time.Duration(cfg.Schedule.Vacuum) * time.Second,
				render:   renderVacuum(cfg.Vacuum),
				lastRun:  now,
			},
			{
				name:     "file",
				interval: time.Duration(cfg.Schedule.File) * time.Second,
				render:   renderFile,
				lastRun:  time.Time{},
			},
			{
				name:     "export",
				interval: time.Duration(cfg.Schedule.Export) * time.Second,
				render:   renderExport(cfg.Export),
				lastRun:  now,
			},
		},
	}
}

func renderSilver() (string, error) {
	_, offset := time.Now().Zone()
	return correlate.SilverRequest(offset), nil
}

func renderGold() (string, error) {
	return correlate.GoldRequest(), nil
}

func renderVacuum(cfg config.Vacuum) func() (string, error) {
	return func() (string, error) {
		return correlate.VacuumRequest(cfg), nil
	}
}

func renderFile() (string, error) {
	services, err := static.ReadServices("")
	if err != nil {
		return "", err
	}
	hosts, err := static.ReadHosts("")
	if err != nil {
		return "", err
	}
	users, err := static.ReadUsers("")
	if err != nil {
		return "", err
	}
	return correlate.FileRequest(services, hosts, users) + correlate.DimensionRequest(services, hosts), nil
}

func renderExport(cfg config.Export) func() (string, error) {
	return func() (string, error) {
		return correlate.ExportRequest(cfg.Directory, cfg.Format), nil
	}
}

// Run ticks every 10ms until ctx is cancelled, rendering and enqueueing
// whichever tasks have crossed their interval. A render or enqueue error
// for one task is logged and skipped; it does not stop the engine, mirroring
// the original's per-task independence (one task's SQL error never blocked
// another's schedule).
func (e *Engine) Run(ctx context.Context, queue *sqlqueue.Queue) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			for _, t := range e.tasks {
				if t.interval <= 0 {
					continue
				}
				if now.Before(t.lastRun.Add(t.interval)) {
					continue
				}
				start := time.Now()
				sql, err := t.render()
				if err != nil {
					e.log.Warn().Err(err).Str("task", t.name).Msg("schedule render failed")
					continue
				}
				if sql == "" {
					t.lastRun = now
					continue
				}
				if err := queue.Send(ctx, sql); err != nil {
					e.log.Warn().Err(err).Str("task", t.name).Msg("schedule enqueue failed")
					continue
				}
				t.lastRun = now
				metrics.ScheduleTaskRuns.WithLabelValues(t.name).Inc()
				e.log.Info().Str("task", t.name).Dur("duration", time.Since(start)).Msg("schedule task executed")
			}
		}
	}
}
