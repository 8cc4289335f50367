package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/rstracer/rstracer/internal/config"
	"github.com/rstracer/rstracer/internal/rlog"
	"github.com/rstracer/rstracer/internal/sqlqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrdersTasksAndOffsetsGold(t *testing.T) {
	cfg := config.Default()
	e := New(cfg, rlog.New(rlog.Options{}))
	require.Len(t, e.tasks, 5)
	names := make([]string, len(e.tasks))
	for i, task := range e.tasks {
		names[i] = task.name
	}
	assert.Equal(t, []string{"silver", "gold", "vacuum", "file", "export"}, names)
	assert.True(t, e.tasks[1].lastRun.After(e.tasks[0].lastRun))
}

func TestRunEnqueuesVacuumOnDueTick(t *testing.T) {
	cfg := config.Default()
	cfg.Schedule = config.Schedule{Silver: 0, Gold: 0, Vacuum: 0, File: 0, Export: 0}
	e := New(cfg, rlog.New(rlog.Options{}))
	for _, task := range e.tasks {
		task.lastRun = time.Now().Add(-time.Hour)
	}
	// Only exercise the vacuum task, which needs no live /etc or pcap state.
	e.tasks = []*task{e.tasks[2]}
	e.tasks[0].interval = time.Millisecond

	queue := sqlqueue.New(4)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, queue) }()

	batch, err := queue.RecvBatch(context.Background(), make([]string, 0, 1), 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Contains(t, batch[0], "DELETE FROM bronze_process_list")

	cancel()
	<-done
}
