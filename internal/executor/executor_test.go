package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rstracer/rstracer/internal/sqlqueue"
)

func TestExecutorRunDrainsOnClose(t *testing.T) {
	e, err := Open(":memory:")
	require.NoError(t, err)
	defer e.Close()

	_, err = e.DB().Exec("CREATE TABLE t (v INTEGER);")
	require.NoError(t, err)

	q := sqlqueue.New(10)
	ctx := context.Background()
	require.NoError(t, q.Send(ctx, "INSERT INTO t VALUES (1);"))
	require.NoError(t, q.Send(ctx, "INSERT INTO t VALUES (2);"))
	q.Close()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, q, 10) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("executor did not exit after queue closed")
	}

	var count int
	require.NoError(t, e.DB().QueryRow("SELECT COUNT(*) FROM t;").Scan(&count))
	require.Equal(t, 2, count)
}

func TestExecutorRunStopsOnContextCancel(t *testing.T) {
	e, err := Open(":memory:")
	require.NoError(t, err)
	defer e.Close()

	q := sqlqueue.New(10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, q, 10) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("executor did not exit after context cancel")
	}
}
