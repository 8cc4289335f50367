package sqlqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndRecvBatch(t *testing.T) {
	q := New(10)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "INSERT 1;"))
	require.NoError(t, q.Send(ctx, "INSERT 2;"))
	assert.Equal(t, 2, q.Len())

	var buf []string
	buf, err := q.RecvBatch(ctx, buf, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT 1;", "INSERT 2;"}, buf)
}

func TestSendAfterCloseFails(t *testing.T) {
	q := New(1)
	q.Close()
	err := q.Send(context.Background(), "INSERT;")
	assert.ErrorIs(t, err, ErrReceiverClosed)
}

func TestRecvBatchRespectsMax(t *testing.T) {
	q := New(10)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Send(ctx, "x"))
	}

	var buf []string
	buf, err := q.RecvBatch(ctx, buf, 3)
	require.NoError(t, err)
	assert.Len(t, buf, 3)
	assert.Equal(t, 2, q.Len())
}

func TestRecvBatchContextTimeout(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var buf []string
	_, err := q.RecvBatch(ctx, buf, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
