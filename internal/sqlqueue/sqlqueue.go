// Package sqlqueue is the bounded SQL request channel adapters send bronze
// INSERT text into and the executor drains, the single back-pressure point
// of the pipeline (spec.md §4.3).
package sqlqueue

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrReceiverClosed is returned by Send once Close has been called (a
// cancelled ctx yields ctx.Err() instead); producers should stop sending on
// sight of it.
var ErrReceiverClosed = errors.New("sqlqueue: receiver closed")

// Queue is a multi-producer/single-consumer bounded channel of SQL text.
type Queue struct {
	ch     chan string
	closed atomic.Bool
}

// New creates a Queue with the given channel capacity.
func New(size int) *Queue {
	return &Queue{ch: make(chan string, size)}
}

// Send enqueues sql, blocking until there is room, ctx is cancelled, or the
// queue is closed.
func (q *Queue) Send(ctx context.Context, sql string) error {
	if q.closed.Load() {
		return ErrReceiverClosed
	}
	select {
	case q.ch <- sql:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len reports how many requests are currently buffered, for the
// "sql request receiver contains N / M elements" log line style the teacher
// pipeline emits before every batch read.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap reports the channel's capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Close marks the queue closed and closes the channel at once: further Send
// calls fail fast, and entries already buffered can still be received.
func (q *Queue) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.ch)
	}
}

// RecvBatch drains up to max queued items into buf (reset to length 0
// first), blocking until at least one item is available, ctx is done, or
// the queue is closed and drained. It mirrors Rust's
// mpsc::Receiver::recv_many used by execute_request_task.
func (q *Queue) RecvBatch(ctx context.Context, buf []string, max int) ([]string, error) {
	buf = buf[:0]

	select {
	case sql, ok := <-q.ch:
		if !ok {
			return buf, ErrReceiverClosed
		}
		buf = append(buf, sql)
	case <-ctx.Done():
		return buf, ctx.Err()
	}

	for len(buf) < max {
		select {
		case sql, ok := <-q.ch:
			if !ok {
				return buf, nil
			}
			buf = append(buf, sql)
		default:
			return buf, nil
		}
	}
	return buf, nil
}
