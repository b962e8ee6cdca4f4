package relay

import (
	"context"

	"github.com/lslview/lslview/internal/lsl"
)

// Queue is a bounded FIFO of samples with exactly one producer (the pull
// loop of the owning inlet) and exactly one consumer. When the queue is
// full the oldest sample is evicted to admit the new one: recency wins
// over completeness on the live path.
type Queue struct {
	ch chan lsl.Sample
}

func newQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan lsl.Sample, capacity)}
}

// Push enqueues s, evicting the oldest queued sample if the queue is full.
// It reports whether an eviction happened. Must only be called by the
// single producer.
func (q *Queue) Push(s lsl.Sample) (dropped bool) {
	select {
	case q.ch <- s:
		return false
	default:
	}
	select {
	case <-q.ch:
		dropped = true
	default:
		// Consumer drained the queue between the two selects.
	}
	// Only the producer adds, so after the eviction this cannot block.
	q.ch <- s
	return dropped
}

// Next blocks until a sample is available or ctx is done.
func (q *Queue) Next(ctx context.Context) (lsl.Sample, error) {
	select {
	case s := <-q.ch:
		return s, nil
	case <-ctx.Done():
		return lsl.Sample{}, ctx.Err()
	}
}

// TryNext returns the next sample without blocking.
func (q *Queue) TryNext() (lsl.Sample, bool) {
	select {
	case s := <-q.ch:
		return s, true
	default:
		return lsl.Sample{}, false
	}
}

// Len returns the number of queued samples.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }
