package relay

import (
	"context"
	"testing"
	"time"

	"github.com/lslview/lslview/internal/lsl"
)

func TestQueuePushAndNext(t *testing.T) {
	q := newQueue(4)
	for i := 0; i < 3; i++ {
		if dropped := q.Push(lsl.Sample{Timestamp: float64(i)}); dropped {
			t.Errorf("Push(%d) reported drop on non-full queue", i)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s, err := q.Next(ctx)
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if s.Timestamp != float64(i) {
			t.Errorf("sample %d: timestamp = %v, want %v", i, s.Timestamp, float64(i))
		}
	}
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := newQueue(3)
	for i := 0; i < 3; i++ {
		q.Push(lsl.Sample{Timestamp: float64(i)})
	}

	// Queue is full: the next two pushes must evict timestamps 0 and 1.
	for i := 3; i < 5; i++ {
		if dropped := q.Push(lsl.Sample{Timestamp: float64(i)}); !dropped {
			t.Errorf("Push(%d) did not report a drop on full queue", i)
		}
	}

	want := []float64{2, 3, 4}
	for i, w := range want {
		s, ok := q.TryNext()
		if !ok {
			t.Fatalf("TryNext() %d: queue empty", i)
		}
		if s.Timestamp != w {
			t.Errorf("sample %d: timestamp = %v, want %v", i, s.Timestamp, w)
		}
	}
	if _, ok := q.TryNext(); ok {
		t.Error("queue should be empty after draining")
	}
}

func TestQueueNextHonorsContext(t *testing.T) {
	q := newQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Next(ctx); err == nil {
		t.Error("Next() on empty queue should fail when the context expires")
	}
}

func TestQueueMinimumCapacity(t *testing.T) {
	q := newQueue(0)
	if q.Cap() != 1 {
		t.Errorf("Cap() = %d, want 1", q.Cap())
	}
}
