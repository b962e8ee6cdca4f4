// Package relay multiplexes upstream stream inlets across many consumers.
//
// The manager owns at most one open inlet per stream uid. A background
// pull loop per inlet fans every sample out to the subscriber queues, and
// reference counting decides the inlet's lifetime: the inlet is opened on
// the first subscribe and closed the moment the last subscriber leaves.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lslview/lslview/internal/lsl"
	"github.com/lslview/lslview/internal/metrics"
)

const (
	// DefaultOpenTimeout bounds the upstream open call during subscribe.
	DefaultOpenTimeout = 5 * time.Second

	// LiveQueueCapacity is the small per-viewer queue tuned for latency.
	LiveQueueCapacity = 512

	pullTimeout = 50 * time.Millisecond
	pullBatch   = 32
	idleDelay   = 5 * time.Millisecond
)

// Subscription is one consumer's private view of a shared inlet.
type Subscription struct {
	uid   string
	queue *Queue
}

// UID returns the stream uid this subscription belongs to.
func (s *Subscription) UID() string { return s.uid }

// Next blocks until the next sample is available or ctx is done.
func (s *Subscription) Next(ctx context.Context) (lsl.Sample, error) {
	return s.queue.Next(ctx)
}

// TryNext returns the next sample without blocking.
func (s *Subscription) TryNext() (lsl.Sample, bool) {
	return s.queue.TryNext()
}

// managedInlet owns the open inlet for one uid. The subscriber set is
// copy-on-write: mutations happen under the manager mutex, the pull loop
// reads it with an atomic load so it never contends for the lock.
type managedInlet struct {
	inlet    lsl.Inlet
	refCount int
	subs     atomic.Pointer[[]*Subscription]
	cancel   context.CancelFunc
	done     chan struct{}
}

func (mi *managedInlet) loadSubs() []*Subscription {
	if p := mi.subs.Load(); p != nil {
		return *p
	}
	return nil
}

// Manager coordinates shared inlets. One mutex guards the inlet table and
// all subscriber bookkeeping; lock sections are in-memory work plus the
// synchronous open/teardown calls made during subscribe and the final
// unsubscribe.
type Manager struct {
	logger      *slog.Logger
	openTimeout time.Duration

	mu     sync.Mutex
	inlets map[string]*managedInlet

	onInletOpened func(info lsl.StreamInfo)
	onInletClosed func(uid string)
}

// SetOnInletOpened sets a callback invoked whenever a shared inlet is
// opened. The callback runs on its own goroutine.
func (m *Manager) SetOnInletOpened(fn func(info lsl.StreamInfo)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onInletOpened = fn
}

// SetOnInletClosed sets a callback invoked whenever a shared inlet is
// closed. The callback runs on its own goroutine.
func (m *Manager) SetOnInletClosed(fn func(uid string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onInletClosed = fn
}

// NewManager creates an inlet manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:      logger,
		openTimeout: DefaultOpenTimeout,
		inlets:      make(map[string]*managedInlet),
	}
}

// Subscribe attaches a new bounded queue to the stream's shared inlet,
// opening the inlet and starting its pull loop if this is the first
// subscriber. On open failure no inlet or subscriber state is left behind.
func (m *Manager) Subscribe(ctx context.Context, src lsl.Source, capacity int) (*Subscription, error) {
	info := src.Info()
	uid := info.UID

	m.mu.Lock()
	defer m.mu.Unlock()

	mi, ok := m.inlets[uid]
	if !ok {
		m.logger.Info("Opening inlet", "name", info.Name, "uid", uid)
		openCtx, cancel := context.WithTimeout(ctx, m.openTimeout)
		inlet, err := src.Open(openCtx)
		cancel()
		if err != nil {
			m.logger.Error("Failed to open inlet", "uid", uid, "error", err)
			return nil, fmt.Errorf("open inlet for %s: %w", uid, err)
		}

		pullCtx, cancelPull := context.WithCancel(context.Background())
		mi = &managedInlet{
			inlet:  inlet,
			cancel: cancelPull,
			done:   make(chan struct{}),
		}
		m.inlets[uid] = mi
		go m.pullLoop(pullCtx, uid, mi)
		metrics.SetActiveInlets(len(m.inlets))
		if m.onInletOpened != nil {
			go m.onInletOpened(info)
		}
	}

	sub := &Subscription{uid: uid, queue: newQueue(capacity)}
	next := append(append([]*Subscription(nil), mi.loadSubs()...), sub)
	mi.subs.Store(&next)
	mi.refCount++
	metrics.SetSubscribers(uid, mi.refCount)
	m.logger.Info("Subscriber added", "uid", uid, "refs", mi.refCount)
	return sub, nil
}

// Unsubscribe detaches the subscription. When the last subscriber leaves,
// the pull loop is cancelled and joined and the inlet closed before the
// entry is removed, all in the same critical section, so a subsequent
// Subscribe reliably reopens a fresh inlet.
func (m *Manager) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mi, ok := m.inlets[sub.uid]
	if !ok {
		return
	}

	cur := mi.loadSubs()
	next := make([]*Subscription, 0, len(cur))
	found := false
	for _, s := range cur {
		if s == sub {
			found = true
			continue
		}
		next = append(next, s)
	}
	if found {
		mi.subs.Store(&next)
		mi.refCount--
	}
	metrics.SetSubscribers(sub.uid, mi.refCount)
	m.logger.Info("Subscriber removed", "uid", sub.uid, "refs", mi.refCount)

	if mi.refCount <= 0 {
		m.logger.Info("Closing inlet", "uid", sub.uid)
		mi.cancel()
		<-mi.done
		if err := mi.inlet.Close(); err != nil {
			m.logger.Warn("Error closing inlet", "uid", sub.uid, "error", err)
		}
		delete(m.inlets, sub.uid)
		metrics.SetActiveInlets(len(m.inlets))
		metrics.ClearStream(sub.uid)
		if m.onInletClosed != nil {
			go m.onInletClosed(sub.uid)
		}
	}
}

// Refs returns the current reference count for uid, 0 when no inlet is
// managed for it.
func (m *Manager) Refs(uid string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mi, ok := m.inlets[uid]; ok {
		return mi.refCount
	}
	return 0
}

// ActiveInlets returns the uids with a managed inlet entry.
func (m *Manager) ActiveInlets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	uids := make([]string, 0, len(m.inlets))
	for uid := range m.inlets {
		uids = append(uids, uid)
	}
	return uids
}

// pullLoop pulls sample batches from the inlet and fans them out until
// cancelled. On cancellation it exits silently. On any other pull failure
// it logs and terminates, leaving the managed entry behind with a stale
// reference count; subscribers simply stop receiving data until they
// unsubscribe.
func (m *Manager) pullLoop(ctx context.Context, uid string, mi *managedInlet) {
	defer close(mi.done)

	for {
		if ctx.Err() != nil {
			return
		}
		samples, err := mi.inlet.Pull(pullTimeout, pullBatch)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error("Pull loop error", "uid", uid, "error", err)
			return
		}
		if len(samples) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idleDelay):
			}
			continue
		}

		metrics.AddSamplesPulled(uid, len(samples))
		for _, s := range samples {
			for _, sub := range mi.loadSubs() {
				if sub.queue.Push(s) {
					metrics.IncSamplesDropped(uid)
				}
			}
		}
	}
}
