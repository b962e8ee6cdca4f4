// Package streams maintains the cache of discovered streams: immutable
// Descriptor snapshots plus the opaque sources used to open inlets.
package streams

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lslview/lslview/internal/lsl"
)

// Resolver caches resolved streams for quick lookup. Each Resolve replaces
// the whole cache; there is no incremental merge, so descriptors and
// sources obtained before a later Resolve may go stale. Source liveness is
// not checked before reuse.
type Resolver struct {
	provider lsl.Provider
	logger   *slog.Logger

	mu          sync.RWMutex
	descriptors map[string]Descriptor
	sources     map[string]lsl.Source
}

// NewResolver creates a resolver backed by the given discovery provider.
func NewResolver(provider lsl.Provider, logger *slog.Logger) *Resolver {
	return &Resolver{
		provider:    provider,
		logger:      logger,
		descriptors: make(map[string]Descriptor),
		sources:     make(map[string]lsl.Source),
	}
}

// Resolve queries discovery for up to timeout and atomically replaces the
// cache with the result set. Concurrent resolves race; the last writer
// wins.
func (r *Resolver) Resolve(ctx context.Context, timeout time.Duration) ([]Descriptor, error) {
	r.logger.Info("Resolving streams", "timeout", timeout)
	sources, err := r.provider.Resolve(ctx, timeout)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Streams resolved", "count", len(sources))

	descriptors := make(map[string]Descriptor, len(sources))
	byUID := make(map[string]lsl.Source, len(sources))
	out := make([]Descriptor, 0, len(sources))
	for _, src := range sources {
		d := NewDescriptor(src.Info())
		descriptors[d.UID] = d
		byUID[d.UID] = src
		out = append(out, d)
	}

	r.mu.Lock()
	r.descriptors = descriptors
	r.sources = byUID
	r.mu.Unlock()
	return out, nil
}

// Descriptor returns the cached descriptor for uid.
func (r *Resolver) Descriptor(uid string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[uid]
	return d, ok
}

// Source returns the cached source for uid.
func (r *Resolver) Source(uid string) (lsl.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[uid]
	return s, ok
}

// List returns all cached descriptors from the current cache generation.
func (r *Resolver) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	return out
}
