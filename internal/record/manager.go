// Package record persists subscribed streams to disk. Each session owns a
// directory with a metadata document and a newline-delimited sample log,
// and is bundled into a zip archive when stopped. The write path buffers
// lines in memory and flushes on a line-count threshold or a time
// interval, so a graceful stop never loses an accepted sample.
package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/lslview/lslview/internal/lsl"
	"github.com/lslview/lslview/internal/metrics"
	"github.com/lslview/lslview/internal/relay"
	"github.com/lslview/lslview/internal/streams"
)

// QueueCapacity is the large subscriber queue used for recordings. Archival
// fidelity matters more than latency here, so drops are minimized; live
// viewers use the much smaller relay.LiveQueueCapacity.
const QueueCapacity = 8192

// ErrNotFound is returned for unknown recording session ids.
var ErrNotFound = errors.New("recording not found")

// Manager owns all recording sessions. Teardown joins the write loop
// before touching the session's files, so Stop always observes the final
// flush.
type Manager struct {
	logger *slog.Logger
	relay  *relay.Manager
	root   string
	clock  clock.Clock

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a recording manager writing under root.
func NewManager(relayMgr *relay.Manager, root string, logger *slog.Logger) *Manager {
	return &Manager{
		logger:   logger,
		relay:    relayMgr,
		root:     root,
		clock:    clock.New(),
		sessions: make(map[string]*Session),
	}
}

// SetClock replaces the wall clock used for flush scheduling. Tests use a
// mock clock to drive interval flushes deterministically.
func (m *Manager) SetClock(c clock.Clock) { m.clock = c }

// Start begins recording the given stream. It allocates a fresh session
// id, creates the session directory exclusively, writes the initial
// metadata document, subscribes to the shared inlet and starts the write
// loop.
func (m *Manager) Start(ctx context.Context, src lsl.Source, desc streams.Descriptor, label string, downsample int) (SessionInfo, error) {
	if downsample < 1 {
		downsample = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := newSessionID()
	slug := label
	if slug == "" {
		slug = desc.Name
	}
	dir := filepath.Join(m.root, fmt.Sprintf("%s_%s_%s",
		time.Now().UTC().Format("20060102T150405Z"), Slug(slug), id))

	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return SessionInfo{}, fmt.Errorf("create recordings root: %w", err)
	}
	// Exclusive create: a collision means a duplicate id, which is fatal
	// for this attempt.
	if err := os.Mkdir(dir, 0o755); err != nil {
		return SessionInfo{}, fmt.Errorf("create session directory: %w", err)
	}

	s := &Session{
		id:         id,
		streamUID:  desc.UID,
		streamName: desc.Name,
		label:      label,
		descriptor: desc,
		downsample: downsample,
		dir:        dir,
		metaPath:   filepath.Join(dir, archiveMetadataName),
		dataPath:   filepath.Join(dir, archiveDataName),
		zipPath:    filepath.Join(dir, "recording.zip"),
		startedAt:  time.Now(),
		done:       make(chan struct{}),
	}

	doc := newMetadataDoc(s)
	if err := doc.write(s.metaPath); err != nil {
		os.RemoveAll(dir)
		return SessionInfo{}, fmt.Errorf("write metadata: %w", err)
	}

	sub, err := m.relay.Subscribe(ctx, src, QueueCapacity)
	if err != nil {
		os.RemoveAll(dir)
		return SessionInfo{}, err
	}
	s.sub = sub

	writeCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go m.writeLoop(writeCtx, s)

	m.sessions[id] = s
	metrics.SetActiveRecordings(m.activeLocked())
	m.logger.Info("Recording started",
		"id", id, "uid", desc.UID, "stream", desc.Name, "downsample", downsample, "dir", dir)
	return s.Info(), nil
}

// Stop ends a recording session. It is idempotent: stopping an already
// stopped session returns its current state unchanged. The write loop is
// cancelled and joined, which forces its final flush, before the metadata
// document is finalized and the archive written.
func (m *Manager) Stop(id string) (SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return SessionInfo{}, ErrNotFound
	}
	if !s.stoppedAt.IsZero() {
		return s.Info(), nil
	}

	s.stoppedAt = time.Now()
	s.cancel()
	<-s.done
	m.relay.Unsubscribe(s.sub)

	doc := newMetadataDoc(s)
	doc.finalize(s)
	if err := doc.write(s.metaPath); err != nil {
		m.logger.Error("Failed to finalize metadata", "id", id, "error", err)
	}
	if err := writeArchive(s.zipPath, s.metaPath, s.dataPath); err != nil {
		m.logger.Error("Failed to create recording archive", "id", id, "error", err)
	}

	metrics.SetActiveRecordings(m.activeLocked())
	m.logger.Info("Recording stopped",
		"id", id, "samples", s.sampleCount.Load(),
		"duration", s.stoppedAt.Sub(s.startedAt))
	return s.Info(), nil
}

// Get returns a snapshot of one session.
func (m *Manager) Get(id string) (SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return SessionInfo{}, ErrNotFound
	}
	return s.Info(), nil
}

// List returns snapshots of all sessions.
func (m *Manager) List() []SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	return out
}

// StopAll stops every active session; used during shutdown.
func (m *Manager) StopAll() {
	for _, info := range m.List() {
		if info.Active {
			if _, err := m.Stop(info.ID); err != nil {
				m.logger.Warn("Failed to stop recording during shutdown", "id", info.ID, "error", err)
			}
		}
	}
}

func (m *Manager) activeLocked() int {
	n := 0
	for _, s := range m.sessions {
		if s.stoppedAt.IsZero() {
			n++
		}
	}
	return n
}

func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
