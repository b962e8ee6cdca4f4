package streams

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lslview/lslview/internal/lsl"
)

type staticSource struct {
	info lsl.StreamInfo
}

func (s *staticSource) Info() lsl.StreamInfo { return s.info }

func (s *staticSource) Open(ctx context.Context) (lsl.Inlet, error) {
	return nil, nil
}

type staticProvider struct {
	sources []lsl.Source
	err     error
}

func (p *staticProvider) Resolve(ctx context.Context, timeout time.Duration) ([]lsl.Source, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.sources, nil
}

func src(uid, name string) lsl.Source {
	return &staticSource{info: lsl.StreamInfo{UID: uid, Name: name, Type: "EEG"}}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveCachesStreams(t *testing.T) {
	p := &staticProvider{sources: []lsl.Source{src("uid-1", "One"), src("uid-2", "Two")}}
	r := NewResolver(p, testLogger())

	descriptors, err := r.Resolve(context.Background(), time.Millisecond)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("Resolve returned %d descriptors, want 2", len(descriptors))
	}

	d, ok := r.Descriptor("uid-1")
	if !ok {
		t.Fatal("uid-1 not cached")
	}
	if d.Name != "One" {
		t.Errorf("cached name = %q, want One", d.Name)
	}
	if _, ok := r.Source("uid-2"); !ok {
		t.Error("uid-2 source not cached")
	}
	if got := len(r.List()); got != 2 {
		t.Errorf("List = %d entries, want 2", got)
	}
}

func TestResolveReplacesWholeCache(t *testing.T) {
	p := &staticProvider{sources: []lsl.Source{src("uid-1", "One"), src("uid-2", "Two")}}
	r := NewResolver(p, testLogger())
	if _, err := r.Resolve(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	p.sources = []lsl.Source{src("uid-3", "Three")}
	if _, err := r.Resolve(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}

	if _, ok := r.Descriptor("uid-1"); ok {
		t.Error("uid-1 survived a full cache replacement")
	}
	if _, ok := r.Source("uid-2"); ok {
		t.Error("uid-2 source survived a full cache replacement")
	}
	if _, ok := r.Descriptor("uid-3"); !ok {
		t.Error("uid-3 missing after second resolve")
	}
	if got := len(r.List()); got != 1 {
		t.Errorf("List = %d entries, want 1", got)
	}
}

func TestResolveErrorKeepsCache(t *testing.T) {
	p := &staticProvider{sources: []lsl.Source{src("uid-1", "One")}}
	r := NewResolver(p, testLogger())
	if _, err := r.Resolve(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	p.err = context.DeadlineExceeded
	if _, err := r.Resolve(context.Background(), time.Millisecond); err == nil {
		t.Fatal("Resolve should propagate provider errors")
	}
	if _, ok := r.Descriptor("uid-1"); !ok {
		t.Error("failed resolve wiped the previous cache")
	}
}

func TestLookupMiss(t *testing.T) {
	r := NewResolver(&staticProvider{}, testLogger())
	if _, ok := r.Descriptor("nope"); ok {
		t.Error("Descriptor hit on empty cache")
	}
	if _, ok := r.Source("nope"); ok {
		t.Error("Source hit on empty cache")
	}
}
