package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan InletOpenedEvent, 1)

	unsub := bus.Subscribe(func(e InletOpenedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(InletOpenedEvent{UID: "sim-eeg-001", Name: "MockEEG"})

	select {
	case e := <-received:
		if e.UID != "sim-eeg-001" {
			t.Errorf("UID = %q, want sim-eeg-001", e.UID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestSubscribeIsTypeSelective(t *testing.T) {
	bus := New()
	opened := make(chan InletOpenedEvent, 4)
	closed := make(chan InletClosedEvent, 4)

	defer bus.Subscribe(func(e InletOpenedEvent) { opened <- e })()
	defer bus.Subscribe(func(e InletClosedEvent) { closed <- e })()

	bus.Publish(InletClosedEvent{UID: "sim-eeg-001"})

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("closed event never delivered")
	}
	select {
	case e := <-opened:
		t.Fatalf("opened handler received %+v for a closed event", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 4)

	unsub := SubscribeToChannel[RecordingStartedEvent](bus, ch)
	defer unsub()

	bus.Publish(RecordingStartedEvent{Timestamp: "2025-01-27T10:30:00Z"})

	select {
	case e := <-ch:
		if _, ok := e.(RecordingStartedEvent); !ok {
			t.Errorf("received %T, want RecordingStartedEvent", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never bridged to channel")
	}
}

func TestEventTypesAreDistinct(t *testing.T) {
	seen := make(map[uint32]string)
	for name, ev := range map[string]Event{
		"streams-resolved":  StreamsResolvedEvent{},
		"inlet-opened":      InletOpenedEvent{},
		"inlet-closed":      InletClosedEvent{},
		"recording-started": RecordingStartedEvent{},
		"recording-stopped": RecordingStoppedEvent{},
	} {
		if prev, dup := seen[ev.Type()]; dup {
			t.Errorf("%s and %s share type %d", name, prev, ev.Type())
		}
		seen[ev.Type()] = name
	}
}
