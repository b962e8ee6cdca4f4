// Package events carries lifecycle notifications between the managers and
// the SSE endpoint over a kelindar/event dispatcher.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(RecordingStartedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so the interface
	// value has to be unwrapped first.
	switch e := ev.(type) {
	case StreamsResolvedEvent:
		event.Publish(b.dispatcher, e)
	case InletOpenedEvent:
		event.Publish(b.dispatcher, e)
	case InletClosedEvent:
		event.Publish(b.dispatcher, e)
	case RecordingStartedEvent:
		event.Publish(b.dispatcher, e)
	case RecordingStoppedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes a handler function; the handler's parameter type
// selects which events it receives. Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e RecordingStartedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(StreamsResolvedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(InletOpenedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(InletClosedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RecordingStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RecordingStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
