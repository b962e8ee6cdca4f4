package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/lslview/lslview/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time lifecycle events: discovery passes, inlet open/close, recording start/stop",
		Tags:        []string{"events"},
	}, map[string]any{
		"streams-resolved":  events.StreamsResolvedEvent{},
		"inlet-opened":      events.InletOpenedEvent{},
		"inlet-closed":      events.InletClosedEvent{},
		"recording-started": events.RecordingStartedEvent{},
		"recording-stopped": events.RecordingStoppedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.StreamsResolvedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.InletOpenedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.InletClosedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.RecordingStartedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.RecordingStoppedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Initial frame confirms the connection is live.
		if err := send.Data(events.StreamsResolvedEvent{
			Count:     len(s.resolver.List()),
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
