package events

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/models"
)

// NewLoggerSubscriber creates an event handler that logs all events at debug level
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		switch payload := event.Payload.(type) {
		case models.ViewerSnapshot:
			logEvent = logEvent.
				Str("path", payload.Path).
				Str("state", string(payload.State)).
				Int("progress", int(payload.Progress))
		case interfaces.TextBodyLoadedPayload:
			logEvent = logEvent.
				Str("path", payload.Path).
				Bool("failed", payload.Failed)
		case interfaces.CorpusLoadedPayload:
			logEvent = logEvent.Int("records", payload.Records)
		}

		logEvent.Msg("Event published")
		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types.
// Progress events are left out: they fire every few kilobytes during a decode.
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	eventTypes := []interfaces.EventType{
		interfaces.EventCorpusLoaded,
		interfaces.EventTextBodyLoaded,
		interfaces.EventViewerState,
	}

	for _, eventType := range eventTypes {
		if _, err := eventService.Subscribe(eventType, subscriber); err != nil {
			return err
		}
	}

	return nil
}
