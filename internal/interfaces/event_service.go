package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	// EventCorpusLoaded fires once the tag corpus has been (re)built. Payload: CorpusLoadedPayload
	EventCorpusLoaded EventType = "corpus_loaded"
	// EventTextBodyLoaded fires when one text body lands in the cache. Payload: TextBodyLoadedPayload
	EventTextBodyLoaded EventType = "text_body_loaded"
	// EventViewerState fires on every viewer lifecycle transition. Payload: models.ViewerSnapshot
	EventViewerState EventType = "viewer_state"
	// EventViewerProgress fires while an asset decodes. Payload: models.ViewerSnapshot
	EventViewerProgress EventType = "viewer_progress"
)

// CorpusLoadedPayload describes a finished corpus load
type CorpusLoadedPayload struct {
	Records int  `json:"records"`
	Empty   bool `json:"empty"`
}

// TextBodyLoadedPayload names the single path whose cached body changed
type TextBodyLoadedPayload struct {
	Path   string `json:"path"`
	Failed bool   `json:"failed"`
}

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID identifies one Subscribe call so it can be undone
type SubscriptionID uint64

// EventService manages pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) (SubscriptionID, error)

	// Unsubscribe removes a subscription returned by Subscribe
	Unsubscribe(eventType EventType, id SubscriptionID) error

	// Publish queues an event for delivery; events are delivered in publish order
	Publish(ctx context.Context, event Event) error

	// PublishSync delivers the event to every handler before returning
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
