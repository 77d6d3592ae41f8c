package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
)

// ErrServiceClosed is returned by Publish after Close
var ErrServiceClosed = errors.New("event service closed")

type subscription struct {
	id      interfaces.SubscriptionID
	handler interfaces.EventHandler
}

type queuedEvent struct {
	ctx   context.Context
	event interfaces.Event
}

// Service implements EventService with pub/sub pattern.
// Asynchronous events go through a single dispatcher goroutine so subscribers
// observe them in publish order (viewer progress must never appear to go backwards).
type Service struct {
	subscribers map[interfaces.EventType][]subscription
	nextID      interfaces.SubscriptionID
	mu          sync.RWMutex
	logger      arbor.ILogger

	queue     chan queuedEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewService creates a new event service and starts its dispatcher
func NewService(logger arbor.ILogger) *Service {
	s := &Service{
		subscribers: make(map[interfaces.EventType][]subscription),
		logger:      logger,
		queue:       make(chan queuedEvent, 256),
		done:        make(chan struct{}),
	}

	s.wg.Add(1)
	common.SafeGo(logger, "eventDispatcher", s.dispatch)

	return s
}

// Subscribe registers a handler for an event type
func (s *Service) Subscribe(eventType interfaces.EventType, handler interfaces.EventHandler) (interfaces.SubscriptionID, error) {
	if handler == nil {
		return 0, fmt.Errorf("handler cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subscribers[eventType] = append(s.subscribers[eventType], subscription{id: id, handler: handler})

	s.logger.Debug().
		Str("event_type", string(eventType)).
		Int("subscriber_count", len(s.subscribers[eventType])).
		Msg("Event handler subscribed")

	return id, nil
}

// Unsubscribe removes a handler from an event type
func (s *Service) Unsubscribe(eventType interfaces.EventType, id interfaces.SubscriptionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.subscribers[eventType]
	for i, sub := range subs {
		if sub.id == id {
			s.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			s.logger.Debug().
				Str("event_type", string(eventType)).
				Msg("Event handler unsubscribed")
			return nil
		}
	}

	return fmt.Errorf("subscription %d not found for event type: %s", id, eventType)
}

// Publish queues an event for the dispatcher
func (s *Service) Publish(ctx context.Context, event interfaces.Event) error {
	select {
	case <-s.done:
		return ErrServiceClosed
	default:
	}

	select {
	case s.queue <- queuedEvent{ctx: ctx, event: event}:
		return nil
	case <-s.done:
		return ErrServiceClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishSync sends an event to all subscribers on the caller's goroutine
func (s *Service) PublishSync(ctx context.Context, event interfaces.Event) error {
	var errs []error
	for _, sub := range s.handlersFor(event.Type) {
		if err := sub.handler(ctx, event); err != nil {
			s.logger.Error().
				Err(err).
				Str("event_type", string(event.Type)).
				Msg("Event handler failed")
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("event handlers failed: %w", errors.Join(errs...))
	}
	return nil
}

// Close stops the dispatcher and drops all subscriptions. Events still queued are discarded.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		s.subscribers = make(map[interfaces.EventType][]subscription)
		s.mu.Unlock()

		s.logger.Info().Msg("Event service closed")
	})
	return nil
}

func (s *Service) handlersFor(eventType interfaces.EventType) []subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := s.subscribers[eventType]
	out := make([]subscription, len(subs))
	copy(out, subs)
	return out
}

func (s *Service) dispatch() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case queued := <-s.queue:
			for _, sub := range s.handlersFor(queued.event.Type) {
				s.deliver(queued.ctx, queued.event, sub)
			}
		}
	}
}

// deliver isolates handler panics so one bad subscriber cannot stop the dispatcher
func (s *Service) deliver(ctx context.Context, event interfaces.Event, sub subscription) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("event_type", string(event.Type)).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Event handler panicked")
		}
	}()

	if err := sub.handler(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("event_type", string(event.Type)).
			Msg("Event handler failed")
	}
}
