package viewer

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
)

// eventOutbox hands viewer events to the event service from its own goroutine, so a slow
// subscriber never holds the controller mutex. Events keep their order; a progress event
// still waiting to be sent is replaced by the next progress event.
type eventOutbox struct {
	events interfaces.EventService
	logger arbor.ILogger

	mu      sync.Mutex
	pending []interfaces.Event
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func newEventOutbox(events interfaces.EventService, logger arbor.ILogger) *eventOutbox {
	o := &eventOutbox{
		events: events,
		logger: logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	common.SafeGo(logger, "viewerEventOutbox", o.run)
	return o
}

// push queues event without blocking
func (o *eventOutbox) push(event interfaces.Event) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if n := len(o.pending); n > 0 && event.Type == interfaces.EventViewerProgress && o.pending[n-1].Type == interfaces.EventViewerProgress {
		o.pending[n-1] = event
	} else {
		o.pending = append(o.pending, event)
	}
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued events
func (o *eventOutbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

func (o *eventOutbox) run() {
	defer close(o.done)
	for {
		select {
		case <-o.wake:
			o.flush()
		case <-o.stop:
			o.flush()
			return
		}
	}
}

func (o *eventOutbox) flush() {
	for {
		o.mu.Lock()
		batch := o.pending
		o.pending = nil
		o.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, event := range batch {
			if err := o.events.Publish(context.Background(), event); err != nil {
				o.logger.Debug().
					Err(err).
					Str("event_type", string(event.Type)).
					Msg("Viewer event not delivered")
			}
		}
	}
}

// Close sends whatever is queued and stops the goroutine
func (o *eventOutbox) Close() {
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		o.mu.Unlock()
		close(o.stop)
	})
	<-o.done
}
