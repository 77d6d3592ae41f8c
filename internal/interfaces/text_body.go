package interfaces

import "context"

// TextBodyStore is the append-only cache of text file contents keyed by corpus path
type TextBodyStore interface {
	Get(path string) (string, bool)
	Set(path string, body string)
	Len() int
}

// TextBodyFetcher populates a TextBodyStore in the background
type TextBodyFetcher interface {
	// Request starts a fetch for path unless it is cached or already in flight.
	// It never blocks on the fetch itself.
	Request(ctx context.Context, path string)
}
