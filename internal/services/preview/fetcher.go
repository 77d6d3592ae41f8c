package preview

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/metrics"
	"github.com/ternarybob/tagview/internal/models"
)

const (
	// TextFetchFailedMessage is cached in place of a body that could not be loaded
	TextFetchFailedMessage = "Error loading file content"

	// MaxTextBytes caps how much of a text file is kept for preview
	MaxTextBytes = 1 << 20

	// TextTruncatedMarker ends a body that was cut at MaxTextBytes
	TextTruncatedMarker = "\n\n[truncated: file is larger than 1 MiB]"
)

// TextFetcher loads text bodies into the cache on background goroutines.
// Fetches complete in any order; each one writes a single cache key and announces only that path.
type TextFetcher struct {
	source  interfaces.ContentSource
	cache   interfaces.TextBodyStore
	events  interfaces.EventService
	logger  arbor.ILogger
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// NewTextFetcher creates a fetcher. events may be nil; timeout 0 means no per-fetch limit.
func NewTextFetcher(source interfaces.ContentSource, cache interfaces.TextBodyStore, events interfaces.EventService, logger arbor.ILogger, timeout time.Duration) *TextFetcher {
	return &TextFetcher{
		source:   source,
		cache:    cache,
		events:   events,
		logger:   logger,
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// Request starts a fetch for path unless it is cached or already in flight.
// The fetch outlives ctx cancellation; text fetches are never cancelled.
func (f *TextFetcher) Request(ctx context.Context, path string) {
	if _, ok := f.cache.Get(path); ok {
		return
	}

	f.mu.Lock()
	if _, busy := f.inflight[path]; busy {
		f.mu.Unlock()
		return
	}
	// A fetch fills the cache before leaving inflight, so this sees one that just finished
	if _, ok := f.cache.Get(path); ok {
		f.mu.Unlock()
		return
	}
	f.inflight[path] = struct{}{}
	f.wg.Add(1)
	f.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	common.SafeGo(f.logger, "textFetch", func() {
		defer f.wg.Done()
		defer func() {
			f.mu.Lock()
			delete(f.inflight, path)
			f.mu.Unlock()
		}()
		f.fetch(fetchCtx, path)
	})
}

// PrefetchAll requests the body of every text record in the corpus
func (f *TextFetcher) PrefetchAll(ctx context.Context, corpus *models.TagCorpus) int {
	requested := 0
	corpus.Each(func(record *models.FileRecord) bool {
		if record.Type == models.FileTypeText {
			f.Request(ctx, record.Path)
			requested++
		}
		return true
	})

	f.logger.Debug().
		Int("requested", requested).
		Msg("Text body prefetch started")
	return requested
}

// Wait blocks until every fetch started so far has finished
func (f *TextFetcher) Wait() {
	f.wg.Wait()
}

func (f *TextFetcher) fetch(ctx context.Context, path string) {
	readCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	failed := false
	body, truncated, err := readTextBody(readCtx, f.source, path)
	if truncated {
		f.logger.Warn().
			Str("path", path).
			Int("max_bytes", MaxTextBytes).
			Msg("Text body truncated for preview")
	}
	if err != nil {
		failed = true
		body = TextFetchFailedMessage
		metrics.RecordTextFetch("failed")
		f.logger.Warn().
			Err(err).
			Str("path", path).
			Msg("Failed to load text body")
	} else {
		metrics.RecordTextFetch("ok")
	}

	f.cache.Set(path, body)

	if f.events == nil {
		return
	}
	event := interfaces.Event{
		Type:    interfaces.EventTextBodyLoaded,
		Payload: interfaces.TextBodyLoadedPayload{Path: path, Failed: failed},
	}
	if err := f.events.Publish(ctx, event); err != nil {
		f.logger.Debug().
			Err(err).
			Str("path", path).
			Msg("Text body event not delivered")
	}
}

// ReadTextBody reads at most MaxTextBytes of path as text. A longer file ends with TextTruncatedMarker.
func ReadTextBody(ctx context.Context, source interfaces.ContentSource, path string) (string, error) {
	body, _, err := readTextBody(ctx, source, path)
	return body, err
}

func readTextBody(ctx context.Context, source interfaces.ContentSource, path string) (string, bool, error) {
	rc, _, err := source.Open(ctx, path)
	if err != nil {
		return "", false, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxTextBytes+1))
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	truncated := len(data) > MaxTextBytes
	if truncated {
		data = data[:MaxTextBytes]
	}
	body := strings.ToValidUTF8(string(data), "\uFFFD")
	if truncated {
		body += TextTruncatedMarker
	}
	return body, truncated, nil
}
