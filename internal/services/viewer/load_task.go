package viewer

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/scene"
)

// UpdateKind tags a LoadUpdate
type UpdateKind int

const (
	UpdateProgress UpdateKind = iota
	UpdateReady
	UpdateFailed
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateProgress:
		return "progress"
	case UpdateReady:
		return "ready"
	case UpdateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadUpdate is one message from a load task, stamped with the generation it was started for
type LoadUpdate struct {
	Generation uint64
	Kind       UpdateKind

	// Progress
	Loaded int64
	Total  int64

	// Ready
	Root *scene.Node

	// Failed
	Err error
}

// LoadTask decodes one asset on its own goroutine and reports through Updates.
// Exactly one terminal update (Ready or Failed) is sent unless the task is cancelled first;
// the channel is closed when the task ends.
type LoadTask struct {
	Generation uint64
	Path       string
	Started    time.Time

	updates chan LoadUpdate
	cancel  context.CancelFunc
	ctx     context.Context
}

// StartLoadTask begins decoding path
func StartLoadTask(parent context.Context, generation uint64, path string, decoder interfaces.AssetDecoder, logger arbor.ILogger) *LoadTask {
	ctx, cancel := context.WithCancel(parent)
	task := &LoadTask{
		Generation: generation,
		Path:       path,
		Started:    time.Now(),
		updates:    make(chan LoadUpdate, 16),
		cancel:     cancel,
		ctx:        ctx,
	}

	common.SafeGo(logger, "assetLoad", func() {
		defer close(task.updates)
		task.run(decoder)
	})

	return task
}

// Updates delivers progress and the terminal result
func (t *LoadTask) Updates() <-chan LoadUpdate { return t.updates }

// Cancel stops the decode; pending and future updates are dropped
func (t *LoadTask) Cancel() { t.cancel() }

// Cancelled reports whether Cancel was called
func (t *LoadTask) Cancelled() bool { return t.ctx.Err() != nil }

func (t *LoadTask) run(decoder interfaces.AssetDecoder) {
	root, err := decoder.Decode(t.ctx, t.Path, t.reportProgress)

	if t.ctx.Err() != nil {
		// Nobody will attach a late result
		if root != nil {
			root.Dispose()
		}
		return
	}

	update := LoadUpdate{Generation: t.Generation, Kind: UpdateReady, Root: root}
	if err != nil {
		update = LoadUpdate{Generation: t.Generation, Kind: UpdateFailed, Err: err}
	}

	select {
	case t.updates <- update:
	case <-t.ctx.Done():
		if root != nil {
			root.Dispose()
		}
	}
}

// reportProgress never blocks the decoder: when the buffer is full the update is
// skipped and a later one carries the newer count
func (t *LoadTask) reportProgress(loaded, total int64) {
	if t.ctx.Err() != nil {
		return
	}
	select {
	case t.updates <- LoadUpdate{Generation: t.Generation, Kind: UpdateProgress, Loaded: loaded, Total: total}:
	default:
	}
}
