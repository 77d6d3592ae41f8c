package viewer

import (
	"time"

	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/metrics"
)

// renderLoop is the frame-scheduling token of a Ready session
type renderLoop struct {
	stop    chan struct{}
	done    chan struct{}
	stopped bool
}

// startLoopLocked starts rendering s every frame interval. Caller holds c.mu.
func (c *Controller) startLoopLocked(s *Session) {
	loop := &renderLoop{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.loop = loop
	c.activeLoops++
	metrics.RenderLoopsActive.Inc()

	c.workers.Add(1)
	common.SafeGo(c.logger, "renderLoop", func() {
		defer c.workers.Done()
		defer close(loop.done)

		ticker := time.NewTicker(c.frameInterval)
		defer ticker.Stop()

		for {
			select {
			case <-loop.stop:
				return
			case <-ticker.C:
				if !c.renderFrame(s, loop) {
					return
				}
			}
		}
	})
}

// renderFrame draws one frame. It returns false once the loop has been stopped.
func (c *Controller) renderFrame(s *Session, loop *renderLoop) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Checked under the lock: after stopLoopLocked returns no further frame is drawn
	if loop.stopped {
		return false
	}

	s.Controls.Update()
	if err := s.Renderer.Render(s.Scene, s.Camera); err != nil {
		c.logger.Debug().
			Err(err).
			Str("path", s.Path).
			Msg("Frame render failed")
		return true
	}
	s.frames++
	return true
}

// stopLoopLocked signals the loop to exit. Caller holds c.mu, so the loop goroutine may
// still be waiting for the lock; it sees stopped and returns without drawing.
func (c *Controller) stopLoopLocked(s *Session) {
	if s.loop == nil {
		return
	}
	if !s.loop.stopped {
		s.loop.stopped = true
		close(s.loop.stop)
		c.activeLoops--
		metrics.RenderLoopsActive.Dec()
	}
	s.loop = nil
}
