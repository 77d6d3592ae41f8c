package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/metrics"
	"github.com/ternarybob/tagview/internal/models"
	"github.com/ternarybob/tagview/internal/scene"
)

// Fixed camera and lighting for every session
const (
	CameraFOV  = 75
	CameraNear = 0.1
	CameraFar  = 1000

	AmbientIntensity     = 0.6
	DirectionalIntensity = 0.8
)

// DirectionalLightPosition is where the key light shines from
var DirectionalLightPosition = scene.Vec3{X: 1, Y: 1, Z: 1}

// ErrEmptyPath is returned by Open when no asset path is given
var ErrEmptyPath = errors.New("asset path is required")

// Options configures a Controller
type Options struct {
	Surface         *scene.Surface
	RendererFactory scene.RendererFactory
	Decoder         interfaces.AssetDecoder
	Events          interfaces.EventService // optional
	Logger          arbor.ILogger
	FrameInterval   time.Duration
}

// Controller owns at most one Session. Every state transition happens under mu; load updates
// carry the generation they were started for and are dropped unless it is still current.
type Controller struct {
	surface       *scene.Surface
	newRenderer   scene.RendererFactory
	decoder       interfaces.AssetDecoder
	outbox        *eventOutbox // nil without an event service
	logger        arbor.ILogger
	frameInterval time.Duration

	mu          sync.Mutex
	generation  uint64
	session     *Session
	activeLoops int

	// render loops and update pumps
	workers sync.WaitGroup
}

// NewController creates a controller with no session
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = common.GetLogger()
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	newRenderer := opts.RendererFactory
	if newRenderer == nil {
		newRenderer = scene.NewHeadlessRenderer
	}
	surface := opts.Surface
	if surface == nil {
		surface = scene.NewSurface(800, 600)
	}

	c := &Controller{
		surface:       surface,
		newRenderer:   newRenderer,
		decoder:       opts.Decoder,
		logger:        logger,
		frameInterval: interval,
	}
	if opts.Events != nil {
		c.outbox = newEventOutbox(opts.Events, logger)
	}
	return c
}

// Open replaces any current session with one for path: the old session is torn down first,
// then the surface binding, camera and lights are built and the decode starts.
func (c *Controller) Open(ctx context.Context, path string) (models.ViewerSnapshot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return c.Snapshot(), ErrEmptyPath
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.teardownLocked(c.session, "replaced")
		c.session = nil
	}

	c.generation++
	s := &Session{
		ID:         uuid.New().String(),
		Generation: c.generation,
		Path:       path,
		State:      models.ViewerOpening,
		OpenedAt:   time.Now(),
	}
	c.session = s
	metrics.ViewerSessionsOpened.Inc()
	c.publishStateLocked(s)

	c.logger.Info().
		Str("path", path).
		Str("session_id", s.ID).
		Int64("generation", int64(s.Generation)).
		Msg("Opening 3D preview")

	if err := c.buildLocked(s); err != nil {
		c.failLocked(s, err)
		return c.snapshotLocked(), err
	}

	s.State = models.ViewerLoading
	c.publishStateLocked(s)

	// The decode outlives the request that asked for it; Close or the next Open cancels it
	s.task = StartLoadTask(context.WithoutCancel(ctx), s.Generation, path, c.decoder, c.logger)
	c.pumpLocked(s.task)

	return c.snapshotLocked(), nil
}

// buildLocked performs the synchronous Opening -> Loading work
func (c *Controller) buildLocked(s *Session) error {
	if c.decoder == nil {
		return fmt.Errorf("no asset decoder configured")
	}

	renderer, err := c.newRenderer(c.surface)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	width, height := c.surface.Size()
	renderer.SetSize(width, height)
	s.Renderer = renderer

	s.Scene = scene.NewScene()
	s.Scene.Ambient = &scene.AmbientLight{Color: scene.White, Intensity: AmbientIntensity}
	s.Scene.AddDirectional(&scene.DirectionalLight{
		Color:     scene.White,
		Intensity: DirectionalIntensity,
		Position:  DirectionalLightPosition,
	})

	s.Camera = scene.NewPerspectiveCamera(CameraFOV, c.surface.Aspect(), CameraNear, CameraFar)
	s.Camera.Position = scene.Vec3{X: 0, Y: 0, Z: fallbackDistance}
	s.Camera.LookAt(scene.Vec3{})
	s.Camera.UpdateProjectionMatrix()

	s.Controls = scene.NewOrbitControls(s.Camera)
	s.Controls.Target = scene.Vec3{}
	s.Controls.EnableDamping = true

	generation := s.Generation
	s.unobserve = c.surface.Observe(func(w, h int) {
		c.handleResize(generation, w, h)
	})

	return nil
}

// pumpLocked forwards task updates to apply until the task ends
func (c *Controller) pumpLocked(task *LoadTask) {
	c.workers.Add(1)
	common.SafeGo(c.logger, "assetLoadUpdates", func() {
		defer c.workers.Done()
		for update := range task.Updates() {
			c.apply(update)
		}
	})
}

// apply handles one load update. Updates for any generation other than the current
// Loading session are discarded; a discarded model is disposed so it cannot leak.
func (c *Controller) apply(update LoadUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.Generation != update.Generation || s.State != models.ViewerLoading {
		if update.Root != nil {
			update.Root.Dispose()
		}
		metrics.ViewerStaleUpdates.Inc()
		c.logger.Debug().
			Str("kind", update.Kind.String()).
			Int64("update_generation", int64(update.Generation)).
			Int64("current_generation", int64(c.generation)).
			Msg("Discarding stale load update")
		return
	}

	switch update.Kind {
	case UpdateProgress:
		c.progressLocked(s, update.Loaded, update.Total)
	case UpdateReady:
		c.readyLocked(s, update.Root)
	case UpdateFailed:
		c.failLocked(s, update.Err)
	}
}

// progressLocked records byte counts; the percentage only ever increases within a session
func (c *Controller) progressLocked(s *Session, loaded, total int64) {
	if loaded > s.loaded {
		s.loaded = loaded
	}
	if total > 0 {
		s.total = total
		pct := float64(loaded) / float64(total) * 100
		if pct > 100 {
			pct = 100
		}
		if pct > s.progress {
			s.progress = pct
		}
	}
	c.publishLocked(interfaces.EventViewerProgress, s)
}

func (c *Controller) readyLocked(s *Session, root *scene.Node) {
	if root == nil {
		c.failLocked(s, fmt.Errorf("decoder returned no scene"))
		return
	}

	s.Model = root
	s.Scene.Add(root)
	touched := ApplyHighlight(root, HighlightEmissive)
	framing := FrameModel(root, s.Camera, s.Controls)
	s.Framing = &framing

	s.progress = 100
	s.State = models.ViewerReady
	c.startLoopLocked(s)

	elapsed := time.Since(s.task.Started)
	s.task.Cancel()
	s.task = nil
	metrics.RecordSessionOutcome(metrics.OutcomeReady, elapsed)

	c.logger.Info().
		Str("path", s.Path).
		Int("meshes", root.MeshCount()).
		Int("materials", touched).
		Str("distance", fmt.Sprintf("%.3f", framing.Distance)).
		Dur("elapsed", elapsed).
		Msg("3D preview ready")

	c.publishStateLocked(s)
}

// failLocked moves s to Failed. Failed keeps only the path and message.
func (c *Controller) failLocked(s *Session, err error) {
	message := "failed to load model"
	if err != nil {
		message = err.Error()
	}

	var elapsed time.Duration
	if s.task != nil {
		elapsed = time.Since(s.task.Started)
	}
	c.releaseLocked(s)

	s.State = models.ViewerFailed
	s.err = message
	metrics.RecordSessionOutcome(metrics.OutcomeFailed, elapsed)

	c.logger.Warn().
		Str("path", s.Path).
		Str("error", message).
		Msg("3D preview failed")

	c.publishStateLocked(s)
}

// Close tears down the current session, if any
func (c *Controller) Close() models.ViewerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return c.snapshotLocked()
	}

	s := c.session
	c.teardownLocked(s, "closed")
	c.session = nil

	c.publishLocked(interfaces.EventViewerState, &Session{Generation: s.Generation, Path: s.Path, State: models.ViewerClosed})
	return c.snapshotLocked()
}

// teardownLocked releases everything s owns. A failed session has already released its resources.
func (c *Controller) teardownLocked(s *Session, reason string) {
	if s.State == models.ViewerLoading || s.State == models.ViewerOpening {
		metrics.RecordSessionOutcome(metrics.OutcomeCancelled, 0)
	}
	released := s.ownsResources()
	if released {
		c.releaseLocked(s)
	}
	s.State = models.ViewerClosed

	c.logger.Debug().
		Str("path", s.Path).
		Str("reason", reason).
		Bool("released", released).
		Int64("frames", s.frames).
		Msg("3D preview torn down")
}

// releaseLocked cancels the decode, stops the render loop, detaches the resize observer
// and disposes the model and renderer
func (c *Controller) releaseLocked(s *Session) {
	if s.task != nil {
		s.task.Cancel()
		s.task = nil
	}
	c.stopLoopLocked(s)
	if s.unobserve != nil {
		s.unobserve()
		s.unobserve = nil
	}
	if s.Model != nil {
		if s.Scene != nil {
			s.Scene.Remove(s.Model)
		}
		s.Model.Dispose()
		s.Model = nil
	}
	if s.Controls != nil {
		s.Controls.Dispose()
		s.Controls = nil
	}
	if s.Renderer != nil {
		s.Renderer.Dispose()
		s.Renderer = nil
	}
	s.Scene = nil
	s.Camera = nil
	s.Framing = nil
}

// Resize changes the hosting surface; the session's observer updates camera and viewport
func (c *Controller) Resize(width, height int) error {
	return c.surface.Resize(width, height)
}

func (c *Controller) handleResize(generation uint64, width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.Generation != generation || s.Camera == nil {
		return
	}
	s.Camera.Aspect = float64(width) / float64(height)
	s.Camera.UpdateProjectionMatrix()
	if s.Renderer != nil {
		s.Renderer.SetSize(width, height)
	}
}

// Snapshot returns the current session state
func (c *Controller) Snapshot() models.ViewerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() models.ViewerSnapshot {
	width, height := c.surface.Size()
	if c.session == nil {
		return models.ViewerSnapshot{
			Generation: c.generation,
			State:      models.ViewerClosed,
			Width:      width,
			Height:     height,
		}
	}
	return c.session.snapshot(width, height)
}

// ActiveLoops returns the number of render loops that may still draw a frame; never above one
func (c *Controller) ActiveLoops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLoops
}

// Shutdown closes the session, waits for background goroutines to exit and sends
// any queued events
func (c *Controller) Shutdown() {
	c.Close()
	c.workers.Wait()
	if c.outbox != nil {
		c.outbox.Close()
	}
}

// publishStateLocked announces a lifecycle transition. The event is built under mu and
// queued; the outbox publishes it later in order.
func (c *Controller) publishStateLocked(s *Session) {
	c.publishLocked(interfaces.EventViewerState, s)
}

func (c *Controller) publishLocked(eventType interfaces.EventType, s *Session) {
	if c.outbox == nil {
		return
	}
	width, height := c.surface.Size()
	c.outbox.push(interfaces.Event{Type: eventType, Payload: s.snapshot(width, height)})
}
