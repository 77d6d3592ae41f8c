package scene

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrRendererDisposed is returned when drawing with a disposed renderer
var ErrRendererDisposed = errors.New("renderer disposed")

// Renderer draws a scene from a camera onto its surface
type Renderer interface {
	SetSize(width, height int)
	Render(scene *Scene, camera *PerspectiveCamera) error
	Dispose()
}

// RendererFactory binds a new renderer to a surface
type RendererFactory func(surface *Surface) (Renderer, error)

// HeadlessRenderer counts frames instead of drawing them. It stands in for the GPU
// toolkit on the server and in tests.
type HeadlessRenderer struct {
	mu       sync.Mutex
	width    int
	height   int
	frames   atomic.Int64
	disposed atomic.Bool

	lastMeshes int
}

// NewHeadlessRenderer matches RendererFactory
func NewHeadlessRenderer(surface *Surface) (Renderer, error) {
	w, h := surface.Size()
	return &HeadlessRenderer{width: w, height: h}, nil
}

func (r *HeadlessRenderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

// Size returns the current viewport
func (r *HeadlessRenderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *HeadlessRenderer) Render(scene *Scene, camera *PerspectiveCamera) error {
	if r.disposed.Load() {
		return ErrRendererDisposed
	}
	meshes := 0
	if scene != nil {
		meshes = scene.Root.MeshCount()
	}
	r.mu.Lock()
	r.lastMeshes = meshes
	r.mu.Unlock()
	r.frames.Add(1)
	return nil
}

// Frames returns the number of frames rendered
func (r *HeadlessRenderer) Frames() int64 { return r.frames.Load() }

// LastMeshCount returns how many meshes the most recent frame contained
func (r *HeadlessRenderer) LastMeshCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastMeshes
}

func (r *HeadlessRenderer) Dispose() { r.disposed.Store(true) }

func (r *HeadlessRenderer) Disposed() bool { return r.disposed.Load() }
