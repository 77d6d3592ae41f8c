package scene

import (
	"fmt"
	"sort"
	"sync"
)

// ResizeFunc is called with the new surface size
type ResizeFunc func(width, height int)

// Surface is the drawable area hosting a renderer. It notifies observers when resized.
type Surface struct {
	mu        sync.Mutex
	width     int
	height    int
	observers map[int]ResizeFunc
	nextID    int
}

// NewSurface creates a surface of the given size
func NewSurface(width, height int) *Surface {
	return &Surface{
		width:     width,
		height:    height,
		observers: make(map[int]ResizeFunc),
	}
}

// Size returns the current width and height
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Aspect returns width/height, 1 for a degenerate surface
func (s *Surface) Aspect() float64 {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return 1
	}
	return float64(w) / float64(h)
}

// Resize changes the size and notifies observers synchronously in registration order
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}

	s.mu.Lock()
	if s.width == width && s.height == height {
		s.mu.Unlock()
		return nil
	}
	s.width, s.height = width, height
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	callbacks := make([]ResizeFunc, len(ids))
	for i, id := range ids {
		callbacks[i] = s.observers[id]
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(width, height)
	}
	return nil
}

// Observe registers fn for resize notifications. The returned function detaches it and is idempotent.
func (s *Surface) Observe(fn ResizeFunc) (unobserve func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// ObserverCount returns the number of attached observers
func (s *Surface) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}
