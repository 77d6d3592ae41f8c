package interfaces

import (
	"context"

	"github.com/ternarybob/tagview/internal/models"
)

// ViewerService owns the single 3D preview session
type ViewerService interface {
	// Open replaces any current session with one for path and starts decoding it
	Open(ctx context.Context, path string) (models.ViewerSnapshot, error)

	// Close tears down the current session, if any
	Close() models.ViewerSnapshot

	// Resize changes the hosting surface size
	Resize(width, height int) error

	// Snapshot returns the current session state
	Snapshot() models.ViewerSnapshot
}
