package interfaces

import (
	"context"

	"github.com/ternarybob/tagview/internal/scene"
)

// ProgressFunc receives byte counts while an asset downloads; total is -1 when unknown
type ProgressFunc func(loaded, total int64)

// AssetDecoder fetches and decodes a 3D asset into a scene graph
type AssetDecoder interface {
	// Decode blocks until the asset is decoded, ctx is cancelled or decoding fails.
	// progress may be called any number of times before Decode returns.
	Decode(ctx context.Context, path string, progress ProgressFunc) (*scene.Node, error)
}
