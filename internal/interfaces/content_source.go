package interfaces

import (
	"context"
	"errors"
	"io"
)

// ErrContentNotFound is returned when a path does not exist under the content root
var ErrContentNotFound = errors.New("content not found")

// ErrInvalidPath is returned for empty paths and paths that escape the content root
var ErrInvalidPath = errors.New("invalid content path")

// ContentSource reads files relative to the content root (directory, HTTP or S3)
type ContentSource interface {
	// Open returns a reader for path and its size in bytes (-1 when unknown)
	Open(ctx context.Context, path string) (io.ReadCloser, int64, error)

	// Root describes where content is read from, for logs
	Root() string
}
