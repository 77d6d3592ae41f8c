package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
)

// FileSource serves content from a local directory
type FileSource struct {
	root   string
	logger arbor.ILogger
}

// NewFileSource creates a filesystem source. The directory does not have to exist yet.
func NewFileSource(root string, logger arbor.ILogger) (*FileSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content root %s: %w", root, err)
	}
	return &FileSource{root: abs, logger: logger}, nil
}

func (s *FileSource) Root() string { return s.root }

// Open opens path relative to the root
func (s *FileSource) Open(ctx context.Context, p string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	rel, err := cleanPath(p)
	if err != nil {
		return nil, 0, err
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%s: %w", p, interfaces.ErrContentNotFound)
		}
		return nil, 0, fmt.Errorf("failed to open %s: %w", p, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is a directory: %w", p, interfaces.ErrContentNotFound)
	}

	return f, info.Size(), nil
}
