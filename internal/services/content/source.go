// Package content reads corpus files from a directory, an HTTP origin or an S3 bucket.
package content

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
)

// NewSource picks the content source implementation from the content root scheme:
// s3://bucket/prefix, http(s)://host/prefix, or a filesystem directory.
func NewSource(ctx context.Context, cfg common.ContentConfig, logger arbor.ILogger) (interfaces.ContentSource, error) {
	root := strings.TrimSpace(cfg.Root)

	switch {
	case strings.HasPrefix(root, "s3://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(root, "s3://"))
		if bucket == "" {
			return nil, fmt.Errorf("s3 content root %q has no bucket", root)
		}
		return NewS3Source(ctx, bucket, prefix, cfg.S3, logger)
	case strings.HasPrefix(root, "http://"), strings.HasPrefix(root, "https://"):
		return NewHTTPSource(root, WithTimeout(cfg.RequestTimeout), WithLogger(logger)), nil
	default:
		return NewFileSource(root, logger)
	}
}

// cleanPath normalises a corpus path and rejects anything escaping the root
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	cleaned := path.Clean("/" + p)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("empty content path: %w", interfaces.ErrInvalidPath)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("content path %q escapes the content root: %w", p, interfaces.ErrInvalidPath)
		}
	}
	return cleaned, nil
}

func splitBucket(s string) (bucket, prefix string) {
	s = strings.Trim(s, "/")
	if i := strings.Index(s, "/"); i >= 0 {
		return s[:i], strings.Trim(s[i+1:], "/")
	}
	return s, ""
}
