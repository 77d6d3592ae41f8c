package interfaces

import (
	"context"

	"github.com/ternarybob/tagview/internal/models"
)

// SearchOptions configures search behavior
type SearchOptions struct {
	// Limit maximum number of results (0 = no limit)
	Limit int

	// Offset for pagination (number of results to skip)
	Offset int

	// Types keeps only records of these file types (empty = all)
	Types []models.FileType
}

// CorpusProvider exposes the currently loaded tag corpus
type CorpusProvider interface {
	// Corpus returns the loaded corpus, never nil
	Corpus() *models.TagCorpus
}

// SearchService provides tag search over the corpus
type SearchService interface {
	// Search returns matching records in corpus order
	Search(ctx context.Context, query string, opts SearchOptions) ([]*models.FileRecord, error)

	// GetByPath retrieves a single record by its corpus path
	GetByPath(ctx context.Context, path string) (*models.FileRecord, error)
}
