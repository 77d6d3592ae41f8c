package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/metrics"
	"github.com/ternarybob/tagview/internal/models"
)

// ErrRecordNotFound is returned by GetByPath for paths outside the corpus
var ErrRecordNotFound = errors.New("record not found")

// Service implements SearchService over the corpus provider's current corpus.
// Supports:
// - Conjunctive terms: "dog blue" -> records matching both
// - Type qualifiers: "type:image dog" -> only image records
// - Pagination through SearchOptions.Limit/Offset, corpus order kept
type Service struct {
	corpus  interfaces.CorpusProvider
	logger  arbor.ILogger
	surface string
}

// NewService creates a search service. surface labels metrics ("http", "mcp").
func NewService(corpus interfaces.CorpusProvider, logger arbor.ILogger, surface string) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		corpus:  corpus,
		logger:  logger,
		surface: surface,
	}
}

// Search evaluates query against the corpus
func (s *Service) Search(ctx context.Context, query string, opts interfaces.SearchOptions) ([]*models.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := metrics.NewTimer()
	parsed := ParseQuery(query)

	types := parsed.Types
	if len(opts.Types) > 0 {
		types = intersectTypes(types, opts.Types)
		if types == nil {
			s.logSearchCompletion(query, 0)
			metrics.RecordSearch(s.surface, 0, timer.Duration())
			return []*models.FileRecord{}, nil
		}
	}

	s.logger.Debug().
		Str("original_query", query).
		Strs("terms", parsed.Terms).
		Int("type_filters", len(types)).
		Msg("Parsed query")

	results := search(parsed.Terms, s.corpus.Corpus(), types)
	metrics.RecordSearch(s.surface, len(results), timer.Duration())

	results = paginate(results, opts.Offset, opts.Limit)
	s.logSearchCompletion(query, len(results))

	return results, nil
}

// GetByPath retrieves a single record by its corpus path
func (s *Service) GetByPath(ctx context.Context, path string) (*models.FileRecord, error) {
	record, ok := s.corpus.Corpus().Get(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrRecordNotFound)
	}
	return record, nil
}

// logSearchCompletion logs the final search results count
func (s *Service) logSearchCompletion(query string, resultCount int) {
	s.logger.Debug().
		Str("query", query).
		Int("results", resultCount).
		Msg("Tag search completed")
}

// intersectTypes combines qualifier types with option types. Nil means nothing can match;
// an empty qualifier list defers to the options.
func intersectTypes(fromQuery, fromOpts []models.FileType) []models.FileType {
	if len(fromQuery) == 0 {
		return fromOpts
	}
	var out []models.FileType
	for _, t := range fromQuery {
		if containsType(fromOpts, t) {
			out = append(out, t)
		}
	}
	return out
}

func paginate(results []*models.FileRecord, offset, limit int) []*models.FileRecord {
	if offset > 0 {
		if offset >= len(results) {
			return []*models.FileRecord{}
		}
		results = results[offset:]
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
