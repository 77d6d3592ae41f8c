package corpus

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/metrics"
	"github.com/ternarybob/tagview/internal/models"
)

// Service loads the tag corpus from the content source and serves it read-only.
// A failed load leaves the corpus empty; it is never fatal.
type Service struct {
	source   interfaces.ContentSource
	tagsFile string
	events   interfaces.EventService
	logger   arbor.ILogger

	mu     sync.RWMutex
	corpus *models.TagCorpus
}

// NewService creates a corpus service. events may be nil.
func NewService(source interfaces.ContentSource, tagsFile string, events interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		source:   source,
		tagsFile: tagsFile,
		events:   events,
		logger:   logger,
		corpus:   models.EmptyCorpus(),
	}
}

// Corpus returns the loaded corpus, never nil
func (s *Service) Corpus() *models.TagCorpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// Load reads and parses the tags document, replacing the current corpus.
// The returned error is informational: on failure the corpus is empty and the service stays usable.
func (s *Service) Load(ctx context.Context) error {
	corpus, err := s.read(ctx)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("root", s.source.Root()).
			Str("tags_file", s.tagsFile).
			Msg("Tag corpus unavailable, search will return no results")
		corpus = models.EmptyCorpus()
	}

	s.mu.Lock()
	s.corpus = corpus
	s.mu.Unlock()

	metrics.CorpusRecords.Set(float64(corpus.Len()))

	counts := corpus.CountByType()
	s.logger.Info().
		Int("records", corpus.Len()).
		Int("images", counts[models.FileTypeImage]).
		Int("texts", counts[models.FileTypeText]).
		Int("models", counts[models.FileTypeModel3D]).
		Msg("Tag corpus loaded")

	if s.events != nil {
		event := interfaces.Event{
			Type: interfaces.EventCorpusLoaded,
			Payload: interfaces.CorpusLoadedPayload{
				Records: corpus.Len(),
				Empty:   corpus.Len() == 0,
			},
		}
		if pubErr := s.events.PublishSync(ctx, event); pubErr != nil {
			s.logger.Warn().Err(pubErr).Msg("Corpus loaded handlers failed")
		}
	}

	return err
}

func (s *Service) read(ctx context.Context) (*models.TagCorpus, error) {
	rc, _, err := s.source.Open(ctx, s.tagsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open tags document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags document: %w", err)
	}

	return models.ParseTagCorpus(data)
}
