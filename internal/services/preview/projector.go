package preview

import (
	"context"

	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/models"
)

// BodyPending is the Body of a text descriptor whose content has not arrived yet
const BodyPending = "Loading..."

// Projector turns corpus records into preview descriptors
type Projector struct {
	cache   interfaces.TextBodyStore
	fetcher interfaces.TextBodyFetcher
}

// NewProjector creates a projector reading bodies from cache. When fetcher is non-nil,
// projecting a text record whose body is missing also requests it.
func NewProjector(cache interfaces.TextBodyStore, fetcher interfaces.TextBodyFetcher) *Projector {
	return &Projector{cache: cache, fetcher: fetcher}
}

// Project builds the descriptor for one record
func (p *Projector) Project(record *models.FileRecord) models.PreviewDescriptor {
	desc := models.PreviewDescriptor{
		Path:         record.Path,
		Type:         record.Type,
		Tags:         append([]models.TagEntry{}, record.Tags...),
		Dimensions:   record.Dimensions,
		FileSize:     record.FileSize,
		LastAnalyzed: record.LastAnalyzed,
	}

	switch record.Type {
	case models.FileTypeImage:
		if record.Color != "" {
			desc.ColorName = record.Color
			desc.ColorHex = ColorHex(record.Color)
		}
	case models.FileTypeModel3D:
		if record.Thumbnail != "" {
			desc.Thumbnail = record.Thumbnail
		} else {
			desc.Placeholder = true
		}
	case models.FileTypeText:
		if body, ok := p.cache.Get(record.Path); ok {
			desc.Body = body
		} else {
			desc.Body = BodyPending
			desc.BodyPending = true
			if p.fetcher != nil {
				p.fetcher.Request(context.Background(), record.Path)
			}
		}
	}

	return desc
}

// ProjectAll projects records in order
func (p *Projector) ProjectAll(records []*models.FileRecord) []models.PreviewDescriptor {
	out := make([]models.PreviewDescriptor, 0, len(records))
	for _, record := range records {
		out = append(out, p.Project(record))
	}
	return out
}
