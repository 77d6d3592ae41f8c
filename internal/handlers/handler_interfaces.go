package handlers

import "github.com/ternarybob/tagview/internal/models"

// DescriptorProjector turns corpus records into display descriptors.
type DescriptorProjector interface {
	Project(record *models.FileRecord) models.PreviewDescriptor
}
