package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/tagview/internal/models"
	"github.com/ternarybob/tagview/internal/services/preview"
)

// formatSearchResults formats matching records as a markdown list
func formatSearchResults(query string, records []*models.FileRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results for \"%s\" (%d results)\n\n", query, len(records)))

	if len(records) == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	for i, record := range records {
		sb.WriteString(fmt.Sprintf("%d. `%s` (%s) - %s\n", i+1, record.Path, record.Type, formatTags(record.Tags)))
	}

	return sb.String()
}

// formatFile formats a single record, with its text body when one is given
func formatFile(record *models.FileRecord, body string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", record.Path))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", record.Type))
	sb.WriteString(fmt.Sprintf("**Tags:** %s\n", formatTags(record.Tags)))

	if record.Color != "" {
		sb.WriteString(fmt.Sprintf("**Color:** %s (%s)\n", record.Color, preview.ColorHex(record.Color)))
	}
	if record.Thumbnail != "" {
		sb.WriteString(fmt.Sprintf("**Thumbnail:** %s\n", record.Thumbnail))
	}
	if record.Dimensions != "" {
		sb.WriteString(fmt.Sprintf("**Dimensions:** %s\n", record.Dimensions))
	}
	if record.FileSize > 0 {
		sb.WriteString(fmt.Sprintf("**Size:** %d bytes\n", record.FileSize))
	}
	if record.LastAnalyzed != "" {
		sb.WriteString(fmt.Sprintf("**Last analyzed:** %s\n", record.LastAnalyzed))
	}

	if record.Type == models.FileTypeText {
		sb.WriteString("\n## Content\n\n```\n")
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")
	}

	return sb.String()
}

func formatTags(tags []models.TagEntry) string {
	if len(tags) == 0 {
		return "(no tags)"
	}
	parts := make([]string, 0, len(tags))
	for _, entry := range tags {
		parts = append(parts, fmt.Sprintf("%s %s", entry.Tag, entry.Confidence))
	}
	return strings.Join(parts, ", ")
}
