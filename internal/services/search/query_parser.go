package search

import (
	"strings"

	"github.com/ternarybob/tagview/internal/models"
)

// ParsedQuery is a raw query split into match terms and qualifiers
type ParsedQuery struct {
	// Terms are the lower-cased words every result must match
	Terms []string

	// Types restricts results to these file types (from type: qualifiers)
	Types []models.FileType
}

// ParseQuery extracts type: qualifiers and returns the remaining terms.
// Supported qualifiers:
//
//	type:image   type:text   type:3d (or type:model3d)
//
// Repeating the qualifier widens the filter: "type:image type:text cat".
// A qualifier with an unknown value is kept as an ordinary term.
func ParseQuery(query string) ParsedQuery {
	var parsed ParsedQuery

	for _, token := range ParseTerms(query) {
		value, ok := strings.CutPrefix(token, "type:")
		if !ok || value == "" {
			parsed.Terms = append(parsed.Terms, token)
			continue
		}

		fileType, err := models.ParseFileType(value)
		if err != nil {
			parsed.Terms = append(parsed.Terms, token)
			continue
		}
		if !containsType(parsed.Types, fileType) {
			parsed.Types = append(parsed.Types, fileType)
		}
	}

	return parsed
}
