package search

import (
	"reflect"
	"testing"

	"github.com/ternarybob/tagview/internal/models"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantTerms []string
		wantTypes []models.FileType
	}{
		{
			name:      "plain terms",
			query:     "dog blue",
			wantTerms: []string{"dog", "blue"},
		},
		{
			name:      "image qualifier",
			query:     "type:image dog",
			wantTerms: []string{"dog"},
			wantTypes: []models.FileType{models.FileTypeImage},
		},
		{
			name:      "3d alias and upper case",
			query:     "TYPE:3D chair",
			wantTerms: []string{"chair"},
			wantTypes: []models.FileType{models.FileTypeModel3D},
		},
		{
			name:      "repeated qualifiers widen the filter",
			query:     "type:image type:text type:image cat",
			wantTerms: []string{"cat"},
			wantTypes: []models.FileType{models.FileTypeImage, models.FileTypeText},
		},
		{
			name:      "unknown value stays a term",
			query:     "type:video cat",
			wantTerms: []string{"type:video", "cat"},
		},
		{
			name:      "empty value stays a term",
			query:     "type: cat",
			wantTerms: []string{"type:", "cat"},
		},
		{
			name:      "qualifier only",
			query:     "type:text",
			wantTypes: []models.FileType{models.FileTypeText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.query)
			if !reflect.DeepEqual(got.Terms, tt.wantTerms) {
				t.Errorf("Terms = %v, want %v", got.Terms, tt.wantTerms)
			}
			if !reflect.DeepEqual(got.Types, tt.wantTypes) {
				t.Errorf("Types = %v, want %v", got.Types, tt.wantTypes)
			}
		})
	}
}
