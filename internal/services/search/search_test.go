package search

import (
	"reflect"
	"testing"

	"github.com/ternarybob/tagview/internal/models"
)

func tags(names ...string) []models.TagEntry {
	entries := make([]models.TagEntry, len(names))
	for i, name := range names {
		entries[i] = models.TagEntry{Tag: name, Confidence: models.Confidence{Value: "100%"}}
	}
	return entries
}

func scenarioCorpus() *models.TagCorpus {
	return models.NewTagCorpus(
		&models.FileRecord{Path: "a.txt", Type: models.FileTypeText, Tags: tags("cat")},
		&models.FileRecord{Path: "b.png", Type: models.FileTypeImage, Tags: tags("dog"), Color: "blue"},
	)
}

func paths(records []*models.FileRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Path)
	}
	return out
}

func TestSearch_Scenarios(t *testing.T) {
	corpus := scenarioCorpus()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"single term", "cat", []string{"a.txt"}},
		{"conjunctive terms", "dog blue", []string{"b.png"}},
		{"terms on different records", "cat dog", []string{}},
		{"empty query", "", []string{}},
		{"whitespace query", "  \t\n ", []string{}},
		{"case insensitive query", "CAT", []string{"a.txt"}},
		{"substring of tag", "bl", []string{"b.png"}},
		{"extra whitespace between terms", "  dog \t  blue ", []string{"b.png"}},
		{"no match", "horse", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paths(Search(tt.query, corpus))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSearch_ConcatenatedTags(t *testing.T) {
	corpus := models.NewTagCorpus(
		&models.FileRecord{Path: "nyc.png", Type: models.FileTypeImage, Tags: tags("new", "york")},
		&models.FileRecord{Path: "other.png", Type: models.FileTypeImage, Tags: tags("york", "new")},
	)

	// Each query term is matched separately, so both records match "new york"
	got := paths(Search("new york", corpus))
	if !reflect.DeepEqual(got, []string{"nyc.png", "other.png"}) {
		t.Errorf("Search(\"new york\") = %v", got)
	}

	// Terms never contain whitespace, so none can straddle the space between two tags
	for _, query := range []string{"wy", "kn", "newyork"} {
		if got := paths(Search(query, corpus)); len(got) != 0 {
			t.Errorf("Search(%q) = %v, want none", query, got)
		}
	}
}

func TestSearch_CaseInsensitiveTags(t *testing.T) {
	corpus := models.NewTagCorpus(
		&models.FileRecord{Path: "x.png", Type: models.FileTypeImage, Tags: tags("Golden Retriever")},
	)

	for _, query := range []string{"golden", "RETRIEVER", "Golden Retriever", "den ret"} {
		if got := paths(Search(query, corpus)); !reflect.DeepEqual(got, []string{"x.png"}) {
			t.Errorf("Search(%q) = %v, want [x.png]", query, got)
		}
	}
}

func TestSearch_EveryWholeTagFindsItsRecord(t *testing.T) {
	corpus := models.NewTagCorpus(
		&models.FileRecord{Path: "1.png", Type: models.FileTypeImage, Tags: tags("tabby", "cat")},
		&models.FileRecord{Path: "2.txt", Type: models.FileTypeText, Tags: tags("invoice", "finance")},
		&models.FileRecord{Path: "3.glb", Type: models.FileTypeModel3D, Tags: tags("chair")},
	)

	corpus.Each(func(record *models.FileRecord) bool {
		for _, entry := range record.Tags {
			found := false
			for _, r := range Search(entry.Tag, corpus) {
				if r.Path == record.Path {
					found = true
				}
			}
			if !found {
				t.Errorf("tag %q did not find %s", entry.Tag, record.Path)
			}
		}
		return true
	})
}

func TestSearch_KeepsCorpusOrder(t *testing.T) {
	corpus := models.NewTagCorpus(
		&models.FileRecord{Path: "z.png", Type: models.FileTypeImage, Tags: tags("red")},
		&models.FileRecord{Path: "a.png", Type: models.FileTypeImage, Tags: tags("red")},
		&models.FileRecord{Path: "m.png", Type: models.FileTypeImage, Tags: tags("red")},
	)

	got := paths(Search("red", corpus))
	if !reflect.DeepEqual(got, []string{"z.png", "a.png", "m.png"}) {
		t.Errorf("Search order = %v", got)
	}
}

func TestSearch_ColorCountsAsTrailingTag(t *testing.T) {
	corpus := models.NewTagCorpus(
		&models.FileRecord{Path: "sky.png", Type: models.FileTypeImage, Tags: tags("sky"), Color: "Blue"},
		&models.FileRecord{Path: "sea.png", Type: models.FileTypeImage, Tags: tags("sea", "blue"), Color: "blue"},
		&models.FileRecord{Path: "plain.png", Type: models.FileTypeImage, Tags: tags("sky")},
	)

	if got := paths(Search("blue", corpus)); !reflect.DeepEqual(got, []string{"sky.png", "sea.png"}) {
		t.Errorf("Search(\"blue\") = %v", got)
	}
	// The color joins after the listed tags
	if got := paths(Search("sky blue", corpus)); !reflect.DeepEqual(got, []string{"sky.png"}) {
		t.Errorf("Search(\"sky blue\") = %v", got)
	}
	if got := paths(Search("y b", corpus)); !reflect.DeepEqual(got, []string{"sky.png"}) {
		t.Errorf("Search(\"y b\") = %v", got)
	}
}

func TestSearch_EmptyAndNilCorpus(t *testing.T) {
	if got := Search("cat", models.EmptyCorpus()); got == nil || len(got) != 0 {
		t.Errorf("empty corpus: got %v, want empty non-nil slice", got)
	}
	if got := Search("cat", nil); got == nil || len(got) != 0 {
		t.Errorf("nil corpus: got %v, want empty non-nil slice", got)
	}
}

func TestSearch_RecordWithoutTags(t *testing.T) {
	corpus := models.NewTagCorpus(&models.FileRecord{Path: "empty.txt", Type: models.FileTypeText})
	if got := Search("anything", corpus); len(got) != 0 {
		t.Errorf("untagged record matched: %v", paths(got))
	}
}

func TestSearch_DoesNotMutateCorpus(t *testing.T) {
	corpus := scenarioCorpus()
	before := paths(Search("a", corpus))
	_ = Search("dog", corpus)
	record, _ := corpus.Get("b.png")
	if len(record.Tags) != 1 || record.Tags[0].Tag != "dog" {
		t.Errorf("tags were modified: %+v", record.Tags)
	}
	if after := paths(Search("a", corpus)); !reflect.DeepEqual(before, after) {
		t.Errorf("repeat query differs: %v vs %v", before, after)
	}
}

func TestParseTerms(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"Cat", []string{"cat"}},
		{"  Dog\tBLUE\n", []string{"dog", "blue"}},
	}

	for _, tt := range tests {
		got := ParseTerms(tt.query)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTerms(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
