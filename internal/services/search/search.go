package search

import (
	"strings"

	"github.com/ternarybob/tagview/internal/models"
)

// Search returns every record whose tags satisfy all terms of query, in corpus order.
//
// The query is lower-cased and split on runs of whitespace. A term matches a record when
// it is a substring of one of the record's lower-cased tags, or of all the record's
// lower-cased tags joined by single spaces. Terms come from splitting on whitespace, so
// a term found in the joined form always lies inside one tag and both checks agree.
//
// A record's color counts as one more tag after its listed tags, since the tagger
// always labels images with their dominant color.
//
// An empty or whitespace-only query, or an empty corpus, yields an empty result.
func Search(query string, corpus *models.TagCorpus) []*models.FileRecord {
	return search(ParseTerms(query), corpus, nil)
}

// ParseTerms lower-cases query and splits it into whitespace-separated terms
func ParseTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Matches reports whether record satisfies every term. No terms never match.
func Matches(record *models.FileRecord, terms []string) bool {
	if record == nil || len(terms) == 0 {
		return false
	}

	tags := matchTags(record)
	joined := strings.Join(tags, " ")

	for _, term := range terms {
		if !termMatches(term, tags, joined) {
			return false
		}
	}
	return true
}

// matchTags returns the lower-cased tags in order, followed by the color when no tag already names it
func matchTags(record *models.FileRecord) []string {
	tags := make([]string, 0, len(record.Tags)+1)
	for _, entry := range record.Tags {
		tags = append(tags, strings.ToLower(entry.Tag))
	}

	color := strings.ToLower(strings.TrimSpace(record.Color))
	if color == "" {
		return tags
	}
	for _, tag := range tags {
		if tag == color {
			return tags
		}
	}
	return append(tags, color)
}

func termMatches(term string, tags []string, joined string) bool {
	for _, tag := range tags {
		if strings.Contains(tag, term) {
			return true
		}
	}
	return strings.Contains(joined, term)
}

// search runs the term match over corpus, skipping records whose type is not in types
// when types is non-empty
func search(terms []string, corpus *models.TagCorpus, types []models.FileType) []*models.FileRecord {
	results := []*models.FileRecord{}
	if len(terms) == 0 || corpus.Len() == 0 {
		return results
	}

	corpus.Each(func(record *models.FileRecord) bool {
		if len(types) > 0 && !containsType(types, record.Type) {
			return true
		}
		if Matches(record, terms) {
			results = append(results, record)
		}
		return true
	})
	return results
}

func containsType(types []models.FileType, t models.FileType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
