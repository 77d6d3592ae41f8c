package models

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TagCorpus is the read-only collection of file records, iterated in document order.
// It is built once and never mutated; a reload replaces the whole value.
type TagCorpus struct {
	records []*FileRecord
	byPath  map[string]*FileRecord
}

// corpusDocument is the on-disk shape. Older tagger output used "images" as the key.
type corpusDocument struct {
	Files  *orderedmap.OrderedMap[string, *FileRecord] `json:"files"`
	Images *orderedmap.OrderedMap[string, *FileRecord] `json:"images"`
}

// NewTagCorpus builds a corpus from records in the given order.
// A later record with an already-seen path replaces the earlier one in place.
func NewTagCorpus(records ...*FileRecord) *TagCorpus {
	c := &TagCorpus{
		records: make([]*FileRecord, 0, len(records)),
		byPath:  make(map[string]*FileRecord, len(records)),
	}
	for _, record := range records {
		c.add(record)
	}
	return c
}

// EmptyCorpus returns a corpus with no records
func EmptyCorpus() *TagCorpus {
	return NewTagCorpus()
}

// ParseTagCorpus decodes a tags document, keeping the key order of the "files" object
func ParseTagCorpus(data []byte) (*TagCorpus, error) {
	var doc corpusDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tag corpus: %w", err)
	}

	files := doc.Files
	if files == nil {
		files = doc.Images
	}

	corpus := EmptyCorpus()
	if files == nil {
		return corpus, nil
	}

	for pair := files.Oldest(); pair != nil; pair = pair.Next() {
		record := pair.Value
		if record == nil {
			continue
		}
		record.Path = pair.Key
		corpus.add(record)
	}
	return corpus, nil
}

func (c *TagCorpus) add(record *FileRecord) {
	if record.Tags == nil {
		record.Tags = []TagEntry{}
	}
	if existing, ok := c.byPath[record.Path]; ok {
		for i, r := range c.records {
			if r == existing {
				c.records[i] = record
				break
			}
		}
	} else {
		c.records = append(c.records, record)
	}
	c.byPath[record.Path] = record
}

// Len returns the number of records; a nil corpus is empty
func (c *TagCorpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Get looks a record up by path
func (c *TagCorpus) Get(path string) (*FileRecord, bool) {
	if c == nil {
		return nil, false
	}
	record, ok := c.byPath[path]
	return record, ok
}

// Each calls fn for every record in corpus order until fn returns false
func (c *TagCorpus) Each(fn func(record *FileRecord) bool) {
	if c == nil {
		return
	}
	for _, record := range c.records {
		if !fn(record) {
			return
		}
	}
}

// Paths returns every path in corpus order
func (c *TagCorpus) Paths() []string {
	paths := make([]string, 0, c.Len())
	c.Each(func(record *FileRecord) bool {
		paths = append(paths, record.Path)
		return true
	})
	return paths
}

// CountByType returns how many records of each type the corpus holds
func (c *TagCorpus) CountByType() map[FileType]int {
	counts := make(map[FileType]int)
	c.Each(func(record *FileRecord) bool {
		counts[record.Type]++
		return true
	})
	return counts
}
