package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FileType identifies what kind of file a corpus record describes
type FileType string

const (
	FileTypeImage   FileType = "image"
	FileTypeText    FileType = "text"
	FileTypeModel3D FileType = "model3d"
)

// ParseFileType normalises a corpus type string. The tagger writes "3d" for models.
func ParseFileType(s string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image":
		return FileTypeImage, nil
	case "text":
		return FileTypeText, nil
	case "3d", "model3d":
		return FileTypeModel3D, nil
	default:
		return "", fmt.Errorf("unknown file type: %q", s)
	}
}

// UnmarshalJSON accepts every spelling ParseFileType does. Unknown types are kept
// lower-cased so one odd record does not make the whole corpus unreadable.
func (t *FileType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("file type must be a string: %w", err)
	}
	parsed, err := ParseFileType(s)
	if err != nil {
		*t = FileType(strings.ToLower(strings.TrimSpace(s)))
		return nil
	}
	*t = parsed
	return nil
}

// Confidence is an opaque display value: the tagger writes "92.10%" strings,
// hand-edited corpora sometimes carry plain numbers. It is never used for matching.
type Confidence struct {
	Value   string
	Numeric bool
}

// String returns the display form
func (c Confidence) String() string {
	return c.Value
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Confidence{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Confidence{Value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("confidence must be a string or number: %w", err)
	}
	*c = Confidence{Value: n.String(), Numeric: true}
	return nil
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	if c.Numeric {
		return []byte(c.Value), nil
	}
	return json.Marshal(c.Value)
}

// TagEntry is one label attached to a file. Tags within a record need not be unique.
type TagEntry struct {
	Tag        string     `json:"tag"`
	Confidence Confidence `json:"confidence"`
}

// FileRecord describes one file in the corpus. Path is the corpus key.
type FileRecord struct {
	Path      string     `json:"path"`
	Type      FileType   `json:"type"`
	Tags      []TagEntry `json:"tags"`
	Color     string     `json:"color,omitempty"`     // image only
	Thumbnail string     `json:"thumbnail,omitempty"` // model3d only, path into the content root

	// Informational fields written by the tagger
	Dimensions   string `json:"dimensions,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	LastAnalyzed string `json:"last_analyzed,omitempty"`
}
