package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCorpus = `{
  "files": {
    "zebra.png": {"type": "image", "tags": [{"tag": "zebra", "confidence": "88.20%"}], "color": "white", "dimensions": "640x480"},
    "notes.txt": {"type": "text", "tags": [{"tag": "meeting", "confidence": 12.5}]},
    "chair/chair.glb": {"type": "3d", "tags": [], "thumbnail": "chair/thumbnail.png"},
    "apple.png": {"type": "image"}
  }
}`

func TestParseTagCorpus_KeepsDocumentOrder(t *testing.T) {
	corpus, err := ParseTagCorpus([]byte(sampleCorpus))
	require.NoError(t, err)

	assert.Equal(t, []string{"zebra.png", "notes.txt", "chair/chair.glb", "apple.png"}, corpus.Paths())
}

func TestParseTagCorpus_FillsRecords(t *testing.T) {
	corpus, err := ParseTagCorpus([]byte(sampleCorpus))
	require.NoError(t, err)

	zebra, ok := corpus.Get("zebra.png")
	require.True(t, ok)
	assert.Equal(t, "zebra.png", zebra.Path)
	assert.Equal(t, FileTypeImage, zebra.Type)
	assert.Equal(t, "white", zebra.Color)
	assert.Equal(t, "88.20%", zebra.Tags[0].Confidence.String())

	chair, ok := corpus.Get("chair/chair.glb")
	require.True(t, ok)
	assert.Equal(t, FileTypeModel3D, chair.Type)
	assert.Equal(t, "chair/thumbnail.png", chair.Thumbnail)

	apple, ok := corpus.Get("apple.png")
	require.True(t, ok)
	assert.NotNil(t, apple.Tags, "absent tags load as an empty list")
	assert.Empty(t, apple.Tags)
}

func TestParseTagCorpus_NumericConfidenceRoundTrips(t *testing.T) {
	corpus, err := ParseTagCorpus([]byte(sampleCorpus))
	require.NoError(t, err)

	notes, _ := corpus.Get("notes.txt")
	data, err := json.Marshal(notes.Tags[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"tag": "meeting", "confidence": 12.5}`, string(data))
}

func TestParseTagCorpus_LegacyImagesKey(t *testing.T) {
	corpus, err := ParseTagCorpus([]byte(`{"images": {"a.png": {"type": "image", "tags": []}}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, corpus.Len())
}

func TestParseTagCorpus_EmptyAndInvalid(t *testing.T) {
	corpus, err := ParseTagCorpus([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, corpus.Len())

	_, err = ParseTagCorpus([]byte(`{"files": [`))
	assert.Error(t, err)
}

func TestParseTagCorpus_UnknownTypeIsKept(t *testing.T) {
	corpus, err := ParseTagCorpus([]byte(`{"files": {"a.wav": {"type": "Audio", "tags": []}}}`))
	require.NoError(t, err)

	record, _ := corpus.Get("a.wav")
	assert.Equal(t, FileType("audio"), record.Type)
}

func TestNewTagCorpus_DuplicatePathReplacesInPlace(t *testing.T) {
	corpus := NewTagCorpus(
		&FileRecord{Path: "a", Type: FileTypeText},
		&FileRecord{Path: "b", Type: FileTypeText},
		&FileRecord{Path: "a", Type: FileTypeImage},
	)

	assert.Equal(t, []string{"a", "b"}, corpus.Paths())
	record, _ := corpus.Get("a")
	assert.Equal(t, FileTypeImage, record.Type)
}

func TestTagCorpus_NilIsEmpty(t *testing.T) {
	var corpus *TagCorpus

	assert.Equal(t, 0, corpus.Len())
	_, ok := corpus.Get("x")
	assert.False(t, ok)
	assert.Empty(t, corpus.Paths())
}

func TestParseFileType(t *testing.T) {
	tests := []struct {
		input   string
		want    FileType
		wantErr bool
	}{
		{"image", FileTypeImage, false},
		{"TEXT", FileTypeText, false},
		{"3d", FileTypeModel3D, false},
		{"model3d", FileTypeModel3D, false},
		{"video", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFileType(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		assert.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}
