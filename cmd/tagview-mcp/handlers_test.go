package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/models"
	"github.com/ternarybob/tagview/internal/services/content"
	"github.com/ternarybob/tagview/internal/services/search"
)

type staticCorpus struct {
	corpus *models.TagCorpus
}

func (s *staticCorpus) Corpus() *models.TagCorpus { return s.corpus }

func newCall(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func testSearch() *search.Service {
	corpus := models.NewTagCorpus(
		&models.FileRecord{Path: "a.png", Type: models.FileTypeImage, Tags: []models.TagEntry{{Tag: "cat"}}, Color: "red"},
		&models.FileRecord{Path: "b.png", Type: models.FileTypeImage, Tags: []models.TagEntry{{Tag: "dog"}}, Color: "blue"},
		&models.FileRecord{Path: "notes.txt", Type: models.FileTypeText, Tags: []models.TagEntry{{Tag: "dog"}}},
	)
	return search.NewService(&staticCorpus{corpus: corpus}, arbor.NewLogger(), "mcp")
}

func TestHandleSearchFiles(t *testing.T) {
	handler := handleSearchFiles(testSearch(), arbor.NewLogger())

	tests := []struct {
		name     string
		args     map[string]any
		contains []string
		excludes []string
	}{
		{"conjunctive", map[string]any{"query": "dog blue"}, []string{"(1 results)", "`b.png`"}, []string{"notes.txt"}},
		{"type filter", map[string]any{"query": "dog", "type": "text"}, []string{"`notes.txt`"}, []string{"b.png"}},
		{"no match", map[string]any{"query": "zebra"}, []string{"No results found."}, nil},
		{"missing query", map[string]any{}, []string{"query parameter is required"}, nil},
		{"bad type", map[string]any{"query": "dog", "type": "video"}, []string{"Error:"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), newCall(tt.args))
			require.NoError(t, err)

			text := resultText(t, result)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, text, unwanted)
			}
		})
	}
}

func TestHandleGetFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("buy milk"), 0o644))
	source, err := content.NewFileSource(dir, arbor.NewLogger())
	require.NoError(t, err)

	handler := handleGetFile(testSearch(), source, arbor.NewLogger())

	result, err := handler(context.Background(), newCall(map[string]any{"path": "notes.txt"}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "# notes.txt")
	assert.Contains(t, text, "buy milk")

	result, err = handler(context.Background(), newCall(map[string]any{"path": "b.png"}))
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, "**Color:** blue (#0000ff)")
	assert.NotContains(t, text, "## Content")

	result, err = handler(context.Background(), newCall(map[string]any{"path": "missing.png"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "File not found")
}

func TestHandleGetFile_UnreadableBody(t *testing.T) {
	source, err := content.NewFileSource(t.TempDir(), arbor.NewLogger())
	require.NoError(t, err)

	handler := handleGetFile(testSearch(), source, arbor.NewLogger())
	result, err := handler(context.Background(), newCall(map[string]any{"path": "notes.txt"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Error loading file content")
}
