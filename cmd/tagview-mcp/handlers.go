package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/models"
	"github.com/ternarybob/tagview/internal/services/preview"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleSearchFiles implements the search_files tool
func handleSearchFiles(searchService interfaces.SearchService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textResult("Error: query parameter is required"), nil
		}

		limit := request.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		opts := interfaces.SearchOptions{Limit: limit}
		if typeFilter := request.GetString("type", ""); typeFilter != "" {
			fileType, err := models.ParseFileType(typeFilter)
			if err != nil {
				return textResult(fmt.Sprintf("Error: %v", err)), nil
			}
			opts.Types = []models.FileType{fileType}
		}

		records, err := searchService.Search(ctx, query, opts)
		if err != nil {
			logger.Error().Err(err).Str("query", query).Msg("Search failed")
			return textResult(fmt.Sprintf("Search error: %v", err)), nil
		}

		return textResult(formatSearchResults(query, records)), nil
	}
}

// handleGetFile implements the get_file tool
func handleGetFile(searchService interfaces.SearchService, source interfaces.ContentSource, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil || path == "" {
			return textResult("Error: path parameter is required"), nil
		}

		record, err := searchService.GetByPath(ctx, path)
		if err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("GetByPath failed")
			return textResult(fmt.Sprintf("File not found: %v", err)), nil
		}

		var body string
		if record.Type == models.FileTypeText && source != nil {
			body, err = preview.ReadTextBody(ctx, source, record.Path)
			if err != nil {
				logger.Warn().Err(err).Str("path", record.Path).Msg("Failed to read text body")
				body = preview.TextFetchFailedMessage
			}
		}

		return textResult(formatFile(record, body)), nil
	}
}
