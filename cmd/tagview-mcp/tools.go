package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchFilesTool returns the search_files tool definition
func createSearchFilesTool() mcp.Tool {
	return mcp.NewTool("search_files",
		mcp.WithDescription("Search tagged images, text files and 3D models. Every whitespace-separated term must match one of a file's tags (case-insensitive substring)."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Tag terms, e.g. \"dog blue\". Add type:image, type:text or type:3d to filter by file type."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 20, max: 100)"),
		),
		mcp.WithString("type",
			mcp.Description("Filter: image, text, 3d"),
		),
	)
}

// createGetFileTool returns the get_file tool definition
func createGetFileTool() mcp.Tool {
	return mcp.NewTool("get_file",
		mcp.WithDescription("Retrieve one file's tags and metadata by its corpus path; text files include their contents"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Corpus path, relative to the content root (e.g. notes/todo.txt)"),
		),
	)
}
