package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/services/content"
	"github.com/ternarybob/tagview/internal/services/corpus"
	"github.com/ternarybob/tagview/internal/services/search"
)

func main() {
	// Load configuration
	var configFiles []string
	if configPath := os.Getenv("TAGVIEW_CONFIG"); configPath != "" {
		configFiles = append(configFiles, configPath)
	} else if _, err := os.Stat("tagview.toml"); err == nil {
		configFiles = append(configFiles, "tagview.toml")
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize minimal logger for MCP server (console only, no file output)
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn") // Minimal logging to avoid cluttering MCP stdio

	ctx := context.Background()

	source, err := content.NewSource(ctx, config.Content, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open content root")
	}

	// No event service: nothing listens for corpus events in the tool server
	corpusService := corpus.NewService(source, config.Content.TagsFile, nil, logger)
	if err := corpusService.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("Serving an empty tag corpus")
	}

	searchService := search.NewService(corpusService, logger, "mcp")

	mcpServer := server.NewMCPServer(
		"tagview",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createSearchFilesTool(), handleSearchFiles(searchService, logger))
	mcpServer.AddTool(createGetFileTool(), handleGetFile(searchService, source, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
