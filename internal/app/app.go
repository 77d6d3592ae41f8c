package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/handlers"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/scene"
	"github.com/ternarybob/tagview/internal/services/assets"
	"github.com/ternarybob/tagview/internal/services/content"
	"github.com/ternarybob/tagview/internal/services/corpus"
	"github.com/ternarybob/tagview/internal/services/events"
	"github.com/ternarybob/tagview/internal/services/preview"
	"github.com/ternarybob/tagview/internal/services/search"
	"github.com/ternarybob/tagview/internal/services/viewer"
)

// App holds all application components and dependencies
type App struct {
	Config    *common.Config
	Logger    arbor.ILogger
	ctx       context.Context
	cancelCtx context.CancelFunc

	// Event-driven services
	EventService interfaces.EventService

	// Corpus and search
	ContentSource interfaces.ContentSource
	CorpusService *corpus.Service
	SearchService interfaces.SearchService

	// Result projection
	TextCache   *preview.TextBodyCache
	TextFetcher *preview.TextFetcher
	Projector   *preview.Projector

	// 3D preview
	Surface *scene.Surface
	Decoder interfaces.AssetDecoder
	Viewer  *viewer.Controller

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	SearchHandler  *handlers.SearchHandler
	ContentHandler *handlers.ContentHandler
	ViewerHandler  *handlers.ViewerHandler
	WSHandler      *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	app.EventService = events.NewService(app.Logger)
	if err := events.SubscribeLoggerToAllEvents(app.EventService, app.Logger); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to subscribe event logger")
	}

	if err := app.initServices(); err != nil {
		app.EventService.Close()
		cancel()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Int("records", app.CorpusService.Corpus().Len()).
		Str("content_root", app.ContentSource.Root()).
		Msg("Application initialization complete")

	return app, nil
}

// initServices initializes all business services in dependency order:
// content source, corpus, text cache and fetcher, projector, search, decoder, viewer.
func (a *App) initServices() error {
	source, err := content.NewSource(a.ctx, a.Config.Content, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open content root: %w", err)
	}
	a.ContentSource = source

	a.CorpusService = corpus.NewService(source, a.Config.Content.TagsFile, a.EventService, a.Logger)
	if err := a.CorpusService.Load(a.ctx); err != nil {
		// An unreadable corpus leaves the service running with no records
		a.Logger.Warn().Err(err).Msg("Continuing with an empty tag corpus")
	}

	a.TextCache = preview.NewTextBodyCache()
	a.TextFetcher = preview.NewTextFetcher(source, a.TextCache, a.EventService, a.Logger, a.Config.Content.RequestTimeout)
	a.Projector = preview.NewProjector(a.TextCache, a.TextFetcher)

	if a.Config.Content.PrefetchText {
		a.TextFetcher.PrefetchAll(a.ctx, a.CorpusService.Corpus())
	}

	a.SearchService = search.NewService(a.CorpusService, a.Logger, "http")

	a.Decoder = assets.NewGLTFDecoder(source, a.Logger)
	a.Surface = scene.NewSurface(a.Config.Viewer.SurfaceWidth, a.Config.Viewer.SurfaceHeight)
	a.Viewer = viewer.NewController(viewer.Options{
		Surface:       a.Surface,
		Decoder:       a.Decoder,
		Events:        a.EventService,
		Logger:        a.Logger,
		FrameInterval: a.Config.Viewer.FrameInterval(),
	})

	a.Logger.Debug().
		Int("width", a.Config.Viewer.SurfaceWidth).
		Int("height", a.Config.Viewer.SurfaceHeight).
		Dur("frame_interval", a.Config.Viewer.FrameInterval()).
		Msg("Viewer controller initialized")

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.CorpusService, a.Logger)
	a.SearchHandler = handlers.NewSearchHandler(a.SearchService, a.Projector, a.Logger)
	a.ContentHandler = handlers.NewContentHandler(a.ContentSource, a.Logger)
	a.ViewerHandler = handlers.NewViewerHandler(a.Viewer, a.SearchService, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.CorpusService, a.Viewer, a.Logger, &a.Config.WebSocket)
}

// Close shuts down the viewer, waits for text fetches and stops the event service
func (a *App) Close() error {
	a.Logger.Info().Msg("Closing application")

	if a.WSHandler != nil {
		a.WSHandler.Close()
	}
	if a.Viewer != nil {
		a.Viewer.Shutdown()
	}
	if a.TextFetcher != nil {
		a.TextFetcher.Wait()
	}
	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	var err error
	if a.EventService != nil {
		if closeErr := a.EventService.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close event service: %w", closeErr)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return err
}
