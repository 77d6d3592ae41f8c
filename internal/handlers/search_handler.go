package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/models"
	"github.com/ternarybob/tagview/internal/services/preview"
	"github.com/ternarybob/tagview/internal/services/search"
)

// SearchResponse is the body of GET /api/search
type SearchResponse struct {
	Query   string                     `json:"query"`
	Count   int                        `json:"count"`
	Limit   int                        `json:"limit"`
	Offset  int                        `json:"offset"`
	Results []models.PreviewDescriptor `json:"results"`
}

// SearchHandler handles search and single-file lookups
type SearchHandler struct {
	searchService interfaces.SearchService
	projector     DescriptorProjector
	logger        arbor.ILogger
}

// NewSearchHandler creates a new search handler with dependencies
func NewSearchHandler(searchService interfaces.SearchService, projector DescriptorProjector, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		projector:     projector,
		logger:        logger,
	}
}

// SearchHandler handles GET /api/search?q=query&type=image,text&limit=&offset=
func (h *SearchHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")
	limit, offset := GetLimitOffset(r)

	types, err := parseTypes(r.URL.Query().Get("type"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Debug().
		Str("query", query).
		Int("limit", limit).
		Int("offset", offset).
		Msg("Search request received")

	records, err := h.searchService.Search(r.Context(), query, interfaces.SearchOptions{
		Limit:  limit,
		Offset: offset,
		Types:  types,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("query", query).Msg("Failed to execute search")
		WriteError(w, http.StatusInternalServerError, "Failed to execute search")
		return
	}

	results := make([]models.PreviewDescriptor, 0, len(records))
	for _, record := range records {
		results = append(results, h.projector.Project(record))
	}

	WriteJSON(w, http.StatusOK, SearchResponse{
		Query:   query,
		Count:   len(results),
		Limit:   limit,
		Offset:  offset,
		Results: results,
	})
}

// FileHandler handles GET /api/files?path= and returns one descriptor
func (h *SearchHandler) FileHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	desc, ok := h.describe(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, desc)
}

// CardHandler handles GET /api/files/card?path= and returns the escaped HTML card
func (h *SearchHandler) CardHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	desc, ok := h.describe(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(preview.RenderCard(desc)))
}

func (h *SearchHandler) describe(w http.ResponseWriter, r *http.Request) (models.PreviewDescriptor, bool) {
	path := pathParam(r)
	if path == "" {
		WriteError(w, http.StatusBadRequest, "path parameter is required")
		return models.PreviewDescriptor{}, false
	}

	record, err := h.searchService.GetByPath(r.Context(), path)
	if err != nil {
		if errors.Is(err, search.ErrRecordNotFound) {
			WriteError(w, http.StatusNotFound, "File not found in corpus")
			return models.PreviewDescriptor{}, false
		}
		h.logger.Error().Err(err).Str("path", path).Msg("Failed to look up file")
		WriteError(w, http.StatusInternalServerError, "Failed to look up file")
		return models.PreviewDescriptor{}, false
	}
	return h.projector.Project(record), true
}

// parseTypes reads a comma separated type filter
func parseTypes(raw string) ([]models.FileType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var types []models.FileType
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := models.ParseFileType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}
