package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/models"
	"github.com/ternarybob/tagview/internal/services/search"
)

// OpenViewerRequest is the body of POST /api/viewer/open
type OpenViewerRequest struct {
	Path string `json:"path" validate:"required"`
}

// ResizeViewerRequest is the body of POST /api/viewer/resize
type ResizeViewerRequest struct {
	Width  int `json:"width" validate:"min=1,max=16384"`
	Height int `json:"height" validate:"min=1,max=16384"`
}

// ViewerHandler drives the single 3D preview session
type ViewerHandler struct {
	viewer        interfaces.ViewerService
	searchService interfaces.SearchService
	logger        arbor.ILogger
}

func NewViewerHandler(viewer interfaces.ViewerService, searchService interfaces.SearchService, logger arbor.ILogger) *ViewerHandler {
	return &ViewerHandler{
		viewer:        viewer,
		searchService: searchService,
		logger:        logger,
	}
}

// OpenHandler handles POST /api/viewer/open. Only model3d records can be opened.
func (h *ViewerHandler) OpenHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req OpenViewerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.searchService.GetByPath(r.Context(), req.Path)
	if err != nil {
		if errors.Is(err, search.ErrRecordNotFound) {
			WriteError(w, http.StatusNotFound, "File not found in corpus")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to look up file")
		return
	}
	if record.Type != models.FileTypeModel3D {
		WriteError(w, http.StatusUnprocessableEntity, "Only 3D models can be opened in the viewer")
		return
	}

	snapshot, err := h.viewer.Open(r.Context(), record.Path)
	if err != nil {
		// Failed sessions are still reported through the snapshot
		h.logger.Warn().Err(err).Str("path", record.Path).Msg("Viewer open failed")
		WriteJSON(w, http.StatusInternalServerError, snapshot)
		return
	}

	WriteJSON(w, http.StatusAccepted, snapshot)
}

// CloseHandler handles POST /api/viewer/close
func (h *ViewerHandler) CloseHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	WriteJSON(w, http.StatusOK, h.viewer.Close())
}

// ResizeHandler handles POST /api/viewer/resize
func (h *ViewerHandler) ResizeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ResizeViewerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.viewer.Resize(req.Width, req.Height); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.viewer.Snapshot())
}

// SnapshotHandler handles GET /api/viewer
func (h *ViewerHandler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, h.viewer.Snapshot())
}
