package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
)

// ContentPrefix is the URL prefix raw content is served under
const ContentPrefix = "/content/"

func init() {
	mime.AddExtensionType(".glb", "model/gltf-binary")
	mime.AddExtensionType(".gltf", "model/gltf+json")
}

// ContentHandler streams raw files (images, thumbnails, models) from the content source
type ContentHandler struct {
	source interfaces.ContentSource
	logger arbor.ILogger
}

func NewContentHandler(source interfaces.ContentSource, logger arbor.ILogger) *ContentHandler {
	return &ContentHandler{
		source: source,
		logger: logger,
	}
}

// ServeContent handles GET /content/{path}
func (h *ContentHandler) ServeContent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	p := strings.TrimPrefix(r.URL.Path, ContentPrefix)
	reader, size, err := h.source.Open(r.Context(), p)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrInvalidPath):
			WriteError(w, http.StatusBadRequest, "Invalid content path")
		case errors.Is(err, interfaces.ErrContentNotFound):
			WriteError(w, http.StatusNotFound, "Content not found")
		default:
			h.logger.Warn().Err(err).Str("path", p).Msg("Failed to open content")
			WriteError(w, http.StatusBadGateway, "Failed to read content")
		}
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(p)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Debug().Err(err).Str("path", p).Msg("Content stream interrupted")
	}
}
