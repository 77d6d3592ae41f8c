package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
)

type APIHandler struct {
	corpus interfaces.CorpusProvider
	logger arbor.ILogger
}

func NewAPIHandler(corpus interfaces.CorpusProvider, logger arbor.ILogger) *APIHandler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &APIHandler{
		corpus: corpus,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler returns health check status with the size of the loaded corpus.
// An empty corpus is still healthy: the service keeps running without tags.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	records := 0
	if h.corpus != nil {
		records = h.corpus.Corpus().Len()
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"records": records,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
