package api

import (
	"net/http"
)

// handleUploadStatus handles GET /api/status/upload - Upload state and the
// retained last error
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	state, lastError := s.dashboard.UploadStatus()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state":     state,
		"lastError": lastError,
	})
}

// handleClearUploadError handles DELETE /api/status/upload - Clear the error
func (s *Server) handleClearUploadError(w http.ResponseWriter, r *http.Request) {
	s.dashboard.ClearUploadError()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
