package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/split-ledger/internal/service"
)

// handleCreateSplit handles POST /api/splits - Create and upload a split.
// Upload failures do not fail the request; the returned split carries the
// locally regenerated id and the status endpoint reports the error.
func (s *Server) handleCreateSplit(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req service.CreateSplitInput

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.GroupID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Group ID required", nil)
		return
	}

	// Call service
	data, err := s.dashboard.CreateSplit(r.Context(), &req)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	// Return success response
	respondJSON(w, http.StatusCreated, data)
}

// handleListSplits handles GET /api/splits - List splits for the account
func (s *Server) handleListSplits(w http.ResponseWriter, r *http.Request) {
	splits, err := s.dashboard.Splits(r.Context())
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, splits)
}

// handleGetSplit handles GET /api/splits/:id - Get a split by id
func (s *Server) handleGetSplit(w http.ResponseWriter, r *http.Request) {
	// Get split ID from URL
	vars := mux.Vars(r)
	splitID := vars["id"]

	if splitID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Split ID required", nil)
		return
	}

	// Call service
	data, err := s.dashboard.Split(r.Context(), splitID)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, data)
}
