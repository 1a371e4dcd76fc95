package api

import (
	"net/http"
)

// handleResolveName handles POST /api/resolve/name - Forward resolution
func (s *Server) handleResolveName(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req struct {
		Field string `json:"field"`
		Name  string `json:"name"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Name required", nil)
		return
	}

	// Call service
	outcome, err := s.dashboard.ResolveName(r.Context(), req.Field, req.Name)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

// handleResolveAddress handles POST /api/resolve/address - Reverse resolution.
// A missing reverse record yields an empty name, never an error.
func (s *Server) handleResolveAddress(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req struct {
		Field   string `json:"field"`
		Address string `json:"address"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Address == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Address required", nil)
		return
	}

	// Call service
	outcome := s.dashboard.ResolveAddress(r.Context(), req.Field, req.Address)

	respondJSON(w, http.StatusOK, outcome)
}
