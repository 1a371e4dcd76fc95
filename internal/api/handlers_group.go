package api

import (
	"net/http"
)

// handleFormGroup handles POST /api/groups - Form a group from the current
// selection. An empty selection is not an error; the response reports that
// no group was formed.
func (s *Server) handleFormGroup(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req struct {
		Name string `json:"name"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	// Call service
	group, err := s.dashboard.FormGroup(r.Context(), req.Name)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	if group == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"formed": false,
		})
		return
	}

	// Return success response
	respondJSON(w, http.StatusCreated, group)
}

// handleListGroups handles GET /api/groups - List groups formed this session
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dashboard.Groups())
}
