package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleAddFriend handles POST /api/friends - Add a friend to the registry
func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req struct {
		Name     string `json:"name"`
		WalletID string `json:"walletId"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.WalletID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Wallet ID required", nil)
		return
	}

	// Call service
	friend, err := s.dashboard.AddFriend(r.Context(), req.Name, req.WalletID)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	// Return success response
	respondJSON(w, http.StatusCreated, friend)
}

// handleListFriends handles GET /api/friends - List friends in insertion order
func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dashboard.Friends())
}

// handleSetSelection handles POST /api/friends/:id/selection - Toggle selection
func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	// Get friend ID from URL
	vars := mux.Vars(r)
	friendID := vars["id"]

	if friendID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Friend ID required", nil)
		return
	}

	// Parse request body
	var req struct {
		Selected bool `json:"selected"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	// Call service
	if err := s.dashboard.SetFriendSelected(friendID, req.Selected); err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	// Return success response
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"friendId": friendID,
		"selected": req.Selected,
	})
}

// handleClearSelection handles DELETE /api/friends/selection - Deselect all
func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.dashboard.ClearSelection()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
