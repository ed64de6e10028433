package handlers

import (
	"errors"
	"net/http"

	"github.com/justp2p/justp2p-backend/internal/middleware"
	"github.com/justp2p/justp2p-backend/internal/services"
)

type UsernameLookupRequest struct {
	Username string `json:"username"`
}

type UpdatePeerIDRequest struct {
	PeerID string `json:"peer_id"`
}

type PeerHandler struct {
	users services.UserStore
}

func NewPeerHandler(users services.UserStore) *PeerHandler {
	return &PeerHandler{users: users}
}

// Lookup resolves a username to its current peer id and online flag.
// Unauthenticated: any client may ask where a username lives.
func (h *PeerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req UsernameLookupRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username":      user.Username,
		"peer_id":       user.CurrentPeerID,
		"online_status": user.OnlineStatus,
	})
}

// UpdatePeerID records the caller's current peer identifier and marks the
// caller online. Last write wins under concurrent updates.
func (h *PeerHandler) UpdatePeerID(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req UpdatePeerIDRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.PeerID == "" {
		http.Error(w, "Peer ID is required", http.StatusBadRequest)
		return
	}

	if err := h.users.UpdatePeerID(r.Context(), user.ID, req.PeerID); err != nil {
		http.Error(w, "Failed to update peer ID", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"peer_id": req.PeerID,
	})
}

// SetOffline clears the caller's online flag. Idempotent.
func (h *PeerHandler) SetOffline(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.users.SetOffline(r.Context(), user.ID); err != nil {
		http.Error(w, "Failed to set offline", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// OnlineUsers lists everyone currently marked online except the caller.
func (h *PeerHandler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	peers, err := h.users.ListOnline(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, peers)
}
