package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/justp2p/justp2p-backend/internal/middleware"
	"github.com/justp2p/justp2p-backend/internal/models"
	"github.com/justp2p/justp2p-backend/internal/services"
	"github.com/justp2p/justp2p-backend/pkg/utils"
)

// ProviderLocal is the only provider whose bytes this service stores itself.
// Other provider tags are recorded verbatim; the client handles that leg.
const ProviderLocal = "local"

type BackupUploadRequest struct {
	Filename string `json:"filename"`
	Data     string `json:"data"` // base64-encoded plaintext
	Provider string `json:"provider"`
}

type BackupHandler struct {
	backups       services.BackupStore
	encryptionKey []byte
}

func NewBackupHandler(backups services.BackupStore, encryptionKey []byte) *BackupHandler {
	return &BackupHandler{backups: backups, encryptionKey: encryptionKey}
}

// Upload decodes and encrypts the payload with the process-wide key, then
// records the metadata. Only provider "local" keeps the ciphertext inline.
func (h *BackupHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req BackupUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Filename == "" || req.Data == "" || req.Provider == "" {
		http.Error(w, "Filename, data, and provider are required", http.StatusBadRequest)
		return
	}

	plaintext, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		http.Error(w, "Encryption failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	ciphertext, err := utils.Encrypt(h.encryptionKey, plaintext)
	if err != nil {
		http.Error(w, "Encryption failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	backup := &models.BackupMetadata{
		SchemaVersion: models.BackupSchemaVersion,
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Filename:      req.Filename,
		Provider:      req.Provider,
		CreatedAt:     time.Now().UTC(),
	}
	if req.Provider == ProviderLocal {
		backup.EncryptedData = base64.StdEncoding.EncodeToString(ciphertext)
	}

	if err := h.backups.Insert(r.Context(), backup); err != nil {
		http.Error(w, "Failed to store backup", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"backup_id": backup.ID,
		"message":   "Backup uploaded successfully",
	})
}

// List returns the caller's backup metadata, newest first, payload excluded.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	backups, err := h.backups.ListByUser(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, backups)
}

// Download decrypts a locally stored backup and returns the plaintext
// (base64-encoded) to its owner.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	backupID := chi.URLParam(r, "backupID")

	backup, err := h.backups.FindByID(r.Context(), user.ID, backupID)
	if err != nil {
		if errors.Is(err, services.ErrBackupNotFound) {
			http.Error(w, "Backup not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if backup.Provider != ProviderLocal || backup.EncryptedData == "" {
		http.Error(w, "Only local backups can be downloaded via API", http.StatusBadRequest)
		return
	}

	ciphertext, err := base64.StdEncoding.DecodeString(backup.EncryptedData)
	if err != nil {
		http.Error(w, "Decryption failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	plaintext, err := utils.Decrypt(h.encryptionKey, ciphertext)
	if err != nil {
		http.Error(w, "Decryption failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":   backup.Filename,
		"data":       base64.StdEncoding.EncodeToString(plaintext),
		"created_at": backup.CreatedAt,
	})
}

// Delete removes a backup owned by the caller. A backup owned by someone else
// reports 404, never 401: ownership is checked as existence.
func (h *BackupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	backupID := chi.URLParam(r, "backupID")

	if err := h.backups.Delete(r.Context(), user.ID, backupID); err != nil {
		if errors.Is(err, services.ErrBackupNotFound) {
			http.Error(w, "Backup not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Backup deleted",
	})
}
