package handlers

import (
	"net/http"

	"github.com/justp2p/justp2p-backend/internal/middleware"
	"github.com/justp2p/justp2p-backend/internal/services"
)

type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

type TwoFactorSetupResponse struct {
	QRCode      string   `json:"qr_code"`
	Secret      string   `json:"secret"`
	BackupCodes []string `json:"backup_codes"`
}

type TwoFactorHandler struct {
	users services.UserStore
	twofa *services.TwoFactorService
}

func NewTwoFactorHandler(users services.UserStore, twofa *services.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{users: users, twofa: twofa}
}

// Setup provisions a new shared secret and backup codes. The secret is stored
// immediately but totp_enabled stays false until Verify succeeds, so calling
// Setup again simply replaces the pending material.
func (h *TwoFactorHandler) Setup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	setup, err := h.twofa.GenerateSetup(user.Email)
	if err != nil {
		http.Error(w, "Failed to generate 2FA setup", http.StatusInternalServerError)
		return
	}

	if err := h.users.SetTwoFactorSecret(r.Context(), user.ID, setup.Secret, setup.BackupCodes); err != nil {
		http.Error(w, "Failed to store 2FA secret", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, TwoFactorSetupResponse{
		QRCode:      setup.QRCode,
		Secret:      setup.Secret,
		BackupCodes: setup.BackupCodes,
	})
}

// Verify checks a TOTP or backup code and flips totp_enabled on success.
// A backup code is consumed by the check and cannot be used again.
func (h *TwoFactorHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req TwoFactorVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Re-read the document: the secret may have been rotated by a concurrent
	// Setup since the middleware resolved the caller.
	fresh, err := h.users.FindByID(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	if fresh.TOTPSecret == "" {
		http.Error(w, "2FA not setup", http.StatusBadRequest)
		return
	}

	if h.twofa.ValidateCode(fresh.TOTPSecret, req.Code) {
		if err := h.users.EnableTwoFactor(r.Context(), user.ID); err != nil {
			http.Error(w, "Failed to enable 2FA", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "2FA enabled successfully",
		})
		return
	}

	if remaining, used := consumeBackupCode(fresh.BackupCodes, req.Code); used {
		if err := h.users.EnableTwoFactorWithCodes(r.Context(), user.ID, remaining); err != nil {
			http.Error(w, "Failed to enable 2FA", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "2FA verified with backup code",
		})
		return
	}

	http.Error(w, "Invalid code", http.StatusBadRequest)
}

// Disable clears the secret and backup codes regardless of current state.
func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.users.DisableTwoFactor(r.Context(), user.ID); err != nil {
		http.Error(w, "Failed to disable 2FA", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "2FA disabled",
	})
}

// consumeBackupCode removes code from codes. Reports whether it was present.
func consumeBackupCode(codes []string, code string) ([]string, bool) {
	remaining := make([]string, 0, len(codes))
	used := false
	for _, c := range codes {
		if c == code {
			used = true
			continue
		}
		remaining = append(remaining, c)
	}
	return remaining, used
}
