package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/justp2p/justp2p-backend/internal/handlers"
	"github.com/justp2p/justp2p-backend/internal/models"
	"github.com/justp2p/justp2p-backend/internal/services"
)

func newTwoFactorHandler(users *MockUserStore) *handlers.TwoFactorHandler {
	return handlers.NewTwoFactorHandler(users, services.NewTwoFactorService("JustP2P"))
}

func TestTwoFactorHandler_Setup(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	users := new(MockUserStore)
	users.On("SetTwoFactorSecret", mock.Anything, "user-1",
		mock.AnythingOfType("string"), mock.AnythingOfType("[]string")).
		Return(nil).Once()

	h := newTwoFactorHandler(users)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/setup", nil)
	rec := httptest.NewRecorder()
	withUser(user, h.Setup)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.TwoFactorSetupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Secret)
	assert.True(t, strings.HasPrefix(resp.QRCode, "data:image/png;base64,"))
	assert.Len(t, resp.BackupCodes, services.BackupCodeCount)

	// The stored secret must be the one returned to the client.
	users.AssertCalled(t, "SetTwoFactorSecret", mock.Anything, "user-1", resp.Secret, resp.BackupCodes)
}

func TestTwoFactorHandler_Verify(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	validCode, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	backupCodes := []string{"AAAA1111", "BBBB2222", "CCCC3333"}

	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	tests := []struct {
		name           string
		code           string
		freshUser      *models.User
		expectEnable   bool
		expectConsumed []string // expected remaining codes after a backup-code match
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid TOTP code enables 2FA",
			code:           validCode,
			freshUser:      &models.User{ID: "user-1", TOTPSecret: secret, BackupCodes: backupCodes},
			expectEnable:   true,
			expectedStatus: http.StatusOK,
			expectedBody:   "2FA enabled successfully",
		},
		{
			name:           "backup code is consumed",
			code:           "BBBB2222",
			freshUser:      &models.User{ID: "user-1", TOTPSecret: secret, BackupCodes: backupCodes},
			expectConsumed: []string{"AAAA1111", "CCCC3333"},
			expectedStatus: http.StatusOK,
			expectedBody:   "2FA verified with backup code",
		},
		{
			name:           "already-consumed backup code fails",
			code:           "BBBB2222",
			freshUser:      &models.User{ID: "user-1", TOTPSecret: secret, BackupCodes: []string{"AAAA1111", "CCCC3333"}},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid code",
		},
		{
			name:           "garbage code fails",
			code:           "not-a-code",
			freshUser:      &models.User{ID: "user-1", TOTPSecret: secret, BackupCodes: backupCodes},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid code",
		},
		{
			name:           "no secret on file",
			code:           validCode,
			freshUser:      &models.User{ID: "user-1"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "2FA not setup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserStore)
			users.On("FindByID", mock.Anything, "user-1").Return(tt.freshUser, nil).Once()
			if tt.expectEnable {
				users.On("EnableTwoFactor", mock.Anything, "user-1").Return(nil).Once()
			}
			if tt.expectConsumed != nil {
				users.On("EnableTwoFactorWithCodes", mock.Anything, "user-1", tt.expectConsumed).
					Return(nil).Once()
			}

			h := newTwoFactorHandler(users)

			body := fmt.Sprintf(`{"code": %q}`, tt.code)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/verify", strings.NewReader(body))
			rec := httptest.NewRecorder()
			withUser(user, h.Verify)(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			users.AssertExpectations(t)
		})
	}
}

func TestTwoFactorHandler_Disable(t *testing.T) {
	user := &models.User{ID: "user-1", TOTPEnabled: true}

	users := new(MockUserStore)
	users.On("DisableTwoFactor", mock.Anything, "user-1").Return(nil).Once()

	h := newTwoFactorHandler(users)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/disable", nil)
	rec := httptest.NewRecorder()
	withUser(user, h.Disable)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2FA disabled")
	users.AssertExpectations(t)
}
