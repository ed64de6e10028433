package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justp2p/justp2p-backend/internal/middleware"
	"github.com/justp2p/justp2p-backend/internal/models"
	"github.com/justp2p/justp2p-backend/internal/services"
)

const testSecret = "test-secret"

// stubUserStore satisfies services.UserStore; only FindByID matters here.
type stubUserStore struct {
	services.UserStore
	users map[string]*models.User
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

// expiredToken signs a token that ran out an hour ago.
func expiredToken(t *testing.T, secret string) string {
	t.Helper()
	claims := services.Claims{
		UserID: "user-1",
		Email:  "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthenticator(t *testing.T) {
	tokens := services.NewTokenService(testSecret)
	users := &stubUserStore{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "alice@example.com", Username: "alice"},
	}}

	validToken, err := tokens.Issue("user-1", "alice@example.com")
	require.NoError(t, err)

	unknownUserToken, err := tokens.Issue("user-404", "ghost@example.com")
	require.NoError(t, err)

	wrongSecretToken, err := services.NewTokenService("other-secret").Issue("user-1", "alice@example.com")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.CurrentUser(r.Context())
		require.True(t, ok, "user must be in context")
		w.Write([]byte("hello " + user.Username))
	})
	handler := middleware.Authenticator(tokens, users)(next)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid token",
			header:         "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedBody:   "hello alice",
		},
		{
			name:           "missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Authentication required",
		},
		{
			name:           "not a bearer header",
			header:         validToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Authentication required",
		},
		{
			name:           "garbage token",
			header:         "Bearer garbage",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid token",
		},
		{
			name:           "tampered signature",
			header:         "Bearer " + wrongSecretToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid token",
		},
		{
			name:           "expired token",
			header:         "Bearer " + expiredToken(t, testSecret),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Token expired",
		},
		{
			name:           "token for deleted user",
			header:         "Bearer " + unknownUserToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestCurrentUser(t *testing.T) {
	user := &models.User{ID: "user-1"}

	got, ok := middleware.CurrentUser(middleware.WithUser(context.Background(), user))
	assert.True(t, ok)
	assert.Equal(t, user, got)

	got, ok = middleware.CurrentUser(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}
