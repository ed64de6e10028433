package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/justp2p/justp2p-backend/internal/models"
)

// --- Mock UserStore --- //

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) UpdatePeerID(ctx context.Context, userID, peerID string) error {
	args := m.Called(ctx, userID, peerID)
	return args.Error(0)
}

func (m *MockUserStore) SetOffline(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserStore) ListOnline(ctx context.Context, excludeUserID string) ([]models.OnlinePeer, error) {
	args := m.Called(ctx, excludeUserID)
	if peers, ok := args.Get(0).([]models.OnlinePeer); ok {
		return peers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) SetTwoFactorSecret(ctx context.Context, userID, secret string, backupCodes []string) error {
	args := m.Called(ctx, userID, secret, backupCodes)
	return args.Error(0)
}

func (m *MockUserStore) EnableTwoFactor(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserStore) EnableTwoFactorWithCodes(ctx context.Context, userID string, remainingCodes []string) error {
	args := m.Called(ctx, userID, remainingCodes)
	return args.Error(0)
}

func (m *MockUserStore) DisableTwoFactor(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock BackupStore --- //

type MockBackupStore struct {
	mock.Mock
}

func (m *MockBackupStore) Insert(ctx context.Context, backup *models.BackupMetadata) error {
	args := m.Called(ctx, backup)
	return args.Error(0)
}

func (m *MockBackupStore) ListByUser(ctx context.Context, userID string) ([]models.BackupMetadata, error) {
	args := m.Called(ctx, userID)
	if backups, ok := args.Get(0).([]models.BackupMetadata); ok {
		return backups, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBackupStore) FindByID(ctx context.Context, userID, backupID string) (*models.BackupMetadata, error) {
	args := m.Called(ctx, userID, backupID)
	if b, ok := args.Get(0).(*models.BackupMetadata); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBackupStore) Delete(ctx context.Context, userID, backupID string) error {
	args := m.Called(ctx, userID, backupID)
	return args.Error(0)
}
