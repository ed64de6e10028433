package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/justp2p/justp2p-backend/internal/models"
)

// ErrBackupNotFound is returned when no backup matches id + owner. A backup
// owned by someone else is indistinguishable from a missing one.
var ErrBackupNotFound = errors.New("backup not found")

// BackupStore is the persistence contract for backup metadata documents.
type BackupStore interface {
	Insert(ctx context.Context, backup *models.BackupMetadata) error
	// ListByUser returns the caller's backups newest first, with the inline
	// payload excluded by projection.
	ListByUser(ctx context.Context, userID string) ([]models.BackupMetadata, error)
	FindByID(ctx context.Context, userID, backupID string) (*models.BackupMetadata, error)
	Delete(ctx context.Context, userID, backupID string) error
}

const backupListLimit = 100

type mongoBackupStore struct {
	col *mongo.Collection
}

// NewBackupStore returns a BackupStore backed by the "backups" collection.
func NewBackupStore(db *mongo.Database) BackupStore {
	return &mongoBackupStore{col: db.Collection("backups")}
}

func (s *mongoBackupStore) Insert(ctx context.Context, backup *models.BackupMetadata) error {
	_, err := s.col.InsertOne(ctx, backup)
	return err
}

func (s *mongoBackupStore) ListByUser(ctx context.Context, userID string) ([]models.BackupMetadata, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "encrypted_data": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(backupListLimit)

	cur, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	backups := []models.BackupMetadata{}
	if err := cur.All(ctx, &backups); err != nil {
		return nil, err
	}
	return backups, nil
}

func (s *mongoBackupStore) FindByID(ctx context.Context, userID, backupID string) (*models.BackupMetadata, error) {
	var backup models.BackupMetadata
	err := s.col.FindOne(ctx, bson.M{"id": backupID, "user_id": userID}).Decode(&backup)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}
	return &backup, nil
}

func (s *mongoBackupStore) Delete(ctx context.Context, userID, backupID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"id": backupID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrBackupNotFound
	}
	return nil
}
