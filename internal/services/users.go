package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/justp2p/justp2p-backend/internal/models"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when the email or username is already taken.
	ErrDuplicateUser = errors.New("email or username already exists")
)

// UserStore is the persistence contract for user documents. Handlers depend on
// the interface so tests can substitute a mock for the Mongo-backed store.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	UpdatePeerID(ctx context.Context, userID, peerID string) error
	SetOffline(ctx context.Context, userID string) error
	ListOnline(ctx context.Context, excludeUserID string) ([]models.OnlinePeer, error)

	SetTwoFactorSecret(ctx context.Context, userID, secret string, backupCodes []string) error
	EnableTwoFactor(ctx context.Context, userID string) error
	EnableTwoFactorWithCodes(ctx context.Context, userID string, remainingCodes []string) error
	DisableTwoFactor(ctx context.Context, userID string) error
}

// onlineUsersLimit caps the online listing; there is no pagination for it.
const onlineUsersLimit = 1000

type mongoUserStore struct {
	col *mongo.Collection
}

// NewUserStore returns a UserStore backed by the "users" collection.
func NewUserStore(db *mongo.Database) UserStore {
	return &mongoUserStore{col: db.Collection("users")}
}

func (s *mongoUserStore) Create(ctx context.Context, user *models.User) error {
	// Pre-insert check keeps the error message precise; the unique indexes
	// remain the real guarantee under concurrent registration.
	filter := bson.M{"$or": bson.A{
		bson.M{"email": user.Email},
		bson.M{"username": user.Username},
	}}
	err := s.col.FindOne(ctx, filter).Err()
	if err == nil {
		return ErrDuplicateUser
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

func (s *mongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"id": id})
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *mongoUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *mongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) UpdatePeerID(ctx context.Context, userID, peerID string) error {
	return s.setFields(ctx, userID, bson.M{
		"current_peer_id": peerID,
		"online_status":   true,
	})
}

func (s *mongoUserStore) SetOffline(ctx context.Context, userID string) error {
	return s.setFields(ctx, userID, bson.M{"online_status": false})
}

func (s *mongoUserStore) ListOnline(ctx context.Context, excludeUserID string) ([]models.OnlinePeer, error) {
	filter := bson.M{
		"online_status": true,
		"id":            bson.M{"$ne": excludeUserID},
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "username": 1, "current_peer_id": 1}).
		SetLimit(onlineUsersLimit)

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	peers := []models.OnlinePeer{}
	if err := cur.All(ctx, &peers); err != nil {
		return nil, err
	}
	return peers, nil
}

func (s *mongoUserStore) SetTwoFactorSecret(ctx context.Context, userID, secret string, backupCodes []string) error {
	return s.setFields(ctx, userID, bson.M{
		"totp_secret":  secret,
		"backup_codes": backupCodes,
	})
}

func (s *mongoUserStore) EnableTwoFactor(ctx context.Context, userID string) error {
	return s.setFields(ctx, userID, bson.M{"totp_enabled": true})
}

func (s *mongoUserStore) EnableTwoFactorWithCodes(ctx context.Context, userID string, remainingCodes []string) error {
	return s.setFields(ctx, userID, bson.M{
		"totp_enabled": true,
		"backup_codes": remainingCodes,
	})
}

func (s *mongoUserStore) DisableTwoFactor(ctx context.Context, userID string) error {
	return s.setFields(ctx, userID, bson.M{
		"totp_enabled": false,
		"totp_secret":  "",
		"backup_codes": []string{},
	})
}

func (s *mongoUserStore) setFields(ctx context.Context, userID string, fields bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"id": userID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
