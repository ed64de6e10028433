package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo wraps the client and the selected database so callers receive an
// explicit handle instead of reaching for package globals.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials MongoDB, pings it and returns a handle on the named database.
func Connect(mongoURI, dbName string) (*Mongo, error) {
	// Longer timeout to accommodate Atlas connections.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("✅ Connected to MongoDB")
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

// Disconnect closes the underlying client.
func (m *Mongo) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// EnsureUserIndexes creates the unique indexes backing the global uniqueness
// of email and username. Called on startup from main after Mongo has connected.
func (m *Mongo) EnsureUserIndexes(ctx context.Context) error {
	col := m.DB.Collection("users")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_username_unique").SetUnique(true),
		},
	}

	for _, im := range indexModels {
		if _, err := col.Indexes().CreateOne(ctx, im); err != nil {
			return err
		}
	}

	// Backups are always fetched per owner, newest first.
	backups := m.DB.Collection("backups")
	_, err := backups.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_user_created"),
	})
	return err
}
