package models

import "time"

// BackupSchemaVersion is stamped on every backup document.
const BackupSchemaVersion = 1

// BackupMetadata describes one encrypted backup artifact. For provider "local"
// the ciphertext lives inline in EncryptedData; for any other provider the
// client keeps the bytes itself and CloudFileID is reserved for a cloud-storage
// leg that this service never performs.
type BackupMetadata struct {
	SchemaVersion int       `bson:"schema_version" json:"-"`
	ID            string    `bson:"id" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	Filename      string    `bson:"filename" json:"filename"`
	Provider      string    `bson:"provider" json:"provider"`
	EncryptedData string    `bson:"encrypted_data,omitempty" json:"-"`
	CloudFileID   string    `bson:"cloud_file_id,omitempty" json:"cloud_file_id,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
