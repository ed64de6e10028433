package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// UserSchemaVersion is stamped on every user document so future migrations
// can tell old records apart.
const UserSchemaVersion = 1

type User struct {
	SchemaVersion int    `bson:"schema_version" json:"-"`
	ID            string `bson:"id" json:"id"`
	Email         string `bson:"email" json:"email"`
	Username      string `bson:"username" json:"username"`
	PasswordHash  string `bson:"password_hash" json:"-"`

	// P2P presence: which peer identifier the username currently maps to,
	// and whether the client claims to be online. No heartbeat or expiry
	// exists; a client that vanishes without calling set-offline stays listed.
	CurrentPeerID *string `bson:"current_peer_id,omitempty" json:"current_peer_id,omitempty"`
	OnlineStatus  bool    `bson:"online_status" json:"online_status"`

	TOTPSecret  string   `bson:"totp_secret,omitempty" json:"-"`
	TOTPEnabled bool     `bson:"totp_enabled" json:"totp_enabled"`
	BackupCodes []string `bson:"backup_codes" json:"-"`

	// Opaque WebAuthn credential records. Carried on the document but not
	// consulted by any endpoint.
	PasskeyCredentials []bson.M `bson:"passkey_credentials" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// OnlinePeer is the projection returned by the online-users listing.
type OnlinePeer struct {
	Username      string  `bson:"username" json:"username"`
	CurrentPeerID *string `bson:"current_peer_id,omitempty" json:"current_peer_id"`
}
