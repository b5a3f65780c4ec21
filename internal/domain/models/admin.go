// internal/domain/models/admin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is the single privileged account that manages the catalog and bookings.
// It is provisioned at startup from configuration and never edited through the API.
type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"` // bcrypt hash (never in JSON)
	Email        string             `bson:"email" json:"email"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

// AdminSummary is the identity returned to the client after login.
type AdminSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Summary strips everything but the public identity.
func (a Admin) Summary() AdminSummary {
	return AdminSummary{Username: a.Username, Email: a.Email}
}
