// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/reelfolio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no admin matches.
var ErrNotFound = errors.New("admin not found")

// Store provides access to the admins collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new admin store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins")}
}

// GetByUsername returns the admin with the given username.
// Usernames are matched exactly after trimming.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.Admin, error) {
	var a models.Admin
	err := s.c.FindOne(ctx, bson.M{"username": strings.TrimSpace(username)}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Admin{}, ErrNotFound
		}
		return models.Admin{}, err
	}
	return a, nil
}

// GetByID returns the admin with the given id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Admin{}, ErrNotFound
		}
		return models.Admin{}, err
	}
	return a, nil
}

// Create inserts an admin. The caller supplies the bcrypt hash.
func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Username = strings.TrimSpace(a.Username)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Admin{}, err
	}
	return a, nil
}

// Count returns the number of admin records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
