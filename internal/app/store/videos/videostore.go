// internal/app/store/videos/videostore.go
package videostore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/reelfolio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no video matches the given id.
var ErrNotFound = errors.New("video not found")

// Store provides access to the videos collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new video store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("videos")}
}

// newestFirst is the ordering for every listing.
func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

// Create inserts a video built by models.NewVideo and returns it with its id set.
func (s *Store) Create(ctx context.Context, v models.Video) (models.Video, error) {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return models.Video{}, err
	}
	return v, nil
}

// GetByID returns a video by its hex id. A malformed id is reported as ErrNotFound.
func (s *Store) GetByID(ctx context.Context, hexID string) (models.Video, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return models.Video{}, ErrNotFound
	}
	var v models.Video
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, err
	}
	return v, nil
}

// GetPublicByID is GetByID restricted to public videos.
func (s *Store) GetPublicByID(ctx context.Context, hexID string) (models.Video, error) {
	v, err := s.GetByID(ctx, hexID)
	if err != nil {
		return models.Video{}, err
	}
	if !v.IsPublic() {
		return models.Video{}, ErrNotFound
	}
	return v, nil
}

// ListPublic returns public videos, newest first.
func (s *Store) ListPublic(ctx context.Context) ([]models.Video, error) {
	return s.find(ctx, bson.M{"status": models.VideoStatusPublic})
}

// ListAll returns every video regardless of status, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Video, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Video, error) {
	cur, err := s.c.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	videos := []models.Video{}
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// UpdateInput holds the fields to replace. Nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Platform    *string
	VideoID     *string
	VideoURL    *string
	Thumbnail   *string
	Status      *string
}

// Empty reports whether the input changes nothing.
func (in UpdateInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Category == nil &&
		in.Platform == nil && in.VideoID == nil && in.VideoURL == nil &&
		in.Thumbnail == nil && in.Status == nil
}

// Apply returns v with the input's fields replaced and re-validated.
func (in UpdateInput) Apply(v models.Video) (models.Video, error) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&v.Title, in.Title)
	set(&v.Description, in.Description)
	set(&v.Category, in.Category)
	set(&v.Platform, in.Platform)
	set(&v.VideoID, in.VideoID)
	set(&v.VideoURL, in.VideoURL)
	set(&v.Thumbnail, in.Thumbnail)
	set(&v.Status, in.Status)
	if err := v.Validate(); err != nil {
		return models.Video{}, err
	}
	return v, nil
}

// Update applies a partial replace and returns the updated video.
// The merged record is validated before anything is written. An empty input
// writes nothing and returns the stored video.
func (s *Store) Update(ctx context.Context, hexID string, in UpdateInput) (models.Video, error) {
	current, err := s.GetByID(ctx, hexID)
	if err != nil {
		return models.Video{}, err
	}
	if in.Empty() {
		return current, nil
	}
	merged, err := in.Apply(current)
	if err != nil {
		return models.Video{}, err
	}

	now := time.Now().UTC()
	set := bson.M{
		"title":       merged.Title,
		"description": merged.Description,
		"category":    merged.Category,
		"platform":    merged.Platform,
		"video_id":    merged.VideoID,
		"video_url":   merged.VideoURL,
		"thumbnail":   merged.Thumbnail,
		"status":      merged.Status,
		"updated_at":  now,
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Video
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": current.ID}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, err
	}
	return out, nil
}

// Delete removes a video and returns the deleted record so callers can
// clean up its stored thumbnail.
func (s *Store) Delete(ctx context.Context, hexID string) (models.Video, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return models.Video{}, ErrNotFound
	}
	var v models.Video
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, err
	}
	return v, nil
}
