// internal/app/store/bookings/bookingstore.go
package bookingstore

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

// ErrNotFound is returned when no booking matches the given id.
var ErrNotFound = errors.New("booking not found")

// ErrInvalidStatus is returned by SetStatus for values outside the enumeration.
var ErrInvalidStatus = errors.New("invalid booking status")

// Store provides access to the bookings collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new booking store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bookings")}
}

// Create inserts a booking built by models.NewBooking.
// The status is forced to pending whatever the caller set.
func (s *Store) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.Status = models.BookingPending
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// GetByID returns a booking by hex id.
func (s *Store) GetByID(ctx context.Context, hexID string) (models.Booking, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return models.Booking{}, ErrNotFound
	}
	var b models.Booking
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Booking{}, ErrNotFound
		}
		return models.Booking{}, err
	}
	return b, nil
}

// List returns all bookings, newest first.
func (s *Store) List(ctx context.Context) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bookings := []models.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// SetStatus sets a booking's status and returns the updated record along
// with the status it replaced. The read and the write are one atomic
// operation, so of several concurrent calls only one observes any given
// previous status.
func (s *Store) SetStatus(ctx context.Context, hexID, status string) (updated models.Booking, prevStatus string, err error) {
	if !models.IsValidBookingStatus(status) {
		return models.Booking{}, "", ErrInvalidStatus
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return models.Booking{}, "", ErrNotFound
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var b models.Booking
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": now}},
		opts,
	).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Booking{}, "", ErrNotFound
		}
		return models.Booking{}, "", err
	}

	prevStatus = b.Status
	b.Status = status
	b.UpdatedAt = &now
	return b, prevStatus, nil
}

// Delete removes a booking and returns the deleted record.
func (s *Store) Delete(ctx context.Context, hexID string) (models.Booking, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return models.Booking{}, ErrNotFound
	}
	var b models.Booking
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Booking{}, ErrNotFound
		}
		return models.Booking{}, err
	}
	return b, nil
}

// CountByStatus returns how many bookings are in each status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(models.AllBookingStatuses()))
	for _, st := range models.AllBookingStatuses() {
		out[st] = 0
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
