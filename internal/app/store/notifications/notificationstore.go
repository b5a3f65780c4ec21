// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no notification matches.
var ErrNotFound = errors.New("notification not found")

// Kind identifies which template produced a notification.
type Kind string

const (
	KindBookingReceived  Kind = "booking_received"  // to the client on submission
	KindBookingAlert     Kind = "booking_alert"     // to the studio on submission
	KindBookingConfirmed Kind = "booking_confirmed" // to the client
	KindBookingRejected  Kind = "booking_rejected"  // to the client
)

// Delivery states
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Notification is one outbound email and its delivery history.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Kind      Kind               `bson:"kind"`
	BookingID primitive.ObjectID `bson:"booking_id"`
	To        string             `bson:"to"`
	Subject   string             `bson:"subject"`
	TextBody  string             `bson:"text_body"`
	HTMLBody  string             `bson:"html_body"`

	Status        string     `bson:"status"`
	Attempts      int        `bson:"attempts"`
	LastError     string     `bson:"last_error,omitempty"`
	NextAttemptAt *time.Time `bson:"next_attempt_at,omitempty"`
	SentAt        *time.Time `bson:"sent_at,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store provides access to the notifications collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new notification store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Enqueue records a pending notification and returns it with its id.
func (s *Store) Enqueue(ctx context.Context, n Notification) (Notification, error) {
	now := time.Now().UTC()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.Status = StatusPending
	n.Attempts = 0
	n.CreatedAt = now
	n.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":     StatusSent,
			"sent_at":    now,
			"updated_at": now,
		},
		"$unset": bson.M{"next_attempt_at": "", "last_error": ""},
		"$inc":   bson.M{"attempts": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed records a failed attempt. next is when the retry task may try
// again; nil means give up.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID, cause string, next *time.Time) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"status":     StatusFailed,
			"last_error": cause,
			"updated_at": now,
		},
		"$inc": bson.M{"attempts": 1},
	}
	if next != nil {
		update["$set"].(bson.M)["next_attempt_at"] = *next
	} else {
		update["$unset"] = bson.M{"next_attempt_at": ""}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDue returns failed notifications whose retry time has come and that
// have fewer than maxAttempts attempts, oldest first.
func (s *Store) ListDue(ctx context.Context, now time.Time, maxAttempts int, limit int64) ([]Notification, error) {
	filter := bson.M{
		"status":          StatusFailed,
		"attempts":        bson.M{"$lt": maxAttempts},
		"next_attempt_at": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "next_attempt_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListStalePending returns notifications still pending after olderThan.
// These are sends that were in flight when the process stopped.
func (s *Store) ListStalePending(ctx context.Context, olderThan time.Time, limit int64) ([]Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{
		"status":     StatusPending,
		"created_at": bson.M{"$lt": olderThan},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByBooking returns every notification recorded for a booking, oldest first.
func (s *Store) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFinishedBefore prunes notifications that will never be sent again:
// delivered ones whose sent_at is before cutoff, and failures that used up
// their attempts (no next_attempt_at) last touched before cutoff.
func (s *Store) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{
			"status":  StatusSent,
			"sent_at": bson.M{"$lt": cutoff},
		},
		bson.M{
			"status":          StatusFailed,
			"next_attempt_at": bson.M{"$exists": false},
			"updated_at":      bson.M{"$lt": cutoff},
		},
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
