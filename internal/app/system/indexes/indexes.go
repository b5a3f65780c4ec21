// Package indexes reconciles the MongoDB indexes every collection needs.
//
// EnsureAll runs at startup and is idempotent: an index whose key pattern
// and options already exist is reused whatever its name; one whose options
// changed (say, becoming unique) is dropped and rebuilt.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Index is one desired index.
type Index struct {
	Name   string
	Keys   bson.D
	Unique bool
	// TTL expires documents when the (single, date) key is older than
	// TTL. Zero TTL with Expire set removes them at the stored time.
	Expire bool
	TTL    time.Duration
}

// Set is the desired index list for a collection.
type Set struct {
	Collection string
	Indexes    []Index
}

func desc(fields ...string) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		d = append(d, bson.E{Key: f, Value: -1})
	}
	return d
}

// All lists the indexes for every collection.
func All() []Set {
	return []Set{
		{"videos", []Index{
			// public gallery: visible videos, newest first
			{Name: "idx_video_status_created", Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
			{Name: "idx_video_created", Keys: desc("created_at", "_id")},
		}},
		{"bookings", []Index{
			{Name: "idx_booking_created", Keys: desc("created_at", "_id")},
			{Name: "idx_booking_status", Keys: bson.D{{Key: "status", Value: 1}}},
		}},
		{"admins", []Index{
			{Name: "uniq_admin_username", Keys: bson.D{{Key: "username", Value: 1}}, Unique: true},
		}},
		{"sessions", []Index{
			{Name: "idx_session_token", Keys: bson.D{{Key: "token", Value: 1}}, Unique: true},
			{Name: "idx_session_admin", Keys: bson.D{{Key: "admin_id", Value: 1}}},
			{Name: "idx_session_ttl", Keys: bson.D{{Key: "expires_at", Value: 1}}, Expire: true},
		}},
		{"notifications", []Index{
			// retry pass: failed and due
			{Name: "idx_notification_status_next", Keys: bson.D{{Key: "status", Value: 1}, {Key: "next_attempt_at", Value: 1}}},
			// stale pending sweep
			{Name: "idx_notification_status_created", Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
			// pruning delivered messages
			{Name: "idx_notification_status_sent", Keys: bson.D{{Key: "status", Value: 1}, {Key: "sent_at", Value: 1}}},
			// pruning abandoned failures
			{Name: "idx_notification_status_updated", Keys: bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: 1}}},
			{Name: "idx_notification_booking", Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: 1}}},
		}},
		{"audit_events", []Index{
			{Name: "idx_audit_created", Keys: desc("created_at", "_id")},
			{Name: "idx_audit_target", Keys: bson.D{{Key: "target_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Name: "idx_audit_category_type", Keys: bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
	}
}

// EnsureAll reconciles every Set and reports all failures together.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var errs []error
	for _, set := range All() {
		if err := ensureSet(ctx, db.Collection(set.Collection), set.Indexes); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", set.Collection, err))
		}
	}
	return errors.Join(errs...)
}

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             bool   `bson:"unique"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds"`
}

// keySig renders a key pattern as "field:dir, ..." for comparison.
func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func (ix Index) model() mongo.IndexModel {
	opts := options.Index().SetName(ix.Name)
	if ix.Unique {
		opts.SetUnique(true)
	}
	if ix.Expire {
		opts.SetExpireAfterSeconds(int32(ix.TTL / time.Second))
	}
	return mongo.IndexModel{Keys: ix.Keys, Options: opts}
}

// matches reports whether an existing index can stand in for ix.
func (ix Index) matches(ex existingIndex) bool {
	if ex.Unique != ix.Unique {
		return false
	}
	if !ix.Expire {
		return ex.ExpireAfterSeconds == nil
	}
	return ex.ExpireAfterSeconds != nil && *ex.ExpireAfterSeconds == int32(ix.TTL/time.Second)
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var ex existingIndex
		if err := cur.Decode(&ex); err != nil {
			return nil, err
		}
		out[keySig(ex.Key)] = ex
	}
	return out, cur.Err()
}

func ensureSet(ctx context.Context, coll *mongo.Collection, want []Index) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to compare.
		existing = map[string]existingIndex{}
	}

	var errs []error
	for _, ix := range want {
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("index", ix.Name),
			zap.String("keys", keySig(ix.Keys)))

		if ex, ok := existing[keySig(ix.Keys)]; ok {
			if ix.matches(ex) {
				log.Debug("index present", zap.String("existing_name", ex.Name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Errorf("%s: drop outdated %s: %w", ix.Name, ex.Name, err))
				continue
			}
			log.Info("dropped outdated index", zap.String("existing_name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, ix.model()); err != nil {
			if ix.Unique && isDuplicateKeyErr(err) {
				err = errors.New("duplicate values present")
			}
			log.Warn("index create failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", ix.Name, err))
			continue
		}
		log.Info("index created")
	}
	return errors.Join(errs...)
}

func isDuplicateKeyErr(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
