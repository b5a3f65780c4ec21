// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/reelfolio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	for _, c := range Collections() {
		ensure(c.Name, c.Schema)
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// Collection pairs a collection name with its validator (nil for none).
type Collection struct {
	Name   string
	Schema bson.M
}

// Collections lists every collection the app owns, in creation order.
func Collections() []Collection {
	return []Collection{
		{"videos", videosSchema()},
		{"bookings", bookingsSchema()},
		{"admins", adminsSchema()},
		{"sessions", sessionsSchema()},
		{"notifications", notificationsSchema()},
		{"audit_events", nil},
	}
}

func strEnum(values []string) bson.A {
	out := make(bson.A, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// nonBlank is a string with at least one non-space character.
var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func videosSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "category", "video_url", "platform", "status", "created_at"},
			"properties": bson.M{
				"title":       nonBlank,
				"description": bson.M{"bsonType": "string"},
				"category":    bson.M{"enum": strEnum(models.AllVideoCategories())},
				"platform":    bson.M{"enum": strEnum(models.AllVideoPlatforms())},
				"video_id":    bson.M{"bsonType": "string"},
				"video_url":   nonBlank,
				"thumbnail":   bson.M{"bsonType": "string"},
				"status":      bson.M{"enum": strEnum(models.AllVideoStatuses())},
				"created_at":  bson.M{"bsonType": "date"},
				"updated_at":  bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func bookingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{
				"full_name", "email", "phone", "event_type", "event_date",
				"event_location", "budget_range", "project_description", "status", "created_at",
			},
			"properties": bson.M{
				"full_name":           nonBlank,
				"email":               nonBlank,
				"phone":               nonBlank,
				"event_type":          nonBlank,
				"event_date":          bson.M{"bsonType": "date"},
				"event_location":      nonBlank,
				"budget_range":        nonBlank,
				"project_description": nonBlank,
				"reference_file":      bson.M{"bsonType": "string"},
				"status":              bson.M{"enum": strEnum(models.AllBookingStatuses())},
				"created_at":          bson.M{"bsonType": "date"},
			},
		},
	}
}

func adminsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "password_hash", "email"},
			"properties": bson.M{
				"username":      nonBlank,
				"password_hash": bson.M{"bsonType": "string", "minLength": 20},
				"email":         bson.M{"bsonType": "string"},
			},
		},
	}
}

func sessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"token", "admin_id", "expires_at"},
			"properties": bson.M{
				"token":      bson.M{"bsonType": "string", "minLength": 32},
				"admin_id":   bson.M{"bsonType": "objectId"},
				"expires_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func notificationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"kind", "to", "subject", "status", "attempts"},
			"properties": bson.M{
				"kind":     bson.M{"enum": bson.A{"booking_received", "booking_alert", "booking_confirmed", "booking_rejected"}},
				"to":       nonBlank,
				"subject":  nonBlank,
				"status":   bson.M{"enum": bson.A{"pending", "sent", "failed"}},
				"attempts": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}
