// Package testutil holds shared fixtures for package tests: a throwaway
// MongoDB database per test, HTTP request helpers, and in-memory file storage.
package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/reelfolio/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURIEnv overrides the test server address.
const MongoURIEnv = "REELFOLIO_TEST_MONGO_URI"

const (
	defaultMongoURI = "mongodb://localhost:27017"
	dbPrefix        = "reelfolio_test_"
)

var shared struct {
	once   sync.Once
	client *mongo.Client
	err    error
}

func mongoURI() string {
	if uri := strings.TrimSpace(os.Getenv(MongoURIEnv)); uri != "" {
		return uri
	}
	return defaultMongoURI
}

func sharedClient() (*mongo.Client, error) {
	shared.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(mongoURI()).
			SetMaxPoolSize(100).
			SetServerSelectionTimeout(5 * time.Second)

		c, err := mongo.Connect(ctx, opts)
		if err == nil {
			err = c.Ping(ctx, nil)
		}
		shared.client, shared.err = c, err
	})
	return shared.client, shared.err
}

// SetupTestDB returns an empty database with the app's indexes applied.
// The database is private to t and dropped when t finishes. The test is
// skipped under -short or when no MongoDB server is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB test in short mode")
	}

	c, err := sharedClient()
	if err != nil {
		t.Skipf("MongoDB not reachable at %s: %v", mongoURI(), err)
	}

	db := c.Database(DBName(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop %s: %v", db.Name(), err)
		}
	})
	return db
}

// DBName maps a test name to a database name. MongoDB caps names at 63
// bytes, so long names keep a readable head plus a hash of the whole name.
func DBName(testName string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, testName)

	const maxLen = 63 - len(dbPrefix)
	if len(clean) <= maxLen {
		return dbPrefix + clean
	}
	sum := sha1.Sum([]byte(testName))
	tag := hex.EncodeToString(sum[:])[:12]
	return dbPrefix + clean[:maxLen-len(tag)-1] + "_" + tag
}

// TestContext returns a context suitable for a single test's DB calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
