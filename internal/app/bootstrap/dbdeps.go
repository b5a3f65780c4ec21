// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/reelfolio/internal/app/system/mailer"
	"github.com/dalemusser/reelfolio/internal/app/system/metrics"
	"github.com/dalemusser/reelfolio/internal/app/system/notify"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed by value to EnsureSchema, Startup,
// BuildHandler, and Shutdown, so anything shared between request handlers
// and background jobs is built here once.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage holds thumbnails and booking reference files.
	FileStorage storage.Store

	// Mailer sends booking emails over SMTP.
	Mailer *mailer.Mailer

	// Metrics is the process-wide Prometheus registry.
	Metrics *metrics.Metrics

	// Notifier queues booking emails; the retry job and Shutdown share it
	// with the handlers.
	Notifier *notify.Notifier
}
