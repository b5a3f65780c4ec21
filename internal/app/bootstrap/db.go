// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	adminstore "github.com/dalemusser/reelfolio/internal/app/store/admins"
	notificationstore "github.com/dalemusser/reelfolio/internal/app/store/notifications"
	"github.com/dalemusser/reelfolio/internal/app/system/indexes"
	"github.com/dalemusser/reelfolio/internal/app/system/mailer"
	"github.com/dalemusser/reelfolio/internal/app/system/metrics"
	"github.com/dalemusser/reelfolio/internal/app/system/notify"
	"github.com/dalemusser/reelfolio/internal/app/system/seeding"
	"github.com/dalemusser/reelfolio/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// ConnectDB opens everything request handlers and background jobs share:
// the MongoDB pool, file storage, the mailer, metrics, and the notifier.
// No SMTP connection is made here; Startup checks the relay.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}
	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize))

	files, err := openStorage(ctx, appCfg, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	m := metrics.New()
	notifier := notify.New(notificationstore.New(db), mail, m, logger, notify.Config{
		AppName:       appCfg.BusinessName,
		AdminEmail:    appCfg.NotifyAdminAddress(),
		AdminURL:      appCfg.AdminPanelURL(),
		MaxAttempts:   appCfg.NotifyMaxAttempts,
		RetryInterval: appCfg.NotifyRetryInterval,
	})
	if appCfg.NotifyAdminAddress() == "" {
		logger.Warn("no admin email configured; new-booking alerts are disabled")
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		FileStorage:   files,
		Mailer:        mail,
		Metrics:       m,
		Notifier:      notifier,
	}, nil
}

// openStorage builds the store for thumbnails and booking reference files.
func openStorage(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		s, err := storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 storage: %w", err)
		}
		logger.Info("uploads go to S3",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix),
			zap.Bool("cloudfront", appCfg.StorageCFURL != ""))
		return s, nil
	case "local", "":
		s, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, fmt.Errorf("open local storage: %w", err)
		}
		logger.Info("uploads go to local disk",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL))
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
}

// EnsureSchema prepares the database: collections with their validators,
// then indexes, then the admin account. ctx carries coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("collection validators", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("indexes", zap.Error(err))
		return err
	}

	// Runs after indexes so the unique username index guards the insert.
	if _, err := seeding.EnsureAdmin(ctx, adminstore.New(db), seeding.AdminSeed{
		Username: appCfg.AdminUsername,
		Password: appCfg.AdminPassword,
		Email:    appCfg.AdminEmail,
	}, logger); err != nil {
		logger.Error("admin account", zap.Error(err))
		return err
	}

	logger.Info("schema ready", zap.Int("collections", len(validators.Collections())))
	return nil
}
