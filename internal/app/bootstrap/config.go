// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/reelfolio/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "REELFOLIO"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: REELFOLIO_MONGO_URI, REELFOLIO_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "reelfolio", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Admin session
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "reelfolio-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime (e.g., 24h, 720h, 30m)"},
	{Name: "session_same_site", Default: "lax", Desc: "Session cookie SameSite: 'lax', 'strict', or 'none'"},

	// Frontend origin (CORS and admin links)
	{Name: "frontend_url", Default: "http://localhost:3000", Desc: "Frontend origin allowed by CORS; base of the admin panel link"},

	// Admin account
	{Name: "admin_username", Default: "admin", Desc: "Username of the admin account created on first start"},
	{Name: "admin_password", Default: "", Desc: "Password of the admin account (required on first start)"},
	{Name: "admin_email", Default: "", Desc: "Email of the admin account"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "URL prefix for serving local files"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},
	{Name: "storage_cloudfront_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cloudfront_key_pair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cloudfront_private_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@example.com", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Reelfolio", Desc: "From display name"},
	{Name: "mail_send_timeout", Default: "20s", Desc: "Deadline for a single SMTP send"},

	// Operation deadlines
	{Name: "store_timeout", Default: "5s", Desc: "Deadline for a single database call"},
	{Name: "upload_timeout", Default: "60s", Desc: "Deadline for writing one uploaded file to storage"},

	// Booking notifications
	{Name: "notify_admin_email", Default: "", Desc: "Recipient of new-booking alerts (defaults to admin_email)"},
	{Name: "notify_max_attempts", Default: 5, Desc: "Send attempts per notification before giving up"},
	{Name: "notify_retry_interval", Default: "1m", Desc: "Base delay between notification retries"},
	{Name: "notification_retention", Default: "720h", Desc: "How long finished notifications are kept (0 keeps them forever)"},

	{Name: "business_name", Default: "Reelfolio", Desc: "Business name shown in emails"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps them forever)"},

	{Name: "metrics_token", Default: "", Desc: "Bearer token for /metrics (leave empty to leave it open)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, REELFOLIO_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:      appValues.String("session_key"),
		SessionName:     appValues.String("session_name"),
		SessionDomain:   appValues.String("session_domain"),
		SessionMaxAge:   appValues.Duration("session_max_age", 24*time.Hour),
		SessionSameSite: appValues.String("session_same_site"),

		FrontendURL: appValues.String("frontend_url"),

		AdminUsername: appValues.String("admin_username"),
		AdminPassword: appValues.String("admin_password"),
		AdminEmail:    appValues.String("admin_email"),

		// File storage
		StorageType:      strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cloudfront_url"),
		StorageCFKeyPairID: appValues.String("storage_cloudfront_key_pair_id"),
		StorageCFKeyPath:   appValues.String("storage_cloudfront_private_key_path"),

		// Email/SMTP
		MailSMTPHost:    appValues.String("mail_smtp_host"),
		MailSMTPPort:    appValues.Int("mail_smtp_port"),
		MailSMTPUser:    appValues.String("mail_smtp_user"),
		MailSMTPPass:    appValues.String("mail_smtp_pass"),
		MailFrom:        appValues.String("mail_from"),
		MailFromName:    appValues.String("mail_from_name"),
		MailSendTimeout: appValues.Duration("mail_send_timeout", 20*time.Second),

		StoreTimeout:  appValues.Duration("store_timeout", 5*time.Second),
		UploadTimeout: appValues.Duration("upload_timeout", 60*time.Second),

		// Notifications
		NotifyAdminEmail:      appValues.String("notify_admin_email"),
		NotifyMaxAttempts:     appValues.Int("notify_max_attempts"),
		NotifyRetryInterval:   appValues.Duration("notify_retry_interval", time.Minute),
		NotificationRetention: appValues.Duration("notification_retention", 30*24*time.Hour),

		BusinessName: appValues.String("business_name"),

		// Audit logging
		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		MetricsToken: appValues.String("metrics_token"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Session key strength is enforced by auth.NewSessionManager, which knows
// whether cookies are secure.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(appCfg)
}

// validateAppConfig checks the settings that need no external calls.
func validateAppConfig(appCfg AppConfig) error {
	var errs []error

	switch appCfg.StorageType {
	case "local", "":
		if appCfg.StorageLocalPath == "" {
			errs = append(errs, errors.New("storage_local_path is required for local storage"))
		}
		if !strings.HasPrefix(appCfg.StorageLocalURL, "/") {
			errs = append(errs, fmt.Errorf("storage_local_url must start with '/': %q", appCfg.StorageLocalURL))
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" {
			errs = append(errs, errors.New("storage_s3_bucket is required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage_type %q (want 'local' or 's3')", appCfg.StorageType))
	}

	if strings.TrimSpace(appCfg.AdminUsername) == "" {
		errs = append(errs, errors.New("admin_username is required"))
	}

	for _, kv := range [][2]string{{"audit_log_auth", appCfg.AuditLogAuth}, {"audit_log_admin", appCfg.AuditLogAdmin}} {
		switch kv[1] {
		case auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
		default:
			errs = append(errs, fmt.Errorf("%s must be one of all, db, log, off: %q", kv[0], kv[1]))
		}
	}

	for name, d := range map[string]time.Duration{
		"notification_retention": appCfg.NotificationRetention,
		"audit_retention":        appCfg.AuditRetention,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative: %v", name, d))
		}
	}

	if appCfg.NotifyMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("notify_max_attempts must be at least 1: %d", appCfg.NotifyMaxAttempts))
	}

	return errors.Join(errs...)
}
