// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"strings"
	"time"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Security headers
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to the portfolio API lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Admin session configuration
	SessionKey      string        // Secret key for signing session cookies (must be strong in production)
	SessionName     string        // Cookie name for sessions (default: reelfolio-session)
	SessionDomain   string        // Cookie domain (blank means current host)
	SessionMaxAge   time.Duration // Session lifetime (default: 24h)
	SessionSameSite string        // lax, strict, or none

	// FrontendURL is the single-page site origin. It is the only CORS origin
	// allowed and the base of the admin panel link in booking alerts.
	FrontendURL string

	// Admin account created on first start
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/uploads")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "uploads/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Email/SMTP configuration
	MailSMTPHost    string        // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort    int           // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser    string        // SMTP username
	MailSMTPPass    string        // SMTP password
	MailFrom        string        // From email address
	MailFromName    string        // From display name
	MailSendTimeout time.Duration // Deadline for one dial-and-send

	// Operation deadlines (see system/timeouts)
	StoreTimeout  time.Duration
	UploadTimeout time.Duration

	// Booking notification delivery
	NotifyAdminEmail      string        // Receives new-booking alerts (default: AdminEmail)
	NotifyMaxAttempts     int           // Send attempts per message before giving up
	NotifyRetryInterval   time.Duration // Base backoff between attempts
	NotificationRetention time.Duration // How long sent messages stay in the outbox

	// BusinessName appears in email subjects and signatures.
	BusinessName string

	// Audit logging configuration
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	AuditLogAuth   string        // Login and logout events
	AuditLogAdmin  string        // Catalog and booking changes
	AuditRetention time.Duration // How long audit events are kept

	// MetricsToken guards /metrics with a bearer token. Empty leaves it open.
	MetricsToken string
}

// NotifyAdminAddress returns the alert recipient, falling back to the admin email.
func (c AppConfig) NotifyAdminAddress() string {
	if c.NotifyAdminEmail != "" {
		return c.NotifyAdminEmail
	}
	return c.AdminEmail
}

// AdminPanelURL is the admin link placed in booking alerts.
func (c AppConfig) AdminPanelURL() string {
	if c.FrontendURL == "" {
		return ""
	}
	return strings.TrimRight(c.FrontendURL, "/") + "/admin"
}
