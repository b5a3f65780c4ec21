// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/reelfolio/internal/app/store/audit"
	"github.com/dalemusser/reelfolio/internal/app/system/network"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination values for Config fields.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for login and logout events.
	Auth string
	// Admin controls logging for catalog and booking changes.
	Admin string
}

// EventStore persists audit events.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records security and admin-action events to MongoDB and/or zap.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to configuration.
// A nil Logger is a no-op so handlers under test can omit it.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = DestAll
	}

	switch setting {
	case DestOff:
		return
	case DestAll, DestLog:
		l.logToZap(event)
	}

	if (setting == DestAll || setting == DestDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        network.GetClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful admin login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, adminID primitive.ObjectID, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.ActorID = &adminID
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login attempt for an unknown username.
// The client sees the same "invalid credentials" answer as for a wrong password.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attempted string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_username": attempted}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login attempt with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, adminID primitive.ObjectID, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.ActorID = &adminID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

// Logout logs an admin logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, adminID primitive.ObjectID) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLogout, true)
	e.ActorID = &adminID
	l.Log(ctx, e)
}

// --- Admin Events ---

// VideoCreated logs a new catalog entry.
func (l *Logger) VideoCreated(ctx context.Context, r *http.Request, actorID, videoID primitive.ObjectID, title string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventVideoCreated, true)
	e.ActorID = &actorID
	e.TargetID = &videoID
	e.Details = map[string]string{"title": title}
	l.Log(ctx, e)
}

// VideoUpdated logs a catalog edit with the names of the fields that changed.
func (l *Logger) VideoUpdated(ctx context.Context, r *http.Request, actorID, videoID primitive.ObjectID, fieldsChanged string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventVideoUpdated, true)
	e.ActorID = &actorID
	e.TargetID = &videoID
	e.Details = map[string]string{"fields_changed": fieldsChanged}
	l.Log(ctx, e)
}

// VideoDeleted logs a catalog removal.
func (l *Logger) VideoDeleted(ctx context.Context, r *http.Request, actorID, videoID primitive.ObjectID, title string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventVideoDeleted, true)
	e.ActorID = &actorID
	e.TargetID = &videoID
	e.Details = map[string]string{"title": title}
	l.Log(ctx, e)
}

// BookingStatusChanged logs an admin decision on a booking.
func (l *Logger) BookingStatusChanged(ctx context.Context, r *http.Request, actorID, bookingID primitive.ObjectID, status string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventBookingStatusChanged, true)
	e.ActorID = &actorID
	e.TargetID = &bookingID
	e.Details = map[string]string{"status": status}
	l.Log(ctx, e)
}

// BookingDeleted logs a booking removal.
func (l *Logger) BookingDeleted(ctx context.Context, r *http.Request, actorID, bookingID primitive.ObjectID) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventBookingDeleted, true)
	e.ActorID = &actorID
	e.TargetID = &bookingID
	l.Log(ctx, e)
}
