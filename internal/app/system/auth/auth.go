package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	sessionstore "github.com/dalemusser/reelfolio/internal/app/store/sessions"
	"github.com/dalemusser/reelfolio/internal/app/system/jsonutil"
	"github.com/dalemusser/reelfolio/internal/app/system/network"
	"github.com/dalemusser/reelfolio/internal/app/system/timeouts"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MsgUnauthorized is the body every guarded endpoint returns without a session.
const MsgUnauthorized = "Unauthorized. Please login."

// Session error classification for logging and monitoring.
type sessionErrorType int

const (
	sessionErrUnknown   sessionErrorType = iota
	sessionErrExpired                    // timestamp expired - normal
	sessionErrTampered                   // MAC invalid - potential attack
	sessionErrCorrupted                  // decode failed - corruption or key rotation
	sessionErrBackend                    // store/backend failure
)

// The signed cookie holds only the opaque token.
const sessionTokenKey = "session_token"

/*─────────────────────────────────────────────────────────────────────────────*
| SessionStore - server-side token → admin mapping                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionStore persists server-side sessions. *sessionstore.Store satisfies it.
type SessionStore interface {
	Create(ctx context.Context, s sessionstore.Session) error
	GetByToken(ctx context.Context, token string) (*sessionstore.Session, error)
	Delete(ctx context.Context, token string) error
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// Config configures a SessionManager.
type Config struct {
	Key      string        // cookie signing key, ≥32 chars in production
	Name     string        // cookie name (default "reelfolio-session")
	Domain   string        // empty means current host
	MaxAge   time.Duration // session lifetime (default 24h)
	Secure   bool          // Secure cookies; also enforces a strong key
	SameSite string        // "lax" (default), "strict", or "none"
}

// SessionManager gates admin endpoints on a server-side session.
// The browser holds a signed cookie carrying an opaque token; the token maps
// to an admin id in the injected SessionStore.
type SessionManager struct {
	cookies *sessions.CookieStore
	store   SessionStore
	logger  *zap.Logger
	name    string
	maxAge  time.Duration
}

// NewSessionManager creates a SessionManager.
// Returns an error if the key is empty, or weak while Secure is set.
func NewSessionManager(cfg Config, store SessionStore, logger *zap.Logger) (*SessionManager, error) {
	if cfg.Key == "" {
		return nil, &SessionConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}
	if store == nil {
		return nil, &SessionConfigError{Message: "session store is required"}
	}

	isWeak := len(cfg.Key) < 32 || isDefaultKey(cfg.Key)
	if cfg.Secure {
		if isWeak {
			return nil, &SessionConfigError{
				Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(cfg.Key)),
			zap.Bool("is_default", isDefaultKey(cfg.Key)))
	}

	if cfg.Name == "" {
		cfg.Name = "reelfolio-session"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}

	cookies := sessions.NewCookieStore([]byte(cfg.Key))
	cookies.Options = &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: sameSiteMode(cfg.SameSite, cfg.Secure, logger),
	}
	// The cookie's own timestamp check matches the server-side expiry.
	cookies.MaxAge(int(cfg.MaxAge.Seconds()))

	logger.Info("session manager initialized",
		zap.Bool("secure", cfg.Secure),
		zap.String("name", cfg.Name),
		zap.String("domain", cfg.Domain),
		zap.Duration("max_age", cfg.MaxAge))

	return &SessionManager{
		cookies: cookies,
		store:   store,
		logger:  logger,
		name:    cfg.Name,
		maxAge:  cfg.MaxAge,
	}, nil
}

// sameSiteMode maps the configured value. SameSite=None without Secure is
// rejected by browsers, so it falls back to Lax.
func sameSiteMode(v string, secure bool, logger *zap.Logger) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		if !secure {
			logger.Warn("session_same_site=none requires secure cookies; using lax")
			return http.SameSiteLaxMode
		}
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SessionConfigError is returned when session configuration is invalid.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string {
	return e.Message
}

// SessionName returns the configured session cookie name.
func (sm *SessionManager) SessionName() string {
	return sm.name
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-admin helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionAdmin is the authenticated admin attached to a request.
type SessionAdmin struct {
	ID    primitive.ObjectID
	Token string
}

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the admin & "found?" flag from the request context.
func CurrentAdmin(r *http.Request) (*SessionAdmin, bool) {
	a, ok := r.Context().Value(currentAdminKey).(*SessionAdmin)
	return a, ok
}

func withAdmin(r *http.Request, a *SessionAdmin) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentAdminKey, a))
}

// WithTestAdmin injects a SessionAdmin into the request context for testing.
func WithTestAdmin(r *http.Request, a *SessionAdmin) *http.Request {
	return withAdmin(r, a)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionAdmin returns middleware that resolves the session cookie
// against the session store and injects the admin into context when valid.
// It never rejects; RequireAdmin does that.
func (sm *SessionManager) LoadSessionAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.cookies.Get(r, sm.name)
		if err != nil {
			sm.logCookieError(r, err)
		}
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}

		token := getString(sess, sessionTokenKey)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		record, err := sm.store.GetByToken(ctx, token)
		cancel()
		switch {
		case err == nil:
			r = withAdmin(r, &SessionAdmin{ID: record.AdminID, Token: token})
		case errors.Is(err, sessionstore.ErrNotFound):
			sm.logger.Debug("session token not found or expired",
				zap.String("path", r.URL.Path))
		default:
			sm.logger.Error("session lookup failed",
				zap.Error(err),
				zap.String("path", r.URL.Path))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin returns middleware that answers 401 unless an admin is in context.
// There is no redirect; the client decides where to send the user.
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentAdmin(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		jsonutil.Error(w, http.StatusUnauthorized, MsgUnauthorized)
	})
}

func (sm *SessionManager) logCookieError(r *http.Request, err error) {
	errType, errCategory := classifySessionError(err)
	switch errType {
	case sessionErrExpired:
		sm.logger.Debug("session cookie expired",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	case sessionErrTampered:
		sm.logger.Warn("session MAC validation failed (possible tampering)",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path),
			zap.String("ip", network.GetClientIP(r)),
			zap.String("user_agent", r.UserAgent()))
	case sessionErrCorrupted:
		sm.logger.Info("session cookie decode failed",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	default:
		sm.logger.Warn("session cookie error",
			zap.Error(err),
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session lifecycle                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateSession starts a fresh session for adminID. A token already on the
// cookie is revoked first so a pre-set cookie cannot be promoted by login.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, adminID primitive.ObjectID) error {
	sess, err := sm.cookies.Get(r, sm.name)
	if err != nil || sess == nil {
		sess, _ = sm.cookies.New(r, sm.name)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if old := getString(sess, sessionTokenKey); old != "" {
		if err := sm.store.Delete(ctx, old); err != nil {
			sm.logger.Warn("failed to revoke previous session token", zap.Error(err))
		}
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := sm.store.Create(ctx, sessionstore.Session{
		Token:     token,
		AdminID:   adminID,
		IPAddress: network.GetClientIP(r),
		UserAgent: r.UserAgent(),
		ExpiresAt: now.Add(sm.maxAge),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	sess.Values[sessionTokenKey] = token
	sess.Options.MaxAge = int(sm.maxAge.Seconds())
	return sess.Save(r, w)
}

// DestroySession deletes the server-side session and expires the cookie.
// Calling it without a session is a no-op; a store failure is returned.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.cookies.Get(r, sm.name)
	if err != nil || sess == nil {
		sess, _ = sm.cookies.New(r, sm.name)
	}

	token := getString(sess, sessionTokenKey)
	if a, ok := CurrentAdmin(r); ok && token == "" {
		token = a.Token
	}
	if token != "" {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if err := sm.store.Delete(ctx, token); err != nil {
			return err
		}
	}

	delete(sess.Values, sessionTokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// GenerateSessionToken generates a random URL-safe token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

// isDefaultKey checks if the session key looks like a placeholder.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifySessionError categorizes a cookie error for logging.
func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	errStr := strings.ToLower(err.Error())

	var scErr securecookie.Error
	if errors.As(err, &scErr) {
		if !scErr.IsDecode() {
			return sessionErrBackend, "backend"
		}
		switch {
		case strings.Contains(errStr, "expired timestamp"):
			return sessionErrExpired, "expired"
		case strings.Contains(errStr, "mac") || strings.Contains(errStr, "hash"):
			return sessionErrTampered, "mac_invalid"
		case strings.Contains(errStr, "base64") || strings.Contains(errStr, "decode"):
			return sessionErrCorrupted, "decode_failed"
		default:
			return sessionErrCorrupted, "decode_other"
		}
	}

	return sessionErrBackend, "unknown"
}
