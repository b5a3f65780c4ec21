package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sessionstore "github.com/dalemusser/reelfolio/internal/app/store/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testKey = "this-is-a-32-character-long-key!"

// memStore is an in-memory SessionStore.
type memStore struct {
	mu        sync.Mutex
	byToken   map[string]sessionstore.Session
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{byToken: map[string]sessionstore.Session{}}
}

func (m *memStore) Create(_ context.Context, s sessionstore.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[s.Token] = s
	return nil
}

func (m *memStore) GetByToken(_ context.Context, token string) (*sessionstore.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil, sessionstore.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.byToken, token)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byToken)
}

func newTestManager(t *testing.T, store SessionStore) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(Config{Key: testKey, Name: "test-session", MaxAge: time.Hour}, store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return sm
}

// cookiesFrom copies Set-Cookie values from a response onto a new request.
func cookiesFrom(rec *httptest.ResponseRecorder, method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNewSessionManager(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		secure  bool
		store   SessionStore
		wantErr bool
	}{
		{"valid key dev mode", testKey, false, newMemStore(), false},
		{"valid key prod mode", testKey, true, newMemStore(), false},
		{"empty key", "", false, newMemStore(), true},
		{"weak key dev mode", "short", false, newMemStore(), false},
		{"weak key prod mode", "short", true, newMemStore(), true},
		{"default key prod mode", "dev-only-session-key-not-for-production", true, newMemStore(), true},
		{"missing store", testKey, false, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, err := NewSessionManager(Config{Key: tt.key, Secure: tt.secure}, tt.store, zap.NewNop())
			if tt.wantErr {
				if err == nil {
					t.Error("NewSessionManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSessionManager() error = %v", err)
			}
			if sm.SessionName() != "reelfolio-session" {
				t.Errorf("SessionName() = %q, want default", sm.SessionName())
			}
			if sm.maxAge != 24*time.Hour {
				t.Errorf("maxAge = %v, want 24h", sm.maxAge)
			}
		})
	}
}

func TestSameSiteMode(t *testing.T) {
	tests := []struct {
		in     string
		secure bool
		want   http.SameSite
	}{
		{"", false, http.SameSiteLaxMode},
		{"lax", true, http.SameSiteLaxMode},
		{"Strict", false, http.SameSiteStrictMode},
		{"none", true, http.SameSiteNoneMode},
		{"none", false, http.SameSiteLaxMode},
	}
	for _, tt := range tests {
		if got := sameSiteMode(tt.in, tt.secure, zap.NewNop()); got != tt.want {
			t.Errorf("sameSiteMode(%q, %v) = %v, want %v", tt.in, tt.secure, got, tt.want)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	sm := newTestManager(t, newMemStore())
	handler := sm.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no admin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/verify", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		want := `{"error":"Unauthorized. Please login."}` + "\n"
		if rec.Body.String() != want {
			t.Errorf("body = %q, want %q", rec.Body.String(), want)
		}
	})

	t.Run("with admin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := WithTestAdmin(httptest.NewRequest("GET", "/api/admin/verify", nil), &SessionAdmin{ID: primitive.NewObjectID()})
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})
}

func TestSessionLifecycle(t *testing.T) {
	store := newMemStore()
	sm := newTestManager(t, store)
	adminID := primitive.NewObjectID()

	// Login
	rec := httptest.NewRecorder()
	if err := sm.CreateSession(rec, httptest.NewRequest("POST", "/api/admin/login", nil), adminID); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("stored sessions = %d, want 1", store.count())
	}

	// The cookie resolves to the admin.
	var seen *SessionAdmin
	probe := sm.LoadSessionAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentAdmin(r)
	}))
	probe.ServeHTTP(httptest.NewRecorder(), cookiesFrom(rec, "GET", "/api/admin/verify"))
	if seen == nil {
		t.Fatal("LoadSessionAdmin did not inject the admin")
	}
	if seen.ID != adminID {
		t.Errorf("admin ID = %v, want %v", seen.ID, adminID)
	}

	// Logout removes the server-side record.
	logoutRec := httptest.NewRecorder()
	logoutReq := cookiesFrom(rec, "POST", "/api/admin/logout")
	if err := sm.DestroySession(logoutRec, logoutReq); err != nil {
		t.Fatalf("DestroySession() error = %v", err)
	}
	if store.count() != 0 {
		t.Errorf("stored sessions after logout = %d, want 0", store.count())
	}

	// Replaying the old cookie no longer authenticates.
	seen = nil
	probe.ServeHTTP(httptest.NewRecorder(), cookiesFrom(rec, "GET", "/api/admin/verify"))
	if seen != nil {
		t.Error("old cookie still authenticates after logout")
	}

	// A second logout with the same cookie is harmless.
	if err := sm.DestroySession(httptest.NewRecorder(), cookiesFrom(rec, "POST", "/api/admin/logout")); err != nil {
		t.Errorf("second DestroySession() error = %v", err)
	}
}

func TestCreateSession_RevokesPreviousToken(t *testing.T) {
	store := newMemStore()
	sm := newTestManager(t, store)
	adminID := primitive.NewObjectID()

	first := httptest.NewRecorder()
	sm.CreateSession(first, httptest.NewRequest("POST", "/api/admin/login", nil), adminID)

	second := httptest.NewRecorder()
	if err := sm.CreateSession(second, cookiesFrom(first, "POST", "/api/admin/login"), adminID); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if store.count() != 1 {
		t.Errorf("stored sessions = %d, want 1 (previous token revoked)", store.count())
	}
}

func TestDestroySession_StoreFailure(t *testing.T) {
	store := newMemStore()
	sm := newTestManager(t, store)

	rec := httptest.NewRecorder()
	sm.CreateSession(rec, httptest.NewRequest("POST", "/api/admin/login", nil), primitive.NewObjectID())

	store.deleteErr = errors.New("mongo down")
	if err := sm.DestroySession(httptest.NewRecorder(), cookiesFrom(rec, "POST", "/api/admin/logout")); err == nil {
		t.Error("DestroySession() error = nil, want store failure")
	}
}

func TestDestroySession_NoSession(t *testing.T) {
	sm := newTestManager(t, newMemStore())
	if err := sm.DestroySession(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/admin/logout", nil)); err != nil {
		t.Errorf("DestroySession() without a session error = %v, want nil", err)
	}
}

func TestLoadSessionAdmin_TamperedCookie(t *testing.T) {
	sm := newTestManager(t, newMemStore())

	req := httptest.NewRequest("GET", "/api/admin/verify", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "garbage"})

	called := false
	sm.LoadSessionAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := CurrentAdmin(r); ok {
			t.Error("tampered cookie produced an admin")
		}
	})).ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("next handler not called")
	}
}

func TestIsDefaultKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"dev-only-session-key", true},
		{"please-change-me-now", true},
		{"x9Qm2LrT7vKp4WzN8bYc3HdF6jGs1AeU", false},
	}
	for _, tt := range tests {
		if got := isDefaultKey(tt.key); got != tt.want {
			t.Errorf("isDefaultKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

// mockSecureCookieError implements securecookie.Error for testing.
type mockSecureCookieError struct {
	msg      string
	isDecode bool
}

func (e mockSecureCookieError) Error() string    { return e.msg }
func (e mockSecureCookieError) IsDecode() bool   { return e.isDecode }
func (e mockSecureCookieError) IsUsage() bool    { return false }
func (e mockSecureCookieError) IsInternal() bool { return false }
func (e mockSecureCookieError) Cause() error     { return nil }

func TestClassifySessionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType sessionErrorType
	}{
		{"nil", nil, sessionErrUnknown},
		{"expired", mockSecureCookieError{msg: "expired timestamp", isDecode: true}, sessionErrExpired},
		{"mac invalid", mockSecureCookieError{msg: "mac validation failed", isDecode: true}, sessionErrTampered},
		{"base64", mockSecureCookieError{msg: "base64 decode failed", isDecode: true}, sessionErrCorrupted},
		{"non-decode", mockSecureCookieError{msg: "backend error"}, sessionErrBackend},
		{"plain error", errors.New("boom"), sessionErrBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := classifySessionError(tt.err)
			if got != tt.wantType {
				t.Errorf("classifySessionError() = %v, want %v", got, tt.wantType)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"open when unconfigured", "", "", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"valid", "s3cret", "Bearer s3cret", http.StatusOK},
		{"case-insensitive scheme", "s3cret", "bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			BearerToken(tt.token, zap.NewNop())(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
