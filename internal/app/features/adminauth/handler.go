// internal/app/features/adminauth/handler.go
//
// Package adminauth handles admin login, logout, and session checks for the
// single-page admin client.
package adminauth

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/reelfolio/internal/app/features/errors"
	adminstore "github.com/dalemusser/reelfolio/internal/app/store/admins"
	"github.com/dalemusser/reelfolio/internal/app/system/auditlog"
	"github.com/dalemusser/reelfolio/internal/app/system/auth"
	"github.com/dalemusser/reelfolio/internal/app/system/authutil"
	"github.com/dalemusser/reelfolio/internal/app/system/formutil"
	"github.com/dalemusser/reelfolio/internal/app/system/jsonutil"
	"github.com/dalemusser/reelfolio/internal/app/system/normalize"
	"github.com/dalemusser/reelfolio/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgLoginError         = "Login error. Please try again."
)

// Handler provides admin authentication handlers.
type Handler struct {
	adminStore *adminstore.Store
	sessionMgr *auth.SessionManager
	audit      *auditlog.Logger
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new adminauth Handler.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		adminStore: adminstore.New(db),
		sessionMgr: sessionMgr,
		audit:      audit,
		errLog:     errLog,
		logger:     logger,
	}
}

// login checks the credentials and starts a session.
// Unknown usernames and wrong passwords get the same answer; the audit
// trail records which one it was.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	vals, err := formutil.Read(w, r)
	if err != nil {
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := normalize.Username(vals.Get("username"))
	password := vals.Get("password")
	if username == "" || password == "" {
		jsonutil.Fail(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	admin, err := h.adminStore.GetByUsername(ctx, username)
	if errors.Is(err, adminstore.ErrNotFound) {
		authutil.BurnCompare(password)
		h.audit.LoginFailedUserNotFound(ctx, r, username)
		jsonutil.Fail(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		h.errLog.Log(r, "database error during login lookup", err)
		jsonutil.Fail(w, http.StatusInternalServerError, msgLoginError)
		return
	}

	if !authutil.CheckPassword(password, admin.PasswordHash) {
		h.audit.LoginFailedWrongPassword(ctx, r, admin.ID, admin.Username)
		jsonutil.Fail(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	if err := h.sessionMgr.CreateSession(w, r, admin.ID); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		jsonutil.Fail(w, http.StatusInternalServerError, msgLoginError)
		return
	}

	h.audit.LoginSuccess(ctx, r, admin.ID, admin.Username)
	jsonutil.Success(w, http.StatusOK, "Login successful", map[string]any{
		"admin": admin.Summary(),
	})
}

// logout ends the current session. It sits behind RequireAdmin, so a second
// call after the session is gone answers 401.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	a, _ := auth.CurrentAdmin(r)

	if err := h.sessionMgr.DestroySession(w, r); err != nil {
		h.errLog.Log(r, "failed to destroy session", err)
		jsonutil.Fail(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	if a != nil {
		h.audit.Logout(r.Context(), r, a.ID)
	}
	jsonutil.Success(w, http.StatusOK, "Logged out successfully", nil)
}

// verify reports that the caller holds a live admin session.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]bool{"authenticated": true})
}
