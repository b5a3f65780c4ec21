// internal/app/features/activity/activity.go
//
// Package activity lets the admin page through the audit trail: logins,
// catalog edits, and booking decisions.
package activity

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/reelfolio/internal/app/features/errors"
	adminstore "github.com/dalemusser/reelfolio/internal/app/store/admins"
	"github.com/dalemusser/reelfolio/internal/app/store/audit"
	"github.com/dalemusser/reelfolio/internal/app/system/auth"
	"github.com/dalemusser/reelfolio/internal/app/system/jsonutil"
	"github.com/dalemusser/reelfolio/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler serves the audit trail.
type Handler struct {
	auditStore *audit.Store
	adminStore *adminstore.Store
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new activity Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		auditStore: audit.New(db),
		adminStore: adminstore.New(db),
		errLog:     errLog,
		logger:     logger,
	}
}

// Routes returns the audit trail router.
//
// When mounted at /api/admin/activity:
//   - GET /api/admin/activity - events, newest first
//
// Query parameters: category (auth|admin), eventType, targetId, since
// (YYYY-MM-DD, UTC), before (the last id of the previous page), limit.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdmin)
	r.Get("/", h.list)
	return r
}

// item is one event as the admin panel shows it.
type item struct {
	ID            string            `json:"_id"`
	CreatedAt     time.Time         `json:"createdAt"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	Actor         string            `json:"actor,omitempty"`
	TargetID      string            `json:"targetId,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// page is the list response. NextBefore is empty on the last page.
type page struct {
	Events     []item `json:"events"`
	NextBefore string `json:"nextBefore,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, msg := parseFilter(r)
	if msg != "" {
		jsonutil.Fail(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := h.auditStore.Query(ctx, filter)
	if err != nil {
		h.errLog.Log(r, "failed to query audit events", err)
		jsonutil.InternalError(w, "Error fetching activity")
		return
	}

	out := page{Events: make([]item, 0, len(events))}
	actors := map[primitive.ObjectID]string{}
	for _, e := range events {
		it := item{
			ID:            e.ID.Hex(),
			CreatedAt:     e.CreatedAt,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ActorID != nil {
			it.Actor = h.actorName(ctx, actors, *e.ActorID)
		}
		if e.TargetID != nil {
			it.TargetID = e.TargetID.Hex()
		}
		out.Events = append(out.Events, it)
	}
	if int64(len(events)) == filter.Limit {
		out.NextBefore = events[len(events)-1].ID.Hex()
	}
	jsonutil.OK(w, out)
}

// actorName resolves an admin ID to a username, caching per request. A
// deleted admin shows as its hex ID.
func (h *Handler) actorName(ctx context.Context, cache map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name := id.Hex()
	if a, err := h.adminStore.GetByID(ctx, id); err == nil {
		name = a.Username
	}
	cache[id] = name
	return name
}

// parseFilter reads the query string. A non-empty message means 400.
func parseFilter(r *http.Request) (audit.QueryFilter, string) {
	q := r.URL.Query()
	f := audit.QueryFilter{
		EventType: strings.TrimSpace(q.Get("eventType")),
		Limit:     defaultLimit,
	}

	switch c := strings.TrimSpace(q.Get("category")); c {
	case "", audit.CategoryAuth, audit.CategoryAdmin:
		f.Category = c
	default:
		return f, "Invalid category. Must be one of: auth, admin."
	}

	if v := strings.TrimSpace(q.Get("targetId")); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, "Invalid targetId"
		}
		f.TargetID = &id
	}
	if v := strings.TrimSpace(q.Get("before")); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, "Invalid before cursor"
		}
		f.Before = &id
	}
	if v := strings.TrimSpace(q.Get("since")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, "since must be a date (YYYY-MM-DD)"
		}
		f.Since = &t
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, "limit must be a positive number"
		}
		f.Limit = int64(min(n, maxLimit))
	}
	return f, ""
}
