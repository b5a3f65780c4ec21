// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	activityfeature "github.com/dalemusser/reelfolio/internal/app/features/activity"
	adminauthfeature "github.com/dalemusser/reelfolio/internal/app/features/adminauth"
	bookingsfeature "github.com/dalemusser/reelfolio/internal/app/features/bookings"
	errorsfeature "github.com/dalemusser/reelfolio/internal/app/features/errors"
	healthfeature "github.com/dalemusser/reelfolio/internal/app/features/health"
	videosfeature "github.com/dalemusser/reelfolio/internal/app/features/videos"
	"github.com/dalemusser/reelfolio/internal/app/store/audit"
	sessionstore "github.com/dalemusser/reelfolio/internal/app/store/sessions"
	"github.com/dalemusser/reelfolio/internal/app/system/apicors"
	"github.com/dalemusser/reelfolio/internal/app/system/auditlog"
	"github.com/dalemusser/reelfolio/internal/app/system/auth"
	"github.com/dalemusser/reelfolio/internal/app/system/timeouts"
	"github.com/dalemusser/reelfolio/internal/app/system/upload"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// Everything the single-page site calls lives under /api. Admin routers share
// the /api/admin prefix; each applies RequireAdmin itself so login stays open.
// Uploaded files are served from storage_local_url when storage is local.
// Operational endpoints (/metrics, /livez, /readyz) sit at the root.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies (and a strong key) are required in production.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(auth.Config{
		Key:      appCfg.SessionKey,
		Name:     appCfg.SessionName,
		Domain:   appCfg.SessionDomain,
		MaxAge:   appCfg.SessionMaxAge,
		Secure:   secure,
		SameSite: appCfg.SessionSameSite,
	}, sessionstore.New(deps.MongoDatabase), logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLogger := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	uploads := upload.New(deps.FileStorage, deps.Metrics, logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Request IDs tag error logs so a failure can be matched to its request.
	r.Use(chimw.RequestID)

	// Request timeout middleware: long enough for a full upload plus its insert.
	r.Use(chimw.Timeout(timeouts.Upload() + timeouts.Short()))

	// CORS middleware: credentialed, restricted to the frontend origin.
	// Must be early in the chain to handle preflight requests.
	r.Use(apicors.Middleware(apicors.Config{Origins: []string{appCfg.FrontendURL}}))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: attaches the admin identity when the cookie maps to
	// a live session. Public routes simply have none.
	r.Use(sessionMgr.LoadSessionAdmin)

	// ─────────────────────────────────────────────────────────────────────────────
	// Operational endpoints
	// ─────────────────────────────────────────────────────────────────────────────

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	healthfeature.MountRootEndpoints(r, healthHandler)

	r.With(auth.BearerToken(appCfg.MetricsToken, logger)).Handle("/metrics", deps.Metrics.Handler())

	// Uploaded files (local storage only)
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// ─────────────────────────────────────────────────────────────────────────────
	// JSON API
	// ─────────────────────────────────────────────────────────────────────────────

	videosHandler := videosfeature.NewHandler(deps.MongoDatabase, uploads, auditLogger, errLog, logger)
	bookingsHandler := bookingsfeature.NewHandler(
		deps.MongoDatabase,
		uploads,
		deps.Notifier,
		deps.Metrics,
		auditLogger,
		errLog,
		logger,
	)
	adminAuthHandler := adminauthfeature.NewHandler(deps.MongoDatabase, sessionMgr, auditLogger, errLog, logger)
	activityHandler := activityfeature.NewHandler(deps.MongoDatabase, errLog, logger)

	errorsHandler := errorsfeature.NewHandler()

	r.Route("/api", func(api chi.Router) {
		api.Mount("/health", healthfeature.Routes(healthHandler))

		// Public site
		api.Mount("/videos", videosfeature.Routes(videosHandler))
		api.Mount("/bookings", bookingsfeature.Routes(bookingsHandler))

		// Admin
		api.Route("/admin", func(admin chi.Router) {
			adminauthfeature.Mount(admin, adminAuthHandler, sessionMgr)
			admin.Mount("/videos", videosfeature.AdminRoutes(videosHandler, sessionMgr))
			admin.Mount("/bookings", bookingsfeature.AdminRoutes(bookingsHandler, sessionMgr))
			admin.Mount("/activity", activityfeature.Routes(activityHandler, sessionMgr))
		})

		api.NotFound(errorsHandler.NotFound)
		api.MethodNotAllowed(errorsHandler.MethodNotAllowed)
	})

	// JSON 404/405 for everything else
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	return r, nil
}
