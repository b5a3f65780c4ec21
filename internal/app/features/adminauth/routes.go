package adminauth

import (
	"github.com/dalemusser/reelfolio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Mount registers the admin session endpoints on r, which shares its prefix
// with the other admin routers.
//
// When r is mounted at /api/admin:
//   - POST /api/admin/login  - start a session
//   - POST /api/admin/logout - end the session (requires session)
//   - GET  /api/admin/verify - {"authenticated":true} (requires session)
func Mount(r chi.Router, h *Handler, sessionMgr *auth.SessionManager) {
	r.Post("/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireAdmin)
		pr.Post("/logout", h.logout)
		pr.Get("/verify", h.verify)
	})
}
