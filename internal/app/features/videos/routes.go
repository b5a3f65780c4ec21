package videos

import (
	"net/http"

	"github.com/dalemusser/reelfolio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the public catalog router.
//
// When mounted at /api/videos:
//   - GET /api/videos      - public videos, newest first
//   - GET /api/videos/{id} - one public video
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	return r
}

// AdminRoutes returns the catalog management router.
//
// When mounted at /api/admin/videos:
//   - GET    /api/admin/videos      - every video, newest first
//   - POST   /api/admin/videos      - create (multipart, optional thumbnail)
//   - PUT    /api/admin/videos/{id} - partial update (optional thumbnail)
//   - DELETE /api/admin/videos/{id} - delete
func AdminRoutes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdmin)

	r.Get("/", h.adminList)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}
