package bookings

import (
	"net/http"

	"github.com/dalemusser/reelfolio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the public booking router.
//
// When mounted at /api/bookings:
//   - POST /api/bookings - submit a booking (multipart, urlencoded, or JSON)
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.create)
	return r
}

// AdminRoutes returns the booking management router.
//
// When mounted at /api/admin/bookings:
//   - GET    /api/admin/bookings      - every booking, newest first
//   - PATCH  /api/admin/bookings/{id} - set status
//   - DELETE /api/admin/bookings/{id} - delete
func AdminRoutes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdmin)

	r.Get("/", h.list)
	r.Patch("/{id}", h.updateStatus)
	r.Delete("/{id}", h.delete)
	return r
}
