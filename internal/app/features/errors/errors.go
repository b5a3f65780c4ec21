// internal/app/features/errors/errors.go
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/reelfolio/internal/app/system/jsonutil"
	"github.com/dalemusser/reelfolio/internal/app/system/network"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger records failures behind a 5xx response, tagged with the
// request that caused them.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger wraps logger; nil discards everything.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{logger: logger}
}

// Log writes msg with err, the request's method, path, client IP, request
// ID (when the RequestID middleware ran), and any extra fields. Deadline
// and cancellation errors are logged at warn: they mean a slow backend or a
// client that went away, not a bug.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error, extra ...zap.Field) {
	fields := make([]zap.Field, 0, 5+len(extra))
	fields = append(fields,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("ip", network.GetClientIP(r)),
	)
	if id := chimw.GetReqID(r.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	fields = append(fields, extra...)

	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		e.logger.Warn(msg, fields...)
		return
	}
	e.logger.Error(msg, fields...)
}

// Handler answers requests no route matched.
type Handler struct{}

// NewHandler creates a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers 404 {"error":"Not found"}.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	jsonutil.Error(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed answers 405 {"error":"Method not allowed"}.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonutil.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
