package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/reelfolio/internal/app/system/jsonutil"
	"github.com/dalemusser/reelfolio/internal/app/system/network"
	"go.uber.org/zap"
)

// BearerToken returns middleware that requires "Authorization: Bearer <token>".
// It guards operational endpoints (metrics) that scrapers reach without a
// browser session. An empty token leaves the endpoint open.
func BearerToken(validToken string, logger *zap.Logger) func(http.Handler) http.Handler {
	if validToken == "" {
		logger.Info("bearer token not configured; operational endpoints are unauthenticated")
		return func(next http.Handler) http.Handler { return next }
	}
	want := []byte(validToken)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, provided, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				logger.Debug("bearer auth rejected: missing or malformed header",
					zap.String("path", r.URL.Path))
				jsonutil.Error(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}
			if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(provided)), want) != 1 {
				logger.Warn("bearer auth rejected: invalid token",
					zap.String("path", r.URL.Path),
					zap.String("ip", network.GetClientIP(r)))
				jsonutil.Error(w, http.StatusUnauthorized, "Invalid bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
