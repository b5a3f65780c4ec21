// Package network provides request-level network helpers.
package network

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP returns the best guess at the caller's address.
// Order: first X-Forwarded-For hop, then X-Real-IP, then RemoteAddr without its port.
// Only trust the headers when the service sits behind a proxy that sets them.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
