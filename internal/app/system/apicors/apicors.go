// Package apicors provides CORS middleware for the JSON API.
//
// The admin authenticates with a session cookie, so cross-origin requests
// must carry credentials. Browsers refuse credentialed responses with a
// wildcard origin, so only the configured frontend origins are allowed.
//
// Usage in routes.go:
//
//	r.Use(apicors.Middleware(apicors.Config{Origins: []string{appCfg.FrontendURL}}))
package apicors

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Config selects the allowed origins.
type Config struct {
	// Origins are exact origins such as "https://films.example.com".
	// Trailing slashes are ignored. Empty means same-origin only.
	Origins []string

	// MaxAge is the preflight cache lifetime in seconds. Zero uses 300.
	MaxAge int
}

// Middleware returns credentialed CORS middleware restricted to cfg.Origins.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 300
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   NormalizeOrigins(cfg.Origins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}

// NormalizeOrigins trims, drops empties and "*", and strips trailing slashes.
func NormalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	seen := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		for _, part := range strings.Split(o, ",") {
			part = strings.TrimRight(strings.TrimSpace(part), "/")
			if part == "" || part == "*" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
