package apicors

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestNormalizeOrigins(t *testing.T) {
	got := NormalizeOrigins([]string{" https://a.example.com/ ", "", "*", "https://b.example.com,https://a.example.com"})
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeOrigins() = %v, want %v", got, want)
	}
}

func TestMiddleware(t *testing.T) {
	h := Middleware(Config{Origins: []string{"https://films.example.com/"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantOrigin string
		wantCreds  string
	}{
		{"allowed origin", http.MethodGet, "https://films.example.com", "https://films.example.com", "true"},
		{"foreign origin", http.MethodGet, "https://evil.example.com", "", ""},
		{"no origin", http.MethodGet, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/api/videos", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("Allow-Credentials = %q, want %q", got, tt.wantCreds)
			}
		})
	}
}

func TestMiddleware_Preflight(t *testing.T) {
	called := false
	h := Middleware(Config{Origins: []string{"https://films.example.com"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	r := httptest.NewRequest(http.MethodOptions, "/api/admin/bookings/1", nil)
	r.Header.Set("Origin", "https://films.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if called {
		t.Error("preflight reached the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != http.MethodPatch {
		t.Errorf("Allow-Methods = %q, want PATCH", got)
	}
}
