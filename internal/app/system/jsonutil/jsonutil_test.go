package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantBody   string
	}{
		{"200 with data", http.StatusOK, map[string]string{"message": "hello"}, http.StatusOK, `{"message":"hello"}`},
		{"201 with data", http.StatusCreated, map[string]int{"id": 123}, http.StatusCreated, `{"id":123}`},
		{"nil data", http.StatusOK, nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSON(rec, tt.status, tt.data)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestErrorShapes(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnauthorized, "Unauthorized. Please login.")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Unauthorized. Please login."}` {
		t.Errorf("Error body = %s", got)
	}

	rec = httptest.NewRecorder()
	Fail(rec, http.StatusBadRequest, "bad")
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["success"] != false || body["error"] != "bad" {
		t.Errorf("Fail body = %v", body)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Fail status = %d, want 400", rec.Code)
	}
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "done", map[string]any{"id": "abc", "success": "overridden"})

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["message"] != "done" {
		t.Errorf("message = %v, want done", body["message"])
	}
	if body["id"] != "abc" {
		t.Errorf("id = %v, want abc", body["id"])
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		anyErr  bool
	}{
		{"valid", `{"status":"confirmed"}`, nil, false},
		{"empty", ``, ErrEmptyBody, true},
		{"malformed", `{"status":`, nil, true},
		{"too large", `{"status":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			var v struct {
				Status string `json:"status"`
			}
			err := Decode(rec, r, &v)
			if tt.anyErr != (err != nil) {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.anyErr)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if !tt.anyErr && v.Status != "confirmed" {
				t.Errorf("Status = %q, want confirmed", v.Status)
			}
		})
	}
}
