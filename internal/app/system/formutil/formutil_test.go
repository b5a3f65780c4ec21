package formutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRead_Form(t *testing.T) {
	form := url.Values{"title": {"Harbour Lights", "ignored"}, "description": {""}}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := req.ParseForm(); err != nil {
		t.Fatalf("ParseForm() error = %v", err)
	}

	vals, err := Read(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := vals.Get("title"); got != "Harbour Lights" {
		t.Errorf("title = %q, want first value", got)
	}
	if v, ok := vals.Lookup("description"); !ok || v != "" {
		t.Errorf("Lookup(description) = %q, %v; want empty, present", v, ok)
	}
	if _, ok := vals.Lookup("category"); ok {
		t.Error("Lookup(category) reported present")
	}
}

func TestRead_JSON(t *testing.T) {
	body := `{"status":"confirmed","guests":120,"remote":true,"note":null}`
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	vals, err := Read(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := map[string]string{"status": "confirmed", "guests": "120", "remote": "true", "note": ""}
	for k, w := range want {
		if got, ok := vals.Lookup(k); !ok || got != w {
			t.Errorf("%s = %q (present %v), want %q", k, got, ok, w)
		}
	}
}

func TestRead_JSONRejectsNested(t *testing.T) {
	tests := []string{
		`{"status":{"$ne":"pending"}}`,
		`{"status":["a"]}`,
		`["status"]`,
		`{bad json`,
	}
	for _, body := range tests {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if _, err := Read(httptest.NewRecorder(), req); !errors.Is(err, ErrInvalidBody) {
			t.Errorf("Read(%s) error = %v, want ErrInvalidBody", body, err)
		}
	}
}

func TestRead_EmptyJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	vals, err := Read(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(vals) != 0 {
		t.Errorf("len(vals) = %d, want 0", len(vals))
	}
}
