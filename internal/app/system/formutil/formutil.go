// Package formutil reads submitted fields the same way whether the client
// sent multipart, urlencoded, or JSON.
//
// The browser admin posts multipart forms (so a file can ride along), while
// scripted clients tend to send JSON. Handlers read both through Values and
// can tell "absent" from "sent empty", which partial updates depend on.
//
// Example usage:
//
//	if err := uploads.ParseForm(w, r); err != nil { ... }
//	vals, err := formutil.Read(w, r)
//	if err != nil { ... }
//	if title, ok := vals.Lookup("title"); ok { ... }
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/dalemusser/reelfolio/internal/app/system/jsonutil"
)

// ErrInvalidBody is returned when a JSON body is not a flat object.
var ErrInvalidBody = errors.New("request body must be a JSON object")

// Values holds one value per submitted field.
type Values map[string]string

// Get returns the value for key, or "" when absent.
func (v Values) Get(key string) string {
	return v[key]
}

// Lookup returns the value for key and whether the client sent it.
func (v Values) Lookup(key string) (string, bool) {
	s, ok := v[key]
	return s, ok
}

// IsJSON reports whether the request declares a JSON body.
func IsJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

// Read collects the request's fields. Form bodies must already be parsed
// (upload.Uploader.ParseForm does this); JSON bodies are decoded here.
// For repeated form keys the first value wins.
func Read(w http.ResponseWriter, r *http.Request) (Values, error) {
	if IsJSON(r) {
		return readJSON(w, r)
	}

	out := make(Values, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}

func readJSON(w http.ResponseWriter, r *http.Request) (Values, error) {
	var raw map[string]json.RawMessage
	if err := jsonutil.Decode(w, r, &raw); err != nil {
		if errors.Is(err, jsonutil.ErrEmptyBody) {
			return Values{}, nil
		}
		return nil, ErrInvalidBody
	}

	out := make(Values, len(raw))
	for k, msg := range raw {
		s, err := scalar(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q", ErrInvalidBody, k)
		}
		out[k] = s
	}
	return out, nil
}

// scalar renders a JSON string, number, bool, or null as text.
func scalar(msg json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", ErrInvalidBody
	}
}
