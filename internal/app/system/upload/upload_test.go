package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

var (
	pngHead  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegHead = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	gifHead  = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!")
	mp4Head  = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2\x00\x00\x00\x08free")
	textBody = []byte("just some plain text, definitely not an image\n")
)

// memStore is an in-memory FileStore.
type memStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	types   map[string]string
	putErr  error
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Put(_ context.Context, path string, r io.Reader, opts *storage.PutOptions) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = b
	if opts != nil {
		s.types[path] = opts.ContentType
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *memStore) URL(path string) string {
	return "/uploads/" + path
}

// multipartRequest builds a POST with the given fields and one file part.
func multipartRequest(t *testing.T, field, filename, contentType string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/admin/videos", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		declared string
		head     []byte
		want     string
		wantErr  bool
	}{
		{"png", "still.png", "image/png", pngHead, "image/png", false},
		{"jpeg upper ext", "PHOTO.JPG", "image/jpeg", jpegHead, "image/jpeg", false},
		{"jpeg long ext", "photo.jpeg", "image/jpeg", jpegHead, "image/jpeg", false},
		{"gif", "loop.gif", "image/gif", gifHead, "image/gif", false},
		{"mp4", "reel.mp4", "video/mp4", mp4Head, "video/mp4", false},
		{"mp4 content named jpg", "photo.jpg", "image/jpeg", mp4Head, "", true},
		{"png content named gif", "loop.gif", "image/gif", pngHead, "", true},
		{"jpeg content named mp4", "reel.mp4", "video/mp4", jpegHead, "", true},
		{"declared with params", "still.png", "image/png; charset=binary", pngHead, "image/png", false},
		{"unknown ext", "notes.txt", "text/plain", textBody, "", true},
		{"no ext", "README", "image/png", pngHead, "", true},
		{"ext and declared mismatch", "still.png", "image/jpeg", pngHead, "", true},
		{"declared missing", "still.png", "", pngHead, "", true},
		{"content not media", "fake.png", "image/png", textBody, "", true},
		{"script disguised as gif", "x.gif", "image/gif", []byte("<script>alert(1)</script>"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Check(tt.filename, tt.declared, tt.head)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrDisallowedType) {
				t.Errorf("Check() error = %v, want ErrDisallowedType", err)
			}
			if got != tt.want {
				t.Errorf("Check() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"holiday.png", "holiday.png"},
		{"My Wedding Film.MP4", "My-Wedding-Film.mp4"},
		{"../../etc/passwd.jpg", "passwd.jpg"},
		{`C:\Users\me\clip.mov`, "clip.mov"},
		{"...png", "file.png"},
		{"", "file"},
		{"ñandú.gif", "and.gif"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("a", 300) + ".png"
	if got := SanitizeName(long); len(got) != maxNameLen || !strings.HasSuffix(got, ".png") {
		t.Errorf("SanitizeName(long) len = %d, suffix ok = %v", len(got), strings.HasSuffix(got, ".png"))
	}
}

func TestStorageName(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	a := StorageName(now, "clip.mp4")
	b := StorageName(now, "clip.mp4")

	if !strings.HasPrefix(a, "1767225600000-") {
		t.Errorf("StorageName() = %q, want millis prefix", a)
	}
	if !strings.HasSuffix(a, "-clip.mp4") {
		t.Errorf("StorageName() = %q, want sanitized name suffix", a)
	}
	if a == b {
		t.Errorf("StorageName() produced duplicate %q", a)
	}
}

func TestUploader_Save(t *testing.T) {
	store := newMemStore()
	u := New(store, nil, zap.NewNop())
	r := multipartRequest(t, "thumbnail", "cover.png", "image/png", pngHead, map[string]string{"title": "Reel"})
	w := httptest.NewRecorder()

	if err := u.ParseForm(w, r); err != nil {
		t.Fatalf("ParseForm() error = %v", err)
	}
	if got := r.FormValue("title"); got != "Reel" {
		t.Errorf("title = %q, want Reel", got)
	}

	stored, err := u.Save(context.Background(), r, "thumbnail")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(stored.Key, "-cover.png") {
		t.Errorf("Key = %q, want -cover.png suffix", stored.Key)
	}
	if stored.URL != "/uploads/"+stored.Key {
		t.Errorf("URL = %q, want /uploads/%s", stored.URL, stored.Key)
	}
	if !bytes.Equal(store.files[stored.Key], pngHead) {
		t.Error("stored bytes differ from upload")
	}
	if store.types[stored.Key] != "image/png" {
		t.Errorf("stored content type = %q, want image/png", store.types[stored.Key])
	}
}

func TestUploader_SaveLargerThanSniffWindow(t *testing.T) {
	store := newMemStore()
	u := New(store, nil, zap.NewNop())
	content := append(append([]byte{}, jpegHead...), bytes.Repeat([]byte{0xAB}, 64<<10)...)
	r := multipartRequest(t, "thumbnail", "big.jpg", "image/jpeg", content, nil)

	if err := u.ParseForm(httptest.NewRecorder(), r); err != nil {
		t.Fatalf("ParseForm() error = %v", err)
	}
	stored, err := u.Save(context.Background(), r, "thumbnail")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !bytes.Equal(store.files[stored.Key], content) {
		t.Errorf("stored %d bytes, want %d", len(store.files[stored.Key]), len(content))
	}
}

func TestUploader_SaveErrors(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		u := New(newMemStore(), nil, zap.NewNop())
		r := multipartRequest(t, "", "", "", nil, map[string]string{"title": "x"})
		_ = u.ParseForm(httptest.NewRecorder(), r)
		if _, err := u.Save(context.Background(), r, "thumbnail"); !errors.Is(err, ErrNoFile) {
			t.Errorf("Save() error = %v, want ErrNoFile", err)
		}
	})

	t.Run("disallowed type", func(t *testing.T) {
		store := newMemStore()
		u := New(store, nil, zap.NewNop())
		r := multipartRequest(t, "thumbnail", "notes.txt", "text/plain", textBody, nil)
		_ = u.ParseForm(httptest.NewRecorder(), r)
		if _, err := u.Save(context.Background(), r, "thumbnail"); !errors.Is(err, ErrDisallowedType) {
			t.Errorf("Save() error = %v, want ErrDisallowedType", err)
		}
		if len(store.files) != 0 {
			t.Errorf("store has %d files, want 0", len(store.files))
		}
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMemStore()
		store.putErr = errors.New("disk full")
		u := New(store, nil, zap.NewNop())
		r := multipartRequest(t, "thumbnail", "a.gif", "image/gif", gifHead, nil)
		_ = u.ParseForm(httptest.NewRecorder(), r)
		_, err := u.Save(context.Background(), r, "thumbnail")
		if err == nil || errors.Is(err, ErrDisallowedType) || errors.Is(err, ErrTooLarge) {
			t.Errorf("Save() error = %v, want a storage error", err)
		}
	})

	t.Run("urlencoded body", func(t *testing.T) {
		u := New(newMemStore(), nil, zap.NewNop())
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("title=x"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if err := u.ParseForm(httptest.NewRecorder(), r); err != nil {
			t.Fatalf("ParseForm() error = %v", err)
		}
		if _, err := u.Save(context.Background(), r, "thumbnail"); !errors.Is(err, ErrNoFile) {
			t.Errorf("Save() error = %v, want ErrNoFile", err)
		}
	})
}

func TestUploader_ParseFormTooLarge(t *testing.T) {
	u := New(newMemStore(), nil, zap.NewNop())
	huge := bytes.Repeat([]byte{0}, MaxFileSize+formOverhead+1)
	r := multipartRequest(t, "thumbnail", "huge.png", "image/png", append(append([]byte{}, pngHead...), huge...), nil)

	if err := u.ParseForm(httptest.NewRecorder(), r); !errors.Is(err, ErrTooLarge) {
		t.Errorf("ParseForm() error = %v, want ErrTooLarge", err)
	}
}

func TestUploader_SaveFileOverLimit(t *testing.T) {
	u := New(newMemStore(), nil, zap.NewNop())
	content := append(append([]byte{}, pngHead...), bytes.Repeat([]byte{0}, MaxFileSize)...)
	r := multipartRequest(t, "thumbnail", "over.png", "image/png", content, nil)

	if err := u.ParseForm(httptest.NewRecorder(), r); err != nil {
		t.Fatalf("ParseForm() error = %v", err)
	}
	if _, err := u.Save(context.Background(), r, "thumbnail"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Save() error = %v, want ErrTooLarge", err)
	}
}

func TestUploader_KeyFromURL(t *testing.T) {
	u := New(newMemStore(), nil, zap.NewNop())
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"/uploads/1700000000000-abcd1234-a.png", "1700000000000-abcd1234-a.png", true},
		{"https://img.youtube.com/vi/xyz/0.jpg", "", false},
		{"/uploads/", "", false},
		{"/uploads/../secret", "", false},
		{"/uploads/1700000000000-abcd1234-notes.txt", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := u.KeyFromURL(tt.url)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("KeyFromURL(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestUploader_RemoveURL(t *testing.T) {
	store := newMemStore()
	u := New(store, nil, zap.NewNop())
	store.files["k1.png"] = pngHead

	u.RemoveURL(context.Background(), "/uploads/k1.png")
	u.RemoveURL(context.Background(), "https://cdn.example.com/other.png")

	if len(store.deleted) != 1 || store.deleted[0] != "k1.png" {
		t.Errorf("deleted = %v, want [k1.png]", store.deleted)
	}
}

func TestClientError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
		wantOK     bool
	}{
		{ErrTooLarge, http.StatusRequestEntityTooLarge, MsgTooLarge, true},
		{fmt.Errorf("wrapped: %w", ErrDisallowedType), http.StatusBadRequest, MsgDisallowedType, true},
		{errors.New("disk full"), 0, "", false},
	}
	for _, tt := range tests {
		status, msg, ok := ClientError(tt.err)
		if status != tt.wantStatus || msg != tt.wantMsg || ok != tt.wantOK {
			t.Errorf("ClientError(%v) = %d, %q, %v; want %d, %q, %v",
				tt.err, status, msg, ok, tt.wantStatus, tt.wantMsg, tt.wantOK)
		}
	}
}
