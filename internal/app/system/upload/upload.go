// internal/app/system/upload/upload.go
//
// Package upload accepts image and video files from multipart requests and
// writes them to the configured file store.
//
// A file is accepted only when its extension, its declared Content-Type, and
// its sniffed content type all agree with the allow-list.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/reelfolio/internal/app/system/metrics"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxFileSize is the largest accepted file.
const MaxFileSize = 10 << 20

// formOverhead is extra body allowance for the other multipart fields.
const formOverhead = 1 << 20

// sniffLen is how much of the file is read for content detection.
const sniffLen = 3072

var (
	// ErrTooLarge means the file or request body exceeded MaxFileSize.
	ErrTooLarge = errors.New("upload: file too large")
	// ErrDisallowedType means the file failed the type allow-list.
	ErrDisallowedType = errors.New("upload: file type not allowed")
	// ErrNoFile means the form field carried no file.
	ErrNoFile = errors.New("upload: no file")
)

// Client-facing messages.
const (
	MsgTooLarge       = "File too large. Maximum size is 10 MB."
	MsgDisallowedType = "Invalid file type. Only images (JPG, PNG, GIF) and videos (MP4, MOV, AVI) are allowed."
)

// ClientError maps an upload error to the status and message the client
// should see. ok is false when the error is not the client's doing.
func ClientError(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, MsgTooLarge, true
	case errors.Is(err, ErrDisallowedType):
		return http.StatusBadRequest, MsgDisallowedType, true
	}
	return 0, "", false
}

// allowed maps a lowercase extension to the Content-Types it may declare.
var allowed = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".mp4":  {"video/mp4"},
	".mov":  {"video/quicktime"},
	".avi":  {"video/x-msvideo", "video/avi", "video/msvideo"},
}

// FileStore is the subset of storage.Store the uploader uses.
type FileStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// Stored describes a file written by Save.
type Stored struct {
	Key          string // storage path
	URL          string // public URL for the key
	OriginalName string
	ContentType  string
	Size         int64
}

// Uploader validates and stores uploaded files.
type Uploader struct {
	store   FileStore
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// New creates an Uploader writing to store.
func New(store FileStore, m *metrics.Metrics, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{
		store:   store,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// ParseForm parses the request body under a size ceiling.
// Multipart and urlencoded bodies are parsed into r.Form; JSON bodies are
// left for the caller to decode. An oversized body returns ErrTooLarge.
func (u *Uploader) ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize+formOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	switch mediaType {
	case "multipart/form-data":
		err = r.ParseMultipartForm(MaxFileSize)
	case "application/json":
		return nil
	default:
		err = r.ParseForm()
	}
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			u.metrics.UploadRejected("too_large")
			return ErrTooLarge
		}
		return err
	}
	return nil
}

// Save validates the file in form field and writes it to the store.
// ParseForm must have been called first. ErrNoFile is returned when the
// field is absent or empty.
func (u *Uploader) Save(ctx context.Context, r *http.Request, field string) (*Stored, error) {
	if r.MultipartForm == nil {
		return nil, ErrNoFile
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ErrNoFile
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header.Size == 0 {
		return nil, ErrNoFile
	}
	if header.Size > MaxFileSize {
		u.metrics.UploadRejected("too_large")
		return nil, ErrTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType, err := Check(header.Filename, header.Header.Get("Content-Type"), head)
	if err != nil {
		u.metrics.UploadRejected("type")
		u.log.Info("upload rejected",
			zap.String("field", field),
			zap.String("filename", header.Filename),
			zap.String("declared", header.Header.Get("Content-Type")))
		return nil, err
	}

	key := StorageName(u.now(), header.Filename)
	body := io.MultiReader(bytes.NewReader(head), file)
	if err := u.store.Put(ctx, key, body, &storage.PutOptions{ContentType: contentType}); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	u.metrics.UploadStored(field)

	return &Stored{
		Key:          key,
		URL:          u.store.URL(key),
		OriginalName: header.Filename,
		ContentType:  contentType,
		Size:         header.Size,
	}, nil
}

// Remove deletes a stored file, logging instead of failing.
func (u *Uploader) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := u.store.Delete(ctx, key); err != nil {
		u.log.Warn("failed to remove stored file", zap.String("key", key), zap.Error(err))
	}
}

// RemoveURL deletes the stored file behind a public URL produced by this
// store. URLs from elsewhere (a YouTube thumbnail, say) are ignored.
func (u *Uploader) RemoveURL(ctx context.Context, url string) {
	if key, ok := u.KeyFromURL(url); ok {
		u.Remove(ctx, key)
	}
}

// KeyFromURL reverses store.URL for keys written by this uploader.
func (u *Uploader) KeyFromURL(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	const probe = "k"
	base := strings.TrimSuffix(u.store.URL(probe), probe)
	if base == "" || !strings.HasPrefix(url, base) {
		return "", false
	}
	key := strings.TrimPrefix(url, base)
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "..") {
		return "", false
	}
	// Save only ever writes allow-listed extensions.
	if !IsAllowedExtension(filepath.Ext(key)) {
		return "", false
	}
	return key, true
}

// Check applies the three type checks and returns the Content-Type to store.
// The sniffed type must be one the extension itself allows, so MP4 bytes
// named photo.jpg are rejected.
func Check(filename, declared string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	types, ok := allowed[ext]
	if !ok {
		return "", ErrDisallowedType
	}

	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !containsFold(types, mediaType) {
		return "", ErrDisallowedType
	}

	detected := mimetype.Detect(head)
	for _, t := range types {
		if detected.Is(t) {
			return types[0], nil
		}
	}
	return "", ErrDisallowedType
}

// IsAllowedExtension reports whether ext (with its dot) is on the allow-list.
func IsAllowedExtension(ext string) bool {
	_, ok := allowed[strings.ToLower(ext)]
	return ok
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// maxNameLen bounds the sanitized original-name part.
const maxNameLen = 100

// StorageName builds "<unix-millis>-<random>-<sanitized name>".
func StorageName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.New().String()[:8], SanitizeName(original))
}

// SanitizeName reduces a client filename to a safe single path segment,
// keeping a lowercase extension.
func SanitizeName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	stem = unsafeChars.ReplaceAllString(stem, "-")
	stem = strings.Trim(stem, ".-")
	if stem == "" {
		stem = "file"
	}
	ext = unsafeChars.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}
	if len(ext) > 10 {
		ext = ext[:10]
	}
	if len(stem)+len(ext) > maxNameLen {
		stem = stem[:maxNameLen-len(ext)]
	}
	return stem + ext
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
