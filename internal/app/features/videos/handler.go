// internal/app/features/videos/handler.go
//
// Package videos serves the portfolio catalog: public reads and the admin
// create, update, and delete endpoints.
package videos

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/reelfolio/internal/app/features/errors"
	videostore "github.com/dalemusser/reelfolio/internal/app/store/videos"
	"github.com/dalemusser/reelfolio/internal/app/system/auditlog"
	"github.com/dalemusser/reelfolio/internal/app/system/auth"
	"github.com/dalemusser/reelfolio/internal/app/system/formutil"
	"github.com/dalemusser/reelfolio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/reelfolio/internal/app/system/inputval"
	"github.com/dalemusser/reelfolio/internal/app/system/jsonutil"
	"github.com/dalemusser/reelfolio/internal/app/system/timeouts"
	"github.com/dalemusser/reelfolio/internal/app/system/upload"
	"github.com/dalemusser/reelfolio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Form field carrying the thumbnail image.
const thumbnailField = "thumbnail"

const msgVideoNotFound = "Video not found"

// Handler provides video handlers.
type Handler struct {
	videoStore *videostore.Store
	uploads    *upload.Uploader
	audit      *auditlog.Logger
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new videos Handler.
func NewHandler(
	db *mongo.Database,
	uploads *upload.Uploader,
	audit *auditlog.Logger,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		videoStore: videostore.New(db),
		uploads:    uploads,
		audit:      audit,
		errLog:     errLog,
		logger:     logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Public                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// list returns public videos, newest first.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	videos, err := h.videoStore.ListPublic(ctx)
	if err != nil {
		h.errLog.Log(r, "failed to list videos", err)
		jsonutil.InternalError(w, "Error fetching videos")
		return
	}
	jsonutil.OK(w, nonNil(videos))
}

// show returns one public video. Private and unknown ids look the same.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := h.videoStore.GetPublicByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, videostore.ErrNotFound) {
		jsonutil.NotFound(w, msgVideoNotFound)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to fetch video", err)
		jsonutil.InternalError(w, "Error fetching video")
		return
	}
	jsonutil.OK(w, v)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Admin                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// adminList returns every video, newest first.
func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	videos, err := h.videoStore.ListAll(ctx)
	if err != nil {
		h.errLog.Log(r, "failed to list videos", err)
		jsonutil.InternalError(w, "Error fetching videos")
		return
	}
	jsonutil.OK(w, nonNil(videos))
}

// createInput is validated before anything is stored.
type createInput struct {
	Title    string `json:"title" validate:"required" label:"Title"`
	Category string `json:"category" validate:"required,videocategory" label:"Category"`
	Platform string `json:"platform" validate:"videoplatform" label:"Platform"`
	Status   string `json:"status" validate:"videostatus" label:"Status"`
}

// create adds a video, storing an optional thumbnail upload.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	vals, ok := h.readForm(w, r)
	if !ok {
		return
	}

	fields := models.VideoFields{
		Title:       clean(vals.Get("title")),
		Description: clean(vals.Get("description")),
		Category:    strings.TrimSpace(vals.Get("category")),
		Platform:    strings.TrimSpace(vals.Get("platform")),
		VideoID:     strings.TrimSpace(vals.Get("videoId")),
		VideoURL:    strings.TrimSpace(vals.Get("videoUrl")),
		Status:      strings.TrimSpace(vals.Get("status")),
	}
	if res := inputval.Validate(createInput{
		Title:    fields.Title,
		Category: fields.Category,
		Platform: fields.Platform,
		Status:   fields.Status,
	}); res.HasErrors() {
		jsonutil.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	v, err := models.NewVideo(fields, time.Now())
	if err != nil {
		h.writeValidation(w, r, err)
		return
	}

	stored, ok := h.saveThumbnail(w, r)
	if !ok {
		return
	}
	if stored != nil {
		v.Thumbnail = stored.URL
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err = h.videoStore.Create(ctx, v)
	if err != nil {
		h.discard(r, stored)
		h.errLog.Log(r, "failed to create video", err)
		jsonutil.InternalError(w, "Error uploading video")
		return
	}

	if a, ok := auth.CurrentAdmin(r); ok {
		h.audit.VideoCreated(ctx, r, a.ID, v.ID, v.Title)
	}
	jsonutil.Success(w, http.StatusCreated, "Video uploaded successfully", map[string]any{"video": v})
}

// update replaces only the fields present in the request.
// A new thumbnail upload replaces the stored one; the old file is removed.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	vals, ok := h.readForm(w, r)
	if !ok {
		return
	}
	in, changed := updateInputFrom(vals)

	id := chi.URLParam(r, "id")
	current, err := h.lookup(r, id)
	if errors.Is(err, videostore.ErrNotFound) {
		jsonutil.NotFound(w, msgVideoNotFound)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to fetch video", err)
		jsonutil.InternalError(w, "Error updating video")
		return
	}
	if _, err := in.Apply(current); err != nil {
		h.writeValidation(w, r, err)
		return
	}

	stored, ok := h.saveThumbnail(w, r)
	if !ok {
		return
	}
	if stored != nil {
		in.Thumbnail = &stored.URL
		changed = append(changed, thumbnailField)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.videoStore.Update(ctx, id, in)
	if err != nil {
		h.discard(r, stored)
		if errors.Is(err, videostore.ErrNotFound) {
			jsonutil.NotFound(w, msgVideoNotFound)
			return
		}
		h.writeValidation(w, r, err)
		return
	}

	if stored != nil && current.Thumbnail != "" && current.Thumbnail != updated.Thumbnail {
		h.uploads.RemoveURL(r.Context(), current.Thumbnail)
	}
	if a, ok := auth.CurrentAdmin(r); ok {
		sort.Strings(changed)
		h.audit.VideoUpdated(ctx, r, a.ID, updated.ID, strings.Join(changed, ","))
	}
	jsonutil.Success(w, http.StatusOK, "Video updated successfully", map[string]any{"video": updated})
}

// delete removes a video and its stored thumbnail.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := h.videoStore.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, videostore.ErrNotFound) {
		jsonutil.NotFound(w, msgVideoNotFound)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to delete video", err)
		jsonutil.InternalError(w, "Error deleting video")
		return
	}

	h.uploads.RemoveURL(r.Context(), v.Thumbnail)
	if a, ok := auth.CurrentAdmin(r); ok {
		h.audit.VideoDeleted(ctx, r, a.ID, v.ID, v.Title)
	}
	jsonutil.Success(w, http.StatusOK, "Video deleted successfully", nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// readForm parses the body and writes the error response on failure.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (formutil.Values, bool) {
	if err := h.uploads.ParseForm(w, r); err != nil {
		if status, msg, ok := upload.ClientError(err); ok {
			jsonutil.Fail(w, status, msg)
			return nil, false
		}
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid form data")
		return nil, false
	}
	vals, err := formutil.Read(w, r)
	if err != nil {
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return vals, true
}

// saveThumbnail stores the thumbnail file if one was sent.
// It returns (nil, true) when there is no file.
func (h *Handler) saveThumbnail(w http.ResponseWriter, r *http.Request) (*upload.Stored, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Upload())
	defer cancel()

	stored, err := h.uploads.Save(ctx, r, thumbnailField)
	switch {
	case err == nil:
		return stored, true
	case errors.Is(err, upload.ErrNoFile):
		return nil, true
	}
	if status, msg, ok := upload.ClientError(err); ok {
		jsonutil.Fail(w, status, msg)
		return nil, false
	}
	h.errLog.Log(r, "failed to store thumbnail", err)
	jsonutil.Fail(w, http.StatusInternalServerError, "Error uploading file")
	return nil, false
}

// discard removes a file stored earlier in a request that then failed.
func (h *Handler) discard(r *http.Request, stored *upload.Stored) {
	if stored != nil {
		h.uploads.Remove(context.WithoutCancel(r.Context()), stored.Key)
	}
}

func (h *Handler) lookup(r *http.Request, id string) (models.Video, error) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	return h.videoStore.GetByID(ctx, id)
}

// writeValidation answers 400 for a *models.ValidationError and 500 otherwise.
func (h *Handler) writeValidation(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := models.AsValidationError(err); ok {
		jsonutil.Fail(w, http.StatusBadRequest, ve.Message)
		return
	}
	h.errLog.Log(r, "failed to save video", err)
	jsonutil.InternalError(w, "Error saving video")
}

// updateInputFrom builds a partial update from the fields the client sent,
// returning the names of those fields.
func updateInputFrom(vals formutil.Values) (videostore.UpdateInput, []string) {
	var in videostore.UpdateInput
	var changed []string

	// Enumerated fields sent empty are treated as not sent, so a client
	// that posts its whole form does not trip the enum checks.
	const (
		text = iota
		plain
		enum
	)
	bind := func(key string, dst **string, kind int) {
		s, ok := vals.Lookup(key)
		if !ok {
			return
		}
		if kind == text {
			s = clean(s)
		} else {
			s = strings.TrimSpace(s)
		}
		if kind == enum && s == "" {
			return
		}
		*dst = &s
		changed = append(changed, key)
	}
	bind("title", &in.Title, text)
	bind("description", &in.Description, text)
	bind("category", &in.Category, enum)
	bind("platform", &in.Platform, enum)
	bind("videoId", &in.VideoID, plain)
	bind("videoUrl", &in.VideoURL, plain)
	bind("status", &in.Status, enum)
	return in, changed
}

// clean strips markup from free text.
func clean(s string) string {
	return htmlsanitize.PlainText(s)
}

func nonNil(v []models.Video) []models.Video {
	if v == nil {
		return []models.Video{}
	}
	return v
}
