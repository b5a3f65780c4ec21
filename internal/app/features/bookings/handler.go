// internal/app/features/bookings/handler.go
//
// Package bookings accepts booking requests from the public site and lets the
// admin review, decide on, and delete them.
package bookings

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/reelfolio/internal/app/features/errors"
	bookingstore "github.com/dalemusser/reelfolio/internal/app/store/bookings"
	"github.com/dalemusser/reelfolio/internal/app/system/auditlog"
	"github.com/dalemusser/reelfolio/internal/app/system/auth"
	"github.com/dalemusser/reelfolio/internal/app/system/formutil"
	"github.com/dalemusser/reelfolio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/reelfolio/internal/app/system/inputval"
	"github.com/dalemusser/reelfolio/internal/app/system/jsonutil"
	"github.com/dalemusser/reelfolio/internal/app/system/metrics"
	"github.com/dalemusser/reelfolio/internal/app/system/normalize"
	"github.com/dalemusser/reelfolio/internal/app/system/notify"
	"github.com/dalemusser/reelfolio/internal/app/system/timeouts"
	"github.com/dalemusser/reelfolio/internal/app/system/upload"
	"github.com/dalemusser/reelfolio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Form field carrying the optional reference file.
const referenceField = "referenceFile"

const (
	msgBookingNotFound = "Booking not found"
	msgSubmitFailed    = "Error submitting booking. Please try again."
)

// Handler provides booking handlers.
type Handler struct {
	bookingStore *bookingstore.Store
	uploads      *upload.Uploader
	notifier     *notify.Notifier
	metrics      *metrics.Metrics
	audit        *auditlog.Logger
	errLog       *errorsfeature.ErrorLogger
	logger       *zap.Logger
}

// NewHandler creates a new bookings Handler.
func NewHandler(
	db *mongo.Database,
	uploads *upload.Uploader,
	notifier *notify.Notifier,
	m *metrics.Metrics,
	audit *auditlog.Logger,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bookingStore: bookingstore.New(db),
		uploads:      uploads,
		notifier:     notifier,
		metrics:      m,
		audit:        audit,
		errLog:       errLog,
		logger:       logger,
	}
}

// bookingInput carries the checks that need a rule library; required fields
// and the event date are checked again by models.NewBooking.
type bookingInput struct {
	FullName           string `json:"fullName" validate:"required" label:"Full name"`
	Email              string `json:"email" validate:"required,email" label:"Email"`
	Phone              string `json:"phone" validate:"required" label:"Phone"`
	EventType          string `json:"eventType" validate:"required" label:"Event type"`
	EventDate          string `json:"eventDate" validate:"required,eventdate" label:"Event date"`
	EventLocation      string `json:"eventLocation" validate:"required" label:"Event location"`
	BudgetRange        string `json:"budgetRange" validate:"required" label:"Budget range"`
	ProjectDescription string `json:"projectDescription" validate:"required" label:"Project description"`
}

// bookingSummary is the slice of the booking echoed to the public submitter.
type bookingSummary struct {
	ID        primitive.ObjectID `json:"id"`
	FullName  string             `json:"fullName"`
	EventType string             `json:"eventType"`
}

// create stores a booking request and queues its notifications.
// Any status sent by the client is ignored; new bookings are pending.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	vals, ok := h.readForm(w, r)
	if !ok {
		return
	}

	in := bookingInput{
		FullName:           htmlsanitize.PlainText(vals.Get("fullName")),
		Email:              normalize.Email(vals.Get("email")),
		Phone:              htmlsanitize.PlainText(vals.Get("phone")),
		EventType:          htmlsanitize.PlainText(vals.Get("eventType")),
		EventDate:          normalize.Text(vals.Get("eventDate")),
		EventLocation:      htmlsanitize.PlainText(vals.Get("eventLocation")),
		BudgetRange:        htmlsanitize.PlainText(vals.Get("budgetRange")),
		ProjectDescription: htmlsanitize.PlainText(vals.Get("projectDescription")),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	if !inputval.IsValidEmail(in.Email) {
		jsonutil.Fail(w, http.StatusBadRequest, "A valid email address is required.")
		return
	}

	b, err := models.NewBooking(models.BookingFields{
		FullName:           in.FullName,
		Email:              in.Email,
		Phone:              in.Phone,
		EventType:          in.EventType,
		EventDate:          in.EventDate,
		EventLocation:      in.EventLocation,
		BudgetRange:        in.BudgetRange,
		ProjectDescription: in.ProjectDescription,
	}, time.Now())
	if err != nil {
		if ve, ok := models.AsValidationError(err); ok {
			jsonutil.Fail(w, http.StatusBadRequest, ve.Message)
			return
		}
		h.errLog.Log(r, "failed to build booking", err)
		jsonutil.Fail(w, http.StatusInternalServerError, msgSubmitFailed)
		return
	}

	stored, ok := h.saveReference(w, r)
	if !ok {
		return
	}
	if stored != nil {
		b.ReferenceFile = stored.URL
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err = h.bookingStore.Create(ctx, b)
	if err != nil {
		if stored != nil {
			h.uploads.Remove(context.WithoutCancel(r.Context()), stored.Key)
		}
		h.errLog.Log(r, "failed to create booking", err)
		jsonutil.Fail(w, http.StatusInternalServerError, msgSubmitFailed)
		return
	}

	h.metrics.BookingCreated()
	h.logger.Info("booking received",
		zap.String("booking_id", b.ID.Hex()),
		zap.String("event_type", b.EventType))

	// Email outcome never changes the response.
	h.notifier.BookingCreated(ctx, b)

	jsonutil.Success(w, http.StatusCreated, "Booking submitted successfully", map[string]any{
		"booking": bookingSummary{ID: b.ID, FullName: b.FullName, EventType: b.EventType},
	})
}

// list returns every booking, newest first.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	bookings, err := h.bookingStore.List(ctx)
	if err != nil {
		h.errLog.Log(r, "failed to list bookings", err)
		jsonutil.InternalError(w, "Error fetching bookings")
		return
	}
	jsonutil.OK(w, bookings)
}

type statusInput struct {
	Status string `json:"status" validate:"required,bookingstatus" label:"Status"`
}

// updateStatus sets a booking's status and tells the client when it was
// confirmed or rejected. Re-sending the current status sends no email.
func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	vals, ok := h.readForm(w, r)
	if !ok {
		return
	}
	in := statusInput{Status: normalize.Status(vals.Get("status"))}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, prevStatus, err := h.bookingStore.SetStatus(ctx, chi.URLParam(r, "id"), in.Status)
	switch {
	case errors.Is(err, bookingstore.ErrNotFound):
		jsonutil.NotFound(w, msgBookingNotFound)
		return
	case errors.Is(err, bookingstore.ErrInvalidStatus):
		jsonutil.Fail(w, http.StatusBadRequest, "Invalid status. Must be one of: pending, confirmed, rejected.")
		return
	case err != nil:
		h.errLog.Log(r, "failed to update booking status", err)
		jsonutil.InternalError(w, "Error updating booking")
		return
	}

	if a, ok := auth.CurrentAdmin(r); ok {
		h.audit.BookingStatusChanged(ctx, r, a.ID, b.ID, b.Status)
	}
	if prevStatus != b.Status {
		h.notifier.BookingStatusChanged(ctx, b)
	}

	jsonutil.Success(w, http.StatusOK, "Booking status updated", map[string]any{"booking": b})
}

// delete removes a booking and its stored reference file.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.bookingStore.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, bookingstore.ErrNotFound) {
		jsonutil.NotFound(w, msgBookingNotFound)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to delete booking", err)
		jsonutil.InternalError(w, "Error deleting booking")
		return
	}

	h.uploads.RemoveURL(r.Context(), b.ReferenceFile)
	if a, ok := auth.CurrentAdmin(r); ok {
		h.audit.BookingDeleted(ctx, r, a.ID, b.ID)
	}
	jsonutil.Success(w, http.StatusOK, "Booking deleted successfully", nil)
}

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

// saveReference stores the reference file if one was sent.
func (h *Handler) saveReference(w http.ResponseWriter, r *http.Request) (*upload.Stored, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Upload())
	defer cancel()

	stored, err := h.uploads.Save(ctx, r, referenceField)
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
	h.errLog.Log(r, "failed to store reference file", err)
	jsonutil.Fail(w, http.StatusInternalServerError, msgSubmitFailed)
	return nil, false
}
