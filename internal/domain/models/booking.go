// internal/domain/models/booking.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is a client's request to book a shoot.
// Bookings always start pending; an admin confirms or rejects them.
type Booking struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName           string             `bson:"full_name" json:"fullName"`
	Email              string             `bson:"email" json:"email"`
	Phone              string             `bson:"phone" json:"phone"`
	EventType          string             `bson:"event_type" json:"eventType"`
	EventDate          time.Time          `bson:"event_date" json:"eventDate"`
	EventLocation      string             `bson:"event_location" json:"eventLocation"`
	BudgetRange        string             `bson:"budget_range" json:"budgetRange"`
	ProjectDescription string             `bson:"project_description" json:"projectDescription"`
	ReferenceFile      string             `bson:"reference_file,omitempty" json:"referenceFile,omitempty"`
	Status             string             `bson:"status" json:"status"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// Booking statuses
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingRejected  = "rejected"
)

// AllBookingStatuses returns all valid booking statuses.
func AllBookingStatuses() []string {
	return []string{BookingPending, BookingConfirmed, BookingRejected}
}

// IsValidBookingStatus checks if a booking status is valid.
func IsValidBookingStatus(s string) bool {
	return contains(AllBookingStatuses(), s)
}

// NotifiesClient reports whether moving a booking into status s sends the
// client an email. Only the two admin decisions do.
func NotifiesClient(s string) bool {
	return s == BookingConfirmed || s == BookingRejected
}

// BookingFields carries the submitted form values for a new booking.
// Status is deliberately absent: new bookings are always pending.
type BookingFields struct {
	FullName           string
	Email              string
	Phone              string
	EventType          string
	EventDate          string
	EventLocation      string
	BudgetRange        string
	ProjectDescription string
	ReferenceFile      string
}

// Accepted event date layouts, tried in order.
var eventDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
}

// ParseEventDate parses a submitted event date.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range eventDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// NewBooking builds a pending Booking from submitted fields.
func NewBooking(f BookingFields, now time.Time) (Booking, error) {
	b := Booking{
		FullName:           strings.TrimSpace(f.FullName),
		Email:              strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:              strings.TrimSpace(f.Phone),
		EventType:          strings.TrimSpace(f.EventType),
		EventLocation:      strings.TrimSpace(f.EventLocation),
		BudgetRange:        strings.TrimSpace(f.BudgetRange),
		ProjectDescription: strings.TrimSpace(f.ProjectDescription),
		ReferenceFile:      f.ReferenceFile,
		Status:             BookingPending,
		CreatedAt:          now.UTC(),
	}

	required := []struct {
		field, label, value string
	}{
		{"fullName", "Full name", b.FullName},
		{"email", "Email", b.Email},
		{"phone", "Phone", b.Phone},
		{"eventType", "Event type", b.EventType},
		{"eventDate", "Event date", strings.TrimSpace(f.EventDate)},
		{"eventLocation", "Event location", b.EventLocation},
		{"budgetRange", "Budget range", b.BudgetRange},
		{"projectDescription", "Project description", b.ProjectDescription},
	}
	for _, r := range required {
		if r.value == "" {
			return Booking{}, &ValidationError{Field: r.field, Message: r.label + " is required"}
		}
	}

	d, err := ParseEventDate(f.EventDate)
	if err != nil {
		return Booking{}, &ValidationError{Field: "eventDate", Message: "Event date must be a valid date (YYYY-MM-DD)"}
	}
	b.EventDate = d
	return b, nil
}
