package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/reelfolio/internal/domain/models"
	"go.uber.org/zap"
)

func sampleBooking() models.Booking {
	return models.Booking{
		FullName:           "Ada <Lovelace>",
		Email:              "ada@example.com",
		Phone:              "555-0100",
		EventType:          "Wedding",
		EventDate:          time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC),
		EventLocation:      "Chicago",
		BudgetRange:        "$2k-$5k",
		ProjectDescription: "Full day coverage",
		Status:             models.BookingPending,
	}
}

func TestFormatDate(t *testing.T) {
	got := FormatDate(time.Date(2026, time.March, 5, 23, 0, 0, 0, time.UTC))
	if got != "March 5, 2026" {
		t.Errorf("FormatDate() = %q, want %q", got, "March 5, 2026")
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("FormatDate(zero) = %q, want empty", got)
	}
}

func TestAdminPanelURL(t *testing.T) {
	tests := map[string]string{
		"https://films.example.com":  "https://films.example.com/admin",
		"https://films.example.com/": "https://films.example.com/admin",
		"":                           "/admin",
	}
	for in, want := range tests {
		if got := AdminPanelURL(in); got != want {
			t.Errorf("AdminPanelURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBookingEmails(t *testing.T) {
	data := NewBookingEmailData("Reel Studio", sampleBooking(), "https://films.example.com/admin")

	tests := []struct {
		name     string
		render   func(BookingEmailData) (string, string)
		wantText []string
		wantHTML []string
	}{
		{
			name:     "received",
			render:   BookingReceivedEmail,
			wantText: []string{"Hi Ada <Lovelace>", "June 14, 2026", "Chicago", "$2k-$5k"},
			wantHTML: []string{"Ada &lt;Lovelace&gt;", "June 14, 2026", "Booking Details:"},
		},
		{
			name:     "alert",
			render:   BookingAlertEmail,
			wantText: []string{"ada@example.com", "555-0100", "Full day coverage", "https://films.example.com/admin"},
			wantHTML: []string{"View in Admin Panel", `href="https://films.example.com/admin"`},
		},
		{
			name:     "confirmed",
			render:   BookingConfirmedEmail,
			wantText: []string{"Your booking for Wedding has been confirmed"},
			wantHTML: []string{"Great News!", "<strong>Wedding</strong>"},
		},
		{
			name:     "rejected",
			render:   BookingRejectedEmail,
			wantText: []string{"not available for your requested date"},
			wantHTML: []string{"Update on Your Booking Request"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, html := tt.render(data)
			for _, s := range tt.wantText {
				if !strings.Contains(text, s) {
					t.Errorf("text body missing %q", s)
				}
			}
			for _, s := range tt.wantHTML {
				if !strings.Contains(html, s) {
					t.Errorf("html body missing %q", s)
				}
			}
			if strings.Contains(html, "<Lovelace>") {
				t.Error("html body contains unescaped client input")
			}
		})
	}
}

func TestBookingAlertEmail_NoAdminURL(t *testing.T) {
	data := NewBookingEmailData("Reel Studio", sampleBooking(), "")
	text, html := BookingAlertEmail(data)
	if strings.Contains(text, "admin panel") {
		t.Error("text body mentions admin panel without a URL")
	}
	if strings.Contains(html, "View in Admin Panel") {
		t.Error("html body links admin panel without a URL")
	}
}

func TestMailer_NotConfigured(t *testing.T) {
	m := New(Config{}, zap.NewNop())
	if err := m.Send(context.Background(), Email{To: "a@example.com"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Send() error = %v, want ErrNotConfigured", err)
	}
	if err := m.Verify(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Verify() error = %v, want ErrNotConfigured", err)
	}
}

func TestMailer_Message(t *testing.T) {
	m := New(Config{Host: "smtp.example.com", From: "studio@example.com", FromName: "Reel Studio"}, nil)
	msg := m.message(Email{
		To:       "ada@example.com",
		Subject:  SubjectBookingConfirmed,
		TextBody: "plain",
		HTMLBody: "<p>rich</p>",
	})

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	raw := buf.String()
	for _, want := range []string{
		"To: ada@example.com",
		"studio@example.com",
		"Reel Studio",
		"multipart/alternative",
		"text/plain",
		"text/html",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}
