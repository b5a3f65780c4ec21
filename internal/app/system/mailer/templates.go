// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/dalemusser/reelfolio/internal/domain/models"
)

// Subjects for the booking emails.
const (
	SubjectBookingReceived  = "Booking Confirmation - Your Request Received"
	SubjectBookingAlert     = "New Booking Request Received"
	SubjectBookingConfirmed = "Your Booking is Confirmed!"
	SubjectBookingRejected  = "Regarding Your Booking Request"
)

// DateLayout is how event dates appear in email.
const DateLayout = "January 2, 2006"

// BookingEmailData contains the data shared by all booking emails.
type BookingEmailData struct {
	AppName            string
	FullName           string
	Email              string
	Phone              string
	EventType          string
	EventDate          string
	EventLocation      string
	BudgetRange        string
	ProjectDescription string
	AdminURL           string // admin alert only
}

// NewBookingEmailData flattens a booking for the templates.
// adminURL may be empty for client-facing emails.
func NewBookingEmailData(appName string, b models.Booking, adminURL string) BookingEmailData {
	return BookingEmailData{
		AppName:            appName,
		FullName:           b.FullName,
		Email:              b.Email,
		Phone:              b.Phone,
		EventType:          b.EventType,
		EventDate:          FormatDate(b.EventDate),
		EventLocation:      b.EventLocation,
		BudgetRange:        b.BudgetRange,
		ProjectDescription: b.ProjectDescription,
		AdminURL:           adminURL,
	}
}

// FormatDate renders t in DateLayout. The zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// AdminPanelURL joins the frontend base URL with the admin path.
func AdminPanelURL(frontendURL string) string {
	return strings.TrimRight(frontendURL, "/") + "/admin"
}

// BookingReceivedEmail is sent to the client right after they submit a booking.
func BookingReceivedEmail(data BookingEmailData) (textBody, htmlBody string) {
	textBody = "Hi " + data.FullName + ",\n\n" +
		"Thank you for your booking request! I've received it and I'm excited to learn more about your project.\n\n" +
		"Booking details:\n" +
		"  Event type: " + data.EventType + "\n" +
		"  Event date: " + data.EventDate + "\n" +
		"  Location: " + data.EventLocation + "\n" +
		"  Budget range: " + data.BudgetRange + "\n\n" +
		"I'll review your project details and get back to you within 24 hours with next steps.\n\n" +
		"Best regards,\n" + data.AppName

	htmlBody = render(bookingReceivedHTMLTmpl, data)
	return textBody, htmlBody
}

// BookingAlertEmail tells the admin a new booking arrived.
func BookingAlertEmail(data BookingEmailData) (textBody, htmlBody string) {
	textBody = "New booking request\n\n" +
		"Client\n" +
		"  Name: " + data.FullName + "\n" +
		"  Email: " + data.Email + "\n" +
		"  Phone: " + data.Phone + "\n\n" +
		"Event\n" +
		"  Type: " + data.EventType + "\n" +
		"  Date: " + data.EventDate + "\n" +
		"  Location: " + data.EventLocation + "\n" +
		"  Budget: " + data.BudgetRange + "\n\n" +
		"Project description:\n" + data.ProjectDescription + "\n"
	if data.AdminURL != "" {
		textBody += "\nView in the admin panel:\n" + data.AdminURL + "\n"
	}

	htmlBody = render(bookingAlertHTMLTmpl, data)
	return textBody, htmlBody
}

// BookingConfirmedEmail tells the client their booking was accepted.
func BookingConfirmedEmail(data BookingEmailData) (textBody, htmlBody string) {
	textBody = "Hi " + data.FullName + ",\n\n" +
		"Great news! Your booking for " + data.EventType + " has been confirmed.\n\n" +
		"I'm excited to work with you on this project. I'll be in touch soon with the next steps.\n\n" +
		"Best regards,\n" + data.AppName

	htmlBody = render(bookingConfirmedHTMLTmpl, data)
	return textBody, htmlBody
}

// BookingRejectedEmail tells the client the requested date is not available.
func BookingRejectedEmail(data BookingEmailData) (textBody, htmlBody string) {
	textBody = "Hi " + data.FullName + ",\n\n" +
		"Thank you for your interest in my videography services.\n\n" +
		"Unfortunately, I'm not available for your requested date. However, I'd love to discuss " +
		"alternative dates or refer you to a trusted colleague.\n\n" +
		"Please feel free to reach out if you'd like to explore other options.\n\n" +
		"Best regards,\n" + data.AppName

	htmlBody = render(bookingRejectedHTMLTmpl, data)
	return textBody, htmlBody
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

const layoutHead = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f4f4f5;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f4f4f5;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 600px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">
          <tr>
            <td style="padding: 32px 32px 24px 32px; text-align: center; border-bottom: 1px solid #e4e4e7;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #18181b;">{{.AppName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">`

const layoutFoot = `
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

var bookingReceivedHTMLTmpl = template.Must(template.New("booking_received").Parse(layoutHead + `
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #0066ff;">Thank you for your booking request!</h2>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Hi {{.FullName}},</p>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">I've received your booking request and I'm excited to learn more about your project!</p>
              <div style="background: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
                <h3 style="margin-top: 0;">Booking Details:</h3>
                <p><strong>Event Type:</strong> {{.EventType}}</p>
                <p><strong>Event Date:</strong> {{.EventDate}}</p>
                <p><strong>Location:</strong> {{.EventLocation}}</p>
                <p><strong>Budget Range:</strong> {{.BudgetRange}}</p>
              </div>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">I'll review your project details and get back to you within 24 hours with next steps.</p>
              <p style="margin: 0; font-size: 15px; line-height: 1.6; color: #52525b;">Best regards,<br><strong>{{.AppName}}</strong></p>` + layoutFoot))

var bookingAlertHTMLTmpl = template.Must(template.New("booking_alert").Parse(layoutHead + `
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #0066ff;">New Booking Request</h2>
              <div style="background: #f5f5f5; padding: 20px; border-radius: 8px;">
                <h3 style="margin-top: 0;">Client Information:</h3>
                <p><strong>Name:</strong> {{.FullName}}</p>
                <p><strong>Email:</strong> {{.Email}}</p>
                <p><strong>Phone:</strong> {{.Phone}}</p>
                <h3 style="margin-top: 20px;">Event Details:</h3>
                <p><strong>Type:</strong> {{.EventType}}</p>
                <p><strong>Date:</strong> {{.EventDate}}</p>
                <p><strong>Location:</strong> {{.EventLocation}}</p>
                <p><strong>Budget:</strong> {{.BudgetRange}}</p>
                <h3 style="margin-top: 20px;">Project Description:</h3>
                <p style="white-space: pre-wrap;">{{.ProjectDescription}}</p>
              </div>
              {{if .AdminURL}}
              <p style="margin-top: 20px;">
                <a href="{{.AdminURL}}" style="background: #0066ff; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">View in Admin Panel</a>
              </p>
              {{end}}` + layoutFoot))

var bookingConfirmedHTMLTmpl = template.Must(template.New("booking_confirmed").Parse(layoutHead + `
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #0066ff;">Great News!</h2>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Hi {{.FullName}},</p>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Your booking for <strong>{{.EventType}}</strong> has been confirmed!</p>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">I'm excited to work with you on this project. I'll be in touch soon with the next steps.</p>
              <p style="margin: 0; font-size: 15px; line-height: 1.6; color: #52525b;">Best regards,<br>{{.AppName}}</p>` + layoutFoot))

var bookingRejectedHTMLTmpl = template.Must(template.New("booking_rejected").Parse(layoutHead + `
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #18181b;">Update on Your Booking Request</h2>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Hi {{.FullName}},</p>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Thank you for your interest in my videography services.</p>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Unfortunately, I'm not available for your requested date. However, I'd love to discuss alternative dates or refer you to a trusted colleague.</p>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Please feel free to reach out if you'd like to explore other options.</p>
              <p style="margin: 0; font-size: 15px; line-height: 1.6; color: #52525b;">Best regards,<br>{{.AppName}}</p>` + layoutFoot))
