package models

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Any video that survives construction carries enumerated values only, and any
// booking that survives construction is pending regardless of its inputs.
func TestProperty_ConstructedRecordsRespectEnums(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	category := gen.OneConstOf("Weddings", "Commercial", "Events", "Reels", "YouTube", "weddings", "Music", "")
	platform := gen.OneConstOf("youtube", "vimeo", "self-hosted", "", "YouTube", "dailymotion")
	status := gen.OneConstOf("public", "private", "", "draft")

	properties.Property("constructed videos carry valid enums", prop.ForAll(
		func(title, c, p, s string) bool {
			v, err := NewVideo(VideoFields{Title: title, Category: c, Platform: p, Status: s}, time.Now())
			if err != nil {
				return true
			}
			return IsValidVideoCategory(v.Category) &&
				IsValidVideoPlatform(v.Platform) &&
				IsValidVideoStatus(v.Status) &&
				v.Title != ""
		},
		gen.AlphaString(), category, platform, status,
	))

	properties.Property("constructed bookings are pending", prop.ForAll(
		func(name, eventType string) bool {
			f := validBookingFields()
			f.FullName = name
			f.EventType = eventType
			b, err := NewBooking(f, time.Now())
			if err != nil {
				return name == "" || eventType == ""
			}
			return b.Status == BookingPending
		},
		gen.AlphaString(), gen.AlphaString(),
	))

	properties.TestingRun(t)
}
