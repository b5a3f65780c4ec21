// internal/domain/models/video.go
package models

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is a portfolio entry. It either points at an external platform
// (VideoID on youtube/vimeo) or at directly hosted media (VideoURL).
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Platform    string             `bson:"platform" json:"platform"`
	VideoID     string             `bson:"video_id,omitempty" json:"videoId,omitempty"`
	VideoURL    string             `bson:"video_url,omitempty" json:"videoUrl,omitempty"`
	Thumbnail   string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"` // public URL of the stored upload
	Status      string             `bson:"status" json:"status"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// MaxVideoTitleLength bounds Title, in characters.
const MaxVideoTitleLength = 200

// Video categories
const (
	CategoryWeddings   = "Weddings"
	CategoryCommercial = "Commercial"
	CategoryEvents     = "Events"
	CategoryReels      = "Reels"
	CategoryYouTube    = "YouTube"
)

// AllVideoCategories returns all valid video categories.
func AllVideoCategories() []string {
	return []string{
		CategoryWeddings,
		CategoryCommercial,
		CategoryEvents,
		CategoryReels,
		CategoryYouTube,
	}
}

// IsValidVideoCategory checks if a category is valid. Categories are case-sensitive.
func IsValidVideoCategory(c string) bool {
	return contains(AllVideoCategories(), c)
}

// Video platforms
const (
	PlatformYouTube    = "youtube"
	PlatformVimeo      = "vimeo"
	PlatformSelfHosted = "self-hosted"
)

// AllVideoPlatforms returns all valid video platforms.
func AllVideoPlatforms() []string {
	return []string{PlatformYouTube, PlatformVimeo, PlatformSelfHosted}
}

// IsValidVideoPlatform checks if a platform is valid.
func IsValidVideoPlatform(p string) bool {
	return contains(AllVideoPlatforms(), p)
}

// Video visibility
const (
	VideoStatusPublic  = "public"
	VideoStatusPrivate = "private"
)

// AllVideoStatuses returns all valid video statuses.
func AllVideoStatuses() []string {
	return []string{VideoStatusPublic, VideoStatusPrivate}
}

// IsValidVideoStatus checks if a video status is valid.
func IsValidVideoStatus(s string) bool {
	return contains(AllVideoStatuses(), s)
}

// VideoFields carries the caller-supplied values for a new video.
type VideoFields struct {
	Title       string
	Description string
	Category    string
	Platform    string
	VideoID     string
	VideoURL    string
	Thumbnail   string
	Status      string
}

// NewVideo builds a Video from fields, applying defaults (platform youtube,
// status public) and rejecting values outside the enumerations.
// The returned video has no ID; the store assigns one on insert.
func NewVideo(f VideoFields, now time.Time) (Video, error) {
	v := Video{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		Platform:    strings.TrimSpace(f.Platform),
		VideoID:     strings.TrimSpace(f.VideoID),
		VideoURL:    strings.TrimSpace(f.VideoURL),
		Thumbnail:   f.Thumbnail,
		Status:      strings.TrimSpace(f.Status),
		CreatedAt:   now.UTC(),
	}
	if v.Platform == "" {
		v.Platform = PlatformYouTube
	}
	if v.Status == "" {
		v.Status = VideoStatusPublic
	}
	if err := v.Validate(); err != nil {
		return Video{}, err
	}
	return v, nil
}

// Validate checks required fields and enumerations.
func (v Video) Validate() error {
	if v.Title == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(v.Title) > MaxVideoTitleLength {
		return &ValidationError{Field: "title", Message: "Title must be at most " + strconv.Itoa(MaxVideoTitleLength) + " characters"}
	}
	if v.Category == "" {
		return &ValidationError{Field: "category", Message: "Category is required"}
	}
	if !IsValidVideoCategory(v.Category) {
		return &ValidationError{Field: "category", Message: "Category must be one of: " + strings.Join(AllVideoCategories(), ", ")}
	}
	if !IsValidVideoPlatform(v.Platform) {
		return &ValidationError{Field: "platform", Message: "Platform must be one of: " + strings.Join(AllVideoPlatforms(), ", ")}
	}
	if !IsValidVideoStatus(v.Status) {
		return &ValidationError{Field: "status", Message: "Status must be one of: " + strings.Join(AllVideoStatuses(), ", ")}
	}
	return nil
}

// IsPublic reports whether the video may appear on the public site.
func (v Video) IsPublic() bool {
	return v.Status == VideoStatusPublic
}
