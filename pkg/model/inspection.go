package model

import (
	"path"
	"strings"
	"time"
)

// InspectionRecord is one stored observation of a vehicle inspection.
// Optional fields are empty strings when the server has no value.
type InspectionRecord struct {
	ID            string `json:"id,omitempty"`
	VanNumber     string `json:"van_number"`
	Date          string `json:"date"` // Inspection timestamp as entered (UTC)
	InspectorID   string `json:"inspector_id"`
	EventName     string `json:"event_name,omitempty"`
	OdometerIn    string `json:"odometer_in,omitempty"`
	VideoFilename string `json:"video_filename,omitempty"`
	LicensePlate  string `json:"license_plate,omitempty"`
	Comments      string `json:"comments,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// timestampLayouts are the formats the inspection form and the backend produce.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp parses Date. ok is false when Date is empty or unparseable.
func (r InspectionRecord) Timestamp() (t time.Time, ok bool) {
	return ParseTimestamp(r.Date)
}

// ParseTimestamp parses s using the layouts inspections are stored with.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HasVideo reports whether a video is attached to the inspection.
func (r InspectionRecord) HasVideo() bool {
	return strings.TrimSpace(r.VideoFilename) != ""
}

// ThumbnailName returns the thumbnail file name for the attached video:
// the base of the video name with its extension replaced by ".jpg".
func (r InspectionRecord) ThumbnailName() string {
	return ThumbnailName(r.VideoFilename)
}

// ThumbnailName maps a video file name to its thumbnail file name.
func ThumbnailName(videoFilename string) string {
	if videoFilename == "" {
		return ""
	}
	base := path.Base(videoFilename)
	return strings.TrimSuffix(base, path.Ext(base)) + ".jpg"
}

// InspectionPage is one page of the inspected-vans listing.
type InspectionPage struct {
	Inspections []InspectionRecord `json:"inspections"`
	TotalPages  int                `json:"total_pages"`
	Total       int                `json:"total"`
	Page        int                `json:"page"`
	PerPage     int                `json:"per_page"`
}

// TotalPagesFor returns the page count for total items at perPage items per page.
func TotalPagesFor(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
