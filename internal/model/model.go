// Package model defines the domain models for creatorbook.
package model

import (
	"strings"
	"time"
)

// Storage keys. Each holds one JSON document; the names are shared with
// existing exports and must not change.
const (
	KeyRevenue          = "musicbiz_revenue"
	KeyVideos           = "musicbiz_videos"
	KeySettings         = "musicbiz_settings"
	KeyMetadata         = "musicbiz_metadata"
	KeyScheduledReports = "musicbiz_scheduled_reports"
	KeyCalendarEvents   = "musicbiz_calendar_events"
)

// AllKeys lists every persisted key in backup order.
var AllKeys = []string{
	KeyRevenue,
	KeyVideos,
	KeySettings,
	KeyMetadata,
	KeyScheduledReports,
	KeyCalendarEvents,
}

// DateLayout is the layout of every calendar date field.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in the local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket of a YYYY-MM-DD date string.
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
