package model

import (
	"fmt"
	"time"
)

// ReportType names a report template.
type ReportType string

const (
	ReportCommercialista ReportType = "commercialista"
	ReportPerformance    ReportType = "performance"
	ReportExecutive      ReportType = "executive"
)

// ReportTypes lists the templates in display order.
var ReportTypes = []ReportType{ReportCommercialista, ReportPerformance, ReportExecutive}

// Frequency is how often a scheduled report runs.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// Frequencies lists the supported frequencies.
var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual}

// ReportFormat is an output encoding.
type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatPDF  ReportFormat = "pdf"
	FormatHTML ReportFormat = "html"
	FormatJSON ReportFormat = "json"
)

// ReportFormats lists the supported encodings.
var ReportFormats = []ReportFormat{FormatCSV, FormatPDF, FormatHTML, FormatJSON}

// ScheduledReport is a user-defined recurring report.
type ScheduledReport struct {
	ID        string       `json:"id"`
	Name      string       `json:"name" validate:"required,max=128"`
	Type      ReportType   `json:"type" validate:"required,oneof=commercialista performance executive"`
	Frequency Frequency    `json:"frequency" validate:"required,oneof=daily weekly monthly quarterly annual"`
	Format    ReportFormat `json:"format" validate:"required,oneof=csv pdf html json"`
	Email     string       `json:"email,omitempty" validate:"omitempty,email"`
	CreatedAt time.Time    `json:"createdAt"`
	LastRun   *time.Time   `json:"lastRun"`
	Enabled   bool         `json:"enabled"`
}

// NextRun returns when the report is next due: one period after the last
// run, or after creation when it never ran.
func (s *ScheduledReport) NextRun() time.Time {
	base := s.CreatedAt
	if s.LastRun != nil {
		base = *s.LastRun
	}
	return s.Frequency.Add(base)
}

// IsDue reports whether an enabled report should run at now.
func (s *ScheduledReport) IsDue(now time.Time) bool {
	return s.Enabled && !s.NextRun().After(now)
}

// Add returns t advanced by one period using calendar arithmetic.
func (f Frequency) Add(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyAnnual:
		return t.AddDate(1, 0, 0)
	default:
		return t
	}
}

// ParseFrequency validates a frequency name.
func ParseFrequency(s string) (Frequency, error) {
	for _, f := range Frequencies {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

// ParseReportType validates a report type name.
func ParseReportType(s string) (ReportType, error) {
	for _, t := range ReportTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// ParseReportFormat validates a format name.
func ParseReportFormat(s string) (ReportFormat, error) {
	for _, f := range ReportFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q", s)
}
