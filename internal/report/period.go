// Package report assembles the fiscal, performance and executive reports and
// encodes them as CSV, JSON, HTML or PDF.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
)

// PeriodKind selects the date range of a report.
type PeriodKind string

const (
	CurrentMonth   PeriodKind = "current_month"
	LastMonth      PeriodKind = "last_month"
	CurrentQuarter PeriodKind = "current_quarter"
	LastQuarter    PeriodKind = "last_quarter"
	CurrentYear    PeriodKind = "current_year"
	LastYear       PeriodKind = "last_year"
	Custom         PeriodKind = "custom"
)

// PeriodKinds lists the accepted period selectors.
var PeriodKinds = []PeriodKind{CurrentMonth, LastMonth, CurrentQuarter, LastQuarter, CurrentYear, LastYear, Custom}

// Period is an inclusive YYYY-MM-DD date range.
type Period struct {
	Kind  PeriodKind `json:"kind"`
	From  string     `json:"from"`
	To    string     `json:"to"`
	Label string     `json:"label"`
}

// Contains reports whether date falls inside the period.
func (p Period) Contains(date string) bool {
	return date >= p.From && date <= p.To
}

// ResolvePeriod turns a selector into a date range relative to now. from and
// to are only read for Custom and accept YYYY-MM-DD or natural language such
// as "3 months ago".
func ResolvePeriod(kind PeriodKind, now time.Time, from, to string) (Period, error) {
	year, month := now.Year(), now.Month()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	quarterStart := time.Date(year, time.Month((int(month)-1)/3*3+1), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, now.Location())

	var start, end time.Time
	var label string
	switch kind {
	case CurrentMonth, "":
		kind = CurrentMonth
		start, end = monthStart, monthStart.AddDate(0, 1, -1)
		label = start.Format("January 2006")
	case LastMonth:
		start = monthStart.AddDate(0, -1, 0)
		end = monthStart.AddDate(0, 0, -1)
		label = start.Format("January 2006")
	case CurrentQuarter:
		start, end = quarterStart, quarterStart.AddDate(0, 3, -1)
		label = quarterLabel(start)
	case LastQuarter:
		start = quarterStart.AddDate(0, -3, 0)
		end = quarterStart.AddDate(0, 0, -1)
		label = quarterLabel(start)
	case CurrentYear:
		start, end = yearStart, yearStart.AddDate(1, 0, -1)
		label = start.Format("2006")
	case LastYear:
		start = yearStart.AddDate(-1, 0, 0)
		end = yearStart.AddDate(0, 0, -1)
		label = start.Format("2006")
	case Custom:
		f, err := ParseDay("from", from, now)
		if err != nil {
			return Period{}, err
		}
		t, err := ParseDay("to", to, now)
		if err != nil {
			return Period{}, err
		}
		if t < f {
			return Period{}, errors.NewValidationError("to", to, "must not be before from")
		}
		return Period{Kind: Custom, From: f, To: t, Label: f + " to " + t}, nil
	default:
		return Period{}, errors.Wrapf(errors.ErrInvalidPeriod, "%q", kind)
	}

	return Period{Kind: kind, From: model.FormatDate(start), To: model.FormatDate(end), Label: label}, nil
}

// ParsePeriodKind validates a selector name.
func ParsePeriodKind(s string) (PeriodKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range PeriodKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Wrapf(errors.ErrInvalidPeriod, "%q", s)
}

func quarterLabel(start time.Time) string {
	return fmt.Sprintf("Q%d %d", (int(start.Month())-1)/3+1, start.Year())
}

// ParseDay parses a calendar day for field. YYYY-MM-DD is taken as is,
// anything else goes through the natural language date parser.
func ParseDay(field, input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.NewValidationError(field, input, "is a required field")
	}
	if t, err := model.ParseDate(input); err == nil {
		return model.FormatDate(t), nil
	}
	switch strings.ToLower(input) {
	case "today", "now":
		return model.FormatDate(now), nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return "", &errors.ValidationError{
			Violations: []errors.FieldViolation{{Field: field, Value: input, Message: "must be a date like 2024-01-31 or 'last monday'"}},
			Cause:      errors.ErrInvalidDate,
		}
	}
	return model.FormatDate(result.Time), nil
}
