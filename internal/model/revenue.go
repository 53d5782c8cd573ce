package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Common revenue platforms offered for completion. Platform is free text.
var KnownPlatforms = []string{
	"YouTube AdSense",
	"Spotify",
	"Apple Music",
	"Amazon Music",
	"Bandcamp",
	"Patreon",
	"Sponsorship",
	"Licensing",
	"Other",
}

// RevenueEntry is a single payment received from a platform.
type RevenueEntry struct {
	ID         string          `json:"id"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	Platform   string          `json:"platform" validate:"required,max=64"`
	Amount     decimal.Decimal `json:"amount" validate:"gte=0"`
	VideoTitle string          `json:"videoTitle,omitempty" validate:"max=256"`
	Notes      string          `json:"notes,omitempty" validate:"max=4096"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// NewRevenueEntry creates an entry with the editable fields set.
func NewRevenueEntry(date, platform string, amount decimal.Decimal, videoTitle, notes string) *RevenueEntry {
	return &RevenueEntry{
		Date:       date,
		Platform:   platform,
		Amount:     amount,
		VideoTitle: videoTitle,
		Notes:      notes,
	}
}

// Month returns the YYYY-MM bucket of the entry.
func (r *RevenueEntry) Month() string {
	return MonthKey(r.Date)
}

// Time returns the parsed entry date.
func (r *RevenueEntry) Time() (time.Time, error) {
	return ParseDate(r.Date)
}

// Clone returns a copy of the entry.
func (r *RevenueEntry) Clone() *RevenueEntry {
	c := *r
	return &c
}

// RevenuePatch holds the fields of an update. Nil fields are left unchanged.
type RevenuePatch struct {
	Date       *string
	Platform   *string
	Amount     *decimal.Decimal
	VideoTitle *string
	Notes      *string
}

// Apply copies the set fields onto r.
func (p RevenuePatch) Apply(r *RevenueEntry) {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Platform != nil {
		r.Platform = *p.Platform
	}
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.VideoTitle != nil {
		r.VideoTitle = *p.VideoTitle
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}

// PlatformTotal aggregates the entries of one platform.
type PlatformTotal struct {
	Revenue decimal.Decimal `json:"revenue"`
	Entries int             `json:"entries"`
}

// RevenueStats summarizes the revenue list.
type RevenueStats struct {
	CurrentMonthRevenue decimal.Decimal          `json:"currentMonthRevenue"`
	CurrentMonthEntries int                      `json:"currentMonthEntries"`
	CurrentYearRevenue  decimal.Decimal          `json:"currentYearRevenue"`
	CurrentYearEntries  int                      `json:"currentYearEntries"`
	TotalRevenue        decimal.Decimal          `json:"totalRevenue"`
	TotalEntries        int                      `json:"totalEntries"`
	AveragePerEntry     decimal.Decimal          `json:"averagePerEntry"`
	ByPlatform          map[string]PlatformTotal `json:"byPlatform"`
}

// ThresholdStatus reports year-to-date revenue against the registration threshold.
type ThresholdStatus struct {
	CurrentRevenue    decimal.Decimal `json:"currentRevenue"`
	Threshold         decimal.Decimal `json:"threshold"`
	Remaining         decimal.Decimal `json:"remaining"`
	Percentage        float64         `json:"percentage"`
	NeedsRegistration bool            `json:"needsRegistration"`
}

// GoalStatus reports month-to-date revenue against the monthly target.
type GoalStatus struct {
	CurrentRevenue decimal.Decimal `json:"currentRevenue"`
	Target         decimal.Decimal `json:"target"`
	Remaining      decimal.Decimal `json:"remaining"`
	Percentage     float64         `json:"percentage"`
	Achieved       bool            `json:"achieved"`
}

// MonthlyRevenue is one bucket of a monthly trend.
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Percentage returns part/whole*100, or 0 when whole is not positive.
func Percentage(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
