package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/analytics"
	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/report"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// Section identifies a dashboard page.
type Section int

const (
	SectionOverview Section = iota
	SectionRevenue
	SectionVideos
	SectionAnalytics
	SectionCalendar
	sectionCount
)

// String returns the tab label.
func (s Section) String() string {
	switch s {
	case SectionOverview:
		return "Overview"
	case SectionRevenue:
		return "Revenue"
	case SectionVideos:
		return "Videos"
	case SectionAnalytics:
		return "Analytics"
	case SectionCalendar:
		return "Calendar"
	default:
		return "Unknown"
	}
}

// RevenueSource supplies revenue views.
type RevenueSource interface {
	List() []*model.RevenueEntry
	Stats() *model.RevenueStats
	CheckThresholdStatus() *model.ThresholdStatus
	CheckMonthlyGoal() *model.GoalStatus
	MonthlyTrends(last int) []model.MonthlyRevenue
}

// VideoSource supplies videos with linked metrics.
type VideoSource interface {
	List() []*model.VideoEntry
}

// AnalyticsSource supplies analytics sections.
type AnalyticsSource interface {
	Section(name string) (any, error)
}

// CalendarSource supplies calendar views.
type CalendarSource interface {
	Upcoming(n int) []*model.CalendarEvent
	MonthGrid(year int, month time.Month) *model.MonthGrid
}

// Render computes one section. A panic or error is returned as a
// *errors.RenderError so that only this section is replaced.
func Render(s Section, fn func() (string, error)) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", errors.NewRenderError(s.String(), fmt.Errorf("%v", r))
		}
	}()
	out, err = fn()
	if err != nil {
		if !errors.IsRenderError(err) {
			err = errors.NewRenderError(s.String(), err)
		}
		return "", err
	}
	return out, nil
}

// ReloadPlaceholder is shown in place of a section that failed to render.
func ReloadPlaceholder(err error) string {
	return StyleError.Render("This section could not be displayed.") + "\n\n" +
		StyleSubtitle.Render(err.Error()) + "\n\n" +
		StyleWarning.Render("press r to reload this section")
}

type renderer struct {
	revenue   RevenueSource
	videos    VideoSource
	analytics AnalyticsSource
	calendar  CalendarSource
	currency  string
	now       func() time.Time
}

func (r *renderer) money(d decimal.Decimal) string {
	return StyleAmount.Render(report.Money(d, r.currency))
}

func kpi(label, value string) string {
	return StyleLabel.Render(fmt.Sprintf("%-18s", label)) + value
}

func (r *renderer) overview() (string, error) {
	stats := r.revenue.Stats()
	threshold := r.revenue.CheckThresholdStatus()
	goal := r.revenue.CheckMonthlyGoal()

	var b strings.Builder
	b.WriteString(kpi("This month", r.money(stats.CurrentMonthRevenue)) + "\n")
	b.WriteString(kpi("This year", r.money(stats.CurrentYearRevenue)) + "\n")
	b.WriteString(kpi("All time", r.money(stats.TotalRevenue)) + "\n")
	b.WriteString(kpi("Entries", fmt.Sprintf("%d", stats.TotalEntries)) + "\n\n")

	b.WriteString(kpi("Monthly goal", fmt.Sprintf("%s %.0f%%", ProgressBar(goal.Percentage, 20), goal.Percentage)) + "\n")
	b.WriteString(kpi("Threshold", fmt.Sprintf("%s %.0f%%", ProgressBar(threshold.Percentage, 20), threshold.Percentage)) + "\n")
	if threshold.NeedsRegistration {
		b.WriteString("\n" + StyleWarning.Render("Registration threshold reached."))
	} else {
		b.WriteString(StyleSubtitle.Render(fmt.Sprintf("%s left before the threshold", threshold.Remaining.StringFixed(2))))
	}

	if events := r.calendar.Upcoming(3); len(events) > 0 {
		b.WriteString("\n\n" + StyleLabel.Render("Upcoming") + "\n")
		for _, e := range events {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", e.Date, e.Time, e.Title))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *renderer) revenueSection() (string, error) {
	entries := r.revenue.List()
	var b strings.Builder
	b.WriteString(StyleLabel.Render("Last 6 months") + "\n")
	trends := r.revenue.MonthlyTrends(6)
	peak := 0.0
	for _, t := range trends {
		if v := t.Revenue.InexactFloat64(); v > peak {
			peak = v
		}
	}
	for _, t := range trends {
		pct := 0.0
		if peak > 0 {
			pct = t.Revenue.InexactFloat64() / peak * 100
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", t.Month, ProgressBar(pct, 20), t.Revenue.StringFixed(2)))
	}

	b.WriteString("\n" + StyleLabel.Render("Recent entries") + "\n")
	if len(entries) == 0 {
		b.WriteString(StyleSubtitle.Render("  No revenue yet. Press n to add one."))
	}
	for i, e := range entries {
		if i == 8 {
			break
		}
		b.WriteString(fmt.Sprintf("  %s  %-12s %10s  %s\n", e.Date, e.Platform, e.Amount.StringFixed(2), e.VideoTitle))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *renderer) videosSection() (string, error) {
	videos := r.videos.List()
	if len(videos) == 0 {
		return StyleSubtitle.Render("No videos yet. Press n to add one."), nil
	}
	var b strings.Builder
	for i, v := range videos {
		if i == 10 {
			b.WriteString(StyleSubtitle.Render(fmt.Sprintf("  and %d more", len(videos)-10)))
			break
		}
		b.WriteString(fmt.Sprintf("%3d %-7s %-32s %10s  %d views\n",
			v.PerformanceScore, v.PerformanceLevel, validate.TruncateString(v.Title, 32), v.TotalRevenue.StringFixed(2), v.Views))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *renderer) analyticsSection() (string, error) {
	v, err := r.analytics.Section(analytics.SectionInsights)
	if err != nil {
		return "", err
	}
	insights, _ := v.([]analytics.Insight)
	v, err = r.analytics.Section(analytics.SectionCategories)
	if err != nil {
		return "", err
	}
	categories, _ := v.([]analytics.CategoryStats)

	var b strings.Builder
	b.WriteString(StyleLabel.Render("Categories") + "\n")
	if len(categories) == 0 {
		b.WriteString(StyleSubtitle.Render("  No videos yet.") + "\n")
	}
	for _, c := range categories {
		b.WriteString(fmt.Sprintf("  %-14s %3d videos %10s  score %d\n", c.Category, c.Count, report.Amount(c.TotalRevenue), c.Score))
	}
	b.WriteString("\n" + StyleLabel.Render("Insights") + "\n")
	if len(insights) == 0 {
		b.WriteString(StyleSubtitle.Render("  Add revenue and videos to get recommendations."))
	}
	for _, in := range insights {
		style := StyleSubtitle
		switch in.Type {
		case analytics.InsightSuccess:
			style = StyleSuccess
		case analytics.InsightWarning:
			style = StyleWarning
		}
		b.WriteString("  " + style.Render(in.Title) + ": " + in.Message + "\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *renderer) calendarSection() (string, error) {
	now := r.now()
	grid := r.calendar.MonthGrid(now.Year(), now.Month())

	var b strings.Builder
	b.WriteString(StyleLabel.Render(now.Format("January 2006")) + "\n")
	b.WriteString(StyleSubtitle.Render(" Mo  Tu  We  Th  Fr  Sa  Su") + "\n")
	for _, week := range grid.Weeks {
		for _, d := range week {
			cell := fmt.Sprintf("%3d", d.Day)
			switch {
			case !d.InMonth:
				cell = StyleSubtitle.Render(cell)
			case d.Today:
				cell = StyleActiveTab.UnsetPadding().Render(cell)
			}
			mark := " "
			if len(d.Events) > 0 {
				mark = "*"
			}
			b.WriteString(cell + mark)
		}
		b.WriteString("\n")
	}

	events := r.calendar.Upcoming(5)
	b.WriteString("\n" + StyleLabel.Render("Upcoming") + "\n")
	if len(events) == 0 {
		b.WriteString(StyleSubtitle.Render("  Nothing scheduled."))
	}
	for _, e := range events {
		b.WriteString(fmt.Sprintf("  %s %-5s %-9s %s\n", e.Date, e.Time, e.Type, e.Title))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
