package report

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/analytics"
	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/linking"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/storage"
)

// RevenueLister supplies revenue entries.
type RevenueLister interface {
	List() []*model.RevenueEntry
}

// VideoSource supplies videos and the matcher used to link them to revenue.
type VideoSource interface {
	List() []*model.VideoEntry
	Matcher() linking.Matcher
}

// SettingsGetter supplies the current settings.
type SettingsGetter interface {
	Get() *model.Settings
}

// Generator builds report documents from the stores.
type Generator struct {
	revenue  RevenueLister
	videos   VideoSource
	settings SettingsGetter
	Now      func() time.Time
}

// NewGenerator creates a generator.
func NewGenerator(revenue RevenueLister, videos VideoSource, settings SettingsGetter) *Generator {
	return &Generator{
		revenue:  revenue,
		videos:   videos,
		settings: settings,
		Now:      time.Now,
	}
}

// Generate assembles the report of type t over period.
func (g *Generator) Generate(t model.ReportType, period Period) (*Document, error) {
	tpl, ok := TemplateFor(t)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidReportType, "%q", t)
	}

	now := g.Now()
	settings := g.settings.Get()
	all := g.revenue.List()
	inPeriod := storage.SortByDateDesc(storage.FilterByDateRange(all, period.From, period.To))

	doc := &Document{
		Type:        t,
		Title:       tpl.Title,
		Period:      period,
		GeneratedAt: now,
		Currency:    settings.CurrencyCode(),
	}

	switch t {
	case model.ReportCommercialista:
		fiscal(doc, inPeriod, all, settings, period)
	case model.ReportPerformance:
		g.performance(doc, inPeriod, period)
	case model.ReportExecutive:
		g.executive(doc, inPeriod, settings, now, period)
	}
	return doc, nil
}

// FiscalData is the data payload of the fiscal summary.
type FiscalData struct {
	Entries   []*model.RevenueEntry    `json:"entries"`
	Total     decimal.Decimal          `json:"total"`
	Platforms []analytics.PlatformStats `json:"platforms"`
	Threshold *model.ThresholdStatus   `json:"threshold"`
}

func fiscal(doc *Document, entries, all []*model.RevenueEntry, settings *model.Settings, period Period) {
	total := storage.Sum(entries)
	platforms := analytics.Platforms(entries)

	// Threshold status is always measured on the calendar year the period
	// ends in.
	year := period.To[:4]
	yearTotal := decimal.Zero
	for _, e := range all {
		if len(e.Date) >= 4 && e.Date[:4] == year {
			yearTotal = yearTotal.Add(e.Amount)
		}
	}
	threshold := &model.ThresholdStatus{
		CurrentRevenue:    yearTotal,
		Threshold:         settings.PivaThreshold,
		Remaining:         model.NonNegative(settings.PivaThreshold.Sub(yearTotal)),
		Percentage:        model.Percentage(yearTotal, settings.PivaThreshold),
		NeedsRegistration: yearTotal.GreaterThanOrEqual(settings.PivaThreshold),
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Date, e.Platform, Amount(e.Amount), e.VideoTitle, e.Notes}
	}
	doc.Tables = append(doc.Tables, Table{
		Title:   "Payments",
		Columns: []string{"Date", "Platform", "Amount", "Video", "Notes"},
		Rows:    rows,
	}, platformTable(platforms))

	doc.KPIs = []KPI{
		{Label: "Total revenue", Value: Money(total, doc.Currency)},
		{Label: "Payments", Value: strconv.Itoa(len(entries))},
		{Label: year + " revenue", Value: Money(yearTotal, doc.Currency)},
		{Label: "Threshold", Value: fmt.Sprintf("%s (%.1f%%)", Money(threshold.Threshold, doc.Currency), threshold.Percentage)},
	}
	if threshold.NeedsRegistration {
		doc.Highlights = append(doc.Highlights, fmt.Sprintf("The %s registration threshold has been reached.", year))
	} else {
		doc.Highlights = append(doc.Highlights, fmt.Sprintf("%s left before the %s registration threshold.", Money(threshold.Remaining, doc.Currency), year))
	}

	doc.Data = FiscalData{Entries: entries, Total: total, Platforms: platforms, Threshold: threshold}
}

// PerformanceData is the data payload of the content performance report.
type PerformanceData struct {
	Videos       []*model.VideoEntry       `json:"videos"`
	Categories   []analytics.CategoryStats `json:"categories"`
	BestCategory string                    `json:"bestCategory,omitempty"`
}

// performance lists the videos published by the end of the period with
// their metrics relinked against the period's revenue only.
func (g *Generator) performance(doc *Document, entries []*model.RevenueEntry, period Period) {
	var videos []*model.VideoEntry
	for _, v := range g.videos.List() {
		if v.PublishDate <= period.To {
			videos = append(videos, v)
		}
	}
	storage.LinkRevenue(videos, entries, g.videos.Matcher())
	slices.SortStableFunc(videos, func(a, b *model.VideoEntry) int {
		return b.TotalRevenue.Cmp(a.TotalRevenue)
	})
	if videos == nil {
		videos = []*model.VideoEntry{}
	}

	rows := make([][]string, len(videos))
	for i, v := range videos {
		rows[i] = []string{
			v.Title,
			v.Category,
			strconv.FormatInt(v.Views, 10),
			percent(v.CTR),
			percent(v.Retention),
			Amount(v.TotalRevenue),
			strconv.FormatFloat(model.RevenuePerMille(v.TotalRevenue, v.Views), 'f', 2, 64),
			percent(v.ROI),
			strconv.Itoa(v.PerformanceScore),
			string(v.PerformanceLevel),
		}
	}
	categories := analytics.Categories(videos)
	doc.Tables = append(doc.Tables, Table{
		Title:   "Videos",
		Columns: []string{"Title", "Category", "Views", "CTR", "Retention", "Revenue", "RPM", "ROI", "Score", "Level"},
		Rows:    rows,
	}, categoryTable(categories))

	total := storage.Sum(entries)
	doc.KPIs = []KPI{
		{Label: "Videos", Value: strconv.Itoa(len(videos))},
		{Label: "Revenue", Value: Money(total, doc.Currency)},
	}

	data := PerformanceData{Videos: videos, Categories: categories}
	if name, revenue, ok := BestCategory(videos); ok {
		data.BestCategory = name
		doc.KPIs = append(doc.KPIs, KPI{Label: "Best category", Value: name})
		doc.Highlights = append(doc.Highlights, fmt.Sprintf("%s is the best category with %s.", name, Money(revenue, doc.Currency)))
	}
	doc.Data = data
}

// ExecutiveData is the data payload of the executive summary.
type ExecutiveData struct {
	Overview       analytics.Overview        `json:"overview"`
	Platforms      []analytics.PlatformStats `json:"platforms"`
	Benchmarks     analytics.Benchmarks      `json:"benchmarks"`
	BestCategory   string                    `json:"bestCategory,omitempty"`
	Recommendation Recommendation            `json:"recommendation"`
}

func (g *Generator) executive(doc *Document, entries []*model.RevenueEntry, settings *model.Settings, now time.Time, period Period) {
	var videos []*model.VideoEntry
	for _, v := range g.videos.List() {
		if v.PublishDate <= period.To {
			videos = append(videos, v)
		}
	}
	storage.LinkRevenue(videos, entries, g.videos.Matcher())

	snap := analytics.Compute(analytics.Input{
		Revenue:  entries,
		Videos:   videos,
		Settings: settings,
		Now:      now,
	})
	rec := PlatformRecommendation(snap.Platforms)

	doc.KPIs = []KPI{
		{Label: "Total revenue", Value: Money(snap.Overview.TotalRevenue, doc.Currency)},
		{Label: "Payments", Value: strconv.Itoa(snap.Overview.TotalEntries)},
		{Label: "Videos", Value: strconv.Itoa(snap.Overview.TotalVideos)},
		{Label: "Views", Value: strconv.FormatInt(snap.Overview.TotalViews, 10)},
		{Label: "Revenue per video", Value: Money(snap.Overview.AverageRevenuePerVideo, doc.Currency)},
		{Label: "RPM", Value: strconv.FormatFloat(snap.Overview.RevenuePerMille, 'f', 2, 64)},
	}

	data := ExecutiveData{
		Overview:       snap.Overview,
		Platforms:      snap.Platforms,
		Benchmarks:     snap.Benchmarks,
		Recommendation: rec,
	}
	if name, _, ok := BestCategory(videos); ok {
		data.BestCategory = name
		doc.KPIs = append(doc.KPIs, KPI{Label: "Best category", Value: name})
	}
	doc.Highlights = append(doc.Highlights, rec.Message)
	doc.Insights = snap.Insights
	doc.Tables = append(doc.Tables, platformTable(snap.Platforms), categoryTable(snap.Categories))
	doc.Data = data
}

func platformTable(platforms []analytics.PlatformStats) Table {
	rows := make([][]string, len(platforms))
	for i, p := range platforms {
		rows[i] = []string{p.Platform, strconv.Itoa(p.Entries), Amount(p.TotalRevenue), percent(p.Percentage)}
	}
	return Table{
		Title:   "Platforms",
		Columns: []string{"Platform", "Payments", "Revenue", "Share"},
		Rows:    rows,
	}
}

func categoryTable(categories []analytics.CategoryStats) Table {
	rows := make([][]string, len(categories))
	for i, c := range categories {
		rows[i] = []string{c.Category, strconv.Itoa(c.Count), Amount(c.TotalRevenue), Amount(c.AverageRevenue), strconv.Itoa(c.Score), string(c.Level)}
	}
	return Table{
		Title:   "Categories",
		Columns: []string{"Category", "Videos", "Revenue", "Average", "Score", "Level"},
		Rows:    rows,
	}
}

// Amount formats d with two decimals.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Money formats d with two decimals and the currency code.
func Money(d decimal.Decimal, currency string) string {
	return d.StringFixed(2) + " " + currency
}

func percent(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64) + "%"
}
