package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/analytics"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/report"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red
	colorSuccess   = lipgloss.Color("#10B981") // Green
	colorInfo      = lipgloss.Color("#3B82F6") // Blue

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleInfo = lipgloss.NewStyle().
			Foreground(colorInfo)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleAmount = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	styleToday = lipgloss.NewStyle().
			Bold(true).
			Reverse(true)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
	Currency string
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f, Currency: model.DefaultCurrency}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Money formats an amount with the currency code.
func (c *CLIFormatter) Money(d decimal.Decimal) string {
	return c.render(styleAmount, report.Money(d, c.Currency))
}

// ProgressBar creates a simple progress bar.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return bar
}

// Table helpers for CLI output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-lipgloss.Width(s)) + "  "
	}

	// Print headers
	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(pad(h, widths[i]))
	}
	c.Println(c.render(styleBold, strings.TrimRight(headerLine.String(), " ")))

	// Print separator
	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	// Print rows
	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}

// PrintReportTable prints a report table under its title.
func (c *CLIFormatter) PrintReportTable(t report.Table) {
	c.Println(c.render(styleBold, t.Title))
	if len(t.Rows) == 0 {
		c.Muted("  No records.")
		return
	}
	rows := make([]TableRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = TableRow{Columns: r}
	}
	c.PrintTable(t.Columns, rows)
}

// =============================================================================
// Revenue
// =============================================================================

// PrintRevenueAdded prints a stored revenue entry.
func (c *CLIFormatter) PrintRevenueAdded(verb string, e *model.RevenueEntry) {
	c.Success(fmt.Sprintf("%s %s from %s on %s", verb, report.Money(e.Amount, c.Currency), e.Platform, e.Date))
	if e.VideoTitle != "" {
		c.Printf("  Video: %s\n", e.VideoTitle)
	}
	c.Muted("  id: " + e.ID)
}

// PrintRevenueList prints revenue entries newest first.
func (c *CLIFormatter) PrintRevenueList(entries []*model.RevenueEntry) {
	if len(entries) == 0 {
		c.Muted("No revenue entries.")
		c.Muted("Use 'creatorbook revenue add' to record a payment.")
		return
	}
	rows := make([]TableRow, len(entries))
	total := decimal.Zero
	for i, e := range entries {
		rows[i] = TableRow{Columns: []string{e.Date, e.Platform, report.Amount(e.Amount), e.VideoTitle, shortID(e.ID)}}
		total = total.Add(e.Amount)
	}
	c.PrintTable([]string{"Date", "Platform", "Amount", "Video", "ID"}, rows)
	c.Printf("\n%d entries, total %s\n", len(entries), c.Money(total))
}

// PrintRevenueStats prints revenue aggregates.
func (c *CLIFormatter) PrintRevenueStats(s *model.RevenueStats) {
	c.Title("Revenue")
	c.Printf("  This month: %s (%d entries)\n", c.Money(s.CurrentMonthRevenue), s.CurrentMonthEntries)
	c.Printf("  This year:  %s (%d entries)\n", c.Money(s.CurrentYearRevenue), s.CurrentYearEntries)
	c.Printf("  All time:   %s (%d entries)\n", c.Money(s.TotalRevenue), s.TotalEntries)
	c.Printf("  Average:    %s per entry\n", c.Money(s.AveragePerEntry))

	if len(s.ByPlatform) == 0 {
		return
	}
	names := make([]string, 0, len(s.ByPlatform))
	for name := range s.ByPlatform {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.ByPlatform[names[i]], s.ByPlatform[names[j]]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return names[i] < names[j]
	})
	rows := make([]TableRow, len(names))
	for i, name := range names {
		pt := s.ByPlatform[name]
		rows[i] = TableRow{Columns: []string{name, strconv.Itoa(pt.Entries), report.Amount(pt.Revenue)}}
	}
	c.Println()
	c.PrintTable([]string{"Platform", "Entries", "Revenue"}, rows)
}

// PrintThreshold prints the year-to-date registration threshold status.
func (c *CLIFormatter) PrintThreshold(s *model.ThresholdStatus) {
	c.Title("Registration threshold")
	c.Printf("  %s %.1f%%\n", ProgressBar(s.Percentage, 30), s.Percentage)
	c.Printf("  %s of %s\n", c.Money(s.CurrentRevenue), c.Money(s.Threshold))
	if s.NeedsRegistration {
		c.Warning("Threshold reached: registration is required.")
		return
	}
	c.Printf("  %s remaining\n", c.Money(s.Remaining))
}

// PrintGoal prints month-to-date progress toward the monthly target.
func (c *CLIFormatter) PrintGoal(g *model.GoalStatus) {
	c.Title("Monthly goal")
	c.Printf("  %s %.1f%%\n", ProgressBar(g.Percentage, 30), g.Percentage)
	c.Printf("  %s of %s\n", c.Money(g.CurrentRevenue), c.Money(g.Target))
	if g.Achieved {
		c.Success("Monthly goal achieved.")
		return
	}
	c.Printf("  %s to go\n", c.Money(g.Remaining))
}

// PrintTrends prints monthly revenue as a bar chart.
func (c *CLIFormatter) PrintTrends(trends []model.MonthlyRevenue) {
	if len(trends) == 0 {
		c.Muted("No revenue yet.")
		return
	}
	peak := decimal.Zero
	for _, t := range trends {
		if t.Revenue.GreaterThan(peak) {
			peak = t.Revenue
		}
	}
	for _, t := range trends {
		c.Printf("  %s %s %s\n", t.Month, ProgressBar(model.Percentage(t.Revenue, peak), 30), report.Amount(t.Revenue))
	}
}

// =============================================================================
// Videos
// =============================================================================

// PrintVideo prints one video with its metrics.
func (c *CLIFormatter) PrintVideo(v *model.VideoEntry) {
	c.Title(v.Title)
	c.Printf("  Category:  %s\n", v.Category)
	c.Printf("  Published: %s\n", v.PublishDate)
	c.Printf("  Views:     %d   CTR %.1f%%   Retention %.1f%%\n", v.Views, v.CTR, v.Retention)
	c.Printf("  Revenue:   %s from %d entries (RPM %.2f)\n", c.Money(v.TotalRevenue), v.RevenueEntries, v.RevenuePerView)
	if v.ProductionCost.IsPositive() {
		c.Printf("  Cost:      %s (ROI %.1f%%)\n", c.Money(v.ProductionCost), v.ROI)
	}
	c.Printf("  Score:     %d (%s)\n", v.PerformanceScore, c.Level(v.PerformanceLevel))
	c.Muted("  id: " + v.ID)
}

// Level colors a performance level.
func (c *CLIFormatter) Level(l model.PerformanceLevel) string {
	switch l {
	case model.LevelHigh:
		return c.render(styleSuccess, string(l))
	case model.LevelMedium:
		return c.render(styleWarning, string(l))
	default:
		return c.render(styleError, string(l))
	}
}

// PrintVideoList prints videos as a table.
func (c *CLIFormatter) PrintVideoList(videos []*model.VideoEntry) {
	if len(videos) == 0 {
		c.Muted("No videos.")
		c.Muted("Use 'creatorbook video add' to track a video.")
		return
	}
	rows := make([]TableRow, len(videos))
	for i, v := range videos {
		rows[i] = TableRow{Columns: []string{
			v.PublishDate,
			v.Title,
			v.Category,
			strconv.FormatInt(v.Views, 10),
			report.Amount(v.TotalRevenue),
			strconv.Itoa(v.PerformanceScore),
			c.Level(v.PerformanceLevel),
			shortID(v.ID),
		}}
	}
	c.PrintTable([]string{"Published", "Title", "Category", "Views", "Revenue", "Score", "Level", "ID"}, rows)
}

// =============================================================================
// Analytics
// =============================================================================

// PrintInsights prints insights with their tone.
func (c *CLIFormatter) PrintInsights(insights []analytics.Insight) {
	if len(insights) == 0 {
		c.Muted("No insights yet. Add revenue and videos to get recommendations.")
		return
	}
	for _, in := range insights {
		var marker string
		switch in.Type {
		case analytics.InsightSuccess:
			marker = c.render(styleSuccess, "✓")
		case analytics.InsightWarning:
			marker = c.render(styleWarning, "⚠")
		default:
			marker = c.render(styleInfo, "•")
		}
		c.Printf("%s %s\n", marker, c.render(styleBold, in.Title))
		c.Printf("  %s\n", in.Message)
		if in.Action != "" {
			c.Muted("  → " + in.Action)
		}
	}
}

// PrintSnapshot prints the overview, benchmarks and insights of a snapshot.
func (c *CLIFormatter) PrintSnapshot(s *analytics.Snapshot) {
	c.PrintOverview(s.Overview)
	c.Println()
	c.PrintBenchmarks(s.Benchmarks)
	c.Println()
	c.PrintCategories(s.Categories)
	c.Println()
	c.Title("Insights")
	c.PrintInsights(s.Insights)
}

// PrintOverview prints headline totals.
func (c *CLIFormatter) PrintOverview(o analytics.Overview) {
	c.Title("Overview")
	c.Printf("  Revenue:   %s from %d entries\n", c.Money(o.TotalRevenue), o.TotalEntries)
	c.Printf("  Videos:    %d (%d views)\n", o.TotalVideos, o.TotalViews)
	c.Printf("  Per video: %s   RPM %.2f\n", c.Money(o.AverageRevenuePerVideo), o.RevenuePerMille)
	c.Printf("  Avg CTR %.1f%%   Avg retention %.1f%%\n", o.AverageCTR, o.AverageRetention)
}

// PrintBenchmarks prints goal and threshold progress.
func (c *CLIFormatter) PrintBenchmarks(b analytics.Benchmarks) {
	c.Title("Benchmarks")
	c.Printf("  Month  %s %.1f%% of %s\n", ProgressBar(b.MonthlyProgress, 20), b.MonthlyProgress, c.Money(b.MonthlyTarget))
	c.Printf("  Year   %s %.1f%% of %s\n", ProgressBar(b.ThresholdProgress, 20), b.ThresholdProgress, c.Money(b.Threshold))
	c.Printf("  Projected year end: %s\n", c.Money(b.ProjectedYearEnd))
	if b.ProjectionExceedsThreshold && !b.ThresholdReached {
		c.Warning("At this pace the registration threshold will be reached this year.")
	}
}

// PrintCategories prints category rollups.
func (c *CLIFormatter) PrintCategories(categories []analytics.CategoryStats) {
	c.Title("Categories")
	if len(categories) == 0 {
		c.Muted("  No videos yet.")
		return
	}
	rows := make([]TableRow, len(categories))
	for i, cat := range categories {
		rows[i] = TableRow{Columns: []string{
			cat.Category,
			strconv.Itoa(cat.Count),
			report.Amount(cat.TotalRevenue),
			strconv.Itoa(cat.Score),
			c.Level(cat.Level),
		}}
	}
	c.PrintTable([]string{"Category", "Videos", "Revenue", "Score", "Level"}, rows)
}

// PrintPlatforms prints per-platform revenue shares.
func (c *CLIFormatter) PrintPlatforms(platforms []analytics.PlatformStats) {
	c.Title("Platforms")
	if len(platforms) == 0 {
		c.Muted("  No revenue yet.")
		return
	}
	rows := make([]TableRow, len(platforms))
	for i, p := range platforms {
		rows[i] = TableRow{Columns: []string{
			p.Platform,
			strconv.Itoa(p.Entries),
			report.Amount(p.TotalRevenue),
			report.Amount(p.AverageRevenue),
			fmt.Sprintf("%.1f%%", p.Percentage),
		}}
	}
	c.PrintTable([]string{"Platform", "Entries", "Revenue", "Average", "Share"}, rows)
}

// PrintPerformance prints the score tiers and the best and worst videos.
func (c *CLIFormatter) PrintPerformance(p analytics.Performance) {
	c.Title("Performance")
	c.Printf("  %s %d videos, %s\n", c.Level(model.LevelHigh), p.High.Count, report.Amount(p.High.Revenue))
	c.Printf("  %s %d videos, %s\n", c.Level(model.LevelMedium), p.Medium.Count, report.Amount(p.Medium.Revenue))
	c.Printf("  %s %d videos, %s\n", c.Level(model.LevelLow), p.Low.Count, report.Amount(p.Low.Revenue))
	summaries := func(title string, vs []analytics.VideoSummary) {
		if len(vs) == 0 {
			return
		}
		rows := make([]TableRow, len(vs))
		for i, v := range vs {
			rows[i] = TableRow{Columns: []string{v.Title, v.Category, report.Amount(v.Revenue), strconv.Itoa(v.Score)}}
		}
		c.Println()
		c.Println(c.render(styleBold, title))
		c.PrintTable([]string{"Title", "Category", "Revenue", "Score"}, rows)
	}
	summaries("Top", p.Top)
	summaries("Bottom", p.Bottom)
}

// PrintTrendPoints prints monthly revenue with month-over-month growth.
func (c *CLIFormatter) PrintTrendPoints(points []analytics.TrendPoint) {
	c.Title("Trends")
	if len(points) == 0 {
		c.Muted("  No revenue yet.")
		return
	}
	rows := make([]TableRow, len(points))
	for i, p := range points {
		rows[i] = TableRow{Columns: []string{p.Month, report.Amount(p.Revenue), fmt.Sprintf("%+.1f%%", p.Growth)}}
	}
	c.PrintTable([]string{"Month", "Revenue", "Growth"}, rows)
}

// PrintROI prints the return on production cost.
func (c *CLIFormatter) PrintROI(r analytics.ROIAnalysis) {
	c.Title("Return on investment")
	if len(r.Videos) == 0 {
		c.Muted("  No videos with a production cost.")
		return
	}
	c.Printf("  Invested %s, returned %s\n", c.Money(r.TotalInvestment), c.Money(r.TotalReturns))
	c.Printf("  Overall ROI %.1f%%   Average ROI %.1f%%\n", r.OverallROI, r.AverageROI)
	list := func(title string, vs []analytics.VideoROI) {
		if len(vs) == 0 {
			return
		}
		rows := make([]TableRow, len(vs))
		for i, v := range vs {
			rows[i] = TableRow{Columns: []string{v.Title, report.Amount(v.Cost), report.Amount(v.Revenue), report.Amount(v.Profit), fmt.Sprintf("%.1f%%", v.ROI)}}
		}
		c.Println()
		c.Println(c.render(styleBold, title))
		c.PrintTable([]string{"Title", "Cost", "Revenue", "Profit", "ROI"}, rows)
	}
	list("Best", r.Best)
	list("Worst", r.Worst)
}

// PrintSection prints a value returned by the analytics engine.
func (c *CLIFormatter) PrintSection(v any) {
	switch s := v.(type) {
	case *analytics.Snapshot:
		c.PrintSnapshot(s)
	case analytics.Overview:
		c.PrintOverview(s)
	case []analytics.CategoryStats:
		c.PrintCategories(s)
	case []analytics.PlatformStats:
		c.PrintPlatforms(s)
	case analytics.Performance:
		c.PrintPerformance(s)
	case []analytics.TrendPoint:
		c.PrintTrendPoints(s)
	case analytics.ROIAnalysis:
		c.PrintROI(s)
	case analytics.Benchmarks:
		c.PrintBenchmarks(s)
	case []analytics.Insight:
		c.Title("Insights")
		c.PrintInsights(s)
	default:
		c.Printf("%v\n", v)
	}
}

// =============================================================================
// Reports and schedules
// =============================================================================

// PrintReportResult prints where a report was written.
func (c *CLIFormatter) PrintReportResult(res *report.Result) {
	doc := res.Document
	c.Success(fmt.Sprintf("%s for %s written", doc.Title, doc.Period.Label))
	c.Printf("  File: %s (%d bytes)\n", res.Path, res.Bytes)
	if res.Emailed != "" {
		c.Printf("  Emailed to %s\n", res.Emailed)
	}
	for _, k := range doc.KPIs {
		c.Printf("  %s: %s\n", k.Label, k.Value)
	}
}

// PrintTemplates lists the report templates.
func (c *CLIFormatter) PrintTemplates(templates []report.Template) {
	for _, t := range templates {
		c.Printf("%s  %s\n", c.render(styleBold, string(t.Type)), t.Title)
		c.Muted("  " + t.Description)
	}
}

// PrintSchedules prints scheduled reports.
func (c *CLIFormatter) PrintSchedules(reports []*model.ScheduledReport) {
	if len(reports) == 0 {
		c.Muted("No scheduled reports.")
		c.Muted("Use 'creatorbook schedule add' to create one.")
		return
	}
	rows := make([]TableRow, len(reports))
	for i, s := range reports {
		state := c.render(styleSuccess, "enabled")
		if !s.Enabled {
			state = c.render(styleMuted, "disabled")
		}
		rows[i] = TableRow{Columns: []string{
			s.Name,
			string(s.Type),
			string(s.Frequency),
			string(s.Format),
			s.Email,
			FormatOptionalTime(s.LastRun),
			FormatTime(s.NextRun()),
			state,
			shortID(s.ID),
		}}
	}
	c.PrintTable([]string{"Name", "Type", "Frequency", "Format", "Email", "Last run", "Next run", "State", "ID"}, rows)
}

// =============================================================================
// Calendar
// =============================================================================

// PrintEvents prints calendar events.
func (c *CLIFormatter) PrintEvents(events []*model.CalendarEvent) {
	if len(events) == 0 {
		c.Muted("No events.")
		return
	}
	rows := make([]TableRow, len(events))
	for i, e := range events {
		rows[i] = TableRow{Columns: []string{e.Date, e.Time, string(e.Type), e.Title, string(e.Status), shortID(e.ID)}}
	}
	c.PrintTable([]string{"Date", "Time", "Type", "Title", "Status", "ID"}, rows)
}

// PrintMonthGrid prints a month as a Monday-first calendar. Days with
// events are marked with an asterisk.
func (c *CLIFormatter) PrintMonthGrid(g *model.MonthGrid) {
	c.Title(fmt.Sprintf("%d-%02d", g.Year, g.Month))
	c.Println(c.render(styleMuted, " Mo  Tu  We  Th  Fr  Sa  Su"))
	for _, week := range g.Weeks {
		var line strings.Builder
		for _, day := range week {
			cell := fmt.Sprintf("%3d", day.Day)
			mark := " "
			if len(day.Events) > 0 {
				mark = "*"
			}
			switch {
			case !day.InMonth:
				cell = c.render(styleMuted, cell)
			case day.Today:
				cell = c.render(styleToday, cell)
			}
			line.WriteString(cell + mark)
		}
		c.Println(strings.TrimRight(line.String(), " "))
	}
}

// =============================================================================
// Settings and storage
// =============================================================================

// PrintSettings prints the business settings.
func (c *CLIFormatter) PrintSettings(s *model.Settings) {
	c.Title("Settings")
	c.Printf("  Registration threshold: %s\n", report.Money(s.PivaThreshold, s.CurrencyCode()))
	c.Printf("  Monthly target:         %s\n", report.Money(s.MonthlyTarget, s.CurrencyCode()))
	c.Printf("  Currency:               %s\n", s.CurrencyCode())
	c.Printf("  Categories:             %s\n", strings.Join(s.Categories(), ", "))
}

// PrintSize prints the storage footprint.
func (c *CLIFormatter) PrintSize(bytes int64, keys int) {
	c.Printf("%s across %d keys\n", FormatBytes(bytes), keys)
}

// FormatBytes formats a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
