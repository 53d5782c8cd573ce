package report

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/manav03panchal/creatorbook/internal/analytics"
	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/linking"
	"github.com/manav03panchal/creatorbook/internal/mailer"
	mock_mailer "github.com/manav03panchal/creatorbook/internal/mocks/mailer"
	"github.com/manav03panchal/creatorbook/internal/model"
)

var now = time.Date(2024, 2, 25, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeRevenue []*model.RevenueEntry

func (f fakeRevenue) List() []*model.RevenueEntry {
	out := make([]*model.RevenueEntry, len(f))
	for i, e := range f {
		out[i] = e.Clone()
	}
	return out
}

type fakeVideos []*model.VideoEntry

func (f fakeVideos) List() []*model.VideoEntry {
	out := make([]*model.VideoEntry, len(f))
	for i, v := range f {
		out[i] = v.Clone()
	}
	return out
}

func (f fakeVideos) Matcher() linking.Matcher { return linking.Default }

type fakeSettings struct{ s *model.Settings }

func (f fakeSettings) Get() *model.Settings { return f.s }

type fakeSchedules struct {
	reports []*model.ScheduledReport
	runs    map[string]time.Time
}

func (f *fakeSchedules) Get(id string) (*model.ScheduledReport, error) {
	for _, s := range f.reports {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.NewNotFoundError(errors.ErrScheduleNotFound.Kind, id)
}

func (f *fakeSchedules) Due(at time.Time) []*model.ScheduledReport {
	var out []*model.ScheduledReport
	for _, s := range f.reports {
		if s.IsDue(at) {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeSchedules) MarkRun(id string, at time.Time) (*model.ScheduledReport, error) {
	s, err := f.Get(id)
	if err != nil {
		return nil, err
	}
	if f.runs == nil {
		f.runs = map[string]time.Time{}
	}
	f.runs[id] = at
	s.LastRun = &at
	return s, nil
}

func sampleRevenue() fakeRevenue {
	return fakeRevenue{
		{ID: "r1", Date: "2024-02-03", Platform: "Spotify", Amount: d("100"), VideoTitle: "Rainy Study Beats"},
		{ID: "r2", Date: "2024-02-10", Platform: "YouTube AdSense", Amount: d("50"), VideoTitle: "Rainy Study Beats"},
		{ID: "r3", Date: "2024-02-15", Platform: "Bandcamp", Amount: d("30"), VideoTitle: "Deep Sleep"},
		{ID: "r4", Date: "2024-01-20", Platform: "Spotify", Amount: d("200")},
		{ID: "r5", Date: "2023-12-01", Platform: "Spotify", Amount: d("999")},
	}
}

func sampleVideos() fakeVideos {
	return fakeVideos{
		{ID: "v1", Title: "Rainy Study Beats", Category: model.CategoryStudy, PublishDate: "2024-01-05", Views: 10000, CTR: 4.5, Retention: 65},
		{ID: "v2", Title: "Deep Sleep", Category: model.CategorySleep, PublishDate: "2024-02-01", Views: 5000, CTR: 2, Retention: 30},
		{ID: "v3", Title: "Future Focus", Category: model.CategoryWork, PublishDate: "2024-03-10", Views: 100},
	}
}

func newGenerator() *Generator {
	g := NewGenerator(sampleRevenue(), sampleVideos(), fakeSettings{model.DefaultSettings()})
	g.Now = clock
	return g
}

func currentMonth(t *testing.T) Period {
	t.Helper()
	p, err := ResolvePeriod(CurrentMonth, now, "", "")
	require.NoError(t, err)
	return p
}

// =============================================================================
// Period Tests
// =============================================================================

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		kind  PeriodKind
		from  string
		to    string
		label string
	}{
		{CurrentMonth, "2024-02-01", "2024-02-29", "February 2024"},
		{LastMonth, "2024-01-01", "2024-01-31", "January 2024"},
		{CurrentQuarter, "2024-01-01", "2024-03-31", "Q1 2024"},
		{LastQuarter, "2023-10-01", "2023-12-31", "Q4 2023"},
		{CurrentYear, "2024-01-01", "2024-12-31", "2024"},
		{LastYear, "2023-01-01", "2023-12-31", "2023"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p, err := ResolvePeriod(tt.kind, now, "", "")
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, tt.from, p.From)
			assert.Equal(t, tt.to, p.To)
			assert.Equal(t, tt.label, p.Label)
		})
	}

	t.Run("empty_is_current_month", func(t *testing.T) {
		p, err := ResolvePeriod("", now, "", "")
		require.NoError(t, err)
		assert.Equal(t, CurrentMonth, p.Kind)
	})

	t.Run("last_month_from_month_end", func(t *testing.T) {
		p, err := ResolvePeriod(LastMonth, time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC), "", "")
		require.NoError(t, err)
		assert.Equal(t, "2024-02-01", p.From)
		assert.Equal(t, "2024-02-29", p.To)
	})

	t.Run("custom", func(t *testing.T) {
		p, err := ResolvePeriod(Custom, now, "2024-01-10", "today")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-10", p.From)
		assert.Equal(t, "2024-02-25", p.To)
		assert.True(t, p.Contains("2024-02-25"))
		assert.False(t, p.Contains("2024-02-26"))
	})

	t.Run("custom_reversed", func(t *testing.T) {
		_, err := ResolvePeriod(Custom, now, "2024-02-10", "2024-01-10")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("custom_missing_bound", func(t *testing.T) {
		_, err := ResolvePeriod(Custom, now, "", "2024-01-10")
		ve, ok := errors.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "from", ve.Field())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ResolvePeriod("fortnight", now, "", "")
		assert.ErrorIs(t, err, errors.ErrInvalidPeriod)
	})
}

func TestParsePeriodKind(t *testing.T) {
	k, err := ParsePeriodKind(" Last_Quarter ")
	require.NoError(t, err)
	assert.Equal(t, LastQuarter, k)

	_, err = ParsePeriodKind("someday")
	assert.ErrorIs(t, err, errors.ErrInvalidPeriod)
}

func TestParseDay(t *testing.T) {
	t.Run("iso", func(t *testing.T) {
		day, err := ParseDay("date", "2024-01-31", now)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-31", day)
	})

	t.Run("today", func(t *testing.T) {
		day, err := ParseDay("date", "Today", now)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-25", day)
	})

	t.Run("yesterday", func(t *testing.T) {
		day, err := ParseDay("date", "yesterday", now)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-24", day)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseDay("date", "  ", now)
		assert.True(t, errors.IsValidationError(err))
	})
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestBestCategory(t *testing.T) {
	t.Run("highest_total", func(t *testing.T) {
		videos := []*model.VideoEntry{
			{Category: "Study", TotalRevenue: d("40")},
			{Category: "Sleep", TotalRevenue: d("50")},
			{Category: "Study", TotalRevenue: d("20")},
		}
		name, revenue, ok := BestCategory(videos)
		require.True(t, ok)
		assert.Equal(t, "Study", name)
		assert.True(t, revenue.Equal(d("60")))
	})

	t.Run("tie_keeps_first", func(t *testing.T) {
		videos := []*model.VideoEntry{
			{Category: "Sleep", TotalRevenue: d("10")},
			{Category: "Work", TotalRevenue: d("10")},
		}
		name, _, ok := BestCategory(videos)
		require.True(t, ok)
		assert.Equal(t, "Sleep", name)
	})

	t.Run("none", func(t *testing.T) {
		_, _, ok := BestCategory(nil)
		assert.False(t, ok)
	})
}

func TestPlatformRecommendation(t *testing.T) {
	platform := func(name string, revenue string, pct float64) analytics.PlatformStats {
		return analytics.PlatformStats{Platform: name, TotalRevenue: d(revenue), Percentage: pct}
	}

	tests := []struct {
		name      string
		platforms []analytics.PlatformStats
		want      string
	}{
		{"no_platforms", nil, RecommendDiversify},
		{"two_active_balanced", []analytics.PlatformStats{platform("Spotify", "50", 50), platform("Bandcamp", "50", 50)}, RecommendDiversify},
		{"two_active_concentrated", []analytics.PlatformStats{platform("Spotify", "90", 90), platform("Bandcamp", "10", 10)}, RecommendConcentrate},
		{"single_platform", []analytics.PlatformStats{platform("Spotify", "40", 100)}, RecommendConcentrate},
		{"zero_revenue_not_active", []analytics.PlatformStats{
			platform("Spotify", "50", 50), platform("Bandcamp", "50", 50), platform("Patreon", "0", 0),
		}, RecommendDiversify},
		{"concentrated", []analytics.PlatformStats{
			platform("Spotify", "80", 80), platform("Bandcamp", "10", 10), platform("Patreon", "10", 10),
		}, RecommendConcentrate},
		{"exactly_seventy_is_adequate", []analytics.PlatformStats{
			platform("Spotify", "70", 70), platform("Bandcamp", "20", 20), platform("Patreon", "10", 10),
		}, RecommendAdequate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := PlatformRecommendation(tt.platforms)
			assert.Equal(t, tt.want, rec.Level)
			assert.NotEmpty(t, rec.Message)
		})
	}
}

// =============================================================================
// Generator Tests
// =============================================================================

func TestGenerateFiscal(t *testing.T) {
	doc, err := newGenerator().Generate(model.ReportCommercialista, currentMonth(t))
	require.NoError(t, err)

	assert.Equal(t, "EUR", doc.Currency)
	assert.Equal(t, now, doc.GeneratedAt)

	rows := doc.Primary().Rows
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2024-02-15", "Bandcamp", "30.00", "Deep Sleep", ""}, rows[0])
	assert.Equal(t, "2024-02-03", rows[2][0])

	data, ok := doc.Data.(FiscalData)
	require.True(t, ok)
	assert.True(t, data.Total.Equal(d("180")))
	assert.Len(t, data.Platforms, 3)
	assert.True(t, data.Threshold.CurrentRevenue.Equal(d("380")))
	assert.False(t, data.Threshold.NeedsRegistration)
	assert.Contains(t, doc.Highlights[0], "4620.00 EUR left")
}

func TestGeneratePerformance(t *testing.T) {
	doc, err := newGenerator().Generate(model.ReportPerformance, currentMonth(t))
	require.NoError(t, err)

	data, ok := doc.Data.(PerformanceData)
	require.True(t, ok)
	require.Len(t, data.Videos, 2, "videos published after the period are left out")
	assert.Equal(t, "Rainy Study Beats", data.Videos[0].Title)
	assert.True(t, data.Videos[0].TotalRevenue.Equal(d("150")))
	assert.True(t, data.Videos[1].TotalRevenue.Equal(d("30")))
	assert.Equal(t, model.CategoryStudy, data.BestCategory)

	rows := doc.Primary().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "150.00", rows[0][5])
	assert.Equal(t, "15.00", rows[0][6])
}

func TestGeneratePerformanceUsesPeriodRevenue(t *testing.T) {
	p, err := ResolvePeriod(LastMonth, now, "", "")
	require.NoError(t, err)

	doc, err := newGenerator().Generate(model.ReportPerformance, p)
	require.NoError(t, err)

	data := doc.Data.(PerformanceData)
	require.Len(t, data.Videos, 1)
	assert.True(t, data.Videos[0].TotalRevenue.IsZero())
}

func TestGenerateExecutive(t *testing.T) {
	doc, err := newGenerator().Generate(model.ReportExecutive, currentMonth(t))
	require.NoError(t, err)

	data, ok := doc.Data.(ExecutiveData)
	require.True(t, ok)
	assert.True(t, data.Overview.TotalRevenue.Equal(d("180")))
	assert.Equal(t, RecommendAdequate, data.Recommendation.Level)
	assert.Equal(t, model.CategoryStudy, data.BestCategory)
	assert.Equal(t, "Total revenue", doc.KPIs[0].Label)
	assert.Equal(t, "180.00 EUR", doc.KPIs[0].Value)
	assert.Equal(t, "Platforms", doc.Primary().Title)
}

func TestGenerateUnknownType(t *testing.T) {
	_, err := newGenerator().Generate("quarterly-review", currentMonth(t))
	assert.ErrorIs(t, err, errors.ErrInvalidReportType)
}

// =============================================================================
// Encoder Tests
// =============================================================================

func fiscalDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := newGenerator().Generate(model.ReportCommercialista, currentMonth(t))
	require.NoError(t, err)
	return doc
}

func TestEncodeCSV(t *testing.T) {
	out, err := Encode(fiscalDoc(t), model.FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Platform,Amount,Video,Notes", lines[0])
	assert.Equal(t, "2024-02-15,Bandcamp,30.00,Deep Sleep,", lines[1])
}

func TestEncodeJSON(t *testing.T) {
	out, err := Encode(fiscalDoc(t), model.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"generatedAt": "2024-02-25T12:00:00Z"`)
	assert.Contains(t, string(out), `"type": "commercialista"`)
}

func TestEncodeHTML(t *testing.T) {
	doc := fiscalDoc(t)
	doc.Tables[0].Rows[0][4] = "<script>alert(1)</script>"

	out, err := Encode(doc, model.FormatHTML)
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<style>")
	assert.Contains(t, html, "<h1>Fiscal summary</h1>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(fiscalDoc(t))
	assert.Contains(t, md, "# Fiscal summary")
	assert.Contains(t, md, "| Date | Platform | Amount | Video | Notes |")
	assert.Contains(t, md, "| 2024-02-15 | Bandcamp | 30.00 | Deep Sleep |  |")
}

func TestEncodePDF(t *testing.T) {
	out, err := Encode(fiscalDoc(t), model.FormatPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestEncodeUnknownFormat(t *testing.T) {
	_, err := Encode(fiscalDoc(t), "docx")
	assert.ErrorIs(t, err, errors.ErrInvalidFormat)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "commercialista-2024-02-25.csv", FileName(fiscalDoc(t), model.FormatCSV))
}

// =============================================================================
// Runner Tests
// =============================================================================

func newRunner(t *testing.T, schedules *fakeSchedules, sender mailer.Sender) *Runner {
	t.Helper()
	r := NewRunner(newGenerator(), schedules, sender, t.TempDir())
	r.Now = clock
	return r
}

func monthlySchedule(email string) *model.ScheduledReport {
	return &model.ScheduledReport{
		ID:        "s1",
		Name:      "Monthly fiscal",
		Type:      model.ReportCommercialista,
		Frequency: model.FrequencyMonthly,
		Format:    model.FormatCSV,
		Email:     email,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Enabled:   true,
	}
}

func TestRunnerQuick(t *testing.T) {
	r := newRunner(t, &fakeSchedules{}, nil)

	res, err := r.Quick(context.Background(), model.ReportPerformance, currentMonth(t), model.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Dir(), "performance-2024-02-25.json"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, len(data))
}

func TestRunnerQuickCanceled(t *testing.T) {
	r := newRunner(t, &fakeSchedules{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Quick(ctx, model.ReportPerformance, currentMonth(t), model.FormatJSON)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchedulePeriod(t *testing.T) {
	assert.Equal(t, CurrentMonth, SchedulePeriod(model.FrequencyDaily))
	assert.Equal(t, CurrentMonth, SchedulePeriod(model.FrequencyWeekly))
	assert.Equal(t, LastMonth, SchedulePeriod(model.FrequencyMonthly))
	assert.Equal(t, LastQuarter, SchedulePeriod(model.FrequencyQuarterly))
	assert.Equal(t, LastYear, SchedulePeriod(model.FrequencyAnnual))
}

func TestRunScheduled(t *testing.T) {
	t.Run("mails_report", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mock_mailer.NewMockSender(ctrl)
		schedules := &fakeSchedules{reports: []*model.ScheduledReport{monthlySchedule("me@example.com")}}
		r := newRunner(t, schedules, sender)

		sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg mailer.Message) error {
			assert.Equal(t, "me@example.com", msg.To)
			assert.Equal(t, "Monthly fiscal: January 2024", msg.Subject)
			require.Len(t, msg.Attachments, 1)
			assert.Equal(t, "commercialista-2024-02-25.csv", msg.Attachments[0].Filename)
			assert.Equal(t, "text/csv", msg.Attachments[0].ContentType)
			assert.Contains(t, string(msg.Attachments[0].Content), "2024-01-20,Spotify,200.00")
			return nil
		})

		res, err := r.RunScheduled(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "me@example.com", res.Emailed)
		assert.Equal(t, "s1", res.Schedule)
		assert.Equal(t, now, schedules.runs["s1"])
		assert.Equal(t, "2024-01-01", res.Document.Period.From)
	})

	t.Run("mail_disabled_still_runs", func(t *testing.T) {
		schedules := &fakeSchedules{reports: []*model.ScheduledReport{monthlySchedule("me@example.com")}}
		r := newRunner(t, schedules, mailer.NopSender{})

		res, err := r.RunScheduled(context.Background(), "s1")
		require.NoError(t, err)
		assert.Empty(t, res.Emailed)
		assert.Contains(t, schedules.runs, "s1")
	})

	t.Run("mail_failure_keeps_run", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mock_mailer.NewMockSender(ctrl)
		schedules := &fakeSchedules{reports: []*model.ScheduledReport{monthlySchedule("me@example.com")}}
		r := newRunner(t, schedules, sender)

		boom := stderrors.New("boom")
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(boom)

		res, err := r.RunScheduled(context.Background(), "s1")
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, res)
		assert.FileExists(t, res.Path)
		assert.Contains(t, schedules.runs, "s1")
	})

	t.Run("no_email_no_send", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mock_mailer.NewMockSender(ctrl)
		schedules := &fakeSchedules{reports: []*model.ScheduledReport{monthlySchedule("")}}
		r := newRunner(t, schedules, sender)

		_, err := r.RunScheduled(context.Background(), "s1")
		require.NoError(t, err)
	})

	t.Run("unknown_id", func(t *testing.T) {
		r := newRunner(t, &fakeSchedules{}, nil)
		_, err := r.RunScheduled(context.Background(), "missing")
		assert.ErrorIs(t, err, errors.ErrScheduleNotFound)
	})
}

func TestRunDue(t *testing.T) {
	due := monthlySchedule("")
	disabled := monthlySchedule("")
	disabled.ID = "s2"
	disabled.Enabled = false
	notYet := monthlySchedule("")
	notYet.ID = "s3"
	notYet.Frequency = model.FrequencyAnnual

	schedules := &fakeSchedules{reports: []*model.ScheduledReport{due, disabled, notYet}}
	r := newRunner(t, schedules, nil)

	results, err := r.RunDue(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].Schedule)
	assert.Len(t, schedules.runs, 1)

	results, err = r.RunDue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results, "a report is not due again right after running")
}
