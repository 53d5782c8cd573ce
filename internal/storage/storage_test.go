package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/linking"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

var fixedNow = time.Date(2024, 2, 25, 12, 0, 0, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

// Helper to create an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	db       *DB
	settings *SettingsRepo
	metadata *MetadataRepo
	revenue  *RevenueRepo
	videos   *VideoRepo
	schedule *ScheduleRepo
	calendar *CalendarRepo
	backup   *BackupService
}

func setupRepos(t *testing.T) *fixture {
	db := setupTestDB(t)
	v := validate.MustNew(nil)
	f := &fixture{db: db}
	f.settings = NewSettingsRepo(db, v, nil)
	v.SetCategoryFunc(f.settings.HasCategory)
	f.metadata = NewMetadataRepo(db)
	f.metadata.Now = fixedClock
	f.revenue = NewRevenueRepo(db, f.settings, v)
	f.revenue.Now = fixedClock
	f.videos = NewVideoRepo(db, f.revenue, v)
	f.videos.Now = fixedClock
	f.schedule = NewScheduleRepo(db, v)
	f.schedule.Now = fixedClock
	f.calendar = NewCalendarRepo(db, v)
	f.calendar.Now = fixedClock
	f.backup = NewBackupService(db, f.metadata, f.settings)
	f.backup.Now = fixedClock
	return f
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func addRevenue(t *testing.T, f *fixture, date, platform, amt, title string) *model.RevenueEntry {
	t.Helper()
	e, err := f.revenue.Add(model.NewRevenueEntry(date, platform, amount(amt), title, ""))
	require.NoError(t, err)
	return e
}

// =============================================================================
// DB Tests
// =============================================================================

func TestOpenClose(t *testing.T) {
	t.Run("in_memory", func(t *testing.T) {
		db, err := Open(Options{InMemory: true})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		assert.NotNil(t, db.Badger())
		assert.NoError(t, db.Close())
	})

	t.Run("empty_path_uses_in_memory", func(t *testing.T) {
		db, err := Open(Options{Path: ""})
		require.NoError(t, err)
		db.Close()
	})

	t.Run("on_disk", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		db, err := Open(Options{Path: dir})
		require.NoError(t, err)
		require.NoError(t, db.Save(model.KeySettings, model.DefaultSettings()))
		require.NoError(t, db.Close())

		db, err = Open(Options{Path: dir})
		require.NoError(t, err)
		defer db.Close()
		s := &model.Settings{}
		assert.True(t, db.Load(model.KeySettings, s))
		assert.Equal(t, dir, db.Path())
	})
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	assert.Contains(t, path, "creatorbook")
	assert.Contains(t, path, "db")
}

// =============================================================================
// Provider Tests
// =============================================================================

func TestProviderLoad(t *testing.T) {
	db := setupTestDB(t)

	t.Run("missing_key_keeps_default", func(t *testing.T) {
		s := model.DefaultSettings()
		assert.False(t, db.Load(model.KeySettings, s))
		assert.True(t, s.PivaThreshold.Equal(model.DefaultPivaThreshold))
	})

	t.Run("corrupt_payload_keeps_default", func(t *testing.T) {
		require.NoError(t, db.SetBytes(model.KeyMetadata, []byte(`{"version": 1, "createdAt": `)))
		meta := &model.Metadata{Version: "default"}
		assert.False(t, db.Load(model.KeyMetadata, meta))
		assert.Equal(t, "default", meta.Version)
	})

	t.Run("wrong_shape_keeps_default", func(t *testing.T) {
		require.NoError(t, db.SetBytes(model.KeyRevenue, []byte(`{"not":"a list"}`)))
		entries := []*model.RevenueEntry{{ID: "keep"}}
		assert.False(t, db.Load(model.KeyRevenue, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "keep", entries[0].ID)
	})

	t.Run("non_pointer_destination", func(t *testing.T) {
		require.NoError(t, db.Save(model.KeyCalendarEvents, []string{}))
		assert.False(t, db.Load(model.KeyCalendarEvents, []string{}))
	})
}

func TestProviderSave(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, db.Save(model.KeySettings, &model.Settings{
			PivaThreshold: amount("6000"),
			MonthlyTarget: amount("200"),
		}))
		s := &model.Settings{}
		require.True(t, db.Load(model.KeySettings, s))
		assert.Equal(t, "6000", s.PivaThreshold.String())
	})

	t.Run("unserializable_value", func(t *testing.T) {
		db := setupTestDB(t)
		err := db.Save(model.KeySettings, make(chan int))
		require.Error(t, err)
		assert.True(t, errors.IsStorageError(err))
	})

	t.Run("quota_keeps_previous_value", func(t *testing.T) {
		db, err := Open(Options{InMemory: true, MaxValueSize: 64})
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Save(model.KeyMetadata, map[string]string{"v": "1"}))
		err = db.Save(model.KeyMetadata, map[string]string{"v": strings.Repeat("x", 100)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrQuotaExceeded))
		assert.True(t, errors.Is(err, errors.ErrStorage))

		var got map[string]string
		require.True(t, db.Load(model.KeyMetadata, &got))
		assert.Equal(t, "1", got["v"])
	})

	t.Run("last_write_wins", func(t *testing.T) {
		// Two writers holding stale copies overwrite each other wholesale.
		db := setupTestDB(t)
		require.NoError(t, db.Save(model.KeyRevenue, []*model.RevenueEntry{{ID: "a"}}))
		require.NoError(t, db.Save(model.KeyRevenue, []*model.RevenueEntry{{ID: "b"}}))

		var got []*model.RevenueEntry
		require.True(t, db.Load(model.KeyRevenue, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})
}

func TestProviderRemoveAndSize(t *testing.T) {
	db := setupTestDB(t)

	size, err := db.SizeEstimate()
	require.NoError(t, err)
	assert.Zero(t, size)

	settings := model.DefaultSettings()
	require.NoError(t, db.Save(model.KeySettings, settings))
	require.NoError(t, db.Save(model.KeyCalendarEvents, []string{"x"}))

	a, _ := json.Marshal(settings)
	b, _ := json.Marshal([]string{"x"})
	size, err = db.SizeEstimate()
	require.NoError(t, err)
	assert.Equal(t, int64(len(a)+len(b)), size)

	require.NoError(t, db.Remove(model.KeyCalendarEvents))
	size, err = db.SizeEstimate()
	require.NoError(t, err)
	assert.Equal(t, int64(len(a)), size)

	assert.Equal(t, model.AllKeys, db.Keys())
}

func TestVersionBumpsOnWrite(t *testing.T) {
	db := setupTestDB(t)
	v0 := db.Version()
	require.NoError(t, db.Save(model.KeySettings, model.DefaultSettings()))
	v1 := db.Version()
	assert.Greater(t, v1, v0)

	db.Load(model.KeySettings, &model.Settings{})
	assert.Equal(t, v1, db.Version())

	require.NoError(t, db.Remove(model.KeySettings))
	assert.Greater(t, db.Version(), v1)
}

// =============================================================================
// RevenueRepo Tests
// =============================================================================

func TestRevenueAddGet(t *testing.T) {
	f := setupRepos(t)

	in := model.NewRevenueEntry("2024-01-15", "Spotify", amount("50.00"), "Rainy Study", "January payout")
	added, err := f.revenue.Add(in)
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, fixedNow, added.CreatedAt)

	got, err := f.revenue.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, "2024-01-15", got.Date)
	assert.Equal(t, "Spotify", got.Platform)
	assert.True(t, got.Amount.Equal(amount("50")))
	assert.Equal(t, "Rainy Study", got.VideoTitle)
	assert.Equal(t, "January payout", got.Notes)
	assert.True(t, got.CreatedAt.Equal(fixedNow))

	// The caller's value is not modified.
	assert.Empty(t, in.ID)
}

func TestRevenueAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry *model.RevenueEntry
		field string
	}{
		{"negative_amount", model.NewRevenueEntry("2024-01-15", "Spotify", amount("-1"), "", ""), "amount"},
		{"missing_date", model.NewRevenueEntry("", "Spotify", amount("1"), "", ""), "date"},
		{"impossible_date", model.NewRevenueEntry("2024-02-30", "Spotify", amount("1"), "", ""), "date"},
		{"missing_platform", model.NewRevenueEntry("2024-01-15", "  ", amount("1"), "", ""), "platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRepos(t)
			_, err := f.revenue.Add(tt.entry)
			require.Error(t, err)
			ve, ok := errors.AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Field())
			assert.Empty(t, f.revenue.List())
		})
	}
}

func TestRevenueUpdate(t *testing.T) {
	f := setupRepos(t)
	e := addRevenue(t, f, "2024-01-15", "Spotify", "50", "")

	later := fixedNow.Add(time.Hour)
	f.revenue.Now = func() time.Time { return later }

	newAmount := amount("75.5")
	platform := "Bandcamp"
	updated, err := f.revenue.Update(e.ID, model.RevenuePatch{Amount: &newAmount, Platform: &platform})
	require.NoError(t, err)
	assert.Equal(t, e.ID, updated.ID)
	assert.True(t, updated.CreatedAt.Equal(e.CreatedAt))
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.Equal(t, "Bandcamp", updated.Platform)
	assert.Equal(t, "2024-01-15", updated.Date)

	t.Run("invalid_leaves_entry", func(t *testing.T) {
		bad := amount("-3")
		_, err := f.revenue.Update(e.ID, model.RevenuePatch{Amount: &bad})
		assert.True(t, errors.IsValidationError(err))
		got, _ := f.revenue.Get(e.ID)
		assert.True(t, got.Amount.Equal(newAmount))
	})

	t.Run("missing_id", func(t *testing.T) {
		_, err := f.revenue.Update("nope", model.RevenuePatch{})
		assert.True(t, errors.Is(err, errors.ErrRevenueNotFound))
	})
}

func TestRevenueDelete(t *testing.T) {
	f := setupRepos(t)
	a := addRevenue(t, f, "2024-01-15", "Spotify", "50", "")
	addRevenue(t, f, "2024-01-16", "Spotify", "10", "")

	ok, err := f.revenue.Delete("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.revenue.List(), 2)

	ok, err = f.revenue.Delete(a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.revenue.List(), 1)

	_, err = f.revenue.Get(a.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestRevenueStatsScenario(t *testing.T) {
	f := setupRepos(t)
	addRevenue(t, f, "2024-01-15", "Spotify", "50.00", "")
	addRevenue(t, f, "2024-02-10", "YouTube AdSense", "30.00", "")
	addRevenue(t, f, "2024-02-20", "Spotify", "20.00", "")

	stats := f.revenue.Stats()
	assert.Equal(t, len(f.revenue.List()), stats.TotalEntries)
	assert.Len(t, stats.ByPlatform, 2)
	assert.True(t, stats.ByPlatform["Spotify"].Revenue.Equal(amount("70")))
	assert.Equal(t, 2, stats.ByPlatform["Spotify"].Entries)
	assert.True(t, stats.ByPlatform["YouTube AdSense"].Revenue.Equal(amount("30")))
	assert.Equal(t, 1, stats.ByPlatform["YouTube AdSense"].Entries)

	assert.True(t, stats.CurrentYearRevenue.Equal(amount("100")))
	assert.Equal(t, 3, stats.CurrentYearEntries)
	assert.True(t, stats.CurrentMonthRevenue.Equal(amount("50")))
	assert.Equal(t, 2, stats.CurrentMonthEntries)
	assert.True(t, stats.AveragePerEntry.Equal(amount("33.33")))

	sum := decimal.Zero
	for _, pt := range stats.ByPlatform {
		sum = sum.Add(pt.Revenue)
	}
	assert.True(t, sum.Equal(stats.TotalRevenue))
}

func TestRevenueCurrentPeriods(t *testing.T) {
	f := setupRepos(t)
	addRevenue(t, f, "2023-12-31", "Spotify", "5", "")
	addRevenue(t, f, "2024-01-01", "Spotify", "6", "")
	addRevenue(t, f, "2024-02-01", "Spotify", "7", "")

	assert.Len(t, f.revenue.CurrentMonth(), 1)
	assert.Len(t, f.revenue.CurrentYear(), 2)

	inRange, err := f.revenue.ListByDateRange("2023-12-31", "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	_, err = f.revenue.ListByDateRange("yesterday-ish", "2024-01-01")
	assert.True(t, errors.IsValidationError(err))
}

func TestRevenueThresholdStatus(t *testing.T) {
	t.Run("below_threshold", func(t *testing.T) {
		f := setupRepos(t)
		addRevenue(t, f, "2024-01-10", "Spotify", "4500", "")

		status := f.revenue.CheckThresholdStatus()
		assert.True(t, status.CurrentRevenue.Equal(amount("4500")))
		assert.True(t, status.Threshold.Equal(amount("5000")))
		assert.True(t, status.Remaining.Equal(amount("500")))
		assert.InDelta(t, 90.0, status.Percentage, 1e-9)
		assert.False(t, status.NeedsRegistration)
	})

	t.Run("exactly_at_threshold", func(t *testing.T) {
		f := setupRepos(t)
		addRevenue(t, f, "2024-01-10", "Spotify", "5000", "")

		status := f.revenue.CheckThresholdStatus()
		assert.True(t, status.NeedsRegistration)
		assert.True(t, status.Remaining.IsZero())
	})

	t.Run("last_year_ignored", func(t *testing.T) {
		f := setupRepos(t)
		addRevenue(t, f, "2023-06-10", "Spotify", "9000", "")
		assert.False(t, f.revenue.CheckThresholdStatus().NeedsRegistration)
	})
}

func TestRevenueMonthlyGoal(t *testing.T) {
	f := setupRepos(t)
	addRevenue(t, f, "2024-02-01", "Spotify", "100", "")

	goal := f.revenue.CheckMonthlyGoal()
	assert.True(t, goal.Target.Equal(amount("165")))
	assert.True(t, goal.Remaining.Equal(amount("65")))
	assert.False(t, goal.Achieved)

	addRevenue(t, f, "2024-02-02", "Spotify", "65", "")
	goal = f.revenue.CheckMonthlyGoal()
	assert.True(t, goal.Achieved)
	assert.InDelta(t, 100.0, goal.Percentage, 1e-9)
}

func TestRevenueMonthlyTrends(t *testing.T) {
	f := setupRepos(t)
	addRevenue(t, f, "2024-02-20", "Spotify", "20", "")
	addRevenue(t, f, "2023-11-02", "Spotify", "5", "")
	addRevenue(t, f, "2024-01-15", "Spotify", "50", "")
	addRevenue(t, f, "2024-02-10", "YouTube AdSense", "30", "")

	trends := f.revenue.MonthlyTrends(0)
	require.Len(t, trends, 3)
	assert.Equal(t, "2023-11", trends[0].Month)
	assert.Equal(t, "2024-01", trends[1].Month)
	assert.Equal(t, "2024-02", trends[2].Month)
	assert.True(t, trends[2].Revenue.Equal(amount("50")))

	last := f.revenue.MonthlyTrends(2)
	require.Len(t, last, 2)
	assert.Equal(t, "2024-01", last[0].Month)
}

func TestRevenueExportImportRoundTrip(t *testing.T) {
	f := setupRepos(t)
	addRevenue(t, f, "2024-01-15", "Spotify", "50.00", "Rainy Study")
	addRevenue(t, f, "2024-02-10", "YouTube AdSense", "30.25", "")

	exported, err := f.revenue.Export()
	require.NoError(t, err)

	other := setupRepos(t)
	n, err := other.revenue.Import(exported, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	original, _ := json.Marshal(f.revenue.List())
	restored, _ := json.Marshal(other.revenue.List())
	assert.JSONEq(t, string(original), string(restored))

	t.Run("merge_skips_existing_ids", func(t *testing.T) {
		n, err := other.revenue.Import(exported, false)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Len(t, other.revenue.List(), 2)
	})

	t.Run("invalid_entry_aborts", func(t *testing.T) {
		_, err := other.revenue.Import([]byte(`[{"date":"2024-01-01","platform":"x","amount":"-5"}]`), true)
		assert.True(t, errors.IsValidationError(err))
		assert.Len(t, other.revenue.List(), 2)
	})

	t.Run("not_json", func(t *testing.T) {
		_, err := other.revenue.Import([]byte(`nope`), true)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestSortByDateDesc(t *testing.T) {
	entries := []*model.RevenueEntry{
		{ID: "a", Date: "2024-01-01"},
		{ID: "b", Date: "2024-03-01"},
		{ID: "c", Date: "2024-01-01"},
	}
	sorted := SortByDateDesc(entries)
	assert.Equal(t, "b", sorted[0].ID)
	assert.Equal(t, "a", sorted[1].ID)
	assert.Equal(t, "c", sorted[2].ID)
	assert.Equal(t, "a", entries[0].ID)
}

// =============================================================================
// VideoRepo Tests
// =============================================================================

func newVideo(title string) *model.VideoEntry {
	return &model.VideoEntry{
		Title:          title,
		Category:       model.CategoryStudy,
		PublishDate:    "2024-01-05",
		Views:          10000,
		CTR:            4.5,
		Retention:      65,
		ProductionCost: amount("20"),
	}
}

func TestVideoMetricsScenario(t *testing.T) {
	f := setupRepos(t)
	v, err := f.videos.Add(newVideo("Rainy Study"))
	require.NoError(t, err)
	addRevenue(t, f, "2024-01-20", "YouTube AdSense", "60", "rainy study")

	got, err := f.videos.Get(v.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalRevenue.Equal(amount("60")))
	assert.Equal(t, 1, got.RevenueEntries)
	assert.InDelta(t, 6.0, got.RevenuePerView, 1e-9)
	assert.InDelta(t, 300.0, got.ROI, 1e-9)
	assert.Equal(t, 100, got.PerformanceScore)
	assert.Equal(t, model.LevelHigh, got.PerformanceLevel)
}

func TestVideoMetricsEdgeCases(t *testing.T) {
	f := setupRepos(t)
	in := newVideo("Zero Views")
	in.Views = 0
	in.ProductionCost = decimal.Zero
	_, err := f.videos.Add(in)
	require.NoError(t, err)
	addRevenue(t, f, "2024-01-20", "Spotify", "10", "Zero Views")

	videos := f.videos.List()
	require.Len(t, videos, 1)
	assert.Zero(t, videos[0].RevenuePerView)
	assert.Zero(t, videos[0].ROI)
	assert.Equal(t, 60, videos[0].PerformanceScore)
	assert.Equal(t, model.LevelMedium, videos[0].PerformanceLevel)
}

func TestVideoOverlappingTitlesDoubleCount(t *testing.T) {
	f := setupRepos(t)
	_, err := f.videos.Add(newVideo("Study Music"))
	require.NoError(t, err)
	_, err = f.videos.Add(newVideo("Study Music Vol. 2"))
	require.NoError(t, err)
	addRevenue(t, f, "2024-01-20", "Spotify", "10", "Study Music Vol. 2")

	for _, v := range f.videos.List() {
		assert.True(t, v.TotalRevenue.Equal(amount("10")), v.Title)
	}

	t.Run("exact_matcher", func(t *testing.T) {
		f.videos.SetMatcher(linking.Exact)
		for _, v := range f.videos.List() {
			if v.Title == "Study Music" {
				assert.True(t, v.TotalRevenue.IsZero())
			} else {
				assert.True(t, v.TotalRevenue.Equal(amount("10")))
			}
		}
	})
}

func TestVideoValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.VideoEntry)
		field string
	}{
		{"empty_title", func(v *model.VideoEntry) { v.Title = " " }, "title"},
		{"unknown_category", func(v *model.VideoEntry) { v.Category = "Polka" }, "category"},
		{"ctr_above_100", func(v *model.VideoEntry) { v.CTR = 101 }, "ctr"},
		{"negative_retention", func(v *model.VideoEntry) { v.Retention = -1 }, "retention"},
		{"negative_cost", func(v *model.VideoEntry) { v.ProductionCost = amount("-1") }, "productionCost"},
		{"bad_publish_date", func(v *model.VideoEntry) { v.PublishDate = "05/01/2024" }, "publishDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRepos(t)
			v := newVideo("Focus")
			tt.edit(v)
			_, err := f.videos.Add(v)
			ve, ok := errors.AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.field, ve.Field())
			assert.Empty(t, f.videos.List())
		})
	}
}

func TestVideoExtraCategory(t *testing.T) {
	f := setupRepos(t)
	s := f.settings.Get()
	s.ExtraCategories = []string{"Lofi"}
	require.NoError(t, f.settings.Update(s))

	v := newVideo("Late Night")
	v.Category = "lofi"
	_, err := f.videos.Add(v)
	assert.NoError(t, err)
}

func TestVideoUpdateDelete(t *testing.T) {
	f := setupRepos(t)
	v, err := f.videos.Add(newVideo("Focus"))
	require.NoError(t, err)

	views := int64(20000)
	updated, err := f.videos.Update(v.ID, model.VideoPatch{Views: &views})
	require.NoError(t, err)
	assert.Equal(t, v.ID, updated.ID)
	assert.Equal(t, int64(20000), updated.Views)

	_, err = f.videos.Update("missing", model.VideoPatch{})
	assert.True(t, errors.Is(err, errors.ErrVideoNotFound))

	ok, err := f.videos.Delete("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.videos.Delete(v.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.videos.List())
}

func TestVideoRecomputeMetricsPersists(t *testing.T) {
	f := setupRepos(t)
	_, err := f.videos.Add(newVideo("Rainy Study"))
	require.NoError(t, err)
	addRevenue(t, f, "2024-01-20", "Spotify", "60", "Rainy Study")

	videos, err := f.videos.RecomputeMetrics(f.revenue.List())
	require.NoError(t, err)
	require.Len(t, videos, 1)

	var stored []*model.VideoEntry
	require.True(t, f.db.Load(model.KeyVideos, &stored))
	assert.True(t, stored[0].TotalRevenue.Equal(amount("60")))
	assert.Equal(t, model.LevelHigh, stored[0].PerformanceLevel)
}

func TestVideoStoredMetricsNotTrusted(t *testing.T) {
	f := setupRepos(t)
	v := newVideo("Tampered")
	v.ID = "x"
	v.PerformanceScore = 5
	v.PerformanceLevel = model.LevelLow
	v.TotalRevenue = amount("999")
	require.NoError(t, f.db.Save(model.KeyVideos, []*model.VideoEntry{v}))

	got := f.videos.List()
	require.Len(t, got, 1)
	assert.True(t, got[0].TotalRevenue.IsZero())
	assert.Equal(t, 60, got[0].PerformanceScore)
}

// =============================================================================
// Settings / Metadata Tests
// =============================================================================

func TestSettingsRepo(t *testing.T) {
	f := setupRepos(t)

	s := f.settings.Get()
	assert.True(t, s.PivaThreshold.Equal(amount("5000")))
	assert.True(t, s.MonthlyTarget.Equal(amount("165")))

	s.PivaThreshold = amount("8000")
	require.NoError(t, f.settings.Update(s))
	assert.True(t, f.settings.Get().PivaThreshold.Equal(amount("8000")))

	s.PivaThreshold = decimal.Zero
	assert.True(t, errors.IsValidationError(f.settings.Update(s)))

	reset, err := f.settings.Reset()
	require.NoError(t, err)
	assert.True(t, reset.PivaThreshold.Equal(amount("5000")))
	assert.True(t, f.settings.Get().PivaThreshold.Equal(amount("5000")))
}

func TestSettingsCustomDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db, validate.MustNew(nil), &model.Settings{
		PivaThreshold: amount("85000"),
		MonthlyTarget: amount("500"),
		Currency:      "USD",
	})
	assert.Equal(t, "USD", repo.Get().CurrencyCode())
}

func TestSettingsPartialDocumentKeepsDefaults(t *testing.T) {
	f := setupRepos(t)
	require.NoError(t, f.db.SetBytes(model.KeySettings, []byte(`{"pivaThreshold":"8000"}`)))

	s := f.settings.Get()
	assert.True(t, s.PivaThreshold.Equal(amount("8000")))
	assert.True(t, s.MonthlyTarget.Equal(amount("165")), "missing field keeps its default")
	assert.Equal(t, "EUR", s.CurrencyCode())

	require.NoError(t, f.db.SetBytes(model.KeySettings, []byte(`{"pivaThreshold":`)))
	s = f.settings.Get()
	assert.True(t, s.PivaThreshold.Equal(amount("5000")), "corrupt document falls back to defaults")
}

func TestMetadataRepo(t *testing.T) {
	f := setupRepos(t)

	meta, err := f.metadata.Get()
	require.NoError(t, err)
	assert.Equal(t, model.SchemaVersion, meta.Version)
	assert.True(t, meta.CreatedAt.Equal(fixedNow))
	assert.Nil(t, meta.LastBackup)

	meta, err = f.metadata.MarkBackup()
	require.NoError(t, err)
	require.NotNil(t, meta.LastBackup)
	assert.True(t, meta.LastBackup.Equal(fixedNow))
}

// =============================================================================
// ScheduleRepo Tests
// =============================================================================

func TestScheduleRepo(t *testing.T) {
	f := setupRepos(t)

	s, err := f.schedule.Add(&model.ScheduledReport{
		Name:      "Monthly fiscal",
		Type:      model.ReportCommercialista,
		Frequency: model.FrequencyMonthly,
		Format:    model.FormatCSV,
		Enabled:   true,
	})
	require.NoError(t, err)
	assert.True(t, s.CreatedAt.Equal(fixedNow))
	assert.Nil(t, s.LastRun)

	assert.Empty(t, f.schedule.Due(fixedNow))
	nextMonth := time.Date(2024, 3, 25, 12, 0, 0, 0, time.Local)
	assert.Len(t, f.schedule.Due(nextMonth), 1)

	_, err = f.schedule.MarkRun(s.ID, nextMonth)
	require.NoError(t, err)
	assert.Empty(t, f.schedule.Due(nextMonth))
	got, _ := f.schedule.Get(s.ID)
	assert.True(t, got.NextRun().Equal(time.Date(2024, 4, 25, 12, 0, 0, 0, time.Local)))

	_, err = f.schedule.SetEnabled(s.ID, false)
	require.NoError(t, err)
	assert.Empty(t, f.schedule.Due(nextMonth.AddDate(1, 0, 0)))

	_, err = f.schedule.SetEnabled("missing", true)
	assert.True(t, errors.Is(err, errors.ErrScheduleNotFound))

	ok, err := f.schedule.Delete(s.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.schedule.List())
}

func TestScheduleValidation(t *testing.T) {
	f := setupRepos(t)
	_, err := f.schedule.Add(&model.ScheduledReport{
		Name:      "x",
		Type:      model.ReportExecutive,
		Frequency: "hourly",
		Format:    model.FormatPDF,
	})
	ve, ok := errors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "frequency", ve.Field())

	_, err = f.schedule.Add(&model.ScheduledReport{
		Name:      "x",
		Type:      model.ReportExecutive,
		Frequency: model.FrequencyDaily,
		Format:    model.FormatPDF,
		Email:     "not-an-address",
	})
	assert.True(t, errors.IsValidationError(err))
}

// =============================================================================
// CalendarRepo Tests
// =============================================================================

func TestCalendarRepo(t *testing.T) {
	f := setupRepos(t)

	add := func(title, date, tm string) *model.CalendarEvent {
		e, err := f.calendar.Add(&model.CalendarEvent{Title: title, Type: model.EventVideo, Date: date, Time: tm})
		require.NoError(t, err)
		return e
	}
	late := add("Upload", "2024-02-27", "18:00")
	add("Mixing", "2024-02-27", "09:00")
	add("Old", "2024-01-03", "")
	add("March", "2024-03-01", "")

	assert.Equal(t, model.StatusScheduled, late.Status)

	list := f.calendar.List()
	require.Len(t, list, 4)
	assert.Equal(t, "Old", list[0].Title)
	assert.Equal(t, "Mixing", list[1].Title)

	assert.Len(t, f.calendar.ListByMonth(2024, time.February), 2)

	upcoming := f.calendar.Upcoming(2)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "Mixing", upcoming[0].Title)

	_, err := f.calendar.SetStatus(late.ID, model.StatusCompleted)
	require.NoError(t, err)
	for _, e := range f.calendar.Upcoming(0) {
		assert.NotEqual(t, late.ID, e.ID)
	}

	_, err = f.calendar.Add(&model.CalendarEvent{Title: "x", Type: model.EventTask, Date: "2024-02-01", Time: "25:00"})
	assert.True(t, errors.IsValidationError(err))

	_, err = f.calendar.SetStatus("missing", model.StatusCancelled)
	assert.True(t, errors.Is(err, errors.ErrEventNotFound))

	ok, err := f.calendar.Delete(late.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMonthGrid(t *testing.T) {
	f := setupRepos(t)
	_, err := f.calendar.Add(&model.CalendarEvent{Title: "Upload", Type: model.EventVideo, Date: "2024-02-14"})
	require.NoError(t, err)

	grid := f.calendar.MonthGrid(2024, time.February)
	require.Len(t, grid.Weeks, 5)
	assert.Equal(t, "2024-01-29", grid.Weeks[0][0].Date)
	assert.False(t, grid.Weeks[0][0].InMonth)
	assert.Equal(t, "2024-02-01", grid.Weeks[0][3].Date)
	assert.True(t, grid.Weeks[0][3].InMonth)
	assert.Equal(t, "2024-03-03", grid.Weeks[4][6].Date)

	wed := grid.Weeks[2][2]
	assert.Equal(t, "2024-02-14", wed.Date)
	require.Len(t, wed.Events, 1)
	assert.True(t, grid.Weeks[3][6].Today)
}

func TestMonthGridEndsOnSunday(t *testing.T) {
	// March 2024 ends on a Sunday.
	grid := BuildMonthGrid(2024, time.March, "", nil)
	last := grid.Weeks[len(grid.Weeks)-1]
	assert.Equal(t, "2024-03-31", last[6].Date)
	assert.Len(t, grid.Weeks, 5)
}

// =============================================================================
// Backup Tests
// =============================================================================

func TestBackupRestore(t *testing.T) {
	f := setupRepos(t)
	addRevenue(t, f, "2024-01-15", "Spotify", "50", "")
	_, err := f.videos.Add(newVideo("Focus"))
	require.NoError(t, err)

	b, err := f.backup.Create()
	require.NoError(t, err)
	assert.Equal(t, model.SchemaVersion, b.Version)
	assert.Contains(t, b.Data, model.KeyRevenue)
	assert.Contains(t, b.Data, model.KeyMetadata)
	assert.NotContains(t, b.Data, model.KeyCalendarEvents)

	before, _ := json.Marshal(f.revenue.List())

	addRevenue(t, f, "2024-02-01", "Bandcamp", "9", "")
	_, err = f.calendar.Add(&model.CalendarEvent{Title: "x", Type: model.EventTask, Date: "2024-02-01"})
	require.NoError(t, err)

	require.NoError(t, f.backup.Restore(b))

	after, _ := json.Marshal(f.revenue.List())
	assert.JSONEq(t, string(before), string(after))
	assert.Empty(t, f.calendar.List(), "keys absent from the backup are cleared")

	meta, err := f.metadata.Get()
	require.NoError(t, err)
	require.NotNil(t, meta.LastRestore)
	require.NotNil(t, meta.LastBackup)
}

func TestRestoreIsAllOrNothing(t *testing.T) {
	f := setupRepos(t)
	addRevenue(t, f, "2024-01-15", "Spotify", "50", "")

	b := &Backup{
		Version: model.SchemaVersion,
		Data: map[string]json.RawMessage{
			model.KeyRevenue:  json.RawMessage(`[]`),
			model.KeySettings: json.RawMessage(`"not an object"`),
		},
	}
	err := f.backup.Restore(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidBackup))
	assert.Len(t, f.revenue.List(), 1)

	b.Data = map[string]json.RawMessage{"other_app_key": json.RawMessage(`{}`)}
	assert.True(t, errors.Is(f.backup.Restore(b), errors.ErrInvalidBackup))
	assert.True(t, errors.Is(f.backup.Restore(nil), errors.ErrInvalidBackup))
}

func TestRestoreRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		key  string
		doc  string
	}{
		{
			name: "negative_amount",
			key:  model.KeyRevenue,
			doc:  `[{"id":"x","date":"2024-01-01","platform":"Spotify","amount":"-5"}]`,
		},
		{
			name: "impossible_date",
			key:  model.KeyRevenue,
			doc:  `[{"id":"x","date":"2024-02-30","platform":"Spotify","amount":"5"}]`,
		},
		{
			name: "invalid_settings",
			key:  model.KeySettings,
			doc:  `{"pivaThreshold":"0"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRepos(t)
			addRevenue(t, f, "2024-01-15", "Spotify", "50", "")

			err := f.backup.Restore(&Backup{
				Version: model.SchemaVersion,
				Data:    map[string]json.RawMessage{tt.key: json.RawMessage(tt.doc)},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidBackup))
			assert.True(t, errors.IsValidationError(err))

			list := f.revenue.List()
			require.Len(t, list, 1)
			assert.True(t, list[0].Amount.Equal(amount("50")))
		})
	}
}

func TestBackupFile(t *testing.T) {
	f := setupRepos(t)
	addRevenue(t, f, "2024-01-15", "Spotify", "50", "")

	path := filepath.Join(t.TempDir(), "backups", FileName(fixedNow))
	_, err := f.backup.WriteFile(path)
	require.NoError(t, err)

	b, err := ReadFile(path)
	require.NoError(t, err)

	other := setupRepos(t)
	require.NoError(t, other.backup.Restore(b))
	assert.Len(t, other.revenue.List(), 1)
}

func TestParseBackup(t *testing.T) {
	_, err := ParseBackup([]byte(`{`))
	assert.True(t, errors.Is(err, errors.ErrInvalidBackup))

	_, err = ParseBackup([]byte(`{"version":"1"}`))
	assert.True(t, errors.Is(err, errors.ErrInvalidBackup))

	b, err := ParseBackup([]byte(`{"version":"1","exportedAt":"2024-02-25T12:00:00Z","data":{}}`))
	require.NoError(t, err)
	assert.Empty(t, b.Data)
}

// =============================================================================
// Recovery / Safety Tests
// =============================================================================

func TestCheckIntegrity(t *testing.T) {
	db := setupTestDB(t)
	assert.True(t, CheckIntegrity(db).Healthy)

	require.NoError(t, db.Save(model.KeySettings, model.DefaultSettings()))
	require.NoError(t, db.SetBytes(model.KeyVideos, []byte(`[{"title": 5}]`)))

	status := CheckIntegrity(db)
	assert.False(t, status.Healthy)
	assert.Equal(t, []string{model.KeyVideos}, status.Corrupted)
	assert.Equal(t, 2, status.Keys)

	assert.False(t, CheckIntegrity(nil).Healthy)
}

func TestIsDatabaseCorrupted(t *testing.T) {
	assert.False(t, IsDatabaseCorrupted(nil))
	assert.True(t, IsDatabaseCorrupted(errors.New("manifest has CHECKSUM mismatch")))
	assert.False(t, IsDatabaseCorrupted(errors.New("permission denied")))
}

func TestSafeWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	require.NoError(t, SafeWrite(path, []byte("one"), 0o600))
	require.NoError(t, SafeWrite(path, []byte("two"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}
