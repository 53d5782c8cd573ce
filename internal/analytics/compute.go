package analytics

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/storage"
)

const (
	// TrendMonths is how many month buckets the trend series keeps.
	TrendMonths = 12
	// RankingSize is the length of every top/bottom list.
	RankingSize = 5
)

// Category score tiers, applied to per-category averages.
var (
	CategoryRevenueTiers   = []model.Tier{{Min: 10, Points: 40}, {Min: 5, Points: 25}, {Min: 2, Points: 15}}
	CategoryCTRTiers       = model.CTRTiers
	CategoryRetentionTiers = model.RetentionTiers
)

// Compute derives a full snapshot from in.
func Compute(in Input) *Snapshot {
	settings := in.Settings
	if settings == nil {
		settings = model.DefaultSettings()
	}

	s := &Snapshot{
		GeneratedAt: in.Now,
		Overview:    overview(in.Revenue, in.Videos),
		Categories:  Categories(in.Videos),
		Platforms:   Platforms(in.Revenue),
		Performance: performance(in.Videos),
		Trends:      Trends(in.Revenue),
		ROI:         roi(in.Videos),
		Benchmarks:  benchmarks(in.Revenue, settings, in),
	}
	s.Insights = Evaluate(s, DefaultRules)
	return s
}

func overview(revenue []*model.RevenueEntry, videos []*model.VideoEntry) Overview {
	o := Overview{
		TotalRevenue:           storage.Sum(revenue),
		TotalEntries:           len(revenue),
		TotalVideos:            len(videos),
		AverageRevenuePerVideo: decimal.Zero,
	}

	var ctr, retention float64
	for _, v := range videos {
		o.TotalViews += v.Views
		ctr += v.CTR
		retention += v.Retention
	}
	if n := len(videos); n > 0 {
		o.AverageRevenuePerVideo = o.TotalRevenue.Div(decimal.NewFromInt(int64(n))).Round(2)
		o.AverageCTR = ctr / float64(n)
		o.AverageRetention = retention / float64(n)
	}
	o.RevenuePerMille = model.RevenuePerMille(o.TotalRevenue, o.TotalViews)
	return o
}

// CategoryScore scores a category from its averages, capped at 100.
func CategoryScore(avgRevenue, avgCTR, avgRetention float64) int {
	return model.ClampScore(
		model.TierPoints(avgRevenue, CategoryRevenueTiers) +
			model.TierPoints(avgCTR, CategoryCTRTiers) +
			model.TierPoints(avgRetention, CategoryRetentionTiers))
}

// Categories groups videos by category, ordered by total revenue then name.
// Categories without videos are absent.
func Categories(videos []*model.VideoEntry) []CategoryStats {
	type acc struct {
		count                 int
		revenue               decimal.Decimal
		ctr, retention, views float64
	}
	groups := map[string]*acc{}
	for _, v := range videos {
		g, ok := groups[v.Category]
		if !ok {
			g = &acc{revenue: decimal.Zero}
			groups[v.Category] = g
		}
		g.count++
		g.revenue = g.revenue.Add(v.TotalRevenue)
		g.ctr += v.CTR
		g.retention += v.Retention
		g.views += float64(v.Views)
	}

	out := make([]CategoryStats, 0, len(groups))
	for name, g := range groups {
		n := float64(g.count)
		avgRevenue := g.revenue.Div(decimal.NewFromInt(int64(g.count)))
		c := CategoryStats{
			Category:         name,
			Count:            g.count,
			TotalRevenue:     g.revenue,
			AverageRevenue:   avgRevenue.Round(2),
			AverageCTR:       g.ctr / n,
			AverageRetention: g.retention / n,
			AverageViews:     g.views / n,
		}
		c.Score = CategoryScore(avgRevenue.InexactFloat64(), c.AverageCTR, c.AverageRetention)
		c.Level = model.LevelForScore(c.Score)
		out = append(out, c)
	}

	slices.SortFunc(out, func(a, b CategoryStats) int {
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// Platforms groups revenue entries by platform, ordered by total revenue then
// name.
func Platforms(revenue []*model.RevenueEntry) []PlatformStats {
	grand := storage.Sum(revenue)
	index := map[string]int{}
	var out []PlatformStats
	for _, e := range revenue {
		i, ok := index[e.Platform]
		if !ok {
			i = len(out)
			index[e.Platform] = i
			out = append(out, PlatformStats{Platform: e.Platform, TotalRevenue: decimal.Zero})
		}
		out[i].TotalRevenue = out[i].TotalRevenue.Add(e.Amount)
		out[i].Entries++
	}

	for i := range out {
		p := &out[i]
		p.AverageRevenue = p.TotalRevenue.Div(decimal.NewFromInt(int64(p.Entries))).Round(2)
		p.Percentage = model.Percentage(p.TotalRevenue, grand)
	}

	slices.SortFunc(out, func(a, b PlatformStats) int {
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Platform, b.Platform)
	})
	if out == nil {
		out = []PlatformStats{}
	}
	return out
}

func summarize(v *model.VideoEntry) VideoSummary {
	return VideoSummary{
		ID:       v.ID,
		Title:    v.Title,
		Category: v.Category,
		Revenue:  v.TotalRevenue,
		Views:    v.Views,
		Score:    v.PerformanceScore,
		Level:    v.PerformanceLevel,
	}
}

func performance(videos []*model.VideoEntry) Performance {
	p := Performance{
		High:   Tier{Revenue: decimal.Zero},
		Medium: Tier{Revenue: decimal.Zero},
		Low:    Tier{Revenue: decimal.Zero},
	}
	for _, v := range videos {
		var t *Tier
		switch model.LevelForScore(v.PerformanceScore) {
		case model.LevelHigh:
			t = &p.High
		case model.LevelMedium:
			t = &p.Medium
		default:
			t = &p.Low
		}
		t.Count++
		t.Revenue = t.Revenue.Add(v.TotalRevenue)
	}

	ranked := slices.Clone(videos)
	slices.SortStableFunc(ranked, func(a, b *model.VideoEntry) int {
		return b.TotalRevenue.Cmp(a.TotalRevenue)
	})
	p.Top = make([]VideoSummary, 0, RankingSize)
	for _, v := range ranked[:min(RankingSize, len(ranked))] {
		p.Top = append(p.Top, summarize(v))
	}
	p.Bottom = make([]VideoSummary, 0, RankingSize)
	for i := len(ranked) - 1; i >= 0 && len(p.Bottom) < RankingSize; i-- {
		p.Bottom = append(p.Bottom, summarize(ranked[i]))
	}
	return p
}

// Trends buckets revenue by month, keeps the latest TrendMonths buckets and
// computes month-over-month growth. The first bucket, and any bucket after a
// zero month, has growth 0.
func Trends(revenue []*model.RevenueEntry) []TrendPoint {
	buckets := storage.MonthlyBuckets(revenue, TrendMonths)
	out := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		out[i] = TrendPoint{Month: b.Month, Revenue: b.Revenue}
		if i > 0 {
			out[i].Growth = Growth(buckets[i-1].Revenue, b.Revenue)
		}
	}
	return out
}

// Growth returns (curr-prev)/prev*100, or 0 when prev is not positive.
func Growth(prev, curr decimal.Decimal) float64 {
	if !prev.IsPositive() {
		return 0
	}
	return curr.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

func roi(videos []*model.VideoEntry) ROIAnalysis {
	a := ROIAnalysis{
		Videos:          []VideoROI{},
		TotalInvestment: decimal.Zero,
		TotalReturns:    decimal.Zero,
	}
	var sum float64
	for _, v := range videos {
		if !v.ProductionCost.IsPositive() {
			continue
		}
		r := VideoROI{
			ID:      v.ID,
			Title:   v.Title,
			Cost:    v.ProductionCost,
			Revenue: v.TotalRevenue,
			Profit:  v.TotalRevenue.Sub(v.ProductionCost),
			ROI:     model.ROI(v.TotalRevenue, v.ProductionCost),
		}
		a.Videos = append(a.Videos, r)
		a.TotalInvestment = a.TotalInvestment.Add(r.Cost)
		a.TotalReturns = a.TotalReturns.Add(r.Revenue)
		sum += r.ROI
	}

	slices.SortStableFunc(a.Videos, func(x, y VideoROI) int { return cmp.Compare(y.ROI, x.ROI) })

	n := len(a.Videos)
	a.Best = slices.Clone(a.Videos[:min(RankingSize, n)])
	a.Worst = make([]VideoROI, 0, RankingSize)
	for i := n - 1; i >= 0 && len(a.Worst) < RankingSize; i-- {
		a.Worst = append(a.Worst, a.Videos[i])
	}
	if n > 0 {
		a.AverageROI = sum / float64(n)
		a.OverallROI = Growth(a.TotalInvestment, a.TotalReturns)
	}
	return a
}

func benchmarks(revenue []*model.RevenueEntry, settings *model.Settings, in Input) Benchmarks {
	month := in.Now.Format("2006-01")
	year := strconv.Itoa(in.Now.Year())

	monthRevenue, yearRevenue := decimal.Zero, decimal.Zero
	for _, e := range revenue {
		if e.Month() == month {
			monthRevenue = monthRevenue.Add(e.Amount)
		}
		if len(e.Date) >= 4 && e.Date[:4] == year {
			yearRevenue = yearRevenue.Add(e.Amount)
		}
	}

	projected := monthRevenue.Mul(decimal.NewFromInt(12))
	return Benchmarks{
		CurrentMonthRevenue:        monthRevenue,
		MonthlyTarget:              settings.MonthlyTarget,
		MonthlyProgress:            model.Percentage(monthRevenue, settings.MonthlyTarget),
		MonthlyTargetMet:           monthRevenue.GreaterThanOrEqual(settings.MonthlyTarget),
		YearRevenue:                yearRevenue,
		Threshold:                  settings.PivaThreshold,
		ThresholdProgress:          model.Percentage(yearRevenue, settings.PivaThreshold),
		ThresholdReached:           yearRevenue.GreaterThanOrEqual(settings.PivaThreshold),
		ProjectedYearEnd:           projected,
		ProjectionExceedsThreshold: projected.GreaterThanOrEqual(settings.PivaThreshold),
	}
}
