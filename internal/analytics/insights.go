package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rule inspects a snapshot and may produce one insight.
type Rule func(*Snapshot) (Insight, bool)

// DefaultRules are evaluated in this order; every matching rule contributes
// one insight and no rule suppresses another.
var DefaultRules = []Rule{
	BestCategoryRule,
	LowPerformersRule,
	ROIRule,
	GrowthRule,
	PlatformConcentrationRule,
}

// Thresholds used by the default rules.
const (
	StrongROI           = 200.0
	GrowthStrong        = 10.0
	GrowthDecline       = -5.0
	GrowthWindow        = 3
	PlatformConcentrate = 60.0
)

// Evaluate runs rules against s in order.
func Evaluate(s *Snapshot, rules []Rule) []Insight {
	out := []Insight{}
	for _, rule := range rules {
		if in, ok := rule(s); ok {
			out = append(out, in)
		}
	}
	return out
}

// BestCategoryRule highlights the category with the highest average revenue.
func BestCategoryRule(s *Snapshot) (Insight, bool) {
	if len(s.Categories) == 0 {
		return Insight{}, false
	}
	best := s.Categories[0]
	for _, c := range s.Categories[1:] {
		if c.AverageRevenue.GreaterThan(best.AverageRevenue) {
			best = c
		}
	}
	return Insight{
		Type:     InsightSuccess,
		Category: "content",
		Title:    "Best performing category",
		Message: fmt.Sprintf("%s videos earn %s on average across %d videos.",
			best.Category, money(best.AverageRevenue), best.Count),
		Action: fmt.Sprintf("Plan more %s content.", best.Category),
	}, true
}

// LowPerformersRule warns when low performers outnumber high performers.
func LowPerformersRule(s *Snapshot) (Insight, bool) {
	p := s.Performance
	if p.Low.Count <= p.High.Count {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightWarning,
		Category: "performance",
		Title:    "More low performers than high performers",
		Message:  fmt.Sprintf("%d videos score low against %d scoring high.", p.Low.Count, p.High.Count),
		Action:   "Review thumbnails and titles of the low performers to lift CTR.",
	}, true
}

// ROIRule celebrates an overall ROI above StrongROI percent.
func ROIRule(s *Snapshot) (Insight, bool) {
	if s.ROI.OverallROI <= StrongROI {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightSuccess,
		Category: "roi",
		Title:    "Excellent return on production",
		Message:  fmt.Sprintf("Overall ROI is %.0f%% on %s invested.", s.ROI.OverallROI, money(s.ROI.TotalInvestment)),
		Action:   "Consider increasing the production budget.",
	}, true
}

// GrowthRule reports the average growth of the last GrowthWindow months when
// it is strongly positive or negative.
func GrowthRule(s *Snapshot) (Insight, bool) {
	avg, ok := RecentGrowth(s.Trends, GrowthWindow)
	if !ok {
		return Insight{}, false
	}
	switch {
	case avg > GrowthStrong:
		return Insight{
			Type:     InsightSuccess,
			Category: "growth",
			Title:    "Revenue is growing",
			Message:  fmt.Sprintf("Revenue grew %.1f%% per month on average over the last %d months.", avg, GrowthWindow),
			Action:   "Keep the current publishing cadence.",
		}, true
	case avg < GrowthDecline:
		return Insight{
			Type:     InsightWarning,
			Category: "growth",
			Title:    "Revenue is declining",
			Message:  fmt.Sprintf("Revenue fell %.1f%% per month on average over the last %d months.", -avg, GrowthWindow),
			Action:   "Check which platforms dropped and refresh older content.",
		}, true
	default:
		return Insight{}, false
	}
}

// RecentGrowth averages the growth of the last n trend points. It needs at
// least n points.
func RecentGrowth(trends []TrendPoint, n int) (float64, bool) {
	if n <= 0 || len(trends) < n {
		return 0, false
	}
	var sum float64
	for _, t := range trends[len(trends)-n:] {
		sum += t.Growth
	}
	return sum / float64(n), true
}

// PlatformConcentrationRule flags a platform earning more than
// PlatformConcentrate percent of revenue.
func PlatformConcentrationRule(s *Snapshot) (Insight, bool) {
	if len(s.Platforms) == 0 {
		return Insight{}, false
	}
	top := s.Platforms[0]
	if top.Percentage <= PlatformConcentrate {
		return Insight{}, false
	}
	return Insight{
		Type:     InsightInfo,
		Category: "platforms",
		Title:    "Revenue concentrated on one platform",
		Message:  fmt.Sprintf("%s brings in %.0f%% of revenue.", top.Platform, top.Percentage),
		Action:   "Publish on additional platforms to spread the risk.",
	}, true
}

// money formats d with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
