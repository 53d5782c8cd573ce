package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/analytics"
	"github.com/manav03panchal/creatorbook/internal/model"
)

// BestCategory returns the category whose videos earned the most in total.
// Ties go to the category listed first. ok is false when no video has a
// category.
func BestCategory(videos []*model.VideoEntry) (name string, revenue decimal.Decimal, ok bool) {
	totals := map[string]decimal.Decimal{}
	var order []string
	for _, v := range videos {
		if v.Category == "" {
			continue
		}
		if _, seen := totals[v.Category]; !seen {
			order = append(order, v.Category)
		}
		totals[v.Category] = totals[v.Category].Add(v.TotalRevenue)
	}
	for _, c := range order {
		if !ok || totals[c].GreaterThan(revenue) {
			name, revenue, ok = c, totals[c], true
		}
	}
	return name, revenue, ok
}

// Recommendation levels.
const (
	RecommendDiversify   = "diversify"
	RecommendConcentrate = "concentration"
	RecommendAdequate    = "adequate"
)

// Platform recommendation thresholds.
const (
	MinActivePlatforms = 3
	ConcentrationLimit  = 70.0
)

// Recommendation is advice about the platform mix.
type Recommendation struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// PlatformRecommendation advises on the platform mix. A top platform above
// ConcentrationLimit percent is flagged first; otherwise the mix is adequate
// with at least MinActivePlatforms earning platforms and calls for
// diversification below that.
func PlatformRecommendation(platforms []analytics.PlatformStats) Recommendation {
	var active []analytics.PlatformStats
	for _, p := range platforms {
		if p.TotalRevenue.IsPositive() {
			active = append(active, p)
		}
	}

	if len(active) > 0 {
		top := active[0]
		for _, p := range active[1:] {
			if p.Percentage > top.Percentage {
				top = p
			}
		}
		if top.Percentage > ConcentrationLimit {
			return Recommendation{
				Level: RecommendConcentrate,
				Message: fmt.Sprintf("%s brings in %.0f%% of revenue. Reduce the dependency on a single platform.",
					top.Platform, top.Percentage),
			}
		}
	}

	if len(active) >= MinActivePlatforms {
		return Recommendation{
			Level:   RecommendAdequate,
			Message: fmt.Sprintf("Revenue is spread across %d platforms. Diversification is adequate.", len(active)),
		}
	}
	return Recommendation{
		Level: RecommendDiversify,
		Message: fmt.Sprintf("Only %d platform(s) earn revenue. Diversify onto at least %d platforms first.",
			len(active), MinActivePlatforms),
	}
}
