package model

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Built-in content categories. Settings.ExtraCategories extends the list.
const (
	CategoryStudy    = "Study"
	CategorySleep    = "Sleep"
	CategoryWork     = "Work"
	CategoryAmbient  = "Ambient"
	CategorySeasonal = "Seasonal"
)

// DefaultCategories lists the built-in categories in display order.
var DefaultCategories = []string{
	CategoryStudy,
	CategorySleep,
	CategoryWork,
	CategoryAmbient,
	CategorySeasonal,
}

// PerformanceLevel buckets a performance score.
type PerformanceLevel string

const (
	LevelHigh   PerformanceLevel = "high"
	LevelMedium PerformanceLevel = "medium"
	LevelLow    PerformanceLevel = "low"
)

// Score thresholds shared by videos and performance tiers.
const (
	HighScoreThreshold   = 70
	MediumScoreThreshold = 40
	MaxScore             = 100
)

// VideoEntry is a published piece of content and its metrics.
// The fields after Notes are derived from revenue entries on every load.
type VideoEntry struct {
	ID             string          `json:"id"`
	Title          string          `json:"title" validate:"required,max=256"`
	Category       string          `json:"category" validate:"required,category"`
	PublishDate    string          `json:"publishDate" validate:"required,datetime=2006-01-02"`
	Duration       string          `json:"duration,omitempty" validate:"max=32"`
	Views          int64           `json:"views" validate:"gte=0"`
	CTR            float64         `json:"ctr" validate:"gte=0,lte=100"`
	Retention      float64         `json:"retention" validate:"gte=0,lte=100"`
	Likes          int64           `json:"likes" validate:"gte=0"`
	Comments       int64           `json:"comments" validate:"gte=0"`
	ProductionCost decimal.Decimal `json:"productionCost" validate:"gte=0"`
	Platforms      []string        `json:"platforms,omitempty" validate:"dive,required,max=64"`
	YouTubeURL     string          `json:"youtubeUrl,omitempty" validate:"omitempty,url"`
	ThumbnailURL   string          `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
	Keywords       []string        `json:"keywords,omitempty" validate:"dive,max=64"`
	Notes          string          `json:"notes,omitempty" validate:"max=4096"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	TotalRevenue     decimal.Decimal  `json:"totalRevenue"`
	RevenueEntries   int              `json:"revenueEntries"`
	RevenuePerView   float64          `json:"revenuePerView"`
	ROI              float64          `json:"roi"`
	PerformanceScore int              `json:"performanceScore"`
	PerformanceLevel PerformanceLevel `json:"performanceLevel"`
}

// Clone returns a deep copy of the video.
func (v *VideoEntry) Clone() *VideoEntry {
	c := *v
	c.Platforms = slices.Clone(v.Platforms)
	c.Keywords = slices.Clone(v.Keywords)
	return &c
}

// HasPlatform reports whether the video is published on platform (case-insensitive).
func (v *VideoEntry) HasPlatform(platform string) bool {
	for _, p := range v.Platforms {
		if strings.EqualFold(p, platform) {
			return true
		}
	}
	return false
}

// ApplyRevenue recomputes every derived metric from the linked revenue.
func (v *VideoEntry) ApplyRevenue(total decimal.Decimal, entries int) {
	v.TotalRevenue = total
	v.RevenueEntries = entries
	v.RevenuePerView = RevenuePerMille(total, v.Views)
	v.ROI = ROI(total, v.ProductionCost)
	v.PerformanceScore = VideoScore(v.CTR, v.Retention, v.RevenuePerView)
	v.PerformanceLevel = LevelForScore(v.PerformanceScore)
}

// Profit returns revenue minus production cost.
func (v *VideoEntry) Profit() decimal.Decimal {
	return v.TotalRevenue.Sub(v.ProductionCost)
}

// RevenuePerMille returns revenue per 1000 views, 0 when there are no views.
func RevenuePerMille(revenue decimal.Decimal, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return revenue.InexactFloat64() / float64(views) * 1000
}

// ROI returns revenue/cost*100, 0 when cost is not positive.
func ROI(revenue, cost decimal.Decimal) float64 {
	if !cost.IsPositive() {
		return 0
	}
	return revenue.InexactFloat64() / cost.InexactFloat64() * 100
}

// Tier maps a metric to points: the first threshold the value reaches wins.
type Tier struct {
	Min    float64
	Points int
}

// TierPoints returns the points of the first tier whose Min value reaches.
// Tiers must be ordered by descending Min.
func TierPoints(value float64, tiers []Tier) int {
	for _, t := range tiers {
		if value >= t.Min {
			return t.Points
		}
	}
	return 0
}

// Video score tiers.
var (
	CTRTiers       = []Tier{{4, 30}, {3, 20}, {2, 10}}
	RetentionTiers = []Tier{{60, 30}, {45, 20}, {30, 10}}
	RPMTiers       = []Tier{{5, 40}, {3, 25}, {1, 15}}
)

// VideoScore computes the 0-100 performance score of a video.
func VideoScore(ctr, retention, revenuePerMille float64) int {
	score := TierPoints(ctr, CTRTiers) +
		TierPoints(retention, RetentionTiers) +
		TierPoints(revenuePerMille, RPMTiers)
	return ClampScore(score)
}

// ClampScore bounds a score to [0,100].
func ClampScore(score int) int {
	return max(0, min(score, MaxScore))
}

// LevelForScore buckets a score.
func LevelForScore(score int) PerformanceLevel {
	switch {
	case score >= HighScoreThreshold:
		return LevelHigh
	case score >= MediumScoreThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// VideoPatch holds the fields of a video update. Nil fields are left unchanged.
type VideoPatch struct {
	Title          *string
	Category       *string
	PublishDate    *string
	Duration       *string
	Views          *int64
	CTR            *float64
	Retention      *float64
	Likes          *int64
	Comments       *int64
	ProductionCost *decimal.Decimal
	Platforms      []string
	YouTubeURL     *string
	ThumbnailURL   *string
	Keywords       []string
	Notes          *string
}

// Apply copies the set fields onto v.
func (p VideoPatch) Apply(v *VideoEntry) {
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Category != nil {
		v.Category = *p.Category
	}
	if p.PublishDate != nil {
		v.PublishDate = *p.PublishDate
	}
	if p.Duration != nil {
		v.Duration = *p.Duration
	}
	if p.Views != nil {
		v.Views = *p.Views
	}
	if p.CTR != nil {
		v.CTR = *p.CTR
	}
	if p.Retention != nil {
		v.Retention = *p.Retention
	}
	if p.Likes != nil {
		v.Likes = *p.Likes
	}
	if p.Comments != nil {
		v.Comments = *p.Comments
	}
	if p.ProductionCost != nil {
		v.ProductionCost = *p.ProductionCost
	}
	if p.Platforms != nil {
		v.Platforms = slices.Clone(p.Platforms)
	}
	if p.YouTubeURL != nil {
		v.YouTubeURL = *p.YouTubeURL
	}
	if p.ThumbnailURL != nil {
		v.ThumbnailURL = *p.ThumbnailURL
	}
	if p.Keywords != nil {
		v.Keywords = slices.Clone(p.Keywords)
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
}
