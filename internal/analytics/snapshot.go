// Package analytics derives the dashboard's analytics from revenue and video
// snapshots. Compute is a pure function; Engine memoizes it per store version.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/model"
)

// Input is everything Compute reads.
type Input struct {
	Revenue  []*model.RevenueEntry
	Videos   []*model.VideoEntry
	Settings *model.Settings
	Now      time.Time
}

// Snapshot is the full analytics result, replaced wholesale on recompute.
type Snapshot struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Overview    Overview        `json:"overview"`
	Categories  []CategoryStats `json:"categories"`
	Platforms   []PlatformStats `json:"platforms"`
	Performance Performance     `json:"performance"`
	Trends      []TrendPoint    `json:"trends"`
	ROI         ROIAnalysis     `json:"roi"`
	Benchmarks  Benchmarks      `json:"benchmarks"`
	Insights    []Insight       `json:"insights"`
}

// Overview holds the headline totals.
type Overview struct {
	TotalRevenue           decimal.Decimal `json:"totalRevenue"`
	TotalEntries           int             `json:"totalEntries"`
	TotalVideos            int             `json:"totalVideos"`
	TotalViews             int64           `json:"totalViews"`
	AverageRevenuePerVideo decimal.Decimal `json:"averageRevenuePerVideo"`
	RevenuePerMille        float64         `json:"revenuePerMille"`
	AverageCTR             float64         `json:"averageCtr"`
	AverageRetention       float64         `json:"averageRetention"`
}

// CategoryStats rolls up the videos of one category. Only categories with at
// least one video appear.
type CategoryStats struct {
	Category         string                 `json:"category"`
	Count            int                    `json:"count"`
	TotalRevenue     decimal.Decimal        `json:"totalRevenue"`
	AverageRevenue   decimal.Decimal        `json:"averageRevenue"`
	AverageCTR       float64                `json:"averageCtr"`
	AverageRetention float64                `json:"averageRetention"`
	AverageViews     float64                `json:"averageViews"`
	Score            int                    `json:"score"`
	Level            model.PerformanceLevel `json:"level"`
}

// PlatformStats rolls up the revenue entries of one platform.
type PlatformStats struct {
	Platform       string          `json:"platform"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	Entries        int             `json:"entries"`
	AverageRevenue decimal.Decimal `json:"averageRevenue"`
	Percentage     float64         `json:"percentage"`
}

// Tier is one performance bucket.
type Tier struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// VideoSummary is a compact video row for rankings.
type VideoSummary struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Category string                 `json:"category"`
	Revenue  decimal.Decimal        `json:"revenue"`
	Views    int64                  `json:"views"`
	Score    int                    `json:"score"`
	Level    model.PerformanceLevel `json:"level"`
}

// Performance partitions videos by their score level.
type Performance struct {
	High   Tier           `json:"high"`
	Medium Tier           `json:"medium"`
	Low    Tier           `json:"low"`
	Top    []VideoSummary `json:"top"`
	Bottom []VideoSummary `json:"bottom"`
}

// TrendPoint is one month of revenue with its month-over-month growth.
type TrendPoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Growth  float64         `json:"growth"`
}

// VideoROI is the return on one video with a production cost.
type VideoROI struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Cost    decimal.Decimal `json:"cost"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
	ROI     float64         `json:"roi"`
}

// ROIAnalysis ranks videos by return on production cost.
type ROIAnalysis struct {
	Videos          []VideoROI      `json:"videos"`
	Best            []VideoROI      `json:"best"`
	Worst           []VideoROI      `json:"worst"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	TotalReturns    decimal.Decimal `json:"totalReturns"`
	OverallROI      float64         `json:"overallRoi"`
	AverageROI      float64         `json:"averageRoi"`
}

// Benchmarks compares revenue with the configured goals. The year-end
// projection is the current month times twelve, not seasonally adjusted.
type Benchmarks struct {
	CurrentMonthRevenue        decimal.Decimal `json:"currentMonthRevenue"`
	MonthlyTarget              decimal.Decimal `json:"monthlyTarget"`
	MonthlyProgress            float64         `json:"monthlyProgress"`
	MonthlyTargetMet           bool            `json:"monthlyTargetMet"`
	YearRevenue                decimal.Decimal `json:"yearRevenue"`
	Threshold                  decimal.Decimal `json:"threshold"`
	ThresholdProgress          float64         `json:"thresholdProgress"`
	ThresholdReached           bool            `json:"thresholdReached"`
	ProjectedYearEnd           decimal.Decimal `json:"projectedYearEnd"`
	ProjectionExceedsThreshold bool            `json:"projectionExceedsThreshold"`
}

// InsightType is the tone of an insight.
type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

// Insight is one natural-language observation.
type Insight struct {
	Type     InsightType `json:"type"`
	Category string      `json:"category"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Action   string      `json:"action"`
}
