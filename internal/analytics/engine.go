package analytics

import (
	"fmt"
	"sync"
	"time"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/model"
)

// Section names accepted by Engine.Section.
const (
	SectionOverview    = "overview"
	SectionCategories  = "categories"
	SectionPlatforms   = "platforms"
	SectionPerformance = "performance"
	SectionTrends      = "trends"
	SectionROI         = "roi"
	SectionBenchmarks  = "benchmarks"
	SectionInsights    = "insights"
)

// Sections lists every section in display order.
var Sections = []string{
	SectionOverview,
	SectionCategories,
	SectionPlatforms,
	SectionPerformance,
	SectionTrends,
	SectionROI,
	SectionBenchmarks,
	SectionInsights,
}

// RevenueLister supplies revenue entries.
type RevenueLister interface {
	List() []*model.RevenueEntry
}

// VideoLister supplies videos with linked metrics.
type VideoLister interface {
	List() []*model.VideoEntry
}

// SettingsGetter supplies the current settings.
type SettingsGetter interface {
	Get() *model.Settings
}

// Versioned reports a counter that changes on every store write.
type Versioned interface {
	Version() uint64
}

// Engine computes snapshots from the stores and memoizes the last one until
// the store version or the calendar day changes.
type Engine struct {
	revenue  RevenueLister
	videos   VideoLister
	settings SettingsGetter
	version  Versioned
	Now      func() time.Time

	mu          sync.Mutex
	memo        *Snapshot
	memoVersion uint64
	memoDay     string
}

// NewEngine creates an engine. A nil version disables memoization.
func NewEngine(revenue RevenueLister, videos VideoLister, settings SettingsGetter, version Versioned) *Engine {
	return &Engine{
		revenue:  revenue,
		videos:   videos,
		settings: settings,
		version:  version,
		Now:      time.Now,
	}
}

// Snapshot returns the current analytics, recomputing only when the stores
// changed since the last call.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.Now()
	day := model.FormatDate(now)
	if e.memo != nil && e.version != nil && e.version.Version() == e.memoVersion && e.memoDay == day {
		return e.memo
	}

	var v uint64
	if e.version != nil {
		v = e.version.Version()
	}
	snap := Compute(Input{
		Revenue:  e.revenue.List(),
		Videos:   e.videos.List(),
		Settings: e.settings.Get(),
		Now:      now,
	})
	logging.DebugLog("analytics computed", logging.KeyCount, len(snap.Insights))

	e.memo, e.memoVersion, e.memoDay = snap, v, day
	return snap
}

// Invalidate drops the memoized snapshot.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.memo = nil
	e.mu.Unlock()
}

// Section returns one section of the current snapshot. A failure while
// computing it is returned as a *errors.RenderError.
func (e *Engine) Section(name string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("section failed", logging.KeySection, name, logging.KeyError, r)
			result, err = nil, errors.NewRenderError(name, fmt.Errorf("%v", r))
		}
	}()
	return e.Snapshot().Section(name)
}

// Section returns the named part of s.
func (s *Snapshot) Section(name string) (any, error) {
	switch name {
	case SectionOverview:
		return s.Overview, nil
	case SectionCategories:
		return s.Categories, nil
	case SectionPlatforms:
		return s.Platforms, nil
	case SectionPerformance:
		return s.Performance, nil
	case SectionTrends:
		return s.Trends, nil
	case SectionROI:
		return s.ROI, nil
	case SectionBenchmarks:
		return s.Benchmarks, nil
	case SectionInsights:
		return s.Insights, nil
	case "", "all":
		return s, nil
	default:
		return nil, errors.NewUserErrorWithField("section", name, "unknown analytics section",
			"Use one of: overview, categories, platforms, performance, trends, roi, benchmarks, insights.")
	}
}
