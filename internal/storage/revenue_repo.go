package storage

import (
	"encoding/json"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// RevenueRepo provides operations for RevenueEntry records.
type RevenueRepo struct {
	store     Provider
	settings  *SettingsRepo
	validator *validate.Validator
	Now       Clock
	mu        sync.Mutex
}

// NewRevenueRepo creates a new revenue repository.
func NewRevenueRepo(store Provider, settings *SettingsRepo, v *validate.Validator) *RevenueRepo {
	return &RevenueRepo{store: store, settings: settings, validator: v, Now: time.Now}
}

func revenueID(e *model.RevenueEntry) string { return e.ID }

func (r *RevenueRepo) load() []*model.RevenueEntry {
	return loadList[model.RevenueEntry](r.store, model.KeyRevenue)
}

func (r *RevenueRepo) check(e *model.RevenueEntry) error {
	if err := validate.Date("date", e.Date); err != nil {
		return err
	}
	return r.validator.Struct(e)
}

// Add validates and stores a new entry, assigning its id and timestamps.
func (r *RevenueRepo) Add(entry *model.RevenueEntry) (*model.RevenueEntry, error) {
	e := entry.Clone()
	e.Platform = validate.SanitizeText(e.Platform)
	e.VideoTitle = validate.SanitizeText(e.VideoTitle)
	if err := r.check(e); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, errors.NewSystemError("failed to generate id", err)
	}
	now := r.Now()
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	entries := append(r.load(), e)
	if err := r.store.Save(model.KeyRevenue, entries); err != nil {
		return nil, err
	}
	logging.DebugLog("revenue added", logging.KeyID, e.ID)
	return e.Clone(), nil
}

// Update applies patch to the entry with id. The id and creation time never
// change.
func (r *RevenueRepo) Update(id string, patch model.RevenuePatch) (*model.RevenueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	i := indexOf(entries, id, revenueID)
	if i < 0 {
		return nil, errors.NewNotFoundError(errors.ErrRevenueNotFound.Kind, id)
	}

	updated := entries[i].Clone()
	patch.Apply(updated)
	updated.ID = entries[i].ID
	updated.CreatedAt = entries[i].CreatedAt
	if err := r.check(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = r.Now()

	entries[i] = updated
	if err := r.store.Save(model.KeyRevenue, entries); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Delete removes the entry with id. It returns false when no entry matched.
func (r *RevenueRepo) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	i := indexOf(entries, id, revenueID)
	if i < 0 {
		return false, nil
	}
	if err := r.store.Save(model.KeyRevenue, removeAt(entries, i)); err != nil {
		return false, err
	}
	return true, nil
}

// Get retrieves an entry by id.
func (r *RevenueRepo) Get(id string) (*model.RevenueEntry, error) {
	entries := r.List()
	if i := indexOf(entries, id, revenueID); i >= 0 {
		return entries[i], nil
	}
	return nil, errors.NewNotFoundError(errors.ErrRevenueNotFound.Kind, id)
}

// List returns every entry in insertion order.
func (r *RevenueRepo) List() []*model.RevenueEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// ListByDateRange returns entries dated within [from, to], inclusive.
func (r *RevenueRepo) ListByDateRange(from, to string) ([]*model.RevenueEntry, error) {
	if err := validate.Date("from", from); err != nil {
		return nil, err
	}
	if err := validate.Date("to", to); err != nil {
		return nil, err
	}
	return FilterByDateRange(r.List(), from, to), nil
}

// CurrentMonth returns entries dated in the current calendar month.
func (r *RevenueRepo) CurrentMonth() []*model.RevenueEntry {
	month := r.Now().Format("2006-01")
	return filter(r.List(), func(e *model.RevenueEntry) bool { return e.Month() == month })
}

// CurrentYear returns entries dated in the current calendar year.
func (r *RevenueRepo) CurrentYear() []*model.RevenueEntry {
	year := strconv.Itoa(r.Now().Year())
	return filter(r.List(), func(e *model.RevenueEntry) bool { return len(e.Date) >= 4 && e.Date[:4] == year })
}

// Stats aggregates the whole list.
func (r *RevenueRepo) Stats() *model.RevenueStats {
	return ComputeRevenueStats(r.List(), r.Now())
}

// CheckThresholdStatus compares year-to-date revenue with the registration
// threshold.
func (r *RevenueRepo) CheckThresholdStatus() *model.ThresholdStatus {
	current := Sum(r.CurrentYear())
	threshold := r.settings.Get().PivaThreshold
	return &model.ThresholdStatus{
		CurrentRevenue:    current,
		Threshold:         threshold,
		Remaining:         model.NonNegative(threshold.Sub(current)),
		Percentage:        model.Percentage(current, threshold),
		NeedsRegistration: current.GreaterThanOrEqual(threshold),
	}
}

// CheckMonthlyGoal compares month-to-date revenue with the monthly target.
func (r *RevenueRepo) CheckMonthlyGoal() *model.GoalStatus {
	current := Sum(r.CurrentMonth())
	target := r.settings.Get().MonthlyTarget
	return &model.GoalStatus{
		CurrentRevenue: current,
		Target:         target,
		Remaining:      model.NonNegative(target.Sub(current)),
		Percentage:     model.Percentage(current, target),
		Achieved:       current.GreaterThanOrEqual(target),
	}
}

// MonthlyTrends returns one bucket per month with entries, oldest first.
// When last > 0 only the most recent last months are kept.
func (r *RevenueRepo) MonthlyTrends(last int) []model.MonthlyRevenue {
	return MonthlyBuckets(r.List(), last)
}

// Export encodes the list as indented JSON.
func (r *RevenueRepo) Export() ([]byte, error) {
	return json.MarshalIndent(r.List(), "", "  ")
}

// Import decodes a JSON array of entries and stores them. With replace the
// existing list is discarded, otherwise imported entries whose id is already
// present are skipped. Every entry is validated before anything is written.
func (r *RevenueRepo) Import(data []byte, replace bool) (int, error) {
	var incoming []*model.RevenueEntry
	if err := json.Unmarshal(data, &incoming); err != nil {
		return 0, errors.NewValidationError("file", "", "must be a JSON array of revenue entries")
	}

	now := r.Now()
	for i, e := range incoming {
		if e == nil {
			return 0, errors.NewValidationError("entry", strconv.Itoa(i), "must not be null")
		}
		if err := r.check(e); err != nil {
			return 0, errors.Wrapf(err, "entry %d", i)
		}
		if e.ID == "" {
			id, err := newID()
			if err != nil {
				return 0, errors.NewSystemError("failed to generate id", err)
			}
			e.ID = id
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = e.CreatedAt
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := []*model.RevenueEntry{}
	if !replace {
		entries = r.load()
	}
	added := 0
	for _, e := range incoming {
		if indexOf(entries, e.ID, revenueID) >= 0 {
			continue
		}
		entries = append(entries, e)
		added++
	}
	if err := r.store.Save(model.KeyRevenue, entries); err != nil {
		return 0, err
	}
	logging.Info("revenue imported", logging.KeyCount, added)
	return added, nil
}

// Sum adds up the amounts of entries.
func Sum(entries []*model.RevenueEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// FilterByDateRange keeps entries dated within [from, to]. Dates compare as
// YYYY-MM-DD strings.
func FilterByDateRange(entries []*model.RevenueEntry, from, to string) []*model.RevenueEntry {
	return filter(entries, func(e *model.RevenueEntry) bool {
		return e.Date >= from && e.Date <= to
	})
}

// ComputeRevenueStats aggregates entries relative to now.
func ComputeRevenueStats(entries []*model.RevenueEntry, now time.Time) *model.RevenueStats {
	month := now.Format("2006-01")
	year := strconv.Itoa(now.Year())

	stats := &model.RevenueStats{
		CurrentMonthRevenue: decimal.Zero,
		CurrentYearRevenue:  decimal.Zero,
		TotalRevenue:        decimal.Zero,
		AveragePerEntry:     decimal.Zero,
		ByPlatform:          map[string]model.PlatformTotal{},
	}

	for _, e := range entries {
		stats.TotalRevenue = stats.TotalRevenue.Add(e.Amount)
		stats.TotalEntries++

		if e.Month() == month {
			stats.CurrentMonthRevenue = stats.CurrentMonthRevenue.Add(e.Amount)
			stats.CurrentMonthEntries++
		}
		if len(e.Date) >= 4 && e.Date[:4] == year {
			stats.CurrentYearRevenue = stats.CurrentYearRevenue.Add(e.Amount)
			stats.CurrentYearEntries++
		}

		pt := stats.ByPlatform[e.Platform]
		if pt.Entries == 0 {
			pt.Revenue = decimal.Zero
		}
		pt.Revenue = pt.Revenue.Add(e.Amount)
		pt.Entries++
		stats.ByPlatform[e.Platform] = pt
	}

	if stats.TotalEntries > 0 {
		stats.AveragePerEntry = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.TotalEntries))).Round(2)
	}
	return stats
}

// MonthlyBuckets groups entries by YYYY-MM, oldest first. When last > 0 only
// the most recent last buckets are kept.
func MonthlyBuckets(entries []*model.RevenueEntry, last int) []model.MonthlyRevenue {
	totals := map[string]decimal.Decimal{}
	for _, e := range entries {
		m := e.Month()
		totals[m] = totals[m].Add(e.Amount)
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)
	if last > 0 && len(months) > last {
		months = months[len(months)-last:]
	}

	out := make([]model.MonthlyRevenue, len(months))
	for i, m := range months {
		out[i] = model.MonthlyRevenue{Month: m, Revenue: totals[m]}
	}
	return out
}

// SortByDateDesc orders entries newest first, keeping insertion order for
// equal dates.
func SortByDateDesc(entries []*model.RevenueEntry) []*model.RevenueEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b *model.RevenueEntry) int {
		switch {
		case a.Date > b.Date:
			return -1
		case a.Date < b.Date:
			return 1
		default:
			return 0
		}
	})
	return out
}

func filter[T any](items []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
