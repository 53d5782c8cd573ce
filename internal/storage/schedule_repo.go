package storage

import (
	"slices"
	"sync"
	"time"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// ScheduleRepo provides operations for ScheduledReport records.
type ScheduleRepo struct {
	store     Provider
	validator *validate.Validator
	Now       Clock
	mu        sync.Mutex
}

// NewScheduleRepo creates a new scheduled report repository.
func NewScheduleRepo(store Provider, v *validate.Validator) *ScheduleRepo {
	return &ScheduleRepo{store: store, validator: v, Now: time.Now}
}

func scheduleID(s *model.ScheduledReport) string { return s.ID }

func (r *ScheduleRepo) load() []*model.ScheduledReport {
	return loadList[model.ScheduledReport](r.store, model.KeyScheduledReports)
}

// Add validates and stores a new scheduled report. It has never run.
func (r *ScheduleRepo) Add(report *model.ScheduledReport) (*model.ScheduledReport, error) {
	s := *report
	s.Name = validate.SanitizeText(s.Name)
	if err := r.validator.Struct(&s); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, errors.NewSystemError("failed to generate id", err)
	}
	s.ID = id
	s.CreatedAt = r.Now()
	s.LastRun = nil

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Save(model.KeyScheduledReports, append(r.load(), &s)); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get retrieves a scheduled report by id.
func (r *ScheduleRepo) Get(id string) (*model.ScheduledReport, error) {
	reports := r.List()
	if i := indexOf(reports, id, scheduleID); i >= 0 {
		return reports[i], nil
	}
	return nil, errors.NewNotFoundError(errors.ErrScheduleNotFound.Kind, id)
}

// List returns every scheduled report in creation order.
func (r *ScheduleRepo) List() []*model.ScheduledReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Delete removes a scheduled report. It returns false when no report matched.
func (r *ScheduleRepo) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reports := r.load()
	i := indexOf(reports, id, scheduleID)
	if i < 0 {
		return false, nil
	}
	if err := r.store.Save(model.KeyScheduledReports, removeAt(reports, i)); err != nil {
		return false, err
	}
	return true, nil
}

// SetEnabled turns a scheduled report on or off.
func (r *ScheduleRepo) SetEnabled(id string, enabled bool) (*model.ScheduledReport, error) {
	return r.modify(id, func(s *model.ScheduledReport) { s.Enabled = enabled })
}

// MarkRun records that the report ran at.
func (r *ScheduleRepo) MarkRun(id string, at time.Time) (*model.ScheduledReport, error) {
	return r.modify(id, func(s *model.ScheduledReport) { s.LastRun = &at })
}

// Due returns the enabled reports whose next run is not after now, earliest
// first.
func (r *ScheduleRepo) Due(now time.Time) []*model.ScheduledReport {
	due := filter(r.List(), func(s *model.ScheduledReport) bool { return s.IsDue(now) })
	slices.SortStableFunc(due, func(a, b *model.ScheduledReport) int {
		return a.NextRun().Compare(b.NextRun())
	})
	return due
}

func (r *ScheduleRepo) modify(id string, fn func(*model.ScheduledReport)) (*model.ScheduledReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reports := r.load()
	i := indexOf(reports, id, scheduleID)
	if i < 0 {
		return nil, errors.NewNotFoundError(errors.ErrScheduleNotFound.Kind, id)
	}
	fn(reports[i])
	if err := r.store.Save(model.KeyScheduledReports, reports); err != nil {
		return nil, err
	}
	return reports[i], nil
}
