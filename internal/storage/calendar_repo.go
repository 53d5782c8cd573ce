package storage

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
	"github.com/manav03panchal/creatorbook/internal/validate"
)

// CalendarRepo provides operations for CalendarEvent records.
type CalendarRepo struct {
	store     Provider
	validator *validate.Validator
	Now       Clock
	mu        sync.Mutex
}

// NewCalendarRepo creates a new calendar repository.
func NewCalendarRepo(store Provider, v *validate.Validator) *CalendarRepo {
	return &CalendarRepo{store: store, validator: v, Now: time.Now}
}

func eventID(e *model.CalendarEvent) string { return e.ID }

func (r *CalendarRepo) load() []*model.CalendarEvent {
	return loadList[model.CalendarEvent](r.store, model.KeyCalendarEvents)
}

func (r *CalendarRepo) check(e *model.CalendarEvent) error {
	if err := validate.Date("date", e.Date); err != nil {
		return err
	}
	return r.validator.Struct(e)
}

// Add validates and stores a new event. An empty status defaults to scheduled.
func (r *CalendarRepo) Add(event *model.CalendarEvent) (*model.CalendarEvent, error) {
	e := *event
	e.Title = validate.SanitizeText(e.Title)
	e.Description = validate.SanitizeText(e.Description)
	if e.Status == "" {
		e.Status = model.StatusScheduled
	}
	if err := r.check(&e); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, errors.NewSystemError("failed to generate id", err)
	}
	e.ID = id

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Save(model.KeyCalendarEvents, append(r.load(), &e)); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update applies patch to the event with id.
func (r *CalendarRepo) Update(id string, patch model.CalendarPatch) (*model.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.load()
	i := indexOf(events, id, eventID)
	if i < 0 {
		return nil, errors.NewNotFoundError(errors.ErrEventNotFound.Kind, id)
	}
	updated := *events[i]
	patch.Apply(&updated)
	if err := r.check(&updated); err != nil {
		return nil, err
	}
	events[i] = &updated
	if err := r.store.Save(model.KeyCalendarEvents, events); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetStatus changes the status of the event with id.
func (r *CalendarRepo) SetStatus(id string, status model.EventStatus) (*model.CalendarEvent, error) {
	return r.Update(id, model.CalendarPatch{Status: &status})
}

// Delete removes an event. It returns false when no event matched.
func (r *CalendarRepo) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.load()
	i := indexOf(events, id, eventID)
	if i < 0 {
		return false, nil
	}
	if err := r.store.Save(model.KeyCalendarEvents, removeAt(events, i)); err != nil {
		return false, err
	}
	return true, nil
}

// Get retrieves an event by id.
func (r *CalendarRepo) Get(id string) (*model.CalendarEvent, error) {
	events := r.List()
	if i := indexOf(events, id, eventID); i >= 0 {
		return events[i], nil
	}
	return nil, errors.NewNotFoundError(errors.ErrEventNotFound.Kind, id)
}

// List returns every event ordered by date and time.
func (r *CalendarRepo) List() []*model.CalendarEvent {
	r.mu.Lock()
	events := r.load()
	r.mu.Unlock()
	sortEvents(events)
	return events
}

// ListByMonth returns the events dated in the given month.
func (r *CalendarRepo) ListByMonth(year int, month time.Month) []*model.CalendarEvent {
	prefix := fmt.Sprintf("%04d-%02d", year, int(month))
	return filter(r.List(), func(e *model.CalendarEvent) bool {
		return strings.HasPrefix(e.Date, prefix)
	})
}

// Upcoming returns up to n open events dated today or later. n <= 0 means
// no limit.
func (r *CalendarRepo) Upcoming(n int) []*model.CalendarEvent {
	today := model.FormatDate(r.Now())
	out := filter(r.List(), func(e *model.CalendarEvent) bool {
		return e.IsOpen() && e.Date >= today
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MonthGrid lays out the given month in Monday-first weeks with each day's
// events attached.
func (r *CalendarRepo) MonthGrid(year int, month time.Month) *model.MonthGrid {
	byDate := map[string][]*model.CalendarEvent{}
	for _, e := range r.List() {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	return BuildMonthGrid(year, month, model.FormatDate(r.Now()), byDate)
}

// BuildMonthGrid lays out a month in Monday-first weeks.
func BuildMonthGrid(year int, month time.Month, today string, byDate map[string][]*model.CalendarEvent) *model.MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	// Monday = 0 ... Sunday = 6.
	offset := (int(first.Weekday()) + 6) % 7
	cursor := first.AddDate(0, 0, -offset)

	grid := &model.MonthGrid{Year: year, Month: int(month)}
	for {
		week := make([]model.DayCell, 7)
		for i := range week {
			date := model.FormatDate(cursor)
			week[i] = model.DayCell{
				Date:    date,
				Day:     cursor.Day(),
				InMonth: cursor.Month() == month,
				Today:   date == today,
				Events:  byDate[date],
			}
			cursor = cursor.AddDate(0, 0, 1)
		}
		grid.Weeks = append(grid.Weeks, week)
		if cursor.Month() != month || cursor.Year() != year {
			break
		}
	}
	return grid
}

func sortEvents(events []*model.CalendarEvent) {
	slices.SortStableFunc(events, func(a, b *model.CalendarEvent) int {
		return strings.Compare(a.SortKey(), b.SortKey())
	})
}
