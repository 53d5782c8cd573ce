package model

// EventType classifies a calendar event.
type EventType string

const (
	EventVideo    EventType = "video"
	EventTask     EventType = "task"
	EventMeeting  EventType = "meeting"
	EventDeadline EventType = "deadline"
)

// EventStatus is the lifecycle state of a calendar event.
type EventStatus string

const (
	StatusScheduled EventStatus = "scheduled"
	StatusPending   EventStatus = "pending"
	StatusConfirmed EventStatus = "confirmed"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// CalendarEvent is an entry in the content calendar.
type CalendarEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title" validate:"required,max=256"`
	Type        EventType   `json:"type" validate:"required,oneof=video task meeting deadline"`
	Date        string      `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string      `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Description string      `json:"description,omitempty" validate:"max=4096"`
	Status      EventStatus `json:"status" validate:"required,oneof=scheduled pending confirmed completed cancelled"`
}

// SortKey orders events by date then time.
func (e *CalendarEvent) SortKey() string {
	return e.Date + " " + e.Time
}

// IsOpen reports whether the event is neither completed nor cancelled.
func (e *CalendarEvent) IsOpen() bool {
	return e.Status != StatusCompleted && e.Status != StatusCancelled
}

// CalendarPatch holds the fields of an event update. Nil fields are left unchanged.
type CalendarPatch struct {
	Title       *string
	Type        *EventType
	Date        *string
	Time        *string
	Description *string
	Status      *EventStatus
}

// Apply copies the set fields onto e.
func (p CalendarPatch) Apply(e *CalendarEvent) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
}

// DayCell is one day of a month grid.
type DayCell struct {
	Date    string           `json:"date"`
	Day     int              `json:"day"`
	InMonth bool             `json:"inMonth"`
	Today   bool             `json:"today"`
	Events  []*CalendarEvent `json:"events,omitempty"`
}

// MonthGrid is a calendar month laid out in Monday-first weeks. Leading and
// trailing cells belong to the neighbouring months.
type MonthGrid struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Weeks [][]DayCell `json:"weeks"`
}
