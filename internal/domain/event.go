package domain

import (
	"context"
	"strings"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusPlanned  EventStatus = "planned"
	StatusDone     EventStatus = "done"
	StatusCanceled EventStatus = "canceled"
)

// EventStatuses lists the closed set of known statuses in display order.
var EventStatuses = []EventStatus{StatusPlanned, StatusDone, StatusCanceled}

// Known reports whether s is one of the three recognized statuses.
// Unrecognized values from the service are kept as-is and shown verbatim.
func (s EventStatus) Known() bool {
	switch s {
	case StatusPlanned, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// Label returns the display label for s, or the raw value when s is not recognized.
func (s EventStatus) Label() string {
	switch s {
	case StatusPlanned:
		return "Planned"
	case StatusDone:
		return "Done"
	case StatusCanceled:
		return "Canceled"
	}
	return string(s)
}

// Event is a scheduled meetup. Any copy held by a caller is a snapshot until re-fetched.
type Event struct {
	ID        int64       `json:"id" yaml:"id"`
	StartTime Timestamp   `json:"start_time" yaml:"start_time"`
	EndTime   Timestamp   `json:"end_time" yaml:"end_time"`
	Place     string      `json:"place" yaml:"place"`
	Content   *string     `json:"content" yaml:"content"`
	Status    EventStatus `json:"status" yaml:"status"`
	TotalCost int64       `json:"total_cost" yaml:"total_cost"`
	CreatedAt Timestamp   `json:"created_at" yaml:"created_at"`
	UpdatedAt Timestamp   `json:"updated_at" yaml:"updated_at"`
}

// ContentText returns the event content or "" when unset.
func (e Event) ContentText() string {
	if e.Content == nil {
		return ""
	}
	return *e.Content
}

// EventCreate is the payload for creating an event.
type EventCreate struct {
	StartTime Timestamp   `json:"start_time"`
	EndTime   Timestamp   `json:"end_time"`
	Place     string      `json:"place"`
	Content   *string     `json:"content,omitempty"`
	Status    EventStatus `json:"status,omitempty"`
	TotalCost int64       `json:"total_cost"`
}

// Validate checks a new event before it is sent.
func (c EventCreate) Validate() error {
	if strings.TrimSpace(c.Place) == "" {
		return NewValidationError("place is required")
	}
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return NewValidationError("start and end time are required")
	}
	if c.StartTime.After(c.EndTime.Time) {
		return NewValidationError("end time must not be before start time")
	}
	if c.TotalCost < 0 {
		return NewValidationError("total cost must not be negative")
	}
	if c.Status != "" && !c.Status.Known() {
		return NewValidationError("unknown status %q", c.Status)
	}
	return nil
}

// EventUpdate is a partial update; nil fields are not sent.
type EventUpdate struct {
	StartTime *Timestamp   `json:"start_time,omitempty"`
	EndTime   *Timestamp   `json:"end_time,omitempty"`
	Place     *string      `json:"place,omitempty"`
	Content   *string      `json:"content,omitempty"`
	Status    *EventStatus `json:"status,omitempty"`
	TotalCost *int64       `json:"total_cost,omitempty"`
}

// Empty reports whether no field is set.
func (u EventUpdate) Empty() bool {
	return u.StartTime == nil && u.EndTime == nil && u.Place == nil &&
		u.Content == nil && u.Status == nil && u.TotalCost == nil
}

// Validate checks the fields that are set. When only one bound of the time window
// is given, current is used for the other one.
func (u EventUpdate) Validate(current *Event) error {
	if u.Place != nil && strings.TrimSpace(*u.Place) == "" {
		return NewValidationError("place is required")
	}
	if u.TotalCost != nil && *u.TotalCost < 0 {
		return NewValidationError("total cost must not be negative")
	}
	if u.Status != nil && !u.Status.Known() {
		return NewValidationError("unknown status %q", *u.Status)
	}
	start, end := u.StartTime, u.EndTime
	if current != nil {
		if start == nil {
			start = &current.StartTime
		}
		if end == nil {
			end = &current.EndTime
		}
	}
	if start != nil && end != nil && start.After(end.Time) {
		return NewValidationError("end time must not be before start time")
	}
	return nil
}

// EventFilter narrows the event list. Empty fields are advisory and not sent.
type EventFilter struct {
	Keyword string
	Status  EventStatus
	PaginationParams
}

// EventService performs typed operations on the event resource.
type EventService interface {
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	Get(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, in EventCreate) (*Event, error)
	Update(ctx context.Context, id int64, in EventUpdate) (*Event, error)
	Delete(ctx context.Context, id int64) error
}
