package views

import (
	"context"
	"sync"

	"kaiginote/internal/domain"
)

// EventListView is the home screen: a filterable list of events.
type EventListView struct {
	events domain.EventService
	seq    sequence

	mu     sync.Mutex
	filter domain.EventFilter
	items  []*domain.Event
	errMsg string
}

func NewEventListView(events domain.EventService) *EventListView {
	return &EventListView{events: events}
}

// Load fetches the events matching filter. Only the most recently started load updates
// the view; results of older loads are dropped when they land.
func (v *EventListView) Load(ctx context.Context, filter domain.EventFilter) error {
	n := v.seq.next()
	items, err := v.events.List(ctx, filter)
	if !v.seq.latest(n) {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = filter
	if err != nil {
		v.errMsg = domain.DetailOf(err, "failed to fetch events")
		return err
	}
	v.items = items
	v.errMsg = ""
	return nil
}

// Refresh reloads with the last filter.
func (v *EventListView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	filter := v.filter
	v.mu.Unlock()
	return v.Load(ctx, filter)
}

// Events returns the current snapshot.
func (v *EventListView) Events() []*domain.Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items
}

// Filter returns the filter of the last applied load.
func (v *EventListView) Filter() domain.EventFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// ErrorMessage returns the inline message of the last failed load, if any.
func (v *EventListView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}
