package views

import (
	"context"
	"errors"
	"sync"

	"kaiginote/internal/delivery/routes"
	"kaiginote/internal/domain"
)

// EventFormView creates a new event or edits an existing one.
type EventFormView struct {
	events domain.EventService
	nav    domain.Navigator

	mu       sync.Mutex
	current  *domain.Event
	notFound bool
	errMsg   string
}

func NewEventFormView(events domain.EventService, nav domain.Navigator) *EventFormView {
	return &EventFormView{events: events, nav: nav}
}

// LoadForEdit fetches the event being edited.
func (v *EventFormView) LoadForEdit(ctx context.Context, id int64) error {
	ev, err := v.events.Get(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		v.current, v.notFound, v.errMsg = nil, true, ""
		return nil
	case err != nil:
		v.errMsg = domain.DetailOf(err, "failed to fetch event")
		return err
	}
	v.current, v.notFound, v.errMsg = ev, false, ""
	return nil
}

// Create checks the form, creates the event and opens it.
func (v *EventFormView) Create(ctx context.Context, in domain.EventCreate) (*domain.Event, error) {
	if in.Status == "" {
		in.Status = domain.StatusPlanned
	}
	if err := in.Validate(); err != nil {
		v.setError(domain.DetailOf(err, "failed to create event"))
		return nil, err
	}
	ev, err := v.events.Create(ctx, in)
	if err != nil {
		v.setError(domain.DetailOf(err, "failed to create event"))
		return nil, err
	}
	v.setError("")
	v.nav.Navigate(routes.EventPath(ev.ID))
	return ev, nil
}

// Update checks the changes against the loaded event, saves them and opens the event.
func (v *EventFormView) Update(ctx context.Context, in domain.EventUpdate) (*domain.Event, error) {
	current := v.Current()
	if current == nil {
		err := domain.NewValidationError("event is not loaded")
		v.setError(err.Error())
		return nil, err
	}
	if in.Empty() {
		err := domain.NewValidationError("nothing to update")
		v.setError(err.Error())
		return nil, err
	}
	if err := in.Validate(current); err != nil {
		v.setError(domain.DetailOf(err, "failed to update event"))
		return nil, err
	}
	ev, err := v.events.Update(ctx, current.ID, in)
	if err != nil {
		v.setError(domain.DetailOf(err, "failed to update event"))
		return nil, err
	}

	v.mu.Lock()
	v.current, v.errMsg = ev, ""
	v.mu.Unlock()
	v.nav.Navigate(routes.EventPath(ev.ID))
	return ev, nil
}

// Current returns the event being edited, or nil.
func (v *EventFormView) Current() *domain.Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

func (v *EventFormView) NotFound() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.notFound
}

func (v *EventFormView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *EventFormView) setError(msg string) {
	v.mu.Lock()
	v.errMsg = msg
	v.mu.Unlock()
}
