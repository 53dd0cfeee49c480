package views

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"kaiginote/internal/domain"
)

// EventDetailView shows one event with its participants.
// Participant mutations are always followed by a full refetch of the list.
type EventDetailView struct {
	events       domain.EventService
	participants domain.ParticipantService
	auth         domain.AuthService
	nav          domain.Navigator
	logger       *slog.Logger

	loadSeq        sequence
	participantSeq sequence

	mu          sync.Mutex
	eventID     int64
	event       *domain.Event
	list        []*domain.ParticipantWithUser
	currentUser *domain.User
	notFound    bool
	errMsg      string
}

func NewEventDetailView(
	events domain.EventService,
	participants domain.ParticipantService,
	auth domain.AuthService,
	nav domain.Navigator,
	logger *slog.Logger,
) *EventDetailView {
	return &EventDetailView{
		events:       events,
		participants: participants,
		auth:         auth,
		nav:          nav,
		logger:       logger,
	}
}

// Load fetches the event and then its participants. The current user is resolved
// independently and a failure there is logged only. A missing event leaves the view in
// its not-found state and is not an error. Switching to another event drops everything
// shown for the previous one before anything is fetched.
func (v *EventDetailView) Load(ctx context.Context, id int64) error {
	n := v.loadSeq.next()
	v.mu.Lock()
	if v.loadSeq.latest(n) {
		if id != v.eventID {
			v.event, v.list, v.notFound = nil, nil, false
		}
		v.eventID, v.errMsg = id, ""
	}
	v.mu.Unlock()

	v.refreshCurrentUser(ctx)

	ev, err := v.events.Get(ctx, id)
	if !v.loadSeq.latest(n) {
		return err
	}
	v.mu.Lock()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		v.event, v.list, v.notFound = nil, nil, true
		v.mu.Unlock()
		return nil
	case err != nil:
		v.event, v.list, v.notFound = nil, nil, false
		v.errMsg = domain.DetailOf(err, "failed to fetch event")
		v.mu.Unlock()
		return err
	}
	v.event, v.notFound = ev, false
	v.mu.Unlock()

	return v.refreshParticipants(ctx)
}

func (v *EventDetailView) refreshCurrentUser(ctx context.Context) {
	user, err := v.auth.CurrentUser(ctx)
	if err != nil {
		// Only used to prefill the add form.
		v.logger.WarnContext(ctx, "failed to fetch current user", "err", err)
		return
	}
	v.mu.Lock()
	v.currentUser = user
	v.mu.Unlock()
}

func (v *EventDetailView) refreshParticipants(ctx context.Context) error {
	id, err := v.loadedEventID()
	if err != nil {
		return err
	}
	n := v.participantSeq.next()
	list, err := v.participants.List(ctx, id)
	if !v.participantSeq.latest(n) {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.event == nil || v.event.ID != id {
		return err
	}
	if err != nil {
		v.errMsg = domain.DetailOf(err, "failed to fetch participants")
		return err
	}
	v.list = list
	v.errMsg = ""
	return nil
}

// loadedEventID returns the id of the event on screen. Mutations act on it only.
func (v *EventDetailView) loadedEventID() (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.event == nil {
		err := domain.NewValidationError("event is not loaded")
		v.errMsg = err.Detail
		return 0, err
	}
	return v.event.ID, nil
}

// AddParticipant adds a participant and refetches the list. A zero user id means the
// signed-in user.
func (v *EventDetailView) AddParticipant(ctx context.Context, in domain.ParticipantCreate) error {
	id, err := v.loadedEventID()
	if err != nil {
		return err
	}
	if in.UserID == 0 {
		if u := v.CurrentUser(); u != nil {
			in.UserID = u.ID
		}
	}
	if err := in.Validate(); err != nil {
		v.setError(domain.DetailOf(err, "failed to add participant"))
		return err
	}
	if _, err := v.participants.Add(ctx, id, in); err != nil {
		v.setError(domain.DetailOf(err, "failed to add participant"))
		return err
	}
	return v.refreshParticipants(ctx)
}

// UpdateParticipant changes what a participant paid and refetches the list.
func (v *EventDetailView) UpdateParticipant(ctx context.Context, participantID int64, in domain.ParticipantUpdate) error {
	id, err := v.loadedEventID()
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		v.setError(domain.DetailOf(err, "failed to update participant"))
		return err
	}
	if _, err := v.participants.Update(ctx, id, participantID, in); err != nil {
		v.setError(domain.DetailOf(err, "failed to update participant"))
		return err
	}
	return v.refreshParticipants(ctx)
}

// RemoveParticipant removes a participant and refetches the list.
func (v *EventDetailView) RemoveParticipant(ctx context.Context, participantID int64) error {
	id, err := v.loadedEventID()
	if err != nil {
		return err
	}
	if err := v.participants.Remove(ctx, id, participantID); err != nil {
		v.setError(domain.DetailOf(err, "failed to remove participant"))
		return err
	}
	return v.refreshParticipants(ctx)
}

// DeleteEvent deletes the event and returns to the event list.
func (v *EventDetailView) DeleteEvent(ctx context.Context) error {
	id, err := v.loadedEventID()
	if err != nil {
		return err
	}
	if err := v.events.Delete(ctx, id); err != nil {
		v.setError(domain.DetailOf(err, "failed to delete event"))
		return err
	}
	v.mu.Lock()
	v.event, v.list = nil, nil
	v.mu.Unlock()
	v.nav.Navigate(domain.RouteHome)
	return nil
}

func (v *EventDetailView) EventID() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.eventID
}

// Event returns the loaded event, or nil.
func (v *EventDetailView) Event() *domain.Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.event
}

func (v *EventDetailView) Participants() []*domain.ParticipantWithUser {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list
}

// TotalPaid sums what the listed participants paid.
func (v *EventDetailView) TotalPaid() int64 {
	return domain.TotalPaid(v.Participants())
}

func (v *EventDetailView) CurrentUser() *domain.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentUser
}

// NotFound reports whether the last load found no such event.
func (v *EventDetailView) NotFound() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.notFound
}

func (v *EventDetailView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *EventDetailView) setError(msg string) {
	v.mu.Lock()
	v.errMsg = msg
	v.mu.Unlock()
}
