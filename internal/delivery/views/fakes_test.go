package views

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"kaiginote/internal/domain"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

type fakeAuth struct {
	authenticated bool
	user          *domain.User
	loginErr      error
	signUpErr     error
	currentErr    error
	logouts       int
}

func (f *fakeAuth) Register(_ context.Context, reg domain.Registration) (*domain.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &domain.User{ID: 1, Name: reg.Name, Email: reg.Email}, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, reg domain.Registration) (*domain.User, *domain.Credential, error) {
	u, err := f.Register(ctx, reg)
	if err != nil {
		return nil, nil, err
	}
	if f.signUpErr != nil {
		return nil, nil, f.signUpErr
	}
	f.authenticated = true
	return u, &domain.Credential{AccessToken: "tok"}, nil
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (*domain.Credential, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.authenticated = true
	return &domain.Credential{AccessToken: "tok"}, nil
}

func (f *fakeAuth) Logout(context.Context) {
	f.logouts++
	f.authenticated = false
}

func (f *fakeAuth) CurrentUser(context.Context) (*domain.User, error) {
	return f.user, f.currentErr
}

func (f *fakeAuth) IsAuthenticated() bool { return f.authenticated }

// fakeEvents answers from funcs so tests can block or fail individual calls.
type fakeEvents struct {
	list    func(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)
	get     func(ctx context.Context, id int64) (*domain.Event, error)
	created []domain.EventCreate
	updated []domain.EventUpdate
	deleted []int64
	err     error
}

func (f *fakeEvents) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	return f.list(ctx, filter)
}

func (f *fakeEvents) Get(ctx context.Context, id int64) (*domain.Event, error) {
	return f.get(ctx, id)
}

func (f *fakeEvents) Create(_ context.Context, in domain.EventCreate) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &domain.Event{ID: int64(len(f.created)), Place: in.Place, Status: in.Status}, nil
}

func (f *fakeEvents) Update(_ context.Context, id int64, in domain.EventUpdate) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, in)
	ev := &domain.Event{ID: id}
	if in.Place != nil {
		ev.Place = *in.Place
	}
	return ev, nil
}

func (f *fakeEvents) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeParticipants struct {
	mu      sync.Mutex
	byEvent map[int64][]*domain.ParticipantWithUser
	nextID  int64
	lists   int
	err     error
	listErr error
}

func newFakeParticipants() *fakeParticipants {
	return &fakeParticipants{byEvent: map[int64][]*domain.ParticipantWithUser{}}
}

func (f *fakeParticipants) List(_ context.Context, eventID int64) ([]*domain.ParticipantWithUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*domain.ParticipantWithUser{}, f.byEvent[eventID]...), nil
}

func (f *fakeParticipants) Add(_ context.Context, eventID int64, in domain.ParticipantCreate) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	p := domain.Participant{ID: f.nextID, EventID: eventID, UserID: in.UserID, PaidAmount: in.PaidAmount}
	f.byEvent[eventID] = append(f.byEvent[eventID], &domain.ParticipantWithUser{Participant: p})
	return &p, nil
}

func (f *fakeParticipants) Update(_ context.Context, eventID, pid int64, in domain.ParticipantUpdate) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byEvent[eventID] {
		if p.ID == pid {
			if in.PaidAmount != nil {
				p.PaidAmount = *in.PaidAmount
			}
			out := p.Participant
			return &out, nil
		}
	}
	return nil, &domain.APIError{Kind: domain.KindNotFound, Detail: "Participant not found"}
}

func (f *fakeParticipants) Remove(_ context.Context, eventID, pid int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.byEvent[eventID]
	for i, p := range list {
		if p.ID == pid {
			f.byEvent[eventID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return &domain.APIError{Kind: domain.KindNotFound, Detail: "Participant not found"}
}

func notFound(detail string) error {
	return &domain.APIError{Kind: domain.KindNotFound, StatusCode: 404, Detail: detail}
}

func ptr[T any](v T) *T { return &v }
