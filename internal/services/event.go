package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"kaiginote/internal/adapters/api"
	"kaiginote/internal/domain"
)

const eventsEndpoint = "/api/events"

type eventService struct {
	api Requester
}

// NewEventService creates the EventService.
func NewEventService(requester Requester) domain.EventService {
	return &eventService{api: requester}
}

func eventPath(id int64) string {
	return fmt.Sprintf("%s/%d", eventsEndpoint, id)
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	q := url.Values{}
	if filter.Keyword != "" {
		q.Set("keyword", filter.Keyword)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Skip > 0 {
		q.Set("skip", strconv.Itoa(filter.Skip))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	var events []*domain.Event
	err := s.api.Do(ctx, api.Request{
		Method:   http.MethodGet,
		Path:     eventsEndpoint,
		Query:    q,
		Fallback: "failed to fetch events",
	}, &events)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	var ev domain.Event
	err := s.api.Do(ctx, api.Request{
		Method:   http.MethodGet,
		Path:     eventPath(id),
		Route:    eventsEndpoint + "/{id}",
		Fallback: "failed to fetch event",
	}, &ev)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *eventService) Create(ctx context.Context, in domain.EventCreate) (*domain.Event, error) {
	var ev domain.Event
	err := s.api.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     eventsEndpoint,
		Body:     in,
		Fallback: "failed to create event",
	}, &ev)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *eventService) Update(ctx context.Context, id int64, in domain.EventUpdate) (*domain.Event, error) {
	var ev domain.Event
	err := s.api.Do(ctx, api.Request{
		Method:   http.MethodPut,
		Path:     eventPath(id),
		Route:    eventsEndpoint + "/{id}",
		Body:     in,
		Fallback: "failed to update event",
	}, &ev)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *eventService) Delete(ctx context.Context, id int64) error {
	return s.api.Do(ctx, api.Request{
		Method:   http.MethodDelete,
		Path:     eventPath(id),
		Route:    eventsEndpoint + "/{id}",
		Fallback: "failed to delete event",
	}, nil)
}
