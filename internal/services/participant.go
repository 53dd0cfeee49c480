package services

import (
	"context"
	"fmt"
	"net/http"

	"kaiginote/internal/adapters/api"
	"kaiginote/internal/domain"
)

const participantsRoute = eventsEndpoint + "/{id}/participants"

type participantService struct {
	api Requester
}

// NewParticipantService creates the ParticipantService.
func NewParticipantService(requester Requester) domain.ParticipantService {
	return &participantService{api: requester}
}

func participantsPath(eventID int64) string {
	return eventPath(eventID) + "/participants"
}

func participantPath(eventID, participantID int64) string {
	return fmt.Sprintf("%s/%d", participantsPath(eventID), participantID)
}

func (s *participantService) List(ctx context.Context, eventID int64) ([]*domain.ParticipantWithUser, error) {
	var participants []*domain.ParticipantWithUser
	err := s.api.Do(ctx, api.Request{
		Method:   http.MethodGet,
		Path:     participantsPath(eventID),
		Route:    participantsRoute,
		Fallback: "failed to fetch participants",
	}, &participants)
	if err != nil {
		return nil, err
	}
	if participants == nil {
		participants = []*domain.ParticipantWithUser{}
	}
	return participants, nil
}

func (s *participantService) Add(ctx context.Context, eventID int64, in domain.ParticipantCreate) (*domain.Participant, error) {
	var p domain.Participant
	err := s.api.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     participantsPath(eventID),
		Route:    participantsRoute,
		Body:     in,
		Fallback: "failed to add participant",
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *participantService) Update(ctx context.Context, eventID, participantID int64, in domain.ParticipantUpdate) (*domain.Participant, error) {
	var p domain.Participant
	err := s.api.Do(ctx, api.Request{
		Method:   http.MethodPut,
		Path:     participantPath(eventID, participantID),
		Route:    participantsRoute + "/{pid}",
		Body:     in,
		Fallback: "failed to update participant",
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *participantService) Remove(ctx context.Context, eventID, participantID int64) error {
	return s.api.Do(ctx, api.Request{
		Method:   http.MethodDelete,
		Path:     participantPath(eventID, participantID),
		Route:    participantsRoute + "/{pid}",
		Fallback: "failed to remove participant",
	}, nil)
}
