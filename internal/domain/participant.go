package domain

import "context"

// Participant is a user's attendance record for one event, carrying their paid contribution.
type Participant struct {
	ID         int64     `json:"id" yaml:"id"`
	EventID    int64     `json:"event_id" yaml:"event_id"`
	UserID     int64     `json:"user_id" yaml:"user_id"`
	PaidAmount int64     `json:"paid_amount" yaml:"paid_amount"`
	CreatedAt  Timestamp `json:"created_at" yaml:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at" yaml:"updated_at"`
}

// ParticipantWithUser is the read-only listing projection joined with the user's display name.
type ParticipantWithUser struct {
	Participant `yaml:",inline"`
	UserName    string `json:"user_name" yaml:"user_name"`
}

// ParticipantCreate is the payload for adding a participant.
type ParticipantCreate struct {
	UserID     int64 `json:"user_id"`
	PaidAmount int64 `json:"paid_amount"`
}

// Validate checks the add-participant form.
func (c ParticipantCreate) Validate() error {
	if c.UserID < 1 {
		return NewValidationError("user id must be positive")
	}
	if c.PaidAmount < 0 {
		return NewValidationError("paid amount must not be negative")
	}
	return nil
}

// ParticipantUpdate is a partial update; a nil PaidAmount is not sent.
type ParticipantUpdate struct {
	PaidAmount *int64 `json:"paid_amount,omitempty"`
}

// Validate checks the update form.
func (u ParticipantUpdate) Validate() error {
	if u.PaidAmount != nil && *u.PaidAmount < 0 {
		return NewValidationError("paid amount must not be negative")
	}
	return nil
}

// TotalPaid sums the contributions of ps.
func TotalPaid(ps []*ParticipantWithUser) int64 {
	var total int64
	for _, p := range ps {
		total += p.PaidAmount
	}
	return total
}

// ParticipantService performs typed operations on an event's participants.
type ParticipantService interface {
	List(ctx context.Context, eventID int64) ([]*ParticipantWithUser, error)
	Add(ctx context.Context, eventID int64, in ParticipantCreate) (*Participant, error)
	Update(ctx context.Context, eventID, participantID int64, in ParticipantUpdate) (*Participant, error)
	Remove(ctx context.Context, eventID, participantID int64) error
}
