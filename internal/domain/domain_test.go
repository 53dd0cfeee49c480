package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_IsMatchesKind(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want error
	}{
		{KindValidation, ErrValidation},
		{KindAuth, ErrAuth},
		{KindNotFound, ErrNotFound},
		{KindNetwork, ErrNetwork},
		{KindServer, ErrServer},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &APIError{Kind: tt.kind, Detail: "d"})
			assert.ErrorIs(t, err, tt.want)
			for _, other := range tests {
				if other.kind != tt.kind {
					assert.NotErrorIs(t, err, other.want)
				}
			}
		})
	}
}

func TestAPIError_DetailAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &APIError{Kind: KindNetwork, Detail: "failed to fetch events", Err: cause}
	assert.Equal(t, "failed to fetch events", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "failed to fetch events", DetailOf(err, "fallback"))
	assert.Equal(t, "fallback", DetailOf(errors.New("plain"), "fallback"))
	assert.Equal(t, "fallback", DetailOf(&APIError{Kind: KindServer}, "fallback"))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-05-01T18:00:00",
		"2024-05-01T18:00:00.000000",
		"2024-05-01T18:00:00Z",
		"2024-05-01T20:00:00+02:00",
		"2024-05-01T18:00",
		"2024-05-01 18:00:00",
		"2024-05-01 18:00",
	} {
		ts, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, ts.Equal(want), s)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_JSON(t *testing.T) {
	var ev struct {
		Start Timestamp  `json:"start"`
		End   *Timestamp `json:"end"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2024-05-01T18:00:00.123456","end":null}`), &ev))
	assert.Equal(t, 123456000, ev.Start.Nanosecond())
	assert.Nil(t, ev.End)

	out, err := json.Marshal(NewTimestamp(time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-05-01T18:00:00Z"`, string(out))

	out, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`12`), &bad))
}

func TestRegistration_Validate(t *testing.T) {
	ok := Registration{Name: "Taro", Email: "taro@example.com", Password: "password123", ConfirmPassword: "password123"}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name   string
		mutate func(*Registration)
		detail string
	}{
		{"name", func(r *Registration) { r.Name = " " }, "name is required"},
		{"email", func(r *Registration) { r.Email = "" }, "email is required"},
		{"email format", func(r *Registration) { r.Email = "taro@" }, "invalid email format"},
		{"mismatch first", func(r *Registration) { r.Password, r.ConfirmPassword = "short", "shorter" }, "passwords do not match"},
		{"length", func(r *Registration) { r.Password, r.ConfirmPassword = "short", "short" }, "password must be at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ok
			tt.mutate(&r)
			err := r.Validate()
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.detail, err.Error())
		})
	}
}

func TestCredential_AuthorizationHeader(t *testing.T) {
	assert.Equal(t, "Bearer abc", Credential{AccessToken: "abc", TokenType: "bearer"}.AuthorizationHeader())
	assert.Equal(t, "Bearer abc", Credential{AccessToken: "abc"}.AuthorizationHeader())
}

func TestEventCreate_Validate(t *testing.T) {
	start := NewTimestamp(time.Date(2025, 5, 1, 19, 0, 0, 0, time.UTC))
	end := NewTimestamp(start.Add(time.Hour))
	ok := EventCreate{StartTime: start, EndTime: end, Place: "Tokyo Room A"}
	require.NoError(t, ok.Validate())

	same := ok
	same.EndTime = start
	require.NoError(t, same.Validate(), "start equal to end is allowed")

	tests := []struct {
		name   string
		mutate func(*EventCreate)
	}{
		{"place", func(c *EventCreate) { c.Place = "" }},
		{"missing time", func(c *EventCreate) { c.EndTime = Timestamp{} }},
		{"reversed", func(c *EventCreate) { c.StartTime, c.EndTime = end, start }},
		{"negative cost", func(c *EventCreate) { c.TotalCost = -1 }},
		{"unknown status", func(c *EventCreate) { c.Status = "postponed" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ok
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrValidation)
		})
	}
}

func TestEventUpdate_ValidateAgainstCurrent(t *testing.T) {
	start := NewTimestamp(time.Date(2025, 5, 1, 19, 0, 0, 0, time.UTC))
	end := NewTimestamp(start.Add(2 * time.Hour))
	current := &Event{ID: 1, StartTime: start, EndTime: end, Place: "Room"}

	late := NewTimestamp(end.Add(time.Hour))
	assert.ErrorIs(t, EventUpdate{StartTime: &late}.Validate(current), ErrValidation)
	assert.NoError(t, EventUpdate{StartTime: &late, EndTime: &late}.Validate(current))

	assert.True(t, EventUpdate{}.Empty())
	cost := int64(0)
	assert.False(t, EventUpdate{TotalCost: &cost}.Empty())

	body, err := json.Marshal(EventUpdate{TotalCost: &cost})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_cost":0}`, string(body))
}

func TestEventStatus(t *testing.T) {
	for _, s := range EventStatuses {
		assert.True(t, s.Known())
	}
	assert.False(t, EventStatus("postponed").Known())
	assert.Equal(t, "Done", StatusDone.Label())
	assert.Equal(t, "postponed", EventStatus("postponed").Label())
}

func TestParticipant(t *testing.T) {
	assert.ErrorIs(t, ParticipantCreate{UserID: 0}.Validate(), ErrValidation)
	assert.ErrorIs(t, ParticipantCreate{UserID: 1, PaidAmount: -5}.Validate(), ErrValidation)
	assert.NoError(t, ParticipantCreate{UserID: 1}.Validate())

	neg := int64(-1)
	assert.ErrorIs(t, ParticipantUpdate{PaidAmount: &neg}.Validate(), ErrValidation)

	list := []*ParticipantWithUser{
		{Participant: Participant{PaidAmount: 1000}},
		{Participant: Participant{PaidAmount: 2500}},
	}
	assert.Equal(t, int64(3500), TotalPaid(list))
	assert.Zero(t, TotalPaid(nil))
}

func TestPageParams(t *testing.T) {
	assert.Equal(t, PaginationParams{Skip: 0, Limit: 20}, PageParams(1, 20))
	assert.Equal(t, PaginationParams{Skip: 40, Limit: 20}, PageParams(3, 20))
	assert.Equal(t, PaginationParams{Skip: 0, Limit: 10}, PageParams(0, 10))
	assert.Equal(t, PaginationParams{}, PageParams(2, 0))
}
