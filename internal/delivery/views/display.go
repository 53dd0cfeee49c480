// Package views holds the stateful screens that drive the client core: each one calls the
// services, keeps the latest snapshot it was given and turns failures into inline messages.
package views

import (
	"sync"

	"kaiginote/internal/domain"
)

// TimeLayout is how event times are shown.
const TimeLayout = "2006-01-02 15:04"

// StatusLabel returns the display label of a status, or the raw value when it is not one we know.
func StatusLabel(s domain.EventStatus) string {
	return s.Label()
}

// FormatTime renders t in TimeLayout, or an empty string for the zero time.
func FormatTime(t domain.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// sequence stamps loads so only the latest one may update a view.
type sequence struct {
	mu   sync.Mutex
	last uint64
}

func (s *sequence) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

func (s *sequence) latest(n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return n == s.last
}
