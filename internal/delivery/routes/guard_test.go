package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		target        string
		want          Decision
	}{
		{"detail without session", false, "/events/5", Decision{RedirectToLogin, "/login"}},
		{"create without session", false, "/events/create", Decision{RedirectToLogin, "/login"}},
		{"edit without session", false, "/events/5/edit", Decision{RedirectToLogin, "/login"}},
		{"detail with session", true, "/events/5", Decision{Allow, "/events/5"}},
		{"create with session", true, "/events/create", Decision{Allow, "/events/create"}},
		{"login with session", true, "/login", Decision{RedirectToHome, "/"}},
		{"register with session", true, "/register", Decision{RedirectToHome, "/"}},
		{"login without session", false, "/login", Decision{Allow, "/login"}},
		{"register without session", false, "/register", Decision{Allow, "/register"}},
		{"home without session", false, "/", Decision{Allow, "/"}},
		{"home with session", true, "/", Decision{Allow, "/"}},
		{"unknown path", false, "/nowhere", Decision{Allow, "/nowhere"}},
		{"non-numeric event id", false, "/events/abc", Decision{Allow, "/events/abc"}},
		{"trailing slash", false, "/events/5/", Decision{RedirectToLogin, "/login"}},
		{"query string", true, "/login?next=/events/5", Decision{RedirectToHome, "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.authenticated, tt.target))
		})
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, Route{Kind: KindEventDetail, EventID: 12}, Parse("/events/12"))
	assert.Equal(t, Route{Kind: KindEventEdit, EventID: 12}, Parse("/events/12/edit"))
	assert.Equal(t, Route{Kind: KindEventCreate}, Parse("/events/create"))
	assert.Equal(t, Route{Kind: KindUnknown}, Parse("/events/12/participants"))
	assert.Equal(t, Route{Kind: KindUnknown}, Parse("/events/0"))
	assert.Equal(t, Route{Kind: KindHome}, Parse("/"))
}

func TestEventPaths(t *testing.T) {
	assert.Equal(t, "/events/7", EventPath(7))
	assert.Equal(t, "/events/7/edit", EventEditPath(7))
}
