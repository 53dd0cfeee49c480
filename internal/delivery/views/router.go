package views

import (
	"log/slog"
	"sync"

	"kaiginote/internal/delivery/routes"
	"kaiginote/internal/domain"
)

var _ domain.Navigator = (*Router)(nil)

// Router applies the route guard to every navigation and remembers where the client is.
// It is safe for concurrent use; the api client may navigate from any goroutine.
type Router struct {
	isAuthenticated func() bool
	logger          *slog.Logger

	mu       sync.Mutex
	location string
	history  []string
}

// NewRouter returns a Router at the home route.
func NewRouter(isAuthenticated func() bool, logger *slog.Logger) *Router {
	return &Router{
		isAuthenticated: isAuthenticated,
		logger:          logger,
		location:        domain.RouteHome,
	}
}

// Navigate moves to target, or to wherever the guard redirects it.
func (r *Router) Navigate(target string) {
	r.Open(target)
}

// Open navigates like Navigate and reports the guard's decision.
func (r *Router) Open(target string) routes.Decision {
	d := routes.Guard(r.isAuthenticated(), target)
	if d.Action != routes.Allow {
		r.logger.Debug("navigation redirected", "target", target, "to", d.Target, "action", d.Action.String())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.location = d.Target
	r.history = append(r.history, d.Target)
	return d
}

// Location returns the current route.
func (r *Router) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

// History returns every route visited, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
