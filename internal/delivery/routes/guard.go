// Package routes decides whether a navigation may proceed for the current session.
package routes

import (
	"strconv"
	"strings"

	"kaiginote/internal/domain"
)

// Action is the outcome of a guard check.
type Action int

const (
	Allow Action = iota
	RedirectToLogin
	RedirectToHome
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToHome:
		return "redirect_to_home"
	default:
		return "unknown"
	}
}

// Decision is what the router does with a navigation target.
type Decision struct {
	Action Action
	// Target is where the router ends up: the requested route when allowed,
	// otherwise the redirect destination.
	Target string
}

// Kind classifies a route.
type Kind int

const (
	KindUnknown Kind = iota
	KindHome
	KindLogin
	KindRegister
	KindEventCreate
	KindEventDetail
	KindEventEdit
)

// Route is a parsed navigation target.
type Route struct {
	Kind    Kind
	EventID int64
}

// Parse classifies target. Query strings and fragments are ignored, as is a trailing slash.
func Parse(target string) Route {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if target != "/" {
		target = strings.TrimSuffix(target, "/")
	}
	switch target {
	case domain.RouteHome, "":
		return Route{Kind: KindHome}
	case domain.RouteLogin:
		return Route{Kind: KindLogin}
	case domain.RouteRegister:
		return Route{Kind: KindRegister}
	case domain.RouteEventCreate:
		return Route{Kind: KindEventCreate}
	}

	parts := strings.Split(strings.TrimPrefix(target, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "events" {
		return Route{Kind: KindUnknown}
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id < 1 {
		return Route{Kind: KindUnknown}
	}
	if len(parts) == 2 {
		return Route{Kind: KindEventDetail, EventID: id}
	}
	if parts[2] == "edit" {
		return Route{Kind: KindEventEdit, EventID: id}
	}
	return Route{Kind: KindUnknown}
}

// Protected reports whether the route needs a session.
func (r Route) Protected() bool {
	switch r.Kind {
	case KindEventCreate, KindEventDetail, KindEventEdit:
		return true
	}
	return false
}

// GuestOnly reports whether the route is meant for visitors without a session.
func (r Route) GuestOnly() bool {
	return r.Kind == KindLogin || r.Kind == KindRegister
}

// Guard decides a navigation to target. It holds no state.
func Guard(isAuthenticated bool, target string) Decision {
	r := Parse(target)
	switch {
	case r.Protected() && !isAuthenticated:
		return Decision{Action: RedirectToLogin, Target: domain.RouteLogin}
	case r.GuestOnly() && isAuthenticated:
		return Decision{Action: RedirectToHome, Target: domain.RouteHome}
	}
	return Decision{Action: Allow, Target: target}
}

// EventPath returns the detail route of an event.
func EventPath(id int64) string {
	return "/events/" + strconv.FormatInt(id, 10)
}

// EventEditPath returns the edit route of an event.
func EventEditPath(id int64) string {
	return EventPath(id) + "/edit"
}
