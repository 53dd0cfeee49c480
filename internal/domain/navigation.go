package domain

// Route paths of the client views.
const (
	RouteHome        = "/"
	RouteLogin       = "/login"
	RouteRegister    = "/register"
	RouteEventCreate = "/events/create"
)
