package views

import (
	"context"
	"sync"

	"kaiginote/internal/domain"
)

// LoginView is the login form.
type LoginView struct {
	auth domain.AuthService
	nav  domain.Navigator

	mu     sync.Mutex
	errMsg string
}

func NewLoginView(auth domain.AuthService, nav domain.Navigator) *LoginView {
	return &LoginView{auth: auth, nav: nav}
}

// Submit logs in and moves to the event list. On failure the form keeps an inline message.
func (v *LoginView) Submit(ctx context.Context, email, password string) error {
	if _, err := v.auth.Login(ctx, email, password); err != nil {
		v.setError(domain.DetailOf(err, "login failed"))
		return err
	}
	v.setError("")
	v.nav.Navigate(domain.RouteHome)
	return nil
}

// ErrorMessage returns the inline message of the last failed submit.
func (v *LoginView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *LoginView) setError(msg string) {
	v.mu.Lock()
	v.errMsg = msg
	v.mu.Unlock()
}

// RegisterView is the registration form. A successful registration also logs in.
type RegisterView struct {
	auth domain.AuthService
	nav  domain.Navigator

	mu     sync.Mutex
	errMsg string
}

func NewRegisterView(auth domain.AuthService, nav domain.Navigator) *RegisterView {
	return &RegisterView{auth: auth, nav: nav}
}

// Submit registers, logs in and moves to the event list.
func (v *RegisterView) Submit(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	user, _, err := v.auth.SignUp(ctx, reg)
	if err != nil {
		v.setError(domain.DetailOf(err, "registration failed"))
		return user, err
	}
	v.setError("")
	v.nav.Navigate(domain.RouteHome)
	return user, nil
}

// ErrorMessage returns the inline message of the last failed submit.
func (v *RegisterView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *RegisterView) setError(msg string) {
	v.mu.Lock()
	v.errMsg = msg
	v.mu.Unlock()
}

// Link is one entry of the header navigation.
type Link struct {
	Label string
	Route string
}

// HeaderView is the navigation bar shown on every screen.
type HeaderView struct {
	auth domain.AuthService
	nav  domain.Navigator
}

func NewHeaderView(auth domain.AuthService, nav domain.Navigator) *HeaderView {
	return &HeaderView{auth: auth, nav: nav}
}

// Links returns the navigation entries for the current session.
func (v *HeaderView) Links() []Link {
	links := []Link{{Label: "Events", Route: domain.RouteHome}}
	if v.auth.IsAuthenticated() {
		return append(links, Link{Label: "New event", Route: domain.RouteEventCreate})
	}
	return append(links,
		Link{Label: "Log in", Route: domain.RouteLogin},
		Link{Label: "Register", Route: domain.RouteRegister},
	)
}

// Logout ends the session and shows the login form.
func (v *HeaderView) Logout(ctx context.Context) {
	v.auth.Logout(ctx)
	v.nav.Navigate(domain.RouteLogin)
}
