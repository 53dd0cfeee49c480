package domain

import (
	"context"
	"regexp"
	"strings"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User is the identity record owned by the service. The client never edits it.
type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
	UpdatedAt Timestamp `json:"updated_at" yaml:"updated_at"`
}

// Credential is the bearer token proving an authenticated session.
type Credential struct {
	AccessToken string `json:"access_token" yaml:"access_token"`
	TokenType   string `json:"token_type" yaml:"token_type"`
}

// AuthorizationHeader returns the Authorization header value for c.
// The service answers token_type "bearer"; the header scheme is sent as "Bearer".
func (c Credential) AuthorizationHeader() string {
	scheme := c.TokenType
	if scheme == "" || strings.EqualFold(scheme, "bearer") {
		scheme = "Bearer"
	}
	return scheme + " " + c.AccessToken
}

// Registration is the sign-up form input.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the form locally so that rejected input never reaches the network.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name is required")
	}
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return NewValidationError("email is required")
	}
	if !emailRegexp.MatchString(email) {
		return NewValidationError("invalid email format")
	}
	if r.Password != r.ConfirmPassword {
		return NewValidationError("passwords do not match")
	}
	if len(r.Password) < minPasswordLen {
		return NewValidationError("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// LocalStorage is durable, origin-scoped key/value storage (the browser localStorage contract).
type LocalStorage interface {
	GetItem(ctx context.Context, origin, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, origin, key, value string) error
	RemoveItem(ctx context.Context, origin, key string) error
}

// TokenStore holds the current session credential.
type TokenStore interface {
	Get() (Credential, bool)
	Set(cred Credential) error
	Clear() error
}

// Navigator moves the client to a route. The central 401 handler uses it to force the login view.
type Navigator interface {
	Navigate(route string)
}

// AuthService owns login, registration, logout and identity resolution.
type AuthService interface {
	// Register creates an account. It does not establish a session.
	Register(ctx context.Context, reg Registration) (*User, error)
	// SignUp registers and then logs in with the same credentials.
	SignUp(ctx context.Context, reg Registration) (*User, *Credential, error)
	Login(ctx context.Context, email, password string) (*Credential, error)
	// Logout notifies the service best-effort and always clears the local credential.
	Logout(ctx context.Context)
	// CurrentUser returns nil without error when there is no valid session.
	CurrentUser(ctx context.Context) (*User, error)
	IsAuthenticated() bool
}
