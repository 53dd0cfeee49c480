package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"kaiginote/internal/adapters/api"
	"kaiginote/internal/domain"
)

// Requester sends one request to the service. *api.Client implements it.
type Requester interface {
	Do(ctx context.Context, req api.Request, out any) error
}

type authService struct {
	api    Requester
	tokens domain.TokenStore
	logger *slog.Logger
}

// NewAuthService creates the AuthService. It is the only writer of tokens besides
// the api client's 401 handler.
func NewAuthService(requester Requester, tokens domain.TokenStore, logger *slog.Logger) domain.AuthService {
	return &authService{
		api:    requester,
		tokens: tokens,
		logger: logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *authService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	var user domain.User
	err := s.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		Body: registerRequest{
			Name:     strings.TrimSpace(reg.Name),
			Email:    strings.TrimSpace(reg.Email),
			Password: reg.Password,
		},
		Fallback:        "registration failed",
		NoSessionPolicy: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "registered user", "user_id", user.ID)
	return &user, nil
}

func (s *authService) SignUp(ctx context.Context, reg domain.Registration) (*domain.User, *domain.Credential, error) {
	user, err := s.Register(ctx, reg)
	if err != nil {
		return nil, nil, err
	}
	cred, err := s.Login(ctx, strings.TrimSpace(reg.Email), reg.Password)
	if err != nil {
		return user, nil, err
	}
	return user, cred, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Credential, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}
	var cred domain.Credential
	err := s.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		// The service reads OAuth2 password-form fields; the email goes in "username".
		Form:            url.Values{"username": {email}, "password": {password}},
		Fallback:        "login failed",
		NoSessionPolicy: true,
	}, &cred)
	if err != nil {
		return nil, err
	}
	if cred.AccessToken == "" {
		return nil, &domain.APIError{Kind: domain.KindServer, Detail: "login failed", Err: errors.New("empty access token")}
	}
	if err := s.tokens.Set(cred); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	s.logger.InfoContext(ctx, "logged in")
	return &cred, nil
}

func (s *authService) Logout(ctx context.Context) {
	err := s.api.Do(ctx, api.Request{
		Method:          http.MethodPost,
		Path:            "/api/auth/logout",
		Fallback:        "logout failed",
		NoSessionPolicy: true,
	}, nil)
	if err != nil {
		s.logger.WarnContext(ctx, "logout notification failed", "err", err)
	}
	if err := s.tokens.Clear(); err != nil {
		s.logger.WarnContext(ctx, "failed to clear credential", "err", err)
	}
	s.logger.InfoContext(ctx, "logged out")
}

func (s *authService) CurrentUser(ctx context.Context) (*domain.User, error) {
	if _, ok := s.tokens.Get(); !ok {
		return nil, nil
	}
	var user domain.User
	err := s.api.Do(ctx, api.Request{
		Method:          http.MethodGet,
		Path:            "/api/users/me",
		Fallback:        "failed to fetch current user",
		NoSessionPolicy: true,
	}, &user)
	if errors.Is(err, domain.ErrAuth) {
		// Probing identity without a valid session is expected; it means "anonymous".
		if cerr := s.tokens.Clear(); cerr != nil {
			s.logger.WarnContext(ctx, "failed to clear credential", "err", cerr)
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *authService) IsAuthenticated() bool {
	_, ok := s.tokens.Get()
	return ok
}
