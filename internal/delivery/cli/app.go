// Package cli is the kaigi command line: each command opens the matching screen and
// drives it the way a user would.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"kaiginote/config"
	"kaiginote/internal/adapters/api"
	"kaiginote/internal/adapters/storage/sqlite"
	"kaiginote/internal/delivery/views"
	"kaiginote/internal/domain"
	"kaiginote/internal/services"
	"kaiginote/internal/session"
)

// App is the wired client.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	Storage      *sqlite.LocalStorage
	Tokens       *session.TokenStore
	Router       *views.Router
	Client       *api.Client
	Auth         domain.AuthService
	Events       domain.EventService
	Participants domain.ParticipantService
}

// NewApp opens local storage, restores the session and wires the services.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	origin, err := session.OriginOf(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	storage, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	tokens, err := session.Open(ctx, storage, origin, logger)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	router := views.NewRouter(tokens.Authenticated, logger)
	registry := prometheus.NewRegistry()
	client, err := api.New(cfg.APIURL, tokens,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithNavigator(router),
		api.WithLogger(logger),
		api.WithRegisterer(registry),
	)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		Registry:     registry,
		Storage:      storage,
		Tokens:       tokens,
		Router:       router,
		Client:       client,
		Auth:         services.NewAuthService(client, tokens, logger),
		Events:       services.NewEventService(client),
		Participants: services.NewParticipantService(client),
	}, nil
}

// Close releases local storage.
func (a *App) Close() error {
	return a.Storage.Close()
}

// open navigates to route and fails when the guard sends the user elsewhere.
func (a *App) open(route string) error {
	d := a.Router.Open(route)
	if d.Target != route {
		return fmt.Errorf("%s is not available: redirected to %s", route, d.Target)
	}
	return nil
}
