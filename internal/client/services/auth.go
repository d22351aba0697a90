package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/logging"
	"github.com/dmitrijs2005/filmrate/internal/validation"
)

// AuthService signs users in and out.
//
// Register and Login hand the identity returned by the store to the session,
// which persists it. Input is validated locally before any remote call.
type AuthService interface {
	Register(ctx context.Context, email, password, adminKey string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session SessionStore
	logger  logging.Logger
}

func NewAuthService(c client.Client, s SessionStore, logger logging.Logger) AuthService {
	return &authService{client: c, session: s, logger: logging.OrDiscard(logger).With("service", "auth")}
}

func (a *authService) Register(ctx context.Context, email, password, adminKey string) (*models.User, error) {
	in := models.Registration{
		Email:    strings.TrimSpace(email),
		Password: password,
		AdminKey: strings.TrimSpace(adminKey),
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := a.client.Register(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := a.session.Register(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	in := models.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := a.client.Login(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := a.session.Login(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}
