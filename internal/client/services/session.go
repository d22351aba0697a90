package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/client/session"
	"github.com/dmitrijs2005/filmrate/internal/common"
)

// SessionStore is the identity holder the services depend on. It is
// implemented by *session.Store.
type SessionStore interface {
	Resolved() bool
	CurrentUser() *models.User
	Authorize(req session.Requirement) session.Permission
	Login(ctx context.Context, u models.User) error
	Register(ctx context.Context, u models.User) error
	Logout(ctx context.Context) error
}

var _ SessionStore = (*session.Store)(nil)

// actingAs authorizes a user-level action performed on behalf of userID,
// which must be the signed-in user.
func actingAs(s SessionStore, userID int64) (*models.User, error) {
	p := s.Authorize(session.RequireUser)
	if !p.Granted() {
		return nil, p.Err()
	}
	u := p.User()
	if u.ID != userID {
		return nil, fmt.Errorf("act as user %d: %w", userID, common.ErrUnauthorized)
	}
	return u, nil
}
