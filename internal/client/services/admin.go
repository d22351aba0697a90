package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/client/session"
	"github.com/dmitrijs2005/filmrate/internal/common"
	"github.com/dmitrijs2005/filmrate/internal/logging"
)

// AdminService manages user accounts. Every method requires the admin role,
// and an admin can neither change their own role nor delete their own
// account; both are rejected before the store is contacted.
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, userID int64, role models.Role) error
	ToggleRole(ctx context.Context, user models.User) (models.Role, error)
	DeleteUser(ctx context.Context, userID int64) error
}

type adminService struct {
	client  client.Client
	session SessionStore
	logger  logging.Logger
}

func NewAdminService(c client.Client, s SessionStore, logger logging.Logger) AdminService {
	return &adminService{client: c, session: s, logger: logging.OrDiscard(logger).With("service", "admin")}
}

// authorize grants an admin action on target; target 0 means no account
// is touched.
func (a *adminService) authorize(target int64) (*models.User, error) {
	p := a.session.Authorize(session.RequireAdmin)
	if !p.Granted() {
		return nil, p.Err()
	}
	u := p.User()
	if target != 0 && target == u.ID {
		return nil, common.ErrSelfModification
	}
	return u, nil
}

func (a *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	if _, err := a.authorize(0); err != nil {
		return nil, err
	}
	users, err := a.client.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (a *adminService) SetRole(ctx context.Context, userID int64, role models.Role) error {
	admin, err := a.authorize(userID)
	if err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	if err := a.client.UpdateUserRole(ctx, userID, role); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	a.logger.Info(ctx, "role changed", "admin_id", admin.ID, "user_id", userID, "role", role)
	return nil
}

// ToggleRole flips user between the user and admin roles and returns the
// new role.
func (a *adminService) ToggleRole(ctx context.Context, user models.User) (models.Role, error) {
	next := user.Role.Toggled()
	if err := a.SetRole(ctx, user.ID, next); err != nil {
		return user.Role, err
	}
	return next, nil
}

func (a *adminService) DeleteUser(ctx context.Context, userID int64) error {
	admin, err := a.authorize(userID)
	if err != nil {
		return err
	}
	if err := a.client.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	a.logger.Info(ctx, "user deleted", "admin_id", admin.ID, "user_id", userID)
	return nil
}
