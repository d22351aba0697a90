// Package session holds the signed-in identity of the CLI.
//
// The identity is persisted under common.SessionNamespace in local storage.
// Init reads it once, synchronously; until then every authorization check
// reports Unresolved so dependent components cannot run early.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/client/repositories/storage"
	"github.com/dmitrijs2005/filmrate/internal/common"
	"github.com/dmitrijs2005/filmrate/internal/logging"
)

type Store struct {
	repo   storage.Repository
	logger logging.Logger

	mu       sync.RWMutex
	user     *models.User
	resolved bool
}

func NewStore(repo storage.Repository, logger logging.Logger) *Store {
	return &Store{repo: repo, logger: logging.OrDiscard(logger).With("component", "session")}
}

// Init resolves the session from local storage. Only the first call reads;
// later calls return nil. A record that cannot be parsed is discarded and the
// session starts anonymous.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return nil
	}

	data, err := s.repo.Get(ctx, common.SessionNamespace)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	if data != nil {
		var u models.User
		if err := json.Unmarshal(data, &u); err != nil || u.ID == 0 || !u.Role.Valid() {
			s.logger.Warn(ctx, "discarding unreadable session record", "error", err)
			if err := s.repo.Delete(ctx, common.SessionNamespace); err != nil {
				return fmt.Errorf("discard session: %w", err)
			}
		} else {
			s.user = &u
			s.logger.Debug(ctx, "session restored", "user_id", u.ID, "role", u.Role)
		}
	}

	s.resolved = true
	return nil
}

// Resolved reports whether Init has completed.
func (s *Store) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// Login stores the identity the store returned for a successful login.
func (s *Store) Login(ctx context.Context, u models.User) error {
	return s.set(ctx, u)
}

// Register stores the identity of a freshly registered account.
func (s *Store) Register(ctx context.Context, u models.User) error {
	return s.set(ctx, u)
}

func (s *Store) set(ctx context.Context, u models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Set(ctx, common.SessionNamespace, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.user = &u
	s.resolved = true
	s.logger.Info(ctx, "signed in", "user_id", u.ID, "role", u.Role)
	return nil
}

// Logout clears the identity both in memory and in storage.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, common.SessionNamespace); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.user = nil
	s.logger.Info(ctx, "signed out")
	return nil
}

// CurrentUser returns a copy of the identity, or nil when anonymous.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) IsAdmin() bool {
	return s.CurrentUser().IsAdmin()
}

// Authorize checks the current identity against req once, for one action.
func (s *Store) Authorize(req Requirement) Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case !s.resolved:
		return Permission{Decision: Unresolved}
	case s.user == nil:
		return Permission{Decision: Unauthenticated}
	case req == RequireAdmin && !s.user.IsAdmin():
		return Permission{Decision: Unauthorized}
	}
	return Permission{Decision: Granted, user: s.user}
}
