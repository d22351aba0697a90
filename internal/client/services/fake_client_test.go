package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/client/repositories/storage"
	"github.com/dmitrijs2005/filmrate/internal/client/session"
	"github.com/dmitrijs2005/filmrate/internal/common"
)

// fakeClient implements client.Client. Unset hooks return zero values.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	listFilms   func() ([]models.Film, error)
	createFilm  func(models.FilmInput) error
	updateFilm  func(int64, models.FilmInput) error
	deleteFilm  func(int64) error
	register    func(models.Registration) (*models.User, error)
	login       func(models.Credentials) (*models.User, error)
	listUsers   func() ([]models.User, error)
	updateRole  func(int64, models.Role) error
	deleteUser  func(int64) error
	createRev   func(models.ReviewInput) error
	filmReviews func(int64) ([]models.Review, error)
	userReviews func(int64) ([]models.Review, error)
	updateRev   func(int64, models.ReviewUpdate) error
	deleteRev   func(int64) error
	addItem     func(models.WatchlistItem) (*models.WatchlistItem, error)
	pairStatus  func(int64, int64) (*models.Status, error)
	userList    func(int64) ([]models.WatchlistItem, error)
	updateItem  func(int64, models.WatchlistUpdate) error
	removeItem  func(int64) error
}

func (f *fakeClient) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) ListFilms(context.Context) ([]models.Film, error) {
	f.record("ListFilms")
	if f.listFilms == nil {
		return []models.Film{}, nil
	}
	return f.listFilms()
}

func (f *fakeClient) GetFilm(_ context.Context, id int64) (*models.Film, error) {
	f.record("GetFilm %d", id)
	return &models.Film{ID: id}, nil
}

func (f *fakeClient) CreateFilm(_ context.Context, in models.FilmInput) error {
	f.record("CreateFilm %s", in.Title)
	if f.createFilm == nil {
		return nil
	}
	return f.createFilm(in)
}

func (f *fakeClient) UpdateFilm(_ context.Context, id int64, in models.FilmInput) error {
	f.record("UpdateFilm %d", id)
	if f.updateFilm == nil {
		return nil
	}
	return f.updateFilm(id, in)
}

func (f *fakeClient) DeleteFilm(_ context.Context, id int64) error {
	f.record("DeleteFilm %d", id)
	if f.deleteFilm == nil {
		return nil
	}
	return f.deleteFilm(id)
}

func (f *fakeClient) Register(_ context.Context, in models.Registration) (*models.User, error) {
	f.record("Register %s", in.Email)
	return f.register(in)
}

func (f *fakeClient) Login(_ context.Context, in models.Credentials) (*models.User, error) {
	f.record("Login %s", in.Email)
	return f.login(in)
}

func (f *fakeClient) ListUsers(context.Context) ([]models.User, error) {
	f.record("ListUsers")
	if f.listUsers == nil {
		return nil, nil
	}
	return f.listUsers()
}

func (f *fakeClient) UpdateUserRole(_ context.Context, id int64, role models.Role) error {
	f.record("UpdateUserRole %d %s", id, role)
	if f.updateRole == nil {
		return nil
	}
	return f.updateRole(id, role)
}

func (f *fakeClient) DeleteUser(_ context.Context, id int64) error {
	f.record("DeleteUser %d", id)
	if f.deleteUser == nil {
		return nil
	}
	return f.deleteUser(id)
}

func (f *fakeClient) CreateReview(_ context.Context, in models.ReviewInput) error {
	f.record("CreateReview %d %d", in.FilmID, in.Rating)
	if f.createRev == nil {
		return nil
	}
	return f.createRev(in)
}

func (f *fakeClient) FilmReviews(_ context.Context, filmID int64) ([]models.Review, error) {
	f.record("FilmReviews %d", filmID)
	if f.filmReviews == nil {
		return []models.Review{}, nil
	}
	return f.filmReviews(filmID)
}

func (f *fakeClient) UserReviews(_ context.Context, userID int64) ([]models.Review, error) {
	f.record("UserReviews %d", userID)
	if f.userReviews == nil {
		return []models.Review{}, nil
	}
	return f.userReviews(userID)
}

func (f *fakeClient) UpdateReview(_ context.Context, id int64, in models.ReviewUpdate) error {
	f.record("UpdateReview %d %d", id, in.Rating)
	if f.updateRev == nil {
		return nil
	}
	return f.updateRev(id, in)
}

func (f *fakeClient) DeleteReview(_ context.Context, id int64) error {
	f.record("DeleteReview %d", id)
	if f.deleteRev == nil {
		return nil
	}
	return f.deleteRev(id)
}

func (f *fakeClient) AddToWatchlist(_ context.Context, item models.WatchlistItem) (*models.WatchlistItem, error) {
	f.record("AddToWatchlist %d %s", item.FilmID, item.Status)
	return f.addItem(item)
}

func (f *fakeClient) WatchlistStatus(_ context.Context, userID, filmID int64) (*models.Status, error) {
	f.record("WatchlistStatus %d %d", userID, filmID)
	return f.pairStatus(userID, filmID)
}

func (f *fakeClient) UserWatchlist(_ context.Context, userID int64) ([]models.WatchlistItem, error) {
	f.record("UserWatchlist %d", userID)
	if f.userList == nil {
		return []models.WatchlistItem{}, nil
	}
	return f.userList(userID)
}

func (f *fakeClient) UpdateWatchlistItem(_ context.Context, id int64, in models.WatchlistUpdate) error {
	f.record("UpdateWatchlistItem %d %s", id, in.Status)
	if f.updateItem == nil {
		return nil
	}
	return f.updateItem(id, in)
}

func (f *fakeClient) RemoveFromWatchlist(_ context.Context, id int64) error {
	f.record("RemoveFromWatchlist %d", id)
	if f.removeItem == nil {
		return nil
	}
	return f.removeItem(id)
}

var _ client.Client = (*fakeClient)(nil)

var (
	alice = models.User{ID: 7, Email: "alice@filmrate.dev", Role: models.RoleUser}
	root  = models.User{ID: 1, Email: "root@filmrate.dev", Role: models.RoleAdmin}
)

// newSession returns a resolved session signed in as u, or anonymous when u
// is nil.
func newSession(t *testing.T, u *models.User) *session.Store {
	t.Helper()
	repo := storage.NewMemoryRepository()
	if u != nil {
		data, err := json.Marshal(u)
		require.NoError(t, err)
		require.NoError(t, repo.Set(context.Background(), common.SessionNamespace, data))
	}
	s := session.NewStore(repo, nil)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func statusPtr(s models.Status) *models.Status { return &s }
