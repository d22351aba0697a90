package client

import (
	"context"

	"github.com/dmitrijs2005/filmrate/internal/client/models"
)

// Client is the set of remote store operations the FilmRate core consumes.
// Admin-only calls rely on the store to check the role header.
type Client interface {
	Close() error

	ListFilms(ctx context.Context) ([]models.Film, error)
	GetFilm(ctx context.Context, id int64) (*models.Film, error)
	CreateFilm(ctx context.Context, in models.FilmInput) error
	UpdateFilm(ctx context.Context, id int64, in models.FilmInput) error
	DeleteFilm(ctx context.Context, id int64) error

	Register(ctx context.Context, in models.Registration) (*models.User, error)
	Login(ctx context.Context, in models.Credentials) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id int64, role models.Role) error
	DeleteUser(ctx context.Context, id int64) error

	CreateReview(ctx context.Context, in models.ReviewInput) error
	FilmReviews(ctx context.Context, filmID int64) ([]models.Review, error)
	UserReviews(ctx context.Context, userID int64) ([]models.Review, error)
	UpdateReview(ctx context.Context, id int64, in models.ReviewUpdate) error
	DeleteReview(ctx context.Context, id int64) error

	// AddToWatchlist creates a row and returns it with the id the store assigned.
	AddToWatchlist(ctx context.Context, item models.WatchlistItem) (*models.WatchlistItem, error)
	// WatchlistStatus returns the status for one (user, film) pair, nil for none.
	WatchlistStatus(ctx context.Context, userID, filmID int64) (*models.Status, error)
	UserWatchlist(ctx context.Context, userID int64) ([]models.WatchlistItem, error)
	UpdateWatchlistItem(ctx context.Context, id int64, in models.WatchlistUpdate) error
	RemoveFromWatchlist(ctx context.Context, id int64) error
}
