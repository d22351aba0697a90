package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/common"
)

// FilmSource provides the cached catalog.
type FilmSource interface {
	Films() []models.Film
}

// IndexSource provides a user's (film → status) map. Implementations cache
// it and refetch only when a mutation made it stale.
type IndexSource interface {
	Index(ctx context.Context, userID int64) (map[int64]models.Status, error)
}

// Identity provides the signed-in user, nil when anonymous.
type Identity interface {
	CurrentUser() *models.User
}

// View is one rendering of the catalog screen. Message is set only when
// Empty is true.
type View struct {
	Filter  models.Filter
	Header  string
	Films   []models.Film
	Empty   bool
	Message string
}

// Browser holds the active filter over the catalog. Changing the filter
// never refetches the catalog; the watchlist index is consulted only for
// list filters.
type Browser struct {
	films    FilmSource
	index    IndexSource
	identity Identity

	mu     sync.Mutex
	filter models.Filter
}

func NewBrowser(films FilmSource, index IndexSource, identity Identity) *Browser {
	return &Browser{films: films, index: index, identity: identity, filter: models.FilterAll}
}

func (b *Browser) Filter() models.Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// SetFilter changes the active filter.
func (b *Browser) SetFilter(f models.Filter) error {
	if _, err := models.ParseFilter(string(f)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidFilter, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
	return nil
}

// View projects the catalog through the active filter.
func (b *Browser) View(ctx context.Context) (View, error) {
	filter := b.Filter()
	v := View{Filter: filter, Header: HeaderLabel(filter)}
	user := b.identity.CurrentUser()

	switch {
	case filter == models.FilterAll:
		v.Films = b.films.Films()
	case user == nil:
		v.Films = []models.Film{}
	default:
		idx, err := b.index.Index(ctx, user.ID)
		if err != nil {
			return v, fmt.Errorf("load list: %w", err)
		}
		v.Films = Project(b.films.Films(), filter, idx)
	}

	if len(v.Films) == 0 {
		v.Empty = true
		v.Message = EmptyStateMessage(filter, user != nil)
	}
	return v, nil
}
