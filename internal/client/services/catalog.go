package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/client/session"
	"github.com/dmitrijs2005/filmrate/internal/logging"
	"github.com/dmitrijs2005/filmrate/internal/validation"
)

// CatalogState describes the last catalog load. Err is set when the last
// load failed; the previously loaded films stay available and Load may be
// retried.
type CatalogState struct {
	Loaded bool
	Err    error
}

// Catalog caches the full film collection.
type Catalog struct {
	client  client.Client
	session SessionStore
	logger  logging.Logger

	mu    sync.RWMutex
	films []models.Film
	state CatalogState
}

func NewCatalog(c client.Client, s SessionStore, logger logging.Logger) *Catalog {
	return &Catalog{client: c, session: s, logger: logging.OrDiscard(logger).With("service", "catalog")}
}

// Load fetches every film, replacing the cache. It refuses to run before
// the session is resolved.
func (c *Catalog) Load(ctx context.Context) error {
	if !c.session.Resolved() {
		return session.ErrUnresolved
	}

	films, err := c.client.ListFilms(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state.Err = err
		c.logger.Warn(ctx, "catalog load failed", "error", err)
		return fmt.Errorf("load catalog: %w", err)
	}

	c.films = films
	c.state = CatalogState{Loaded: true}
	c.logger.Debug(ctx, "catalog loaded", "films", len(films))
	return nil
}

// Films returns the cached films in store order.
func (c *Catalog) Films() []models.Film {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.films)
}

func (c *Catalog) Film(id int64) (models.Film, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.films {
		if f.ID == id {
			return f, true
		}
	}
	return models.Film{}, false
}

func (c *Catalog) State() CatalogState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// admin runs a validated admin-only mutation, then reloads the catalog.
func (c *Catalog) admin(ctx context.Context, op string, in *models.FilmInput, call func() error) error {
	if p := c.session.Authorize(session.RequireAdmin); !p.Granted() {
		return p.Err()
	}
	if in != nil {
		if err := validation.Struct(*in); err != nil {
			return err
		}
	}
	if err := call(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.logger.Info(ctx, "catalog changed", "op", op)
	return c.Load(ctx)
}

func (c *Catalog) CreateFilm(ctx context.Context, in models.FilmInput) error {
	return c.admin(ctx, "create film", &in, func() error {
		return c.client.CreateFilm(ctx, in)
	})
}

func (c *Catalog) UpdateFilm(ctx context.Context, id int64, in models.FilmInput) error {
	return c.admin(ctx, "update film", &in, func() error {
		return c.client.UpdateFilm(ctx, id, in)
	})
}

func (c *Catalog) DeleteFilm(ctx context.Context, id int64) error {
	return c.admin(ctx, "delete film", nil, func() error {
		return c.client.DeleteFilm(ctx, id)
	})
}
