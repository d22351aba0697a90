package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
	"github.com/dmitrijs2005/filmrate/internal/client/config"
	"github.com/dmitrijs2005/filmrate/internal/client/repositories/storage"
	"github.com/dmitrijs2005/filmrate/internal/client/services"
	"github.com/dmitrijs2005/filmrate/internal/client/session"
	"github.com/dmitrijs2005/filmrate/internal/client/views"
	"github.com/dmitrijs2005/filmrate/internal/filex"
	"github.com/dmitrijs2005/filmrate/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger

	db     *sql.DB
	client client.Client

	session   *session.Store
	auth      services.AuthService
	admin     services.AdminService
	catalog   *services.Catalog
	reviews   *services.Reviews
	watchlist *services.Watchlist
	browser   *views.Browser

	reader   *bufio.Reader
	out      io.Writer
	gatherer prometheus.Gatherer
	cmds     []command
}

// NewApp opens the local database named by the config and connects the
// services to the store. An empty database path keeps the session in memory.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	var (
		db   *sql.DB
		repo storage.Repository
	)
	if c.DatabasePath == "" {
		repo = storage.NewMemoryRepository()
	} else {
		path, err := filex.EnsureParentDir(c.DatabasePath)
		if err != nil {
			return nil, err
		}
		db, err = client.InitDatabase(ctx, path)
		if err != nil {
			logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
			return nil, err
		}
		repo = storage.NewSQLiteRepository(db)
	}

	a, err := newApp(ctx, c, repo, os.Stdin, os.Stdout, logger)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}
	a.db = db
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, repo storage.Repository, in io.Reader, out io.Writer, logger logging.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)

	sess := session.NewStore(repo, logger)
	if err := sess.Init(ctx); err != nil {
		return nil, err
	}

	rest, err := client.NewRESTClient(c.ServerURL,
		client.WithIdentity(sess.CurrentUser),
		client.WithLogger(logger),
		client.WithSlowThreshold(c.RequestLogThreshold),
	)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:    c,
		logger:    logger,
		client:    rest,
		session:   sess,
		auth:      services.NewAuthService(rest, sess, logger),
		admin:     services.NewAdminService(rest, sess, logger),
		catalog:   services.NewCatalog(rest, sess, logger),
		reviews:   services.NewReviews(rest, sess, logger),
		watchlist: services.NewWatchlist(rest, sess, logger),
		reader:    bufio.NewReader(in),
		out:       out,
		gatherer:  prometheus.DefaultGatherer,
	}
	a.browser = views.NewBrowser(a.catalog, a.watchlist, sess)

	// A new or edited review changes the film card, so the catalog is
	// reloaded like after any other film change.
	a.reviews.OnChange(func(filmID int64) {
		if err := a.catalog.Load(context.Background()); err != nil {
			a.logger.Warn(context.Background(), "catalog reload failed", "film_id", filmID, "error", err)
		}
	})

	a.cmds = a.commandTable()
	return a, nil
}

// Run loads the catalog and serves the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to FilmRate. Type help for the list of commands.")
	if u := a.session.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s.\n", u.Email)
	}
	if err := a.catalog.Load(ctx); err != nil {
		fmt.Fprintln(a.out, catalogFailedMessage)
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close releases the store client and the local database.
func (a *App) Close() error {
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.session.CurrentUser() != nil
}

func (a *App) isAdmin() bool {
	return a.session.IsAdmin()
}

func (a *App) commands() []command {
	return a.cmds
}

// status is the prompt suffix naming the signed-in user.
func (a *App) status() string {
	u := a.session.CurrentUser()
	switch {
	case u == nil:
		return ""
	case u.IsAdmin():
		return fmt.Sprintf(" (%s, admin)", u.Email)
	default:
		return fmt.Sprintf(" (%s)", u.Email)
	}
}
