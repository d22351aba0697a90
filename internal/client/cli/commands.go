package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/client/services"
	"github.com/dmitrijs2005/filmrate/internal/common"
	"github.com/dmitrijs2005/filmrate/internal/metrics"
)

const catalogFailedMessage = "Films could not be loaded. Type films to retry."

func (a *App) commandTable() []command {
	return []command{
		{name: "register", usage: "register", help: "create an account and sign in", access: signedOut, run: a.Register},
		{name: "login", usage: "login", help: "sign in", access: signedOut, run: a.Login},
		{name: "logout", usage: "logout", help: "sign out", access: signedIn, run: a.Logout},
		{name: "films", aliases: []string{"ls"}, usage: "films", help: "list films through the active filter", run: a.Films},
		{name: "filter", usage: "filter <all|to_watch|watched|favorite>", help: "change the active filter", run: a.Filter},
		{name: "show", usage: "show <film id>", help: "film details and reviews", run: a.Show},
		{name: "reviews", usage: "reviews <film id>", help: "reload and list a film's reviews", run: a.ListReviews},
		{name: "rate", usage: "rate <film id> <1-5> [comment]", help: "review a film", access: signedIn, run: a.Rate},
		{name: "status", usage: "status <film id>", help: "show a film's list status", access: signedIn, run: a.Status},
		{name: "set", usage: "set <film id> <to_watch|watched|favorite>", help: "put a film in one of your lists", access: signedIn, run: a.SetStatus},
		{name: "unlist", usage: "unlist <film id>", help: "remove a film from your lists", access: signedIn, run: a.Unlist},
		{name: "admin-films", usage: "admin-films", help: "manage the catalog", access: adminOnly, run: a.AdminFilms},
		{name: "addfilm", usage: "addfilm", help: "add a film", access: adminOnly, run: a.AddFilm},
		{name: "editfilm", usage: "editfilm <film id>", help: "edit a film", access: adminOnly, run: a.EditFilm},
		{name: "delfilm", usage: "delfilm <film id>", help: "delete a film", access: adminOnly, run: a.DeleteFilm},
		{name: "users", usage: "users", help: "list accounts", access: adminOnly, run: a.Users},
		{name: "role", usage: "role <user id>", help: "toggle a user between user and admin", access: adminOnly, run: a.ToggleRole},
		{name: "deluser", usage: "deluser <user id>", help: "delete an account", access: adminOnly, run: a.DeleteUser},
		{name: "metrics", usage: "metrics", help: "print store call and sync metrics", run: a.Metrics},
	}
}

var errUsage = errors.New("usage")

func argID(args []string, what string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: missing %s", errUsage, what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, what, args[0])
	}
	return id, nil
}

// user returns the signed-in identity. The REPL refuses signed-in commands
// for anonymous callers, but the session may change between the check and
// the call.
func (a *App) user() (*models.User, error) {
	u := a.session.CurrentUser()
	if u == nil {
		return nil, common.ErrUnauthenticated
	}
	return u, nil
}

func (a *App) film(id int64) (models.Film, error) {
	f, ok := a.catalog.Film(id)
	if !ok {
		return models.Film{}, fmt.Errorf("film %d not found", id)
	}
	return f, nil
}

func (a *App) Register(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	adminKey, err := GetSimpleText(a.reader, "Admin key (leave blank for a regular account)", a.out)
	if err != nil {
		return err
	}

	u, err := a.auth.Register(ctx, email, password, adminKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and signed in as %s (%s).\n", u.Email, u.Role)
	return nil
}

func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", u.Email)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.watchlist.Reset()
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// Films prints the catalog through the active filter. A catalog that never
// loaded, or whose last load failed, is fetched again first.
func (a *App) Films(ctx context.Context, _ []string) error {
	if st := a.catalog.State(); !st.Loaded || st.Err != nil {
		if err := a.catalog.Load(ctx); err != nil {
			a.logger.Warn(ctx, "catalog load failed", "error", err)
			fmt.Fprintln(a.out, catalogFailedMessage)
			if !a.catalog.State().Loaded {
				return nil
			}
		}
	}

	v, err := a.browser.View(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, v.Header)
	if v.Empty {
		fmt.Fprintln(a.out, v.Message)
		return nil
	}
	for _, f := range v.Films {
		a.reviews.FetchOnce(ctx, f.ID)
		fmt.Fprintln(a.out, a.filmLine(f))
	}
	return nil
}

func (a *App) filmLine(f models.Film) string {
	avg := a.reviews.AverageRating(f.ID)
	rating, _ := strconv.ParseFloat(avg, 64)

	line := fmt.Sprintf("%4d  %s (%d) by %s  %s %s (%d)",
		f.ID, f.Title, f.ReleaseYear, f.Director,
		services.StarGlyphs(rating), avg, a.reviews.Count(f.ID))

	if u := a.session.CurrentUser(); u != nil {
		if s := a.watchlist.Current(u.ID, f.ID); s != nil {
			line += "  [" + services.StatusLabel(*s) + "]"
		}
	}
	return line
}

func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "Active filter: %s\n", a.browser.Filter())
		return nil
	}
	f, err := models.ParseFilter(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidFilter, err)
	}
	if err := a.browser.SetFilter(f); err != nil {
		return err
	}
	return a.Films(ctx, nil)
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := argID(args, "film id")
	if err != nil {
		return err
	}
	f, err := a.film(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%d)\nDirected by %s\n", f.Title, f.ReleaseYear, f.Director)
	if f.Description != "" {
		fmt.Fprintln(a.out, f.Description)
	}
	if f.PosterURL != "" {
		fmt.Fprintf(a.out, "Poster: %s\n", f.PosterURL)
	}

	if u := a.session.CurrentUser(); u != nil {
		s, err := a.watchlist.Status(ctx, u.ID, f.ID)
		switch {
		case err != nil:
			a.logger.Warn(ctx, "watchlist status failed", "film_id", f.ID, "error", err)
		case s == nil:
			fmt.Fprintln(a.out, "Not in your lists.")
		default:
			fmt.Fprintf(a.out, "In your list: %s\n", services.StatusLabel(*s))
		}
	}

	return a.ListReviews(ctx, args)
}

// ListReviews refetches the film's reviews and prints them with the
// average.
func (a *App) ListReviews(ctx context.Context, args []string) error {
	id, err := argID(args, "film id")
	if err != nil {
		return err
	}

	reviews := a.reviews.Refresh(ctx, id)
	avg := a.reviews.AverageRating(id)
	rating, _ := strconv.ParseFloat(avg, 64)
	fmt.Fprintf(a.out, "Rating: %s %s (%d reviews)\n", services.StarGlyphs(rating), avg, len(reviews))

	if notice := a.reviews.Notice(id); notice != "" {
		fmt.Fprintln(a.out, notice)
		return nil
	}
	if len(reviews) == 0 {
		fmt.Fprintln(a.out, "No reviews yet.")
		return nil
	}
	for _, r := range reviews {
		fmt.Fprintf(a.out, "  %s %s", services.StarGlyphs(float64(r.Rating)), r.AuthorEmail())
		if !r.CreatedAt.IsZero() {
			fmt.Fprintf(a.out, " on %s", r.CreatedAt.Format("2006-01-02"))
		}
		fmt.Fprintln(a.out)
		if r.Comment != "" {
			fmt.Fprintf(a.out, "    %s\n", r.Comment)
		}
	}
	return nil
}

func (a *App) Rate(ctx context.Context, args []string) error {
	u, err := a.user()
	if err != nil {
		return err
	}
	id, err := argID(args, "film id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: missing rating", errUsage)
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return common.ErrInvalidRating
	}
	comment := strings.Join(args[2:], " ")

	if err := a.reviews.Submit(ctx, id, u.ID, rating, comment); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Thanks! Average rating is now %s.\n", a.reviews.AverageRating(id))
	return nil
}

func (a *App) Status(ctx context.Context, args []string) error {
	u, err := a.user()
	if err != nil {
		return err
	}
	id, err := argID(args, "film id")
	if err != nil {
		return err
	}

	s, err := a.watchlist.Status(ctx, u.ID, id)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Fprintln(a.out, "Not in your lists.")
		return nil
	}
	fmt.Fprintf(a.out, "In your list: %s\n", services.StatusLabel(*s))
	return nil
}

func (a *App) SetStatus(ctx context.Context, args []string) error {
	u, err := a.user()
	if err != nil {
		return err
	}
	id, err := argID(args, "film id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: missing status", errUsage)
	}
	want := models.Status(args[1])

	if a.watchlist.Busy(u.ID, id) {
		fmt.Fprintln(a.out, "An update for this film is already in progress.")
		return nil
	}

	got, err := a.watchlist.SetStatus(ctx, u.ID, id, want)
	if err != nil {
		return err
	}
	if got != want {
		fmt.Fprintf(a.out, "This film is already in your %s list.\n", services.StatusLabel(got))
		return nil
	}
	fmt.Fprintf(a.out, "Added to %s.\n", services.StatusLabel(got))
	return nil
}

// Unlist removes a film from the user's lists after a y/N confirmation.
// The pair's row id is learned from the store first when it is unknown.
func (a *App) Unlist(ctx context.Context, args []string) error {
	u, err := a.user()
	if err != nil {
		return err
	}
	id, err := argID(args, "film id")
	if err != nil {
		return err
	}

	if _, ok := a.watchlist.Tracked(u.ID, id); !ok {
		if _, err := a.watchlist.Status(ctx, u.ID, id); err != nil {
			return err
		}
		if _, ok := a.watchlist.Tracked(u.ID, id); !ok {
			return common.ErrItemNotTracked
		}
	}

	c := services.Confirm(id, func() bool {
		return Confirm(a.reader, "Remove this film from your lists?", a.out)
	})
	err = a.watchlist.ClearStatus(ctx, u.ID, id, c)
	switch {
	case errors.Is(err, common.ErrNotConfirmed):
		fmt.Fprintln(a.out, "Kept.")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(a.out, "Removed from your lists.")
	return nil
}

func (a *App) AdminFilms(ctx context.Context, _ []string) error {
	if err := a.catalog.Load(ctx); err != nil {
		return err
	}
	films := a.catalog.Films()
	if len(films) == 0 {
		fmt.Fprintln(a.out, "No films yet. Use addfilm to add one.")
		return nil
	}
	fmt.Fprintf(a.out, "%4s  %-30s %-6s %s\n", "ID", "TITLE", "YEAR", "DIRECTOR")
	for _, f := range films {
		fmt.Fprintf(a.out, "%4d  %-30s %-6d %s\n", f.ID, f.Title, f.ReleaseYear, f.Director)
	}
	return nil
}

// filmForm prompts for every editable field, offering cur as defaults.
func (a *App) filmForm(cur models.FilmInput) (models.FilmInput, error) {
	var (
		in  models.FilmInput
		err error
	)
	if in.Title, err = GetTextWithDefault(a.reader, "Title", cur.Title, a.out); err != nil {
		return in, err
	}
	if in.Director, err = GetTextWithDefault(a.reader, "Director", cur.Director, a.out); err != nil {
		return in, err
	}

	def := ""
	if cur.ReleaseYear != 0 {
		def = strconv.Itoa(cur.ReleaseYear)
	}
	year, err := GetTextWithDefault(a.reader, "Release year", def, a.out)
	if err != nil {
		return in, err
	}
	if in.ReleaseYear, err = strconv.Atoi(year); err != nil {
		return in, fmt.Errorf("%w: releaseYear must be a number", common.ErrValidation)
	}

	if in.Description, err = GetTextWithDefault(a.reader, "Description", cur.Description, a.out); err != nil {
		return in, err
	}
	if in.PosterURL, err = GetTextWithDefault(a.reader, "Poster URL", cur.PosterURL, a.out); err != nil {
		return in, err
	}
	return in, nil
}

func (a *App) AddFilm(ctx context.Context, _ []string) error {
	in, err := a.filmForm(models.FilmInput{})
	if err != nil {
		return err
	}
	if err := a.catalog.CreateFilm(ctx, in); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s.\n", in.Title)
	return nil
}

func (a *App) EditFilm(ctx context.Context, args []string) error {
	id, err := argID(args, "film id")
	if err != nil {
		return err
	}
	f, err := a.film(id)
	if err != nil {
		return err
	}

	in, err := a.filmForm(f.Input())
	if err != nil {
		return err
	}
	if err := a.catalog.UpdateFilm(ctx, id, in); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s.\n", in.Title)
	return nil
}

func (a *App) DeleteFilm(ctx context.Context, args []string) error {
	id, err := argID(args, "film id")
	if err != nil {
		return err
	}
	f, err := a.film(id)
	if err != nil {
		return err
	}

	if !Confirm(a.reader, fmt.Sprintf("Delete %s?", f.Title), a.out) {
		fmt.Fprintln(a.out, "Kept.")
		return nil
	}
	if err := a.catalog.DeleteFilm(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s.\n", f.Title)
	return nil
}

func (a *App) Users(ctx context.Context, _ []string) error {
	users, err := a.admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%4s  %-30s %-6s %s\n", "ID", "EMAIL", "ROLE", "CREATED")
	for _, u := range users {
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(a.out, "%4d  %-30s %-6s %s\n", u.ID, u.Email, u.Role, created)
	}
	return nil
}

func (a *App) findUser(ctx context.Context, id int64) (models.User, error) {
	users, err := a.admin.ListUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %d not found", id)
}

func (a *App) ToggleRole(ctx context.Context, args []string) error {
	id, err := argID(args, "user id")
	if err != nil {
		return err
	}
	if me := a.session.CurrentUser(); me != nil && me.ID == id {
		return common.ErrSelfModification
	}
	u, err := a.findUser(ctx, id)
	if err != nil {
		return err
	}

	role, err := a.admin.ToggleRole(ctx, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s is now %s.\n", u.Email, role)
	return nil
}

func (a *App) DeleteUser(ctx context.Context, args []string) error {
	id, err := argID(args, "user id")
	if err != nil {
		return err
	}
	if me := a.session.CurrentUser(); me != nil && me.ID == id {
		return common.ErrSelfModification
	}

	if !Confirm(a.reader, fmt.Sprintf("Delete user %d?", id), a.out) {
		fmt.Fprintln(a.out, "Kept.")
		return nil
	}
	if err := a.admin.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted user %d.\n", id)
	return nil
}

// Metrics prints the client's collectors in the Prometheus text format.
func (a *App) Metrics(_ context.Context, _ []string) error {
	return metrics.WriteText(a.out, a.gatherer)
}
