package cli

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/common"
)

const testAdminKey = "letmein"

type account struct {
	user     models.User
	password string
}

// fakeStore is an in-memory FilmRate store speaking the REST contract.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	films     []models.Film
	accounts  []*account
	reviews   []models.Review
	watchlist []models.WatchlistItem
	failFilms bool
}

func newFakeStore(t *testing.T) (*fakeStore, string) {
	t.Helper()
	s := &fakeStore{nextID: 100}
	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)
	return s, srv.URL
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func fail(w http.ResponseWriter, status int, msg string) {
	reply(w, status, map[string]string{"message": msg})
}

func pathID(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return v
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addFilm(title string, year int) models.Film {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := models.Film{ID: s.id(), Title: title, Director: "Director of " + title, ReleaseYear: year}
	s.films = append(s.films, f)
	return f
}

func (s *fakeStore) addAccount(email, password string, role models.Role) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: s.id(), Email: email, Role: role, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	s.accounts = append(s.accounts, &account{user: u, password: password})
	return u
}

func (s *fakeStore) items() []models.WatchlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WatchlistItem(nil), s.watchlist...)
}

func (s *fakeStore) filmTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, f := range s.films {
		out = append(out, f.Title)
	}
	return out
}

func (s *fakeStore) role(userID int64) models.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID == userID {
			return a.user.Role
		}
	}
	return ""
}

func (s *fakeStore) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.UserRoleHeaderName) != string(models.RoleAdmin) {
			fail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	}
}

func (s *fakeStore) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/films", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failFilms {
			fail(w, http.StatusInternalServerError, "database is down")
			return
		}
		reply(w, http.StatusOK, s.films)
	})
	r.Post("/films", s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		var in models.FilmInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		defer s.mu.Unlock()
		f := models.Film{ID: s.id(), Title: in.Title, Director: in.Director, ReleaseYear: in.ReleaseYear, Description: in.Description, PosterURL: in.PosterURL}
		s.films = append(s.films, f)
		reply(w, http.StatusCreated, f)
	}))
	r.Put("/films/{id}", s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		var in models.FilmInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, f := range s.films {
			if f.ID == pathID(r, "id") {
				s.films[i] = models.Film{ID: f.ID, Title: in.Title, Director: in.Director, ReleaseYear: in.ReleaseYear, Description: in.Description, PosterURL: in.PosterURL}
				reply(w, http.StatusOK, s.films[i])
				return
			}
		}
		fail(w, http.StatusNotFound, "Film not found")
	}))
	r.Delete("/films/{id}", s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, f := range s.films {
			if f.ID == pathID(r, "id") {
				s.films = append(s.films[:i], s.films[i+1:]...)
				reply(w, http.StatusOK, nil)
				return
			}
		}
		fail(w, http.StatusNotFound, "Film not found")
	}))

	r.Post("/users/register", func(w http.ResponseWriter, r *http.Request) {
		var in models.Registration
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		for _, a := range s.accounts {
			if a.user.Email == in.Email {
				s.mu.Unlock()
				fail(w, http.StatusBadRequest, "User already exists")
				return
			}
		}
		s.mu.Unlock()
		role := models.RoleUser
		if in.AdminKey == testAdminKey {
			role = models.RoleAdmin
		}
		u := s.addAccount(in.Email, in.Password, role)
		reply(w, http.StatusCreated, map[string]any{"user": u})
	})
	r.Post("/users/login", func(w http.ResponseWriter, r *http.Request) {
		var in models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, a := range s.accounts {
			if a.user.Email == in.Email && a.password == in.Password {
				reply(w, http.StatusOK, map[string]any{"user": a.user})
				return
			}
		}
		fail(w, http.StatusUnauthorized, "Invalid email or password")
	})
	r.Get("/users", s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		users := make([]models.User, 0, len(s.accounts))
		for _, a := range s.accounts {
			users = append(users, a.user)
		}
		reply(w, http.StatusOK, users)
	}))
	r.Put("/users/{id}/role", s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Role models.Role `json:"role"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, a := range s.accounts {
			if a.user.ID == pathID(r, "id") {
				a.user.Role = in.Role
				reply(w, http.StatusOK, a.user)
				return
			}
		}
		fail(w, http.StatusNotFound, "User not found")
	}))
	r.Delete("/users/{id}", s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, a := range s.accounts {
			if a.user.ID == pathID(r, "id") {
				s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
				reply(w, http.StatusOK, nil)
				return
			}
		}
		fail(w, http.StatusNotFound, "User not found")
	}))

	r.Post("/reviews", func(w http.ResponseWriter, r *http.Request) {
		var in models.ReviewInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		defer s.mu.Unlock()
		rv := models.Review{ID: s.id(), FilmID: in.FilmID, UserID: in.UserID, Rating: in.Rating, Comment: in.Comment}
		for _, a := range s.accounts {
			if a.user.ID == in.UserID {
				rv.User = &models.ReviewAuthor{Email: a.user.Email}
			}
		}
		s.reviews = append(s.reviews, rv)
		reply(w, http.StatusCreated, rv)
	})
	r.Get("/reviews/film/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := []models.Review{}
		for _, rv := range s.reviews {
			if rv.FilmID == pathID(r, "id") {
				out = append(out, rv)
			}
		}
		reply(w, http.StatusOK, out)
	})

	r.Post("/watchlist", func(w http.ResponseWriter, r *http.Request) {
		var in models.WatchlistItem
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, it := range s.watchlist {
			if it.UserID == in.UserID && it.FilmID == in.FilmID {
				fail(w, http.StatusBadRequest, "Film already in watchlist")
				return
			}
		}
		in.ID = s.id()
		s.watchlist = append(s.watchlist, in)
		reply(w, http.StatusCreated, map[string]any{"item": in})
	})
	r.Get("/watchlist/user/{u}/film/{f}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, it := range s.watchlist {
			if it.UserID == pathID(r, "u") && it.FilmID == pathID(r, "f") {
				reply(w, http.StatusOK, map[string]any{"status": it.Status})
				return
			}
		}
		fail(w, http.StatusNotFound, "Not in watchlist")
	})
	r.Get("/watchlist/user/{u}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := []models.WatchlistItem{}
		for _, it := range s.watchlist {
			if it.UserID == pathID(r, "u") {
				out = append(out, it)
			}
		}
		reply(w, http.StatusOK, out)
	})
	r.Put("/watchlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in models.WatchlistUpdate
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, it := range s.watchlist {
			if it.ID == pathID(r, "id") {
				s.watchlist[i].Status = in.Status
				reply(w, http.StatusOK, s.watchlist[i])
				return
			}
		}
		fail(w, http.StatusNotFound, "Item not found")
	})
	r.Delete("/watchlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, it := range s.watchlist {
			if it.ID == pathID(r, "id") {
				s.watchlist = append(s.watchlist[:i], s.watchlist[i+1:]...)
				reply(w, http.StatusOK, nil)
				return
			}
		}
		fail(w, http.StatusNotFound, "Item not found")
	})

	return r
}

// script joins input lines for a REPL session.
func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
