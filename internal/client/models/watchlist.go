package models

import "fmt"

// Status classifies a film in a user's personal list. The three values are
// mutually exclusive per (user, film) pair.
type Status string

const (
	StatusToWatch  Status = "to_watch"
	StatusWatched  Status = "watched"
	StatusFavorite Status = "favorite"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusToWatch, StatusWatched, StatusFavorite}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToWatch, StatusWatched, StatusFavorite:
		return true
	}
	return false
}

// WatchlistItem is the store row associating a user, a film and a status.
type WatchlistItem struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	FilmID int64  `json:"filmId"`
	Status Status `json:"status"`
}

// WatchlistUpdate is the body of an update-in-place request.
type WatchlistUpdate struct {
	Status Status `json:"status"`
}

// Filter selects which part of the catalog is displayed.
type Filter string

const FilterAll Filter = "all"

// Filters lists every filter in navigation order.
var Filters = []Filter{FilterAll, Filter(StatusToWatch), Filter(StatusWatched), Filter(StatusFavorite)}

// ParseFilter validates a filter name.
func ParseFilter(s string) (Filter, error) {
	f := Filter(s)
	if f == FilterAll || Status(f).Valid() {
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Status returns the list status this filter selects; ok is false for "all".
func (f Filter) Status() (Status, bool) {
	s := Status(f)
	return s, s.Valid()
}
