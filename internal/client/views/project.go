// Package views derives what the catalog screen shows: the films selected by
// the active filter, a header and the empty-state message.
package views

import (
	"github.com/dmitrijs2005/filmrate/internal/client/models"
)

// SignInMessage replaces any list view for anonymous viewers.
const SignInMessage = "Please sign in to see your lists."

var headers = map[models.Filter]string{
	models.FilterAll:                     "All Films",
	models.Filter(models.StatusToWatch):  "My To-Watch List",
	models.Filter(models.StatusWatched):  "Films I've Watched",
	models.Filter(models.StatusFavorite): "My Favorite Films",
}

var emptyMessages = map[models.Filter]string{
	models.FilterAll:                     "No films have been added yet.",
	models.Filter(models.StatusToWatch):  "There are no films in your to-watch list yet.",
	models.Filter(models.StatusWatched):  "You haven't watched any films yet.",
	models.Filter(models.StatusFavorite): "There are no films in your favorites yet.",
}

// Project returns the films selected by filter, in their original order.
// FilterAll returns films unchanged; a status filter keeps the films whose
// id maps to that status in index.
func Project(films []models.Film, filter models.Filter, index map[int64]models.Status) []models.Film {
	if filter == models.FilterAll {
		return films
	}
	want, ok := filter.Status()
	if !ok {
		return []models.Film{}
	}

	out := make([]models.Film, 0, len(index))
	for _, f := range films {
		if s, ok := index[f.ID]; ok && s == want {
			out = append(out, f)
		}
	}
	return out
}

func HeaderLabel(filter models.Filter) string {
	if h, ok := headers[filter]; ok {
		return h
	}
	return "Films"
}

// EmptyStateMessage is the text shown when a view has no films. Anonymous
// viewers of a list filter always get SignInMessage.
func EmptyStateMessage(filter models.Filter, authenticated bool) string {
	if filter != models.FilterAll && !authenticated {
		return SignInMessage
	}
	if m, ok := emptyMessages[filter]; ok {
		return m
	}
	return emptyMessages[models.FilterAll]
}
