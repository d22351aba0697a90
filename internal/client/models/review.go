package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// ReviewAuthor is the embedded author summary some store responses carry.
type ReviewAuthor struct {
	Email string `json:"email"`
}

// Review is a single rating with an optional comment. A user may leave any
// number of reviews on the same film.
type Review struct {
	ID        int64         `json:"id"`
	FilmID    int64         `json:"filmId"`
	UserID    int64         `json:"userId"`
	Rating    int           `json:"rating"`
	Comment   string        `json:"comment,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	User      *ReviewAuthor `json:"user,omitempty"`
}

// AuthorEmail returns the embedded author email or "Anonymous".
func (r Review) AuthorEmail() string {
	if r.User == nil || r.User.Email == "" {
		return "Anonymous"
	}
	return r.User.Email
}

// ReviewInput is the body of a create-review request.
type ReviewInput struct {
	FilmID  int64  `json:"filmId" validate:"required"`
	UserID  int64  `json:"userId" validate:"required"`
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment"`
}

// ReviewUpdate is the body of an update-review request.
type ReviewUpdate struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment"`
}
