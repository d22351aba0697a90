package models

// Film is a catalog entry. ID is immutable; content fields are editable by
// admins only.
type Film struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Director    string `json:"director"`
	ReleaseYear int    `json:"releaseYear"`
	Description string `json:"description,omitempty"`
	PosterURL   string `json:"posterUrl,omitempty"`
}

// FilmInput is the editable part of a Film, used for create and update.
type FilmInput struct {
	Title       string `json:"title" validate:"required"`
	Director    string `json:"director" validate:"required"`
	ReleaseYear int    `json:"releaseYear" validate:"gte=1888,lte=2030"`
	Description string `json:"description,omitempty"`
	PosterURL   string `json:"posterUrl,omitempty" validate:"omitempty,url"`
}

// Input returns the editable fields of f, for prefilling an edit form.
func (f Film) Input() FilmInput {
	return FilmInput{
		Title:       f.Title,
		Director:    f.Director,
		ReleaseYear: f.ReleaseYear,
		Description: f.Description,
		PosterURL:   f.PosterURL,
	}
}
