package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())

	assert.Equal(t, RoleAdmin, RoleUser.Toggled())
	assert.Equal(t, RoleUser, RoleAdmin.Toggled())
}

func TestUser_IsAdmin(t *testing.T) {
	var none *User
	assert.False(t, none.IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestRegistration_OmitsBlankAdminKey(t *testing.T) {
	b, err := json.Marshal(Registration{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "adminKey")

	b, err = json.Marshal(Registration{Email: "a@b.c", Password: "pw", AdminKey: "k"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"adminKey":"k"`)
}

func TestStatusAndFilter(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("all").Valid())
	assert.False(t, Status("").Valid())

	f, err := ParseFilter("watched")
	require.NoError(t, err)
	s, ok := f.Status()
	assert.True(t, ok)
	assert.Equal(t, StatusWatched, s)

	f, err = ParseFilter("all")
	require.NoError(t, err)
	_, ok = f.Status()
	assert.False(t, ok)

	_, err = ParseFilter("seen")
	assert.Error(t, err)
}

func TestReview_AuthorEmail(t *testing.T) {
	assert.Equal(t, "Anonymous", Review{}.AuthorEmail())
	assert.Equal(t, "x@y.z", Review{User: &ReviewAuthor{Email: "x@y.z"}}.AuthorEmail())
}

func TestReview_DecodesStoreShape(t *testing.T) {
	raw := `{"id":3,"filmId":1,"userId":9,"rating":4,"comment":"good","createdAt":"2025-01-02T03:04:05Z","user":{"email":"u@x.io"}}`
	var r Review
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, int64(1), r.FilmID)
	assert.Equal(t, 4, r.Rating)
	assert.Equal(t, "u@x.io", r.AuthorEmail())
	assert.Equal(t, 2025, r.CreatedAt.Year())
}

func TestFilm_Input(t *testing.T) {
	f := Film{ID: 1, Title: "T", Director: "D", ReleaseYear: 1999, PosterURL: "http://p"}
	assert.Equal(t, FilmInput{Title: "T", Director: "D", ReleaseYear: 1999, PosterURL: "http://p"}, f.Input())
}
