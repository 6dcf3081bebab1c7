package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_RequiresAdmin(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "admin")
	member := ts.register(t, "ada")

	requireError(t, ts.api.Get("/api/v1/admin/users", member.bearer()), http.StatusForbidden, "FORBIDDEN")
	requireError(t, ts.api.Post("/api/v1/admin/books", member.bearer(), map[string]any{"title": "Dune"}), http.StatusForbidden, "FORBIDDEN")
	requireError(t, ts.api.Get("/api/v1/admin/users"), http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestAdmin_CreateCatalog(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.register(t, "admin")

	resp := ts.api.Post("/api/v1/admin/authors", admin.bearer(), map[string]any{
		"name":       "Frank Herbert",
		"birth_year": 1920,
		"death_year": 1986,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	author := decode[AuthorResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "Frank Herbert", author.Name)

	resp = ts.api.Post("/api/v1/admin/books", admin.bearer(), map[string]any{
		"title":      "Dune",
		"isbn":       "978 0441 172719",
		"year":       1965,
		"author_ids": []string{author.ID},
		"genres":     []string{"Science Fiction", "Classics"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	book := decode[BookResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "9780441172719", book.ISBN)
	require.Len(t, book.Authors, 1)
	assert.Equal(t, author.ID, book.Authors[0].ID)
	assert.Len(t, book.Genres, 2)

	// New books are searchable straight away.
	resp = ts.api.Get("/api/v1/search?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), book.ID)

	t.Run("death before birth", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/authors", admin.bearer(), map[string]any{
			"name": "Nobody", "birth_year": 1900, "death_year": 1800,
		})
		requireError(t, resp, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("blank title", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/books", admin.bearer(), map[string]any{"title": "  "})
		requireError(t, resp, http.StatusBadRequest, "VALIDATION")
	})

	t.Run("duplicate isbn", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/books", admin.bearer(), map[string]any{
			"title": "Dune again", "isbn": "9780441172719",
		})
		requireError(t, resp, http.StatusConflict, "CONFLICT")
	})

	t.Run("unknown author", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/admin/books", admin.bearer(), map[string]any{
			"title": "Orphan", "author_ids": []string{"author-missing"},
		})
		requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
	})
}

func TestAdmin_Users(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.register(t, "admin")
	member := ts.register(t, "ada")

	resp := ts.api.Get("/api/v1/admin/users", admin.bearer())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	users := decode[UsersResponse](t, resp.Body.Bytes()).Data.Users
	require.Len(t, users, 2)
	assert.Equal(t, admin.ID, users[0].ID)

	resp = ts.api.Put("/api/v1/admin/users/"+member.ID+"/role", admin.bearer(), map[string]any{"role": "moderator"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "moderator", decode[UserResponse](t, resp.Body.Bytes()).Data.Role)

	// The promotion takes effect on the next request.
	resp = ts.api.Get("/api/v1/reviews/pending", member.bearer())
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Put("/api/v1/admin/users/"+member.ID+"/role", admin.bearer(), map[string]any{"role": "overlord"})
	requireError(t, resp, http.StatusBadRequest, "VALIDATION")

	resp = ts.api.Put("/api/v1/admin/users/user-missing/role", admin.bearer(), map[string]any{"role": "member"})
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = ts.api.Delete("/api/v1/admin/users/"+member.ID, admin.bearer())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/admin/users", admin.bearer())
	assert.Len(t, decode[UsersResponse](t, resp.Body.Bytes()).Data.Users, 1)
}

func TestAdmin_LastAdminProtected(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.register(t, "admin")
	member := ts.register(t, "ada")

	resp := ts.api.Put("/api/v1/admin/users/"+admin.ID+"/role", admin.bearer(), map[string]any{"role": "member"})
	requireError(t, resp, http.StatusBadRequest, "INVALID_OPERATION")

	resp = ts.api.Delete("/api/v1/admin/users/"+admin.ID, admin.bearer())
	requireError(t, resp, http.StatusBadRequest, "INVALID_OPERATION")

	// With a second admin the first may step down.
	resp = ts.api.Put("/api/v1/admin/users/"+member.ID+"/role", admin.bearer(), map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Put("/api/v1/admin/users/"+admin.ID+"/role", admin.bearer(), map[string]any{"role": "member"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// And is no longer an admin.
	requireError(t, ts.api.Get("/api/v1/admin/users", admin.bearer()), http.StatusForbidden, "FORBIDDEN")
}
