package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readinglog/readinglog-server/internal/service"
)

func TestGetMe(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.register(t, "ada")

	resp := ts.api.Get("/api/v1/users/me", user.bearer())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	me := decode[UserResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.NotEmpty(t, me.AvatarURL)

	requireError(t, ts.api.Get("/api/v1/users/me"), http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestUpdateMe(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.register(t, "ada")
	ts.register(t, "grace")

	resp := ts.api.Patch("/api/v1/users/me", user.bearer(), map[string]any{"display_name": "  Ada L.  "})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	me := decode[UserResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "Ada L.", me.DisplayName)
	assert.Equal(t, "ada", me.Username, "omitted fields are unchanged")

	resp = ts.api.Patch("/api/v1/users/me", user.bearer(), map[string]any{"avatar_url": "https://img.example.com/a.png"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "https://img.example.com/a.png", decode[UserResponse](t, resp.Body.Bytes()).Data.AvatarURL)

	resp = ts.api.Patch("/api/v1/users/me", user.bearer(), map[string]any{"avatar_url": ""})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.NotEqual(t, "https://img.example.com/a.png", decode[UserResponse](t, resp.Body.Bytes()).Data.AvatarURL)

	t.Run("taken username", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/users/me", user.bearer(), map[string]any{"username": "grace"})
		requireError(t, resp, http.StatusConflict, "CONFLICT")
	})

	t.Run("invalid username", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/users/me", user.bearer(), map[string]any{"username": "x"})
		requireError(t, resp, http.StatusBadRequest, "VALIDATION")
	})
}

func TestDeleteMe(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "admin")
	user := ts.register(t, "ada")
	book := ts.createBook(t, service.CreateBookRequest{Title: "Dune"})
	ts.lists(t, user)
	ts.submitReview(t, user, book.ID, "Great", 5)
	require.Equal(t, http.StatusOK, ts.api.Put("/api/v1/collection/"+book.ID, user.bearer(), map[string]any{"status": "read"}).Code)

	resp := ts.api.Delete("/api/v1/users/me", user.bearer())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The token now belongs to nobody.
	requireError(t, ts.api.Get("/api/v1/users/me", user.bearer()), http.StatusUnauthorized, "UNAUTHORIZED")

	login := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	requireError(t, login, http.StatusUnauthorized, "INVALID_CREDENTIALS")
}
