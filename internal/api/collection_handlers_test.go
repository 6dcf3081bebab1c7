package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readinglog/readinglog-server/internal/service"
)

func TestCollection_UpsertAndGet(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.register(t, "ada")
	book := ts.createBook(t, service.CreateBookRequest{Title: "Dune"})
	path := "/api/v1/collection/" + book.ID

	requireError(t, ts.api.Get(path, user.bearer()), http.StatusNotFound, "NOT_FOUND")

	resp := ts.api.Put(path, user.bearer(), map[string]any{"status": "reading", "notes": "  chapter 3  "})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	entry := decode[EntryResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "reading", entry.Status)
	assert.Equal(t, "chapter 3", entry.Notes)
	assert.Nil(t, entry.Rating)

	// A second put replaces the entry.
	resp = ts.api.Put(path, user.bearer(), map[string]any{"status": "read", "rating": 5})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(path, user.bearer())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	entry = decode[EntryResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "read", entry.Status)
	assert.Empty(t, entry.Notes)
	require.NotNil(t, entry.Rating)
	assert.Equal(t, 5, *entry.Rating)
	assert.Equal(t, "Dune", entry.BookTitle)

	// Entries are private.
	other := ts.register(t, "grace")
	requireError(t, ts.api.Get(path, other.bearer()), http.StatusNotFound, "NOT_FOUND")
}

func TestCollection_Invalid(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.register(t, "ada")
	book := ts.createBook(t, service.CreateBookRequest{Title: "Dune"})
	path := "/api/v1/collection/" + book.ID

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"unknown status", map[string]any{"status": "skimmed"}, "INVALID_INPUT"},
		{"rating out of range", map[string]any{"status": "read", "rating": 9}, "INVALID_INPUT"},
		{"notes too long", map[string]any{"status": "read", "notes": strings.Repeat("n", service.MaxEntryNotesLength+1)}, "INVALID_INPUT"},
		{"missing status", map[string]any{"notes": "x"}, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireError(t, ts.api.Put(path, user.bearer(), tt.body), http.StatusBadRequest, tt.code)
		})
	}

	t.Run("unknown book", func(t *testing.T) {
		resp := ts.api.Put("/api/v1/collection/book-missing", user.bearer(), map[string]any{"status": "reading"})
		requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("anonymous", func(t *testing.T) {
		requireError(t, ts.api.Get("/api/v1/collection"), http.StatusUnauthorized, "UNAUTHORIZED")
	})
}

func TestCollection_ListAndRemove(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.register(t, "ada")
	dune := ts.createBook(t, service.CreateBookRequest{Title: "Dune"})
	emma := ts.createBook(t, service.CreateBookRequest{Title: "Emma"})

	require.Equal(t, http.StatusOK, ts.api.Put("/api/v1/collection/"+dune.ID, user.bearer(), map[string]any{"status": "reading"}).Code)
	require.Equal(t, http.StatusOK, ts.api.Put("/api/v1/collection/"+emma.ID, user.bearer(), map[string]any{"status": "want_to_read"}).Code)

	resp := ts.api.Get("/api/v1/collection", user.bearer())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 2, decode[PageResponse[EntryResponse]](t, resp.Body.Bytes()).Data.Total)

	resp = ts.api.Get("/api/v1/collection?status=want_to_read", user.bearer())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page := decode[PageResponse[EntryResponse]](t, resp.Body.Bytes()).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, emma.ID, page.Items[0].BookID)

	requireError(t, ts.api.Get("/api/v1/collection?status=bogus", user.bearer()), http.StatusBadRequest, "INVALID_INPUT")

	require.Equal(t, http.StatusOK, ts.api.Delete("/api/v1/collection/"+emma.ID, user.bearer()).Code)
	// Removing again succeeds.
	require.Equal(t, http.StatusOK, ts.api.Delete("/api/v1/collection/"+emma.ID, user.bearer()).Code)

	resp = ts.api.Get("/api/v1/collection", user.bearer())
	assert.Equal(t, 1, decode[PageResponse[EntryResponse]](t, resp.Body.Bytes()).Data.Total)
}
