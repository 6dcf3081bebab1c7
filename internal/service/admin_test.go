package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/search"
	"github.com/readinglog/readinglog-server/internal/store"
)

func TestAdminService_CreateBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	herbert := env.author(t, "Frank Herbert")

	book, err := env.admin.CreateBook(ctx, CreateBookRequest{
		Title:     "  Dune ",
		Year:      intPtr(1965),
		AuthorIDs: []string{herbert.ID},
		Genres:    []string{"Science Fiction", "science fiction"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, []string{"Frank Herbert"}, book.AuthorNames())
	require.Len(t, book.Genres, 1, "genres collapse by slug")
	assert.Equal(t, "science-fiction", book.Genres[0].Slug)

	result, err := env.search.Search(ctx, SearchRequest{Query: "dune", Types: []string{"book"}})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, book.ID, result.Hits[0].ID)
}

func TestAdminService_CreateBook_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.admin.CreateBook(ctx, CreateBookRequest{Title: "  "})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = env.admin.CreateBook(ctx, CreateBookRequest{Title: "Orphan", AuthorIDs: []string{"author-missing"}})
	requireCode(t, err, domainerrors.CodeNotFound)

	env.book(t, CreateBookRequest{Title: "Emma", ISBN: "9780141439587"})
	_, err = env.admin.CreateBook(ctx, CreateBookRequest{Title: "Emma again", ISBN: "978-0141439587"})
	requireCode(t, err, domainerrors.CodeConflict)
}

func TestAdminService_CreateAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author, err := env.admin.CreateAuthor(ctx, CreateAuthorRequest{
		Name:      "Jane Austen",
		Biography: "English novelist.",
		BirthYear: intPtr(1775),
		DeathYear: intPtr(1817),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Austen", author.Name)

	_, err = env.admin.CreateAuthor(ctx, CreateAuthorRequest{Name: "Backwards", BirthYear: intPtr(1900), DeathYear: intPtr(1800)})
	requireCode(t, err, domainerrors.CodeInvalidInput)

	result, err := env.search.Search(ctx, SearchRequest{Query: "austen", Types: []string{"author"}})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, search.DocTypeAuthor, result.Hits[0].Type)
}

func TestAdminService_SetUserRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "admin")
	member := env.user(t, "member")

	updated, err := env.admin.SetUserRole(ctx, member.ID, domain.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, updated.Role)

	_, err = env.admin.SetUserRole(ctx, member.ID, "overlord")
	requireCode(t, err, domainerrors.CodeInvalidInput)

	_, err = env.admin.SetUserRole(ctx, admin.ID, domain.RoleMember)
	requireCode(t, err, domainerrors.CodeInvalidOperation)

	_, err = env.admin.SetUserRole(ctx, member.ID, domain.RoleAdmin)
	require.NoError(t, err)
	_, err = env.admin.SetUserRole(ctx, admin.ID, domain.RoleMember)
	require.NoError(t, err, "another admin exists now")

	_, err = env.admin.SetUserRole(ctx, "user-missing", domain.RoleMember)
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestAdminService_DeleteUser_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "admin")
	reader := env.register(t, "reader")
	book := env.book(t, CreateBookRequest{Title: "Emma"})

	list, err := env.lists.CreateList(ctx, reader.User.ID, "Mine")
	require.NoError(t, err)
	require.NoError(t, env.lists.AddBookToList(ctx, reader.User.ID, list.ID, book.ID))
	_, err = env.collection.UpsertEntry(ctx, reader.User.ID, book.ID, UpsertEntryRequest{Status: domain.StatusRead})
	require.NoError(t, err)

	adminReview, err := env.reviews.SubmitReview(ctx, admin.ID, book.ID, SubmitReviewRequest{Text: "Fine", Rating: 2})
	require.NoError(t, err)
	readerReview, err := env.reviews.SubmitReview(ctx, reader.User.ID, book.ID, SubmitReviewRequest{Text: "Great", Rating: 5})
	require.NoError(t, err)
	for _, r := range []*domain.Review{adminReview, readerReview} {
		_, err := env.reviews.ApproveReview(ctx, admin.ID, r.ID)
		require.NoError(t, err)
	}

	summary, err := env.reviews.AverageRating(ctx, book.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, summary.Average, 1e-9)

	require.NoError(t, env.admin.DeleteUser(ctx, reader.User.ID))

	summary, err = env.reviews.AverageRating(ctx, book.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, summary.Average, 1e-9)
	assert.Equal(t, 1, summary.Count)

	_, err = env.store.GetUserList(ctx, reader.User.ID, list.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.GetCollectionEntry(ctx, reader.User.ID, book.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.GetSession(ctx, reader.SessionID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The shared catalog is untouched.
	_, err = env.catalog.GetBook(ctx, book.ID)
	require.NoError(t, err)

	err = env.admin.DeleteUser(ctx, admin.ID)
	requireCode(t, err, domainerrors.CodeInvalidOperation)
	err = env.admin.DeleteUser(ctx, reader.User.ID)
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestAdminService_ListAndLookupUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice")
	env.user(t, "bob")

	users, err := env.admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)

	bob, err := env.admin.GetUserByEmail(ctx, " BOB@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "bob", bob.Username)
}
