package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/store"
)

// reviewFixture is an admin, a member and one book.
type reviewFixture struct {
	env    *testEnv
	admin  *domain.User
	member *domain.User
	book   *domain.Book
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	env := newTestEnv(t)
	return &reviewFixture{
		env:    env,
		admin:  env.user(t, "admin"),
		member: env.user(t, "member"),
		book:   env.book(t, CreateBookRequest{Title: "Emma"}),
	}
}

func (f *reviewFixture) submit(t *testing.T, rating int) *domain.Review {
	t.Helper()
	r, err := f.env.reviews.SubmitReview(context.Background(), f.member.ID, f.book.ID,
		SubmitReviewRequest{Text: "A clever comedy of manners.", Rating: rating})
	require.NoError(t, err)
	return r
}

func TestReviewService_SubmitReview(t *testing.T) {
	f := newReviewFixture(t)

	r := f.submit(t, 4)
	assert.Equal(t, domain.ReviewPending, r.Status)
	assert.False(t, r.CreatedAt.IsZero())
	assert.Nil(t, r.ModeratedAt)
	assert.Equal(t, "member", r.Username)
	assert.Equal(t, "Emma", r.BookTitle)
}

func TestReviewService_SubmitReview_Invalid(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		bookID string
		req    SubmitReviewRequest
		code   domainerrors.Code
	}{
		{"blank text", f.book.ID, SubmitReviewRequest{Text: "  \n ", Rating: 3}, domainerrors.CodeInvalidInput},
		{"too long", f.book.ID, SubmitReviewRequest{Text: strings.Repeat("a", domain.MaxReviewTextLength+1), Rating: 3}, domainerrors.CodeInvalidInput},
		{"rating too low", f.book.ID, SubmitReviewRequest{Text: "ok", Rating: 0}, domainerrors.CodeInvalidInput},
		{"rating too high", f.book.ID, SubmitReviewRequest{Text: "ok", Rating: 6}, domainerrors.CodeInvalidInput},
		{"unknown book", "book-missing", SubmitReviewRequest{Text: "ok", Rating: 3}, domainerrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.reviews.SubmitReview(ctx, f.member.ID, tt.bookID, tt.req)
			requireCode(t, err, tt.code)
		})
	}

	// Exactly the limit, counted in characters, is accepted.
	_, err := f.env.reviews.SubmitReview(ctx, f.member.ID, f.book.ID,
		SubmitReviewRequest{Text: strings.Repeat("ü", domain.MaxReviewTextLength), Rating: 3})
	require.NoError(t, err)
}

func TestReviewService_Moderation(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	r := f.submit(t, 5)

	approved, err := f.env.reviews.ApproveReview(ctx, f.admin.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewApproved, approved.Status)
	require.NotNil(t, approved.ModeratedAt)
	assert.Equal(t, f.admin.ID, approved.ModeratedBy)

	// Re-applying is a no-op, flipping a terminal state is refused.
	again, err := f.env.reviews.ApproveReview(ctx, f.admin.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.ModeratedAt, again.ModeratedAt)

	_, err = f.env.reviews.RejectReview(ctx, f.admin.ID, r.ID)
	requireCode(t, err, domainerrors.CodeInvalidOperation)

	_, err = f.env.reviews.ApproveReview(ctx, f.admin.ID, "review-missing")
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestReviewService_RejectThenApproveRefused(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	r := f.submit(t, 1)

	_, err := f.env.reviews.RejectReview(ctx, f.admin.ID, r.ID)
	require.NoError(t, err)
	_, err = f.env.reviews.RejectReview(ctx, f.admin.ID, r.ID)
	require.NoError(t, err)
	_, err = f.env.reviews.ApproveReview(ctx, f.admin.ID, r.ID)
	requireCode(t, err, domainerrors.CodeInvalidOperation)
}

func TestReviewService_RolePolicy(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	r := f.submit(t, 3)

	_, err := f.env.reviews.ApproveReview(ctx, f.member.ID, r.ID)
	requireCode(t, err, domainerrors.CodeForbidden)
	_, err = f.env.reviews.ListPendingReviews(ctx, f.member.ID, store.PageRequest{})
	requireCode(t, err, domainerrors.CodeForbidden)

	mod := f.env.user(t, "moderator")
	_, err = f.env.admin.SetUserRole(ctx, mod.ID, domain.RoleModerator)
	require.NoError(t, err)

	_, err = f.env.reviews.RejectReview(ctx, mod.ID, r.ID)
	require.NoError(t, err)
}

func TestReviewService_ConcurrentModerators(t *testing.T) {
	f := newReviewFixture(t)
	r := f.submit(t, 4)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []domain.ReviewStatus
		refused   int
	)
	for i := range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			moderate := f.env.reviews.ApproveReview
			if i%2 == 1 {
				moderate = f.env.reviews.RejectReview
			}
			got, err := moderate(context.Background(), f.admin.ID, r.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				refused++
				return
			}
			succeeded = append(succeeded, got.Status)
		}()
	}
	wg.Wait()

	final, err := f.env.store.GetReview(context.Background(), r.ID)
	require.NoError(t, err)
	for _, status := range succeeded {
		assert.Equal(t, final.Status, status, "every successful call observed the winning status")
	}
	assert.Equal(t, 6, len(succeeded)+refused)
	assert.Equal(t, 3, len(succeeded))
}

func TestReviewService_AverageRating_ApprovedOnly(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	summary, err := f.env.reviews.AverageRating(ctx, f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.Average)
	assert.Equal(t, 0, summary.Count)

	five := f.submit(t, 5)
	two := f.submit(t, 2)
	f.submit(t, 1) // stays pending
	rejected := f.submit(t, 1)

	for _, r := range []*domain.Review{five, two} {
		_, err := f.env.reviews.ApproveReview(ctx, f.admin.ID, r.ID)
		require.NoError(t, err)
	}
	_, err = f.env.reviews.RejectReview(ctx, f.admin.ID, rejected.ID)
	require.NoError(t, err)

	summary, err = f.env.reviews.AverageRating(ctx, f.book.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, summary.Average, 1e-9)
	assert.Equal(t, 2, summary.Count)

	book, err := f.env.catalog.GetBook(ctx, f.book.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, book.AverageRating, 1e-9)

	_, err = f.env.reviews.AverageRating(ctx, "book-missing")
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestReviewService_Listings(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	first := f.submit(t, 4)
	second := f.submit(t, 3)
	third := f.submit(t, 2)
	_, err := f.env.reviews.ApproveReview(ctx, f.admin.ID, first.ID)
	require.NoError(t, err)
	_, err = f.env.reviews.ApproveReview(ctx, f.admin.ID, third.ID)
	require.NoError(t, err)

	pending, err := f.env.reviews.ListPendingReviews(ctx, f.admin.ID, store.PageRequest{})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, second.ID, pending.Items[0].ID)

	bookReviews, err := f.env.reviews.ListBookReviews(ctx, f.book.ID, store.PageRequest{})
	require.NoError(t, err)
	require.Len(t, bookReviews.Items, 2)
	assert.Equal(t, third.ID, bookReviews.Items[0].ID, "newest first")

	mine, err := f.env.reviews.ListUserReviews(ctx, f.member.ID, store.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Total)

	latest, err := f.env.reviews.LatestApprovedReviews(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, third.ID, latest[0].ID)

	_, err = f.env.reviews.ListBookReviews(ctx, "book-missing", store.PageRequest{})
	requireCode(t, err, domainerrors.CodeNotFound)
}
