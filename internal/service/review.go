package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/id"
	"github.com/readinglog/readinglog-server/internal/metrics"
	"github.com/readinglog/readinglog-server/internal/store"
)

// Latest-reviews limits.
const (
	DefaultLatestReviews = 10
	MaxLatestReviews     = 50
)

// ReviewService runs review submission and moderation.
type ReviewService struct {
	store   store.Store
	limits  store.PageLimits
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewReviewService creates a review service.
func NewReviewService(st store.Store, limits store.PageLimits, metrics *metrics.Metrics, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if limits.DefaultSize <= 0 || limits.MaxSize <= 0 {
		limits = store.DefaultPageLimits
	}
	return &ReviewService{
		store:   st,
		limits:  limits,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SubmitReviewRequest is a new review.
type SubmitReviewRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// RatingSummary is the approved-only rating of a book.
type RatingSummary struct {
	BookID  string  `json:"book_id"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// SubmitReview records a pending review of a book by userID.
func (s *ReviewService) SubmitReview(ctx context.Context, userID, bookID string, req SubmitReviewRequest) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, ok := domain.CleanReviewText(req.Text)
	if !ok {
		return nil, domainerrors.InvalidInputf("review text must be 1 to %d characters", domain.MaxReviewTextLength)
	}
	if !domain.ValidRating(req.Rating) {
		return nil, domainerrors.InvalidInputf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFound("book not found")
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		ID:        reviewID,
		BookID:    bookID,
		UserID:    userID,
		Text:      text,
		Rating:    req.Rating,
		Status:    domain.ReviewPending,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fromStore(err, "create review")
	}

	s.metrics.ReviewSubmitted()
	s.logger.Info("review submitted", "review_id", review.ID, "book_id", bookID, "user_id", userID)

	return s.reload(ctx, review.ID)
}

// ApproveReview makes a pending review visible. Approving an approved review
// succeeds without change; approving a rejected one is refused.
func (s *ReviewService) ApproveReview(ctx context.Context, moderatorID, reviewID string) (*domain.Review, error) {
	return s.moderate(ctx, moderatorID, reviewID, domain.ReviewApproved)
}

// RejectReview rejects a pending review.
func (s *ReviewService) RejectReview(ctx context.Context, moderatorID, reviewID string) (*domain.Review, error) {
	return s.moderate(ctx, moderatorID, reviewID, domain.ReviewRejected)
}

func (s *ReviewService) moderate(ctx context.Context, moderatorID, reviewID string, target domain.ReviewStatus) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}

	review, err := s.reload(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	// At most two rounds: a lost race re-reads the row once and can only
	// find a terminal status.
	for range 2 {
		switch review.Status.TransitionTo(target) {
		case domain.TransitionNoop:
			return review, nil
		case domain.TransitionInvalid:
			return nil, domainerrors.InvalidOperation(fmt.Sprintf("review is already %s", review.Status))
		}

		applied, err := s.store.TransitionReview(ctx, reviewID, review.Status, target, moderatorID, s.now())
		if err != nil {
			return nil, err
		}
		if review, err = s.reload(ctx, reviewID); err != nil {
			return nil, err
		}
		if applied {
			s.metrics.ReviewTransition(string(target))
			s.logger.Info("review moderated",
				"review_id", reviewID,
				"status", target,
				"moderator_id", moderatorID,
			)
			return review, nil
		}
	}
	return nil, domainerrors.InvalidOperation(fmt.Sprintf("review is already %s", review.Status))
}

// AverageRating returns the mean of a book's approved ratings, 0 when it
// has none.
func (s *ReviewService) AverageRating(ctx context.Context, bookID string) (*RatingSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFound("book not found")
	}

	avg, n, err := s.store.BookRating(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return &RatingSummary{BookID: bookID, Average: avg, Count: n}, nil
}

// ListBookReviews pages over a book's approved reviews, newest first.
func (s *ReviewService) ListBookReviews(ctx context.Context, bookID string, req store.PageRequest) (store.Page[*domain.Review], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Review]{}, err
	}

	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return store.Page[*domain.Review]{}, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return store.Page[*domain.Review]{}, domainerrors.NotFound("book not found")
	}

	return s.list(ctx, store.ReviewFilter{BookID: bookID, Status: domain.ReviewApproved}, req)
}

// ListUserReviews pages over a user's own reviews in every status.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID string, req store.PageRequest) (store.Page[*domain.Review], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Review]{}, err
	}
	return s.list(ctx, store.ReviewFilter{UserID: userID}, req)
}

// LatestApprovedReviews returns the newest approved reviews in the catalog.
func (s *ReviewService) LatestApprovedReviews(ctx context.Context, limit int) ([]*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := s.store.ListReviews(ctx,
		store.ReviewFilter{Status: domain.ReviewApproved},
		store.PageRequest{Size: clampLimit(limit, DefaultLatestReviews, MaxLatestReviews)})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return page.Items, nil
}

// ListPendingReviews pages over the moderation queue, oldest first.
func (s *ReviewService) ListPendingReviews(ctx context.Context, moderatorID string, req store.PageRequest) (store.Page[*domain.Review], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Review]{}, err
	}
	if err := s.requireModerator(ctx, moderatorID); err != nil {
		return store.Page[*domain.Review]{}, err
	}
	return s.list(ctx, store.ReviewFilter{Status: domain.ReviewPending, OldestFirst: true}, req)
}

func (s *ReviewService) list(ctx context.Context, f store.ReviewFilter, req store.PageRequest) (store.Page[*domain.Review], error) {
	page, err := s.store.ListReviews(ctx, f, req.Normalize(s.limits))
	if err != nil {
		return page, fmt.Errorf("list reviews: %w", err)
	}
	return page, nil
}

func (s *ReviewService) requireModerator(ctx context.Context, userID string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return domainerrors.Unauthorized("user no longer exists")
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !user.CanModerate() {
		return domainerrors.Forbidden("moderator role required")
	}
	return nil
}

func (s *ReviewService) reload(ctx context.Context, reviewID string) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, fromStore(err, "get review")
	}
	return review, nil
}
