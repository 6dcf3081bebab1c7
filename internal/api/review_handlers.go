package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "latestReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/latest",
		Summary:     "Latest reviews",
		Description: "Returns the newest approved reviews across the catalog",
		Tags:        []string{"Reviews"},
	}, s.handleLatestReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "pendingReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/pending",
		Summary:     "Moderation queue",
		Description: "Returns pending reviews, oldest first. Requires the moderator or admin role.",
		Tags:        []string{"Reviews", "Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePendingReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "approveReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{id}/approve",
		Summary:     "Approve review",
		Description: "Approves a pending review. Approving an approved review has no effect.",
		Tags:        []string{"Reviews", "Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApproveReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{id}/reject",
		Summary:     "Reject review",
		Description: "Rejects a pending review. Rejecting a rejected review has no effect.",
		Tags:        []string{"Reviews", "Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectReview)
}

// === DTOs ===

// LatestReviewsInput contains the result limit.
type LatestReviewsInput struct {
	Limit int `query:"limit" minimum:"0" doc:"Number of reviews (default 10, max 50)"`
}

// ReviewListResponse contains an unpaginated list of reviews.
type ReviewListResponse struct {
	Reviews []ReviewResponse `json:"reviews" doc:"Reviews"`
}

// ReviewListOutput wraps a review list for Huma.
type ReviewListOutput struct {
	Body ReviewListResponse
}

// PendingReviewsInput contains pagination for the moderation queue.
type PendingReviewsInput struct {
	PageInput
}

// ReviewIDInput contains a review ID path parameter.
type ReviewIDInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// === Handlers ===

func (s *Server) handleLatestReviews(ctx context.Context, input *LatestReviewsInput) (*ReviewListOutput, error) {
	reviews, err := s.services.Reviews.LatestApprovedReviews(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &ReviewListOutput{Body: ReviewListResponse{Reviews: mapSlice(reviews, mapReview)}}, nil
}

func (s *Server) handlePendingReviews(ctx context.Context, input *PendingReviewsInput) (*ReviewPageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Reviews.ListPendingReviews(ctx, userID, input.request())
	if err != nil {
		return nil, err
	}

	return &ReviewPageOutput{Body: mapPage(page, mapReview)}, nil
}

func (s *Server) handleApproveReview(ctx context.Context, input *ReviewIDInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.ApproveReview(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: mapReview(review)}, nil
}

func (s *Server) handleRejectReview(ctx context.Context, input *ReviewIDInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.RejectReview(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: mapReview(review)}, nil
}
