package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Review limits.
const (
	MaxReviewTextLength = 2000
	MinRating           = 1
	MaxRating           = 5
)

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Transition is the outcome of asking a review to move to a new status.
type Transition int

const (
	// TransitionApply means the status changes.
	TransitionApply Transition = iota
	// TransitionNoop means the review already has the target status.
	TransitionNoop
	// TransitionInvalid means the move is not allowed.
	TransitionInvalid
)

// TransitionTo decides whether a review in status s may move to target.
// Only pending reviews move; terminal states are final.
func (s ReviewStatus) TransitionTo(target ReviewStatus) Transition {
	switch {
	case s == target:
		return TransitionNoop
	case s == ReviewPending && (target == ReviewApproved || target == ReviewRejected):
		return TransitionApply
	default:
		return TransitionInvalid
	}
}

// Review is a user's rating and text for a book. New reviews are pending
// and become visible once approved.
type Review struct {
	ID          string       `json:"id"`
	BookID      string       `json:"book_id"`
	UserID      string       `json:"user_id"`
	Text        string       `json:"text"`
	Rating      int          `json:"rating"`
	Status      ReviewStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	ModeratedAt *time.Time   `json:"moderated_at,omitempty"`
	ModeratedBy string       `json:"moderated_by,omitempty"`

	// Populated on read.
	Username  string `json:"username,omitempty"`
	BookTitle string `json:"book_title,omitempty"`
}

// ValidRating reports whether rating is within 1..5.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// CleanReviewText trims text and reports whether it is acceptable:
// non-blank and at most MaxReviewTextLength characters.
func CleanReviewText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxReviewTextLength {
		return text, false
	}
	return text, true
}
