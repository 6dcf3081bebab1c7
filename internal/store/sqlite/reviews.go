package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/store"
)

const reviewColumns = `r.id, r.book_id, r.user_id, r.text, r.rating, r.status, r.created_at,
	r.moderated_at, COALESCE(r.moderated_by, ''), COALESCE(u.username, ''), COALESCE(b.title, '')`

const reviewJoins = `LEFT JOIN users u ON u.id = r.user_id LEFT JOIN books b ON b.id = r.book_id`

func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var (
		r           domain.Review
		status      string
		createdAt   string
		moderatedAt sql.NullString
	)
	err := scanner.Scan(
		&r.ID,
		&r.BookID,
		&r.UserID,
		&r.Text,
		&r.Rating,
		&status,
		&createdAt,
		&moderatedAt,
		&r.ModeratedBy,
		&r.Username,
		&r.BookTitle,
	)
	if err != nil {
		return nil, err
	}
	r.Status = domain.ReviewStatus(status)
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.ModeratedAt, err = parseNullableTime(moderatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts a review.
func (s *Store) CreateReview(ctx context.Context, r *domain.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, book_id, user_id, text, rating, status, created_at, moderated_at, moderated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.BookID,
		r.UserID,
		r.Text,
		r.Rating,
		string(r.Status),
		formatTime(r.CreatedAt),
		nullTimeString(r.ModeratedAt),
		nullString(r.ModeratedBy),
	)
	switch {
	case isUniqueViolation(err, ""):
		return store.ErrAlreadyExists.WithMessage("review already exists")
	case isForeignKeyViolation(err):
		return store.ErrNotFound.WithMessage("book or user not found")
	}
	return err
}

// GetReview retrieves a review by ID with the author's username and the
// book title.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r `+reviewJoins+` WHERE r.id = ?`, id)
	r, err := scanReview(row)
	if err != nil {
		return nil, notFound(err, "review not found")
	}
	return r, nil
}

// TransitionReview applies from -> to only while the stored status is still
// from. A false result with a nil error means the row exists but moved
// first, or does not exist at all; callers re-read to tell them apart.
func (s *Store) TransitionReview(ctx context.Context, id string, from, to domain.ReviewStatus, moderatorID string, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET status = ?, moderated_at = ?, moderated_by = ?
		WHERE id = ? AND status = ?`,
		string(to), formatTime(at), nullString(moderatorID), id, string(from))
	if err != nil {
		return false, fmt.Errorf("transition review: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListReviews pages over reviews matching f, newest first unless
// f.OldestFirst is set.
func (s *Store) ListReviews(ctx context.Context, f store.ReviewFilter, req store.PageRequest) (store.Page[*domain.Review], error) {
	req = req.Normalize(store.DefaultPageLimits)

	var (
		conds []string
		args  []any
	)
	if f.BookID != "" {
		conds = append(conds, "r.book_id = ?")
		args = append(args, f.BookID)
	}
	if f.UserID != "" {
		conds = append(conds, "r.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "r.status = ?")
		args = append(args, string(f.Status))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	total, err := count(ctx, s.db, `SELECT COUNT(*) FROM reviews r`+where, args...)
	if err != nil {
		return store.Page[*domain.Review]{}, fmt.Errorf("count reviews: %w", err)
	}
	if req.Offset() >= total {
		return store.NewPage([]*domain.Review{}, total, req), nil
	}

	order := `r.created_at DESC, r.id DESC`
	if f.OldestFirst {
		order = `r.created_at ASC, r.id ASC`
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r `+reviewJoins+where+
			` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, req.Size, req.Offset())...)
	if err != nil {
		return store.Page[*domain.Review]{}, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return store.Page[*domain.Review]{}, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return store.Page[*domain.Review]{}, err
	}
	return store.NewPage(reviews, total, req), nil
}
