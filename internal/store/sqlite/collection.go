package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/store"
)

const entryColumns = `e.id, e.user_id, e.book_id, e.status, e.notes, e.rating,
	e.created_at, e.updated_at, COALESCE(b.title, '')`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.CollectionEntry, error) {
	var (
		e                    domain.CollectionEntry
		status               string
		rating               sql.NullInt64
		createdAt, updatedAt string
	)
	err := scanner.Scan(
		&e.ID,
		&e.UserID,
		&e.BookID,
		&status,
		&e.Notes,
		&rating,
		&createdAt,
		&updatedAt,
		&e.BookTitle,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.CollectionStatus(status)
	e.Rating = intPtr(rating)
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertCollectionEntry inserts the (user, book) entry or updates its
// status, notes and rating. The stored row, including the original id and
// created_at, is read back into e.
func (s *Store) UpsertCollectionEntry(ctx context.Context, e *domain.CollectionEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_entries (id, user_id, book_id, status, notes, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			status = excluded.status,
			notes = excluded.notes,
			rating = excluded.rating,
			updated_at = excluded.updated_at`,
		e.ID,
		e.UserID,
		e.BookID,
		string(e.Status),
		e.Notes,
		nullInt(e.Rating),
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
	)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return fmt.Errorf("upsert collection entry: %w", err)
	}

	stored, err := s.GetCollectionEntry(ctx, e.UserID, e.BookID)
	if err != nil {
		return err
	}
	*e = *stored
	return nil
}

// GetCollectionEntry retrieves the user's entry for a book.
func (s *Store) GetCollectionEntry(ctx context.Context, userID, bookID string) (*domain.CollectionEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+`
		FROM collection_entries e LEFT JOIN books b ON b.id = e.book_id
		WHERE e.user_id = ? AND e.book_id = ?`, userID, bookID)
	e, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err, "collection entry not found")
	}
	return e, nil
}

// DeleteCollectionEntry removes the user's entry for a book, if any.
func (s *Store) DeleteCollectionEntry(ctx context.Context, userID, bookID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM collection_entries WHERE user_id = ? AND book_id = ?`, userID, bookID)
	return err
}

// ListCollectionEntries pages over a user's entries, most recently updated
// first. An empty status lists every entry.
func (s *Store) ListCollectionEntries(ctx context.Context, userID string, status domain.CollectionStatus, req store.PageRequest) (store.Page[*domain.CollectionEntry], error) {
	req = req.Normalize(store.DefaultPageLimits)

	where := ` WHERE e.user_id = ?`
	args := []any{userID}
	if status != "" {
		where += ` AND e.status = ?`
		args = append(args, string(status))
	}

	total, err := count(ctx, s.db, `SELECT COUNT(*) FROM collection_entries e`+where, args...)
	if err != nil {
		return store.Page[*domain.CollectionEntry]{}, fmt.Errorf("count collection: %w", err)
	}
	if req.Offset() >= total {
		return store.NewPage([]*domain.CollectionEntry{}, total, req), nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+`
		FROM collection_entries e LEFT JOIN books b ON b.id = e.book_id`+where+`
		ORDER BY e.updated_at DESC, e.id ASC LIMIT ? OFFSET ?`,
		append(args, req.Size, req.Offset())...)
	if err != nil {
		return store.Page[*domain.CollectionEntry]{}, fmt.Errorf("query collection: %w", err)
	}
	defer rows.Close()

	entries := []*domain.CollectionEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return store.Page[*domain.CollectionEntry]{}, fmt.Errorf("scan collection entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return store.Page[*domain.CollectionEntry]{}, err
	}
	return store.NewPage(entries, total, req), nil
}
