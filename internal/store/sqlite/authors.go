package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/normalize"
	"github.com/readinglog/readinglog-server/internal/store"
)

const authorColumns = `a.id, a.created_at, a.updated_at, a.name, a.biography, a.photo_url,
	a.birth_year, a.death_year, a.nationality`

func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var (
		a                    domain.Author
		createdAt, updatedAt string
		birth, death         sql.NullInt64
	)
	err := scanner.Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
		&a.Name,
		&a.Biography,
		&a.PhotoURL,
		&birth,
		&death,
		&a.Nationality,
	)
	if err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	a.BirthYear = intPtr(birth)
	a.DeathYear = intPtr(death)
	return &a, nil
}

func authorOrderBy(sort store.AuthorSort) string {
	if sort == store.SortNameDesc {
		return `a.name_key DESC, a.id ASC`
	}
	return `a.name_key ASC, a.id ASC`
}

// CreateAuthor inserts an author.
func (s *Store) CreateAuthor(ctx context.Context, a *domain.Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, created_at, updated_at, name, name_key, biography, photo_url,
			birth_year, death_year, nationality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
		a.Name,
		normalize.SearchKey(a.Name),
		a.Biography,
		a.PhotoURL,
		nullInt(a.BirthYear),
		nullInt(a.DeathYear),
		a.Nationality,
	)
	if isUniqueViolation(err, "") {
		return store.ErrAlreadyExists.WithMessage("author already exists")
	}
	return err
}

// GetAuthor retrieves an author by ID.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+authorColumns+` FROM authors a WHERE a.id = ?`, id)
	a, err := scanAuthor(row)
	if err != nil {
		return nil, notFound(err, "author not found")
	}
	return a, nil
}

// AuthorExists reports whether an author with id exists.
func (s *Store) AuthorExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM authors WHERE id = ?`, id)
}

// ListAuthors pages over all authors.
func (s *Store) ListAuthors(ctx context.Context, req store.PageRequest, sort store.AuthorSort) (store.Page[*domain.Author], error) {
	return s.pageAuthors(ctx, "", "", nil, req, sort)
}

// SearchAuthors pages over authors whose name contains name, ignoring case.
func (s *Store) SearchAuthors(ctx context.Context, name string, req store.PageRequest) (store.Page[*domain.Author], error) {
	return s.pageAuthors(ctx, "", `a.name_key LIKE ? ESCAPE '\'`,
		[]any{normalize.LikeContains(name)}, req, store.SortNameAsc)
}

// ListAuthorsInList pages over a list's author membership set.
func (s *Store) ListAuthorsInList(ctx context.Context, listID string, req store.PageRequest, sort store.AuthorSort) (store.Page[*domain.Author], error) {
	return s.pageAuthors(ctx, `JOIN list_authors la ON la.author_id = a.id`, `la.list_id = ?`,
		[]any{listID}, req, sort)
}

// AllAuthors returns every author ordered by name.
func (s *Store) AllAuthors(ctx context.Context) ([]*domain.Author, error) {
	return s.queryAuthors(ctx, `SELECT `+authorColumns+` FROM authors a ORDER BY `+authorOrderBy(store.SortNameAsc))
}

func (s *Store) pageAuthors(ctx context.Context, join, where string, args []any, req store.PageRequest, sort store.AuthorSort) (store.Page[*domain.Author], error) {
	req = req.Normalize(store.DefaultPageLimits)
	if where != "" {
		where = " WHERE " + where
	}

	total, err := count(ctx, s.db, `SELECT COUNT(*) FROM authors a `+join+where, args...)
	if err != nil {
		return store.Page[*domain.Author]{}, fmt.Errorf("count authors: %w", err)
	}
	if req.Offset() >= total {
		return store.NewPage([]*domain.Author{}, total, req), nil
	}

	pageArgs := append(append([]any{}, args...), req.Size, req.Offset())
	authors, err := s.queryAuthors(ctx, `SELECT `+authorColumns+` FROM authors a `+join+where+
		` ORDER BY `+authorOrderBy(sort)+` LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return store.Page[*domain.Author]{}, err
	}
	return store.NewPage(authors, total, req), nil
}

func (s *Store) queryAuthors(ctx context.Context, query string, args ...any) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	authors := []*domain.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}
