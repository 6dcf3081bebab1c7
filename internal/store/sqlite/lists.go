package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/store"
)

// listColumns must match the scan order in scanList. The counts are
// correlated subqueries so a single row carries the membership sizes.
const listColumns = `l.id, l.owner_id, l.name, l.kind, l.created_at, l.updated_at,
	(SELECT COUNT(*) FROM list_books lb WHERE lb.list_id = l.id),
	(SELECT COUNT(*) FROM list_authors la WHERE la.list_id = l.id)`

var errListNotFound = store.ErrNotFound.WithMessage("list not found")

func scanList(scanner interface{ Scan(dest ...any) error }) (*domain.UserList, error) {
	var (
		l                    domain.UserList
		kind                 string
		createdAt, updatedAt string
	)
	err := scanner.Scan(
		&l.ID,
		&l.OwnerID,
		&l.Name,
		&kind,
		&createdAt,
		&updatedAt,
		&l.BookCount,
		&l.AuthorCount,
	)
	if err != nil {
		return nil, err
	}
	if l.Kind, err = domain.ParseListKind(kind); err != nil {
		return nil, err
	}
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// EnsureSystemLists inserts each list unless its owner already has one of
// that kind. Conflicts on the (owner, kind) or (owner, name) indexes are
// ignored, so concurrent callers converge on a single row per kind.
func (s *Store) EnsureSystemLists(ctx context.Context, lists []*domain.UserList) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, l := range lists {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO user_lists (id, owner_id, name, kind, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT DO NOTHING`,
				l.ID, l.OwnerID, l.Name, l.Kind.Value(),
				formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
			if isForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage("user not found")
			}
			if err != nil {
				return fmt.Errorf("ensure list %q: %w", l.Name, err)
			}
		}
		return nil
	})
}

// ListUserLists returns the owner's lists: All, Favourite, then custom lists
// by creation time.
func (s *Store) ListUserLists(ctx context.Context, ownerID string) ([]*domain.UserList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listColumns+` FROM user_lists l WHERE l.owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	lists := []*domain.UserList{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(lists, func(a, b *domain.UserList) int {
		switch {
		case domain.ListBefore(a, b):
			return -1
		case domain.ListBefore(b, a):
			return 1
		}
		return 0
	})
	return lists, nil
}

// GetUserList retrieves a list owned by ownerID.
func (s *Store) GetUserList(ctx context.Context, ownerID, listID string) (*domain.UserList, error) {
	return getOwnedList(ctx, s.db, ownerID, listID)
}

func getOwnedList(ctx context.Context, q querier, ownerID, listID string) (*domain.UserList, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM user_lists l WHERE l.id = ? AND l.owner_id = ?`, listID, ownerID)
	l, err := scanList(row)
	if err != nil {
		return nil, notFound(err, errListNotFound.Message)
	}
	return l, nil
}

// CreateUserList inserts a list. A duplicate name for the owner returns
// store.ErrAlreadyExists.
func (s *Store) CreateUserList(ctx context.Context, l *domain.UserList) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_lists (id, owner_id, name, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.OwnerID, l.Name, l.Kind.Value(), formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
	switch {
	case isUniqueViolation(err, ""):
		return store.ErrAlreadyExists.WithMessage("a list with this name already exists")
	case isForeignKeyViolation(err):
		return store.ErrNotFound.WithMessage("user not found")
	}
	return err
}

// RenameUserList renames a custom list owned by ownerID.
func (s *Store) RenameUserList(ctx context.Context, ownerID, listID, name string) (*domain.UserList, error) {
	var renamed *domain.UserList
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE user_lists SET name = ?, updated_at = ? WHERE id = ? AND owner_id = ? AND kind = 'custom'`,
			name, formatTime(time.Now()), listID, ownerID)
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists.WithMessage("a list with this name already exists")
		}
		if err != nil {
			return fmt.Errorf("rename list: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return errListNotFound
		}
		renamed, err = getOwnedList(ctx, tx, ownerID, listID)
		return err
	})
	return renamed, err
}

// DeleteUserList deletes a custom list owned by ownerID with its membership
// rows.
func (s *Store) DeleteUserList(ctx context.Context, ownerID, listID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx,
			`SELECT 1 FROM user_lists WHERE id = ? AND owner_id = ? AND kind = 'custom'`, listID, ownerID)
		if err != nil {
			return fmt.Errorf("check list: %w", err)
		}
		if !ok {
			return errListNotFound
		}

		for _, q := range []string{
			`DELETE FROM list_books WHERE list_id = ?`,
			`DELETE FROM list_authors WHERE list_id = ?`,
			`DELETE FROM user_lists WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, listID); err != nil {
				return fmt.Errorf("delete list: %w", err)
			}
		}
		return nil
	})
}

// membership describes one of the two list membership tables.
type membership struct {
	table    string // list_books or list_authors
	column   string // book_id or author_id
	refTable string
	missing  string
}

var (
	bookMembership   = membership{"list_books", "book_id", "books", "book not found"}
	authorMembership = membership{"list_authors", "author_id", "authors", "author not found"}
)

// changeMembership confirms ownership and the member's existence, then adds
// or removes the member. Adding twice and removing a non-member are no-ops.
func (s *Store) changeMembership(ctx context.Context, m membership, ownerID, listID, memberID string, add bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, `SELECT 1 FROM user_lists WHERE id = ? AND owner_id = ?`, listID, ownerID)
		if err != nil {
			return fmt.Errorf("check list: %w", err)
		}
		if !ok {
			return errListNotFound
		}

		ok, err = exists(ctx, tx, `SELECT 1 FROM `+m.refTable+` WHERE id = ?`, memberID)
		if err != nil {
			return fmt.Errorf("check member: %w", err)
		}
		if !ok {
			return store.ErrNotFound.WithMessage(m.missing)
		}

		var result sql.Result
		if add {
			result, err = tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO `+m.table+` (list_id, `+m.column+`, added_at) VALUES (?, ?, ?)`,
				listID, memberID, formatTime(time.Now()))
		} else {
			result, err = tx.ExecContext(ctx,
				`DELETE FROM `+m.table+` WHERE list_id = ? AND `+m.column+` = ?`, listID, memberID)
		}
		if err != nil {
			return fmt.Errorf("update %s: %w", m.table, err)
		}

		if n, _ := result.RowsAffected(); n > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE user_lists SET updated_at = ? WHERE id = ?`,
				formatTime(time.Now()), listID); err != nil {
				return fmt.Errorf("touch list: %w", err)
			}
		}
		return nil
	})
}

// AddBookToList adds a book to a list owned by ownerID.
func (s *Store) AddBookToList(ctx context.Context, ownerID, listID, bookID string) error {
	return s.changeMembership(ctx, bookMembership, ownerID, listID, bookID, true)
}

// RemoveBookFromList removes a book from a list owned by ownerID.
func (s *Store) RemoveBookFromList(ctx context.Context, ownerID, listID, bookID string) error {
	return s.changeMembership(ctx, bookMembership, ownerID, listID, bookID, false)
}

// AddAuthorToList adds an author to a list owned by ownerID.
func (s *Store) AddAuthorToList(ctx context.Context, ownerID, listID, authorID string) error {
	return s.changeMembership(ctx, authorMembership, ownerID, listID, authorID, true)
}

// RemoveAuthorFromList removes an author from a list owned by ownerID.
func (s *Store) RemoveAuthorFromList(ctx context.Context, ownerID, listID, authorID string) error {
	return s.changeMembership(ctx, authorMembership, ownerID, listID, authorID, false)
}
