package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/readinglog/readinglog-server/internal/store"
)

// userOwnedDeletes removes everything a user owns, children before parents.
var userOwnedDeletes = []struct {
	what  string
	query string
}{
	{"sessions", `DELETE FROM sessions WHERE user_id = ?`},
	{"list books", `DELETE FROM list_books WHERE list_id IN (SELECT id FROM user_lists WHERE owner_id = ?)`},
	{"list authors", `DELETE FROM list_authors WHERE list_id IN (SELECT id FROM user_lists WHERE owner_id = ?)`},
	{"lists", `DELETE FROM user_lists WHERE owner_id = ?`},
	{"collection entries", `DELETE FROM collection_entries WHERE user_id = ?`},
	{"reviews", `DELETE FROM reviews WHERE user_id = ?`},
	{"moderation marks", `UPDATE reviews SET moderated_by = NULL WHERE moderated_by = ?`},
}

// DeleteUser removes a user and everything it owns in one transaction.
// Shared catalog rows are untouched.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, `SELECT 1 FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !ok {
			return store.ErrNotFound.WithMessage("user not found")
		}

		for _, d := range userOwnedDeletes {
			if _, err := tx.ExecContext(ctx, d.query, id); err != nil {
				return fmt.Errorf("delete %s: %w", d.what, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		s.logger.Info("user deleted", "user_id", id)
		return nil
	})
}
