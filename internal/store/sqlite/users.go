package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, email, password_hash,
	display_name, avatar_url, role, last_login_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u           domain.User
		createdAt   string
		updatedAt   string
		role        string
		lastLoginAt sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.AvatarURL,
		&role,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if u.LastLoginAt, err = parseNullableTime(lastLoginAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)

	return &u, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userConflict translates a uniqueness failure into a message naming the
// duplicated field.
func userConflict(err error) error {
	switch {
	case isUniqueViolation(err, "users.username"):
		return store.ErrAlreadyExists.WithMessage("username already taken")
	case isUniqueViolation(err, "users.email_lower"):
		return store.ErrAlreadyExists.WithMessage("email already registered")
	case isUniqueViolation(err, ""):
		return store.ErrAlreadyExists
	}
	return err
}

// CreateUser inserts a new user. An empty role resolves to admin for the
// first user and member otherwise, inside the same write transaction.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if u.Role == "" {
			n, err := count(ctx, tx, `SELECT COUNT(*) FROM users`)
			if err != nil {
				return fmt.Errorf("count users: %w", err)
			}
			u.Role = domain.RoleMember
			if n == 0 {
				u.Role = domain.RoleAdmin
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (
				id, created_at, updated_at, username, email, email_lower,
				password_hash, display_name, avatar_url, role, last_login_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID,
			formatTime(u.CreatedAt),
			formatTime(u.UpdatedAt),
			u.Username,
			u.Email,
			emailKey(u.Email),
			u.PasswordHash,
			u.DisplayName,
			u.AvatarURL,
			string(u.Role),
			nullTimeString(u.LastLoginAt),
		)
		return userConflict(err)
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`, emailKey(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// ListUsers returns all users, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser writes the mutable user fields.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			updated_at = ?, username = ?, email = ?, email_lower = ?, password_hash = ?,
			display_name = ?, avatar_url = ?, role = ?, last_login_at = ?
		WHERE id = ?`,
		formatTime(u.UpdatedAt),
		u.Username,
		u.Email,
		emailKey(u.Email),
		u.PasswordHash,
		u.DisplayName,
		u.AvatarURL,
		string(u.Role),
		nullTimeString(u.LastLoginAt),
		u.ID,
	)
	if err != nil {
		return userConflict(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("user not found")
	}
	return nil
}
