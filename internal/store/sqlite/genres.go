package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/id"
	"github.com/readinglog/readinglog-server/internal/normalize"
	"github.com/readinglog/readinglog-server/internal/store"
)

const genreColumns = `id, name, slug`

func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var g domain.Genre
	if err := scanner.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetOrCreateGenre returns the genre with name's slug, creating it with the
// cleaned name when it does not exist yet.
func (s *Store) GetOrCreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	slug := normalize.GenreSlug(name)
	if slug == "" {
		return nil, fmt.Errorf("genre name %q has no usable characters", name)
	}

	var genre *domain.Genre
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		g, err := scanGenre(tx.QueryRowContext(ctx, `SELECT `+genreColumns+` FROM genres WHERE slug = ?`, slug))
		if err == nil {
			genre = g
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("get genre: %w", err)
		}

		genreID, err := id.Generate(id.PrefixGenre)
		if err != nil {
			return fmt.Errorf("generate genre id: %w", err)
		}
		genre = &domain.Genre{ID: genreID, Name: normalize.Text(name), Slug: slug}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO genres (id, created_at, name, slug) VALUES (?, ?, ?, ?)`,
			genre.ID, formatTime(time.Now()), genre.Name, genre.Slug)
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists.WithMessage("genre already exists")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return genre, nil
}

// ListGenres returns all genres ordered by slug.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+genreColumns+` FROM genres ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	genres := []*domain.Genre{}
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
