package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/normalize"
	"github.com/readinglog/readinglog-server/internal/store"
)

// ratingJoin attaches the approved-review aggregate to each book row. This
// is the only place a book's rating comes from.
const ratingJoin = `LEFT JOIN (
		SELECT book_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count
		FROM reviews WHERE status = 'approved' GROUP BY book_id
	) r ON r.book_id = b.id`

// bookColumns must match the scan order in scanBook.
const bookColumns = `b.id, b.created_at, b.updated_at, b.title, b.isbn, b.year,
	b.description, b.cover_url, COALESCE(r.avg_rating, 0), COALESCE(r.review_count, 0)`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b                    domain.Book
		createdAt, updatedAt string
		isbn                 sql.NullString
		year                 sql.NullInt64
	)
	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&isbn,
		&year,
		&b.Description,
		&b.CoverURL,
		&b.AverageRating,
		&b.ReviewCount,
	)
	if err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	b.ISBN = isbn.String
	b.Year = intPtr(year)
	b.Authors = []domain.AuthorRef{}
	b.Genres = []domain.Genre{}
	return &b, nil
}

// bookOrderBy returns the ORDER BY clause for a sort key. It mirrors
// store.CompareBooks, which the in-memory genre filter uses.
func bookOrderBy(sort store.BookSort) string {
	switch sort {
	case store.SortTitleDesc:
		return `b.title_key DESC, b.id ASC`
	case store.SortYearAsc:
		return `b.year IS NULL, b.year ASC, b.title_key ASC, b.id ASC`
	case store.SortYearDesc:
		return `b.year IS NULL, b.year DESC, b.title_key ASC, b.id ASC`
	case store.SortRatingDesc:
		return `COALESCE(r.avg_rating, 0) DESC, b.title_key ASC, b.id ASC`
	default:
		return `b.title_key ASC, b.id ASC`
	}
}

// bookQuery narrows the book set: an optional join and WHERE clause.
type bookQuery struct {
	join  string
	where string
	args  []any
}

func (q bookQuery) whereClause() string {
	if q.where == "" {
		return ""
	}
	return " WHERE " + q.where
}

// pageBooks counts the matching books and loads one page of them.
func (s *Store) pageBooks(ctx context.Context, q bookQuery, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	req = req.Normalize(store.DefaultPageLimits)

	total, err := count(ctx, s.db, `SELECT COUNT(*) FROM books b `+q.join+q.whereClause(), q.args...)
	if err != nil {
		return store.Page[*domain.Book]{}, fmt.Errorf("count books: %w", err)
	}
	if req.Offset() >= total {
		return store.NewPage([]*domain.Book{}, total, req), nil
	}

	args := append(append([]any{}, q.args...), req.Size, req.Offset())
	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books b `+ratingJoin+` `+q.join+q.whereClause()+
			` ORDER BY `+bookOrderBy(sort)+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return store.Page[*domain.Book]{}, err
	}
	return store.NewPage(books, total, req), nil
}

// queryBooks runs a book SELECT and attaches authors and genres.
func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachBookRelations(ctx, books, false); err != nil {
		return nil, err
	}
	return books, nil
}

// attachBookRelations loads authors and genres for books. With all set the
// relation tables are read without an id filter.
func (s *Store) attachBookRelations(ctx context.Context, books []*domain.Book, all bool) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Book, len(books))
	ids := make([]any, 0, len(books))
	for _, b := range books {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	authorFilter, genreFilter := "", ""
	var filterArgs []any
	if !all {
		authorFilter = ` WHERE ba.book_id IN (` + placeholders(len(ids)) + `)`
		genreFilter = ` WHERE bg.book_id IN (` + placeholders(len(ids)) + `)`
		filterArgs = ids
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ba.book_id, a.id, a.name
		FROM book_authors ba JOIN authors a ON a.id = ba.author_id`+authorFilter+`
		ORDER BY ba.book_id, ba.position, a.name_key`, filterArgs...)
	if err != nil {
		return fmt.Errorf("query book authors: %w", err)
	}
	for rows.Next() {
		var bookID string
		var ref domain.AuthorRef
		if err := rows.Scan(&bookID, &ref.ID, &ref.Name); err != nil {
			rows.Close()
			return fmt.Errorf("scan book author: %w", err)
		}
		if b, ok := byID[bookID]; ok {
			b.Authors = append(b.Authors, ref)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT bg.book_id, g.id, g.name, g.slug
		FROM book_genres bg JOIN genres g ON g.id = bg.genre_id`+genreFilter+`
		ORDER BY bg.book_id, g.slug`, filterArgs...)
	if err != nil {
		return fmt.Errorf("query book genres: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bookID string
		var g domain.Genre
		if err := rows.Scan(&bookID, &g.ID, &g.Name, &g.Slug); err != nil {
			return fmt.Errorf("scan book genre: %w", err)
		}
		if b, ok := byID[bookID]; ok {
			b.Genres = append(b.Genres, g)
		}
	}
	return rows.Err()
}

// CreateBook inserts a book and links its authors and genres.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (id, created_at, updated_at, title, title_key, isbn, year, description, cover_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID,
			formatTime(b.CreatedAt),
			formatTime(b.UpdatedAt),
			b.Title,
			normalize.SearchKey(b.Title),
			nullString(b.ISBN),
			nullInt(b.Year),
			b.Description,
			b.CoverURL,
		)
		if isUniqueViolation(err, "books.isbn") {
			return store.ErrAlreadyExists.WithMessage("a book with this ISBN already exists")
		}
		if isUniqueViolation(err, "") {
			return store.ErrAlreadyExists.WithMessage("book already exists")
		}
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}

		for i, a := range b.Authors {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO book_authors (book_id, author_id, position) VALUES (?, ?, ?)`,
				b.ID, a.ID, i)
			if isForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage("author not found: " + a.ID)
			}
			if err != nil {
				return fmt.Errorf("link author: %w", err)
			}
		}

		for _, g := range b.Genres {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO book_genres (book_id, genre_id) VALUES (?, ?)`, b.ID, g.ID)
			if isForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage("genre not found: " + g.ID)
			}
			if err != nil {
				return fmt.Errorf("link genre: %w", err)
			}
		}
		return nil
	})
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.getBookWhere(ctx, `b.id = ?`, id)
}

// GetBookByISBN retrieves a book by ISBN.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	return s.getBookWhere(ctx, `b.isbn = ?`, isbn)
}

func (s *Store) getBookWhere(ctx context.Context, where string, args ...any) (*domain.Book, error) {
	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books b `+ratingJoin+` WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	return books[0], nil
}

// BookExists reports whether a book with id exists.
func (s *Store) BookExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM books WHERE id = ?`, id)
}

// ListBooks pages over the whole catalog.
func (s *Store) ListBooks(ctx context.Context, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	return s.pageBooks(ctx, bookQuery{}, req, sort)
}

// SearchBooks pages over books whose title contains title, ignoring case.
func (s *Store) SearchBooks(ctx context.Context, title string, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	return s.pageBooks(ctx, bookQuery{
		where: `b.title_key LIKE ? ESCAPE '\'`,
		args:  []any{normalize.LikeContains(title)},
	}, req, sort)
}

// ListAuthorBooks pages over the books credited to an author.
func (s *Store) ListAuthorBooks(ctx context.Context, authorID string, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	return s.pageBooks(ctx, bookQuery{
		where: `b.id IN (SELECT book_id FROM book_authors WHERE author_id = ?)`,
		args:  []any{authorID},
	}, req, sort)
}

// ListBooksInList pages over a list's book membership set.
func (s *Store) ListBooksInList(ctx context.Context, listID string, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	return s.pageBooks(ctx, bookQuery{
		join:  `JOIN list_books lb ON lb.book_id = b.id`,
		where: `lb.list_id = ?`,
		args:  []any{listID},
	}, req, sort)
}

// AllBooks returns every book with authors, genres and rating.
func (s *Store) AllBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books b `+ratingJoin)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.attachBookRelations(ctx, books, true); err != nil {
		return nil, err
	}
	return books, nil
}

// LatestBooks returns up to limit books by year descending, undated last.
func (s *Store) LatestBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books b `+ratingJoin+
			` ORDER BY `+bookOrderBy(store.SortYearDesc)+` LIMIT ?`, limit)
}

// BookRating returns the mean and count of approved ratings for a book.
func (s *Store) BookRating(ctx context.Context, bookID string) (float64, int, error) {
	var (
		avg float64
		n   int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE book_id = ? AND status = 'approved'`,
		bookID).Scan(&avg, &n)
	if err != nil {
		return 0, 0, fmt.Errorf("book rating: %w", err)
	}
	return avg, n, nil
}
