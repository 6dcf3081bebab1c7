package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/id"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateUser(t *testing.T, s *Store, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           id.MustGenerate(id.PrefixUser),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$fake",
		DisplayName:  username,
	}
	u.InitTimestamps()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustCreateAuthor(t *testing.T, s *Store, name string) *domain.Author {
	t.Helper()
	a := &domain.Author{ID: id.MustGenerate(id.PrefixAuthor), Name: name}
	a.InitTimestamps()
	if err := s.CreateAuthor(context.Background(), a); err != nil {
		t.Fatalf("CreateAuthor(%s): %v", name, err)
	}
	return a
}

// bookOpt customises a book before insertion.
type bookOpt func(*domain.Book)

func withYear(y int) bookOpt { return func(b *domain.Book) { b.Year = &y } }

func withISBN(isbn string) bookOpt { return func(b *domain.Book) { b.ISBN = isbn } }

func withAuthors(authors ...*domain.Author) bookOpt {
	return func(b *domain.Book) {
		for _, a := range authors {
			b.Authors = append(b.Authors, domain.AuthorRef{ID: a.ID, Name: a.Name})
		}
	}
}

func withGenres(genres ...*domain.Genre) bookOpt {
	return func(b *domain.Book) {
		for _, g := range genres {
			b.Genres = append(b.Genres, *g)
		}
	}
}

func mustCreateBook(t *testing.T, s *Store, title string, opts ...bookOpt) *domain.Book {
	t.Helper()
	b := &domain.Book{ID: id.MustGenerate(id.PrefixBook), Title: title}
	b.InitTimestamps()
	for _, opt := range opts {
		opt(b)
	}
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook(%s): %v", title, err)
	}
	return b
}

func mustCreateReview(t *testing.T, s *Store, bookID, userID string, rating int, status domain.ReviewStatus) *domain.Review {
	t.Helper()
	r := &domain.Review{
		ID:        id.MustGenerate(id.PrefixReview),
		BookID:    bookID,
		UserID:    userID,
		Text:      "worth reading",
		Rating:    rating,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateReview(context.Background(), r); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	return r
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	tables := []string{
		"users", "sessions", "books", "authors", "genres", "book_authors", "book_genres",
		"user_lists", "list_books", "list_authors", "reviews", "collection_entries",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Schema is idempotent.
	s2, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if err := s2.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	s2.Close()
}

func TestPlaceholders(t *testing.T) {
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
