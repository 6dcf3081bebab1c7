// Package store defines the persistence interface for the ReadingLog server.
package store

import (
	"context"
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Lookups of missing rows return ErrNotFound; uniqueness violations return
// ErrAlreadyExists. Every mutating method runs in a single transaction.
type Store interface {
	Close() error

	UserStore
	SessionStore
	CatalogStore
	ListStore
	ReviewStore
	CollectionStore
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts u. When u.Role is empty the first user of the
	// instance becomes admin and later users become members; the assigned
	// role is written back to u.
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	// DeleteUser removes the user together with its sessions, lists and
	// their membership rows, collection entries and reviews.
	DeleteUser(ctx context.Context, id string) error
}

// SessionStore persists refresh-token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	// RotateSession replaces the refresh token hash only if it still equals
	// oldHash, so a refresh token can be redeemed once.
	RotateSession(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// CatalogStore persists shared reference data: books, authors and genres.
// Books are always returned with authors, genres and the approved-review
// rating aggregate.
type CatalogStore interface {
	// CreateBook inserts b and links b.Authors and b.Genres by id.
	CreateBook(ctx context.Context, b *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	BookExists(ctx context.Context, id string) (bool, error)
	ListBooks(ctx context.Context, req PageRequest, sort BookSort) (Page[*domain.Book], error)
	// SearchBooks matches titles containing title, case-insensitively.
	SearchBooks(ctx context.Context, title string, req PageRequest, sort BookSort) (Page[*domain.Book], error)
	ListAuthorBooks(ctx context.Context, authorID string, req PageRequest, sort BookSort) (Page[*domain.Book], error)
	// AllBooks returns the whole catalog, unsorted.
	AllBooks(ctx context.Context) ([]*domain.Book, error)
	LatestBooks(ctx context.Context, limit int) ([]*domain.Book, error)
	// BookRating returns the mean rating of approved reviews and their
	// count; 0, 0 when there are none.
	BookRating(ctx context.Context, bookID string) (float64, int, error)

	CreateAuthor(ctx context.Context, a *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	AuthorExists(ctx context.Context, id string) (bool, error)
	ListAuthors(ctx context.Context, req PageRequest, sort AuthorSort) (Page[*domain.Author], error)
	SearchAuthors(ctx context.Context, name string, req PageRequest) (Page[*domain.Author], error)
	AllAuthors(ctx context.Context) ([]*domain.Author, error)

	// GetOrCreateGenre returns the genre whose slug matches name's slug,
	// creating it when absent.
	GetOrCreateGenre(ctx context.Context, name string) (*domain.Genre, error)
	ListGenres(ctx context.Context) ([]*domain.Genre, error)
}

// ListStore persists user lists and their membership sets. Methods taking
// ownerID return ErrNotFound for lists owned by someone else.
type ListStore interface {
	// EnsureSystemLists inserts each list unless the owner already has a
	// list of that kind. Safe to call concurrently.
	EnsureSystemLists(ctx context.Context, lists []*domain.UserList) error
	// ListUserLists returns the owner's lists with member counts, system
	// lists first.
	ListUserLists(ctx context.Context, ownerID string) ([]*domain.UserList, error)
	GetUserList(ctx context.Context, ownerID, listID string) (*domain.UserList, error)
	CreateUserList(ctx context.Context, l *domain.UserList) error
	RenameUserList(ctx context.Context, ownerID, listID, name string) (*domain.UserList, error)
	// DeleteUserList deletes a custom list and its membership rows.
	DeleteUserList(ctx context.Context, ownerID, listID string) error

	AddBookToList(ctx context.Context, ownerID, listID, bookID string) error
	RemoveBookFromList(ctx context.Context, ownerID, listID, bookID string) error
	AddAuthorToList(ctx context.Context, ownerID, listID, authorID string) error
	RemoveAuthorFromList(ctx context.Context, ownerID, listID, authorID string) error

	ListBooksInList(ctx context.Context, listID string, req PageRequest, sort BookSort) (Page[*domain.Book], error)
	ListAuthorsInList(ctx context.Context, listID string, req PageRequest, sort AuthorSort) (Page[*domain.Author], error)
}

// ReviewFilter selects reviews. Zero fields do not filter.
type ReviewFilter struct {
	BookID string
	UserID string
	Status domain.ReviewStatus
	// OldestFirst orders by creation ascending instead of newest first.
	OldestFirst bool
}

// ReviewStore persists reviews.
type ReviewStore interface {
	CreateReview(ctx context.Context, r *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	// TransitionReview moves a review from one status to another and records
	// the moderator. It reports false when the review was not in status from.
	TransitionReview(ctx context.Context, id string, from, to domain.ReviewStatus, moderatorID string, at time.Time) (bool, error)
	ListReviews(ctx context.Context, f ReviewFilter, req PageRequest) (Page[*domain.Review], error)
}

// CollectionStore persists reading-status entries.
type CollectionStore interface {
	// UpsertCollectionEntry inserts or updates the (user, book) entry and
	// refreshes e with the stored row.
	UpsertCollectionEntry(ctx context.Context, e *domain.CollectionEntry) error
	GetCollectionEntry(ctx context.Context, userID, bookID string) (*domain.CollectionEntry, error)
	// DeleteCollectionEntry is a no-op when the entry does not exist.
	DeleteCollectionEntry(ctx context.Context, userID, bookID string) error
	ListCollectionEntries(ctx context.Context, userID string, status domain.CollectionStatus, req PageRequest) (Page[*domain.CollectionEntry], error)
}
