package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/normalize"
	"github.com/readinglog/readinglog-server/internal/store"
)

// Latest-books limits.
const (
	DefaultLatestLimit = 10
	MaxLatestLimit     = 50
)

// CatalogService answers read queries over books, authors and genres.
type CatalogService struct {
	store  store.Store
	limits store.PageLimits
	logger *slog.Logger
}

// NewCatalogService creates a catalog service. Zero limits fall back to
// store.DefaultPageLimits.
func NewCatalogService(st store.Store, limits store.PageLimits, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if limits.DefaultSize <= 0 || limits.MaxSize <= 0 {
		limits = store.DefaultPageLimits
	}
	return &CatalogService{store: st, limits: limits, logger: logger}
}

// ListBooks pages over the whole catalog.
func (s *CatalogService) ListBooks(ctx context.Context, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Book]{}, err
	}

	page, err := s.store.ListBooks(ctx, req.Normalize(s.limits), sort)
	if err != nil {
		return page, fmt.Errorf("list books: %w", err)
	}
	return page, nil
}

// GetBook returns a book with its authors, genres and rating.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, fromStore(err, "get book")
	}
	return book, nil
}

// GetBookByISBN looks a book up by ISBN. Hyphens and spaces are ignored.
func (s *CatalogService) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	isbn = CleanISBN(isbn)
	if isbn == "" {
		return nil, domainerrors.InvalidInput("isbn is required")
	}

	book, err := s.store.GetBookByISBN(ctx, isbn)
	if err != nil {
		return nil, fromStore(err, "get book by isbn")
	}
	return book, nil
}

// LatestBooks returns the most recently published books, undated last.
func (s *CatalogService) LatestBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	books, err := s.store.LatestBooks(ctx, clampLimit(limit, DefaultLatestLimit, MaxLatestLimit))
	if err != nil {
		return nil, fmt.Errorf("latest books: %w", err)
	}
	return books, nil
}

// SearchBooks finds books whose title contains title, ignoring case.
// A blank title matches every book.
func (s *CatalogService) SearchBooks(ctx context.Context, title string, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Book]{}, err
	}

	page, err := s.store.SearchBooks(ctx, title, req.Normalize(s.limits), sort)
	if err != nil {
		return page, fmt.Errorf("search books: %w", err)
	}
	return page, nil
}

// FilterBooks returns the books having at least one of genres. Genres are
// compared by slug, so "Science Fiction" matches "science-fiction". The
// predicate runs over the full catalog, which is then sorted and paginated
// in memory. No genres matches every book.
func (s *CatalogService) FilterBooks(ctx context.Context, genres []string, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Book]{}, err
	}
	req = req.Normalize(s.limits)

	all, err := s.store.AllBooks(ctx)
	if err != nil {
		return store.Page[*domain.Book]{}, fmt.Errorf("load catalog: %w", err)
	}

	wanted := make(map[string]struct{})
	for _, slug := range genreSlugs(genres) {
		wanted[slug] = struct{}{}
	}

	matched := make([]*domain.Book, 0, len(all))
	for _, b := range all {
		if b.HasAnyGenre(wanted) {
			matched = append(matched, b)
		}
	}
	slices.SortFunc(matched, func(a, b *domain.Book) int {
		return store.CompareBooks(a, b, sort)
	})

	s.logger.Debug("filtered books", "genres", genres, "matched", len(matched), "catalog", len(all))
	return store.Paginate(matched, req), nil
}

// GetAuthor returns an author.
func (s *CatalogService) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, fromStore(err, "get author")
	}
	return author, nil
}

// ListAuthors pages over every author.
func (s *CatalogService) ListAuthors(ctx context.Context, req store.PageRequest, sort store.AuthorSort) (store.Page[*domain.Author], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Author]{}, err
	}

	page, err := s.store.ListAuthors(ctx, req.Normalize(s.limits), sort)
	if err != nil {
		return page, fmt.Errorf("list authors: %w", err)
	}
	return page, nil
}

// SearchAuthors finds authors whose name contains name, ignoring case.
func (s *CatalogService) SearchAuthors(ctx context.Context, name string, req store.PageRequest) (store.Page[*domain.Author], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Author]{}, err
	}

	page, err := s.store.SearchAuthors(ctx, name, req.Normalize(s.limits))
	if err != nil {
		return page, fmt.Errorf("search authors: %w", err)
	}
	return page, nil
}

// ListAuthorBooks pages over the books written by an author.
func (s *CatalogService) ListAuthorBooks(ctx context.Context, authorID string, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Book]{}, err
	}

	ok, err := s.store.AuthorExists(ctx, authorID)
	if err != nil {
		return store.Page[*domain.Book]{}, fmt.Errorf("check author: %w", err)
	}
	if !ok {
		return store.Page[*domain.Book]{}, domainerrors.NotFound("author not found")
	}

	page, err := s.store.ListAuthorBooks(ctx, authorID, req.Normalize(s.limits), sort)
	if err != nil {
		return page, fmt.Errorf("list author books: %w", err)
	}
	return page, nil
}

// ListGenres returns every genre ordered by slug.
func (s *CatalogService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// CleanISBN strips separators from an ISBN.
func CleanISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(isbn))
}

// genreSlugs converts genre names or slugs to distinct, non-empty slugs.
// Comma-separated values are split.
func genreSlugs(genres []string) []string {
	var slugs []string
	for _, g := range genres {
		for part := range strings.SplitSeq(g, ",") {
			slug := normalize.GenreSlug(part)
			if slug != "" && !slices.Contains(slugs, slug) {
				slugs = append(slugs, slug)
			}
		}
	}
	return slugs
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
