package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/metrics"
	"github.com/readinglog/readinglog-server/internal/search"
	"github.com/readinglog/readinglog-server/internal/store"
)

// SearchService bridges the full-text index with the catalog store.
type SearchService struct {
	index   *search.Index
	store   store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, st store.Store, metrics *metrics.Metrics, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SearchService{
		index:   index,
		store:   st,
		metrics: metrics,
		logger:  logger,
	}
}

// SearchRequest is a full-text query over books and authors.
type SearchRequest struct {
	Query  string
	Types  []string
	Genres []string
	Limit  int
	Offset int

	Facets    bool
	Highlight bool
}

// Search runs a fuzzy full-text query.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*search.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.metrics.SearchQuery()

	result, err := s.index.Search(ctx, search.Params{
		Query:         strings.TrimSpace(req.Query),
		Types:         search.ParseDocTypes(req.Types),
		GenreSlugs:    genreSlugs(req.Genres),
		Limit:         req.Limit,
		Offset:        req.Offset,
		IncludeFacets: req.Facets,
		Highlight:     req.Highlight,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

// IndexBook indexes a single book. Call this when a book is created.
func (s *SearchService) IndexBook(_ context.Context, book *domain.Book) error {
	if err := s.index.IndexDocument(search.BookDocument(book)); err != nil {
		return fmt.Errorf("index book: %w", err)
	}
	s.logger.Debug("indexed book", "id", book.ID, "title", book.Title)
	return nil
}

// IndexAuthor indexes a single author.
func (s *SearchService) IndexAuthor(_ context.Context, author *domain.Author) error {
	if err := s.index.IndexDocument(search.AuthorDocument(author)); err != nil {
		return fmt.Errorf("index author: %w", err)
	}
	s.logger.Debug("indexed author", "id", author.ID, "name", author.Name)
	return nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll clears the index and indexes the whole catalog.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	books, err := s.store.AllBooks(ctx)
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	authors, err := s.store.AllAuthors(ctx)
	if err != nil {
		return fmt.Errorf("load authors: %w", err)
	}

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	docs := make([]*search.Document, 0, len(books)+len(authors))
	for _, b := range books {
		docs = append(docs, search.BookDocument(b))
	}
	for _, a := range authors {
		docs = append(docs, search.AuthorDocument(a))
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index catalog: %w", err)
	}

	s.logger.Info("search index rebuilt", "books", len(books), "authors", len(authors))
	return nil
}

// EnsureIndexed rebuilds the index when it is empty but the catalog is not,
// e.g. after a mapping version bump or a deleted index directory.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return nil
	}

	page, err := s.store.ListBooks(ctx, store.PageRequest{Size: 1}, store.SortTitleAsc)
	if err != nil {
		return fmt.Errorf("probe catalog: %w", err)
	}
	authors, err := s.store.ListAuthors(ctx, store.PageRequest{Size: 1}, store.SortNameAsc)
	if err != nil {
		return fmt.Errorf("probe authors: %w", err)
	}
	if page.Total == 0 && authors.Total == 0 {
		return nil
	}

	return s.ReindexAll(ctx)
}
