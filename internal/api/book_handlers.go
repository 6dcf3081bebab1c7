package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readinglog/readinglog-server/internal/service"
	"github.com/readinglog/readinglog-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of the catalog",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search books by title",
		Description: "Returns books whose title contains the query, ignoring case",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "filterBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/filter",
		Summary:     "Filter books by genre",
		Description: "Returns books having at least one of the given genres",
		Tags:        []string{"Books"},
	}, s.handleFilterBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "latestBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/latest",
		Summary:     "Latest books",
		Description: "Returns the most recently published books",
		Tags:        []string{"Books"},
	}, s.handleLatestBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookByISBN",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/isbn/{isbn}",
		Summary:     "Get book by ISBN",
		Description: "Looks a book up by ISBN; hyphens and spaces are ignored",
		Tags:        []string{"Books"},
	}, s.handleGetBookByISBN)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its authors, genres and rating",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookRating",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/rating",
		Summary:     "Get book rating",
		Description: "Returns the mean rating over approved reviews",
		Tags:        []string{"Books", "Reviews"},
	}, s.handleGetBookRating)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List book reviews",
		Description: "Returns the approved reviews of a book, newest first",
		Tags:        []string{"Books", "Reviews"},
	}, s.handleListBookReviews)

	huma.Register(s.api, huma.Operation{
		OperationID:   "submitReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/reviews",
		Summary:       "Submit review",
		Description:   "Submits a review. It stays pending until a moderator approves it.",
		Tags:          []string{"Books", "Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleSubmitReview)
}

// === DTOs ===

// ListBooksInput contains pagination and sort parameters.
type ListBooksInput struct {
	PageInput
	Sort string `query:"sort" doc:"title_asc (default), title_desc, year_asc, year_desc or rating_desc"`
}

// SearchBooksInput contains a title query.
type SearchBooksInput struct {
	PageInput
	Title string `query:"title" doc:"Case-insensitive title substring; empty matches every book"`
	Sort  string `query:"sort" doc:"Sort key"`
}

// FilterBooksInput contains genre filters.
type FilterBooksInput struct {
	PageInput
	Genres []string `query:"genres" doc:"Genre names or slugs, comma-separated"`
	Sort   string   `query:"sort" doc:"Sort key"`
}

// LatestBooksInput contains the result limit.
type LatestBooksInput struct {
	Limit int `query:"limit" minimum:"0" doc:"Number of books (default 10, max 50)"`
}

// GetBookByISBNInput contains the ISBN path parameter.
type GetBookByISBNInput struct {
	ISBN string `path:"isbn" doc:"ISBN-10 or ISBN-13"`
}

// BookIDInput contains a book ID path parameter.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// ListBookReviewsInput contains a book ID and pagination.
type ListBookReviewsInput struct {
	PageInput
	ID string `path:"id" doc:"Book ID"`
}

// SubmitReviewRequest is the request body for a new review.
type SubmitReviewRequest struct {
	Text   string `json:"text" doc:"Review text, 1 to 2000 characters"`
	Rating int    `json:"rating" doc:"Rating from 1 to 5"`
}

// SubmitReviewInput wraps a new review for Huma.
type SubmitReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body SubmitReviewRequest
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookPageOutput wraps a page of books for Huma.
type BookPageOutput struct {
	Body PageResponse[BookResponse]
}

// BookListResponse contains an unpaginated list of books.
type BookListResponse struct {
	Books []BookResponse `json:"books" doc:"Books"`
}

// BookListOutput wraps a book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// RatingResponse contains a book's rating aggregate.
type RatingResponse struct {
	BookID  string  `json:"book_id" doc:"Book ID"`
	Average float64 `json:"average" doc:"Mean approved rating, 0 when none"`
	Count   int     `json:"count" doc:"Number of approved reviews"`
}

// RatingOutput wraps a rating response for Huma.
type RatingOutput struct {
	Body RatingResponse
}

// ReviewOutput wraps a review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookPageOutput, error) {
	page, err := s.services.Catalog.ListBooks(ctx, input.request(), store.ParseBookSort(input.Sort))
	if err != nil {
		return nil, err
	}
	return &BookPageOutput{Body: mapPage(page, mapBook)}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*BookPageOutput, error) {
	page, err := s.services.Catalog.SearchBooks(ctx, input.Title, input.request(), store.ParseBookSort(input.Sort))
	if err != nil {
		return nil, err
	}
	return &BookPageOutput{Body: mapPage(page, mapBook)}, nil
}

func (s *Server) handleFilterBooks(ctx context.Context, input *FilterBooksInput) (*BookPageOutput, error) {
	page, err := s.services.Catalog.FilterBooks(ctx, input.Genres, input.request(), store.ParseBookSort(input.Sort))
	if err != nil {
		return nil, err
	}
	return &BookPageOutput{Body: mapPage(page, mapBook)}, nil
}

func (s *Server) handleLatestBooks(ctx context.Context, input *LatestBooksInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.LatestBooks(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: BookListResponse{Books: mapSlice(books, mapBook)}}, nil
}

func (s *Server) handleGetBookByISBN(ctx context.Context, input *GetBookByISBNInput) (*BookOutput, error) {
	book, err := s.services.Catalog.GetBookByISBN(ctx, input.ISBN)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleGetBookRating(ctx context.Context, input *BookIDInput) (*RatingOutput, error) {
	summary, err := s.services.Reviews.AverageRating(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RatingOutput{Body: RatingResponse{
		BookID:  summary.BookID,
		Average: summary.Average,
		Count:   summary.Count,
	}}, nil
}

func (s *Server) handleListBookReviews(ctx context.Context, input *ListBookReviewsInput) (*ReviewPageOutput, error) {
	page, err := s.services.Reviews.ListBookReviews(ctx, input.ID, input.request())
	if err != nil {
		return nil, err
	}
	return &ReviewPageOutput{Body: mapPage(page, mapReview)}, nil
}

func (s *Server) handleSubmitReview(ctx context.Context, input *SubmitReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.SubmitReview(ctx, userID, input.ID, service.SubmitReviewRequest{
		Text:   input.Body.Text,
		Rating: input.Body.Rating,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: mapReview(review)}, nil
}
