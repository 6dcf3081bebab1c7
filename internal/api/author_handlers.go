package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readinglog/readinglog-server/internal/store"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Description: "Returns a page of authors",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/search",
		Summary:     "Search authors by name",
		Description: "Returns authors whose name contains the query, ignoring case",
		Tags:        []string{"Authors"},
	}, s.handleSearchAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Description: "Returns an author",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthorBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}/books",
		Summary:     "Get author books",
		Description: "Returns a page of the books an author wrote",
		Tags:        []string{"Authors", "Books"},
	}, s.handleGetAuthorBooks)
}

// === DTOs ===

// ListAuthorsInput contains pagination and sort parameters.
type ListAuthorsInput struct {
	PageInput
	Sort string `query:"sort" doc:"name_asc (default) or name_desc"`
}

// SearchAuthorsInput contains a name query.
type SearchAuthorsInput struct {
	PageInput
	Name string `query:"name" doc:"Case-insensitive name substring"`
}

// AuthorIDInput contains an author ID path parameter.
type AuthorIDInput struct {
	ID string `path:"id" doc:"Author ID"`
}

// GetAuthorBooksInput contains an author ID, pagination and sort.
type GetAuthorBooksInput struct {
	PageInput
	ID   string `path:"id" doc:"Author ID"`
	Sort string `query:"sort" doc:"Book sort key"`
}

// AuthorOutput wraps an author for Huma.
type AuthorOutput struct {
	Body AuthorResponse
}

// AuthorPageOutput wraps a page of authors for Huma.
type AuthorPageOutput struct {
	Body PageResponse[AuthorResponse]
}

// === Handlers ===

func (s *Server) handleListAuthors(ctx context.Context, input *ListAuthorsInput) (*AuthorPageOutput, error) {
	page, err := s.services.Catalog.ListAuthors(ctx, input.request(), store.ParseAuthorSort(input.Sort))
	if err != nil {
		return nil, err
	}
	return &AuthorPageOutput{Body: mapPage(page, mapAuthor)}, nil
}

func (s *Server) handleSearchAuthors(ctx context.Context, input *SearchAuthorsInput) (*AuthorPageOutput, error) {
	page, err := s.services.Catalog.SearchAuthors(ctx, input.Name, input.request())
	if err != nil {
		return nil, err
	}
	return &AuthorPageOutput{Body: mapPage(page, mapAuthor)}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *AuthorIDInput) (*AuthorOutput, error) {
	author, err := s.services.Catalog.GetAuthor(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: mapAuthor(author)}, nil
}

func (s *Server) handleGetAuthorBooks(ctx context.Context, input *GetAuthorBooksInput) (*BookPageOutput, error) {
	page, err := s.services.Catalog.ListAuthorBooks(ctx, input.ID, input.request(), store.ParseBookSort(input.Sort))
	if err != nil {
		return nil, err
	}
	return &BookPageOutput{Body: mapPage(page, mapBook)}, nil
}
