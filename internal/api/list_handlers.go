package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readinglog/readinglog-server/internal/store"
)

func (s *Server) registerListRoutes() {
	bearer := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listLists",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists",
		Summary:     "List my lists",
		Description: "Returns the caller's lists: All, Favourite, then custom lists in creation order",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleListLists)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createList",
		Method:        http.MethodPost,
		Path:          "/api/v1/lists",
		Summary:       "Create list",
		Description:   "Creates an empty custom list",
		Tags:          []string{"Lists"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateList)

	huma.Register(s.api, huma.Operation{
		OperationID: "getList",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Get list",
		Description: "Returns one of the caller's lists",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleGetList)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameList",
		Method:      http.MethodPatch,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Rename list",
		Description: "Renames a custom list. System lists cannot be renamed.",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleRenameList)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Delete list",
		Description: "Deletes a custom list. System lists cannot be deleted.",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleDeleteList)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists/{id}/books",
		Summary:     "Get list books",
		Description: "Returns a page of the list's books. The All list contains the whole catalog.",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleGetListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists/{id}/authors",
		Summary:     "Get list authors",
		Description: "Returns a page of the list's authors",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleGetListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookToList",
		Method:      http.MethodPut,
		Path:        "/api/v1/lists/{id}/books/{bookId}",
		Summary:     "Add book to list",
		Description: "Adds a book to a list. Adding a member twice has no effect.",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleAddBookToList)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookFromList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/lists/{id}/books/{bookId}",
		Summary:     "Remove book from list",
		Description: "Removes a book from a list",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleRemoveBookFromList)

	huma.Register(s.api, huma.Operation{
		OperationID: "addAuthorToList",
		Method:      http.MethodPut,
		Path:        "/api/v1/lists/{id}/authors/{authorId}",
		Summary:     "Add author to list",
		Description: "Adds an author to a list",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleAddAuthorToList)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeAuthorFromList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/lists/{id}/authors/{authorId}",
		Summary:     "Remove author from list",
		Description: "Removes an author from a list",
		Tags:        []string{"Lists"},
		Security:    bearer,
	}, s.handleRemoveAuthorFromList)
}

// === DTOs ===

// ListsResponse contains the caller's lists.
type ListsResponse struct {
	Lists []ListResponse `json:"lists" doc:"Lists in display order"`
}

// ListsOutput wraps the caller's lists for Huma.
type ListsOutput struct {
	Body ListsResponse
}

// ListOutput wraps a list for Huma.
type ListOutput struct {
	Body ListResponse
}

// ListNameRequest is the request body for creating or renaming a list.
type ListNameRequest struct {
	Name string `json:"name" doc:"List name, 1 to 100 characters"`
}

// CreateListInput wraps a new list for Huma.
type CreateListInput struct {
	Body ListNameRequest
}

// ListIDInput contains a list ID path parameter.
type ListIDInput struct {
	ID string `path:"id" doc:"List ID"`
}

// RenameListInput wraps a rename for Huma.
type RenameListInput struct {
	ID   string `path:"id" doc:"List ID"`
	Body ListNameRequest
}

// GetListBooksInput contains a list ID, pagination and sort.
type GetListBooksInput struct {
	PageInput
	ID   string `path:"id" doc:"List ID"`
	Sort string `query:"sort" doc:"Book sort key"`
}

// GetListAuthorsInput contains a list ID, pagination and sort.
type GetListAuthorsInput struct {
	PageInput
	ID   string `path:"id" doc:"List ID"`
	Sort string `query:"sort" doc:"name_asc (default) or name_desc"`
}

// ListBookInput identifies a book in a list.
type ListBookInput struct {
	ID     string `path:"id" doc:"List ID"`
	BookID string `path:"bookId" doc:"Book ID"`
}

// ListAuthorInput identifies an author in a list.
type ListAuthorInput struct {
	ID       string `path:"id" doc:"List ID"`
	AuthorID string `path:"authorId" doc:"Author ID"`
}

// === Handlers ===

func (s *Server) handleListLists(ctx context.Context, _ *struct{}) (*ListsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	lists, err := s.services.Lists.ListUserLists(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListsOutput{Body: ListsResponse{Lists: mapSlice(lists, mapList)}}, nil
}

func (s *Server) handleCreateList(ctx context.Context, input *CreateListInput) (*ListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Lists.CreateList(ctx, userID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &ListOutput{Body: mapList(list)}, nil
}

func (s *Server) handleGetList(ctx context.Context, input *ListIDInput) (*ListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Lists.GetList(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ListOutput{Body: mapList(list)}, nil
}

func (s *Server) handleRenameList(ctx context.Context, input *RenameListInput) (*ListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Lists.RenameList(ctx, userID, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &ListOutput{Body: mapList(list)}, nil
}

func (s *Server) handleDeleteList(ctx context.Context, input *ListIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Lists.DeleteList(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "List deleted"}}, nil
}

func (s *Server) handleGetListBooks(ctx context.Context, input *GetListBooksInput) (*BookPageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Lists.ListBooks(ctx, userID, input.ID, input.request(), store.ParseBookSort(input.Sort))
	if err != nil {
		return nil, err
	}

	return &BookPageOutput{Body: mapPage(page, mapBook)}, nil
}

func (s *Server) handleGetListAuthors(ctx context.Context, input *GetListAuthorsInput) (*AuthorPageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Lists.ListAuthors(ctx, userID, input.ID, input.request(), store.ParseAuthorSort(input.Sort))
	if err != nil {
		return nil, err
	}

	return &AuthorPageOutput{Body: mapPage(page, mapAuthor)}, nil
}

func (s *Server) handleAddBookToList(ctx context.Context, input *ListBookInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Lists.AddBookToList(ctx, userID, input.ID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book added to list"}}, nil
}

func (s *Server) handleRemoveBookFromList(ctx context.Context, input *ListBookInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Lists.RemoveBookFromList(ctx, userID, input.ID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book removed from list"}}, nil
}

func (s *Server) handleAddAuthorToList(ctx context.Context, input *ListAuthorInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Lists.AddAuthorToList(ctx, userID, input.ID, input.AuthorID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Author added to list"}}, nil
}

func (s *Server) handleRemoveAuthorFromList(ctx context.Context, input *ListAuthorInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Lists.RemoveAuthorFromList(ctx, userID, input.ID, input.AuthorID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Author removed from list"}}, nil
}
