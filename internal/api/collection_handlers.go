package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/service"
)

func (s *Server) registerCollectionRoutes() {
	bearer := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listCollection",
		Method:      http.MethodGet,
		Path:        "/api/v1/collection",
		Summary:     "List collection",
		Description: "Returns the caller's reading statuses, most recently updated first",
		Tags:        []string{"Collection"},
		Security:    bearer,
	}, s.handleListCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCollectionEntry",
		Method:      http.MethodGet,
		Path:        "/api/v1/collection/{bookId}",
		Summary:     "Get collection entry",
		Description: "Returns the caller's entry for a book",
		Tags:        []string{"Collection"},
		Security:    bearer,
	}, s.handleGetCollectionEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "upsertCollectionEntry",
		Method:      http.MethodPut,
		Path:        "/api/v1/collection/{bookId}",
		Summary:     "Set reading status",
		Description: "Creates or replaces the caller's entry for a book",
		Tags:        []string{"Collection"},
		Security:    bearer,
	}, s.handleUpsertCollectionEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCollectionEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/collection/{bookId}",
		Summary:     "Remove collection entry",
		Description: "Removes the caller's entry for a book; a missing entry is not an error",
		Tags:        []string{"Collection"},
		Security:    bearer,
	}, s.handleRemoveCollectionEntry)
}

// === DTOs ===

// ListCollectionInput contains the status filter and pagination.
type ListCollectionInput struct {
	PageInput
	Status string `query:"status" doc:"Only entries with this status"`
}

// EntryPageOutput wraps a page of entries for Huma.
type EntryPageOutput struct {
	Body PageResponse[EntryResponse]
}

// EntryOutput wraps an entry for Huma.
type EntryOutput struct {
	Body EntryResponse
}

// CollectionBookInput contains the book ID path parameter.
type CollectionBookInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
}

// UpsertEntryRequest is the request body for a reading status.
type UpsertEntryRequest struct {
	Status string `json:"status" doc:"want_to_read, reading, read or abandoned"`
	Notes  string `json:"notes,omitempty" doc:"Private notes, up to 2000 characters"`
	Rating *int   `json:"rating,omitempty" doc:"Private rating from 1 to 5"`
}

// UpsertEntryInput wraps a reading status for Huma.
type UpsertEntryInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	Body   UpsertEntryRequest
}

// === Handlers ===

func (s *Server) handleListCollection(ctx context.Context, input *ListCollectionInput) (*EntryPageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Collection.ListEntries(ctx, userID, domain.CollectionStatus(input.Status), input.request())
	if err != nil {
		return nil, err
	}

	return &EntryPageOutput{Body: mapPage(page, mapEntry)}, nil
}

func (s *Server) handleGetCollectionEntry(ctx context.Context, input *CollectionBookInput) (*EntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Collection.GetEntry(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &EntryOutput{Body: mapEntry(entry)}, nil
}

func (s *Server) handleUpsertCollectionEntry(ctx context.Context, input *UpsertEntryInput) (*EntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Collection.UpsertEntry(ctx, userID, input.BookID, service.UpsertEntryRequest{
		Status: domain.CollectionStatus(input.Body.Status),
		Notes:  input.Body.Notes,
		Rating: input.Body.Rating,
	})
	if err != nil {
		return nil, err
	}

	return &EntryOutput{Body: mapEntry(entry)}, nil
}

func (s *Server) handleRemoveCollectionEntry(ctx context.Context, input *CollectionBookInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Collection.RemoveEntry(ctx, userID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Entry removed"}}, nil
}
