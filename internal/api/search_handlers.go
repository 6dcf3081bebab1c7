package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readinglog/readinglog-server/internal/search"
	"github.com/readinglog/readinglog-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	if s.services.Search == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Full-text search",
		Description: "Fuzzy search over book titles, descriptions, author names and biographies",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains full-text search parameters.
type SearchInput struct {
	Query     string   `query:"q" doc:"Search text; empty matches everything"`
	Types     []string `query:"types" doc:"Document types to include: book, author (default both)"`
	Genres    []string `query:"genres" doc:"Only books with one of these genres"`
	Limit     int      `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
	Offset    int      `query:"offset" minimum:"0" doc:"Hits to skip"`
	Facets    bool     `query:"facets" doc:"Include type and genre facet counts"`
	Highlight bool     `query:"highlight" doc:"Include highlighted fragments"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.Result
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Search.Search(ctx, service.SearchRequest{
		Query:     input.Query,
		Types:     input.Types,
		Genres:    input.Genres,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Facets:    input.Facets,
		Highlight: input.Highlight,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
