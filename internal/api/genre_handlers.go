package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readinglog/readinglog-server/internal/domain"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns every genre ordered by slug",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)
}

// ListGenresResponse contains all genres.
type ListGenresResponse struct {
	Genres []GenreResponse `json:"genres" doc:"Genres"`
}

// ListGenresOutput wraps the genre list for Huma.
type ListGenresOutput struct {
	Body ListGenresResponse
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	genres, err := s.services.Catalog.ListGenres(ctx)
	if err != nil {
		return nil, err
	}

	return &ListGenresOutput{Body: ListGenresResponse{
		Genres: mapSlice(genres, func(g *domain.Genre) GenreResponse { return mapGenre(*g) }),
	}}, nil
}
