package api

import (
	"github.com/readinglog/readinglog-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth       *service.AuthService
	Profile    *service.ProfileService
	Catalog    *service.CatalogService
	Lists      *service.ListService
	Reviews    *service.ReviewService
	Collection *service.CollectionService
	Search     *service.SearchService // nil disables /search and the health check
	Admin      *service.AdminService
}
