package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	bearer := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/books",
		Summary:       "Create book",
		Description:   "Adds a book to the catalog. Unknown genres are created. Requires admin.",
		Tags:          []string{"Admin"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateAuthor",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/authors",
		Summary:       "Create author",
		Description:   "Adds an author to the catalog. Requires admin.",
		Tags:          []string{"Admin"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "List users",
		Description: "Returns every user, oldest first. Requires admin.",
		Tags:        []string{"Admin"},
		Security:    bearer,
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminSetUserRole",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/users/{id}/role",
		Summary:     "Set user role",
		Description: "Changes a user's role. The last admin cannot be demoted. Requires admin.",
		Tags:        []string{"Admin"},
		Security:    bearer,
	}, s.handleAdminSetUserRole)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes a user and everything they own. The last admin cannot be deleted. Requires admin.",
		Tags:        []string{"Admin"},
		Security:    bearer,
	}, s.handleAdminDeleteUser)
}

// === DTOs ===

// CreateBookRequest is the request body for a new catalog book.
type CreateBookRequest struct {
	Title       string   `json:"title" doc:"Title"`
	ISBN        string   `json:"isbn,omitempty" doc:"ISBN; hyphens and spaces are stripped"`
	Year        *int     `json:"year,omitempty" doc:"Publication year"`
	Description string   `json:"description,omitempty" doc:"Description"`
	CoverURL    string   `json:"cover_url,omitempty" doc:"Cover image URL"`
	AuthorIDs   []string `json:"author_ids,omitempty" doc:"Existing author IDs in credit order"`
	Genres      []string `json:"genres,omitempty" doc:"Genre names; unknown genres are created"`
}

// CreateBookInput wraps a new book for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// CreateAuthorRequest is the request body for a new catalog author.
type CreateAuthorRequest struct {
	Name        string `json:"name" doc:"Name"`
	Biography   string `json:"biography,omitempty" doc:"Biography"`
	PhotoURL    string `json:"photo_url,omitempty" doc:"Photo URL"`
	BirthYear   *int   `json:"birth_year,omitempty" doc:"Year of birth"`
	DeathYear   *int   `json:"death_year,omitempty" doc:"Year of death"`
	Nationality string `json:"nationality,omitempty" doc:"Nationality"`
}

// CreateAuthorInput wraps a new author for Huma.
type CreateAuthorInput struct {
	Body CreateAuthorRequest
}

// UsersResponse contains a list of users.
type UsersResponse struct {
	Users []UserResponse `json:"users" doc:"Users"`
}

// UsersOutput wraps a user list for Huma.
type UsersOutput struct {
	Body UsersResponse
}

// SetRoleRequest is the request body for a role change.
type SetRoleRequest struct {
	Role string `json:"role" enum:"admin,moderator,member" doc:"New role"`
}

// SetRoleInput wraps a role change for Huma.
type SetRoleInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body SetRoleRequest
}

// UserIDInput contains a user ID path parameter.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// === Handlers ===

func (s *Server) handleAdminCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Admin.CreateBook(ctx, service.CreateBookRequest{
		Title:       input.Body.Title,
		ISBN:        input.Body.ISBN,
		Year:        input.Body.Year,
		Description: input.Body.Description,
		CoverURL:    input.Body.CoverURL,
		AuthorIDs:   input.Body.AuthorIDs,
		Genres:      input.Body.Genres,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleAdminCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	author, err := s.services.Admin.CreateAuthor(ctx, service.CreateAuthorRequest{
		Name:        input.Body.Name,
		Biography:   input.Body.Biography,
		PhotoURL:    input.Body.PhotoURL,
		BirthYear:   input.Body.BirthYear,
		DeathYear:   input.Body.DeathYear,
		Nationality: input.Body.Nationality,
	})
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: mapAuthor(author)}, nil
}

func (s *Server) handleAdminListUsers(ctx context.Context, _ *struct{}) (*UsersOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	return &UsersOutput{Body: UsersResponse{Users: mapSlice(users, mapUser)}}, nil
}

func (s *Server) handleAdminSetUserRole(ctx context.Context, input *SetRoleInput) (*UserOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Admin.SetUserRole(ctx, input.ID, domain.Role(input.Body.Role))
	if err != nil {
		return nil, err
	}

	s.logger.Info("role changed by admin", "admin_id", adminID, "user_id", user.ID, "role", user.Role)
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteUser(ctx, input.ID); err != nil {
		return nil, err
	}

	s.logger.Info("user deleted by admin", "admin_id", adminID, "user_id", input.ID)
	return &MessageOutput{Body: MessageResponse{Message: "User deleted"}}, nil
}
