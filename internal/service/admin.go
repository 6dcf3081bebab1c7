package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/id"
	"github.com/readinglog/readinglog-server/internal/store"
	"github.com/readinglog/readinglog-server/internal/validation"
)

// AdminService handles catalog writes and user management. Callers are
// responsible for checking that the acting user is an admin.
type AdminService struct {
	store     store.Store
	search    *SearchService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAdminService creates a new admin service. search may be nil, in which
// case new catalog entries are not indexed.
func NewAdminService(st store.Store, search *SearchService, validator *validation.Validator, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AdminService{
		store:     st,
		search:    search,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookRequest describes a new catalog book. Genres are names; unknown
// genres are created.
type CreateBookRequest struct {
	Title       string   `json:"title" validate:"notblank,max=500"`
	ISBN        string   `json:"isbn,omitempty" validate:"max=20"`
	Year        *int     `json:"year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Description string   `json:"description,omitempty" validate:"max=10000"`
	CoverURL    string   `json:"cover_url,omitempty" validate:"omitempty,http_url"`
	AuthorIDs   []string `json:"author_ids,omitempty" validate:"dive,notblank"`
	Genres      []string `json:"genres,omitempty" validate:"dive,notblank,max=100"`
}

// CreateAuthorRequest describes a new catalog author.
type CreateAuthorRequest struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Biography   string `json:"biography,omitempty" validate:"max=10000"`
	PhotoURL    string `json:"photo_url,omitempty" validate:"omitempty,http_url"`
	BirthYear   *int   `json:"birth_year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	DeathYear   *int   `json:"death_year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Nationality string `json:"nationality,omitempty" validate:"max=100"`
}

// CreateBook adds a book to the catalog and indexes it.
func (s *AdminService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		ID:          bookID,
		Title:       strings.TrimSpace(req.Title),
		ISBN:        CleanISBN(req.ISBN),
		Year:        req.Year,
		Description: strings.TrimSpace(req.Description),
		CoverURL:    req.CoverURL,
	}
	book.InitTimestamps()

	for _, authorID := range req.AuthorIDs {
		book.Authors = append(book.Authors, domain.AuthorRef{ID: authorID})
	}
	for _, name := range req.Genres {
		genre, err := s.store.GetOrCreateGenre(ctx, name)
		if err != nil {
			return nil, fromStore(err, "resolve genre")
		}
		book.Genres = append(book.Genres, *genre)
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fromStore(err, "create book")
	}

	created, err := s.store.GetBook(ctx, book.ID)
	if err != nil {
		return nil, fromStore(err, "get book")
	}

	if s.search != nil {
		if err := s.search.IndexBook(ctx, created); err != nil {
			// The catalog row is authoritative; the index catches up on rebuild.
			s.logger.Warn("failed to index book", "book_id", created.ID, "error", err)
		}
	}

	s.logger.Info("book created", "book_id", created.ID, "title", created.Title)
	return created, nil
}

// CreateAuthor adds an author to the catalog and indexes it.
func (s *AdminService) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*domain.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.BirthYear != nil && req.DeathYear != nil && *req.DeathYear < *req.BirthYear {
		return nil, domainerrors.InvalidInput("death year is before birth year")
	}

	authorID, err := id.Generate(id.PrefixAuthor)
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	author := &domain.Author{
		ID:          authorID,
		Name:        strings.TrimSpace(req.Name),
		Biography:   strings.TrimSpace(req.Biography),
		PhotoURL:    req.PhotoURL,
		BirthYear:   req.BirthYear,
		DeathYear:   req.DeathYear,
		Nationality: strings.TrimSpace(req.Nationality),
	}
	author.InitTimestamps()

	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, fromStore(err, "create author")
	}

	if s.search != nil {
		if err := s.search.IndexAuthor(ctx, author); err != nil {
			s.logger.Warn("failed to index author", "author_id", author.ID, "error", err)
		}
	}

	s.logger.Info("author created", "author_id", author.ID, "name", author.Name)
	return author, nil
}

// ListUsers returns every user, oldest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUserByEmail looks a user up by email, ignoring case.
func (s *AdminService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fromStore(err, "get user")
	}
	return user, nil
}

// SetUserRole changes a user's role. The last admin cannot be demoted.
func (s *AdminService) SetUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domainerrors.InvalidInputf("unknown role %q", role)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "get user")
	}
	if user.Role == role {
		return user, nil
	}
	if user.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, user.ID, "demote"); err != nil {
			return nil, err
		}
	}

	user.Role = role
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fromStore(err, "update user")
	}

	s.logger.Info("user role changed", "user_id", userID, "role", role)
	return user, nil
}

// DeleteUser removes a user and everything they own. The last admin cannot
// be deleted.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fromStore(err, "get user")
	}
	if user.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, user.ID, "delete"); err != nil {
			return err
		}
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fromStore(err, "delete user")
	}

	s.logger.Info("user deleted by admin", "user_id", userID)
	return nil
}

func (s *AdminService) ensureAnotherAdmin(ctx context.Context, userID, action string) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if u.ID != userID && u.IsAdmin() {
			return nil
		}
	}
	return domainerrors.InvalidOperation("cannot " + action + " the last admin")
}
