package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/id"
	"github.com/readinglog/readinglog-server/internal/metrics"
	"github.com/readinglog/readinglog-server/internal/store"
)

// MaxListNameLength is the longest list name accepted, in characters.
const MaxListNameLength = 100

// ListService enforces list ownership: every call carries the acting user
// and a list owned by someone else is reported as missing.
type ListService struct {
	store   store.Store
	limits  store.PageLimits
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewListService creates a list service.
func NewListService(st store.Store, limits store.PageLimits, metrics *metrics.Metrics, logger *slog.Logger) *ListService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if limits.DefaultSize <= 0 || limits.MaxSize <= 0 {
		limits = store.DefaultPageLimits
	}
	return &ListService{store: st, limits: limits, metrics: metrics, logger: logger}
}

// ListUserLists returns the user's lists, provisioning the system lists on
// first use. All comes first, Favourite second, then custom lists in
// creation order.
func (s *ListService) ListUserLists(ctx context.Context, userID string) ([]*domain.UserList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.ensureSystemLists(ctx, userID); err != nil {
		return nil, err
	}

	lists, err := s.store.ListUserLists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user lists: %w", err)
	}
	return lists, nil
}

// GetList returns one of the user's lists with its member counts.
func (s *ListService) GetList(ctx context.Context, userID, listID string) (*domain.UserList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list, err := s.store.GetUserList(ctx, userID, listID)
	if err != nil {
		return nil, fromStore(err, "get list")
	}
	return list, nil
}

// CreateList creates an empty custom list.
func (s *ListService) CreateList(ctx context.Context, userID, name string) (*domain.UserList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := checkListName(name)
	if err != nil {
		return nil, err
	}

	listID, err := id.Generate(id.PrefixList)
	if err != nil {
		return nil, fmt.Errorf("generate list ID: %w", err)
	}

	list := &domain.UserList{
		ID:      listID,
		OwnerID: userID,
		Name:    name,
		Kind:    domain.CustomList{},
	}
	list.InitTimestamps()

	if err := s.store.CreateUserList(ctx, list); err != nil {
		return nil, fromStore(err, "create list")
	}

	s.metrics.ListMutation("create")
	s.logger.Info("list created", "list_id", list.ID, "user_id", userID, "name", name)
	return list, nil
}

// RenameList renames a custom list. System lists keep their names.
func (s *ListService) RenameList(ctx context.Context, userID, listID, name string) (*domain.UserList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := checkListName(name)
	if err != nil {
		return nil, err
	}

	list, err := s.ownedList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if list.IsSystem() {
		return nil, domainerrors.InvalidOperation("system lists cannot be renamed")
	}
	if list.Name == name {
		return list, nil
	}

	renamed, err := s.store.RenameUserList(ctx, userID, listID, name)
	if err != nil {
		return nil, fromStore(err, "rename list")
	}

	s.metrics.ListMutation("rename")
	s.logger.Info("list renamed", "list_id", listID, "user_id", userID, "name", name)
	return renamed, nil
}

// DeleteList deletes a custom list and its membership.
func (s *ListService) DeleteList(ctx context.Context, userID, listID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	list, err := s.ownedList(ctx, userID, listID)
	if err != nil {
		return err
	}
	if list.IsSystem() {
		return domainerrors.InvalidOperation("system lists cannot be deleted")
	}

	if err := s.store.DeleteUserList(ctx, userID, listID); err != nil {
		return fromStore(err, "delete list")
	}

	s.metrics.ListMutation("delete")
	s.logger.Info("list deleted", "list_id", listID, "user_id", userID)
	return nil
}

// AddBookToList adds a book to a list. Adding a member twice is a no-op.
func (s *ListService) AddBookToList(ctx context.Context, userID, listID, bookID string) error {
	return s.mutate(ctx, "add_book", func() error {
		return s.store.AddBookToList(ctx, userID, listID, bookID)
	}, "list_id", listID, "book_id", bookID)
}

// RemoveBookFromList removes a book from a list. Removing a non-member
// succeeds.
func (s *ListService) RemoveBookFromList(ctx context.Context, userID, listID, bookID string) error {
	return s.mutate(ctx, "remove_book", func() error {
		return s.store.RemoveBookFromList(ctx, userID, listID, bookID)
	}, "list_id", listID, "book_id", bookID)
}

// AddAuthorToList adds an author to a list.
func (s *ListService) AddAuthorToList(ctx context.Context, userID, listID, authorID string) error {
	return s.mutate(ctx, "add_author", func() error {
		return s.store.AddAuthorToList(ctx, userID, listID, authorID)
	}, "list_id", listID, "author_id", authorID)
}

// RemoveAuthorFromList removes an author from a list.
func (s *ListService) RemoveAuthorFromList(ctx context.Context, userID, listID, authorID string) error {
	return s.mutate(ctx, "remove_author", func() error {
		return s.store.RemoveAuthorFromList(ctx, userID, listID, authorID)
	}, "list_id", listID, "author_id", authorID)
}

// ListBooks pages over a list's books. The All list contains the whole
// catalog; every other list contains its members.
func (s *ListService) ListBooks(ctx context.Context, userID, listID string, req store.PageRequest, sort store.BookSort) (store.Page[*domain.Book], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Book]{}, err
	}

	list, err := s.ownedList(ctx, userID, listID)
	if err != nil {
		return store.Page[*domain.Book]{}, err
	}
	req = req.Normalize(s.limits)

	var page store.Page[*domain.Book]
	if list.Is(domain.SystemAll) {
		page, err = s.store.ListBooks(ctx, req, sort)
	} else {
		page, err = s.store.ListBooksInList(ctx, list.ID, req, sort)
	}
	if err != nil {
		return page, fmt.Errorf("list books: %w", err)
	}
	return page, nil
}

// ListAuthors pages over a list's author members.
func (s *ListService) ListAuthors(ctx context.Context, userID, listID string, req store.PageRequest, sort store.AuthorSort) (store.Page[*domain.Author], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.Author]{}, err
	}

	list, err := s.ownedList(ctx, userID, listID)
	if err != nil {
		return store.Page[*domain.Author]{}, err
	}

	page, err := s.store.ListAuthorsInList(ctx, list.ID, req.Normalize(s.limits), sort)
	if err != nil {
		return page, fmt.Errorf("list authors: %w", err)
	}
	return page, nil
}

func (s *ListService) ensureSystemLists(ctx context.Context, userID string) error {
	kinds := domain.SystemKinds()
	lists := make([]*domain.UserList, 0, len(kinds))
	for _, kind := range kinds {
		listID, err := id.Generate(id.PrefixList)
		if err != nil {
			return fmt.Errorf("generate list ID: %w", err)
		}
		l := &domain.UserList{
			ID:      listID,
			OwnerID: userID,
			Name:    kind.Name(),
			Kind:    domain.SystemList{Kind: kind},
		}
		l.InitTimestamps()
		lists = append(lists, l)
	}

	if err := s.store.EnsureSystemLists(ctx, lists); err != nil {
		return fromStore(err, "ensure system lists")
	}
	return nil
}

func (s *ListService) ownedList(ctx context.Context, userID, listID string) (*domain.UserList, error) {
	list, err := s.store.GetUserList(ctx, userID, listID)
	if err != nil {
		return nil, fromStore(err, "get list")
	}
	return list, nil
}

func (s *ListService) mutate(ctx context.Context, op string, fn func() error, logArgs ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return fromStore(err, strings.ReplaceAll(op, "_", " "))
	}
	s.metrics.ListMutation(op)
	s.logger.Debug("list membership changed", append([]any{"op", op}, logArgs...)...)
	return nil
}

// checkListName trims name and applies the naming rules shared by create
// and rename.
func checkListName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", domainerrors.InvalidInput("list name is required")
	case utf8.RuneCountInString(name) > MaxListNameLength:
		return "", domainerrors.InvalidInputf("list name must not exceed %d characters", MaxListNameLength)
	case domain.IsReservedListName(name):
		return "", domainerrors.Conflictf("%q is a reserved list name", name)
	}
	return name, nil
}
