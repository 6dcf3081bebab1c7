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
	"github.com/readinglog/readinglog-server/internal/store"
)

// MaxEntryNotesLength bounds the notes on a collection entry.
const MaxEntryNotesLength = 2000

// CollectionService tracks each user's reading status per book.
type CollectionService struct {
	store  store.Store
	limits store.PageLimits
	logger *slog.Logger
}

// NewCollectionService creates a collection service.
func NewCollectionService(st store.Store, limits store.PageLimits, logger *slog.Logger) *CollectionService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if limits.DefaultSize <= 0 || limits.MaxSize <= 0 {
		limits = store.DefaultPageLimits
	}
	return &CollectionService{store: st, limits: limits, logger: logger}
}

// UpsertEntryRequest sets the reading status of a book.
type UpsertEntryRequest struct {
	Status domain.CollectionStatus `json:"status"`
	Notes  string                  `json:"notes,omitempty"`
	Rating *int                    `json:"rating,omitempty"`
}

// UpsertEntry creates or replaces the user's entry for a book.
func (s *CollectionService) UpsertEntry(ctx context.Context, userID, bookID string, req UpsertEntryRequest) (*domain.CollectionEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !req.Status.Valid() {
		return nil, domainerrors.InvalidInputf("unknown status %q", req.Status)
	}
	if req.Rating != nil && !domain.ValidRating(*req.Rating) {
		return nil, domainerrors.InvalidInputf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	notes := strings.TrimSpace(req.Notes)
	if utf8.RuneCountInString(notes) > MaxEntryNotesLength {
		return nil, domainerrors.InvalidInputf("notes must not exceed %d characters", MaxEntryNotesLength)
	}

	entryID, err := id.Generate(id.PrefixEntry)
	if err != nil {
		return nil, fmt.Errorf("generate entry ID: %w", err)
	}

	entry := &domain.CollectionEntry{
		ID:     entryID,
		UserID: userID,
		BookID: bookID,
		Status: req.Status,
		Notes:  notes,
		Rating: req.Rating,
	}
	entry.InitTimestamps()

	if err := s.store.UpsertCollectionEntry(ctx, entry); err != nil {
		return nil, fromStore(err, "upsert collection entry")
	}

	s.logger.Debug("collection entry saved", "user_id", userID, "book_id", bookID, "status", req.Status)
	return entry, nil
}

// GetEntry returns the user's entry for a book.
func (s *CollectionService) GetEntry(ctx context.Context, userID, bookID string) (*domain.CollectionEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry, err := s.store.GetCollectionEntry(ctx, userID, bookID)
	if err != nil {
		return nil, fromStore(err, "get collection entry")
	}
	return entry, nil
}

// RemoveEntry deletes the user's entry for a book; a missing entry is fine.
func (s *CollectionService) RemoveEntry(ctx context.Context, userID, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.DeleteCollectionEntry(ctx, userID, bookID); err != nil {
		return fmt.Errorf("delete collection entry: %w", err)
	}
	return nil
}

// ListEntries pages over the user's entries, optionally by status.
func (s *CollectionService) ListEntries(ctx context.Context, userID string, status domain.CollectionStatus, req store.PageRequest) (store.Page[*domain.CollectionEntry], error) {
	if err := ctx.Err(); err != nil {
		return store.Page[*domain.CollectionEntry]{}, err
	}
	if status != "" && !status.Valid() {
		return store.Page[*domain.CollectionEntry]{}, domainerrors.InvalidInputf("unknown status %q", status)
	}

	page, err := s.store.ListCollectionEntries(ctx, userID, status, req.Normalize(s.limits))
	if err != nil {
		return page, fmt.Errorf("list collection entries: %w", err)
	}
	return page, nil
}
