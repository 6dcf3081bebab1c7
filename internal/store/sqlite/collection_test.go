package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/id"
	"github.com/readinglog/readinglog-server/internal/store"
)

func newEntry(userID, bookID string, status domain.CollectionStatus) *domain.CollectionEntry {
	e := &domain.CollectionEntry{
		ID:     id.MustGenerate(id.PrefixEntry),
		UserID: userID,
		BookID: bookID,
		Status: status,
	}
	e.InitTimestamps()
	return e
}

func TestUpsertCollectionEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "alice")
	book := mustCreateBook(t, s, "Emma")

	first := newEntry(user.ID, book.ID, domain.StatusWantToRead)
	if err := s.UpsertCollectionEntry(ctx, first); err != nil {
		t.Fatalf("UpsertCollectionEntry: %v", err)
	}
	if first.BookTitle != "Emma" {
		t.Errorf("BookTitle: got %q", first.BookTitle)
	}

	rating := 4
	second := newEntry(user.ID, book.ID, domain.StatusRead)
	second.Notes = "loved it"
	second.Rating = &rating
	if err := s.UpsertCollectionEntry(ctx, second); err != nil {
		t.Fatalf("UpsertCollectionEntry: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert should keep the original id: got %q, want %q", second.ID, first.ID)
	}
	if second.Status != domain.StatusRead || second.Notes != "loved it" || second.Rating == nil || *second.Rating != 4 {
		t.Errorf("unexpected entry: %+v", second)
	}

	page, err := s.ListCollectionEntries(ctx, user.ID, "", store.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("ListCollectionEntries: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("expected one entry per (user, book), got %d", page.Total)
	}
}

func TestUpsertCollectionEntry_UnknownBook(t *testing.T) {
	s := newTestStore(t)
	user := mustCreateUser(t, s, "alice")
	err := s.UpsertCollectionEntry(context.Background(), newEntry(user.ID, "book-missing", domain.StatusReading))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCollectionEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "alice")
	book := mustCreateBook(t, s, "Emma")

	if err := s.UpsertCollectionEntry(ctx, newEntry(user.ID, book.ID, domain.StatusReading)); err != nil {
		t.Fatalf("UpsertCollectionEntry: %v", err)
	}
	if err := s.DeleteCollectionEntry(ctx, user.ID, book.ID); err != nil {
		t.Fatalf("DeleteCollectionEntry: %v", err)
	}
	if _, err := s.GetCollectionEntry(ctx, user.ID, book.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteCollectionEntry(ctx, user.ID, book.ID); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestListCollectionEntries_StatusFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "alice")
	other := mustCreateUser(t, s, "bob")
	emma := mustCreateBook(t, s, "Emma")
	dune := mustCreateBook(t, s, "Dune")
	ulysses := mustCreateBook(t, s, "Ulysses")

	for _, e := range []*domain.CollectionEntry{
		newEntry(user.ID, emma.ID, domain.StatusRead),
		newEntry(user.ID, dune.ID, domain.StatusReading),
		newEntry(user.ID, ulysses.ID, domain.StatusRead),
		newEntry(other.ID, emma.ID, domain.StatusRead),
	} {
		time.Sleep(2 * time.Millisecond)
		e.InitTimestamps()
		if err := s.UpsertCollectionEntry(ctx, e); err != nil {
			t.Fatalf("UpsertCollectionEntry: %v", err)
		}
	}

	page, err := s.ListCollectionEntries(ctx, user.ID, domain.StatusRead, store.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("ListCollectionEntries: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("Total: got %d, want 2", page.Total)
	}
	if page.Items[0].BookTitle != "Ulysses" || page.Items[1].BookTitle != "Emma" {
		t.Errorf("newest-updated first: %q, %q", page.Items[0].BookTitle, page.Items[1].BookTitle)
	}
}
