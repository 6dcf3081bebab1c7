package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/store"
)

func TestDeleteUser_Cascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	book := mustCreateBook(t, s, "Emma")
	author := mustCreateAuthor(t, s, "Jane Austen")

	if err := s.EnsureSystemLists(ctx, systemListsFor(alice.ID)); err != nil {
		t.Fatalf("EnsureSystemLists: %v", err)
	}
	list := mustCreateList(t, s, alice.ID, "Mine")
	if err := s.AddBookToList(ctx, alice.ID, list.ID, book.ID); err != nil {
		t.Fatalf("AddBookToList: %v", err)
	}
	if err := s.AddAuthorToList(ctx, alice.ID, list.ID, author.ID); err != nil {
		t.Fatalf("AddAuthorToList: %v", err)
	}
	if err := s.UpsertCollectionEntry(ctx, newEntry(alice.ID, book.ID, domain.StatusRead)); err != nil {
		t.Fatalf("UpsertCollectionEntry: %v", err)
	}
	if err := s.CreateSession(ctx, makeTestSession("sess-alice", alice.ID, "h", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	mustCreateReview(t, s, book.ID, alice.ID, 1, domain.ReviewApproved)
	mustCreateReview(t, s, book.ID, bob.ID, 5, domain.ReviewApproved)

	bobReview := mustCreateReview(t, s, book.ID, bob.ID, 3, domain.ReviewPending)
	if _, err := s.TransitionReview(ctx, bobReview.ID, domain.ReviewPending, domain.ReviewApproved, alice.ID, time.Now()); err != nil {
		t.Fatalf("TransitionReview: %v", err)
	}

	before, _, err := s.BookRating(ctx, book.ID)
	if err != nil {
		t.Fatalf("BookRating: %v", err)
	}
	if before != 3 {
		t.Fatalf("rating before delete: got %v, want 3", before)
	}

	if err := s.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := s.GetUser(ctx, alice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user should be gone, got %v", err)
	}
	for table, query := range map[string]string{
		"sessions":           `SELECT COUNT(*) FROM sessions WHERE user_id = ?`,
		"user_lists":         `SELECT COUNT(*) FROM user_lists WHERE owner_id = ?`,
		"collection_entries": `SELECT COUNT(*) FROM collection_entries WHERE user_id = ?`,
		"reviews":            `SELECT COUNT(*) FROM reviews WHERE user_id = ?`,
	} {
		n, err := count(ctx, s.db, query, alice.ID)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s: %d rows left", table, n)
		}
	}
	n, err := count(ctx, s.db, `SELECT COUNT(*) FROM list_books WHERE list_id = ?`, list.ID)
	if err != nil || n != 0 {
		t.Errorf("list_books rows left: %d (%v)", n, err)
	}
	n, err = count(ctx, s.db, `SELECT COUNT(*) FROM list_authors WHERE list_id = ?`, list.ID)
	if err != nil || n != 0 {
		t.Errorf("list_authors rows left: %d (%v)", n, err)
	}

	after, approved, err := s.BookRating(ctx, book.ID)
	if err != nil {
		t.Fatalf("BookRating: %v", err)
	}
	if after != 4 || approved != 2 {
		t.Errorf("rating after delete: got %v/%d, want 4/2", after, approved)
	}

	r, err := s.GetReview(ctx, bobReview.ID)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if r.ModeratedBy != "" || r.Status != domain.ReviewApproved {
		t.Errorf("moderation mark should be cleared but status kept: %+v", r)
	}

	if ok, _ := s.BookExists(ctx, book.ID); !ok {
		t.Error("shared catalog rows must survive")
	}
	if ok, _ := s.AuthorExists(ctx, author.ID); !ok {
		t.Error("shared catalog rows must survive")
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteUser(context.Background(), "user-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
