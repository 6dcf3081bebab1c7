package api

import (
	"time"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/store"
)

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// PageResponse is one page of a larger result.
type PageResponse[T any] struct {
	Items      []T `json:"items" doc:"Items on this page"`
	Total      int `json:"total" doc:"Total number of items"`
	Page       int `json:"page" doc:"Zero-based page index"`
	Size       int `json:"size" doc:"Page size"`
	TotalPages int `json:"total_pages" doc:"Number of pages"`
}

// PageInput holds the pagination query parameters shared by list endpoints.
type PageInput struct {
	Page int `query:"page" minimum:"0" doc:"Zero-based page index"`
	Size int `query:"size" minimum:"0" doc:"Page size (server default when 0, capped)"`
}

func (p PageInput) request() store.PageRequest {
	return store.PageRequest{Page: p.Page, Size: p.Size}
}

func mapPage[S, T any](p store.Page[S], fn func(S) T) PageResponse[T] {
	items := make([]T, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return PageResponse[T]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Size:       p.Size,
		TotalPages: p.TotalPages,
	}
}

func mapSlice[S, T any](in []S, fn func(S) T) []T {
	out := make([]T, len(in))
	for i, item := range in {
		out[i] = fn(item)
	}
	return out
}

// UserResponse contains user information. Credentials are never included.
type UserResponse struct {
	ID          string     `json:"id" doc:"User ID"`
	Username    string     `json:"username" doc:"Unique username"`
	Email       string     `json:"email" doc:"User email"`
	DisplayName string     `json:"display_name" doc:"Display name"`
	AvatarURL   string     `json:"avatar_url" doc:"Avatar image URL"`
	Role        string     `json:"role" doc:"Role: admin, moderator or member"`
	CreatedAt   time.Time  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time  `json:"updated_at" doc:"Last update timestamp"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" doc:"Last login timestamp"`
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// AuthorRefResponse is an author embedded in a book.
type AuthorRefResponse struct {
	ID   string `json:"id" doc:"Author ID"`
	Name string `json:"name" doc:"Author name"`
}

// GenreResponse contains genre data.
type GenreResponse struct {
	ID   string `json:"id" doc:"Genre ID"`
	Name string `json:"name" doc:"Genre name"`
	Slug string `json:"slug" doc:"URL-safe slug used by filters"`
}

func mapGenre(g domain.Genre) GenreResponse {
	return GenreResponse{ID: g.ID, Name: g.Name, Slug: g.Slug}
}

// BookResponse contains book data with its rating aggregate.
type BookResponse struct {
	ID            string              `json:"id" doc:"Book ID"`
	Title         string              `json:"title" doc:"Title"`
	ISBN          string              `json:"isbn,omitempty" doc:"ISBN without separators"`
	Year          *int                `json:"year,omitempty" doc:"Publication year"`
	Description   string              `json:"description,omitempty" doc:"Description"`
	CoverURL      string              `json:"cover_url,omitempty" doc:"Cover image URL"`
	Authors       []AuthorRefResponse `json:"authors" doc:"Authors in credit order"`
	Genres        []GenreResponse     `json:"genres" doc:"Genres"`
	AverageRating float64             `json:"average_rating" doc:"Mean rating of approved reviews, 0 when none"`
	ReviewCount   int                 `json:"review_count" doc:"Number of approved reviews"`
	CreatedAt     time.Time           `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt     time.Time           `json:"updated_at" doc:"Last update timestamp"`
}

func mapBook(b *domain.Book) BookResponse {
	resp := BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		ISBN:          b.ISBN,
		Year:          b.Year,
		Description:   b.Description,
		CoverURL:      b.CoverURL,
		Authors:       make([]AuthorRefResponse, len(b.Authors)),
		Genres:        mapSlice(b.Genres, mapGenre),
		AverageRating: b.AverageRating,
		ReviewCount:   b.ReviewCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for i, a := range b.Authors {
		resp.Authors[i] = AuthorRefResponse{ID: a.ID, Name: a.Name}
	}
	return resp
}

// AuthorResponse contains author data.
type AuthorResponse struct {
	ID          string    `json:"id" doc:"Author ID"`
	Name        string    `json:"name" doc:"Name"`
	Biography   string    `json:"biography,omitempty" doc:"Biography"`
	PhotoURL    string    `json:"photo_url,omitempty" doc:"Photo URL"`
	BirthYear   *int      `json:"birth_year,omitempty" doc:"Year of birth"`
	DeathYear   *int      `json:"death_year,omitempty" doc:"Year of death"`
	Nationality string    `json:"nationality,omitempty" doc:"Nationality"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
}

func mapAuthor(a *domain.Author) AuthorResponse {
	return AuthorResponse{
		ID:          a.ID,
		Name:        a.Name,
		Biography:   a.Biography,
		PhotoURL:    a.PhotoURL,
		BirthYear:   a.BirthYear,
		DeathYear:   a.DeathYear,
		Nationality: a.Nationality,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ListResponse contains a user list with its member counts.
type ListResponse struct {
	ID          string    `json:"id" doc:"List ID"`
	Name        string    `json:"name" doc:"List name"`
	Kind        string    `json:"kind" doc:"system_all, system_favourite or custom"`
	System      bool      `json:"system" doc:"Whether the list is a system list"`
	BookCount   int       `json:"book_count" doc:"Number of member books"`
	AuthorCount int       `json:"author_count" doc:"Number of member authors"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
}

func mapList(l *domain.UserList) ListResponse {
	resp := ListResponse{
		ID:          l.ID,
		Name:        l.Name,
		System:      l.IsSystem(),
		BookCount:   l.BookCount,
		AuthorCount: l.AuthorCount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Kind != nil {
		resp.Kind = l.Kind.Value()
	}
	return resp
}

// ReviewResponse contains a review.
type ReviewResponse struct {
	ID          string     `json:"id" doc:"Review ID"`
	BookID      string     `json:"book_id" doc:"Reviewed book"`
	BookTitle   string     `json:"book_title,omitempty" doc:"Title of the reviewed book"`
	UserID      string     `json:"user_id" doc:"Author of the review"`
	Username    string     `json:"username,omitempty" doc:"Username of the author"`
	Text        string     `json:"text" doc:"Review text"`
	Rating      int        `json:"rating" doc:"Rating from 1 to 5"`
	Status      string     `json:"status" doc:"pending, approved or rejected"`
	CreatedAt   time.Time  `json:"created_at" doc:"Submission timestamp"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty" doc:"Moderation timestamp"`
	ModeratedBy string     `json:"moderated_by,omitempty" doc:"Moderator user ID"`
}

func mapReview(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		BookID:      r.BookID,
		BookTitle:   r.BookTitle,
		UserID:      r.UserID,
		Username:    r.Username,
		Text:        r.Text,
		Rating:      r.Rating,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		ModeratedAt: r.ModeratedAt,
		ModeratedBy: r.ModeratedBy,
	}
}

// EntryResponse contains a collection entry.
type EntryResponse struct {
	ID        string    `json:"id" doc:"Entry ID"`
	BookID    string    `json:"book_id" doc:"Book ID"`
	BookTitle string    `json:"book_title,omitempty" doc:"Book title"`
	Status    string    `json:"status" doc:"want_to_read, reading, read or abandoned"`
	Notes     string    `json:"notes,omitempty" doc:"Private notes"`
	Rating    *int      `json:"rating,omitempty" doc:"Private rating from 1 to 5"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`
}

func mapEntry(e *domain.CollectionEntry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		BookID:    e.BookID,
		BookTitle: e.BookTitle,
		Status:    string(e.Status),
		Notes:     e.Notes,
		Rating:    e.Rating,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
