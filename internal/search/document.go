// Package search provides full-text search over the catalog using Bleve.
// Books and authors live in one index and are told apart by document type.
package search

import (
	"strings"

	"github.com/readinglog/readinglog-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook   DocType = "book"
	DocTypeAuthor DocType = "author"
)

// ParseDocTypes keeps the known types from values and drops the rest.
func ParseDocTypes(values []string) []DocType {
	var types []DocType
	for _, v := range values {
		switch t := DocType(strings.ToLower(strings.TrimSpace(v))); t {
		case DocTypeBook, DocTypeAuthor:
			types = append(types, t)
		}
	}
	return types
}

// Document is the unified document structure for the Bleve index.
//
// Author names are denormalized into book documents so a single query
// finds a book by its author.
type Document struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Book title or author name.
	Name string `json:"name"`

	// Book fields.
	Description string   `json:"description,omitempty"`
	Author      string   `json:"author,omitempty"`
	ISBN        string   `json:"isbn,omitempty"`
	GenreSlugs  []string `json:"genre_slugs,omitempty"`
	Year        int      `json:"year,omitempty"`

	// Author fields.
	Biography   string `json:"biography,omitempty"`
	Nationality string `json:"nationality,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map keyed by the mapped field names.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if d.Year != 0 {
		m["year"] = d.Year
	}
	if d.Biography != "" {
		m["biography"] = d.Biography
	}
	if d.Nationality != "" {
		m["nationality"] = d.Nationality
	}

	return m
}

// BookDocument converts a catalog book, with its authors and genres
// attached, to a Document.
func BookDocument(b *domain.Book) *Document {
	doc := &Document{
		ID:          b.ID,
		Type:        DocTypeBook,
		Name:        b.Title,
		Description: b.Description,
		Author:      strings.Join(b.AuthorNames(), ", "),
		ISBN:        b.ISBN,
		CreatedAt:   b.CreatedAt.UnixMilli(),
	}
	for _, g := range b.Genres {
		doc.GenreSlugs = append(doc.GenreSlugs, g.Slug)
	}
	if b.Year != nil {
		doc.Year = *b.Year
	}
	return doc
}

// AuthorDocument converts an author to a Document.
func AuthorDocument(a *domain.Author) *Document {
	return &Document{
		ID:          a.ID,
		Type:        DocTypeAuthor,
		Name:        a.Name,
		Biography:   a.Biography,
		Nationality: a.Nationality,
		CreatedAt:   a.CreatedAt.UnixMilli(),
	}
}
