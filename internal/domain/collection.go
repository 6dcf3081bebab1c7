package domain

// CollectionStatus is where a book sits in a user's reading life.
type CollectionStatus string

const (
	StatusWantToRead CollectionStatus = "want_to_read"
	StatusReading    CollectionStatus = "reading"
	StatusRead       CollectionStatus = "read"
	StatusAbandoned  CollectionStatus = "abandoned"
)

// Valid reports whether s is a known status.
func (s CollectionStatus) Valid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusRead, StatusAbandoned:
		return true
	}
	return false
}

// CollectionEntry records one user's relationship with one book.
// There is at most one entry per (user, book).
type CollectionEntry struct {
	Timestamps
	ID     string           `json:"id"`
	UserID string           `json:"user_id"`
	BookID string           `json:"book_id"`
	Status CollectionStatus `json:"status"`
	Notes  string           `json:"notes,omitempty"`
	Rating *int             `json:"rating,omitempty"`

	// Populated on read.
	BookTitle string `json:"book_title,omitempty"`
}
