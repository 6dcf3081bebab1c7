package domain

// AuthorRef is the short form of an author embedded in a book.
type AuthorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Book is a catalog entry shared by all users.
//
// AverageRating and ReviewCount are derived from approved reviews every time
// a book is read; they are never written.
type Book struct {
	Timestamps
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	ISBN          string      `json:"isbn,omitempty"`
	Year          *int        `json:"year,omitempty"`
	Description   string      `json:"description,omitempty"`
	CoverURL      string      `json:"cover_url,omitempty"`
	Authors       []AuthorRef `json:"authors"`
	Genres        []Genre     `json:"genres"`
	AverageRating float64     `json:"average_rating"`
	ReviewCount   int         `json:"review_count"`
}

// HasAnyGenre reports whether one of the book's genres has a slug in slugs.
// An empty set matches every book.
func (b *Book) HasAnyGenre(slugs map[string]struct{}) bool {
	if len(slugs) == 0 {
		return true
	}
	for _, g := range b.Genres {
		if _, ok := slugs[g.Slug]; ok {
			return true
		}
	}
	return false
}

// AuthorNames returns the names of the book's authors in order.
func (b *Book) AuthorNames() []string {
	names := make([]string, len(b.Authors))
	for i, a := range b.Authors {
		names[i] = a.Name
	}
	return names
}
