package domain

// Genre is a book category. Slug is derived from Name and is what genre
// filters compare against.
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
