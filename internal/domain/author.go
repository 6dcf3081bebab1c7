package domain

// Author is a catalog author shared by all users.
type Author struct {
	Timestamps
	ID          string `json:"id"`
	Name        string `json:"name"`
	Biography   string `json:"biography,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	BirthYear   *int   `json:"birth_year,omitempty"`
	DeathYear   *int   `json:"death_year,omitempty"`
	Nationality string `json:"nationality,omitempty"`
}
