package store

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/readinglog/readinglog-server/internal/domain"
)

func year(y int) *int { return &y }

func sortedTitles(books []*domain.Book, sort BookSort) []string {
	sorted := slices.Clone(books)
	slices.SortStableFunc(sorted, func(a, b *domain.Book) int { return CompareBooks(a, b, sort) })
	titles := make([]string, len(sorted))
	for i, b := range sorted {
		titles[i] = b.Title
	}
	return titles
}

func TestParseBookSort(t *testing.T) {
	assert.Equal(t, SortTitleAsc, ParseBookSort(""))
	assert.Equal(t, SortTitleAsc, ParseBookSort("popularity"))
	assert.Equal(t, SortYearDesc, ParseBookSort("YEAR_DESC"))
	assert.Equal(t, SortRatingDesc, ParseBookSort(" rating_desc "))
}

func TestParseAuthorSort(t *testing.T) {
	assert.Equal(t, SortNameAsc, ParseAuthorSort(""))
	assert.Equal(t, SortNameDesc, ParseAuthorSort("name_desc"))
	assert.Equal(t, SortNameAsc, ParseAuthorSort("title_desc"))
}

func TestCompareBooks(t *testing.T) {
	books := []*domain.Book{
		{ID: "book-1", Title: "dune", Year: year(1965), AverageRating: 4.5},
		{ID: "book-2", Title: "Anathem", AverageRating: 3},
		{ID: "book-3", Title: "Blindsight", Year: year(2006), AverageRating: 4.5},
		{ID: "book-4", Title: "Contact", Year: year(1985)},
	}

	assert.Equal(t, []string{"Anathem", "Blindsight", "Contact", "dune"}, sortedTitles(books, SortTitleAsc))
	assert.Equal(t, []string{"dune", "Contact", "Blindsight", "Anathem"}, sortedTitles(books, SortTitleDesc))
	assert.Equal(t, []string{"dune", "Contact", "Blindsight", "Anathem"}, sortedTitles(books, SortYearAsc))
	assert.Equal(t, []string{"Blindsight", "Contact", "dune", "Anathem"}, sortedTitles(books, SortYearDesc))
	assert.Equal(t, []string{"Blindsight", "dune", "Anathem", "Contact"}, sortedTitles(books, SortRatingDesc))
}

func TestCompareBooks_TiesBreakOnID(t *testing.T) {
	a := &domain.Book{ID: "book-a", Title: "Same"}
	b := &domain.Book{ID: "book-b", Title: "same"}

	assert.Negative(t, CompareBooks(a, b, SortTitleAsc))
	assert.Negative(t, CompareBooks(a, b, SortTitleDesc))
	assert.Negative(t, CompareBooks(a, b, SortYearDesc))
}
