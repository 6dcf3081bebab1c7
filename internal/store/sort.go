package store

import (
	"cmp"
	"strings"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/normalize"
)

// BookSort is a catalog sort key.
type BookSort string

// Book sort keys.
const (
	SortTitleAsc   BookSort = "title_asc"
	SortTitleDesc  BookSort = "title_desc"
	SortYearAsc    BookSort = "year_asc"
	SortYearDesc   BookSort = "year_desc"
	SortRatingDesc BookSort = "rating_desc"
)

// BookSorts lists the accepted keys.
var BookSorts = []BookSort{SortTitleAsc, SortTitleDesc, SortYearAsc, SortYearDesc, SortRatingDesc}

// ParseBookSort maps a client value to a sort key. Unknown or empty values
// fall back to title_asc.
func ParseBookSort(s string) BookSort {
	key := BookSort(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case SortTitleAsc, SortTitleDesc, SortYearAsc, SortYearDesc, SortRatingDesc:
		return key
	default:
		return SortTitleAsc
	}
}

// CompareBooks orders books exactly like the SQL ORDER BY for the key:
// missing years last in both year orders, ties broken by title ascending
// and then id.
func CompareBooks(a, b *domain.Book, sort BookSort) int {
	ta, tb := normalize.SearchKey(a.Title), normalize.SearchKey(b.Title)
	tie := func() int {
		return cmp.Or(cmp.Compare(ta, tb), cmp.Compare(a.ID, b.ID))
	}

	switch sort {
	case SortTitleDesc:
		return cmp.Or(cmp.Compare(tb, ta), cmp.Compare(a.ID, b.ID))
	case SortYearAsc, SortYearDesc:
		switch {
		case a.Year == nil && b.Year == nil:
			return tie()
		case a.Year == nil:
			return 1
		case b.Year == nil:
			return -1
		}
		c := cmp.Compare(*a.Year, *b.Year)
		if sort == SortYearDesc {
			c = -c
		}
		return cmp.Or(c, tie())
	case SortRatingDesc:
		return cmp.Or(cmp.Compare(b.AverageRating, a.AverageRating), tie())
	default:
		return tie()
	}
}

// AuthorSort is an author listing sort key.
type AuthorSort string

// Author sort keys.
const (
	SortNameAsc  AuthorSort = "name_asc"
	SortNameDesc AuthorSort = "name_desc"
)

// ParseAuthorSort maps a client value to an author sort key, defaulting to
// name_asc.
func ParseAuthorSort(s string) AuthorSort {
	if AuthorSort(strings.ToLower(strings.TrimSpace(s))) == SortNameDesc {
		return SortNameDesc
	}
	return SortNameAsc
}
