package domain

import "fmt"

// SystemKind identifies one of the lists every user owns implicitly.
type SystemKind int

const (
	// SystemAll is the "All" list. Its contents are the whole catalog.
	SystemAll SystemKind = iota
	// SystemFavourite is the "Favourite" list.
	SystemFavourite
)

// Name returns the fixed display name of the system list.
func (k SystemKind) Name() string {
	switch k {
	case SystemAll:
		return "All"
	case SystemFavourite:
		return "Favourite"
	default:
		return fmt.Sprintf("SystemKind(%d)", int(k))
	}
}

// SystemKinds returns every system kind in display order.
func SystemKinds() []SystemKind {
	return []SystemKind{SystemAll, SystemFavourite}
}

// ListKind is the kind of a UserList: either a SystemList or a CustomList.
type ListKind interface {
	// Value is the persisted form of the kind.
	Value() string
	IsSystem() bool
	// rank orders lists: All, Favourite, then custom lists.
	rank() int
}

// SystemList is the kind of the lists provisioned for every user.
type SystemList struct {
	Kind SystemKind
}

// Value implements ListKind.
func (s SystemList) Value() string {
	switch s.Kind {
	case SystemAll:
		return "system_all"
	case SystemFavourite:
		return "system_favourite"
	default:
		return "system_unknown"
	}
}

// IsSystem implements ListKind.
func (SystemList) IsSystem() bool { return true }

func (s SystemList) rank() int { return int(s.Kind) }

// CustomList is the kind of lists created by users.
type CustomList struct{}

// Value implements ListKind.
func (CustomList) Value() string { return "custom" }

// IsSystem implements ListKind.
func (CustomList) IsSystem() bool { return false }

func (CustomList) rank() int { return 100 }

// ParseListKind converts a persisted kind back into a ListKind.
func ParseListKind(v string) (ListKind, error) {
	switch v {
	case "system_all":
		return SystemList{Kind: SystemAll}, nil
	case "system_favourite":
		return SystemList{Kind: SystemFavourite}, nil
	case "custom":
		return CustomList{}, nil
	default:
		return nil, fmt.Errorf("unknown list kind %q", v)
	}
}

// IsReservedListName reports whether name belongs to a system list.
// Comparison is case-sensitive, like list name uniqueness.
func IsReservedListName(name string) bool {
	for _, k := range SystemKinds() {
		if k.Name() == name {
			return true
		}
	}
	return false
}

// UserList is a named, user-owned collection of books and authors.
type UserList struct {
	Timestamps
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	Kind        ListKind `json:"-"`
	BookCount   int      `json:"book_count"`
	AuthorCount int      `json:"author_count"`
}

// IsSystem reports whether the list is one of the provisioned system lists.
func (l *UserList) IsSystem() bool {
	return l.Kind != nil && l.Kind.IsSystem()
}

// Is reports whether the list is the given system list.
func (l *UserList) Is(kind SystemKind) bool {
	s, ok := l.Kind.(SystemList)
	return ok && s.Kind == kind
}

// ListBefore orders lists for display: All, Favourite, then custom lists by
// creation time and id.
func ListBefore(a, b *UserList) bool {
	ra, rb := a.Kind.rank(), b.Kind.rank()
	if ra != rb {
		return ra < rb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
