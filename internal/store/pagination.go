package store

// PageLimits bounds page sizes.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPageLimits is a default size of 20, capped at 100.
var DefaultPageLimits = PageLimits{DefaultSize: 20, MaxSize: 100}

// PageRequest asks for a zero-based page of Size items.
type PageRequest struct {
	Page int
	Size int
}

// Normalize applies the one pagination rule used everywhere: a negative page
// is page 0, a non-positive size is the default, and size is capped at max.
func (r PageRequest) Normalize(l PageLimits) PageRequest {
	if l.DefaultSize <= 0 {
		l = DefaultPageLimits
	}
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = l.DefaultSize
	}
	if r.Size > l.MaxSize {
		r.Size = l.MaxSize
	}
	return r
}

// Offset returns the index of the first item of the page.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Page is one page of a larger result.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalPages int `json:"total_pages"`
}

// NewPage wraps items already sliced to req (which must be normalized).
func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{Items: items, Total: total, Page: req.Page, Size: req.Size, TotalPages: totalPages}
}

// Paginate slices an in-memory result. A start at or beyond the end yields
// an empty page with the full total.
func Paginate[T any](all []T, req PageRequest) Page[T] {
	total := len(all)
	start := req.Offset()
	if start >= total {
		return NewPage([]T{}, total, req)
	}
	end := min(start+req.Size, total)
	return NewPage(all[start:end], total, req)
}
