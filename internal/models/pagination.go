package models

const (
	// DefaultPageSize is used when a caller does not ask for a size.
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Offset far from integer overflow.
	MaxPage = 1_000_000
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination clamps page and size to usable values.
func NewPagination(page, pageSize int) Pagination {
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) Limit() int {
	return p.PageSize
}

// TotalPages returns ceil(total / PageSize).
func (p Pagination) TotalPages(total int64) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	size := int64(p.PageSize)
	return int((total + size - 1) / size)
}
