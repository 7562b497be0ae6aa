package domain

import "math" // Offset bounds

// Pagination limits
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = math.MaxInt / MaxLimit // Keeps Offset within int
)

// Sort orders
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// PageQuery is a requested page window.
type PageQuery struct {
	Page  int
	Limit int
}

// Normalize fills defaults and clamps the page to MaxPage and the limit to
// MaxLimit.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// Offset is the number of rows preceding the page, saturating at math.MaxInt.
func (q PageQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Meta describes a returned page.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta builds page metadata; TotalPages is ceil(total/limit).
func NewMeta(q PageQuery, total int64) Meta {
	return Meta{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
	}
}

// Page is a list result.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}
