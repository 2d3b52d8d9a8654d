package model

import "math"

// Page is the paginated response body shared by nearby and search.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// Pages returns ceil(total/pageSize). It is 0 when there is nothing to page
// through, never 1 for an empty result.
func Pages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Offset is the number of rows skipped before the given 1-based page. It
// saturates at math.MaxInt so a page far past the end stays a valid, empty
// page instead of wrapping negative.
func Offset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// NewPage echoes page and pageSize unchanged; a page past the end simply
// carries no items.
func NewPage[T any](items []T, total, page, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    Pages(total, pageSize),
	}
}
