package domain

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber keeps Offset representable for every accepted page size.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Page is a slice of results plus pagination metadata.
type Page[T any] struct {
	Items       []T
	PageNumber  int
	PageSize    int
	TotalCount  int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
}

// NormalizePaging clamps caller supplied paging values into the accepted range.
func NormalizePaging(pageNumber, pageSize int) (int, int) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > MaxPageNumber {
		pageNumber = MaxPageNumber
	}
	return pageNumber, pageSize
}

// Offset returns the number of rows preceding pageNumber. It saturates at
// math.MaxInt instead of wrapping.
func Offset(pageNumber, pageSize int) int {
	if pageNumber <= 1 || pageSize <= 0 {
		return 0
	}
	if pageNumber-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (pageNumber - 1) * pageSize
}

// NewPage derives the envelope metadata. pageSize must be positive.
func NewPage[T any](items []T, pageNumber, pageSize, totalCount int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return &Page[T]{
		Items:       items,
		PageNumber:  pageNumber,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasPrevious: pageNumber > 1,
		HasNext:     pageNumber < totalPages,
	}
}
