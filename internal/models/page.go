package models

// Page is one page of results with pagination metadata.
//
// Pages is 1-based; invariants: len(Items) <= PageSize and, once any data
// exists, Page <= Pages. A backend without native pagination reports
// Pages = 1 rather than fabricating a total it cannot know.
type Page[T any] struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
	Items    []T `json:"data"`
}

// SinglePage wraps items as the only page of an unpaginated result set.
func SinglePage[T any](pageSize int, items []T) Page[T] {
	return Page[T]{Page: 1, PageSize: pageSize, Pages: 1, Items: items}
}
