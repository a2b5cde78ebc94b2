// Package paging provides the offset/limit pagination types shared by the
// catalog and order listing queries.
package paging

import "github.com/go-faster/errors"

// Sentinel errors for page request validation.
var (
	ErrNegativePage = errors.New("page number must not be negative")
	ErrInvalidSize  = errors.New("page size must be greater than 0")
)

// Request is a zero-based page request.
type Request struct {
	Page int
	Size int
}

// NewRequest validates the page number and size.
func NewRequest(page, size int) (Request, error) {
	if page < 0 {
		return Request{}, ErrNegativePage
	}
	if size <= 0 {
		return Request{}, ErrInvalidSize
	}
	return Request{Page: page, Size: size}, nil
}

// Offset returns the number of records to skip.
func (r Request) Offset() int {
	return r.Page * r.Size
}

// Page holds one page of results together with the total match count.
type Page[T any] struct {
	Content []T
	Page    int
	Size    int
	Total   int64
}

// NewPage assembles a result page for the given request.
func NewPage[T any](content []T, req Request, total int64) Page[T] {
	return Page[T]{
		Content: content,
		Page:    req.Page,
		Size:    req.Size,
		Total:   total,
	}
}
