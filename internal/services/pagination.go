package services

import "ideaspark/internal/repositories"

// MaxPageSize bounds PageRequest.PageSize.
const MaxPageSize = 100

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) normalized() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 1
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) options() repositories.ListOptions {
	p = p.normalized()
	return repositories.ListOptions{Offset: (p.Page - 1) * p.PageSize, Limit: p.PageSize}
}

// PageResult is one page of items plus the size of the whole set.
type PageResult[T any] struct {
	Items []T
	Total int64
}
