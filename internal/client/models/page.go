package models

import (
	"net/url"
	"strconv"
)

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is the data member of every list endpoint.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PageParams selects a page. Zero values are left to the server defaults.
type PageParams struct {
	Page     int `json:"page" validate:"min=0"`
	PageSize int `json:"pageSize" validate:"min=0,max=99"`
}

// Query encodes the non-zero parameters into q, allocating it when nil.
func (p PageParams) Query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	return q
}
