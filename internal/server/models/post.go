package models

import "time"

type Post struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PostUpdate struct {
	Title   *string
	Content *string
}

func (p *Post) Apply(upd PostUpdate) {
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
}

// PostFilter narrows a post listing. Empty fields match everything.
type PostFilter struct {
	AuthorID string
	Query    string
}

// PageRequest is a 1-based page of a listing.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}
