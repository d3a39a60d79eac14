// Package pagination provides offset-based pagination helpers for list endpoints.
package pagination

import "gorm.io/gorm"

// PageRequest carries pagination parameters bound from query strings.
type PageRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Normalize fills defaults for unset fields.
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 10
	}
}

// Offset returns the row offset for the current page.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PageMeta describes the shape of a paginated result set.
type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

// NewPageMeta computes page metadata from a total row count and a request.
func NewPageMeta(total int64, req PageRequest) PageMeta {
	pages := int(total) / req.Limit
	if int(total)%req.Limit != 0 {
		pages++
	}
	return PageMeta{Total: total, Page: req.Page, Pages: pages}
}

// Paginate returns a gorm scope applying the request's offset and limit.
func Paginate(req PageRequest) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.Limit)
	}
}
