package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Offset returns the row offset for the page. Pages start at 1.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the page size, defaulting to 50 and capped at 200.
func (p Pagination) Limit() int {
	switch {
	case p.PageSize <= 0:
		return 50
	case p.PageSize > 200:
		return 200
	}
	return p.PageSize
}

// DateRange bounds a listing by time. Zero values leave that side open.
type DateRange struct {
	From time.Time `json:"from" form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `json:"to" form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}
