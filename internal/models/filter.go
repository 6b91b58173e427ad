package models

import (
	"math"
	"strings"
)

const (
	// DefaultPageLimit is used when a listing request does not set limit.
	DefaultPageLimit = 10
	// MaxPageLimit is the largest page a listing request may ask for.
	MaxPageLimit = 100
	// MinProjectYear is the earliest year a project may carry.
	MinProjectYear = 1900
	// FieldAll is the sentinel field value that disables field filtering.
	FieldAll = "all"
)

// ProjectFilter is a validated listing request.
// Year and the YearFrom/YearTo range are mutually exclusive.
type ProjectFilter struct {
	Search   string
	Field    string
	Year     *int
	YearFrom *int
	YearTo   *int
	Page     int
	Limit    int
}

// Normalized returns a copy with pagination defaults applied and the
// "all" field sentinel cleared.
func (f ProjectFilter) Normalized() ProjectFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Field = strings.TrimSpace(f.Field)
	if strings.EqualFold(f.Field, FieldAll) {
		f.Field = ""
	}
	return f
}

// Offset returns the number of rows skipped before the requested page. It
// saturates at math.MaxInt for pages too far out to compute, which are
// always past the last row.
func (f ProjectFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// ProjectPage is one page of a project listing.
type ProjectPage struct {
	Items      []ProjectView `json:"items"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"totalPages"`
}

// TotalPages returns ceil(total/limit), or 0 when there is nothing to page.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
