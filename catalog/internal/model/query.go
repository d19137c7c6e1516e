package model

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

type SortField string

const (
	SortByTitle         SortField = "title"
	SortByPublishedYear SortField = "publishedYear"
	SortByCreatedAt     SortField = "createdAt"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// BookQueryParams are the raw query-string values of the book search endpoint.
type BookQueryParams struct {
	Search     string `query:"search"`
	Genre      string `query:"genre"`
	AuthorName string `query:"authorName"`
	Page       string `query:"page"`
	Limit      string `query:"limit"`
	SortBy     string `query:"sortBy"`
	Order      string `query:"order"`
}

// BookFilter holds the ANDed search constraints. Empty fields impose none.
type BookFilter struct {
	// Search is a case-insensitive substring of the title.
	Search string
	// Genre must match exactly.
	Genre string
	// AuthorName is a case-insensitive substring of the owning author's name.
	AuthorName string
}

type BookQuery struct {
	BookFilter
	Page   int
	Limit  int
	SortBy SortField
	Order  SortOrder
}

// Normalize resolves defaults: unusable page and limit values fall back to 1 and 10,
// limit is capped at MaxLimit, unknown sort fields fall back to createdAt and unknown orders to desc.
func (p BookQueryParams) Normalize() BookQuery {
	q := BookQuery{
		BookFilter: BookFilter{
			Search:     p.Search,
			Genre:      p.Genre,
			AuthorName: p.AuthorName,
		},
		Page:   positiveOr(p.Page, DefaultPage),
		Limit:  positiveOr(p.Limit, DefaultLimit),
		SortBy: SortByCreatedAt,
		Order:  OrderDesc,
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	switch f := SortField(p.SortBy); f {
	case SortByTitle, SortByPublishedYear, SortByCreatedAt:
		q.SortBy = f
	}
	if SortOrder(p.Order) == OrderAsc {
		q.Order = OrderAsc
	}
	return q
}

// Offset saturates at math.MaxInt so a huge page reads past the end instead of wrapping.
func (q BookQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

type BookPage struct {
	Data       []Book     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func positiveOr(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}
