// Package pagination parses page/limit query parameters and builds the paginated result
// shape used by every list endpoint.
package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps Offset from overflowing; such a page is simply empty.
	MaxPage = math.MaxInt32 / MaxLimit
)

// Params is a normalized page request: 1 <= Page <= MaxPage and 1 <= Limit <= MaxLimit.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows to skip for this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// FromRequest reads `page` and `limit` from the query string. Missing or unparsable values
// fall back to the defaults instead of failing the request.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	return New(atoiOr(q.Get("page"), 1), atoiOr(q.Get("limit"), DefaultLimit))
}

// New clamps page and limit into range.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Page is one page of results plus the navigation metadata clients use to page through
// the full set.
type Page[T any] struct {
	Docs        []T  `json:"docs"`
	TotalDocs   int  `json:"totalDocs"`
	Limit       int  `json:"limit"`
	Page        int  `json:"page"`
	TotalPages  int  `json:"totalPages"`
	HasPrevPage bool `json:"hasPrevPage"`
	HasNextPage bool `json:"hasNextPage"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
}

// NewPage assembles a Page from the rows of the current page and the total match count.
func NewPage[T any](docs []T, total int, p Params) Page[T] {
	if docs == nil {
		docs = []T{}
	}
	totalPages := 1
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}

	page := Page[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       p.Limit,
		Page:        p.Page,
		TotalPages:  totalPages,
		HasPrevPage: p.Page > 1,
		HasNextPage: p.Page < totalPages,
	}
	if page.HasPrevPage {
		prev := p.Page - 1
		page.PrevPage = &prev
	}
	if page.HasNextPage {
		next := p.Page + 1
		page.NextPage = &next
	}
	return page
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
