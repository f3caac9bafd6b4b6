// Package query turns list/search request parameters into a storage
// independent filter and computes pagination metadata.
package query

import (
	"math"
	"strings"

	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// SearchCap bounds keyword search results; search returns no pagination.
	SearchCap = 20
)

// Params is the raw list request.
type Params struct {
	Page     int
	Limit    int
	Search   string
	Category domain.CategoryId
}

// Filter selects posts. Zero fields match everything.
type Filter struct {
	// Search is matched case-insensitively as a substring of title or content.
	Search   string
	Category domain.CategoryId
	// IncludeTags extends Search to tags.
	IncludeTags bool
}

// Page is a normalized window over the ordered result set.
type Page struct {
	Number int
	Limit  int
}

// Skip saturates at math.MaxInt instead of overflowing.
func (p Page) Skip() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}

// Normalize clamps page to [1, math.MaxInt/limit] and limit to [1, maxLimit],
// falling back to defaultLimit when unset. The page cap keeps the skip
// representable; such a page is always past the end.
func (p Params) Normalize(defaultLimit, maxLimit int) (Filter, Page) {
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	page := max(1, p.Page)
	limit := p.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)
	page = min(page, math.MaxInt/limit)

	return Filter{
		Search:   strings.TrimSpace(p.Search),
		Category: p.Category,
	}, Page{Number: page, Limit: limit}
}

// Search builds the filter of the keyword search endpoint.
func Search(term string) Filter {
	return Filter{Search: strings.TrimSpace(term), IncludeTags: true}
}

// Matches is the reference predicate every storage backend must agree with.
func (f Filter) Matches(post domain.Post) bool {
	if f.Category != "" && post.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	if containsFold(post.Title, f.Search) || containsFold(post.Content, f.Search) {
		return true
	}
	if f.IncludeTags {
		for _, tag := range post.Tags {
			if containsFold(tag, f.Search) {
				return true
			}
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Less orders posts newest first, ties broken by id descending.
func Less(a, b domain.Post) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Id > b.Id
}

// NewPagination computes metadata for a page over total matching items.
func NewPagination(page Page, total int) api.Pagination {
	totalPages := 0
	if page.Limit > 0 {
		totalPages = (total + page.Limit - 1) / page.Limit
	}
	return api.Pagination{
		Page:       page.Number,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page.Number < totalPages,
		HasPrev:    page.Number > 1,
	}
}

// Window returns the slice of sorted items a page covers.
func Window[T any](sorted []T, page Page) []T {
	start := page.Skip()
	if start < 0 || start >= len(sorted) {
		return []T{}
	}
	end := start + min(page.Limit, len(sorted)-start)
	return sorted[start:end]
}
