package utils

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a normalized page request
type Page struct {
	Number int
	Limit  int
}

// PaginationMeta is returned next to listed items
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewPage clamps page to 1 and limit to (0, MaxLimit], using DefaultLimit when unset.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: page, Limit: limit}
}

// Offset returns the SQL offset
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Meta describes this page within totalCount rows
func (p Page) Meta(totalCount int64) PaginationMeta {
	totalPages := int((totalCount + int64(p.Limit) - 1) / int64(p.Limit))
	return PaginationMeta{
		Page:       p.Number,
		Limit:      p.Limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasMore:    p.Number < totalPages,
	}
}
