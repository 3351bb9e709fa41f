package pagination

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a page/limit request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit to (0, MaxLimit].
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Offset is the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Meta describes a page of results for API responses.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta builds response metadata for params and a total row count.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pages := int((total + int64(n.Limit) - 1) / int64(n.Limit))
	return Meta{Page: n.Page, Limit: n.Limit, Total: total, TotalPages: pages}
}
