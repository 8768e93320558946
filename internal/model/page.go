package model

import "math"

const (
	DefaultPageNo   = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPageNo keeps (PageNo-1)*PageSize inside int for any allowed PageSize.
	MaxPageNo = math.MaxInt/MaxPageSize + 1
)

// PageParam is the 1-based page window shared by list queries.
type PageParam struct {
	PageNo   int `json:"pageNo"`
	PageSize int `json:"pageSize"`
}

// Normalize returns a copy with defaults applied and the size capped.
func (p PageParam) Normalize() PageParam {
	if p.PageNo <= 0 {
		p.PageNo = DefaultPageNo
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.PageNo > MaxPageNo {
		p.PageNo = MaxPageNo
	}
	return p
}

// Offset is the number of rows to skip for the normalized page.
func (p PageParam) Offset() int {
	n := p.Normalize()
	return (n.PageNo - 1) * n.PageSize
}

// Limit is the normalized page size.
func (p PageParam) Limit() int {
	return p.Normalize().PageSize
}

// PageCount reports how many pages of this size cover total rows.
func (p PageParam) PageCount(total int) int {
	if total <= 0 {
		return 0
	}
	size := p.Limit()
	return (total + size - 1) / size
}
