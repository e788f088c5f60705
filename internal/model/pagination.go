package model

// Pagination describes a page of a larger result set.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int64 `json:"total_pages"`
}

// NewPagination computes TotalPages by rounding up; a zero perPage yields
// zero pages.
func NewPagination(page, perPage int, total int64) Pagination {
	p := Pagination{CurrentPage: page, PerPage: perPage, TotalItems: total}
	if perPage > 0 {
		p.TotalPages = (total + int64(perPage) - 1) / int64(perPage)
	}
	return p
}
