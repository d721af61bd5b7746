package domain

// PaginationParams selects one page of a list query.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Limit is the maximum number of rows the page may hold.
func (p PaginationParams) Limit() int { return p.PageSize }

// Offset is the number of rows preceding the requested page.
func (p PaginationParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
