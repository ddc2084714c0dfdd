package response

// Pagination describes one page of a listing. From and To are 1-based item
// positions and are both zero on an empty page.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampPage normalizes user supplied paging values.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// Offset is the number of rows to skip for the given page.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// NewPagination builds the page metadata for count items returned out of total.
func NewPagination(page, pageSize, count int, total int64) *Pagination {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	p := &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
	}
	if count > 0 {
		p.From = Offset(page, pageSize) + 1
		p.To = p.From + count - 1
	}
	return p
}
