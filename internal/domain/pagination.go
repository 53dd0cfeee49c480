package domain

// PaginationParams holds offset-based pagination parameters for list queries.
// Zero values are not sent; the service then applies its own defaults (skip 0, limit 100).
type PaginationParams struct {
	Skip  int
	Limit int
}

// PageParams converts a 1-based page number and page size into skip/limit.
// Formula: skip = (page - 1) * pageSize.
func PageParams(page, pageSize int) PaginationParams {
	if pageSize < 1 {
		return PaginationParams{}
	}
	if page < 1 {
		page = 1
	}
	return PaginationParams{Skip: (page - 1) * pageSize, Limit: pageSize}
}
