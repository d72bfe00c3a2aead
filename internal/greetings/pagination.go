package greetings

// Pagination describes where an offset lands within a counted result set.
type Pagination struct {
	TotalPages  int
	OffsetLimit int // highest offset that still lands on the last page
	CurrentPage int
}

// Paginate computes page counts for totalCount rows. limit must be at least 1.
func Paginate(totalCount, limit, offset int) Pagination {
	totalPages := (totalCount + limit - 1) / limit

	offsetLimit := 0
	if totalPages > 0 {
		offsetLimit = totalPages*limit - limit
	}

	return Pagination{
		TotalPages:  totalPages,
		OffsetLimit: offsetLimit,
		CurrentPage: offset/limit + 1,
	}
}

// Exceeds reports whether offset is past the last page.
func (p Pagination) Exceeds(offset int) bool {
	return offset > p.OffsetLimit
}
