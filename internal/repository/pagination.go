package repository

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects a page of active records. Cursor is the id of the last
// record of the previous page; empty starts from the beginning.
type PageRequest struct {
	Limit  int
	Cursor string
}

// PageResult holds one page. NextCursor is set only when the page is full.
type PageResult[T any] struct {
	Items      []T
	NextCursor string
}

func normalizePageRequest(in PageRequest) PageRequest {
	return PageRequest{Limit: normalizeLimit(in.Limit), Cursor: in.Cursor}
}

func normalizeLimit(limit int) int {
	if limit < 1 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
