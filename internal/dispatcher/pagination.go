package dispatcher

import "strconv"

// Page is the pagination envelope list tools attach to their output
// (spec.md §4.7: `limit`/cursor arguments, `nextCursor` in the response).
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Paginate slices items starting at the offset cursor encodes, returning at
// most limit items and a cursor for the next page when more remain. An
// empty or invalid cursor starts from the beginning.
func Paginate[T any](items []T, limit int, cursor string) Page[T] {
	offset := decodeCursor(cursor)
	if offset < 0 || offset > len(items) {
		offset = 0
	}
	if limit <= 0 {
		limit = len(items)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	page := Page[T]{Items: items[offset:end]}
	if end < len(items) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page
}

func decodeCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
