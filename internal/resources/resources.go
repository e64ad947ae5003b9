package resources

import "strconv"

// page is the list envelope the backend wraps collection responses in.
type page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// PageOptions selects a slice of a collection. Zero values are omitted from
// the query.
type PageOptions struct {
	Page    int
	PerPage int
}

func itoaOrEmpty(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
