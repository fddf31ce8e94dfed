package handler

// RecordsResponse wraps list results so the body is always a JSON object.
type RecordsResponse[T any] struct {
	Items []T `json:"items"`
}

// nonNil keeps empty results rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
