// pagination.go: RFC 8288 pagination links.
//
// Response bodies implement Pager to emit first/prev/next/last Link headers;
// the Links transformer reads them and sets the headers.
package humastar

import "fmt"

// DefaultPageSize is used when a request does not name a limit.
const DefaultPageSize = 20

// Pager is implemented by response bodies that carry pagination metadata.
type Pager interface {
	PaginationLinks(basePath string) []string
}

// PageBody is a paginated response envelope.
type PageBody[T any] struct {
	Total  int `json:"total" doc:"Total number of items"`
	Offset int `json:"offset" doc:"Current offset"`
	Limit  int `json:"limit" doc:"Page size"`
	Data   []T `json:"data" doc:"Items"`
}

// Paginate cuts the page at offset/limit out of items. A non-positive limit
// selects DefaultPageSize; offsets past the end yield an empty page.
func Paginate[T any](items []T, offset, limit int) PageBody[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset = max(offset, 0)
	start := min(offset, len(items))
	end := min(start+limit, len(items))
	data := make([]T, end-start)
	copy(data, items[start:end])
	return PageBody[T]{Total: len(items), Offset: offset, Limit: limit, Data: data}
}

// PaginationLinks returns RFC 8288 Link header values for the pagination rels.
func (p PageBody[T]) PaginationLinks(basePath string) []string {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, basePath, offset, limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-limit, 0), "prev"))
	}
	if p.Offset+limit < p.Total {
		links = append(links, link(p.Offset+limit, "next"))
	}
	last := max((p.Total-1)/limit*limit, 0)
	return append(links, link(last, "last"))
}
