package query

const DefaultPageSize = 6

type PaginationState struct {
	CurrentPage  int
	ItemsPerPage int
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	Size       int `json:"page_size"`
	TotalItems int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// TotalPages is ceil(n/size).
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns page s.CurrentPage of items. Pages are 1-based; a page
// out of range yields no items.
func Paginate[T any](items []T, s PaginationState) Page[T] {
	size := s.ItemsPerPage
	if size <= 0 {
		size = DefaultPageSize
	}
	number := s.CurrentPage
	if number < 1 {
		number = 1
	}
	p := Page[T]{
		Number:     number,
		Size:       size,
		TotalItems: len(items),
		TotalPages: TotalPages(len(items), size),
		Items:      []T{},
	}
	start := (number - 1) * size
	if start >= len(items) {
		return p
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[start:end]
	return p
}
