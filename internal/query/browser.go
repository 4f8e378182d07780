package query

import (
	"time"

	"solifin/internal/models"
)

// Browser holds the three collections of a page with one shared filter and
// an independent page cursor per collection.
type Browser struct {
	filter   FilterState
	pageSize int
	now      func() time.Time

	collections map[models.PublicationType][]models.Publication
	cursors     map[models.PublicationType]int
}

func NewBrowser(pageSize int, now func() time.Time) *Browser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if now == nil {
		now = time.Now
	}
	b := &Browser{
		filter:      DefaultFilter(),
		pageSize:    pageSize,
		now:         now,
		collections: make(map[models.PublicationType][]models.Publication),
		cursors:     make(map[models.PublicationType]int),
	}
	b.resetCursors()
	return b
}

func (b *Browser) resetCursors() {
	for _, t := range models.PublicationTypes {
		b.cursors[t] = 1
	}
}

// Load replaces every collection with a freshly fetched page. Cursors are
// clamped to the new page counts.
func (b *Browser) Load(page *models.MyPage) {
	for _, t := range models.PublicationTypes {
		b.collections[t] = page.Collection(t)
	}
	for _, t := range models.PublicationTypes {
		last := TotalPages(len(b.Filtered(t)), b.pageSize)
		if last < 1 {
			last = 1
		}
		if b.cursors[t] > last {
			b.cursors[t] = last
		}
	}
}

func (b *Browser) Filter() FilterState {
	return b.filter
}

// SetFilter changes the filter and moves every cursor back to page 1.
func (b *Browser) SetFilter(f FilterState) {
	b.filter = f
	b.resetCursors()
}

// SetPage moves the cursor of collection t.
func (b *Browser) SetPage(t models.PublicationType, n int) {
	if n < 1 {
		n = 1
	}
	b.cursors[t] = n
}

func (b *Browser) Filtered(t models.PublicationType) []models.Publication {
	return Filter(b.collections[t], b.filter, b.now())
}

// Page returns the current page of collection t.
func (b *Browser) Page(t models.PublicationType) Page[models.Publication] {
	return Paginate(b.Filtered(t), PaginationState{CurrentPage: b.cursors[t], ItemsPerPage: b.pageSize})
}
