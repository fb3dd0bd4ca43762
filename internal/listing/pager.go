// Package listing provides the pagination model shared by the item grid and
// the profile ("my listings") view.
package listing

// DefaultPerPage is the fixed page size of the item grid.
const DefaultPerPage = 8

// Pager tracks the current page of a skip/limit paginated listing. Pages are
// 1-based.
type Pager struct {
	Page    int
	PerPage int
}

// NewPager returns a pager positioned on the first page with the default
// page size.
func NewPager() Pager {
	return Pager{Page: 1, PerPage: DefaultPerPage}
}

// Skip returns the skip offset for the current page.
func (p Pager) Skip() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p Pager) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether the next-page control is enabled, given the number
// of results the current page returned. A full page enables it, a short page
// disables it. When the true last page is exactly full this misreports one
// extra page; the following request then returns an empty page.
func (p Pager) HasNext(count int) bool {
	return count >= p.PerPage
}

// Next returns the pager advanced one page.
func (p Pager) Next() Pager {
	p.Page++
	return p
}

// Prev returns the pager moved back one page, never before page 1.
func (p Pager) Prev() Pager {
	if p.Page > 1 {
		p.Page--
	}
	return p
}
