// Package pager slices ordered button lists into pages.
//
// Pages are 0-based; callers add one when showing a page number.
package pager

const DefaultSize = 10

// Window is the visible part of a list
type Window struct {
	Page    int
	Pages   int
	Size    int
	Start   int
	End     int
	HasPrev bool
	HasNext bool
}

// New computes the window for page of a list with total items. There is
// always at least one page, and page is clamped into range.
func New(total, page, size int) Window {
	if size <= 0 {
		size = DefaultSize
	}
	if total < 0 {
		total = 0
	}

	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > pages-1 {
		page = pages - 1
	}

	start := page * size
	end := min(start+size, total)

	return Window{
		Page:    page,
		Pages:   pages,
		Size:    size,
		Start:   start,
		End:     end,
		HasPrev: page > 0,
		HasNext: page < pages-1,
	}
}

// ShowNavigation reports whether a navigation row should be rendered
func (w Window) ShowNavigation() bool {
	return w.Pages > 1
}

// Number returns the absolute 1-based position of the offset-th visible item
func (w Window) Number(offset int) int {
	return w.Start + offset + 1
}

// Slice returns the visible part of items
func Slice[T any](items []T, w Window) []T {
	if w.Start >= len(items) {
		return nil
	}
	return items[w.Start:min(w.End, len(items))]
}
