package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name             string
		total, page      int
		size             int
		wantPages        int
		wantStart        int
		wantEnd          int
		wantPrev, wantNx bool
	}{
		{"empty list still has one page", 0, 0, 10, 1, 0, 0, false, false},
		{"single page", 7, 0, 10, 1, 0, 7, false, false},
		{"exact multiple", 20, 1, 10, 2, 10, 20, true, false},
		{"middle page", 25, 1, 10, 3, 10, 20, true, true},
		{"last partial page", 25, 2, 10, 3, 20, 25, true, false},
		{"page past end clamps", 25, 9, 10, 3, 20, 25, true, false},
		{"negative page clamps", 25, -3, 10, 3, 0, 10, false, true},
		{"zero size uses default", 11, 1, 0, 2, 10, 11, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.total, tt.page, tt.size)
			assert.Equal(t, tt.wantPages, w.Pages)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
			assert.Equal(t, tt.wantPrev, w.HasPrev)
			assert.Equal(t, tt.wantNx, w.HasNext)
			assert.Equal(t, w.Pages > 1, w.ShowNavigation())
		})
	}
}

func TestNumbersIncreaseAcrossPages(t *testing.T) {
	for _, size := range []int{1, 3, 10} {
		items := make([]int, 23)
		last := 0
		w := New(len(items), 0, size)
		for page := 0; page < w.Pages; page++ {
			pw := New(len(items), page, size)
			for offset := range Slice(items, pw) {
				n := pw.Number(offset)
				assert.Equal(t, last+1, n, "size %d page %d", size, page)
				last = n
			}
		}
		assert.Equal(t, len(items), last)
	}
}
