package domain

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Report counts the outcome of a batch of copies
type Report struct {
	Sent   int
	Failed int
}

func (r Report) Total() int {
	return r.Sent + r.Failed
}

func (r Report) String() string {
	return fmt.Sprintf("%s sent, %s failed", humanize.Comma(int64(r.Sent)), humanize.Comma(int64(r.Failed)))
}
