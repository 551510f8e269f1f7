package subset

import "strconv"

// Page is a window of at most Size rows in key order. The first page
// starts at the smallest key, every later page right after the last key
// of the page before it. Windows are bounded by keys, not by offsets, so
// rows a page inserts cannot shift the rows of the next one even when the
// filter reads the table that is written.
type Page struct {
	Size  int64
	After int64
	// Follows is false for the first page.
	Follows bool
}

// FirstPage returns the window of the first size rows.
func FirstPage(size int64) Page {
	return Page{Size: size}
}

// Next returns the window after a page whose largest key is last.
func (p Page) Next(last int64) Page {
	return Page{Size: p.Size, After: last, Follows: true}
}

// start keeps rows past the previous page.
func (p Page) start(col string) Filter {
	if !p.Follows {
		return ""
	}
	return Filter("t." + col + " > " + strconv.FormatInt(p.After, 10))
}

// Batches returns ceil(total/batch), the number of pages total rows with
// distinct keys take. A non-positive batch gives a single page.
func Batches(total, batch int64) int64 {
	if total <= 0 {
		return 0
	}
	if batch <= 0 || batch >= total {
		return 1
	}
	return (total + batch - 1) / batch
}
