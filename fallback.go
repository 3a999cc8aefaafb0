package pdfpages

import (
	"fmt"
	"regexp"
	"strconv"
)

var rxCount = regexp.MustCompile(`/Count\s+(\d+)`)

// fallbackScan guesses the page count from the first /Count entry found
// at the start of the file and gives every page the default size.
func fallbackScan(buf []byte, opts Options) (Structure, error) {
	var st Structure
	size := len(buf)
	if size > opts.FallbackWindow {
		size = opts.FallbackWindow
	}
	m := rxCount.FindStringSubmatch(latin1Text(buf[:size]))
	if m == nil {
		return st, fmt.Errorf("%w: /Count %v", ErrCount, ErrMissing)
	}
	count, err := strconv.Atoi(m[1])
	if err != nil || count <= 0 || count > opts.MaxPageCount {
		return st, fmt.Errorf("%w: /Count %s out of range", ErrCount, m[1])
	}
	st.PageCount = count
	st.PageBoxes = make([]PageBox, count)
	for i := range st.PageBoxes {
		st.PageBoxes[i] = opts.DefaultPage
	}
	st.Fallback = true
	return st, nil
}
