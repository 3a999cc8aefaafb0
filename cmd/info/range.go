package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid page number")

// Range selects pages of a document. It is given as a comma separated
// list of pages and intervals:
//
//	3    the third page
//	2:5  pages 2 to 5
//	4:   page 4 to the last page
//	:4   the first page to page 4
//	:    every page
type Range struct {
	spans []span
}

// span is an interval of pages. A zero bound is open.
type span struct {
	first int
	last  int
}

func (r *Range) Set(str string) error {
	if str == "" {
		return nil
	}
	for _, part := range strings.Split(str, ",") {
		s, err := parseSpan(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		r.spans = append(r.spans, s)
	}
	return nil
}

func (r *Range) String() string {
	if len(r.spans) == 0 {
		return "all"
	}
	var parts []string
	for _, s := range r.spans {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ",")
}

// Pages returns the selected pages that exist in a document of n pages.
func (r *Range) Pages(n int) []int {
	if len(r.spans) == 0 {
		return span{}.pages(n)
	}
	var list []int
	for _, s := range r.spans {
		list = append(list, s.pages(n)...)
	}
	return list
}

func parseSpan(str string) (span, error) {
	from, to, interval := strings.Cut(str, ":")
	if !interval {
		n, err := parsePage(str)
		return span{first: n, last: n}, err
	}
	var (
		s   span
		err error
	)
	if from != "" {
		if s.first, err = parsePage(from); err != nil {
			return s, err
		}
	}
	if to != "" {
		if s.last, err = parsePage(to); err != nil {
			return s, err
		}
	}
	if s.last > 0 && s.first > s.last {
		return s, fmt.Errorf("%s: first page after last page: %w", str, ErrInvalid)
	}
	return s, nil
}

func parsePage(str string) (int, error) {
	n, err := strconv.Atoi(str)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q: %w", str, ErrInvalid)
	}
	return n, nil
}

func (s span) pages(n int) []int {
	first, last := s.first, s.last
	if first == 0 {
		first = 1
	}
	if last == 0 || last > n {
		last = n
	}
	var list []int
	for i := first; i <= last; i++ {
		list = append(list, i)
	}
	return list
}

func (s span) String() string {
	bound := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	if s.first > 0 && s.first == s.last {
		return bound(s.first)
	}
	return bound(s.first) + ":" + bound(s.last)
}
