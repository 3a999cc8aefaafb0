package pdfpages

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

var (
	trailer   = []byte("trailer")
	startxref = []byte("startxref")
	eof       = []byte("%%EOF")
	ref       = []byte("xref")
)

const headerWindow = 20

var (
	rxHeader = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)
	rxRoot   = regexp.MustCompile(`/Root\s+(\d+)\s+(\d+)\s+R`)
)

type trailerInfo struct {
	Version    string
	XRefOffset int64
	StartXRef  int64
	EOF        int64
	Stream     bool
}

// locateTrailer checks the file header then finds the offset of the last
// cross-reference section, as given by the startxref keyword preceding the
// last %%EOF marker.
func locateTrailer(buf []byte, window int) (trailerInfo, error) {
	var info trailerInfo

	version, err := readVersion(buf)
	if err != nil {
		return info, err
	}
	info.Version = version

	info.EOF = int64(bytes.LastIndex(buf, eof))
	if info.EOF < 0 {
		return info, fmt.Errorf("%w: %s %v", ErrTrailer, eof, ErrMissing)
	}
	start := info.EOF - int64(window)
	if start < 0 {
		start = 0
	}
	rs := NewReader(buf[start:info.EOF])
	x := rs.LastIndex(startxref)
	if x < 0 {
		return info, fmt.Errorf("%w: %s %v", ErrTrailer, startxref, ErrMissing)
	}
	info.StartXRef = start + int64(x)

	rs.Discard(x + len(startxref))
	offset, err := readStartxref(rs)
	if err != nil {
		return info, err
	}
	if offset < 0 || offset >= int64(len(buf)) {
		return info, fmt.Errorf("%w: xref offset %d outside of file", ErrTrailer, offset)
	}
	info.XRefOffset = offset
	info.Stream = !isTableAt(buf, offset)
	return info, nil
}

// readVersion looks for the %PDF-x.y signature at the start of the file.
func readVersion(buf []byte) (string, error) {
	size := len(buf)
	if size > headerWindow {
		size = headerWindow
	}
	m := rxHeader.FindStringSubmatch(latin1Text(buf[:size]))
	if m == nil {
		return "", fmt.Errorf("%w: invalid pdf header", ErrHeader)
	}
	return m[1] + "." + m[2], nil
}

func readStartxref(r *Reader) (int64, error) {
	r.Skip()
	buf := r.Bytes()
	n := 0
	for n < len(buf) && isDigit(buf[n]) {
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: no offset after %s", ErrTrailer, startxref)
	}
	offset, err := strconv.ParseInt(string(buf[:n]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrTrailer, err)
	}
	return offset, nil
}

// isTableAt reports whether a classic cross-reference table starts at
// offset.
func isTableAt(buf []byte, offset int64) bool {
	r := NewReader(buf)
	r.Seek(offset, io.SeekStart)
	r.Skip()
	if !r.StartsWith(ref) {
		return false
	}
	r.Discard(len(ref))
	b, err := r.PeekByte()
	return err == nil && isBlank(b)
}

// readTrailerDict parses the dictionary following the trailer keyword at
// the current position of r.
func readTrailerDict(r *Reader) (Dict, error) {
	r.Skip()
	if !r.StartsWith(trailer) {
		return nil, fmt.Errorf("%s %w", trailer, ErrMissing)
	}
	r.Discard(len(trailer))
	return parseValueAsDict(r)
}

// scanRoot extracts the last /Root reference of the text preceding the
// startxref keyword.
func scanRoot(buf []byte, info trailerInfo, window int) (Ref, bool) {
	start := info.StartXRef - int64(window)
	if start < 0 {
		start = 0
	}
	all := rxRoot.FindAllStringSubmatch(latin1Text(buf[start:info.StartXRef]), -1)
	if len(all) == 0 {
		return Ref{}, false
	}
	m := all[len(all)-1]
	num, err1 := strconv.Atoi(m[1])
	gen, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return Ref{}, false
	}
	return Ref{Num: num, Gen: gen}, true
}
