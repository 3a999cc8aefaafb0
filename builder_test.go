package pdfpages

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"sort"
)

// pdfBuilder writes small PDF files with valid offsets for tests.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int64
	// objects listed as stored in an object stream
	packed map[int]bool
}

func newBuilder() *pdfBuilder {
	b := pdfBuilder{
		offsets: make(map[int]int64),
		packed:  make(map[int]bool),
	}
	b.buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	return &b
}

func (b *pdfBuilder) Object(num int, body string) {
	b.offsets[num] = int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

// Packed declares num as stored in an object stream. Only Stream lists
// it, with a type 2 entry.
func (b *pdfBuilder) Packed(num int) {
	b.offsets[num] = 0
	b.packed[num] = true
}

func (b *pdfBuilder) Write(str string) {
	b.buf.WriteString(str)
}

func (b *pdfBuilder) size() int {
	size := 0
	for n := range b.offsets {
		if n >= size {
			size = n + 1
		}
	}
	return size
}

// Table ends the file with a classic table listing every object written
// so far and a trailer holding the given entries.
func (b *pdfBuilder) Table(trailer string) []byte {
	var (
		offset = b.buf.Len()
		size   = b.size()
	)
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", size)
	for i := 0; i < size; i++ {
		if off, ok := b.offsets[i]; ok {
			fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
		} else {
			b.buf.WriteString("0000000000 65535 f \n")
		}
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", size, trailer, offset)
	return b.Bytes()
}

// Update appends a table listing only the given objects, linked to the
// previous section at prev.
func (b *pdfBuilder) Update(nums []int, trailer string, prev int) []byte {
	offset := b.buf.Len()
	sort.Ints(nums)
	b.buf.WriteString("xref\n0 1\n0000000000 65535 f \n")
	for _, n := range nums {
		fmt.Fprintf(&b.buf, "%d 1\n%010d 00000 n \n", n, b.offsets[n])
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Prev %d %s >>\nstartxref\n%d\n%%%%EOF\n", b.size(), prev, trailer, offset)
	return b.Bytes()
}

// Stream ends the file with a cross-reference stream numbered num. With
// predict set, rows are encoded with the PNG Up predictor.
func (b *pdfBuilder) Stream(num int, trailer string, predict bool) []byte {
	b.offsets[num] = int64(b.buf.Len())

	var (
		size = b.size()
		rows = encodeRows(b.offsets, b.packed, size)
		data []byte
		dict = fmt.Sprintf("/Type /XRef /Size %d /W [1 4 2] %s /Filter /FlateDecode", size, trailer)
	)
	if predict {
		rows = predictUp(rows, 7)
		dict += " /DecodeParms << /Columns 7 /Predictor 12 >>"
	}
	data = deflate(rows)
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\r\n", num, dict, len(data))
	b.buf.Write(data)
	fmt.Fprintf(&b.buf, "\r\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", b.offsets[num])
	return b.Bytes()
}

func (b *pdfBuilder) Bytes() []byte {
	return append([]byte(nil), b.buf.Bytes()...)
}

func encodeRows(offsets map[int]int64, packed map[int]bool, size int) []byte {
	var rows []byte
	for i := 0; i < size; i++ {
		off, ok := offsets[i]
		if !ok {
			rows = append(rows, 0, 0, 0, 0, 0, 0xFF, 0xFF)
			continue
		}
		if packed[i] {
			// object stream 99, index 0
			rows = append(rows, 2, 0, 0, 0, 99, 0, 0)
			continue
		}
		rows = append(rows, 1, byte(off>>24), byte(off>>16), byte(off>>8), byte(off), 0, 0)
	}
	return rows
}

func predictUp(rows []byte, columns int) []byte {
	var (
		out  []byte
		prev = make([]byte, columns)
	)
	for i := 0; i+columns <= len(rows); i += columns {
		out = append(out, 2)
		for j := 0; j < columns; j++ {
			out = append(out, rows[i+j]-prev[j])
		}
		copy(prev, rows[i:i+columns])
	}
	return out
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	z := zlib.NewWriter(&buf)
	z.Write(data)
	z.Close()
	return buf.Bytes()
}

// writePages writes a catalog (1), a page tree root (2) and one leaf per
// box, numbered from 3.
func writePages(b *pdfBuilder, boxes ...string) {
	var kids []string
	for i := range boxes {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	b.Object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.Object(2, fmt.Sprintf("<< /Type /Pages /Kids %v /Count %d >>", kids, len(boxes)))
	for i, box := range boxes {
		b.Object(i+3, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox %s /Resources << >> >>", box))
	}
}
