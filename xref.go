package pdfpages

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// XRef maps the number of every object in use to the offset of its
// definition.
type XRef map[int]int64

// merge adds the entries of older that x does not know yet.
func (x XRef) merge(older XRef) {
	for num, offset := range older {
		if _, ok := x[num]; !ok {
			x[num] = offset
		}
	}
}

// Section is one cross-reference section of a file.
type Section struct {
	Offset  int64
	Stream  bool
	Entries XRef
	Trailer Dict
	// Data is the decoded content of a cross-reference stream.
	Data []byte
}

// parseXRefTable reads the classic table starting at offset. Only a
// window of size bytes is considered: a truncated table yields the
// entries read so far. The trailer dictionary is returned when the
// trailer keyword is reached inside the window.
func parseXRefTable(buf []byte, offset int64, size int) (XRef, Dict, error) {
	var (
		rs    = NewReader(buf).Window(offset, int64(size))
		table = make(XRef)
		dict  Dict
	)
	if end := offset + rs.Size(); end < int64(len(buf)) {
		// drop the line cut by the window
		if x := bytes.LastIndexAny(rs.Bytes(), "\r\n"); x >= 0 {
			rs = NewReader(rs.Bytes()[:x+1])
		}
	}
	rs.Skip()
	if rs.StartsWith(ref) {
		rs.ReadLine()
	}
loop:
	for !rs.AtEOF() {
		tell := rs.Tell()
		line, err := rs.ReadLine()
		if err != nil {
			break
		}
		if bytes.HasPrefix(line, trailer) {
			tr := NewReader(buf)
			tr.Seek(offset+tell, io.SeekStart)
			if d, err := readTrailerDict(tr); err == nil {
				dict = d
			}
			break
		}
		first, count, ok := parseSubsection(line)
		if !ok {
			break
		}
		for i := 0; i < count && !rs.AtEOF(); i++ {
			line, err = rs.ReadLine()
			if err != nil {
				break
			}
			off, used, ok := parseTableEntry(line)
			if !ok {
				break loop
			}
			if used {
				table[first+i] = off
			}
		}
	}
	if dict == nil {
		dict = make(Dict)
	}
	return table, dict, nil
}

func parseSubsection(line []byte) (int, int, bool) {
	fields := bytes.Fields(line)
	if len(fields) != 2 {
		return 0, 0, false
	}
	first, err1 := strconv.Atoi(string(fields[0]))
	count, err2 := strconv.Atoi(string(fields[1]))
	if err1 != nil || err2 != nil || first < 0 || count < 0 {
		return 0, 0, false
	}
	return first, count, true
}

// parseTableEntry reads "offset generation n|f". Field widths are not
// checked.
func parseTableEntry(line []byte) (int64, bool, bool) {
	fields := bytes.Fields(line)
	if len(fields) != 3 {
		return 0, false, false
	}
	off, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil || off < 0 {
		return 0, false, false
	}
	if _, err := strconv.Atoi(string(fields[1])); err != nil {
		return 0, false, false
	}
	switch string(fields[2]) {
	case "n":
		return off, true, true
	case "f":
		return 0, false, true
	default:
		return 0, false, false
	}
}

const maxFieldWidth = 8

// parseXRefStream reads the cross-reference stream object starting at
// offset. Entries of type 1 are kept; free entries and objects stored in
// object streams are ignored.
func parseXRefStream(buf []byte, offset int64, inflater Inflater) (XRef, Dict, []byte, error) {
	r := NewReader(buf)
	r.Seek(offset, io.SeekStart)
	obj, err := readObject(r, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrXRef, err)
	}
	if obj.Dict == nil || !obj.IsStream() {
		return nil, nil, nil, fmt.Errorf("%w: object %d is not a stream", ErrXRef, obj.Num)
	}
	ws := obj.GetIntArray("w")
	if len(ws) != 3 || len(obj.GetArray("w")) != 3 {
		return nil, nil, nil, fmt.Errorf("%w: invalid /W %v", ErrXRef, obj.Dict["w"])
	}
	for _, w := range ws {
		if w < 0 || w > maxFieldWidth {
			return nil, nil, nil, fmt.Errorf("%w: invalid field width %d", ErrXRef, w)
		}
	}
	var (
		size = obj.GetInt("size")
		ix   = []int64{0, size}
	)
	if obj.Has("index") {
		ix = obj.GetIntArray("index")
		if len(ix)%2 != 0 || len(ix) != len(obj.GetArray("index")) {
			return nil, nil, nil, fmt.Errorf("%w: invalid /Index %v", ErrXRef, obj.Dict["index"])
		}
	}
	if inflater == nil {
		inflater = Zlib(DefaultMaxInflate)
	}
	body, err := obj.Body(inflater)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrXRef, err)
	}
	entries, err := readXRefEntries(body, ws, ix, size)
	if err != nil {
		return nil, nil, nil, err
	}
	return entries, obj.Dict, body, nil
}

func readXRefEntries(body []byte, ws, ix []int64, size int64) (XRef, error) {
	var (
		rs     = NewReader(body)
		record = int(ws[0] + ws[1] + ws[2])
		table  = make(XRef)
	)
	if record == 0 {
		return nil, fmt.Errorf("%w: empty record", ErrXRef)
	}
	for i := 0; i < len(ix); i += 2 {
		first, count := ix[i], ix[i+1]
		if first < 0 || count < 0 {
			return nil, fmt.Errorf("%w: invalid range %d %d", ErrXRef, first, count)
		}
		if size > 0 && first+count > size {
			count = size - first
		}
		for j := int64(0); j < count; j++ {
			if rs.Len() < record {
				return table, nil
			}
			typ := int64(1)
			if ws[0] > 0 {
				typ, _ = rs.ReadInt(int(ws[0]))
			}
			f1, _ := rs.ReadInt(int(ws[1]))
			rs.ReadInt(int(ws[2]))
			if typ == 1 {
				table[int(first+j)] = f1
			}
		}
	}
	return table, nil
}

// readSection reads the cross-reference section at offset whatever its
// kind.
func readSection(buf []byte, offset int64, opts Options) (Section, error) {
	sec := Section{
		Offset: offset,
		Stream: !isTableAt(buf, offset),
	}
	var err error
	if sec.Stream {
		sec.Entries, sec.Trailer, sec.Data, err = parseXRefStream(buf, offset, opts.Inflater)
	} else {
		sec.Entries, sec.Trailer, err = parseXRefTable(buf, offset, opts.XRefWindow)
	}
	return sec, err
}

// readSections follows the /Prev chain from the section at offset. Only
// a failure of the first section is reported; a broken older section
// ends the chain.
func readSections(buf []byte, offset int64, opts Options, trace func(string, ...interface{})) ([]Section, error) {
	var (
		list = make([]Section, 0, 1)
		seen = make(map[int64]struct{})
	)
	for len(list) < opts.MaxSections {
		seen[offset] = struct{}{}
		sec, err := readSection(buf, offset, opts)
		if err != nil {
			if len(list) == 0 {
				return nil, err
			}
			trace("xref section at %d ignored: %s", offset, err)
			break
		}
		trace("xref section at %d (stream: %t): %d entries", offset, sec.Stream, len(sec.Entries))
		list = append(list, sec)

		prev, ok := sec.Trailer["prev"].(int64)
		if !ok {
			break
		}
		if _, ok := seen[prev]; ok || prev < 0 || prev >= int64(len(buf)) {
			trace("xref chain stops at invalid /Prev %d", prev)
			break
		}
		offset = prev
	}
	return list, nil
}

// mergeSections builds the table of the whole file, newer sections first.
func mergeSections(list []Section) XRef {
	all := make(XRef)
	for _, s := range list {
		all.merge(s.Entries)
	}
	return all
}
