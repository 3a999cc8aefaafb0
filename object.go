package pdfpages

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var (
	begobj    = []byte("obj")
	endobj    = []byte("endobj")
	begstream = []byte("stream")
	endstream = []byte("endstream")
)

var ErrFilter = errors.New("unsupported filter")

// Object is an indirect object read at some offset of the buffer. Content
// holds the raw, still encoded, stream data when the object is a stream.
type Object struct {
	Ref
	Dict
	Data    Value
	Content []byte
}

func (o Object) IsStream() bool {
	return o.Content != nil
}

func (o Object) IsPage() bool {
	return o.Type() == "Page"
}

func (o Object) IsXRef() bool {
	return o.Type() == "XRef"
}

// Body returns the decoded stream data. Only FlateDecode, optionally with
// a PNG predictor, is supported.
func (o Object) Body(inflater Inflater) ([]byte, error) {
	if !o.HasFilter() {
		return o.Content, nil
	}
	if !o.IsFlate() {
		return nil, fmt.Errorf("%v: %w", o.Dict["filter"], ErrFilter)
	}
	buf, err := inflater.Inflate(o.Content)
	if err != nil {
		return nil, err
	}
	parms := o.GetDict("decodeparms")
	if arr := o.GetArray("decodeparms"); len(arr) == 1 {
		parms, _ = arr[0].(Dict)
	}
	return unpredict(buf, parms)
}

// unpredict reverses the PNG predictors for one byte per pixel. TIFF
// predictor 2 is not used by cross-reference streams and is rejected.
func unpredict(buf []byte, parms Dict) ([]byte, error) {
	predictor := parms.GetInt("predictor")
	if predictor <= 1 {
		return buf, nil
	}
	if predictor < 10 {
		return nil, fmt.Errorf("predictor %d: %w", predictor, ErrFilter)
	}
	columns := int(parms.GetInt("columns"))
	if columns <= 0 {
		columns = 1
	}
	var (
		stride   = columns + 1
		rows     = len(buf) / stride
		filtered = make([]byte, 0, rows*columns)
		prev     = make([]byte, columns)
		row      = make([]byte, columns)
	)
	for i := 0; i < rows; i++ {
		line := buf[i*stride : (i+1)*stride]
		for j := 0; j < columns; j++ {
			var left, upleft byte
			if j > 0 {
				left, upleft = row[j-1], prev[j-1]
			}
			up, raw := prev[j], line[j+1]
			switch line[0] {
			case 0:
				row[j] = raw
			case 1:
				row[j] = raw + left
			case 2:
				row[j] = raw + up
			case 3:
				row[j] = raw + byte((int(left)+int(up))/2)
			case 4:
				row[j] = raw + paeth(left, up, upleft)
			default:
				return nil, fmt.Errorf("png filter type %d: %w", line[0], ErrFilter)
			}
		}
		filtered = append(filtered, row...)
		copy(prev, row)
	}
	return filtered, nil
}

func paeth(a, b, c byte) byte {
	var (
		p  = int(a) + int(b) - int(c)
		pa = abs(p - int(a))
		pb = abs(p - int(b))
		pc = abs(p - int(c))
	)
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// readObjectHeader reads "num gen obj".
func readObjectHeader(r *Reader) (Ref, error) {
	var ref Ref
	r.Skip()
	num, err := readUint(r)
	if err != nil {
		return ref, fmt.Errorf("object number: %w", err)
	}
	r.Skip()
	gen, err := readUint(r)
	if err != nil {
		return ref, fmt.Errorf("generation number: %w", err)
	}
	r.Skip()
	if !r.StartsWith(begobj) {
		return ref, fmt.Errorf("object keyword %w", ErrMissing)
	}
	r.Discard(len(begobj))
	ref.Num, ref.Gen = num, gen
	return ref, nil
}

func readUint(r *Reader) (int, error) {
	buf := r.Bytes()
	n := 0
	for n < len(buf) && isDigit(buf[n]) {
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("digits %w", ErrMissing)
	}
	r.Discard(n)
	return strconv.Atoi(string(buf[:n]))
}

// readObject reads the indirect object starting at the current position
// of r. With full set, the raw data of a stream object is loaded too.
func readObject(r *Reader, full bool) (Object, error) {
	var obj Object
	ref, err := readObjectHeader(r)
	if err != nil {
		return obj, fmt.Errorf("fail to scan object header: %w", err)
	}
	obj.Ref = ref

	val, err := r.ReadValue()
	if err != nil {
		return obj, err
	}
	if d, ok := val.(Dict); ok {
		obj.Dict = d
	} else {
		obj.Data = val
		return obj, nil
	}

	r.Skip()
	switch {
	case r.StartsWith(endobj):
	case r.StartsWith(begstream):
		if !full {
			break
		}
		r.Discard(len(begstream))
		obj.Content, err = readStream(r, obj.Dict)
	default:
	}
	return obj, err
}

// readStream reads the data following the stream keyword. One end of
// line marker separates the keyword from the data: at most one CR then
// at most one LF.
func readStream(r *Reader, dict Dict) ([]byte, error) {
	if b, _ := r.PeekByte(); b == cr {
		r.ReadByte()
	}
	if b, _ := r.PeekByte(); b == nl {
		r.ReadByte()
	}
	if _, ok := dict["length"].(int64); ok {
		length := dict.Length()
		if length < 0 {
			return nil, fmt.Errorf("negative stream length %d", length)
		}
		return r.Slice(length)
	}
	// indirect or missing length: the data ends with the next endstream
	x := r.Index(endstream)
	if x < 0 {
		return nil, fmt.Errorf("%s %w", endstream, ErrMissing)
	}
	data := r.Bytes()[:x]
	if bytes.HasSuffix(data, []byte("\r\n")) {
		data = data[:len(data)-2]
	} else if bytes.HasSuffix(data, []byte("\n")) || bytes.HasSuffix(data, []byte("\r")) {
		data = data[:len(data)-1]
	}
	r.Discard(x)
	return data, nil
}
