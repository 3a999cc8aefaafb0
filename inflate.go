package pdfpages

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// Inflater decompresses the data of FlateDecode streams.
type Inflater interface {
	Inflate([]byte) ([]byte, error)
}

type InflaterFunc func([]byte) ([]byte, error)

func (f InflaterFunc) Inflate(b []byte) ([]byte, error) {
	return f(b)
}

var ErrInflateLimit = errors.New("inflated data exceeds limit")

// DefaultMaxInflate bounds the size of the decompressed data of a single
// stream.
const DefaultMaxInflate = 64 << 20

// Zlib returns an Inflater decoding zlib streams and refusing to produce
// more than limit bytes. A limit <= 0 disables the check.
func Zlib(limit int64) Inflater {
	return InflaterFunc(func(b []byte) ([]byte, error) {
		z, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("inflate: %w", err)
		}
		defer z.Close()

		var rs io.Reader = z
		if limit > 0 {
			rs = io.LimitReader(z, limit+1)
		}
		buf, err := io.ReadAll(rs)
		if err != nil {
			return nil, fmt.Errorf("inflate: %w", err)
		}
		if limit > 0 && int64(len(buf)) > limit {
			return nil, ErrInflateLimit
		}
		return buf, nil
	})
}
