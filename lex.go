package pdfpages

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	encbe = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	encle = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
)

// convertString decodes PDF text strings carrying a UTF-16 byte order
// mark. Other strings are returned unchanged. Decoders keep state, so
// every call gets its own.
func convertString(str string) string {
	var err error
	if strings.HasPrefix(str, "\xfe\xff") {
		str, err = encbe.NewDecoder().String(str)
	} else if strings.HasPrefix(str, "\xff\xfe") {
		str, err = encle.NewDecoder().String(str)
	}
	if err != nil {
		return ""
	}
	return str
}

// latin1Text decodes buf one byte per character. Every byte maps to
// exactly one rune so the decoding never fails on binary data.
func latin1Text(buf []byte) string {
	str, err := charmap.ISO8859_1.NewDecoder().Bytes(buf)
	if err != nil {
		rs := make([]rune, len(buf))
		for i, b := range buf {
			rs[i] = rune(b)
		}
		return string(rs)
	}
	return string(str)
}

func fromHexChar(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return (b - 'a') + 10, true
	case b >= 'A' && b <= 'F':
		return (b - 'A') + 10, true
	}
	return 0, false
}

// skipBlank moves r past white space and comments.
func skipBlank(r *Reader) {
	for r.Len() > 0 {
		b, _ := r.ReadByte()
		if b == percent {
			for r.Len() > 0 {
				if b, _ = r.ReadByte(); b == nl || b == cr {
					break
				}
			}
			continue
		}
		if !isBlank(b) {
			r.UnreadByte()
			break
		}
	}
}

const (
	nl        = '\n'
	cr        = '\r'
	percent   = '%'
	space     = ' '
	tab       = '\t'
	formfeed  = '\f'
	backspace = '\b'
	null      = 0
	langle    = '<'
	rangle    = '>'
	lsquare   = '['
	rsquare   = ']'
	lparen    = '('
	rparen    = ')'
	lcurly    = '{'
	rcurly    = '}'
	pound     = '#'
	slash     = '/'
	minus     = '-'
	plus      = '+'
	dot       = '.'
	backslash = '\\'
)

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNumber(b byte) bool {
	return isDigit(b) || isSign(b) || b == dot
}

func isSign(b byte) bool {
	return b == minus || b == plus
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	_, ok := fromHexChar(b)
	return ok
}

func isSpace(b byte) bool {
	return b == space || b == tab
}

func isBlank(b byte) bool {
	return isSpace(b) || b == cr || b == nl || b == formfeed || b == null
}

func isDelimiter(b byte) bool {
	switch b {
	case langle, rangle, lsquare, rsquare, lparen, rparen, lcurly, rcurly, slash, percent:
		return true
	}
	return false
}
