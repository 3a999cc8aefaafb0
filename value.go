package pdfpages

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Value is one of: nil, bool, int64, float64, string, Name, Ref, []Value
// or Dict.
type Value interface{}

type Name string

// Ref is an indirect reference "Num Gen R".
type Ref struct {
	Num int
	Gen int
}

func (r Ref) String() string {
	return fmt.Sprintf("%d %d R", r.Num, r.Gen)
}

// Dict is a PDF dictionary. Keys are stored lower cased.
type Dict map[string]Value

func (d Dict) Type() string {
	return d.GetName("type")
}

func (d Dict) IsEmpty() bool {
	return len(d) == 0
}

// IsFlate reports whether FlateDecode is the only filter applied.
func (d Dict) IsFlate() bool {
	if d.GetName("filter") == "FlateDecode" {
		return true
	}
	arr := d.GetArray("filter")
	if len(arr) != 1 {
		return false
	}
	n, _ := arr[0].(Name)
	return n == "FlateDecode"
}

// HasFilter reports whether any filter is declared on a stream.
func (d Dict) HasFilter() bool {
	return d.Has("filter")
}

func (d Dict) Length() int64 {
	return d.GetInt("length")
}

func (d Dict) Has(key string) bool {
	v := d.getValue(key)
	return v != nil
}

func (d Dict) GetDict(key string) Dict {
	k, ok := d.getValue(key).(Dict)
	if !ok {
		return make(Dict)
	}
	return k
}

func (d Dict) GetName(key string) string {
	v, _ := d.getValue(key).(Name)
	return string(v)
}

func (d Dict) GetString(key string) string {
	v, _ := d.getValue(key).(string)
	return v
}

func (d Dict) GetInt(key string) int64 {
	i, _ := d.getValue(key).(int64)
	return i
}

// GetNumber returns an integer or real value as a float64.
func (d Dict) GetNumber(key string) (float64, bool) {
	return toNumber(d.getValue(key))
}

// GetRef returns the indirect reference stored under key.
func (d Dict) GetRef(key string) (Ref, bool) {
	r, ok := d.getValue(key).(Ref)
	return r, ok
}

func (d Dict) GetArray(key string) []Value {
	v, ok := d.getValue(key).([]Value)
	if !ok {
		return nil
	}
	return v
}

func (d Dict) GetIntArray(key string) []int64 {
	var (
		arr = d.GetArray(key)
		val []int64
	)
	for i := range arr {
		if n, ok := arr[i].(int64); ok {
			val = append(val, n)
		}
	}
	return val
}

// GetNumberArray returns the array stored under key when every element
// is a number.
func (d Dict) GetNumberArray(key string) ([]float64, bool) {
	arr := d.GetArray(key)
	if arr == nil {
		return nil, false
	}
	list := make([]float64, 0, len(arr))
	for _, v := range arr {
		f, ok := toNumber(v)
		if !ok {
			return nil, false
		}
		list = append(list, f)
	}
	return list, true
}

// GetRefArray returns the references of the array stored under key. A
// single reference is accepted as an array of one element.
func (d Dict) GetRefArray(key string) ([]Ref, bool) {
	return refArray(d.getValue(key))
}

func refArray(v Value) ([]Ref, bool) {
	if r, ok := v.(Ref); ok {
		return []Ref{r}, true
	}
	arr, ok := v.([]Value)
	if !ok {
		return nil, false
	}
	list := make([]Ref, 0, len(arr))
	for _, v := range arr {
		r, ok := v.(Ref)
		if !ok {
			return nil, false
		}
		list = append(list, r)
	}
	return list, true
}

func (d Dict) getValue(key string) Value {
	return d[strings.ToLower(key)]
}

func toNumber(v Value) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func parseValueAsDict(r *Reader) (Dict, error) {
	val, err := parseValue(r)
	if err != nil {
		return nil, err
	}
	dict, ok := val.(Dict)
	if !ok {
		return nil, fmt.Errorf("not a dict")
	}
	return dict, nil
}

func parseValue(r *Reader) (Value, error) {
	skipBlank(r)
	switch b, err := r.ReadByte(); {
	case err != nil:
		return nil, fmt.Errorf("parseValue: unexpected end of data")
	case b == langle:
		b, _ = r.ReadByte()
		if b == langle {
			return parseDict(r)
		}
		r.UnreadByte()
		return parseHex(r)
	case b == lparen:
		return parseString(r)
	case b == lsquare:
		return parseArray(r)
	case b == slash:
		r.UnreadByte()
		return parseName(r)
	case isLetter(b):
		r.UnreadByte()
		return parseIdent(r)
	case isNumber(b):
		r.UnreadByte()
		return parseNumber(r)
	default:
		return nil, fmt.Errorf("parseValue: syntax error (unexpected character %q)", b)
	}
}

func parseArray(r *Reader) (Value, error) {
	arr := make([]Value, 0)
	for {
		skipBlank(r)
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("parseArray: unterminated array")
		}
		if b == rsquare {
			return arr, nil
		}
		r.UnreadByte()
		v, err := parseValue(r)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func parseDict(r *Reader) (Value, error) {
	dict := make(Dict)
	for {
		skipBlank(r)
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if b == rangle {
			b, _ = r.ReadByte()
			if b != rangle {
				return dict, fmt.Errorf("parseDict: unterminated dict (closing character)")
			}
			return dict, nil
		}
		r.UnreadByte()
		name, err := parseName(r)
		if err != nil {
			return dict, err
		}
		value, err := parseValue(r)
		if err != nil {
			return dict, fmt.Errorf("parseDict %s: invalid value %w", name, err)
		}
		if value != nil {
			dict[strings.ToLower(string(name))] = value
		}
	}
	return dict, fmt.Errorf("parseDict: unterminated dict")
}

// parseNumber reads a number. An unsigned integer followed by another
// unsigned integer and the R keyword is read as a reference.
func parseNumber(r *Reader) (Value, error) {
	str := parseDecimal(r)
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return nil, fmt.Errorf("parseNumber: invalid number %q", str)
		}
		return f, nil
	}
	if n >= 0 && isDigit(str[0]) {
		if gen, ok := parseReference(r); ok {
			return Ref{Num: int(n), Gen: gen}, nil
		}
	}
	return n, nil
}

func parseReference(r *Reader) (int, bool) {
	tell := r.Tell()
	restore := func() (int, bool) {
		r.Seek(tell, io.SeekStart)
		return 0, false
	}
	skipBlank(r)
	if b, err := r.PeekByte(); err != nil || !isDigit(b) {
		return restore()
	}
	gen, err := strconv.Atoi(parseDecimal(r))
	if err != nil {
		return restore()
	}
	skipBlank(r)
	if b, _ := r.ReadByte(); b != 'R' {
		return restore()
	}
	if b, err := r.PeekByte(); err == nil && !isBlank(b) && !isDelimiter(b) {
		return restore()
	}
	return gen, true
}

func parseDecimal(r *Reader) string {
	var str bytes.Buffer
	if b, err := r.PeekByte(); err == nil && isNumber(b) {
		r.ReadByte()
		str.WriteByte(b)
	}
	for r.Len() > 0 {
		b, _ := r.ReadByte()
		if !isDigit(b) && b != dot {
			r.UnreadByte()
			break
		}
		str.WriteByte(b)
	}
	return str.String()
}

func parseIdent(r *Reader) (Value, error) {
	var str bytes.Buffer
	for r.Len() > 0 {
		b, _ := r.ReadByte()
		if !isLetter(b) {
			r.UnreadByte()
			break
		}
		str.WriteByte(b)
	}
	switch ident := str.String(); ident {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	default:
		return nil, fmt.Errorf("parseIdent: %s not a keyword", ident)
	}
}

func parseHex(r *Reader) (Value, error) {
	var str bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("parseHex: unterminated hex string")
		}
		if b == rangle {
			break
		}
		if isBlank(b) {
			continue
		}
		c1, ok := fromHexChar(b)
		if !ok {
			return nil, fmt.Errorf("parseHex: invalid character %q", b)
		}
		skipBlank(r)
		b, _ = r.ReadByte()
		if b == rangle {
			r.UnreadByte()
			b = '0'
		}
		c2, ok := fromHexChar(b)
		if !ok {
			return nil, fmt.Errorf("parseHex: invalid character %q", b)
		}
		str.WriteByte((c1 << 4) | c2)
	}
	return convertString(str.String()), nil
}

func parseString(r *Reader) (Value, error) {
	var (
		parens = 1
		str    bytes.Buffer
	)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("parseString: unterminated string")
		}
		if b == lparen {
			parens++
		} else if b == rparen {
			parens--
		}
		if b == rparen && parens == 0 {
			break
		}
		if b == backslash {
			b, _ = r.ReadByte()
			switch b {
			case nl:
				continue
			case cr:
				if c, _ := r.PeekByte(); c == nl {
					r.ReadByte()
				}
				continue
			case 'n':
				b = nl
			case 'r':
				b = cr
			case 't':
				b = tab
			case 'b':
				b = backspace
			case 'f':
				b = formfeed
			case '0', '1', '2', '3', '4', '5', '6', '7':
				b = parseOctal(r, b)
			}
		}
		str.WriteByte(b)
	}
	return convertString(str.String()), nil
}

func parseOctal(r *Reader, first byte) byte {
	n := int(first - '0')
	for i := 0; i < 2; i++ {
		b, err := r.PeekByte()
		if err != nil || b < '0' || b > '7' {
			break
		}
		r.ReadByte()
		n = n*8 + int(b-'0')
	}
	return byte(n)
}

func parseName(r *Reader) (Name, error) {
	b, _ := r.ReadByte()
	if b != slash {
		return "", fmt.Errorf("parseName: invalid name (missing /)")
	}
	var str bytes.Buffer
	for r.Len() > 0 {
		b, _ := r.ReadByte()
		if isBlank(b) || isDelimiter(b) {
			r.UnreadByte()
			break
		}
		if b == pound {
			c1, ok1 := fromHexChar(peekAt(r, 0))
			c2, ok2 := fromHexChar(peekAt(r, 1))
			if ok1 && ok2 {
				r.Discard(2)
				b = (c1 << 4) | c2
			}
		}
		str.WriteByte(b)
	}
	return Name(str.String()), nil
}

func peekAt(r *Reader, i int) byte {
	buf := r.Bytes()
	if i >= len(buf) {
		return 0
	}
	return buf[i]
}
