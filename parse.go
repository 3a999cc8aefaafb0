package pdfpages

import (
	"errors"
	"fmt"
	"os"
)

var (
	ErrNotPDF  = errors.New("file does not appear to be a valid PDF")
	ErrMissing = errors.New("not found")

	ErrTooSmall = fmt.Errorf("%w: file too small", ErrNotPDF)
	ErrTooLarge = fmt.Errorf("%w: file too large", ErrNotPDF)
	ErrHeader   = fmt.Errorf("%w: header", ErrNotPDF)
	ErrTrailer  = fmt.Errorf("%w: trailer", ErrNotPDF)
	ErrXRef     = fmt.Errorf("%w: cross-reference", ErrNotPDF)
	ErrRoot     = fmt.Errorf("%w: document catalog", ErrNotPDF)
	ErrPageTree = fmt.Errorf("%w: page tree", ErrNotPDF)
	ErrCount    = fmt.Errorf("%w: page count", ErrNotPDF)
)

// MinSize is the size under which a buffer can not hold a PDF file.
const MinSize = 100

const (
	DefaultTrailerWindow  = 2048
	DefaultXRefWindow     = 4096
	DefaultFallbackWindow = 512 << 10
	DefaultMaxPageCount   = 50000
	DefaultMaxSections    = 64
)

// Letter is the size of an US Letter page, used for pages whose size can
// not be read.
var Letter = PageBox{
	WidthPt:  612,
	HeightPt: 792,
	WidthPx:  816,
	HeightPx: 1056,
}

// Structure describes the pages of a document. Fallback is set when the
// page tree could not be walked and the pages were synthesized from the
// declared page count.
type Structure struct {
	PageCount int
	PageBoxes []PageBox
	Fallback  bool
}

type Options struct {
	// TrailerWindow is the number of bytes searched backward from the last
	// %%EOF for the startxref keyword.
	TrailerWindow int
	// XRefWindow is the number of bytes of a classic table that are read.
	XRefWindow int
	// FallbackWindow is the number of bytes, from the start of the file,
	// scanned for a /Count entry when the page tree is broken.
	FallbackWindow int
	MaxPageCount   int
	// MaxSections bounds the number of sections read along the /Prev
	// chain.
	MaxSections int
	// MaxFileSize is only checked by ParseFile. Zero means no limit.
	MaxFileSize int64
	DefaultPage PageBox
	Inflater    Inflater
	Trace       func(string, ...interface{})
}

func DefaultOptions() Options {
	return Options{
		TrailerWindow:  DefaultTrailerWindow,
		XRefWindow:     DefaultXRefWindow,
		FallbackWindow: DefaultFallbackWindow,
		MaxPageCount:   DefaultMaxPageCount,
		MaxSections:    DefaultMaxSections,
		DefaultPage:    Letter,
		Inflater:       Zlib(DefaultMaxInflate),
	}
}

// Parser reads the page structure of PDF files. A Parser holds no state
// between calls and is safe for concurrent use.
type Parser struct {
	opts Options
}

// NewParser returns a parser configured with opts. Zero fields take their
// default value.
func NewParser(opts Options) *Parser {
	def := DefaultOptions()
	if opts.TrailerWindow <= 0 {
		opts.TrailerWindow = def.TrailerWindow
	}
	if opts.XRefWindow <= 0 {
		opts.XRefWindow = def.XRefWindow
	}
	if opts.FallbackWindow <= 0 {
		opts.FallbackWindow = def.FallbackWindow
	}
	if opts.MaxPageCount <= 0 {
		opts.MaxPageCount = def.MaxPageCount
	}
	if opts.MaxSections <= 0 {
		opts.MaxSections = def.MaxSections
	}
	if opts.DefaultPage.WidthPt <= 0 || opts.DefaultPage.HeightPt <= 0 {
		opts.DefaultPage = def.DefaultPage
	}
	if opts.Inflater == nil {
		opts.Inflater = def.Inflater
	}
	return &Parser{opts: opts}
}

var std = NewParser(DefaultOptions())

// Parse returns the page structure of the PDF file held by buf with the
// default options.
func Parse(buf []byte) (Structure, error) {
	return std.Parse(buf)
}

// ParseFile reads and parses the file at path with the default options.
func ParseFile(file string) (Structure, error) {
	return std.ParseFile(file)
}

// ReadSections returns the cross-reference sections of the file held by
// buf, the most recent first.
func ReadSections(buf []byte) ([]Section, error) {
	return std.ReadSections(buf)
}

func (p *Parser) ParseFile(file string) (Structure, error) {
	if p.opts.MaxFileSize > 0 {
		fi, err := os.Stat(file)
		if err != nil {
			return Structure{}, err
		}
		if fi.Size() > p.opts.MaxFileSize {
			return Structure{}, fmt.Errorf("%w (%d bytes)", ErrTooLarge, fi.Size())
		}
	}
	buf, err := os.ReadFile(file)
	if err != nil {
		return Structure{}, fmt.Errorf("read file: %w", err)
	}
	return p.Parse(buf)
}

// Parse returns the page structure of the PDF file held by buf. buf is
// never modified. Every error returned wraps ErrNotPDF.
//
// A missing header or trailer, an empty cross-reference table and a
// missing /Root entry are fatal. When the cross-reference stream can not
// be decoded, or the catalog and page tree can not be walked, the page
// count is guessed from the first /Count entry of the file.
func (p *Parser) Parse(buf []byte) (Structure, error) {
	if len(buf) < MinSize {
		return Structure{}, fmt.Errorf("%w (%d bytes)", ErrTooSmall, len(buf))
	}
	info, err := locateTrailer(buf, p.opts.TrailerWindow)
	if err != nil {
		return Structure{}, err
	}
	p.tracef("pdf %s: xref at %d (stream: %t)", info.Version, info.XRefOffset, info.Stream)

	list, err := readSections(buf, info.XRefOffset, p.opts, p.tracef)
	if err != nil {
		return p.fallback(buf, err)
	}
	xref := mergeSections(list)
	if len(xref) == 0 {
		return Structure{}, fmt.Errorf("%w: no object in use", ErrXRef)
	}
	root, ok := p.findRoot(buf, info, list)
	if !ok {
		return Structure{}, fmt.Errorf("%w: /Root %v", ErrRoot, ErrMissing)
	}
	p.tracef("catalog: %s", root)

	boxes, err := resolveStructure(buf, xref, root)
	if err != nil {
		return p.fallback(buf, err)
	}
	st := Structure{
		PageCount: len(boxes),
		PageBoxes: boxes,
	}
	return st, nil
}

func (p *Parser) fallback(buf []byte, err error) (Structure, error) {
	p.tracef("fallback: %s", err)
	return fallbackScan(buf, p.opts)
}

// findRoot looks for the catalog reference in the dictionary of the last
// section, then in the text preceding startxref, then in the older
// sections.
func (p *Parser) findRoot(buf []byte, info trailerInfo, list []Section) (Ref, bool) {
	if root, ok := list[0].Trailer.GetRef("root"); ok {
		return root, true
	}
	if root, ok := scanRoot(buf, info, p.opts.TrailerWindow); ok {
		p.tracef("catalog found in trailer text")
		return root, true
	}
	for _, s := range list[1:] {
		if root, ok := s.Trailer.GetRef("root"); ok {
			return root, true
		}
	}
	return Ref{}, false
}

func (p *Parser) ReadSections(buf []byte) ([]Section, error) {
	if len(buf) < MinSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooSmall, len(buf))
	}
	info, err := locateTrailer(buf, p.opts.TrailerWindow)
	if err != nil {
		return nil, err
	}
	return readSections(buf, info.XRefOffset, p.opts, p.tracef)
}

func (p *Parser) tracef(format string, args ...interface{}) {
	if p.opts.Trace == nil {
		return
	}
	p.opts.Trace(format, args...)
}
