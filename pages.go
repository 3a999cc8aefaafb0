package pdfpages

import (
	"fmt"
	"io"
	"math"
)

// PixelRatio converts PDF points to CSS pixels.
const PixelRatio = 96.0 / 72.0

// PageBox is the size of a page in points and in pixels.
type PageBox struct {
	WidthPt  float64
	HeightPt float64
	WidthPx  int
	HeightPx int
}

// NewPageBox returns the box of a page measuring width by height points.
func NewPageBox(width, height float64) (PageBox, error) {
	var pb PageBox
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return pb, fmt.Errorf("invalid page size %gx%g", width, height)
	}
	pb.WidthPt = width
	pb.HeightPt = height
	pb.WidthPx = int(math.Round(width * PixelRatio))
	pb.HeightPx = int(math.Round(height * PixelRatio))
	return pb, nil
}

// mediaBox returns the page box described by a [x0 y0 x1 y1] rectangle.
func mediaBox(v Value) (PageBox, bool) {
	arr, ok := v.([]Value)
	if !ok || len(arr) != 4 {
		return PageBox{}, false
	}
	var rect [4]float64
	for i := range arr {
		if rect[i], ok = toNumber(arr[i]); !ok {
			return PageBox{}, false
		}
	}
	pb, err := NewPageBox(math.Abs(rect[2]-rect[0]), math.Abs(rect[3]-rect[1]))
	return pb, err == nil
}

// objects resolves indirect objects through a cross-reference table.
type objects struct {
	buf  []byte
	xref XRef
}

func (res objects) Get(ref Ref) (Object, error) {
	offset, ok := res.xref[ref.Num]
	if !ok {
		return Object{}, fmt.Errorf("object %d %w", ref.Num, ErrMissing)
	}
	r := NewReader(res.buf)
	if _, err := r.Seek(offset, io.SeekStart); err != nil || offset >= r.Size() {
		return Object{}, fmt.Errorf("object %d: offset %d outside of file", ref.Num, offset)
	}
	obj, err := readObject(r, false)
	if err != nil {
		return obj, fmt.Errorf("object %d: %w", ref.Num, err)
	}
	if obj.Num != ref.Num {
		return obj, fmt.Errorf("object %d: found object %d at offset %d", ref.Num, obj.Num, offset)
	}
	return obj, nil
}

// Dict returns the dictionary of the object ref points to.
func (res objects) Dict(ref Ref) (Dict, error) {
	obj, err := res.Get(ref)
	if err != nil {
		return nil, err
	}
	if obj.Dict == nil {
		return nil, fmt.Errorf("object %d is not a dictionary", ref.Num)
	}
	return obj.Dict, nil
}

// Value resolves v when it is a reference.
func (res objects) Value(v Value) (Value, error) {
	ref, ok := v.(Ref)
	if !ok {
		return v, nil
	}
	obj, err := res.Get(ref)
	if err != nil {
		return nil, err
	}
	if obj.Dict != nil {
		return obj.Dict, nil
	}
	return obj.Data, nil
}

// kids returns the children of a page tree node. /Kids may be given as a
// reference to an array object or to a single node.
func (res objects) kids(node Dict) ([]Ref, bool, error) {
	v, ok := node["kids"]
	if !ok {
		return nil, false, nil
	}
	if ref, ok := v.(Ref); ok {
		val, err := res.Value(ref)
		if err != nil {
			return nil, true, fmt.Errorf("/Kids %s: %w", ref, err)
		}
		if _, ok := val.(Dict); ok {
			return []Ref{ref}, true, nil
		}
		v = val
	}
	list, ok := refArray(v)
	if !ok {
		return nil, true, fmt.Errorf("invalid /Kids %v", v)
	}
	return list, true, nil
}

func (res objects) mediaBox(node Dict) (PageBox, bool) {
	v, err := res.Value(node["mediabox"])
	if err != nil {
		return PageBox{}, false
	}
	return mediaBox(v)
}

type pageNode struct {
	Ref
	inherited *PageBox
}

// resolveStructure walks the page tree from the catalog at root and
// returns the box of every leaf, in page order. A reference that can not
// be resolved fails the whole walk: no partial list is returned.
func resolveStructure(buf []byte, xref XRef, root Ref) ([]PageBox, error) {
	res := objects{
		buf:  buf,
		xref: xref,
	}
	catalog, err := res.Dict(root)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %s", ErrPageTree, err)
	}
	pages, ok := catalog.GetRef("pages")
	if !ok {
		return nil, fmt.Errorf("%w: catalog without /Pages", ErrPageTree)
	}

	var (
		boxes []PageBox
		seen  = make(map[int]struct{})
		queue = []pageNode{{Ref: pages}}
	)
	for len(queue) > 0 {
		n := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if _, ok := seen[n.Num]; ok {
			return nil, fmt.Errorf("%w: object %d visited twice", ErrPageTree, n.Num)
		}
		seen[n.Num] = struct{}{}

		node, err := res.Dict(n.Ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPageTree, err)
		}
		box, ok := res.mediaBox(node)
		if !ok && n.inherited != nil {
			box, ok = *n.inherited, true
		}
		kids, inner, err := res.kids(node)
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %s", ErrPageTree, n.Num, err)
		}
		if inner {
			var inherited *PageBox
			if ok {
				inherited = &box
			}
			for i := len(kids) - 1; i >= 0; i-- {
				queue = append(queue, pageNode{Ref: kids[i], inherited: inherited})
			}
			continue
		}
		if count, has := node["count"].(int64); has && count == 0 {
			continue
		}
		if ok {
			boxes = append(boxes, box)
		}
	}
	if len(boxes) == 0 {
		return nil, fmt.Errorf("%w: no page found", ErrPageTree)
	}
	return boxes, nil
}
