package pdfpages

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewPageBox(t *testing.T) {
	tests := []struct {
		Width  float64
		Height float64
		Want   PageBox
	}{
		{Width: 612, Height: 792, Want: Letter},
		{Width: 595.28, Height: 841.89, Want: PageBox{WidthPt: 595.28, HeightPt: 841.89, WidthPx: 794, HeightPx: 1123}},
		{Width: 0.3, Height: 1, Want: PageBox{WidthPt: 0.3, HeightPt: 1, WidthPx: 0, HeightPx: 1}},
	}
	for _, tt := range tests {
		got, err := NewPageBox(tt.Width, tt.Height)
		if err != nil {
			t.Errorf("%gx%g: unexpected error: %s", tt.Width, tt.Height, err)
			continue
		}
		if diff := cmp.Diff(tt.Want, got); diff != "" {
			t.Errorf("%gx%g: box mismatch (-want +got):\n%s", tt.Width, tt.Height, diff)
		}
	}
	for _, size := range [][2]float64{{0, 10}, {10, -1}} {
		if _, err := NewPageBox(size[0], size[1]); err == nil {
			t.Errorf("%v: expected error", size)
		}
	}
}

func TestMediaBox(t *testing.T) {
	tests := []struct {
		Input string
		Want  PageBox
		Ok    bool
	}{
		{Input: "[0 0 612 792]", Want: Letter, Ok: true},
		{Input: "[612 792 0 0]", Want: Letter, Ok: true},
		{Input: "[-306 -396 306 396]", Want: Letter, Ok: true},
		{Input: "[0 0 612]"},
		{Input: "[0 0 /W 792]"},
		{Input: "[10 10 10 20]"},
		{Input: "/Letter"},
	}
	for _, tt := range tests {
		v, err := parseValue(NewReader([]byte(tt.Input)))
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", tt.Input, err)
		}
		got, ok := mediaBox(v)
		if ok != tt.Ok {
			t.Errorf("%s: got %t, want %t", tt.Input, ok, tt.Ok)
			continue
		}
		if diff := cmp.Diff(tt.Want, got); ok && diff != "" {
			t.Errorf("%s: box mismatch (-want +got):\n%s", tt.Input, diff)
		}
	}
}

func TestResolveStructure(t *testing.T) {
	b := newBuilder()
	b.Object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.Object(2, "<< /Type /Pages /Kids 6 0 R /Count 3 /MediaBox [0 0 595 842] >>")
	b.Object(3, "<< /Type /Page /Parent 2 0 R >>")
	b.Object(4, "<< /Type /Page /Parent 2 0 R /MediaBox 5 0 R >>")
	b.Object(5, "[0 0 100 200]")
	b.Object(6, "[3 0 R 4 0 R 7 0 R]")
	b.Object(7, "<< /Type /Pages /Parent 2 0 R /Kids [] /Count 0 >>")
	buf := b.Table("/Root 1 0 R")

	got, err := resolveStructure(buf, XRef(b.offsets), Ref{Num: 1})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	a4, _ := NewPageBox(595, 842)
	small, _ := NewPageBox(100, 200)
	if diff := cmp.Diff([]PageBox{a4, small}, got); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveStructureSingleKid(t *testing.T) {
	b := newBuilder()
	b.Object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.Object(2, "<< /Type /Pages /Kids 3 0 R /Count 1 >>")
	b.Object(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	buf := b.Table("/Root 1 0 R")

	got, err := resolveStructure(buf, XRef(b.offsets), Ref{Num: 1})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff([]PageBox{Letter}, got); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveStructureErrors(t *testing.T) {
	tests := []struct {
		Name    string
		Objects map[int]string
		Want    error
	}{
		{
			Name:    "no catalog",
			Objects: map[int]string{2: "<< /Type /Pages /Kids [] /Count 0 >>"},
			Want:    ErrPageTree,
		},
		{
			Name:    "catalog without pages",
			Objects: map[int]string{1: "<< /Type /Catalog >>"},
			Want:    ErrPageTree,
		},
		{
			Name: "missing kid",
			Objects: map[int]string{
				1: "<< /Type /Catalog /Pages 2 0 R >>",
				2: "<< /Type /Pages /Kids [9 0 R] /Count 1 >>",
			},
			Want: ErrPageTree,
		},
		{
			Name: "invalid kids",
			Objects: map[int]string{
				1: "<< /Type /Catalog /Pages 2 0 R >>",
				2: "<< /Type /Pages /Kids [/Page] /Count 1 >>",
			},
			Want: ErrPageTree,
		},
		{
			Name: "unresolved kids reference",
			Objects: map[int]string{
				1: "<< /Type /Catalog /Pages 2 0 R >>",
				2: "<< /Type /Pages /Kids 9 0 R /Count 1 >>",
			},
			Want: ErrPageTree,
		},
		{
			Name: "kids reference to a number",
			Objects: map[int]string{
				1: "<< /Type /Catalog /Pages 2 0 R >>",
				2: "<< /Type /Pages /Kids 3 0 R /Count 1 >>",
				3: "42",
			},
			Want: ErrPageTree,
		},
		{
			Name: "no mediabox",
			Objects: map[int]string{
				1: "<< /Type /Catalog /Pages 2 0 R >>",
				2: "<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
				3: "<< /Type /Page /Parent 2 0 R >>",
			},
			Want: ErrPageTree,
		},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			b := newBuilder()
			for num := 1; num <= 9; num++ {
				if body, ok := tt.Objects[num]; ok {
					b.Object(num, body)
				}
			}
			buf := b.Table("/Root 1 0 R")
			_, err := resolveStructure(buf, XRef(b.offsets), Ref{Num: 1})
			if !errors.Is(err, tt.Want) {
				t.Errorf("expected %v, got %v", tt.Want, err)
			}
		})
	}
}
