package builder

import (
	"testing"

	"photomark/shape"
)

func TestNew(t *testing.T) {
	if _, err := New(shape.KindRectangle); err == nil {
		t.Error("rectangle builder accepted")
	}
	b, err := New(shape.KindPolyline)
	if err != nil {
		t.Fatal(err)
	}
	if b.Kind() != shape.KindPolyline || b.State() != Empty {
		t.Errorf("kind %q state %v", b.Kind(), b.State())
	}
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name     string
		b        *Builder
		pts      []shape.Point
		wantKind shape.Kind
	}{
		{"polygon one vertex", NewPolygon(), []shape.Point{shape.Pt(0, 0)}, ""},
		{"polygon two vertices", NewPolygon(), []shape.Point{shape.Pt(0, 0), shape.Pt(20, 0)}, ""},
		{"polygon", NewPolygon(), []shape.Point{shape.Pt(0, 0), shape.Pt(20, 0), shape.Pt(10, 20)}, shape.KindPolygon},
		{"polyline one vertex", NewPolyline(), []shape.Point{shape.Pt(0, 0)}, ""},
		{"polyline", NewPolyline(), []shape.Point{shape.Pt(0, 0), shape.Pt(20, 0)}, shape.KindPolyline},
		// A double click adds its position twice.
		{"polyline double click", NewPolyline(), []shape.Point{shape.Pt(0, 0), shape.Pt(20, 0), shape.Pt(20, 0)}, shape.KindPolyline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range tt.pts {
				tt.b.AddPoint(p)
			}
			if tt.b.State() != Accumulating {
				t.Fatalf("state = %v", tt.b.State())
			}
			s := tt.b.Finalize(shape.DefaultStyle())
			if tt.b.State() != Empty || tt.b.Len() != 0 {
				t.Errorf("builder not reset: %v", tt.b.Points())
			}
			if tt.wantKind == "" {
				if s != nil {
					t.Fatalf("got %v, want nil", s.ToObject())
				}
				return
			}
			if s == nil {
				t.Fatal("got nil")
			}
			if s.Kind() != tt.wantKind {
				t.Errorf("kind = %q, want %q", s.Kind(), tt.wantKind)
			}
		})
	}
}

func TestShouldClose(t *testing.T) {
	b := NewPolygon()
	b.AddPoint(shape.Pt(0, 0))
	b.AddPoint(shape.Pt(50, 0))
	if b.ShouldClose(shape.Pt(1, 1)) {
		t.Error("closing with two vertices")
	}
	b.AddPoint(shape.Pt(25, 40))
	if !b.ShouldClose(shape.Pt(3, 4)) {
		t.Error("click near first vertex did not close")
	}
	if b.ShouldClose(shape.Pt(30, 30)) {
		t.Error("far click closed")
	}

	l := NewPolyline()
	for _, p := range b.Points() {
		l.AddPoint(p)
	}
	if l.ShouldClose(shape.Pt(0, 0)) {
		t.Error("polyline closed")
	}
}

func TestPreview(t *testing.T) {
	b := NewPolygon()
	if b.Preview(shape.Pt(1, 1), shape.DefaultStyle()) != nil {
		t.Error("preview of empty builder")
	}
	b.AddPoint(shape.Pt(0, 0))
	p := b.Preview(shape.Pt(30, 0), shape.DefaultStyle())
	if p == nil || len(p.Points()) != 2 {
		t.Fatalf("preview = %v", p)
	}
	b.AddPoint(shape.Pt(30, 0))
	p = b.Preview(shape.Pt(15, 30), shape.DefaultStyle())
	got := p.Points()
	if len(got) != 4 || got[3] != shape.Pt(0, 0) {
		t.Errorf("polygon preview not closed: %v", got)
	}

	l := NewPolyline()
	l.AddPoint(shape.Pt(0, 0))
	l.AddPoint(shape.Pt(30, 0))
	if got := l.Preview(shape.Pt(15, 30), shape.DefaultStyle()).Points(); len(got) != 3 {
		t.Errorf("polyline preview = %v", got)
	}
}

func TestPointsIsSnapshot(t *testing.T) {
	b := NewPolyline()
	b.AddPoint(shape.Pt(1, 2))
	pts := b.Points()
	pts[0] = shape.Pt(9, 9)
	if b.Points()[0] != shape.Pt(1, 2) {
		t.Error("Points exposes internal slice")
	}
}
