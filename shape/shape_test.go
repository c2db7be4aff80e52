package shape

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

func sampleShapes() []Shape {
	st := DefaultStyle()
	dim := CreateDimension(Pt(10, 10), Pt(110, 10), st)
	dim.SetLabel("1.2 m")
	txt := CreateText(Pt(40, 40), "hello\nworld", st)
	txt.SetFill("#ffffff")
	return []Shape{
		dim,
		CreateDimension(Pt(0, 0), Pt(30, 40), st),
		CreateArrow(Pt(5, 5), Pt(80, 60), st),
		CreateCircle(Pt(100, 100), Pt(50, 60), st),
		CreateRectangle(Pt(10, 10), Pt(110, 80), st),
		CreatePolygon([]Point{Pt(0, 0), Pt(40, 0), Pt(20, 30)}, st),
		CreatePolyline([]Point{Pt(0, 0), Pt(10, 10), Pt(20, 5)}, st),
		CreateFreehand([]Point{Pt(0, 0), Pt(10, 0), Pt(20, 10), Pt(25, 30)}, st),
		txt,
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range sampleShapes() {
		t.Run(string(s.Kind()), func(t *testing.T) {
			obj := s.ToObject()
			if obj.Kind() != s.Kind() {
				t.Fatalf("object kind = %q, want %q", obj.Kind(), s.Kind())
			}
			got, err := FromObject(obj)
			if err != nil {
				t.Fatalf("FromObject: %v", err)
			}
			if got.ID() != s.ID() {
				t.Errorf("id = %q, want %q", got.ID(), s.ID())
			}
			if !reflect.DeepEqual(got.ToObject(), obj) {
				t.Errorf("round trip mismatch\n got %v\nwant %v", got.ToObject(), obj)
			}
		})
	}
}

func TestRoundTripThroughJSON(t *testing.T) {
	for _, s := range sampleShapes() {
		t.Run(string(s.Kind()), func(t *testing.T) {
			data, err := json.Marshal(s.ToObject())
			if err != nil {
				t.Fatal(err)
			}
			var obj Object
			if err := json.Unmarshal(data, &obj); err != nil {
				t.Fatal(err)
			}
			got, err := FromObject(obj)
			if err != nil {
				t.Fatalf("FromObject: %v", err)
			}
			if !reflect.DeepEqual(got.ToObject(), s.ToObject()) {
				t.Errorf("json round trip mismatch\n got %v\nwant %v", got.ToObject(), s.ToObject())
			}
		})
	}
}

func TestCreateRectangle(t *testing.T) {
	tests := []struct {
		name       string
		start, end Point
		wantNil    bool
		want       [4]float64
	}{
		{name: "below threshold", start: Pt(0, 0), end: Pt(2, 2), wantNil: true},
		{name: "thin", start: Pt(0, 0), end: Pt(50, 4), wantNil: true},
		{name: "down right", start: Pt(0, 0), end: Pt(50, 30), want: [4]float64{0, 0, 50, 30}},
		{name: "up left", start: Pt(50, 30), end: Pt(0, 0), want: [4]float64{0, 0, 50, 30}},
		{name: "up right", start: Pt(10, 80), end: Pt(110, 10), want: [4]float64{10, 10, 100, 70}},
		{name: "not finite", start: Pt(math.NaN(), 0), end: Pt(50, 30), wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CreateRectangle(tt.start, tt.end, DefaultStyle())
			if tt.wantNil {
				if r != nil {
					t.Fatalf("got %v, want nil", r.ToObject())
				}
				return
			}
			if r == nil {
				t.Fatal("got nil")
			}
			got := [4]float64{r.PositionX(), r.PositionY(), r.ShapeWidth(), r.ShapeHeight()}
			if got != tt.want {
				t.Errorf("geometry = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateCircleDirectionIndependent(t *testing.T) {
	a := CreateCircle(Pt(100, 100), Pt(50, 60), DefaultStyle())
	b := CreateCircle(Pt(50, 60), Pt(100, 100), DefaultStyle())
	if a == nil || b == nil {
		t.Fatal("unexpected nil circle")
	}
	if a.Center() != b.Center() || a.RadiusX() != b.RadiusX() || a.RadiusY() != b.RadiusY() {
		t.Errorf("a = %v %v %v, b = %v %v %v", a.Center(), a.RadiusX(), a.RadiusY(), b.Center(), b.RadiusX(), b.RadiusY())
	}
	if a.Center() != Pt(75, 80) || a.RadiusX() != 25 || a.RadiusY() != 20 {
		t.Errorf("center %v radii %v,%v", a.Center(), a.RadiusX(), a.RadiusY())
	}
	if CreateCircle(Pt(0, 0), Pt(3, 40), DefaultStyle()) != nil {
		t.Error("narrow circle should be rejected")
	}
}

func TestLineFactories(t *testing.T) {
	st := DefaultStyle()
	if CreateArrow(Pt(0, 0), Pt(3, 3), st) != nil {
		t.Error("short arrow should be rejected")
	}
	if CreateDimension(Pt(0, 0), Pt(0, 4), st) != nil {
		t.Error("short dimension should be rejected")
	}
	d := CreateDimension(Pt(0, 0), Pt(30, 40), st)
	if d == nil {
		t.Fatal("dimension rejected")
	}
	if d.Length() != 50 {
		t.Errorf("length = %v, want 50", d.Length())
	}
	if d.Label() != "50 px" {
		t.Errorf("label = %q", d.Label())
	}
	d.SetLabel("2 m")
	if d.Label() != "2 m" {
		t.Errorf("label = %q", d.Label())
	}
	a := CreateArrow(Pt(0, 0), Pt(100, 0), Style{StrokeColor: "#000", StrokeWidth: 4})
	if a.HeadSize() != 20 {
		t.Errorf("head size = %v, want 20", a.HeadSize())
	}
}

func TestVertexFactories(t *testing.T) {
	st := DefaultStyle()
	tests := []struct {
		name    string
		create  func([]Point) Shape
		pts     []Point
		wantLen int
	}{
		{"polygon two points", func(p []Point) Shape { return nilOr(CreatePolygon(p, st)) }, []Point{Pt(0, 0), Pt(10, 0)}, 0},
		{"polygon duplicate click", func(p []Point) Shape { return nilOr(CreatePolygon(p, st)) }, []Point{Pt(0, 0), Pt(10, 0), Pt(10, 0)}, 0},
		{"polygon closing vertex", func(p []Point) Shape { return nilOr(CreatePolygon(p, st)) }, []Point{Pt(0, 0), Pt(10, 0), Pt(5, 9), Pt(0, 0)}, 3},
		{"polyline single", func(p []Point) Shape { return nilOr(CreatePolyline(p, st)) }, []Point{Pt(1, 1), Pt(1, 1)}, 0},
		{"polyline", func(p []Point) Shape { return nilOr(CreatePolyline(p, st)) }, []Point{Pt(1, 1), Pt(9, 9)}, 2},
		{"freehand single", func(p []Point) Shape { return nilOr(CreateFreehand(p, st)) }, []Point{Pt(3, 3)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.create(tt.pts)
			if tt.wantLen == 0 {
				if s != nil {
					t.Fatalf("got %v, want nil", s.ToObject())
				}
				return
			}
			if s == nil {
				t.Fatal("got nil")
			}
			var n int
			switch v := s.(type) {
			case *Polygon:
				n = len(v.Vertices())
			case *Polyline:
				n = len(v.Points())
			}
			if n != tt.wantLen {
				t.Errorf("len = %d, want %d", n, tt.wantLen)
			}
		})
	}
}

// nilOr converts a typed nil pointer into a nil interface.
func nilOr[T interface {
	Shape
	comparable
}](s T) Shape {
	var zero T
	if s == zero {
		return nil
	}
	return s
}

func TestFreehandSmoothing(t *testing.T) {
	f := CreateFreehand([]Point{Pt(0, 0), Pt(10, 0), Pt(20, 10)}, DefaultStyle())
	if f == nil {
		t.Fatal("got nil")
	}
	if got, want := f.PathData(), "M 0 0 Q 10 0 15 5 L 20 10"; got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "M 0 0 L 10 10", want: "M 0 0 L 10 10"},
		{in: "M0,0L10,10Z", want: "M 0 0 L 10 10 Z"},
		{in: "m 10 10 l 5 0 5 5 z", want: "M 10 10 L 15 10 L 20 15 Z"},
		{in: "M 1 2 3 4", want: "M 1 2 L 3 4"},
		{in: "M-1-2L1e1 2.5", want: "M -1 -2 L 10 2.5"},
		{in: "M 0 0 Q 1 1 2 2 C 1 1 2 2 3 3", want: "M 0 0 Q 1 1 2 2 C 1 1 2 2 3 3"},
		{in: "L 1 1", wantErr: true},
		{in: "M 1", wantErr: true},
		{in: "M 0 0 A 1 1 0 0 0 2 2", wantErr: true},
		{in: "M 0 0 L x 1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			segs, err := ParsePath(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePath(%q) = %v, want error", tt.in, segs)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q): %v", tt.in, err)
			}
			if got := FormatPath(segs); got != tt.want {
				t.Errorf("FormatPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	dec := func(Object) (Shape, error) { return nil, nil }
	if _, err := NewRegistry(Decoder{Kind: "a", Decode: dec}, Decoder{Kind: "a", Decode: dec}); err == nil {
		t.Error("duplicate kind accepted")
	}
	if _, err := NewRegistry(Decoder{Kind: "a", Decode: dec}, Decoder{Kind: "b", Aliases: []Kind{"a"}, Decode: dec}); err == nil {
		t.Error("alias clashing with a kind accepted")
	}
	if _, err := NewRegistry(Decoder{Kind: "", Decode: dec}); err == nil {
		t.Error("empty kind accepted")
	}
	if _, err := NewRegistry(Decoder{Kind: "a"}); err == nil {
		t.Error("missing decode func accepted")
	}

	reg := Default()
	if len(reg.Kinds()) != 8 {
		t.Errorf("kinds = %v", reg.Kinds())
	}
	if reg.Has(KindBackground) {
		t.Error("background must not be decodable")
	}

	tests := []struct {
		name    string
		obj     Object
		wantErr error
		want    Kind
	}{
		{name: "nil", obj: nil, wantErr: ErrMalformed},
		{name: "no kind", obj: Object{"left": 1.0}, wantErr: ErrMalformed},
		{name: "kind not string", obj: Object{"kind": 3.0}, wantErr: ErrMalformed},
		{name: "unknown", obj: Object{"kind": "hexagon"}, wantErr: ErrUnknownKind},
		{name: "missing field", obj: Object{"kind": "rectangleShape", "left": 1.0}, wantErr: ErrMalformed},
		{name: "short polygon", obj: Object{"kind": "polygon", "points": []any{map[string]any{"x": 1.0, "y": 1.0}}}, wantErr: ErrMalformed},
		{name: "bad path", obj: Object{"kind": "freehand", "path": "Q"}, wantErr: ErrMalformed},
		{
			name: "legacy rectangle",
			obj:  Object{"kind": "rectangle", "left": 1.0, "top": 2.0, "width": 30, "height": 40},
			want: KindRectangle,
		},
		{
			name: "legacy circle",
			obj:  Object{"kind": "circle", "cx": 1.0, "cy": 2.0, "rx": 10.0, "ry": 10.0},
			want: KindCircle,
		},
		{
			name: "legacy path",
			obj:  Object{"kind": "path", "path": "M 0 0 L 10 10"},
			want: KindFreehand,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := reg.Decode(tt.obj)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if s.Kind() != tt.want {
				t.Errorf("kind = %q, want %q", s.Kind(), tt.want)
			}
			if s.ID() == "" {
				t.Error("decoded shape has no id")
			}
		})
	}
}

func TestStyleMutators(t *testing.T) {
	r := CreateRectangle(Pt(0, 0), Pt(50, 30), DefaultStyle())
	r.SetStroke("#00ff00")
	r.SetStroke("#00ff00")
	r.SetStrokeWidth(0)
	r.SetFill("blue")
	w := 6.0
	r.SetStyle(StyleOptions{StrokeWidth: &w})
	want := Style{StrokeColor: "#00ff00", StrokeWidth: 6, FillColor: "blue", FontSize: 20}
	if r.Style() != want {
		t.Errorf("style = %+v, want %+v", r.Style(), want)
	}
	o := r.ToObject()
	if o["stroke"] != "#00ff00" || o["strokeWidth"] != 6.0 || o["fill"] != "blue" {
		t.Errorf("object = %v", o)
	}
}

func TestContainsAndTransform(t *testing.T) {
	r := CreateRectangle(Pt(0, 0), Pt(50, 30), DefaultStyle())
	for _, tt := range []struct {
		p    Point
		want bool
	}{
		{Pt(25, 15), true},
		{Pt(53, 15), true},
		{Pt(60, 15), false},
		{Pt(25, -10), false},
	} {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	r.Translate(10, 5)
	if r.PositionX() != 10 || r.PositionY() != 5 {
		t.Errorf("after translate: %v,%v", r.PositionX(), r.PositionY())
	}
	r.Resize(2, 2, Pt(10, 5))
	if r.ShapeWidth() != 100 || r.ShapeHeight() != 60 || r.PositionX() != 10 {
		t.Errorf("after resize: %v", r.ToObject())
	}
	r.Resize(-1, 1, Pt(10, 5))
	if r.PositionX() != -90 || r.ShapeWidth() != 100 {
		t.Errorf("after mirror: %v", r.ToObject())
	}
}

func TestClone(t *testing.T) {
	p := CreatePolygon([]Point{Pt(0, 0), Pt(40, 0), Pt(20, 30)}, DefaultStyle())
	c := p.Clone().(*Polygon)
	c.Translate(5, 5)
	c.SetStroke("#000000")
	if p.Vertices()[0] != Pt(0, 0) || p.Style().StrokeColor != "#ff0000" {
		t.Error("clone shares state with original")
	}
	if c.ID() != p.ID() {
		t.Error("clone must keep the id")
	}
}

func TestTextEditing(t *testing.T) {
	txt := CreateText(Pt(5, 5), "", DefaultStyle())
	if txt.Content() != Placeholder {
		t.Fatalf("content = %q", txt.Content())
	}
	txt.EnterEditing()
	if !txt.IsEditing() {
		t.Fatal("not editing")
	}
	txt.InsertText("H")
	txt.InsertText("é")
	if txt.Content() != "Hé" {
		t.Errorf("content = %q", txt.Content())
	}
	txt.DeleteBackward()
	if txt.Content() != "H" {
		t.Errorf("content = %q", txt.Content())
	}
	txt.InsertText("\nline")
	if len(txt.Lines()) != 2 {
		t.Errorf("lines = %q", txt.Lines())
	}
	if txt.Height() <= txt.FontSize() {
		t.Errorf("height %v not multi-line", txt.Height())
	}
	clone := txt.Clone().(*Text)
	if clone.IsEditing() {
		t.Error("clone in editing mode")
	}
	txt.ExitEditing()
	if txt.IsEditing() {
		t.Error("still editing")
	}
	txt.EnterEditing()
	txt.DeleteBackward()
	if txt.Content() != "" {
		t.Errorf("select-all delete left %q", txt.Content())
	}
}

func TestTextKeepsStyle(t *testing.T) {
	st := DefaultStyle()
	st.StrokeWidth = 3.3
	st.FontSize = 30
	st.StrokeColor = "#00ff00"
	txt := CreateText(Pt(5, 5), "note", st)

	s, err := FromObject(txt.ToObject())
	if err != nil {
		t.Fatal(err)
	}
	got := s.(*Text).Style()
	if got.StrokeWidth != 3.3 || got.FontSize != 30 || got.StrokeColor != "#00ff00" {
		t.Errorf("style = %+v", got)
	}
}

func TestFaceCacheRoundsSizes(t *testing.T) {
	if Face(12.01) != Face(12.2) {
		t.Error("nearby sizes got different faces")
	}
	if Face(12.2) == Face(12.5) {
		t.Error("sizes half a point apart share a face")
	}
	before := func() int {
		faces.Lock()
		defer faces.Unlock()
		return len(faces.bySize)
	}()
	for i := range 1000 {
		Face(20 + float64(i)*0.0001)
	}
	faces.Lock()
	n := len(faces.bySize)
	faces.Unlock()
	if n-before > 1 {
		t.Errorf("cache grew by %d faces", n-before)
	}
}

func TestImageIsLocked(t *testing.T) {
	img := NewImage(nil)
	img.SetInteractive(true)
	f := img.Flags()
	if f.Selectable || f.Evented || !f.LockMovementX || !f.LockMovementY {
		t.Errorf("flags = %+v", *f)
	}
	r := CreateRectangle(Pt(0, 0), Pt(50, 30), DefaultStyle())
	if f := r.Flags(); !f.Selectable || !f.Evented || !f.HasControls || f.LockMovementX {
		t.Errorf("annotation flags = %+v", *f)
	}
}
