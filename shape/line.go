package shape

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// segment holds the two endpoints shared by dimension lines and arrows.
type segment struct {
	start, end Point
}

func (s *segment) Start() Point { return s.start }
func (s *segment) End() Point   { return s.end }

// Length is the distance between the endpoints.
func (s *segment) Length() float64 { return s.end.Sub(s.start).Norm() }

func (s *segment) box() r2.Rect { return r2.RectFromPoints(s.start, s.end) }

func (s *segment) Translate(dx, dy float64) {
	d := Pt(dx, dy)
	s.start = s.start.Add(d)
	s.end = s.end.Add(d)
}

func (s *segment) Resize(sx, sy float64, origin Point) {
	s.start = scalePoint(s.start, sx, sy, origin)
	s.end = scalePoint(s.end, sx, sy, origin)
}

func (s *segment) write(o Object) {
	o["x1"] = s.start.X
	o["y1"] = s.start.Y
	o["x2"] = s.end.X
	o["y2"] = s.end.Y
}

func readSegment(o Object) (segment, error) {
	var v [4]float64
	for i, key := range []string{"x1", "y1", "x2", "y2"} {
		f, err := o.number(key)
		if err != nil {
			return segment{}, err
		}
		v[i] = f
	}
	return segment{start: Pt(v[0], v[1]), end: Pt(v[2], v[3])}, nil
}

// Dimension is a measurement line with perpendicular ticks at both ends and a
// label at its midpoint.
type Dimension struct {
	base
	segment
	label string
}

// TickSize is the length of the end ticks.
func (d *Dimension) TickSize() float64 { return math.Max(8, d.style.StrokeWidth*4) }

// Label is the caption drawn at the midpoint; it defaults to the measured length.
func (d *Dimension) Label() string {
	if d.label != "" {
		return d.label
	}
	return fmt.Sprintf("%.0f px", d.Length())
}

// SetLabel overrides the measured-length caption. An empty label restores it.
func (d *Dimension) SetLabel(label string) { d.label = label }

func (d *Dimension) Bounds() r2.Rect { return d.box().ExpandedByMargin(d.TickSize() / 2) }

func (d *Dimension) Contains(p Point) bool { return d.hitBounds(d.Bounds()).ContainsPoint(p) }

func (d *Dimension) Render(r Renderer) {
	p := d.paint(false)
	r.DrawPolyline([]Point{d.start, d.end}, false, p)
	dir := d.end.Sub(d.start)
	if dir.Norm() == 0 {
		return
	}
	n := dir.Normalize().Ortho().Mul(d.TickSize() / 2)
	r.DrawPolyline([]Point{d.start.Add(n), d.start.Sub(n)}, false, p)
	r.DrawPolyline([]Point{d.end.Add(n), d.end.Sub(n)}, false, p)

	size := math.Max(12, d.style.StrokeWidth*6)
	label := d.Label()
	w, h := MeasureText([]string{label}, size)
	mid := midpoint(d.start, d.end)
	r.DrawText(TextRun{
		Lines:      []string{label},
		Origin:     Pt(mid.X-w/2, mid.Y-h-d.TickSize()/2),
		FontSize:   size,
		LineHeight: size * LineSpacing,
		Color:      d.style.StrokeColor,
		Background: "rgba(255,255,255,0.7)",
		Opacity:    d.flags.Opacity,
	})
}

func (d *Dimension) ToObject() Object {
	o := d.baseObject()
	d.segment.write(o)
	o["stroke"] = d.style.StrokeColor
	o["strokeWidth"] = d.style.StrokeWidth
	o["tickSize"] = d.TickSize()
	o["label"] = d.label
	return o
}

func (d *Dimension) Clone() Shape {
	c := *d
	return &c
}

func decodeDimension(o Object) (Shape, error) {
	seg, err := readSegment(o)
	if err != nil {
		return nil, err
	}
	return &Dimension{
		base:    readBase(o, KindDimension, readStyle(o)),
		segment: seg,
		label:   o.stringOr("label", ""),
	}, nil
}

// Arrow is a line with a filled head at its end point.
type Arrow struct {
	base
	segment
}

// HeadSize is the length of the arrow head along the shaft.
func (a *Arrow) HeadSize() float64 { return math.Max(12, a.style.StrokeWidth*5) }

func (a *Arrow) Bounds() r2.Rect { return a.box().ExpandedByMargin(a.HeadSize() / 2) }

func (a *Arrow) Contains(p Point) bool { return a.hitBounds(a.Bounds()).ContainsPoint(p) }

// head returns the three corners of the arrow head, tip first.
func (a *Arrow) head() []Point {
	dir := a.end.Sub(a.start)
	length := dir.Norm()
	if length < 1 {
		return nil
	}
	u := dir.Mul(1 / length)
	headLen := math.Min(a.HeadSize(), length)
	foot := a.end.Sub(u.Mul(headLen))
	n := u.Ortho().Mul(headLen / 2)
	return []Point{a.end, foot.Add(n), foot.Sub(n)}
}

func (a *Arrow) Render(r Renderer) {
	p := a.paint(false)
	head := a.head()
	shaftEnd := a.end
	if head != nil {
		// Stop the shaft at the head base so wide strokes do not poke through the tip.
		shaftEnd = midpoint(head[1], head[2])
	}
	r.DrawPolyline([]Point{a.start, shaftEnd}, false, p)
	if head != nil {
		r.DrawPolyline(head, true, Paint{
			Stroke:  a.style.StrokeColor,
			Fill:    a.style.StrokeColor,
			Width:   1,
			Opacity: a.flags.Opacity,
		})
	}
}

func (a *Arrow) ToObject() Object {
	o := a.baseObject()
	a.segment.write(o)
	o["stroke"] = a.style.StrokeColor
	o["strokeWidth"] = a.style.StrokeWidth
	o["headSize"] = a.HeadSize()
	return o
}

func (a *Arrow) Clone() Shape {
	c := *a
	return &c
}

func decodeArrow(o Object) (Shape, error) {
	seg, err := readSegment(o)
	if err != nil {
		return nil, err
	}
	return &Arrow{base: readBase(o, KindArrow, readStyle(o)), segment: seg}, nil
}
