package shape

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Freehand is a brush stroke stored as an SVG-style path.
type Freehand struct {
	base
	segs []Segment
}

// PathData returns the stroke as an absolute SVG path string.
func (f *Freehand) PathData() string { return FormatPath(f.segs) }

// Segments returns a copy of the parsed path.
func (f *Freehand) Segments() []Segment { return cloneSegments(f.segs) }

func (f *Freehand) Bounds() r2.Rect { return pathBounds(f.segs) }

func (f *Freehand) Contains(p Point) bool { return f.hitBounds(f.Bounds()).ContainsPoint(p) }

func (f *Freehand) Translate(dx, dy float64) {
	d := Pt(dx, dy)
	for i := range f.segs {
		for j := range f.segs[i].Pts {
			f.segs[i].Pts[j] = f.segs[i].Pts[j].Add(d)
		}
	}
}

func (f *Freehand) Resize(sx, sy float64, origin Point) {
	for i := range f.segs {
		for j := range f.segs[i].Pts {
			f.segs[i].Pts[j] = scalePoint(f.segs[i].Pts[j], sx, sy, origin)
		}
	}
}

func (f *Freehand) Render(r Renderer) { r.DrawPath(f.segs, f.paint(false)) }

func (f *Freehand) ToObject() Object {
	o := f.baseObject()
	o["path"] = f.PathData()
	o["stroke"] = f.style.StrokeColor
	o["strokeWidth"] = f.style.StrokeWidth
	return o
}

func (f *Freehand) Clone() Shape {
	c := *f
	c.segs = cloneSegments(f.segs)
	return &c
}

func decodeFreehand(o Object) (Shape, error) {
	data, ok := o["path"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformed, "path")
	}
	segs, err := ParsePath(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(segs) < 2 {
		return nil, fmt.Errorf("%w: freehand path needs 2 segments", ErrMalformed)
	}
	return &Freehand{base: readBase(o, KindFreehand, readStyle(o)), segs: segs}, nil
}

// smoothPath builds M p0 Q p1 mid(p1,p2) ... L pn, a quadratic curve through
// the midpoints of consecutive samples.
func smoothPath(pts []Point) []Segment {
	segs := []Segment{{Op: MoveTo, Pts: []Point{pts[0]}}}
	for i := 1; i < len(pts)-1; i++ {
		segs = append(segs, Segment{Op: QuadTo, Pts: []Point{pts[i], midpoint(pts[i], pts[i+1])}})
	}
	return append(segs, Segment{Op: LineTo, Pts: []Point{pts[len(pts)-1]}})
}
