package shape

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// vertices is the ordered point list behind polygons and polylines.
type vertices struct {
	pts []Point
}

func (v *vertices) box() r2.Rect { return r2.RectFromPoints(v.pts...) }

func (v *vertices) Translate(dx, dy float64) {
	d := Pt(dx, dy)
	for i := range v.pts {
		v.pts[i] = v.pts[i].Add(d)
	}
}

func (v *vertices) Resize(sx, sy float64, origin Point) {
	for i := range v.pts {
		v.pts[i] = scalePoint(v.pts[i], sx, sy, origin)
	}
}

func (v *vertices) snapshot() []Point { return append([]Point(nil), v.pts...) }

// Polygon is a closed, optionally filled vertex loop.
type Polygon struct {
	base
	vertices
}

// Vertices returns a copy of the polygon's corners in drawing order.
func (p *Polygon) Vertices() []Point { return p.snapshot() }

func (p *Polygon) Bounds() r2.Rect       { return p.box() }
func (p *Polygon) Contains(q Point) bool { return p.hitBounds(p.box()).ContainsPoint(q) }
func (p *Polygon) Render(r Renderer)     { r.DrawPolyline(p.pts, true, p.paint(true)) }

func (p *Polygon) ToObject() Object {
	o := p.baseObject()
	o["points"] = pointList(p.pts)
	o["stroke"] = p.style.StrokeColor
	o["strokeWidth"] = p.style.StrokeWidth
	o["fill"] = p.style.FillColor
	return o
}

func (p *Polygon) Clone() Shape {
	c := *p
	c.pts = p.snapshot()
	return &c
}

func decodePolygon(o Object) (Shape, error) {
	pts, err := o.points("points")
	if err != nil {
		return nil, err
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: polygon needs 3 points, got %d", ErrMalformed, len(pts))
	}
	return &Polygon{base: readBase(o, KindPolygon, readStyle(o)), vertices: vertices{pts: pts}}, nil
}

// Polyline is an open vertex chain.
type Polyline struct {
	base
	vertices
}

// Points returns a copy of the polyline's vertices in drawing order.
func (p *Polyline) Points() []Point { return p.snapshot() }

func (p *Polyline) Bounds() r2.Rect       { return p.box() }
func (p *Polyline) Contains(q Point) bool { return p.hitBounds(p.box()).ContainsPoint(q) }

func (p *Polyline) Render(r Renderer) { r.DrawPolyline(p.pts, false, p.paint(false)) }

func (p *Polyline) ToObject() Object {
	o := p.baseObject()
	o["points"] = pointList(p.pts)
	o["stroke"] = p.style.StrokeColor
	o["strokeWidth"] = p.style.StrokeWidth
	return o
}

func (p *Polyline) Clone() Shape {
	c := *p
	c.pts = p.snapshot()
	return &c
}

func decodePolyline(o Object) (Shape, error) {
	pts, err := o.points("points")
	if err != nil {
		return nil, err
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: polyline needs 2 points, got %d", ErrMalformed, len(pts))
	}
	return &Polyline{base: readBase(o, KindPolyline, readStyle(o)), vertices: vertices{pts: pts}}, nil
}

// dedupe drops consecutive duplicate points. A double click delivers its
// position twice, which must not count as two vertices.
func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if !finite(p) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Sub(p).Norm() < 0.5 {
			continue
		}
		out = append(out, p)
	}
	return out
}
