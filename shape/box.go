package shape

import (
	"math"

	"github.com/golang/geo/r2"
)

// Circle is an ellipse given by its center and radii. Equal radii make a circle.
type Circle struct {
	base
	center Point
	rx, ry float64
}

func (c *Circle) Center() Point         { return c.center }
func (c *Circle) RadiusX() float64      { return c.rx }
func (c *Circle) RadiusY() float64      { return c.ry }
func (c *Circle) IsCircular() bool      { return c.rx == c.ry }
func (c *Circle) Bounds() r2.Rect       { return r2.RectFromCenterSize(c.center, Pt(2*c.rx, 2*c.ry)) }
func (c *Circle) Contains(p Point) bool { return c.hitBounds(c.Bounds()).ContainsPoint(p) }

func (c *Circle) Translate(dx, dy float64) { c.center = c.center.Add(Pt(dx, dy)) }

func (c *Circle) Resize(sx, sy float64, origin Point) {
	c.center = scalePoint(c.center, sx, sy, origin)
	c.rx *= math.Abs(sx)
	c.ry *= math.Abs(sy)
}

func (c *Circle) Render(r Renderer) { r.DrawEllipse(c.center, c.rx, c.ry, c.paint(true)) }

func (c *Circle) ToObject() Object {
	o := c.baseObject()
	o["cx"] = c.center.X
	o["cy"] = c.center.Y
	o["rx"] = c.rx
	o["ry"] = c.ry
	o["stroke"] = c.style.StrokeColor
	o["strokeWidth"] = c.style.StrokeWidth
	o["fill"] = c.style.FillColor
	return o
}

func (c *Circle) Clone() Shape {
	cp := *c
	return &cp
}

func decodeCircle(o Object) (Shape, error) {
	var v [4]float64
	for i, key := range []string{"cx", "cy", "rx", "ry"} {
		f, err := o.number(key)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return &Circle{
		base:   readBase(o, KindCircle, readStyle(o)),
		center: Pt(v[0], v[1]),
		rx:     math.Abs(v[2]),
		ry:     math.Abs(v[3]),
	}, nil
}

// Rectangle is an axis-aligned box given by its top-left corner and size.
type Rectangle struct {
	base
	left, top     float64
	width, height float64
}

func (r *Rectangle) PositionX() float64   { return r.left }
func (r *Rectangle) PositionY() float64   { return r.top }
func (r *Rectangle) ShapeWidth() float64  { return r.width }
func (r *Rectangle) ShapeHeight() float64 { return r.height }

func (r *Rectangle) Bounds() r2.Rect {
	return r2.RectFromPoints(Pt(r.left, r.top), Pt(r.left+r.width, r.top+r.height))
}

func (r *Rectangle) Contains(p Point) bool { return r.hitBounds(r.Bounds()).ContainsPoint(p) }

func (r *Rectangle) Translate(dx, dy float64) {
	r.left += dx
	r.top += dy
}

func (r *Rectangle) Resize(sx, sy float64, origin Point) {
	a := scalePoint(Pt(r.left, r.top), sx, sy, origin)
	b := scalePoint(Pt(r.left+r.width, r.top+r.height), sx, sy, origin)
	box := r2.RectFromPoints(a, b)
	r.left, r.top = box.X.Lo, box.Y.Lo
	r.width, r.height = box.X.Length(), box.Y.Length()
}

func (r *Rectangle) Render(rr Renderer) { rr.DrawRect(r.Bounds(), r.paint(true)) }

func (r *Rectangle) ToObject() Object {
	o := r.baseObject()
	o["left"] = r.left
	o["top"] = r.top
	o["width"] = r.width
	o["height"] = r.height
	o["stroke"] = r.style.StrokeColor
	o["strokeWidth"] = r.style.StrokeWidth
	o["fill"] = r.style.FillColor
	return o
}

func (r *Rectangle) Clone() Shape {
	cp := *r
	return &cp
}

func decodeRectangle(o Object) (Shape, error) {
	var v [4]float64
	for i, key := range []string{"left", "top", "width", "height"} {
		f, err := o.number(key)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return &Rectangle{
		base:   readBase(o, KindRectangle, readStyle(o)),
		left:   v[0],
		top:    v[1],
		width:  math.Abs(v[2]),
		height: math.Abs(v[3]),
	}, nil
}
