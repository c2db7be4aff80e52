package shape

import "github.com/golang/geo/r2"

// The factories below turn pointer geometry into shapes. They never add the
// result anywhere and return nil when the geometry is degenerate: a micro-drag
// or a click misread as a drag is not an error.

func dragBox(start, end Point) (r2.Rect, bool) {
	if !finite(start) || !finite(end) {
		return r2.Rect{}, false
	}
	box := r2.RectFromPoints(start, end)
	if box.X.Length() < MinShapeSize || box.Y.Length() < MinShapeSize {
		return r2.Rect{}, false
	}
	return box, true
}

func dragSegment(start, end Point) (segment, bool) {
	if !finite(start) || !finite(end) || end.Sub(start).Norm() < MinShapeSize {
		return segment{}, false
	}
	return segment{start: start, end: end}, true
}

// CreateDimension builds a dimension line from start to end.
func CreateDimension(start, end Point, st Style) *Dimension {
	seg, ok := dragSegment(start, end)
	if !ok {
		return nil
	}
	return &Dimension{base: newBase(KindDimension, st), segment: seg}
}

// CreateArrow builds an arrow pointing at end.
func CreateArrow(start, end Point, st Style) *Arrow {
	seg, ok := dragSegment(start, end)
	if !ok {
		return nil
	}
	return &Arrow{base: newBase(KindArrow, st), segment: seg}
}

// CreateCircle builds the ellipse inscribed in the box spanned by the drag.
func CreateCircle(start, end Point, st Style) *Circle {
	box, ok := dragBox(start, end)
	if !ok {
		return nil
	}
	return &Circle{
		base:   newBase(KindCircle, st),
		center: box.Center(),
		rx:     box.X.Length() / 2,
		ry:     box.Y.Length() / 2,
	}
}

// CreateRectangle builds the box spanned by the drag, whatever its direction.
func CreateRectangle(start, end Point, st Style) *Rectangle {
	box, ok := dragBox(start, end)
	if !ok {
		return nil
	}
	return &Rectangle{
		base:   newBase(KindRectangle, st),
		left:   box.X.Lo,
		top:    box.Y.Lo,
		width:  box.X.Length(),
		height: box.Y.Length(),
	}
}

// CreatePolygon closes the given vertices; it needs three distinct corners.
func CreatePolygon(pts []Point, st Style) *Polygon {
	pts = dedupe(pts)
	if n := len(pts); n > 1 && pts[0].Sub(pts[n-1]).Norm() < 0.5 {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil
	}
	return &Polygon{base: newBase(KindPolygon, st), vertices: vertices{pts: pts}}
}

// CreatePolyline builds an open chain; it needs two distinct points.
func CreatePolyline(pts []Point, st Style) *Polyline {
	pts = dedupe(pts)
	if len(pts) < 2 {
		return nil
	}
	return &Polyline{base: newBase(KindPolyline, st), vertices: vertices{pts: pts}}
}

// CreateFreehand smooths brush samples into a path; it needs two distinct samples.
func CreateFreehand(pts []Point, st Style) *Freehand {
	pts = dedupe(pts)
	if len(pts) < 2 {
		return nil
	}
	return &Freehand{base: newBase(KindFreehand, st), segs: smoothPath(pts)}
}

// CreateText places a label with its top-left corner at at. Empty content
// becomes the placeholder.
func CreateText(at Point, content string, st Style) *Text {
	if !finite(at) {
		return nil
	}
	if content == "" {
		content = Placeholder
	}
	return &Text{
		base:    newBase(KindText, st),
		content: content,
		pos:     at,
		family:  FontFamily,
	}
}
