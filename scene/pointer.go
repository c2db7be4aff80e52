package scene

import (
	"math"
	"reflect"

	"github.com/golang/geo/r2"

	"photomark/shape"
)

// HandleSize is the half-width of the square corner handles used to scale
// the selected object.
const HandleSize = 6.0

// grab is an in-progress move or scale of one object.
type grab struct {
	target shape.Shape
	before shape.Object
	last   shape.Point

	scaling bool
	anchor  shape.Point // fixed corner while scaling
	corner  shape.Point // dragged corner, tracked as the object grows
}

// PointerDown delivers a press in canvas coordinates. In drawing mode it
// starts a brush stroke. With selection enabled it grabs a corner handle of
// the selection or the topmost object under p, and discards the selection
// when p hits nothing.
func (s *Scene) PointerDown(p shape.Point) {
	if !shape.Valid(p) {
		return
	}
	if s.drawing {
		s.stroke = []shape.Point{p}
		return
	}
	if !s.selectionEnabled {
		return
	}
	if s.active != nil && s.active.Flags().HasControls {
		if anchor, corner, ok := handleAt(s.active.Bounds(), p); ok {
			s.grab = &grab{target: s.active, before: s.active.ToObject(), last: p, scaling: true, anchor: anchor, corner: corner}
			return
		}
	}
	target := s.ObjectAt(p)
	if target == nil {
		s.Discard()
		return
	}
	s.active = target
	s.grab = &grab{target: target, before: target.ToObject(), last: p}
}

// PointerMove extends the brush stroke or the current grab.
func (s *Scene) PointerMove(p shape.Point) {
	if !shape.Valid(p) {
		return
	}
	if s.drawing {
		if n := len(s.stroke); n > 0 && s.stroke[n-1].Sub(p).Norm() >= 1 {
			s.stroke = append(s.stroke, p)
		}
		return
	}
	g := s.grab
	if g == nil {
		return
	}
	if g.scaling {
		sx, sy := scaleFactor(g.anchor.X, g.corner.X, p.X), scaleFactor(g.anchor.Y, g.corner.Y, p.Y)
		g.target.Resize(sx, sy, g.anchor)
		g.corner = shape.Pt(g.anchor.X+(g.corner.X-g.anchor.X)*sx, g.anchor.Y+(g.corner.Y-g.anchor.Y)*sy)
		return
	}
	f := g.target.Flags()
	dx, dy := p.X-g.last.X, p.Y-g.last.Y
	if f.LockMovementX {
		dx = 0
	}
	if f.LockMovementY {
		dy = 0
	}
	g.target.Translate(dx, dy)
	g.last = p
}

// PointerUp ends the brush stroke, emitting the collected samples, or ends
// the grab, emitting a modified event when the object changed.
func (s *Scene) PointerUp(p shape.Point) {
	if s.drawing {
		if shape.Valid(p) {
			s.PointerMove(p)
		}
		pts := s.stroke
		s.stroke = nil
		if len(pts) >= 2 && s.onPathCreated != nil {
			s.onPathCreated(pts)
		}
		return
	}
	g := s.grab
	s.grab = nil
	if g == nil {
		return
	}
	after := g.target.ToObject()
	if !reflect.DeepEqual(g.before, after) && s.onModified != nil {
		s.onModified(g.before, after)
	}
}

// Grabbing reports whether a move or scale is in progress.
func (s *Scene) Grabbing() bool { return s.grab != nil }

// handleAt finds the corner handle of box under p and returns the opposite
// corner as the scaling anchor.
func handleAt(box r2.Rect, p shape.Point) (anchor, corner shape.Point, ok bool) {
	vs := box.Vertices()
	for i, v := range vs {
		if math.Abs(p.X-v.X) <= HandleSize && math.Abs(p.Y-v.Y) <= HandleSize {
			return vs[(i+2)%4], v, true
		}
	}
	return shape.Point{}, shape.Point{}, false
}

// scaleFactor maps the dragged coordinate from cur to next around anchor. It
// refuses to collapse the object onto its anchor.
func scaleFactor(anchor, cur, next float64) float64 {
	from, to := cur-anchor, next-anchor
	if math.Abs(from) < 1 || math.Abs(to) < 1 {
		return 1
	}
	return to / from
}
