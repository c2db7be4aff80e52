// Package builder accumulates the vertices of click-by-click shapes (polygons
// and polylines) until they are finalized or abandoned.
package builder

import (
	"fmt"

	"photomark/shape"
)

// CloseDistance is how close, in pixels, a click must land to the first
// vertex of a polygon to close it.
const CloseDistance = 10.0

// State is the builder's position in its lifecycle.
type State int

const (
	Empty State = iota
	Accumulating
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Accumulating:
		return "accumulating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Builder collects vertices for one polygon or polyline.
type Builder struct {
	kind shape.Kind
	pts  []shape.Point
}

// New returns a builder for kind, which must be polygon or polyline.
func New(kind shape.Kind) (*Builder, error) {
	switch kind {
	case shape.KindPolygon, shape.KindPolyline:
		return &Builder{kind: kind}, nil
	default:
		return nil, fmt.Errorf("builder: %q is not a multi-click kind", kind)
	}
}

func NewPolygon() *Builder  { return &Builder{kind: shape.KindPolygon} }
func NewPolyline() *Builder { return &Builder{kind: shape.KindPolyline} }

// Kind is the shape kind the builder produces.
func (b *Builder) Kind() shape.Kind { return b.kind }

// AddPoint appends p. No validation happens here; the vertex minimum is
// enforced by Finalize.
func (b *Builder) AddPoint(p shape.Point) { b.pts = append(b.pts, p) }

// Points returns a snapshot of the collected vertices.
func (b *Builder) Points() []shape.Point { return append([]shape.Point(nil), b.pts...) }

func (b *Builder) Len() int { return len(b.pts) }

func (b *Builder) State() State {
	if len(b.pts) == 0 {
		return Empty
	}
	return Accumulating
}

// ShouldClose reports whether a click at p closes the polygon: there are at
// least three vertices and p is near the first one. Polylines never close.
func (b *Builder) ShouldClose(p shape.Point) bool {
	if b.kind != shape.KindPolygon || len(b.pts) < 3 {
		return false
	}
	return p.Sub(b.pts[0]).Norm() <= CloseDistance
}

// Preview returns the rubber-band polyline through every vertex and the
// cursor, closed back to the first vertex for polygons. It returns nil while
// the builder is empty.
func (b *Builder) Preview(cursor shape.Point, st shape.Style) *shape.Polyline {
	if len(b.pts) == 0 {
		return nil
	}
	pts := append(b.Points(), cursor)
	if b.kind == shape.KindPolygon && len(b.pts) >= 2 {
		pts = append(pts, b.pts[0])
	}
	return shape.CreatePolyline(pts, st)
}

// Finalize hands the vertices to the shape factory and resets the builder. It
// returns nil when the vertices do not make a valid shape.
func (b *Builder) Finalize(st shape.Style) shape.Shape {
	pts := b.pts
	b.Reset()
	switch b.kind {
	case shape.KindPolygon:
		if p := shape.CreatePolygon(pts, st); p != nil {
			return p
		}
	case shape.KindPolyline:
		if p := shape.CreatePolyline(pts, st); p != nil {
			return p
		}
	}
	return nil
}

// Reset discards every vertex.
func (b *Builder) Reset() { b.pts = nil }
