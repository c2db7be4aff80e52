// Package shape is the annotation object model: one type per annotation kind,
// style and interaction flags shared by all of them, the factories that turn
// pointer geometry into shapes, and the Object form used for persistence and
// undo replay.
package shape

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
)

// Point is a canvas-space coordinate.
type Point = r2.Point

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Kind is the discriminant persisted with every shape. Values must stay stable
// once documents exist.
type Kind string

const (
	KindDimension  Kind = "dimension"
	KindArrow      Kind = "arrow"
	KindCircle     Kind = "circleShape"
	KindRectangle  Kind = "rectangleShape"
	KindPolygon    Kind = "polygon"
	KindPolyline   Kind = "polyline"
	KindFreehand   Kind = "freehand"
	KindText       Kind = "textAnnotation"
	KindBackground Kind = "backgroundImage"
)

const (
	// MinShapeSize is the smallest extent, in pixels, a drag may produce.
	MinShapeSize = 5.0
	// HitTolerance grows every bounding box during hit tests so thin lines can be grabbed.
	HitTolerance = 3.0
)

// Style is the user-adjustable appearance of a shape.
type Style struct {
	StrokeColor string
	StrokeWidth float64
	FillColor   string
	FontSize    float64
}

// DefaultStyle is the style new editors start with.
func DefaultStyle() Style {
	return Style{
		StrokeColor: "#ff0000",
		StrokeWidth: 2,
		FillColor:   "transparent",
		FontSize:    20,
	}
}

// StyleOptions is a partial style update; nil fields are left unchanged.
type StyleOptions struct {
	StrokeColor *string
	StrokeWidth *float64
	FillColor   *string
	FontSize    *float64
}

// Apply returns s with every non-nil option applied.
func (o StyleOptions) Apply(s Style) Style {
	if o.StrokeColor != nil {
		s.StrokeColor = *o.StrokeColor
	}
	if o.StrokeWidth != nil && *o.StrokeWidth > 0 {
		s.StrokeWidth = *o.StrokeWidth
	}
	if o.FillColor != nil {
		s.FillColor = *o.FillColor
	}
	if o.FontSize != nil && *o.FontSize > 0 {
		s.FontSize = *o.FontSize
	}
	return s
}

// Flags control how the editor and the scene treat a shape.
type Flags struct {
	Selectable    bool
	Evented       bool
	HasControls   bool
	HasBorders    bool
	LockMovementX bool
	LockMovementY bool
	// Ephemeral marks previews; ephemeral shapes are never recorded or persisted.
	Ephemeral bool
	Opacity   float64
}

func interactiveFlags() Flags {
	return Flags{
		Selectable:  true,
		Evented:     true,
		HasControls: true,
		HasBorders:  true,
		Opacity:     1,
	}
}

func lockedFlags() Flags {
	return Flags{
		LockMovementX: true,
		LockMovementY: true,
		Opacity:       1,
	}
}

// Paint is the resolved drawing state handed to a Renderer.
type Paint struct {
	Stroke  string
	Fill    string
	Width   float64
	Opacity float64
}

// TextRun is a block of text handed to a Renderer.
type TextRun struct {
	Lines      []string
	Origin     Point // top-left corner
	FontSize   float64
	LineHeight float64
	Color      string
	Background string
	Opacity    float64
}

// Renderer is the drawing capability a rendering library provides.
type Renderer interface {
	DrawPolyline(points []Point, closed bool, p Paint)
	DrawEllipse(center Point, rx, ry float64, p Paint)
	DrawRect(r r2.Rect, p Paint)
	DrawPath(segments []Segment, p Paint)
	DrawText(t TextRun)
	DrawImage(img image.Image, at Point, opacity float64)
}

// Shape is one annotation on the canvas.
type Shape interface {
	ID() string
	Kind() Kind

	Style() Style
	SetStroke(color string)
	SetStrokeWidth(width float64)
	SetFill(color string)
	SetStyle(o StyleOptions)

	Flags() *Flags
	// SetInteractive toggles Selectable and Evented. Background images ignore it.
	SetInteractive(on bool)

	Bounds() r2.Rect
	Contains(p Point) bool
	Translate(dx, dy float64)
	Resize(sx, sy float64, origin Point)

	Render(r Renderer)
	ToObject() Object
	Clone() Shape
}

type base struct {
	id    string
	kind  Kind
	style Style
	flags Flags
}

func newBase(kind Kind, st Style) base {
	return base{
		id:    uuid.NewString(),
		kind:  kind,
		style: st,
		flags: interactiveFlags(),
	}
}

func (b *base) ID() string    { return b.id }
func (b *base) Kind() Kind    { return b.kind }
func (b *base) Style() Style  { return b.style }
func (b *base) Flags() *Flags { return &b.flags }

func (b *base) SetStroke(color string) { b.style.StrokeColor = color }

func (b *base) SetStrokeWidth(width float64) {
	if width > 0 {
		b.style.StrokeWidth = width
	}
}

func (b *base) SetFill(color string)    { b.style.FillColor = color }
func (b *base) SetStyle(o StyleOptions) { b.style = o.Apply(b.style) }

func (b *base) SetInteractive(on bool) {
	b.flags.Selectable = on
	b.flags.Evented = on
}

func (b *base) paint(fill bool) Paint {
	p := Paint{
		Stroke:  b.style.StrokeColor,
		Width:   b.style.StrokeWidth,
		Opacity: b.flags.Opacity,
	}
	if fill {
		p.Fill = b.style.FillColor
	}
	return p
}

// hitBounds grows r by half the stroke width plus the hit tolerance.
func (b *base) hitBounds(r r2.Rect) r2.Rect {
	return r.ExpandedByMargin(b.style.StrokeWidth/2 + HitTolerance)
}

// scalePoint scales p away from origin.
func scalePoint(p Point, sx, sy float64, origin Point) Point {
	return Point{
		X: origin.X + (p.X-origin.X)*sx,
		Y: origin.Y + (p.Y-origin.Y)*sy,
	}
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Valid reports whether p has finite coordinates.
func Valid(p Point) bool { return finite(p) }

func midpoint(a, b Point) Point { return a.Add(b).Mul(0.5) }
