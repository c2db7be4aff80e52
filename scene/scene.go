// Package scene is the retained object collection the editor draws into. It
// owns the live shapes and the background photo, delivers native pointer
// handling (brush strokes, moving and scaling the selection) and renders
// everything with gg.
package scene

import (
	"image"
	"slices"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"photomark/shape"
)

// Brush configures native freehand drawing.
type Brush struct {
	Color string
	Width float64
}

// Scene is a z-ordered shape collection bound to one editing surface. It is
// not safe for concurrent use.
type Scene struct {
	width, height int

	objects    []shape.Shape
	background *shape.Image

	selectionEnabled bool
	active           shape.Shape

	drawing bool
	brush   Brush
	stroke  []shape.Point

	grab *grab

	onAdded       func(s shape.Shape, index int)
	onRemoved     func(s shape.Shape, index int)
	onModified    func(before, after shape.Object)
	onPathCreated func(pts []shape.Point)

	logger *zap.Logger
}

// Option configures a Scene.
type Option func(*Scene)

func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty scene of the given pixel size.
func New(width, height int, opts ...Option) *Scene {
	s := &Scene{
		width:  max(width, 0),
		height: max(height, 0),
		brush:  Brush{Color: shape.DefaultStyle().StrokeColor, Width: shape.DefaultStyle().StrokeWidth},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scene) Width() int  { return s.width }
func (s *Scene) Height() int { return s.height }

// SetSize changes the surface size. Shapes are not moved.
func (s *Scene) SetSize(width, height int) {
	s.width, s.height = max(width, 0), max(height, 0)
}

// OnAdded, OnRemoved, OnModified and OnPathCreated install the event
// handlers. A nil handler detaches the current one.
func (s *Scene) OnAdded(fn func(shape.Shape, int))              { s.onAdded = fn }
func (s *Scene) OnRemoved(fn func(shape.Shape, int))            { s.onRemoved = fn }
func (s *Scene) OnModified(fn func(before, after shape.Object)) { s.onModified = fn }
func (s *Scene) OnPathCreated(fn func([]shape.Point))           { s.onPathCreated = fn }

// Add places sh on top of every other object.
func (s *Scene) Add(sh shape.Shape) {
	s.Insert(len(s.objects), sh)
}

// Insert places sh at index in z-order, clamped to the collection bounds.
func (s *Scene) Insert(index int, sh shape.Shape) {
	if sh == nil {
		return
	}
	if index < 0 || index > len(s.objects) {
		index = len(s.objects)
	}
	s.objects = slices.Insert(s.objects, index, sh)
	if s.onAdded != nil {
		s.onAdded(sh, index)
	}
}

// Remove takes sh out of the collection. It reports false when sh is not a
// member.
func (s *Scene) Remove(sh shape.Shape) bool {
	i := s.IndexOf(sh)
	if i < 0 {
		return false
	}
	s.removeAt(i)
	return true
}

// RemoveID removes the object with the given id and returns its former index.
func (s *Scene) RemoveID(id string) (int, bool) {
	i := s.indexOfID(id)
	if i < 0 {
		return -1, false
	}
	s.removeAt(i)
	return i, true
}

func (s *Scene) removeAt(i int) {
	sh := s.objects[i]
	s.objects = slices.Delete(s.objects, i, i+1)
	if s.active == sh {
		s.active = nil
	}
	if s.grab != nil && s.grab.target == sh {
		s.grab = nil
	}
	if s.onRemoved != nil {
		s.onRemoved(sh, i)
	}
}

// ReplaceID swaps the object with the given id for sh at the same z-order
// position.
func (s *Scene) ReplaceID(id string, sh shape.Shape) bool {
	i := s.indexOfID(id)
	if i < 0 || sh == nil {
		return false
	}
	old := s.objects[i]
	s.objects[i] = sh
	if s.active == old {
		s.active = nil
	}
	if s.onModified != nil {
		s.onModified(old.ToObject(), sh.ToObject())
	}
	return true
}

// Clear removes every object, top first.
func (s *Scene) Clear() {
	for i := len(s.objects) - 1; i >= 0; i-- {
		s.removeAt(i)
	}
}

// Objects returns the members in z-order, bottom first. The background is
// not a member.
func (s *Scene) Objects() []shape.Shape { return slices.Clone(s.objects) }

func (s *Scene) Len() int { return len(s.objects) }

// IndexOf returns the z-order position of sh, or -1.
func (s *Scene) IndexOf(sh shape.Shape) int {
	for i, o := range s.objects {
		if o == sh {
			return i
		}
	}
	return -1
}

func (s *Scene) indexOfID(id string) int {
	for i, o := range s.objects {
		if o.ID() == id {
			return i
		}
	}
	return -1
}

// Find returns the member with the given id.
func (s *Scene) Find(id string) (shape.Shape, bool) {
	if i := s.indexOfID(id); i >= 0 {
		return s.objects[i], true
	}
	return nil, false
}

// BringToFront moves sh to the top of the z-order.
func (s *Scene) BringToFront(sh shape.Shape) bool {
	i := s.IndexOf(sh)
	if i < 0 {
		return false
	}
	s.objects = append(slices.Delete(s.objects, i, i+1), sh)
	return true
}

// SendToBack moves sh to the bottom of the z-order, still above the
// background.
func (s *Scene) SendToBack(sh shape.Shape) bool {
	i := s.IndexOf(sh)
	if i < 0 {
		return false
	}
	s.objects = slices.Insert(slices.Delete(s.objects, i, i+1), 0, sh)
	return true
}

// Modify runs fn against a member and emits one modified event carrying the
// object before and after the change.
func (s *Scene) Modify(sh shape.Shape, fn func()) {
	if s.IndexOf(sh) < 0 {
		fn()
		return
	}
	before := sh.ToObject()
	fn()
	if s.onModified != nil {
		s.onModified(before, sh.ToObject())
	}
}

// SetBackground installs img as the locked photo under every object and
// resizes the surface to match it. A nil image removes the background.
func (s *Scene) SetBackground(img image.Image) {
	if img == nil {
		s.background = nil
		return
	}
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Copy(rgba, image.Point{}, img, b, xdraw.Src, nil)
	}
	s.background = shape.NewImage(rgba)
	s.SetSize(b.Dx(), b.Dy())
	s.logger.Debug("background set", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
}

// Background returns the current background, or nil.
func (s *Scene) Background() *shape.Image { return s.background }

// SetSelectionEnabled turns native selection on or off. Turning it off
// discards the active object.
func (s *Scene) SetSelectionEnabled(on bool) {
	s.selectionEnabled = on
	if !on {
		s.Discard()
	}
}

func (s *Scene) SelectionEnabled() bool { return s.selectionEnabled }

// SetActive selects sh. Only selectable members can be selected.
func (s *Scene) SetActive(sh shape.Shape) bool {
	if sh == nil || s.IndexOf(sh) < 0 || !sh.Flags().Selectable {
		return false
	}
	s.active = sh
	return true
}

// Active returns the selected object, or nil.
func (s *Scene) Active() shape.Shape { return s.active }

// Discard clears the selection.
func (s *Scene) Discard() {
	s.active = nil
	s.grab = nil
}

// SetDrawingMode switches native brush drawing on or off.
func (s *Scene) SetDrawingMode(on bool, b Brush) {
	s.drawing = on
	if b.Width > 0 {
		s.brush.Width = b.Width
	}
	if b.Color != "" {
		s.brush.Color = b.Color
	}
	if !on {
		s.stroke = nil
	}
}

func (s *Scene) DrawingMode() bool { return s.drawing }
func (s *Scene) Brush() Brush      { return s.brush }

// ObjectAt returns the topmost selectable, evented object containing p.
func (s *Scene) ObjectAt(p shape.Point) shape.Shape {
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		f := o.Flags()
		if f.Selectable && f.Evented && o.Contains(p) {
			return o
		}
	}
	return nil
}
