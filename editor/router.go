package editor

import (
	"reflect"
	"strings"

	"go.uber.org/zap"

	"photomark/builder"
	"photomark/shape"
)

// PointerDown routes a press in canvas coordinates. The scene handles it
// natively first (selection, transforms, brush); the editor then decides
// whether the press starts a shape.
func (e *Editor) PointerDown(p shape.Point) {
	if !e.open || !shape.Valid(p) {
		return
	}
	defer e.recoverStep("pointer down")
	e.canvas.PointerDown(p)
	e.routeDown(&e.state, p)
}

func (e *Editor) routeDown(st *State, p shape.Point) {
	switch {
	case st.Tool == ToolSelect || st.Tool == ToolFreehand:
		return
	case e.hitTest(p) != nil:
		return
	case e.canvas.Active() != nil:
		return
	}

	switch {
	case st.Tool.multiClick():
		if st.Builder == nil {
			b, err := builder.New(shape.Kind(st.Tool))
			if err != nil {
				e.logger.Error("start builder", zap.Error(err))
				return
			}
			st.Builder = b
		}
		if st.Builder.ShouldClose(p) {
			e.finalizeBuilder(st)
			return
		}
		st.Builder.AddPoint(p)
	case st.Tool == ToolText:
		if st.Editing && e.editText != nil && e.editText.IsEditing() {
			e.endTextEdit()
			return
		}
		e.placeText(st, p)
	case st.Tool.dragged():
		st.Drag = DragState{Dragging: true, Start: p, HasStart: true}
	}
}

// PointerMove refreshes the preview of the shape in progress.
func (e *Editor) PointerMove(p shape.Point) {
	if !e.open || !shape.Valid(p) {
		return
	}
	defer e.recoverStep("pointer move")
	e.canvas.PointerMove(p)

	st := &e.state
	switch {
	case st.Tool.multiClick() && st.Builder != nil && st.Builder.Len() > 0:
		if pl := st.Builder.Preview(p, st.Style); pl != nil {
			e.replacePreview(st, pl)
		}
	case st.Tool.dragged() && st.Drag.Dragging:
		e.replacePreview(st, e.create(st.Tool, st.Drag.Start, p))
	}
}

// PointerUp completes a drag. Releasing over an existing object creates
// nothing.
func (e *Editor) PointerUp(p shape.Point) {
	if !e.open {
		return
	}
	defer e.recoverStep("pointer up")
	e.canvas.PointerUp(p)

	st := &e.state
	e.clearPreview(st)
	drag := st.Drag
	st.Drag = DragState{}
	if !drag.Dragging || !drag.HasStart || !shape.Valid(p) {
		return
	}
	if e.hitTest(p) != nil {
		return
	}
	if s := e.create(st.Tool, drag.Start, p); s != nil {
		e.addShape(st, s)
	}
}

// DoubleClick finalizes a polygon or polyline in progress. Under the select
// tool, double-clicking a text label starts editing it.
func (e *Editor) DoubleClick(p shape.Point) {
	if !e.open {
		return
	}
	defer e.recoverStep("double click")

	st := &e.state
	e.clearPreview(st)
	if st.Builder != nil {
		e.finalizeBuilder(st)
		return
	}
	if st.Tool != ToolSelect || !shape.Valid(p) {
		return
	}
	if t, ok := e.canvas.ObjectAt(p).(*shape.Text); ok {
		e.beginTextEdit(st, t)
	}
}

func (e *Editor) recoverStep(step string) {
	if r := recover(); r != nil {
		e.logger.Error("event handling aborted", zap.String("step", step), zap.Any("panic", r))
	}
}

// hitTest returns the topmost persistent object whose hit area contains p,
// whether or not it is interactive.
func (e *Editor) hitTest(p shape.Point) shape.Shape {
	objs := e.canvas.Objects()
	for i := len(objs) - 1; i >= 0; i-- {
		o := objs[i]
		if o.Flags().Ephemeral || o.Kind() == shape.KindBackground {
			continue
		}
		if o.Contains(p) {
			return o
		}
	}
	return nil
}

// create runs the factory of a drag tool. The nil checks keep a nil
// pointer from becoming a non-nil Shape.
func (e *Editor) create(t Tool, start, end shape.Point) shape.Shape {
	st := e.state.Style
	switch t {
	case ToolDimension:
		if s := shape.CreateDimension(start, end, st); s != nil {
			return s
		}
	case ToolArrow:
		if s := shape.CreateArrow(start, end, st); s != nil {
			return s
		}
	case ToolCircle:
		if s := shape.CreateCircle(start, end, st); s != nil {
			return s
		}
	case ToolRectangle:
		if s := shape.CreateRectangle(start, end, st); s != nil {
			return s
		}
	}
	return nil
}

func (e *Editor) finalizeBuilder(st *State) {
	b := st.Builder
	st.Builder = nil
	e.clearPreview(st)
	if s := b.Finalize(st.Style); s != nil {
		e.addShape(st, s)
	}
}

// addShape adds a real, recorded shape.
func (e *Editor) addShape(st *State, s shape.Shape) {
	s.SetInteractive(st.Tool == ToolSelect)
	e.canvas.Add(s)
}

// replacePreview swaps the preview for s, or just removes it when s is nil.
// None of this reaches the history.
func (e *Editor) replacePreview(st *State, s shape.Shape) {
	e.history.Programmatic(func() {
		if st.Preview != nil {
			e.canvas.Remove(st.Preview)
			st.Preview = nil
		}
		if s == nil {
			return
		}
		s.SetInteractive(false)
		f := s.Flags()
		f.Ephemeral = true
		f.HasControls = false
		f.HasBorders = false
		f.Opacity = PreviewOpacity
		e.canvas.Add(s)
		st.Preview = s
	})
}

func (e *Editor) clearPreview(st *State) {
	if st.Preview != nil {
		e.replacePreview(st, nil)
	}
}

func (e *Editor) placeText(st *State, p shape.Point) {
	t := shape.CreateText(p, "", st.Style)
	if t == nil {
		return
	}
	e.history.Programmatic(func() { e.addShape(st, t) })
	e.beginTextEdit(st, t)
	e.editPlaced = true
}

func (e *Editor) beginTextEdit(st *State, t *shape.Text) {
	e.endTextEdit()
	t.EnterEditing()
	e.editText = t
	e.editBefore = t.ToObject()
	st.Editing = true
}

// endTextEdit leaves text editing. A label placed by this edit is recorded
// as a single add of its final content; an existing label that changed is
// recorded as one modification. A label left empty is removed, and leaves no
// trace in the history when it was just placed.
func (e *Editor) endTextEdit() {
	t := e.editText
	before, placed := e.editBefore, e.editPlaced
	e.editText, e.editBefore, e.editPlaced = nil, nil, false
	e.state.Editing = false
	if t == nil {
		return
	}
	t.ExitEditing()
	idx := e.canvas.IndexOf(t)
	if idx < 0 {
		return
	}
	if strings.TrimSpace(t.Content()) == "" {
		if placed {
			e.history.Programmatic(func() { e.canvas.Remove(t) })
			return
		}
		e.canvas.Remove(t)
		return
	}
	if placed {
		e.history.RecordAdd(t, idx)
		return
	}
	if after := t.ToObject(); !reflect.DeepEqual(before, after) {
		e.history.RecordModify(before, after)
	}
}

// editingText is the label currently receiving keystrokes, if any.
func (e *Editor) editingText() *shape.Text {
	if e.editText != nil && e.editText.IsEditing() {
		return e.editText
	}
	for _, o := range e.canvas.Objects() {
		if t, ok := o.(*shape.Text); ok && t.IsEditing() {
			return t
		}
	}
	return nil
}

// EditingText reports the label being edited, or nil.
func (e *Editor) EditingText() *shape.Text {
	if !e.open {
		return nil
	}
	return e.editingText()
}

// pathCreated turns a finished brush stroke into a freehand annotation.
func (e *Editor) pathCreated(pts []shape.Point) {
	if e.state.Tool != ToolFreehand {
		return
	}
	if s := shape.CreateFreehand(pts, e.state.Style); s != nil {
		e.addShape(&e.state, s)
	}
}
