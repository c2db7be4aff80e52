// Package editor is the annotation editing engine: it binds one scene and one
// command history to an interaction state machine that turns pointer and
// keyboard events into shapes, selections, text edits and undoable changes.
//
// An Editor is driven from a single event loop. Only the Job half of the
// asynchronous operations may run elsewhere.
package editor

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"photomark/export"
	"photomark/history"
	"photomark/internal/store"
	"photomark/scene"
	"photomark/shape"
)

// Editor owns the editing surface of one image at a time.
type Editor struct {
	state State

	canvas  *scene.Scene
	history *history.Manager
	open    bool

	// gen identifies the current surface; asynchronous continuations
	// compare against it before touching state.
	gen atomic.Uint64

	editText   *shape.Text
	editBefore shape.Object
	// editPlaced is set while the label being edited has not been recorded yet.
	editPlaced bool

	onHistory func(history.State)
	onStatus  func(Status)
	status    Status

	store      store.Store
	registry   *shape.Registry
	depth      int
	exportOpts export.Options
	thumbWidth int
	logger     *zap.Logger
}

// Option configures an Editor.
type Option func(*Editor)

func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStore sets the persistence backend used by LoadAnnotations and Save.
func WithStore(s store.Store) Option {
	return func(e *Editor) { e.store = s }
}

func WithRegistry(r *shape.Registry) Option {
	return func(e *Editor) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithHistoryDepth bounds the undo history.
func WithHistoryDepth(n int) Option {
	return func(e *Editor) { e.depth = n }
}

// WithStyle sets the initial drawing style.
func WithStyle(st shape.Style) Option {
	return func(e *Editor) { e.state.Style = st }
}

// WithExportOptions sets the format and quality used by ExportImage when the
// caller leaves them empty, and by thumbnails.
func WithExportOptions(o export.Options) Option {
	return func(e *Editor) { e.exportOpts = o }
}

// WithThumbnailWidth sets the width thumbnails are scaled down to on save.
func WithThumbnailWidth(w int) Option {
	return func(e *Editor) {
		if w > 0 {
			e.thumbWidth = w
		}
	}
}

// New returns a closed editor; call Open before delivering events.
func New(opts ...Option) *Editor {
	e := &Editor{
		state:      State{Tool: ToolSelect, Style: shape.DefaultStyle()},
		registry:   shape.Default(),
		depth:      history.DefaultDepth,
		exportOpts: export.Options{Format: export.FormatPNG},
		thumbWidth: 320,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open creates a fresh surface of the given size with an empty history. An
// already open surface is closed first, so pending continuations for it
// become stale.
func (e *Editor) Open(width, height int) {
	if e.open {
		e.Close()
	}
	gen := e.gen.Add(1)
	e.canvas = scene.New(width, height, scene.WithLogger(e.logger))
	e.history = history.New(e.depth, history.WithRegistry(e.registry), history.WithLogger(e.logger))
	e.history.SetOnChange(func(s history.State) {
		if e.onHistory != nil {
			e.onHistory(s)
		}
	})
	e.bindRecorder()
	e.open = true

	tool := e.state.Tool
	e.state = State{Tool: ToolSelect, Style: e.state.Style}
	e.applyTool(tool)
	e.logger.Debug("surface opened", zap.Uint64("generation", gen), zap.Int("width", width), zap.Int("height", height))
}

// Close releases the surface. It is safe to call more than once. History
// and status callbacks are detached.
func (e *Editor) Close() {
	if !e.open {
		return
	}
	e.open = false
	e.gen.Add(1)
	e.history.SetOnChange(nil)
	e.onHistory = nil
	e.onStatus = nil
	e.canvas.OnAdded(nil)
	e.canvas.OnRemoved(nil)
	e.canvas.OnModified(nil)
	e.canvas.OnPathCreated(nil)
	e.editText, e.editBefore, e.editPlaced = nil, nil, false
	e.state = State{Tool: e.state.Tool, Style: e.state.Style}
	e.status = Status{}
	e.canvas = nil
	e.logger.Debug("surface closed")
}

// IsOpen reports whether a surface is bound.
func (e *Editor) IsOpen() bool { return e.open }

// Canvas returns the live scene, or nil when closed.
func (e *Editor) Canvas() *scene.Scene { return e.canvas }

// State returns a copy of the interaction state.
func (e *Editor) State() State { return e.state }

func (e *Editor) Tool() Tool         { return e.state.Tool }
func (e *Editor) Style() shape.Style { return e.state.Style }

// SetActiveTool switches the interaction mode. Any polygon or polyline in
// progress is discarded, the drag and preview are cleared, text editing
// ends and every shape becomes interactive only under the select tool.
func (e *Editor) SetActiveTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("editor: unknown tool %q", t)
	}
	if !e.open {
		e.state.Tool = t
		return nil
	}
	e.applyTool(t)
	return nil
}

func (e *Editor) applyTool(t Tool) {
	st := &e.state
	e.endTextEdit()
	st.Builder = nil
	st.Drag = DragState{}
	e.clearPreview(st)

	selecting := t == ToolSelect
	e.canvas.Discard()
	e.canvas.SetSelectionEnabled(selecting)
	for _, o := range e.canvas.Objects() {
		if !o.Flags().Ephemeral {
			o.SetInteractive(selecting)
		}
	}
	e.canvas.SetDrawingMode(t == ToolFreehand, e.brush())
	st.Tool = t
	e.logger.Debug("tool changed", zap.String("tool", string(t)))
}

func (e *Editor) brush() scene.Brush {
	return scene.Brush{Color: e.state.Style.StrokeColor, Width: e.state.Style.StrokeWidth}
}

// SetStyle updates the drawing style. The selected object, or the text being
// edited, takes the new style as one undoable change.
func (e *Editor) SetStyle(o shape.StyleOptions) {
	e.state.Style = o.Apply(e.state.Style)
	if !e.open {
		return
	}
	if e.state.Tool == ToolFreehand {
		e.canvas.SetDrawingMode(true, e.brush())
	}
	switch {
	case e.editText != nil:
		e.editText.SetStyle(o)
	case e.canvas.Active() != nil:
		target := e.canvas.Active()
		e.canvas.Modify(target, func() { target.SetStyle(o) })
	}
}

// SetOnHistoryChange installs the undo/redo availability callback; nil
// detaches it.
func (e *Editor) SetOnHistoryChange(fn func(history.State)) { e.onHistory = fn }

func (e *Editor) CanUndo() bool { return e.open && e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.open && e.history.CanRedo() }

// Undo reverts the most recent recorded change.
func (e *Editor) Undo() bool {
	if !e.open {
		return false
	}
	e.endTextEdit()
	e.clearPreview(&e.state)
	ok := e.history.Undo(e.canvas)
	e.syncInteractive()
	return ok
}

// Redo reapplies the most recently undone change.
func (e *Editor) Redo() bool {
	if !e.open {
		return false
	}
	e.endTextEdit()
	e.clearPreview(&e.state)
	ok := e.history.Redo(e.canvas)
	e.syncInteractive()
	return ok
}

// syncInteractive makes shapes rebuilt by replay match the current tool.
func (e *Editor) syncInteractive() {
	selecting := e.state.Tool == ToolSelect
	for _, o := range e.canvas.Objects() {
		if !o.Flags().Ephemeral {
			o.SetInteractive(selecting)
		}
	}
}

// BringToFront and SendToBack reorder the selected object.
func (e *Editor) BringToFront() bool {
	if !e.open || e.canvas.Active() == nil {
		return false
	}
	return e.canvas.BringToFront(e.canvas.Active())
}

func (e *Editor) SendToBack() bool {
	if !e.open || e.canvas.Active() == nil {
		return false
	}
	return e.canvas.SendToBack(e.canvas.Active())
}

// ExportImage flattens the canvas, without previews, into a data URL. Empty
// options fall back to the editor's export settings.
func (e *Editor) ExportImage(opts export.Options) (string, error) {
	if !e.open {
		return "", ErrClosed
	}
	if opts.Format == "" {
		opts.Format = e.exportOpts.Format
	}
	if opts.Quality == nil {
		opts.Quality = e.exportOpts.Quality
	}
	return export.ExportImage(export.SnapshotFunc(e.canvas.Flatten), opts)
}

// Document serializes the current annotations.
func (e *Editor) Document() *export.Document {
	if !e.open {
		return export.ToDocument(nil)
	}
	return export.ToDocument(e.canvas.Objects())
}
