package editor

import "photomark/shape"

// bindRecorder feeds scene changes into the history. Previews, the
// background and anything done under the programmatic flag are skipped.
func (e *Editor) bindRecorder() {
	h := e.history
	skip := func(s shape.Shape) bool {
		return h.IsProgrammatic() || s == nil || s.Kind() == shape.KindBackground || s.Flags().Ephemeral
	}
	e.canvas.OnAdded(func(s shape.Shape, index int) {
		if !skip(s) {
			h.RecordAdd(s, index)
		}
	})
	e.canvas.OnRemoved(func(s shape.Shape, index int) {
		if !skip(s) {
			h.RecordRemove(s, index)
		}
	})
	e.canvas.OnModified(func(before, after shape.Object) {
		if h.IsProgrammatic() || before.Kind() == shape.KindBackground {
			return
		}
		if s, ok := e.canvas.Find(after.ID()); ok && s.Flags().Ephemeral {
			return
		}
		h.RecordModify(before, after)
	})
	e.canvas.OnPathCreated(e.pathCreated)
}
