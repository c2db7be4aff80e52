package editor

import (
	"unicode"

	"photomark/shape"
)

// KeyCode identifies the keys the editor reacts to.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyDelete
	KeyBackspace
	KeyEscape
	KeyEnter
)

// Key is one key press. Rune is set for KeyRune.
type Key struct {
	Code  KeyCode
	Rune  rune
	Ctrl  bool
	Meta  bool
	Shift bool
}

func (k Key) command() bool { return k.Ctrl || k.Meta }

// KeyDown routes a key press and reports whether the editor consumed it.
// While a label is being edited every key goes to it.
func (e *Editor) KeyDown(k Key) bool {
	if !e.open {
		return false
	}
	if t := e.editingText(); t != nil {
		return e.typeInto(t, k)
	}

	switch {
	case k.Code == KeyDelete || k.Code == KeyBackspace:
		active := e.canvas.Active()
		if active == nil {
			return false
		}
		e.canvas.Remove(active)
		e.canvas.Discard()
		return true
	case k.Code == KeyEscape:
		st := &e.state
		e.canvas.Discard()
		st.Builder = nil
		st.Drag = DragState{}
		e.clearPreview(st)
		return true
	case k.Code == KeyRune && k.command():
		switch unicode.ToLower(k.Rune) {
		case 'z':
			if k.Shift {
				return e.Redo()
			}
			return e.Undo()
		case 'y':
			return e.Redo()
		}
	}
	return false
}

func (e *Editor) typeInto(t *shape.Text, k Key) bool {
	switch k.Code {
	case KeyEscape:
		e.endTextEdit()
	case KeyBackspace, KeyDelete:
		t.DeleteBackward()
	case KeyEnter:
		t.InsertText("\n")
	case KeyRune:
		if k.command() || !unicode.IsPrint(k.Rune) {
			return false
		}
		t.InsertText(string(k.Rune))
	}
	return true
}

// PasteText inserts s into the label being edited.
func (e *Editor) PasteText(s string) bool {
	if !e.open || s == "" {
		return false
	}
	t := e.editingText()
	if t == nil {
		return false
	}
	t.InsertText(s)
	return true
}
