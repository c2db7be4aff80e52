package history

import (
	"reflect"
	"testing"

	"photomark/shape"
)

// list is a minimal Collection over a slice.
type list struct{ items []shape.Shape }

func (l *list) Insert(index int, s shape.Shape) {
	if index < 0 || index > len(l.items) {
		index = len(l.items)
	}
	l.items = append(l.items, nil)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = s
}

func (l *list) RemoveID(id string) (int, bool) {
	for i, s := range l.items {
		if s.ID() == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return i, true
		}
	}
	return -1, false
}

func (l *list) ReplaceID(id string, s shape.Shape) bool {
	for i, it := range l.items {
		if it.ID() == id {
			l.items[i] = s
			return true
		}
	}
	return false
}

func (l *list) add(m *Manager, s shape.Shape) {
	l.items = append(l.items, s)
	m.RecordAdd(s, len(l.items)-1)
}

func (l *list) snapshot() []shape.Object {
	out := make([]shape.Object, len(l.items))
	for i, s := range l.items {
		out[i] = s.ToObject()
	}
	return out
}

func rect(x float64) *shape.Rectangle {
	return shape.CreateRectangle(shape.Pt(x, 0), shape.Pt(x+20, 20), shape.DefaultStyle())
}

func TestInverseLaw(t *testing.T) {
	m := New(50)
	l := &list{}
	l.add(m, rect(0))
	initial := l.snapshot()

	l.add(m, rect(30))
	l.add(m, shape.CreateArrow(shape.Pt(0, 0), shape.Pt(40, 40), shape.DefaultStyle()))

	// modify the first rectangle
	r := l.items[0]
	before := r.ToObject()
	r.Translate(5, 5)
	r.SetStroke("#0000ff")
	m.RecordModify(before, r.ToObject())

	// remove the middle one
	removed := l.items[1]
	idx, _ := l.RemoveID(removed.ID())
	m.RecordRemove(removed, idx)

	final := l.snapshot()
	const ops = 4
	for i := 0; i < ops; i++ {
		if !m.Undo(l) {
			t.Fatalf("undo %d failed", i)
		}
	}
	// The first add is still in history.
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
	if got := l.snapshot(); !reflect.DeepEqual(got, initial) {
		t.Errorf("after undo\n got %v\nwant %v", got, initial)
	}
	for i := 0; i < ops; i++ {
		if !m.Redo(l) {
			t.Fatalf("redo %d failed", i)
		}
	}
	if got := l.snapshot(); !reflect.DeepEqual(got, final) {
		t.Errorf("after redo\n got %v\nwant %v", got, final)
	}
	if m.CanRedo() {
		t.Error("CanRedo after redoing everything")
	}
}

func TestBoundedDepth(t *testing.T) {
	m := New(50)
	l := &list{}
	for i := 0; i < 60; i++ {
		l.add(m, rect(float64(i)))
	}
	if m.Len() != 50 {
		t.Fatalf("Len = %d, want 50", m.Len())
	}
	n := 0
	for m.Undo(l) {
		n++
	}
	if n != 50 {
		t.Errorf("undid %d steps, want 50", n)
	}
	if len(l.items) != 10 {
		t.Errorf("%d shapes left, want the 10 oldest", len(l.items))
	}
	if m.CanUndo() {
		t.Error("CanUndo past the bound")
	}
}

func TestDefaultDepth(t *testing.T) {
	if d := New(0).Depth(); d != DefaultDepth {
		t.Errorf("depth = %d", d)
	}
}

func TestRedoInvalidation(t *testing.T) {
	m := New(10)
	l := &list{}
	l.add(m, rect(0))
	l.add(m, rect(30))
	m.Undo(l)
	if !m.CanRedo() {
		t.Fatal("CanRedo = false after undo")
	}
	l.add(m, rect(60))
	if m.CanRedo() {
		t.Error("CanRedo = true after a new operation")
	}
}

func TestProgrammaticSuppression(t *testing.T) {
	m := New(10)
	l := &list{}
	var changes []State
	m.SetOnChange(func(s State) { changes = append(changes, s) })

	m.Programmatic(func() {
		for i := 0; i < 5; i++ {
			l.add(m, rect(float64(i)))
		}
	})
	if m.CanUndo() || m.Len() != 0 || len(changes) != 0 {
		t.Fatalf("suppressed operations recorded: len=%d changes=%v", m.Len(), changes)
	}
	if m.IsProgrammatic() {
		t.Error("flag left set")
	}

	m.SetProgrammatic(true)
	l.add(m, rect(100))
	m.SetProgrammatic(false)
	if m.Len() != 0 {
		t.Error("recorded while flag set")
	}

	l.add(m, rect(200))
	if m.Len() != 1 || len(changes) != 1 || changes[0] != (State{CanUndo: true}) {
		t.Errorf("len=%d changes=%v", m.Len(), changes)
	}
}

func TestProgrammaticRestoresOnPanic(t *testing.T) {
	m := New(10)
	func() {
		defer func() { _ = recover() }()
		m.Programmatic(func() { panic("boom") })
	}()
	if m.IsProgrammatic() {
		t.Error("flag left set after panic")
	}

	m.SetProgrammatic(true)
	m.Programmatic(func() {})
	if !m.IsProgrammatic() {
		t.Error("nested Programmatic cleared an outer flag")
	}
}

func TestOnChange(t *testing.T) {
	m := New(10)
	l := &list{}
	var got []State
	m.SetOnChange(func(s State) { got = append(got, s) })
	l.add(m, rect(0))
	m.Undo(l)
	m.Redo(l)
	m.Clear()
	want := []State{
		{CanUndo: true},
		{CanRedo: true},
		{CanUndo: true},
		{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("states = %v, want %v", got, want)
	}

	m.SetOnChange(nil)
	l.add(m, rect(0))
	if len(got) != len(want) {
		t.Error("detached callback still called")
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	m := New(10)
	if m.Undo(&list{}) || m.Redo(&list{}) {
		t.Error("undo/redo on empty history reported success")
	}
}

func TestModifyIgnoresNoop(t *testing.T) {
	m := New(10)
	r := rect(0)
	m.RecordModify(r.ToObject(), r.ToObject())
	if m.CanUndo() {
		t.Error("identical modify recorded")
	}
}

func TestUndoMissingShapeDropsEntry(t *testing.T) {
	m := New(10)
	l := &list{}
	l.add(m, rect(0))
	l.items = nil
	if m.Undo(l) {
		t.Error("undo of a vanished shape reported success")
	}
	if m.CanUndo() || m.CanRedo() {
		t.Error("failed entry kept")
	}
}
