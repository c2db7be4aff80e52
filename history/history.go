// Package history records user-visible changes to the shape collection and
// replays their inverses for undo and redo.
//
// Every entry stores serialized shapes rather than live references, so an
// entry stays valid after the shape it describes has been removed, replaced or
// reloaded from a document.
package history

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"photomark/shape"
)

// DefaultDepth is the number of undoable steps kept when New is given a
// non-positive depth.
const DefaultDepth = 50

// ActionType identifies what an entry changed.
type ActionType int

const (
	ActionAdd ActionType = iota
	ActionRemove
	ActionModify
)

func (t ActionType) String() string {
	switch t {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionModify:
		return "modify"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Action is one recorded change. Before is nil for adds and After is nil for
// removes.
type Action struct {
	Type   ActionType
	ID     string
	Index  int
	Before shape.Object
	After  shape.Object
}

// Collection is the live shape list undo and redo operate on.
type Collection interface {
	Insert(index int, s shape.Shape)
	RemoveID(id string) (int, bool)
	ReplaceID(id string, s shape.Shape) bool
}

// State is the snapshot handed to the change callback.
type State struct {
	CanUndo bool
	CanRedo bool
}

// Manager is a bounded linear undo/redo history. It is not safe for
// concurrent use; it belongs to the editor's event loop.
type Manager struct {
	depth     int
	undoStack []Action
	redoStack []Action

	programmatic bool
	onChange     func(State)

	registry *shape.Registry
	logger   *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry sets the registry used to rebuild shapes during replay.
func WithRegistry(r *shape.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New returns an empty manager keeping at most depth undoable steps.
func New(depth int, opts ...Option) *Manager {
	if depth <= 0 {
		depth = DefaultDepth
	}
	m := &Manager{
		depth:    depth,
		registry: shape.Default(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Depth() int { return m.depth }

// RecordAdd records that s was inserted at index.
func (m *Manager) RecordAdd(s shape.Shape, index int) {
	if s == nil {
		return
	}
	m.record(Action{Type: ActionAdd, ID: s.ID(), Index: index, After: s.ToObject()})
}

// RecordRemove records that s was removed from index.
func (m *Manager) RecordRemove(s shape.Shape, index int) {
	if s == nil {
		return
	}
	m.record(Action{Type: ActionRemove, ID: s.ID(), Index: index, Before: s.ToObject()})
}

// RecordModify records an in-place change of one shape. Identical states are
// not recorded.
func (m *Manager) RecordModify(before, after shape.Object) {
	if before == nil || after == nil || before.ID() == "" {
		return
	}
	if reflect.DeepEqual(before, after) {
		return
	}
	m.record(Action{Type: ActionModify, ID: before.ID(), Index: -1, Before: before.Clone(), After: after.Clone()})
}

// record pushes a new user action, drops the redo branch and evicts the
// oldest entries beyond the depth bound. Nothing is recorded while the
// manager is programmatic.
func (m *Manager) record(a Action) {
	if m.programmatic {
		return
	}
	m.undoStack = append(m.undoStack, a)
	if over := len(m.undoStack) - m.depth; over > 0 {
		m.undoStack = append(m.undoStack[:0:0], m.undoStack[over:]...)
	}
	m.redoStack = nil
	m.logger.Debug("history record", zap.Stringer("type", a.Type), zap.String("id", a.ID), zap.Int("depth", len(m.undoStack)))
	m.notify()
}

// Undo applies the inverse of the most recent action to c. It reports whether
// an action was applied.
func (m *Manager) Undo(c Collection) bool {
	if len(m.undoStack) == 0 || c == nil {
		return false
	}
	last := len(m.undoStack) - 1
	a := m.undoStack[last]
	m.undoStack = m.undoStack[:last]

	var err error
	m.Programmatic(func() { err = m.revert(c, a) })
	if err != nil {
		m.logger.Warn("undo failed, entry dropped", zap.Stringer("type", a.Type), zap.String("id", a.ID), zap.Error(err))
		m.notify()
		return false
	}
	m.redoStack = append(m.redoStack, a)
	m.notify()
	return true
}

// Redo reapplies the most recently undone action to c.
func (m *Manager) Redo(c Collection) bool {
	if len(m.redoStack) == 0 || c == nil {
		return false
	}
	last := len(m.redoStack) - 1
	a := m.redoStack[last]
	m.redoStack = m.redoStack[:last]

	var err error
	m.Programmatic(func() { err = m.apply(c, a) })
	if err != nil {
		m.logger.Warn("redo failed, entry dropped", zap.Stringer("type", a.Type), zap.String("id", a.ID), zap.Error(err))
		m.notify()
		return false
	}
	m.undoStack = append(m.undoStack, a)
	m.notify()
	return true
}

func (m *Manager) revert(c Collection, a Action) error {
	switch a.Type {
	case ActionAdd:
		if _, ok := c.RemoveID(a.ID); !ok {
			return fmt.Errorf("shape %s not found", a.ID)
		}
		return nil
	case ActionRemove:
		s, err := m.registry.Decode(a.Before)
		if err != nil {
			return err
		}
		c.Insert(a.Index, s)
		return nil
	case ActionModify:
		return m.replace(c, a.ID, a.Before)
	default:
		return fmt.Errorf("unknown action %v", a.Type)
	}
}

func (m *Manager) apply(c Collection, a Action) error {
	switch a.Type {
	case ActionAdd:
		s, err := m.registry.Decode(a.After)
		if err != nil {
			return err
		}
		c.Insert(a.Index, s)
		return nil
	case ActionRemove:
		if _, ok := c.RemoveID(a.ID); !ok {
			return fmt.Errorf("shape %s not found", a.ID)
		}
		return nil
	case ActionModify:
		return m.replace(c, a.ID, a.After)
	default:
		return fmt.Errorf("unknown action %v", a.Type)
	}
}

func (m *Manager) replace(c Collection, id string, o shape.Object) error {
	s, err := m.registry.Decode(o)
	if err != nil {
		return err
	}
	if !c.ReplaceID(id, s) {
		return fmt.Errorf("shape %s not found", id)
	}
	return nil
}

func (m *Manager) CanUndo() bool { return len(m.undoStack) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redoStack) > 0 }

// Len is the number of undoable steps.
func (m *Manager) Len() int { return len(m.undoStack) }

// Clear forgets every entry, for example after a new document is loaded.
func (m *Manager) Clear() {
	m.undoStack = nil
	m.redoStack = nil
	m.notify()
}

// SetOnChange installs the callback run after every change to either stack.
// A nil callback detaches the current one.
func (m *Manager) SetOnChange(fn func(State)) { m.onChange = fn }

func (m *Manager) State() State { return State{CanUndo: m.CanUndo(), CanRedo: m.CanRedo()} }

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange(m.State())
	}
}

// SetProgrammatic sets the suppression flag. Prefer Programmatic, which
// cannot leave the flag set by accident.
func (m *Manager) SetProgrammatic(on bool) { m.programmatic = on }

// IsProgrammatic reports whether mutations are currently being suppressed.
func (m *Manager) IsProgrammatic() bool { return m.programmatic }

// Programmatic runs fn with the suppression flag set and restores the
// previous value when fn returns or panics.
func (m *Manager) Programmatic(fn func()) {
	prev := m.programmatic
	m.programmatic = true
	defer func() { m.programmatic = prev }()
	fn()
}
