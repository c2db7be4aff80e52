package editor

import "errors"

// ErrClosed is returned by operations that need an open editing surface.
var ErrClosed = errors.New("editor: closed")

// ErrNoStore is returned by persistence operations when no store is
// configured.
var ErrNoStore = errors.New("editor: no store configured")

// Error is a failure the presentation layer should show to the user.
type Error struct {
	Op          string
	Message     string
	Recoverable bool
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func recoverable(op, msg string, err error) *Error {
	return &Error{Op: op, Message: msg, Recoverable: true, Err: err}
}

// Status is the loading/saving/error state reported to the presentation
// layer.
type Status struct {
	Loading bool
	Saving  bool
	Err     *Error
	// Warning describes a non-fatal problem, such as a thumbnail that could
	// not be stored after a successful save.
	Warning string
}

// SetOnStatus installs the status callback; nil detaches it.
func (e *Editor) SetOnStatus(fn func(Status)) { e.onStatus = fn }

// Status returns the current status.
func (e *Editor) Status() Status { return e.status }

func (e *Editor) updateStatus(fn func(*Status)) {
	fn(&e.status)
	if e.onStatus != nil {
		e.onStatus(e.status)
	}
}
