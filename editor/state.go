package editor

import (
	"photomark/builder"
	"photomark/shape"
)

// PreviewOpacity is the opacity of rubber-band previews.
const PreviewOpacity = 0.5

// DragState tracks a press-drag-release gesture. It is reset on pointer-up
// and on every tool change.
type DragState struct {
	Dragging bool
	Start    shape.Point
	HasStart bool
}

// State is the interaction state the router reads and updates.
type State struct {
	Tool  Tool
	Style shape.Style
	Drag  DragState
	// Builder is non-nil while a polygon or polyline is being clicked out.
	Builder *builder.Builder
	// Preview is the single ephemeral shape on the canvas, if any.
	Preview shape.Shape
	// Editing is set while a text annotation placed by the text tool is
	// being typed into.
	Editing bool
}
