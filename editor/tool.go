package editor

import (
	"fmt"
	"strings"
)

// Tool is the active interaction mode.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolDimension Tool = "dimension"
	ToolArrow     Tool = "arrow"
	ToolCircle    Tool = "circle"
	ToolRectangle Tool = "rectangle"
	ToolPolygon   Tool = "polygon"
	ToolPolyline  Tool = "polyline"
	ToolFreehand  Tool = "freehand"
	ToolText      Tool = "text"
)

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	return []Tool{
		ToolSelect, ToolDimension, ToolArrow, ToolCircle, ToolRectangle,
		ToolPolygon, ToolPolyline, ToolFreehand, ToolText,
	}
}

// ParseTool looks a tool up by name, ignoring case.
func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tool %q", s)
	}
	return t, nil
}

func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolDimension, ToolArrow, ToolCircle, ToolRectangle,
		ToolPolygon, ToolPolyline, ToolFreehand, ToolText:
		return true
	}
	return false
}

// dragged tools create their shape from a press-drag-release.
func (t Tool) dragged() bool {
	switch t {
	case ToolDimension, ToolArrow, ToolCircle, ToolRectangle:
		return true
	}
	return false
}

// multiClick tools collect vertices in a builder.
func (t Tool) multiClick() bool { return t == ToolPolygon || t == ToolPolyline }
