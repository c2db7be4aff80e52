package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Object is the serialized form of a shape. It always carries "kind" and "id"
// and never references the rendering library.
type Object map[string]any

var (
	// ErrMalformed reports an object that is not decodable as any shape.
	ErrMalformed = errors.New("malformed shape object")
	// ErrUnknownKind reports an object whose kind has no registered decoder.
	ErrUnknownKind = errors.New("unknown shape kind")
)

// Kind returns the object's discriminant, or "" when absent.
func (o Object) Kind() Kind {
	if o == nil {
		return ""
	}
	s, _ := o["kind"].(string)
	return Kind(s)
}

// ID returns the persisted shape id, or "" when absent.
func (o Object) ID() string {
	if o == nil {
		return ""
	}
	s, _ := o["id"].(string)
	return s
}

// Clone returns a deep copy of o.
func (o Object) Clone() Object {
	if o == nil {
		return nil
	}
	return cloneValue(map[string]any(o)).(map[string]any)
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case Object:
		return Object(cloneValue(map[string]any(v)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func (o Object) number(key string) (float64, error) {
	v, ok := o[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformed, key)
	}
	return f, nil
}

func (o Object) numberOr(key string, def float64) float64 {
	if _, ok := o[key]; !ok {
		return def
	}
	f, err := o.number(key)
	if err != nil {
		return def
	}
	return f
}

func (o Object) stringOr(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

func (o Object) points(key string) ([]Point, error) {
	raw, ok := o[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []map[string]any:
		for _, m := range v {
			items = append(items, m)
		}
	case []Point:
		return append([]Point(nil), v...), nil
	default:
		return nil, fmt.Errorf("%w: %q is not a point list", ErrMalformed, key)
	}
	pts := make([]Point, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a point", ErrMalformed, key, i)
		}
		x, okx := toFloat(m["x"])
		y, oky := toFloat(m["y"])
		if !okx || !oky {
			return nil, fmt.Errorf("%w: %s[%d] is not a point", ErrMalformed, key, i)
		}
		pts = append(pts, Pt(x, y))
	}
	return pts, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func pointList(pts []Point) []any {
	out := make([]any, len(pts))
	for i, p := range pts {
		out[i] = map[string]any{"x": p.X, "y": p.Y}
	}
	return out
}

// baseObject starts an object with the fields every shape persists.
func (b *base) baseObject() Object {
	return Object{
		"kind":    string(b.kind),
		"id":      b.id,
		"opacity": b.flags.Opacity,
	}
}

// readBase restores the common fields. A missing id gets a fresh one.
func readBase(o Object, kind Kind, st Style) base {
	b := newBase(kind, st)
	if id := o.ID(); id != "" {
		b.id = id
	}
	b.flags.Opacity = o.numberOr("opacity", 1)
	return b
}

// readStyle reads the stroke keys shared by most kinds, falling back to defaults.
func readStyle(o Object) Style {
	st := DefaultStyle()
	st.StrokeColor = o.stringOr("stroke", st.StrokeColor)
	if w := o.numberOr("strokeWidth", st.StrokeWidth); w > 0 {
		st.StrokeWidth = w
	}
	st.FillColor = o.stringOr("fill", st.FillColor)
	return st
}
