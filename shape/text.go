package shape

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/golang/geo/r2"
)

// Placeholder is the content of a freshly placed text annotation.
const Placeholder = "Text"

// Text is a multi-line label. Its colour is the style's stroke colour and its
// background is the style's fill colour.
type Text struct {
	base
	content string
	pos     Point
	family  string

	editing   bool
	selectAll bool
}

func (t *Text) Content() string    { return t.content }
func (t *Text) Position() Point    { return t.pos }
func (t *Text) FontSize() float64  { return t.style.FontSize }
func (t *Text) FontFamily() string { return t.family }
func (t *Text) Lines() []string    { return strings.Split(t.content, "\n") }

// SetContent replaces the text.
func (t *Text) SetContent(s string) {
	t.content = s
	t.selectAll = false
}

// SetFontSize changes the size; non-positive sizes are ignored.
func (t *Text) SetFontSize(size float64) {
	if size > 0 {
		t.style.FontSize = size
	}
}

func (t *Text) size() (w, h float64) {
	w, h = MeasureText(t.Lines(), t.style.FontSize)
	if w < t.style.FontSize/2 {
		w = t.style.FontSize / 2
	}
	return w, h
}

func (t *Text) Width() float64 {
	w, _ := t.size()
	return w
}

func (t *Text) Height() float64 {
	_, h := t.size()
	return h
}

func (t *Text) Bounds() r2.Rect {
	w, h := t.size()
	return r2.RectFromPoints(t.pos, t.pos.Add(Pt(w, h)))
}

func (t *Text) Contains(p Point) bool {
	return t.Bounds().ExpandedByMargin(HitTolerance).ContainsPoint(p)
}

func (t *Text) Translate(dx, dy float64) { t.pos = t.pos.Add(Pt(dx, dy)) }

func (t *Text) Resize(sx, sy float64, origin Point) {
	t.pos = scalePoint(t.pos, sx, sy, origin)
	t.style.FontSize = math.Max(1, t.style.FontSize*math.Abs(sy))
}

func (t *Text) Render(r Renderer) {
	r.DrawText(TextRun{
		Lines:      t.Lines(),
		Origin:     t.pos,
		FontSize:   t.style.FontSize,
		LineHeight: t.style.FontSize * LineSpacing,
		Color:      t.style.StrokeColor,
		Background: t.style.FillColor,
		Opacity:    t.flags.Opacity,
	})
	if t.editing {
		b := t.Bounds()
		r.DrawRect(b.ExpandedByMargin(2), Paint{Stroke: "#3b82f6", Width: 1, Opacity: t.flags.Opacity})
	}
}

// EnterEditing starts in-place editing with the whole content selected, so the
// first insertion replaces it.
func (t *Text) EnterEditing() {
	t.editing = true
	t.selectAll = true
}

// ExitEditing ends in-place editing.
func (t *Text) ExitEditing() {
	t.editing = false
	t.selectAll = false
}

func (t *Text) IsEditing() bool { return t.editing }

// InsertText types s at the end of the content, replacing a full selection.
func (t *Text) InsertText(s string) {
	if t.selectAll {
		t.content = ""
		t.selectAll = false
	}
	t.content += s
}

// DeleteBackward removes the last rune, or everything when fully selected.
func (t *Text) DeleteBackward() {
	if t.selectAll {
		t.content = ""
		t.selectAll = false
		return
	}
	if t.content == "" {
		return
	}
	_, n := utf8.DecodeLastRuneInString(t.content)
	t.content = t.content[:len(t.content)-n]
}

func (t *Text) ToObject() Object {
	o := t.baseObject()
	o["text"] = t.content
	o["left"] = t.pos.X
	o["top"] = t.pos.Y
	o["fontSize"] = t.style.FontSize
	o["strokeWidth"] = t.style.StrokeWidth
	o["fontFamily"] = t.family
	o["fill"] = t.style.StrokeColor
	o["backgroundColor"] = t.style.FillColor
	return o
}

// Clone copies the annotation; the copy is never in editing mode.
func (t *Text) Clone() Shape {
	c := *t
	c.editing = false
	c.selectAll = false
	return &c
}

func decodeText(o Object) (Shape, error) {
	content, ok := o["text"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformed, "text")
	}
	left, err := o.number("left")
	if err != nil {
		return nil, err
	}
	top, err := o.number("top")
	if err != nil {
		return nil, err
	}
	st := DefaultStyle()
	st.StrokeColor = o.stringOr("fill", st.StrokeColor)
	st.FillColor = o.stringOr("backgroundColor", st.FillColor)
	if size := o.numberOr("fontSize", st.FontSize); size > 0 {
		st.FontSize = size
	}
	if w := o.numberOr("strokeWidth", st.StrokeWidth); w > 0 {
		st.StrokeWidth = w
	}
	return &Text{
		base:    readBase(o, KindText, st),
		content: content,
		pos:     Pt(left, top),
		family:  o.stringOr("fontFamily", FontFamily),
	}, nil
}
